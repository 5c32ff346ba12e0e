package domain

import "time"

// Contact is the typed view of the provider's contact detail. Nil or empty
// members were not reported by the provider in this response.
type Contact struct {
	ContactID         string     `json:"contact_id"`
	InitiationTime    *time.Time `json:"initiation_timestamp,omitempty"`
	SystemConnectTime *time.Time `json:"connected_to_system_timestamp,omitempty"`
	AgentConnectTime  *time.Time `json:"connected_to_agent_timestamp,omitempty"`
	DisconnectTime    *time.Time `json:"disconnect_timestamp,omitempty"`
	DisconnectReason  string     `json:"disconnect_reason,omitempty"`
	DetectionResult   string     `json:"detection_result,omitempty"` // Answering machine detection result attribute
}

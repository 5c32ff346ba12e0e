package domain

import (
	"strings"
	"time"
)

// Field names as shown in the status table and the CSV Name column.
const (
	FieldContactID         = "ContactId"
	FieldStartTime         = "StartTime"
	FieldInitiationTime    = "InitiationTimestamp"
	FieldSystemConnectTime = "ConnectedToSystemTimestamp"
	FieldAgentConnectTime  = "ConnectedToAgentTimestamp"
	FieldDisconnectTime    = "DisconnectTimestamp"
	FieldDisconnectReason  = "DisconnectReason"
	FieldDetectionResult   = "amd_result"
)

// fieldOrder is the canonical position of every known status field.
var fieldOrder = []string{
	FieldContactID,
	FieldStartTime,
	FieldInitiationTime,
	FieldSystemConnectTime,
	FieldAgentConnectTime,
	FieldDisconnectTime,
	FieldDisconnectReason,
	FieldDetectionResult,
}

// FieldOrder returns a copy of the canonical status field order.
func FieldOrder() []string {
	out := make([]string, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

func fieldRank(name string) int {
	for i, n := range fieldOrder {
		if n == name {
			return i
		}
	}
	return len(fieldOrder)
}

// Field is one name/value pair of a session's status.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one outbound call attempt and everything known about it so far.
type Record struct {
	ContactID  string    `json:"contact_id"`  // Provider contact id, immutable
	InstanceID string    `json:"instance_id"` // Provider instance the contact belongs to
	StartTime  time.Time `json:"start_time"`  // Local capture at initiation
	Fields     []Field   `json:"fields"`      // Ordered status fields
}

// NewRecord builds a freshly initiated record. The first two fields are
// always ContactId and StartTime.
func NewRecord(contactID, instanceID string, start time.Time, tf TimeFormat) *Record {
	return &Record{
		ContactID:  contactID,
		InstanceID: instanceID,
		StartTime:  start,
		Fields: []Field{
			{Name: FieldContactID, Value: contactID},
			{Name: FieldStartTime, Value: tf.Format(start)},
		},
	}
}

// Value returns the value of a field and whether it is present.
func (r *Record) Value(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Names returns field names in display order.
func (r *Record) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Upsert sets a field, overwriting an existing value in place or inserting
// a new field at its canonical position. Empty values are ignored so a
// field is never blanked out by a sparse provider response.
func (r *Record) Upsert(name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	rank := fieldRank(name)
	at := len(r.Fields)
	for i, f := range r.Fields {
		if fieldRank(f.Name) > rank {
			at = i
			break
		}
	}
	r.Fields = append(r.Fields, Field{})
	copy(r.Fields[at+1:], r.Fields[at:])
	r.Fields[at] = Field{Name: name, Value: value}
}

// Terminal reports whether the provider has recorded the end of the call.
func (r *Record) Terminal() bool {
	if _, ok := r.Value(FieldDisconnectTime); ok {
		return true
	}
	_, ok := r.Value(FieldDisconnectReason)
	return ok
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = make([]Field, len(r.Fields))
	copy(c.Fields, r.Fields)
	return &c
}

// Equal compares identity and status fields.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.ContactID != o.ContactID || r.InstanceID != o.InstanceID || !r.StartTime.Equal(o.StartTime) {
		return false
	}
	if len(r.Fields) != len(o.Fields) {
		return false
	}
	for i := range r.Fields {
		if r.Fields[i] != o.Fields[i] {
			return false
		}
	}
	return true
}

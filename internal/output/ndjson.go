package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vburojevic/obcall/internal/deploy"
	"github.com/vburojevic/obcall/internal/domain"
)

// SchemaVersion is bumped on incompatible NDJSON changes.
const SchemaVersion = 1

// RecordOutput is one session record snapshot.
type RecordOutput struct {
	Type          string         `json:"type"` // "record"
	SchemaVersion int            `json:"schemaVersion"`
	Event         string         `json:"event"` // call, refresh, show, watch
	ContactID     string         `json:"contact_id"`
	InstanceID    string         `json:"instance_id"`
	Fields        []domain.Field `json:"fields"`
	Terminal      bool           `json:"terminal"`
}

// ErrorOutput reports a failed command.
type ErrorOutput struct {
	Type          string `json:"type"` // "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
	Retryable     bool   `json:"retryable,omitempty"`
}

// MessageOutput is an informational or warning line.
type MessageOutput struct {
	Type          string `json:"type"` // "info" or "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// ContactOutput is the provider's contact detail as last described.
type ContactOutput struct {
	Type          string `json:"type"` // "contact"
	SchemaVersion int    `json:"schemaVersion"`
	domain.Contact
}

// ExportOutput reports a written CSV file.
type ExportOutput struct {
	Type          string `json:"type"` // "export"
	SchemaVersion int    `json:"schemaVersion"`
	Path          string `json:"path"`
	Rows          int    `json:"rows"`
}

// ArtifactsOutput lists deployment artifact presence.
type ArtifactsOutput struct {
	Type          string                  `json:"type"` // "artifacts"
	SchemaVersion int                     `json:"schemaVersion"`
	Artifacts     []deploy.ArtifactStatus `json:"artifacts"`
	AllPresent    bool                    `json:"all_present"`
}

// DeployOutput is the outcome of a deployment.
type DeployOutput struct {
	Type          string `json:"type"` // "deploy"
	SchemaVersion int    `json:"schemaVersion"`
	deploy.Result
}

// NDJSONWriter writes one JSON object per line.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer over w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

func (w *NDJSONWriter) write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// WriteRecord writes a record snapshot.
func (w *NDJSONWriter) WriteRecord(event string, rec *domain.Record) error {
	return w.write(&RecordOutput{
		Type:          "record",
		SchemaVersion: SchemaVersion,
		Event:         event,
		ContactID:     rec.ContactID,
		InstanceID:    rec.InstanceID,
		Fields:        rec.Fields,
		Terminal:      rec.Terminal(),
	})
}

// WriteError writes an error line with an optional hint.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := &ErrorOutput{Type: "error", SchemaVersion: SchemaVersion, Code: code, Message: message}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.write(out)
}

// WriteProviderError writes an error line carrying the retryable flag.
func (w *NDJSONWriter) WriteProviderError(code string, pe *domain.ProviderError, hint string) error {
	return w.write(&ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       pe.Error(),
		Hint:          hint,
		Retryable:     pe.Retryable(),
	})
}

// WriteInfo writes an informational line.
func (w *NDJSONWriter) WriteInfo(message string) error {
	return w.write(&MessageOutput{Type: "info", SchemaVersion: SchemaVersion, Message: message})
}

// WriteWarning writes a warning line.
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.write(&MessageOutput{Type: "warning", SchemaVersion: SchemaVersion, Message: message})
}

// WriteContact writes the provider's contact detail.
func (w *NDJSONWriter) WriteContact(contact domain.Contact) error {
	return w.write(&ContactOutput{Type: "contact", SchemaVersion: SchemaVersion, Contact: contact})
}

// WriteExport reports an exported file.
func (w *NDJSONWriter) WriteExport(path string, rows int) error {
	return w.write(&ExportOutput{Type: "export", SchemaVersion: SchemaVersion, Path: path, Rows: rows})
}

// WriteArtifacts reports artifact presence.
func (w *NDJSONWriter) WriteArtifacts(artifacts []deploy.ArtifactStatus) error {
	all := true
	for _, a := range artifacts {
		all = all && a.Exists
	}
	return w.write(&ArtifactsOutput{Type: "artifacts", SchemaVersion: SchemaVersion, Artifacts: artifacts, AllPresent: all})
}

// WriteDeploy reports a deployment result.
func (w *NDJSONWriter) WriteDeploy(res deploy.Result) error {
	return w.write(&DeployOutput{Type: "deploy", SchemaVersion: SchemaVersion, Result: res})
}

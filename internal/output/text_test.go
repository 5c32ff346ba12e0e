package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/obcall/internal/deploy"
	"github.com/vburojevic/obcall/internal/domain"
)

func TestTextWriteRecord(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	require.NoError(t, w.WriteRecord("Call placed", testRecord()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Call placed\n"))
	assert.Contains(t, out, "abc-123")
	assert.Contains(t, out, "CUSTOMER_DISCONNECT")
	assert.Less(t, strings.Index(out, "ContactId"), strings.Index(out, "DisconnectReason"))
}

func TestTextWriteDeploy(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	w.WriteDeploy(deploy.Result{Success: false, Stderr: "bootstrap failed: denied"})
	assert.Equal(t, "Deployment failed\nbootstrap failed: denied\n", buf.String())
}

func TestTextWriteArtifacts(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	w.WriteArtifacts([]deploy.ArtifactStatus{{Name: "flow.json", Exists: true}, {Name: "lex.zip"}})
	assert.Contains(t, buf.String(), "✓ flow.json")
	assert.Contains(t, buf.String(), "✗ lex.zip - file not found")
}

func TestTextWriteContact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	disconnected := time.Date(2025, 8, 1, 9, 0, 40, 0, time.UTC)
	contact := domain.Contact{ContactID: "abc-123", DisconnectTime: &disconnected, DisconnectReason: "CUSTOMER_DISCONNECT"}
	require.NoError(t, w.WriteContact(contact, domain.TimeFormat{Location: time.UTC}))

	out := buf.String()
	assert.Contains(t, out, "Provider contact")
	assert.Contains(t, out, "2025-08-01 09:00:40")
	assert.Contains(t, out, "CUSTOMER_DISCONNECT")
}

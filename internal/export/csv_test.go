package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/obcall/internal/domain"
)

func TestCSVNilRecord(t *testing.T) {
	data, ok := CSV(nil)
	assert.False(t, ok)
	assert.Empty(t, data)
}

func TestCSVRendersFieldsInOrder(t *testing.T) {
	rec := domain.NewRecord("abc-123", "inst-1", time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), domain.TimeFormat{Location: time.UTC})
	rec.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	rec.Upsert(domain.FieldDisconnectTime, "2025-08-01 09:01:00")

	data, ok := CSV(rec)
	require.True(t, ok)
	want := "Name,Value\n" +
		"ContactId,abc-123\n" +
		"StartTime,2025-08-01 09:00:00\n" +
		"DisconnectTimestamp,2025-08-01 09:01:00\n" +
		"DisconnectReason,CUSTOMER_DISCONNECT\n"
	assert.Equal(t, want, string(data))
}

func TestCSVQuotesValues(t *testing.T) {
	rec := domain.NewRecord("abc,123", "inst-1", time.Now(), domain.TimeFormat{Location: time.UTC})
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))
	assert.Contains(t, buf.String(), `ContactId,"abc,123"`)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "contact_data.csv", Filename(nil))
	assert.Equal(t, "contact_abc-123.csv", Filename(&domain.Record{ContactID: "abc-123"}))
}

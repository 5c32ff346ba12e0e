package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordStartsWithContactAndStartTime(t *testing.T) {
	start := time.Date(2025, 8, 1, 9, 30, 15, 0, time.UTC)
	rec := NewRecord("abc-123", "inst-1", start, TimeFormat{Location: time.UTC})

	require.Equal(t, []string{FieldContactID, FieldStartTime}, rec.Names())
	v, ok := rec.Value(FieldStartTime)
	require.True(t, ok)
	assert.Equal(t, "2025-08-01 09:30:15", v)
}

func TestUpsertKeepsCanonicalOrder(t *testing.T) {
	rec := NewRecord("abc-123", "inst-1", time.Now(), TimeFormat{Location: time.UTC})

	rec.Upsert(FieldDetectionResult, "HUMAN")
	rec.Upsert(FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	rec.Upsert(FieldInitiationTime, "2025-08-01 09:30:16")
	rec.Upsert(FieldAgentConnectTime, "2025-08-01 09:30:20")

	assert.Equal(t, []string{
		FieldContactID,
		FieldStartTime,
		FieldInitiationTime,
		FieldAgentConnectTime,
		FieldDisconnectReason,
		FieldDetectionResult,
	}, rec.Names())
}

func TestUpsertOverwritesInPlace(t *testing.T) {
	rec := NewRecord("abc-123", "inst-1", time.Now(), TimeFormat{Location: time.UTC})
	rec.Upsert(FieldDisconnectReason, "UNKNOWN")
	rec.Upsert(FieldDisconnectReason, "CUSTOMER_DISCONNECT")

	require.Len(t, rec.Fields, 3)
	v, _ := rec.Value(FieldDisconnectReason)
	assert.Equal(t, "CUSTOMER_DISCONNECT", v)
}

func TestUpsertIgnoresEmptyValue(t *testing.T) {
	rec := NewRecord("abc-123", "inst-1", time.Now(), TimeFormat{Location: time.UTC})
	rec.Upsert(FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	rec.Upsert(FieldDisconnectReason, "  ")

	v, ok := rec.Value(FieldDisconnectReason)
	require.True(t, ok)
	assert.Equal(t, "CUSTOMER_DISCONNECT", v)
}

func TestCloneIsIndependent(t *testing.T) {
	rec := NewRecord("abc-123", "inst-1", time.Now(), TimeFormat{Location: time.UTC})
	c := rec.Clone()
	c.Upsert(FieldDisconnectReason, "CUSTOMER_DISCONNECT")

	assert.Len(t, rec.Fields, 2)
	assert.Len(t, c.Fields, 3)
	assert.False(t, rec.Equal(c))
	assert.True(t, rec.Equal(rec.Clone()))
}

func TestTerminal(t *testing.T) {
	rec := NewRecord("abc-123", "inst-1", time.Now(), TimeFormat{Location: time.UTC})
	assert.False(t, rec.Terminal())
	rec.Upsert(FieldDisconnectTime, "2025-08-01 09:31:00")
	assert.True(t, rec.Terminal())
}

func TestParseTimeFormat(t *testing.T) {
	tf, err := ParseTimeFormat("utc")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, tf.Location)

	tf, err = ParseTimeFormat("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, tf.Location)

	_, err = ParseTimeFormat("Not/AZone")
	assert.Error(t, err)

	ts := time.Date(2025, 8, 1, 1, 2, 3, 999, time.FixedZone("X", 3600))
	assert.Equal(t, "2025-08-01 00:02:03", TimeFormat{Location: time.UTC}.Format(ts))
}

func TestErrorHelpers(t *testing.T) {
	verr := fmt.Errorf("wrapped: %w", &ValidationError{Field: "destination_number", Message: "required"})
	assert.True(t, IsValidation(verr))
	assert.False(t, IsState(verr))

	assert.True(t, IsState(ErrNoSession))

	cause := errors.New("boom")
	perr := fmt.Errorf("ctx: %w", &ProviderError{Op: "DescribeContact", Kind: KindTimeout, Message: "deadline", Err: cause})
	pe, ok := AsProvider(perr)
	require.True(t, ok)
	assert.True(t, pe.Retryable())
	assert.ErrorIs(t, perr, cause)

	terminal := &ProviderError{Op: "PlaceOutboundCall", Code: "InvalidParameterException", Message: "bad", Kind: KindTerminal}
	assert.False(t, terminal.Retryable())
	assert.Equal(t, "PlaceOutboundCall: InvalidParameterException: bad", terminal.Error())
}

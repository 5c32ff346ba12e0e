package call

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/session"
)

func newTestService(client *mockClient) (*Service, *session.Store) {
	in, _ := newTestInitiator(client)
	store := session.NewStore()
	return NewService(in, NewReconciler(client, time.Second, utc, nil), store, nil), store
}

type fakePersister struct {
	replaced  int
	updates   []uint64
	updateErr error
}

func (f *fakePersister) Replace(*session.Store) error {
	f.replaced++
	return nil
}

func (f *fakePersister) Update(base uint64, _ *session.Store) error {
	f.updates = append(f.updates, base)
	return f.updateErr
}

func TestServiceCallStoresRecord(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	svc, store := newTestService(client)

	persist := &fakePersister{}
	svc.Persist = persist

	rec, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", rec.ContactID)
	assert.Equal(t, "abc-123", store.Get().ContactID)
	assert.Equal(t, 1, persist.replaced)
	assert.Empty(t, persist.updates)
}

func TestServiceFailedCallKeepsPreviousSession(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("", &domain.ProviderError{Op: "PlaceOutboundCall", Message: "denied", Kind: domain.KindTerminal}).Once()
	svc, store := newTestService(client)

	_, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Call(context.Background(), validRequest())
	require.Error(t, err)

	assert.Equal(t, "abc-123", store.Get().ContactID)
}

func TestServiceRefreshWithoutSession(t *testing.T) {
	client := &mockClient{}
	svc, _ := newTestService(client)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)
	client.AssertNumberOfCalls(t, "DescribeContact", 0)
}

func TestServiceRefreshWritesBack(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	client.On("DescribeContact", anyContext(), "inst-1", "abc-123").Return(domain.Contact{DisconnectReason: "CUSTOMER_DISCONNECT"}, nil).Once()
	svc, store := newTestService(client)

	_, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	v, ok := store.Get().Value(domain.FieldDisconnectReason)
	require.True(t, ok)
	assert.Equal(t, "CUSTOMER_DISCONNECT", v)
}

func TestServiceRefreshFailureLeavesStoreUntouched(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	client.On("DescribeContact", anyContext(), mock.Anything, mock.Anything).Return(domain.Contact{}, errors.New("boom")).Once()
	svc, store := newTestService(client)

	_, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	before, gen := store.Snapshot()

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	after, afterGen := store.Snapshot()
	assert.Equal(t, gen, afterGen)
	assert.True(t, before.Equal(after))
}

func TestServiceRefreshRacingNewCallIsDiscarded(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("first", nil).Once()
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("second", nil).Once()
	svc, store := newTestService(client)

	_, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)

	client.On("DescribeContact", anyContext(), "inst-1", "first").Run(func(mock.Arguments) {
		_, callErr := svc.Call(context.Background(), validRequest())
		require.NoError(t, callErr)
	}).Return(domain.Contact{DisconnectReason: "CUSTOMER_DISCONNECT"}, nil).Once()

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsState(err))

	current := store.Get()
	assert.Equal(t, "second", current.ContactID)
	_, ok := current.Value(domain.FieldDisconnectReason)
	assert.False(t, ok)
}

func TestServiceExport(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	svc, _ := newTestService(client)

	_, _, err := svc.Export()
	assert.ErrorIs(t, err, domain.ErrNoSession)

	_, err = svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	data, rec, err := svc.Export()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", rec.ContactID)
	assert.Equal(t, "Name,Value\nContactId,abc-123\nStartTime,2025-08-01 09:30:00\n", string(data))
}

func TestServiceRefreshPersistsFromStartingGeneration(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	client.On("DescribeContact", anyContext(), "inst-1", "abc-123").Return(domain.Contact{}, nil).Twice()
	svc, store := newTestService(client)
	persist := &fakePersister{}
	svc.Persist = persist

	_, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	_, base := store.Snapshot()

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{base, base + 1}, persist.updates)
}

func TestServiceRefreshOfReplacedSavedSessionFails(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	client.On("DescribeContact", anyContext(), "inst-1", "abc-123").Return(domain.Contact{DisconnectReason: "CUSTOMER_DISCONNECT"}, nil).Once()
	svc, _ := newTestService(client)
	svc.Persist = &fakePersister{updateErr: &domain.StateError{Message: "session was replaced by a newer call"}}

	_, err := svc.Call(context.Background(), validRequest())
	require.NoError(t, err)

	rec, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsState(err))
	assert.Nil(t, rec)
}

func TestServiceValidateSkipsProvider(t *testing.T) {
	client := &mockClient{}
	svc, _ := newTestService(client)

	req := validRequest()
	req.DestinationNumber = "12"
	err := svc.Validate(req)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, svc.Validate(validRequest()))
	client.AssertNumberOfCalls(t, "PlaceOutboundCall", 0)
}

func TestServiceDescribe(t *testing.T) {
	client := &mockClient{}
	client.On("PlaceOutboundCall", anyContext(), mock.Anything).Return("abc-123", nil).Once()
	client.On("DescribeContact", anyContext(), "inst-1", "abc-123").Return(domain.Contact{ContactID: "abc-123", DisconnectReason: "TELECOM_PROBLEM"}, nil).Once()
	svc, store := newTestService(client)

	_, err := svc.Describe(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)

	_, err = svc.Call(context.Background(), validRequest())
	require.NoError(t, err)
	contact, err := svc.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TELECOM_PROBLEM", contact.DisconnectReason)

	_, ok := store.Get().Value(domain.FieldDisconnectReason)
	assert.False(t, ok)
}

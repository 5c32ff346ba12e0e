package call

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/provider"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PlaceOutboundCall(ctx context.Context, in provider.PlaceCallInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *mockClient) DescribeContact(ctx context.Context, instanceID, contactID string) (domain.Contact, error) {
	args := m.Called(ctx, instanceID, contactID)
	return args.Get(0).(domain.Contact), args.Error(1)
}

func anyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

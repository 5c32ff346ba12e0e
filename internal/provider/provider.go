// Package provider adapts the contact-center API to the types the call
// session works with. Untyped provider shapes stay inside this package.
package provider

import (
	"context"

	"github.com/vburojevic/obcall/internal/domain"
)

// PlaceCallInput is one outbound voice contact request.
type PlaceCallInput struct {
	DestinationNumber string
	FlowID            string
	InstanceID        string
	SourceNumber      string // Optional; provider default when empty
	Attributes        map[string]string
	ClientToken       string
}

// Client is the contact-center API surface the call session depends on.
type Client interface {
	PlaceOutboundCall(ctx context.Context, in PlaceCallInput) (contactID string, err error)
	DescribeContact(ctx context.Context, instanceID, contactID string) (domain.Contact, error)
}

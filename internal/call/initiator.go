// Package call places outbound calls and keeps their session records in
// step with the provider.
package call

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/provider"
)

// AttributeCallerLabel carries the caller label to the contact flow.
const AttributeCallerLabel = "UserName"

// InitiateRequest is one outbound call request.
type InitiateRequest struct {
	DestinationNumber string
	CallerLabel       string
	FlowID            string
	InstanceID        string
	SourceNumber      string // Optional
}

// InitiatorOptions configures an Initiator. Zero values pick defaults.
type InitiatorOptions struct {
	Validator  PhoneValidator
	Attributes map[string]string // Static attributes, e.g. LanguageCode
	Timeout    time.Duration
	TimeFormat domain.TimeFormat
	Clock      clock.Clock
	NewToken   func() string
	Logger     *zap.SugaredLogger
}

// Initiator validates and submits outbound call requests.
type Initiator struct {
	client     provider.Client
	validator  PhoneValidator
	attributes map[string]string
	timeout    time.Duration
	timeFormat domain.TimeFormat
	clock      clock.Clock
	newToken   func() string
	log        *zap.SugaredLogger
}

// NewInitiator creates an Initiator over client.
func NewInitiator(client provider.Client, opts InitiatorOptions) *Initiator {
	in := &Initiator{
		client:     client,
		validator:  opts.Validator,
		attributes: opts.Attributes,
		timeout:    opts.Timeout,
		timeFormat: opts.TimeFormat,
		clock:      opts.Clock,
		newToken:   opts.NewToken,
		log:        opts.Logger,
	}
	if in.validator == nil {
		in.validator = E164()
	}
	if in.clock == nil {
		in.clock = clock.New()
	}
	if in.newToken == nil {
		in.newToken = uuid.NewString
	}
	if in.log == nil {
		in.log = zap.NewNop().Sugar()
	}
	return in
}

// Initiate places the call. On success the returned record carries only
// ContactId and StartTime; on failure no record is returned.
func (i *Initiator) Initiate(ctx context.Context, req InitiateRequest) (*domain.Record, error) {
	if err := i.Validate(req); err != nil {
		return nil, err
	}

	attrs := make(map[string]string, len(i.attributes)+1)
	for k, v := range i.attributes {
		attrs[k] = v
	}
	attrs[AttributeCallerLabel] = strings.TrimSpace(req.CallerLabel)

	in := provider.PlaceCallInput{
		DestinationNumber: req.DestinationNumber,
		FlowID:            req.FlowID,
		InstanceID:        req.InstanceID,
		SourceNumber:      strings.TrimSpace(req.SourceNumber),
		Attributes:        attrs,
		ClientToken:       i.newToken(),
	}

	callCtx, cancel := provider.WithTimeout(ctx, i.timeout)
	defer cancel()
	contactID, err := i.client.PlaceOutboundCall(callCtx, in)
	if err != nil {
		i.log.Debugw("place outbound call failed", "destination", req.DestinationNumber, "error", err)
		return nil, err
	}

	rec := domain.NewRecord(contactID, req.InstanceID, i.clock.Now(), i.timeFormat)
	i.log.Debugw("outbound call placed", "contact_id", contactID, "destination", req.DestinationNumber)
	return rec, nil
}

// Validate checks req in the order Initiate does, without a provider call.
func (i *Initiator) Validate(req InitiateRequest) error {
	if strings.TrimSpace(req.DestinationNumber) == "" {
		return &domain.ValidationError{Field: "destination_number", Message: "is required"}
	}
	if err := i.validator.Validate(req.DestinationNumber); err != nil {
		return err
	}
	if strings.TrimSpace(req.CallerLabel) == "" {
		return &domain.ValidationError{Field: "caller_label", Message: "is required"}
	}
	if strings.TrimSpace(req.FlowID) == "" {
		return &domain.ValidationError{Field: "flow_id", Message: "is required"}
	}
	if strings.TrimSpace(req.InstanceID) == "" {
		return &domain.ValidationError{Field: "instance_id", Message: "is required"}
	}
	return nil
}

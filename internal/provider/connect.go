package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	"github.com/aws/smithy-go"
	"github.com/samber/lo"

	"github.com/vburojevic/obcall/internal/domain"
)

// DefaultDetectionAttribute is the contact attribute the voicemail flow
// writes its answering machine detection result to.
const DefaultDetectionAttribute = "amd_result"

var retryableCodes = []string{
	"ThrottlingException",
	"LimitExceededException",
	"InternalServiceException",
	"ServiceQuotaExceededException",
	"TooManyRequestsException",
}

type connectAPI interface {
	StartOutboundVoiceContact(ctx context.Context, params *connect.StartOutboundVoiceContactInput, optFns ...func(*connect.Options)) (*connect.StartOutboundVoiceContactOutput, error)
	DescribeContact(ctx context.Context, params *connect.DescribeContactInput, optFns ...func(*connect.Options)) (*connect.DescribeContactOutput, error)
	GetContactAttributes(ctx context.Context, params *connect.GetContactAttributesInput, optFns ...func(*connect.Options)) (*connect.GetContactAttributesOutput, error)
}

// Connect talks to Amazon Connect.
type Connect struct {
	client             connectAPI
	detectionAttribute string
}

// NewConnect loads the default AWS configuration for region.
func NewConnect(ctx context.Context, region, detectionAttribute string) (*Connect, error) {
	if strings.TrimSpace(region) == "" {
		return nil, fmt.Errorf("missing region")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newConnect(connect.NewFromConfig(cfg), detectionAttribute), nil
}

func newConnect(client connectAPI, detectionAttribute string) *Connect {
	if strings.TrimSpace(detectionAttribute) == "" {
		detectionAttribute = DefaultDetectionAttribute
	}
	return &Connect{client: client, detectionAttribute: detectionAttribute}
}

func (c *Connect) PlaceOutboundCall(ctx context.Context, in PlaceCallInput) (string, error) {
	params := &connect.StartOutboundVoiceContactInput{
		DestinationPhoneNumber: aws.String(in.DestinationNumber),
		ContactFlowId:          aws.String(in.FlowID),
		InstanceId:             aws.String(in.InstanceID),
		Attributes:             in.Attributes,
	}
	if in.SourceNumber != "" {
		params.SourcePhoneNumber = aws.String(in.SourceNumber)
	}
	if in.ClientToken != "" {
		params.ClientToken = aws.String(in.ClientToken)
	}
	out, err := c.client.StartOutboundVoiceContact(ctx, params)
	if err != nil {
		return "", classify("PlaceOutboundCall", err)
	}
	contactID := aws.ToString(out.ContactId)
	if contactID == "" {
		return "", &domain.ProviderError{Op: "PlaceOutboundCall", Message: "response carried no contact id", Kind: domain.KindTerminal}
	}
	return contactID, nil
}

func (c *Connect) DescribeContact(ctx context.Context, instanceID, contactID string) (domain.Contact, error) {
	out, err := c.client.DescribeContact(ctx, &connect.DescribeContactInput{
		InstanceId: aws.String(instanceID),
		ContactId:  aws.String(contactID),
	})
	if err != nil {
		return domain.Contact{}, classify("DescribeContact", err)
	}
	if out.Contact == nil {
		return domain.Contact{}, &domain.ProviderError{Op: "DescribeContact", Message: "response carried no contact", Kind: domain.KindTerminal}
	}
	attrs, err := c.client.GetContactAttributes(ctx, &connect.GetContactAttributesInput{
		InstanceId:       aws.String(instanceID),
		InitialContactId: aws.String(contactID),
	})
	if err != nil {
		return domain.Contact{}, classify("GetContactAttributes", err)
	}

	ct := out.Contact
	contact := domain.Contact{
		ContactID:         lo.CoalesceOrEmpty(aws.ToString(ct.Id), contactID),
		InitiationTime:    ct.InitiationTimestamp,
		SystemConnectTime: ct.ConnectedToSystemTimestamp,
		DisconnectTime:    ct.DisconnectTimestamp,
		DisconnectReason:  aws.ToString(ct.DisconnectReason),
	}
	if ct.AgentInfo != nil {
		contact.AgentConnectTime = ct.AgentInfo.ConnectedToAgentTimestamp
	}
	if attrs != nil {
		contact.DetectionResult = attrs.Attributes[c.detectionAttribute]
	}
	return contact, nil
}

// classify maps an SDK error onto the provider error taxonomy.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ProviderError{Op: op, Message: "request timed out", Kind: domain.KindTimeout, Err: err}
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		kind := domain.KindTerminal
		if lo.Contains(retryableCodes, ae.ErrorCode()) {
			kind = domain.KindRetryable
		}
		return &domain.ProviderError{Op: op, Code: ae.ErrorCode(), Message: ae.ErrorMessage(), Kind: kind, Err: err}
	}
	return &domain.ProviderError{Op: op, Message: err.Error(), Kind: domain.KindTerminal, Err: err}
}

// WithTimeout bounds a provider call; zero disables the bound.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

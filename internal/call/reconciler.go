package call

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/provider"
)

// Reconciler merges the provider's contact detail into session records.
type Reconciler struct {
	client     provider.Client
	timeout    time.Duration
	timeFormat domain.TimeFormat
	log        *zap.SugaredLogger
}

// NewReconciler creates a Reconciler; timeout bounds each describe call.
func NewReconciler(client provider.Client, timeout time.Duration, tf domain.TimeFormat, log *zap.SugaredLogger) *Reconciler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reconciler{client: client, timeout: timeout, timeFormat: tf, log: log}
}

// Reconcile queries the provider and upserts every reported field into rec.
// On error rec is returned untouched.
func (r *Reconciler) Reconcile(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	if rec == nil {
		return nil, domain.ErrNoSession
	}
	if rec.ContactID == "" || rec.InstanceID == "" {
		return rec, &domain.StateError{Message: "record is missing contact id or instance id"}
	}

	contact, err := r.Describe(ctx, rec)
	if err != nil {
		r.log.Debugw("describe contact failed", "contact_id", rec.ContactID, "error", err)
		return rec, err
	}

	Merge(rec, contact, r.timeFormat)
	r.log.Debugw("contact reconciled", "contact_id", rec.ContactID, "fields", rec.Names())
	return rec, nil
}

// Describe queries the provider for rec's contact without touching rec.
func (r *Reconciler) Describe(ctx context.Context, rec *domain.Record) (domain.Contact, error) {
	if rec == nil {
		return domain.Contact{}, domain.ErrNoSession
	}
	if rec.ContactID == "" || rec.InstanceID == "" {
		return domain.Contact{}, &domain.StateError{Message: "record is missing contact id or instance id"}
	}
	callCtx, cancel := provider.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.DescribeContact(callCtx, rec.InstanceID, rec.ContactID)
}

// Merge upserts the fields present in contact. Fields absent from contact
// keep their previous values.
func Merge(rec *domain.Record, contact domain.Contact, tf domain.TimeFormat) {
	stamp := func(name string, t *time.Time) {
		if t != nil && !t.IsZero() {
			rec.Upsert(name, tf.Format(*t))
		}
	}
	stamp(domain.FieldInitiationTime, contact.InitiationTime)
	stamp(domain.FieldSystemConnectTime, contact.SystemConnectTime)
	stamp(domain.FieldAgentConnectTime, contact.AgentConnectTime)
	stamp(domain.FieldDisconnectTime, contact.DisconnectTime)
	rec.Upsert(domain.FieldDisconnectReason, contact.DisconnectReason)
	rec.Upsert(domain.FieldDetectionResult, contact.DetectionResult)
}

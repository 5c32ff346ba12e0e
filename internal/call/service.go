package call

import (
	"context"

	"go.uber.org/zap"

	"github.com/vburojevic/obcall/internal/domain"
	"github.com/vburojevic/obcall/internal/export"
	"github.com/vburojevic/obcall/internal/session"
)

// Service runs the call workflow against one session store: initiate then
// store, reconcile then store, export on demand.
type Service struct {
	initiator  *Initiator
	reconciler *Reconciler
	store      *session.Store
	log        *zap.SugaredLogger

	// Persist saves the store after each write; nil keeps the session in memory.
	Persist Persister
}

// Persister saves a store outside the process. Replace follows a new call.
// Update follows a refresh that started from generation base and must fail
// with a *domain.StateError when the saved session has moved on since.
type Persister interface {
	Replace(store *session.Store) error
	Update(base uint64, store *session.Store) error
}

// NewService wires the workflow.
func NewService(initiator *Initiator, reconciler *Reconciler, store *session.Store, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{initiator: initiator, reconciler: reconciler, store: store, log: log}
}

// Call places a call and makes it the active session. Nothing is stored
// when initiation fails.
func (s *Service) Call(ctx context.Context, req InitiateRequest) (*domain.Record, error) {
	rec, err := s.initiator.Initiate(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Put(rec); err != nil {
		return nil, err
	}
	if s.Persist != nil {
		if err := s.Persist.Replace(s.store); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Validate checks req without contacting the provider.
func (s *Service) Validate(req InitiateRequest) error {
	return s.initiator.Validate(req)
}

// Refresh reconciles the active session with the provider.
func (s *Service) Refresh(ctx context.Context) (*domain.Record, error) {
	rec, gen := s.store.Snapshot()
	if rec == nil {
		return nil, domain.ErrNoSession
	}
	updated, err := s.reconciler.Reconcile(ctx, rec)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.CompareAndPut(gen, updated); err != nil {
		s.log.Debugw("discarding stale refresh", "contact_id", updated.ContactID, "generation", gen)
		return nil, err
	}
	if s.Persist != nil {
		if err := s.Persist.Update(gen, s.store); err != nil {
			if domain.IsState(err) {
				s.log.Debugw("discarding refresh of a replaced session", "contact_id", updated.ContactID, "generation", gen)
				return nil, err
			}
			return updated, err
		}
	}
	return updated, nil
}

// Describe fetches the provider's current contact detail for the active
// session without merging it.
func (s *Service) Describe(ctx context.Context) (domain.Contact, error) {
	rec := s.store.Get()
	if rec == nil {
		return domain.Contact{}, domain.ErrNoSession
	}
	return s.reconciler.Describe(ctx, rec)
}

// Current returns the active session record.
func (s *Service) Current() (*domain.Record, error) {
	rec := s.store.Get()
	if rec == nil {
		return nil, domain.ErrNoSession
	}
	return rec, nil
}

// Export renders the active session as CSV.
func (s *Service) Export() ([]byte, *domain.Record, error) {
	rec := s.store.Get()
	data, ok := export.CSV(rec)
	if !ok {
		return nil, nil, domain.ErrNoSession
	}
	return data, rec, nil
}

package period

import (
	"context"
	"fmt"
)

// DraftCounter reports how many draft rows of a period compute clean.
// Satisfied by the draft store; nil disables the close guard.
type DraftCounter interface {
	CountValidEmployees(ctx context.Context, companyID, periodID string) (int, error)
}

// Service applies the lifecycle guards on top of the store. Every status
// change goes through a transition check; the store never enforces them.
type Service struct {
	store  StoreAPI
	drafts DraftCounter
}

func NewService(store StoreAPI, drafts DraftCounter) *Service {
	return &Service{store: store, drafts: drafts}
}

func (s *Service) Get(ctx context.Context, companyID, periodID string) (Period, error) {
	return s.store.GetPeriod(ctx, companyID, periodID)
}

func (s *Service) List(ctx context.Context, companyID string, limit, offset int) ([]Period, int, error) {
	periods, err := s.store.ListPeriods(ctx, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountPeriods(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}

func (s *Service) Create(ctx context.Context, companyID string, rng Range) (Period, error) {
	if !ValidType(rng.Type) {
		return Period{}, fmt.Errorf("invalid period type %q", rng.Type)
	}
	if rng.EndDate.Before(rng.StartDate) {
		return Period{}, fmt.Errorf("period end date before start date")
	}
	id, err := s.store.CreatePeriod(ctx, companyID, rng)
	if err != nil {
		return Period{}, err
	}
	return s.store.GetPeriod(ctx, companyID, id)
}

func (s *Service) transition(ctx context.Context, companyID, periodID, to string) (Period, error) {
	p, err := s.store.GetPeriod(ctx, companyID, periodID)
	if err != nil {
		return Period{}, err
	}
	if !CanTransition(p.Status, to) {
		return Period{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}
	if err := s.store.UpdateStatus(ctx, companyID, periodID, to); err != nil {
		return Period{}, err
	}
	p.Status = to
	p.DisplayStatus = DisplayState(to)
	return p, nil
}

// Reopen moves a closed or errored period back to reabierto. The caller
// resolves the actor's reopen permission; everything else is checked here.
func (s *Service) Reopen(ctx context.Context, companyID, periodID string, actorCanReopen bool) (Period, error) {
	p, err := s.store.GetPeriod(ctx, companyID, periodID)
	if err != nil {
		return Period{}, err
	}
	if err := CanReopen(p, actorCanReopen); err != nil {
		return Period{}, err
	}
	return s.transition(ctx, companyID, periodID, StatusReabierto)
}

// Close moves the period to cerrado. A period whose draft holds no valid
// line item cannot be closed; there would be nothing to liquidate.
func (s *Service) Close(ctx context.Context, companyID, periodID string) (Period, error) {
	if s.drafts != nil {
		valid, err := s.drafts.CountValidEmployees(ctx, companyID, periodID)
		if err != nil {
			return Period{}, err
		}
		if valid == 0 {
			return Period{}, ErrNoValidEmployees
		}
	}
	return s.transition(ctx, companyID, periodID, StatusCerrado)
}

func (s *Service) Liquidate(ctx context.Context, companyID, periodID string) (Period, error) {
	return s.transition(ctx, companyID, periodID, StatusProcesada)
}

func (s *Service) MarkPaid(ctx context.Context, companyID, periodID string) (Period, error) {
	return s.transition(ctx, companyID, periodID, StatusPagada)
}

func (s *Service) MarkErrored(ctx context.Context, companyID, periodID string) (Period, error) {
	return s.transition(ctx, companyID, periodID, StatusConErrores)
}

// FinishEdit closes out a reabierto period once its edit session persisted.
func (s *Service) FinishEdit(ctx context.Context, companyID, periodID string) (Period, error) {
	return s.transition(ctx, companyID, periodID, StatusEditado)
}

func (s *Service) MarkReported(ctx context.Context, companyID, periodID string) error {
	return s.store.MarkReported(ctx, companyID, periodID)
}

func (s *Service) TouchActivity(ctx context.Context, companyID, periodID string) error {
	return s.store.UpdateActivity(ctx, companyID, periodID)
}

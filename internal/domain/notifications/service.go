package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nomina/internal/domain/autosave"
)

// Publisher pushes a notification to connected clients. The realtime
// hub satisfies this; a nil publisher means store-only delivery.
type Publisher interface {
	PublishNotification(companyID string, n Notification)
}

type Service struct {
	store     StoreAPI
	publisher Publisher
}

func New(store StoreAPI, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

func (s *Service) Create(ctx context.Context, companyID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, companyID, userID, ntype, title, body); err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.PublishNotification(companyID, Notification{
			Type:      ntype,
			Title:     title,
			Body:      body,
			CreatedAt: time.Now(),
		})
	}
	return nil
}

func (s *Service) List(ctx context.Context, companyID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, companyID, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, companyID, userID string) (int, error) {
	return s.store.CountUnread(ctx, companyID, userID)
}

func (s *Service) MarkRead(ctx context.Context, companyID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, companyID, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, companyID, userID string) error {
	return s.store.MarkAllRead(ctx, companyID, userID)
}

// SaveListener turns auto-save outcomes for one company/user into
// notifications. Duplicate-key conflicts and skipped cycles stay
// silent: a conflict means the data is already persisted and a skip is
// resolved by the next debounce, so neither is worth alerting on.
func (s *Service) SaveListener(companyID, userID string) func(autosave.Result) {
	return func(r autosave.Result) {
		switch r.Kind {
		case autosave.ResultFailed:
			err := s.Create(context.Background(), companyID, userID, TypeSaveFailed,
				"No se pudo guardar la nómina",
				fmt.Sprintf("El guardado automático del periodo falló: %v. Los cambios siguen pendientes y se reintentarán.", r.Err))
			if err != nil {
				slog.Error("save-failure notification failed", "period_id", r.PeriodID, "error", err)
			}
		case autosave.ResultConflict:
			slog.Info("auto-save conflict reconciled silently", "period_id", r.PeriodID)
		case autosave.ResultSkipped:
			slog.Debug("auto-save cycle skipped", "period_id", r.PeriodID)
		}
	}
}

package sessionshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/audit"
	"nomina/internal/domain/auth"
	"nomina/internal/domain/draft"
	"nomina/internal/domain/period"
	"nomina/internal/domain/session"
	"nomina/internal/platform/metrics"
	"nomina/internal/platform/realtime"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
)

type Handler struct {
	Manager *session.Manager
	Audit   *audit.Service
	Hub     *realtime.Hub
	Metrics *metrics.Collector
	Perms   middleware.PermissionStore
}

func NewHandler(manager *session.Manager, auditSvc *audit.Service, hub *realtime.Hub, collector *metrics.Collector, perms middleware.PermissionStore) *Handler {
	return &Handler{Manager: manager, Audit: auditSvc, Hub: hub, Metrics: collector, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods/{periodID}/session", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermNominaReopen, h.Perms)).Post("/", h.handleStart)
		r.With(middleware.RequirePermission(auth.PermNominaReopen, h.Perms)).Get("/", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermNominaReopen, h.Perms)).Post("/changes", h.handleChanges)
		r.With(middleware.RequirePermission(auth.PermNominaReopen, h.Perms)).Post("/finish", h.handleFinish)
		r.With(middleware.RequirePermission(auth.PermNominaReopen, h.Perms)).Post("/discard", h.handleDiscard)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	// The route guard already proved the reopen permission.
	s, err := h.Manager.StartEdit(r.Context(), user.CompanyID, user.UserID, periodID, true)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordSessionOpened()
	}
	h.Audit.RecordWithRequest(r.Context(), user.CompanyID, user.UserID, "period_reopened", "payroll_period", periodID, "edit session "+s.ID, reqID)
	if h.Hub != nil {
		h.Hub.Publish(user.CompanyID, realtime.Event{EventType: realtime.EventUpdate, Table: "payroll_periods", New: map[string]any{"id": periodID, "status": period.StatusReabierto}})
	}
	api.Created(w, s, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	s, ok := h.Manager.Get(user.CompanyID, chi.URLParam(r, "periodID"))
	if !ok {
		api.Fail(w, http.StatusNotFound, "no_session", "no active edit session", reqID)
		return
	}
	api.Success(w, s, reqID)
}

type changesRequest struct {
	AddedEmployees    []string                      `json:"addedEmployees"`
	RemovedEmployees  []string                      `json:"removedEmployees"`
	NovedadesAdded    []draft.Novedad               `json:"novedadesAdded"`
	NovedadesModified []draft.Novedad               `json:"novedadesModified"`
	NovedadesDeleted  []string                      `json:"novedadesDeleted"`
	FieldOverrides    map[string]map[string]float64 `json:"fieldOverrides"`
}

// handleChanges records a batch of staged mutations on the session.
// Nothing touches the database until finish.
func (h *Handler) handleChanges(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload changesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if err := h.applyChanges(user.CompanyID, periodID, payload); err != nil {
		h.fail(w, err, reqID)
		return
	}

	s, _ := h.Manager.Get(user.CompanyID, periodID)
	api.Success(w, s, reqID)
}

func (h *Handler) applyChanges(companyID, periodID string, payload changesRequest) error {
	for _, id := range payload.AddedEmployees {
		if err := h.Manager.AddEmployee(companyID, periodID, id); err != nil {
			return err
		}
	}
	for _, id := range payload.RemovedEmployees {
		if err := h.Manager.RemoveEmployee(companyID, periodID, id); err != nil {
			return err
		}
	}
	for _, n := range payload.NovedadesAdded {
		if err := h.Manager.AddNovedad(companyID, periodID, n); err != nil {
			return err
		}
	}
	for _, n := range payload.NovedadesModified {
		if err := h.Manager.ModifyNovedad(companyID, periodID, n); err != nil {
			return err
		}
	}
	for _, id := range payload.NovedadesDeleted {
		if err := h.Manager.DeleteNovedad(companyID, periodID, id); err != nil {
			return err
		}
	}
	for employeeID, overrides := range payload.FieldOverrides {
		for field, value := range overrides {
			if err := h.Manager.OverrideField(companyID, periodID, employeeID, field, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	p, err := h.Manager.FinishEdit(r.Context(), user.CompanyID, periodID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	h.Audit.RecordWithRequest(r.Context(), user.CompanyID, user.UserID, "period_edit_finished", "payroll_period", p.ID, p.Label, reqID)
	if h.Hub != nil {
		h.Hub.Publish(user.CompanyID, realtime.Event{EventType: realtime.EventUpdate, Table: "payroll_periods", New: p})
	}
	api.Success(w, p, reqID)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if err := h.Manager.DiscardChanges(user.CompanyID, periodID); err != nil {
		h.fail(w, err, reqID)
		return
	}

	h.Audit.RecordWithRequest(r.Context(), user.CompanyID, user.UserID, "period_edit_discarded", "payroll_period", periodID, "", reqID)
	api.Success(w, map[string]any{"discarded": true}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, session.ErrSessionConflict):
		api.Fail(w, http.StatusConflict, "session_conflict", "another edit session is active for this period", reqID)
	case errors.Is(err, session.ErrNoActiveSession):
		api.Fail(w, http.StatusNotFound, "no_session", "no active edit session", reqID)
	case errors.Is(err, period.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", reqID)
	case errors.Is(err, period.ErrImmutablePeriod):
		api.Fail(w, http.StatusConflict, "immutable_period", err.Error(), reqID)
	case errors.Is(err, period.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, period.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", reqID)
	}
}

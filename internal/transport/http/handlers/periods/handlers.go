package periodshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/audit"
	"nomina/internal/domain/auth"
	"nomina/internal/domain/detect"
	"nomina/internal/domain/period"
	"nomina/internal/platform/realtime"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
	"nomina/internal/transport/http/shared"
)

type Handler struct {
	Service  *period.Service
	Detector *detect.Detector
	Audit    *audit.Service
	Hub      *realtime.Hub
	Perms    middleware.PermissionStore
}

func NewHandler(service *period.Service, detector *detect.Detector, auditSvc *audit.Service, hub *realtime.Hub, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Detector: detector, Audit: auditSvc, Hub: hub, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermNominaRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermNominaWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermNominaRead, h.Perms)).Get("/detect", h.handleDetect)
		r.With(middleware.RequirePermission(auth.PermNominaRead, h.Perms)).Get("/{periodID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermNominaClose, h.Perms)).Post("/{periodID}/close", h.handleClose)
		r.With(middleware.RequirePermission(auth.PermNominaClose, h.Perms)).Post("/{periodID}/liquidate", h.handleLiquidate)
		r.With(middleware.RequirePermission(auth.PermNominaClose, h.Perms)).Post("/{periodID}/pay", h.handleMarkPaid)
		r.With(middleware.RequirePermission(auth.PermNominaClose, h.Perms)).Post("/{periodID}/mark-errors", h.handleMarkErrored)
		r.With(middleware.RequirePermission(auth.PermNominaClose, h.Perms)).Post("/{periodID}/mark-reported", h.handleMarkReported)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	periods, total, err := h.Service.List(r.Context(), user.CompanyID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "unable to list periods", reqID)
		return
	}

	api.Success(w, map[string]any{
		"items": periods,
		"total": total,
	}, reqID)
}

type createRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
	Label     string `json:"periodo"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid startDate", reqID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid endDate", reqID)
		return
	}

	created, err := h.Service.Create(r.Context(), user.CompanyID, period.Range{
		Label:     payload.Label,
		StartDate: start,
		EndDate:   end,
		Type:      payload.Type,
	})
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
		return
	}

	h.Audit.RecordWithRequest(r.Context(), user.CompanyID, user.UserID, "period_created", "payroll_period", created.ID, created.Label, reqID)
	h.publish(user.CompanyID, realtime.EventInsert, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleDetect(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	api.Success(w, h.Detector.Detect(r.Context(), user.CompanyID), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	p, err := h.Service.Get(r.Context(), user.CompanyID, chi.URLParam(r, "periodID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	canReopen, permErr := h.Perms.HasPermission(r.Context(), user.RoleID, auth.PermNominaReopen)
	if permErr != nil {
		canReopen = false
	}

	api.Success(w, map[string]any{
		"period": p,
		"status": period.StatusOf(p, canReopen),
	}, reqID)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "period_closed", h.Service.Close)
}

func (h *Handler) handleLiquidate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "period_liquidated", h.Service.Liquidate)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "period_paid", h.Service.MarkPaid)
}

func (h *Handler) handleMarkErrored(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "period_errors_detected", h.Service.MarkErrored)
}

func (h *Handler) handleMarkReported(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if err := h.Service.MarkReported(r.Context(), user.CompanyID, periodID); err != nil {
		h.fail(w, err, reqID)
		return
	}

	p, err := h.Service.Get(r.Context(), user.CompanyID, periodID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	h.Audit.RecordWithRequest(r.Context(), user.CompanyID, user.UserID, "period_reported_dian", "payroll_period", p.ID, p.Label, reqID)
	h.publish(user.CompanyID, realtime.EventUpdate, p)
	api.Success(w, p, reqID)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string,
	fn func(ctx context.Context, companyID, periodID string) (period.Period, error)) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	p, err := fn(r.Context(), user.CompanyID, chi.URLParam(r, "periodID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	h.Audit.RecordWithRequest(r.Context(), user.CompanyID, user.UserID, action, "payroll_period", p.ID, p.Label, reqID)
	h.publish(user.CompanyID, realtime.EventUpdate, p)
	api.Success(w, p, reqID)
}

func (h *Handler) publish(companyID, eventType string, p period.Period) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(companyID, realtime.Event{EventType: eventType, Table: "payroll_periods", New: p})
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, period.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", reqID)
	case errors.Is(err, period.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, period.ErrImmutablePeriod):
		api.Fail(w, http.StatusConflict, "immutable_period", err.Error(), reqID)
	case errors.Is(err, period.ErrNoValidEmployees):
		api.Fail(w, http.StatusUnprocessableEntity, "no_valid_employees", err.Error(), reqID)
	case errors.Is(err, period.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", reqID)
	}
}

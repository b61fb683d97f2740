package drafthandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/auth"
	"nomina/internal/domain/autosave"
	"nomina/internal/domain/draft"
	"nomina/internal/domain/notifications"
	"nomina/internal/domain/period"
	"nomina/internal/platform/metrics"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
)

type Handler struct {
	Drafts        *draft.Store
	Periods       *period.Service
	Registry      *autosave.Registry
	Notifications *notifications.Service
	Metrics       *metrics.Collector
	Rules         draft.Rules
	Perms         middleware.PermissionStore
}

func NewHandler(drafts *draft.Store, periods *period.Service, registry *autosave.Registry, notifSvc *notifications.Service, collector *metrics.Collector, rules draft.Rules, perms middleware.PermissionStore) *Handler {
	return &Handler{
		Drafts:        drafts,
		Periods:       periods,
		Registry:      registry,
		Notifications: notifSvc,
		Metrics:       collector,
		Rules:         rules,
		Perms:         perms,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods/{periodID}/draft", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermNominaRead, h.Perms)).Get("/", h.handleGetDraft)
		r.With(middleware.RequirePermission(auth.PermNominaWrite, h.Perms)).Put("/", h.handlePutDraft)
		r.With(middleware.RequirePermission(auth.PermNominaWrite, h.Perms)).Post("/flush", h.handleFlush)
		r.With(middleware.RequirePermission(auth.PermNominaRead, h.Perms)).Get("/save-status", h.handleSaveStatus)
		r.With(middleware.RequirePermission(auth.PermNominaRead, h.Perms)).Get("/novedades", h.handleListNovedades)
		r.With(middleware.RequirePermission(auth.PermNominaWrite, h.Perms)).Post("/novedades", h.handleCreateNovedad)
		r.With(middleware.RequirePermission(auth.PermNominaWrite, h.Perms)).Put("/novedades/{novedadID}", h.handleUpdateNovedad)
		r.With(middleware.RequirePermission(auth.PermNominaWrite, h.Perms)).Delete("/novedades/{novedadID}", h.handleDeleteNovedad)
	})
}

// coordinatorFor lazily binds a coordinator to the period. The save
// closure captures the company so a period can never be flushed into
// another tenant's rows.
func (h *Handler) coordinatorFor(companyID, userID, periodID string) *autosave.Coordinator {
	save := func(ctx context.Context, employees []draft.Employee, removedIDs []string) error {
		if err := h.Drafts.SaveDraftEmployees(ctx, companyID, periodID, employees, removedIDs); err != nil {
			return err
		}
		return h.Periods.TouchActivity(ctx, companyID, periodID)
	}

	notify := h.Notifications.SaveListener(companyID, userID)
	onResult := func(res autosave.Result) {
		if h.Metrics != nil {
			h.Metrics.RecordSave(res.Kind)
		}
		notify(res)
	}
	return h.Registry.For(periodID, save, onResult)
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if _, err := h.Periods.Get(r.Context(), user.CompanyID, periodID); err != nil {
		h.fail(w, err, reqID)
		return
	}

	employees, err := h.Drafts.ListDraftEmployees(r.Context(), user.CompanyID, periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "unable to load draft", reqID)
		return
	}

	api.Success(w, map[string]any{
		"employees": employees,
		"summary":   draft.Aggregate(employees),
	}, reqID)
}

type putDraftRequest struct {
	Employees  []draft.Employee `json:"employees"`
	RemovedIDs []string         `json:"removedIds"`
}

// handlePutDraft recomputes the draft and schedules a debounced save.
// The computed lines and summary come back immediately so the caller
// renders fresh totals without waiting for persistence.
func (h *Handler) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	p, err := h.Periods.Get(r.Context(), user.CompanyID, periodID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	if !period.IsOpen(p.Status) {
		api.Fail(w, http.StatusConflict, "period_not_open", "period is not editable in its current state", reqID)
		return
	}

	var payload putDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	computed := draft.ComputeAll(payload.Employees, h.Rules)
	coord := h.coordinatorFor(user.CompanyID, user.UserID, periodID)
	coord.ScheduleSave(computed, payload.RemovedIDs)

	api.Success(w, map[string]any{
		"employees": computed,
		"summary":   draft.Aggregate(computed),
		"saveState": saveState(coord),
	}, reqID)
}

func (h *Handler) handleFlush(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if _, err := h.Periods.Get(r.Context(), user.CompanyID, periodID); err != nil {
		h.fail(w, err, reqID)
		return
	}

	coord := h.coordinatorFor(user.CompanyID, user.UserID, periodID)
	if err := coord.Flush(r.Context()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "flush_failed", "unable to persist draft", reqID)
		return
	}
	api.Success(w, saveState(coord), reqID)
}

func (h *Handler) handleSaveStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	// Ownership check before touching the registry: the first caller
	// binds the coordinator's save closure, so a foreign company must
	// never reach For.
	periodID := chi.URLParam(r, "periodID")
	if _, err := h.Periods.Get(r.Context(), user.CompanyID, periodID); err != nil {
		h.fail(w, err, reqID)
		return
	}

	coord := h.coordinatorFor(user.CompanyID, user.UserID, periodID)
	api.Success(w, saveState(coord), reqID)
}

func saveState(coord *autosave.Coordinator) map[string]any {
	state := map[string]any{
		"isSaving":          coord.IsSaving(),
		"hasUnsavedChanges": coord.HasUnsavedChanges(),
	}
	if t := coord.LastSaveTime(); !t.IsZero() {
		state["lastSaveTime"] = t
	}
	return state
}

func (h *Handler) handleListNovedades(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	novedades, err := h.Drafts.ListNovedades(r.Context(), user.CompanyID, chi.URLParam(r, "periodID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "unable to list novedades", reqID)
		return
	}
	api.Success(w, novedades, reqID)
}

func (h *Handler) handleCreateNovedad(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var n draft.Novedad
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	n.PeriodID = chi.URLParam(r, "periodID")
	if !draft.ValidNovedadTipo(n.Tipo) {
		api.Fail(w, http.StatusBadRequest, "invalid_tipo", "unknown novedad tipo", reqID)
		return
	}

	id, err := h.Drafts.CreateNovedad(r.Context(), user.CompanyID, n)
	if err != nil {
		h.failNovedad(w, err, reqID)
		return
	}
	n.ID = id
	api.Created(w, n, reqID)
}

func (h *Handler) handleUpdateNovedad(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var n draft.Novedad
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	n.ID = chi.URLParam(r, "novedadID")
	n.PeriodID = chi.URLParam(r, "periodID")

	if err := h.Drafts.UpdateNovedad(r.Context(), user.CompanyID, n); err != nil {
		h.failNovedad(w, err, reqID)
		return
	}
	api.Success(w, n, reqID)
}

func (h *Handler) handleDeleteNovedad(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Drafts.DeleteNovedad(r.Context(), user.CompanyID, chi.URLParam(r, "novedadID")); err != nil {
		h.failNovedad(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	if errors.Is(err, period.ErrPeriodNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", reqID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", reqID)
}

func (h *Handler) failNovedad(w http.ResponseWriter, err error, reqID string) {
	if errors.Is(err, draft.ErrNovedadNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "novedad not found", reqID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", reqID)
}

package reportshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomina/internal/domain/auth"
	"nomina/internal/domain/period"
	"nomina/internal/domain/reports"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/periods/{periodID}/summary.pdf", h.handleSummaryPDF)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/periods/{periodID}/register.csv", h.handleRegisterCSV)
	})
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	data, err := h.Service.PeriodSummaryPDF(r.Context(), user.CompanyID, chi.URLParam(r, "periodID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resumen-nomina.pdf"`)
	_, _ = w.Write(data)
}

func (h *Handler) handleRegisterCSV(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	data, err := h.Service.PayrollCSV(r.Context(), user.CompanyID, chi.URLParam(r, "periodID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="registro-nomina.csv"`)
	_, _ = w.Write(data)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	if errors.Is(err, period.ErrPeriodNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", reqID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "report_failed", "unable to generate report", reqID)
}

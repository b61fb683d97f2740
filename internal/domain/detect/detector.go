// Package detect classifies what should happen next with a company's
// payroll periods. The classification is consumed on page load and on
// manual refresh, so it has to be cheap, idempotent and must never
// surface a raw storage failure to the caller.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nomina/internal/domain/period"
)

const (
	ActionResume      = "resume"
	ActionCreate      = "create"
	ActionSuggestNext = "suggest_next"
	ActionDiagnose    = "diagnose"
	ActionEmergency   = "emergency"
)

// Result is the outcome of one detection pass. NextPeriod is only set
// for create and suggest_next actions.
type Result struct {
	Action          string         `json:"action"`
	Message         string         `json:"message"`
	Period          *period.Period `json:"period,omitempty"`
	NextPeriod      *period.Range  `json:"nextPeriod,omitempty"`
	DuplicatesFound int            `json:"duplicatesFound,omitempty"`
}

// Auditor records the duplicate-cleanup side effect, the only remote
// mutation detection is allowed to perform.
type Auditor interface {
	Record(ctx context.Context, companyID, userID, action, entity, entityID, details string)
}

type Detector struct {
	store period.StoreAPI
	audit Auditor
	now   func() time.Time
}

func New(store period.StoreAPI, audit Auditor) *Detector {
	return &Detector{store: store, audit: audit, now: time.Now}
}

// Detect classifies the company's period state into an action. It never
// returns an error: a persistence failure degrades to an emergency
// result so the caller is never blocked.
func (d *Detector) Detect(ctx context.Context, companyID string) Result {
	return d.classify(ctx, companyID, false)
}

func (d *Detector) classify(ctx context.Context, companyID string, cleaned bool) Result {
	open, err := d.store.OpenPeriods(ctx, companyID)
	if err != nil {
		return d.emergency(companyID, "listar periodos abiertos", err)
	}

	if len(open) > 1 {
		removed, err := d.store.DeleteDuplicateOpenPeriods(ctx, companyID)
		if err != nil {
			return d.emergency(companyID, "limpiar periodos duplicados", err)
		}
		slog.Warn("duplicate open periods cleaned",
			"company_id", companyID,
			"removed", removed,
		)
		if d.audit != nil {
			d.audit.Record(ctx, companyID, "", "cleanup_duplicates", "payroll_period", "",
				fmt.Sprintf("removed %d duplicate open periods", removed))
		}
		if cleaned {
			// Cleanup already ran once and duplicates persist.
			return Result{
				Action:          ActionDiagnose,
				Message:         "Existen periodos abiertos duplicados que no se pudieron depurar automáticamente.",
				DuplicatesFound: len(open),
			}
		}
		res := d.classify(ctx, companyID, true)
		res.DuplicatesFound = removed
		return res
	}

	if len(open) == 1 {
		p := open[0]
		return Result{
			Action:  ActionResume,
			Message: fmt.Sprintf("Continúa trabajando en el periodo %s.", p.Label),
			Period:  &p,
		}
	}

	settings, err := d.store.CompanySettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, period.ErrPeriodNotFound) {
			return Result{
				Action:  ActionDiagnose,
				Message: "La empresa no tiene configuración de periodicidad. Completa la configuración antes de crear periodos.",
			}
		}
		return d.emergency(companyID, "leer configuración de empresa", err)
	}

	latest, err := d.store.LatestPeriod(ctx, companyID)
	if errors.Is(err, period.ErrPeriodNotFound) {
		next := period.FirstRange(settings.Periodicity, settings.FiscalStart)
		return Result{
			Action:     ActionCreate,
			Message:    fmt.Sprintf("No hay periodos registrados. Crea el primer periodo %s.", next.Label),
			NextPeriod: &next,
		}
	}
	if err != nil {
		return d.emergency(companyID, "leer el último periodo", err)
	}

	overlaps, err := d.store.CountOverlappingPeriods(ctx, companyID)
	if err != nil {
		return d.emergency(companyID, "verificar solapamientos", err)
	}
	if overlaps > 0 {
		return Result{
			Action:  ActionDiagnose,
			Message: fmt.Sprintf("Se detectaron %d periodos con fechas solapadas. Revisa el historial antes de continuar.", overlaps),
		}
	}

	next := period.NextRange(period.Range{
		StartDate: latest.StartDate,
		EndDate:   latest.EndDate,
		Type:      latest.Type,
	})

	today := d.now().Truncate(24 * time.Hour)
	if latest.EndDate.Before(today) {
		return Result{
			Action:     ActionCreate,
			Message:    fmt.Sprintf("El periodo %s ya terminó. Crea el periodo %s.", latest.Label, next.Label),
			NextPeriod: &next,
		}
	}

	return Result{
		Action:     ActionSuggestNext,
		Message:    fmt.Sprintf("El periodo %s está cerrado y al día. El siguiente periodo será %s.", latest.Label, next.Label),
		NextPeriod: &next,
	}
}

func (d *Detector) emergency(companyID, op string, err error) Result {
	slog.Error("period detection failed",
		"company_id", companyID,
		"operation", op,
		"error", err,
	)
	return Result{
		Action:  ActionEmergency,
		Message: "No fue posible determinar el estado de los periodos. Intenta de nuevo en unos minutos.",
	}
}

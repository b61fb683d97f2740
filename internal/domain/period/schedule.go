package period

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func monthName(m time.Month) string {
	return monthNames[int(m)-1]
}

func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// FirstRange computes the initial period boundary for a company that has
// no periods yet, anchored on its fiscal start date.
func FirstRange(periodType string, fiscalStart time.Time) Range {
	return rangeStartingAt(periodType, fiscalStart, 0)
}

// NextRange computes the period boundary that follows prev. For the
// personalizado type the previous duration is preserved; the calendar
// types realign on their natural boundaries.
func NextRange(prev Range) Range {
	start := prev.EndDate.AddDate(0, 0, 1)
	duration := int(prev.EndDate.Sub(prev.StartDate).Hours()/24) + 1
	return rangeStartingAt(prev.Type, start, duration)
}

func rangeStartingAt(periodType string, start time.Time, customDays int) Range {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	var end time.Time

	switch periodType {
	case TypeSemanal:
		end = start.AddDate(0, 0, 6)
	case TypeQuincenal:
		if start.Day() <= 15 {
			end = time.Date(start.Year(), start.Month(), 15, 0, 0, 0, 0, time.UTC)
		} else {
			end = endOfMonth(start)
		}
	case TypeMensual:
		end = endOfMonth(start)
	case TypePersonalizado:
		if customDays <= 0 {
			customDays = 30
		}
		end = start.AddDate(0, 0, customDays-1)
	default:
		end = endOfMonth(start)
	}

	return Range{
		Label:     rangeLabel(periodType, start, end),
		StartDate: start,
		EndDate:   end,
		Type:      periodType,
	}
}

func rangeLabel(periodType string, start, end time.Time) string {
	switch periodType {
	case TypeMensual:
		return fmt.Sprintf("%s %d", monthName(start.Month()), start.Year())
	case TypeQuincenal:
		return fmt.Sprintf("%d - %d %s %d", start.Day(), end.Day(), monthName(start.Month()), start.Year())
	default:
		if start.Month() == end.Month() {
			return fmt.Sprintf("%d - %d %s %d", start.Day(), end.Day(), monthName(start.Month()), start.Year())
		}
		return fmt.Sprintf("%d %s - %d %s %d", start.Day(), monthName(start.Month()), end.Day(), monthName(end.Month()), end.Year())
	}
}

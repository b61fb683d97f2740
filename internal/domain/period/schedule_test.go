package period

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRangeQuincenal(t *testing.T) {
	prev := Range{StartDate: date(2026, time.January, 1), EndDate: date(2026, time.January, 15), Type: TypeQuincenal}

	next := NextRange(prev)
	if !next.StartDate.Equal(date(2026, time.January, 16)) {
		t.Fatalf("unexpected start %v", next.StartDate)
	}
	if !next.EndDate.Equal(date(2026, time.January, 31)) {
		t.Fatalf("unexpected end %v", next.EndDate)
	}
	if next.Label != "16 - 31 Enero 2026" {
		t.Fatalf("unexpected label %q", next.Label)
	}

	// Second half rolls into the first half of the next month.
	after := NextRange(next)
	if !after.StartDate.Equal(date(2026, time.February, 1)) || !after.EndDate.Equal(date(2026, time.February, 15)) {
		t.Fatalf("unexpected roll-over range %v - %v", after.StartDate, after.EndDate)
	}
}

func TestNextRangeMensualHandlesShortMonths(t *testing.T) {
	prev := Range{StartDate: date(2026, time.January, 1), EndDate: date(2026, time.January, 31), Type: TypeMensual}

	next := NextRange(prev)
	if !next.EndDate.Equal(date(2026, time.February, 28)) {
		t.Fatalf("expected february end, got %v", next.EndDate)
	}
	if next.Label != "Febrero 2026" {
		t.Fatalf("unexpected label %q", next.Label)
	}
}

func TestNextRangeSemanal(t *testing.T) {
	prev := Range{StartDate: date(2026, time.March, 2), EndDate: date(2026, time.March, 8), Type: TypeSemanal}

	next := NextRange(prev)
	if !next.StartDate.Equal(date(2026, time.March, 9)) || !next.EndDate.Equal(date(2026, time.March, 15)) {
		t.Fatalf("unexpected weekly range %v - %v", next.StartDate, next.EndDate)
	}
}

func TestNextRangePersonalizadoPreservesDuration(t *testing.T) {
	prev := Range{StartDate: date(2026, time.April, 1), EndDate: date(2026, time.April, 10), Type: TypePersonalizado}

	next := NextRange(prev)
	if !next.StartDate.Equal(date(2026, time.April, 11)) || !next.EndDate.Equal(date(2026, time.April, 20)) {
		t.Fatalf("unexpected custom range %v - %v", next.StartDate, next.EndDate)
	}
}

func TestFirstRangeAnchorsOnFiscalStart(t *testing.T) {
	first := FirstRange(TypeQuincenal, date(2026, time.January, 1))
	if !first.StartDate.Equal(date(2026, time.January, 1)) || !first.EndDate.Equal(date(2026, time.January, 15)) {
		t.Fatalf("unexpected first range %v - %v", first.StartDate, first.EndDate)
	}

	mid := FirstRange(TypeQuincenal, date(2026, time.January, 20))
	if !mid.EndDate.Equal(date(2026, time.January, 31)) {
		t.Fatalf("expected month-end alignment, got %v", mid.EndDate)
	}
}

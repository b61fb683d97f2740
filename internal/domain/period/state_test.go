package period

import "testing"

func TestDisplayStateCoversEveryStatus(t *testing.T) {
	expected := map[string]string{
		StatusBorrador:   DisplayRevision,
		StatusCerrado:    DisplayCerrado,
		StatusProcesada:  DisplayCerrado,
		StatusPagada:     DisplayCerrado,
		StatusConErrores: DisplayConErrores,
		StatusEditado:    DisplayEditado,
		StatusReabierto:  DisplayReabierto,
	}

	for status, want := range expected {
		if got := DisplayState(status); got != want {
			t.Fatalf("DisplayState(%s) = %s, want %s", status, got, want)
		}
	}
}

func TestDisplayStateUnknownFallsBackToRevision(t *testing.T) {
	if got := DisplayState("no-such-status"); got != DisplayRevision {
		t.Fatalf("expected revision fallback, got %s", got)
	}
}

func TestLegalTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusBorrador, StatusProcesada, true},
		{StatusBorrador, StatusCerrado, true},
		{StatusProcesada, StatusPagada, true},
		{StatusCerrado, StatusConErrores, true},
		{StatusCerrado, StatusReabierto, true},
		{StatusConErrores, StatusReabierto, true},
		{StatusReabierto, StatusEditado, true},
		{StatusEditado, StatusCerrado, true},

		{StatusPagada, StatusReabierto, false},
		{StatusPagada, StatusBorrador, false},
		{StatusBorrador, StatusReabierto, false},
		{StatusProcesada, StatusReabierto, false},
		{StatusEditado, StatusReabierto, false},
		{StatusCerrado, StatusBorrador, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanReopenBlockedWhenReportedToDian(t *testing.T) {
	// Reported periods are immutable even for an actor with permission
	// and a status that would otherwise allow reopening.
	p := Period{ID: "p2", Status: StatusCerrado, ReportedToDian: true}
	if err := CanReopen(p, true); err != ErrImmutablePeriod {
		t.Fatalf("expected ErrImmutablePeriod, got %v", err)
	}
}

func TestCanReopenBlockedForPaidPeriods(t *testing.T) {
	p := Period{Status: StatusPagada}
	if err := CanReopen(p, true); err != ErrImmutablePeriod {
		t.Fatalf("expected ErrImmutablePeriod, got %v", err)
	}
}

func TestCanReopenRequiresPermission(t *testing.T) {
	p := Period{Status: StatusCerrado}
	if err := CanReopen(p, false); err != ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := CanReopen(p, true); err != nil {
		t.Fatalf("expected reopen to be allowed, got %v", err)
	}
}

func TestCanReopenFromConErrores(t *testing.T) {
	p := Period{Status: StatusConErrores}
	if err := CanReopen(p, true); err != nil {
		t.Fatalf("expected reopen from con_errores, got %v", err)
	}
}

func TestCanReopenRejectsOpenStatuses(t *testing.T) {
	for _, status := range []string{StatusBorrador, StatusReabierto, StatusProcesada} {
		p := Period{Status: status}
		if err := CanReopen(p, true); err != ErrInvalidTransition {
			t.Fatalf("CanReopen(%s) = %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestStatusOfTaggedVariant(t *testing.T) {
	if StatusUnknown().Known {
		t.Fatal("zero status must be unknown")
	}

	p := Period{ID: "p1", Status: StatusCerrado}
	status := StatusOf(p, true)
	if !status.Known {
		t.Fatal("expected known status")
	}
	if status.Info.DisplayStatus != DisplayCerrado {
		t.Fatalf("unexpected display status %s", status.Info.DisplayStatus)
	}
	if !status.Info.CanReopen {
		t.Fatal("expected reopenable status info")
	}

	reported := StatusOf(Period{Status: StatusCerrado, ReportedToDian: true}, true)
	if reported.Info.CanReopen {
		t.Fatal("reported period must not advertise reopen")
	}
}

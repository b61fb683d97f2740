package period

// displayMap collapses the seven internal statuses onto the five display
// states. procesada and pagada read as cerrado in the history views; the
// raw status is preserved on the record for anything that needs it.
var displayMap = map[string]string{
	StatusBorrador:   DisplayRevision,
	StatusCerrado:    DisplayCerrado,
	StatusProcesada:  DisplayCerrado,
	StatusPagada:     DisplayCerrado,
	StatusConErrores: DisplayConErrores,
	StatusEditado:    DisplayEditado,
	StatusReabierto:  DisplayReabierto,
}

func DisplayState(status string) string {
	if display, ok := displayMap[status]; ok {
		return display
	}
	return DisplayRevision
}

// transitions holds the legal forward edges of the period lifecycle.
// Reopen edges are additionally guarded by CanReopen.
var transitions = map[string][]string{
	StatusBorrador:   {StatusProcesada, StatusCerrado},
	StatusProcesada:  {StatusPagada},
	StatusCerrado:    {StatusConErrores, StatusReabierto},
	StatusConErrores: {StatusReabierto},
	StatusReabierto:  {StatusEditado},
	StatusEditado:    {StatusCerrado},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOpen reports whether a period still accepts draft mutations.
func IsOpen(status string) bool {
	switch status {
	case StatusBorrador, StatusReabierto:
		return true
	}
	return false
}

// CanReopen applies the reopen guard: the period must read as cerrado or
// con_errores, the actor must hold the reopen permission and the period
// must not have been reported to DIAN. A reported period is immutable no
// matter its status or who asks.
func CanReopen(p Period, actorCanReopen bool) error {
	if p.ReportedToDian {
		return ErrImmutablePeriod
	}
	if p.Status == StatusPagada {
		return ErrImmutablePeriod
	}
	display := DisplayState(p.Status)
	if display != DisplayCerrado && display != DisplayConErrores {
		return ErrInvalidTransition
	}
	if !CanTransition(p.Status, StatusReabierto) {
		return ErrInvalidTransition
	}
	if !actorCanReopen {
		return ErrPermissionDenied
	}
	return nil
}

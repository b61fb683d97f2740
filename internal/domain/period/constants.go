package period

// Internal (database) period statuses.
const (
	StatusBorrador   = "borrador"
	StatusCerrado    = "cerrado"
	StatusProcesada  = "procesada"
	StatusPagada     = "pagada"
	StatusConErrores = "con_errores"
	StatusEditado    = "editado"
	StatusReabierto  = "reabierto"
)

// Display states shown in the history UI. Several internal statuses
// collapse onto one display state; the raw status is still returned
// alongside so downstream reports keep the distinction.
const (
	DisplayRevision   = "revision"
	DisplayCerrado    = "cerrado"
	DisplayConErrores = "con_errores"
	DisplayEditado    = "editado"
	DisplayReabierto  = "reabierto"
)

// Period types (periodicity).
const (
	TypeSemanal       = "semanal"
	TypeQuincenal     = "quincenal"
	TypeMensual       = "mensual"
	TypePersonalizado = "personalizado"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusBorrador, StatusCerrado, StatusProcesada, StatusPagada,
		StatusConErrores, StatusEditado, StatusReabierto:
		return true
	}
	return false
}

func ValidType(periodType string) bool {
	switch periodType {
	case TypeSemanal, TypeQuincenal, TypeMensual, TypePersonalizado:
		return true
	}
	return false
}

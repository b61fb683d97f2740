package auth

const (
	PermNominaRead   = "nomina.read"
	PermNominaWrite  = "nomina.write"
	PermNominaClose  = "nomina.close"
	PermNominaReopen = "nomina.reopen"
	PermReportsRead  = "reports.read"
	PermAuditRead    = "audit.read"
	PermSystemAdmin  = "admin.system"
)

var DefaultPermissions = []string{
	PermNominaRead,
	PermNominaWrite,
	PermNominaClose,
	PermNominaReopen,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

const (
	RoleEmployee    = "empleado"
	RoleAccountant  = "contador"
	RoleHR          = "admin_rrhh"
	RoleSystemAdmin = "system_admin"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermNominaRead,
	},
	RoleAccountant: {
		PermNominaRead,
		PermNominaWrite,
		PermNominaClose,
		PermReportsRead,
	},
	RoleHR: {
		PermNominaRead,
		PermNominaWrite,
		PermNominaClose,
		PermNominaReopen,
		PermReportsRead,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
	},
}

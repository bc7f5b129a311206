package shared

// CRM write permissions.
const (
	PermCRMWriteAll = "crm.write_all"
)

// CRMScopes lists the CRM permissions.
func CRMScopes() []string {
	return []string{PermCRMWriteAll}
}

// AllScopes returns every permission the application checks.
func AllScopes() []string {
	return append(ReportScopes(), CRMScopes()...)
}

package shared

// Report permissions for RBAC enforcement. A representative can always read
// and export their own report without any of these.
const (
	PermReportsViewAll = "reports.view_all"
	PermReportsExport  = "reports.export"
	PermReportsManage  = "reports.manage"
)

// ReportScopes returns permissions guarding the reporting endpoints.
func ReportScopes() []string {
	return []string{
		PermReportsViewAll,
		PermReportsExport,
		PermReportsManage,
	}
}

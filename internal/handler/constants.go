package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the top page.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/{id}/edit"
	// RouteSuffixDestroy is the suffix for soft-delete routes.
	RouteSuffixDestroy = "/{id}/destroy"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteEmployees is the employee management route.
	RouteEmployees = "/employees"
	// RouteReports is the report route.
	RouteReports = "/reports"

	// RouteEmployeesID is the employees ID route pattern.
	RouteEmployeesID = RouteEmployees + RouteParamID
	// RouteReportsID is the reports ID route pattern.
	RouteReportsID = RouteReports + RouteParamID
)

// Redirect targets.
const (
	redirectRoot         = "/"
	redirectLogin        = "/login"
	redirectEmployees    = "/employees"
	redirectEmployeesNew = "/employees/new"
	redirectReports      = "/reports"
	redirectReportsNew   = "/reports/new"
)

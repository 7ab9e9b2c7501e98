package enums

// Views the application can navigate to.
const (
	HomeRoute       = "/"
	LoginRoute      = "/login"
	RegisterRoute   = "/register"
	DashboardRoute  = "/dashboard"
	AdminRoute      = "/admin"
	SuperAdminRoute = "/superadmin"
)

// LandingRoute is the view a freshly authenticated user lands on.
func LandingRoute(role Role) string {
	switch role {
	case RoleSuperAdmin:
		return SuperAdminRoute
	case RoleAdmin:
		return AdminRoute
	default:
		return DashboardRoute
	}
}

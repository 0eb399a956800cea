package guard

import "github.com/jrsteele09/go-bidagri-client/users"

// Route path constants
const (
	// Public entry point
	RouteHome = "/"

	// Login & Signup
	RouteFarmerLogin  = "/logins/farmerLogin"
	RouteStoreLogin   = "/logins/storeLogin"
	RouteFarmerSignup = "/logins/farmerSignup"
	RouteStoreSignup  = "/logins/storeSignup"

	// Email Verification
	RouteSendEmail         = "/send-email"
	RouteEmailVerification = "/email-verification"

	// Password Management
	RouteChangePassword = "/changePassword"
	RouteForgotPassword = "/resetPassword/sendResetEmail"
	RouteResetPassword  = "/resetPasswordForm"

	// Dashboards
	RouteStoreDashboard  = "/dashboards/storeDashboard"
	RouteFarmerDashboard = "/dashboards/farmerDashboard"
)

// DashboardFor returns the default view of a role set. Store accounts win
// over farmer accounts; anything else lands on the home page.
func DashboardFor(roles users.RoleSet) string {
	switch {
	case roles.HasAny(users.RoleTenantAdmin):
		return RouteStoreDashboard
	case roles.HasAny(users.RoleSystemUser):
		return RouteFarmerDashboard
	default:
		return RouteHome
	}
}

// LoginFor returns the login page matching a role set
func LoginFor(roles users.RoleSet) string {
	switch {
	case roles.HasAny(users.RoleTenantAdmin):
		return RouteStoreLogin
	case roles.HasAny(users.RoleSystemUser):
		return RouteFarmerLogin
	default:
		return RouteHome
	}
}

// LoginForUserType returns the login page for an account kind chosen at sign-up
func LoginForUserType(userType users.UserType) string {
	if userType == users.UserTypeStore {
		return RouteStoreLogin
	}
	return RouteFarmerLogin
}

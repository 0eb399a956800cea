package guard_test

import (
	"testing"

	"github.com/jrsteele09/go-bidagri-client/guard"
	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	farmer := users.NewRoleSet("ROLE_SYSTEM_USER")
	store := users.NewRoleSet("TENANT_ADMIN")
	nobody := users.NewRoleSet("AUDITOR")
	farmerOnly := []users.RoleType{users.RoleSystemUser}

	tests := []struct {
		name  string
		state guard.State
		req   guard.Request
		want  guard.Decision
	}{
		{
			name:  "checking never redirects",
			state: guard.State{Checking: true},
			req:   guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: farmerOnly},
			want:  guard.Decision{Action: guard.ActionLoading},
		},
		{
			name:  "loading never redirects",
			state: guard.State{Loading: true, Authenticated: true, Roles: store},
			req:   guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: farmerOnly},
			want:  guard.Decision{Action: guard.ActionLoading},
		},
		{
			name: "unauthenticated goes home",
			req:  guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: farmerOnly},
			want: guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteHome},
		},
		{
			name:  "authorized renders",
			state: guard.State{Authenticated: true, Roles: farmer},
			req:   guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: farmerOnly},
			want:  guard.Decision{Action: guard.ActionRender},
		},
		{
			name:  "prefixed required role matches bare stored role",
			state: guard.State{Authenticated: true, Roles: store},
			req:   guard.Request{Path: guard.RouteStoreDashboard, RequiredRoles: []users.RoleType{"ROLE_TENANT_ADMIN"}},
			want:  guard.Decision{Action: guard.ActionRender},
		},
		{
			name:  "wrong role goes to own dashboard",
			state: guard.State{Authenticated: true, Roles: store},
			req:   guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: farmerOnly},
			want:  guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteStoreDashboard},
		},
		{
			name:  "no known role goes home",
			state: guard.State{Authenticated: true, Roles: nobody},
			req:   guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: farmerOnly},
			want:  guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteHome},
		},
		{
			name:  "never redirects back to the requested path",
			state: guard.State{Authenticated: true, Roles: farmer},
			req:   guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: []users.RoleType{users.RoleSuperAdmin}},
			want:  guard.Decision{Action: guard.ActionDeny},
		},
		{
			name:  "home sends a signed-in user to their dashboard",
			state: guard.State{Authenticated: true, Roles: farmer},
			req:   guard.Request{Path: guard.RouteHome},
			want:  guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteFarmerDashboard},
		},
		{
			name:  "home renders for a user without a dashboard",
			state: guard.State{Authenticated: true, Roles: nobody},
			req:   guard.Request{Path: guard.RouteHome},
			want:  guard.Decision{Action: guard.ActionRender},
		},
		{
			name:  "no required roles renders",
			state: guard.State{Authenticated: true, Roles: nobody},
			req:   guard.Request{Path: guard.RouteChangePassword},
			want:  guard.Decision{Action: guard.ActionRender},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, guard.Decide(tt.state, tt.req))
		})
	}
}

func TestRoutesForRoles(t *testing.T) {
	both := users.NewRoleSet("SYSTEM_USER", "TENANT_ADMIN")
	require.Equal(t, guard.RouteStoreDashboard, guard.DashboardFor(both))
	require.Equal(t, guard.RouteStoreLogin, guard.LoginFor(both))

	farmer := users.NewRoleSet("ROLE_SYSTEM_USER")
	require.Equal(t, guard.RouteFarmerDashboard, guard.DashboardFor(farmer))
	require.Equal(t, guard.RouteFarmerLogin, guard.LoginFor(farmer))

	require.Equal(t, guard.RouteHome, guard.DashboardFor(nil))
	require.Equal(t, guard.RouteHome, guard.LoginFor(users.NewRoleSet()))

	require.Equal(t, guard.RouteStoreLogin, guard.LoginForUserType(users.UserTypeStore))
	require.Equal(t, guard.RouteFarmerLogin, guard.LoginForUserType(users.UserTypeFarmer))
	require.Equal(t, guard.RouteFarmerLogin, guard.LoginForUserType(""))
}

// fakeAuthenticator returns whatever user it currently holds
type fakeAuthenticator struct {
	user  *users.User
	calls int
}

func (f *fakeAuthenticator) CheckAuth() (*users.User, bool) {
	f.calls++
	return f.user, f.user != nil
}

func TestGuard(t *testing.T) {
	_, err := guard.New(nil)
	require.Error(t, err)

	auth := &fakeAuthenticator{user: &users.User{ID: "u1", Roles: users.NewRoleSet("SYSTEM_USER")}}
	g, err := guard.New(auth)
	require.NoError(t, err)

	farmerView := guard.Request{Path: guard.RouteFarmerDashboard, RequiredRoles: []users.RoleType{users.RoleSystemUser}}
	storeView := guard.Request{Path: guard.RouteStoreDashboard, RequiredRoles: []users.RoleType{users.RoleTenantAdmin}}

	t.Run("loading before the first check", func(t *testing.T) {
		require.Equal(t, guard.ActionLoading, g.Evaluate(farmerView).Action)
		require.Zero(t, auth.calls)
	})

	t.Run("mount checks then decides", func(t *testing.T) {
		require.Equal(t, guard.Decision{Action: guard.ActionRender}, g.Mount(farmerView))
		require.Equal(t, 1, auth.calls)
	})

	t.Run("required role change is re-evaluated", func(t *testing.T) {
		require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteFarmerDashboard}, g.Evaluate(storeView))
	})

	t.Run("session role change is picked up on refresh", func(t *testing.T) {
		auth.user = &users.User{ID: "u1", Roles: users.NewRoleSet("TENANT_ADMIN")}
		g.Refresh()
		require.Equal(t, guard.Decision{Action: guard.ActionRender}, g.Evaluate(storeView))
		require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteStoreDashboard}, g.Evaluate(farmerView))
	})

	t.Run("logout redirects home", func(t *testing.T) {
		auth.user = nil
		require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteHome}, g.Mount(storeView))
		require.False(t, g.State().Authenticated)
	})
}

// Package guard decides what a protected view does on mount: wait, render,
// or redirect. Decide is pure; Guard holds the authentication state it is
// evaluated against.
package guard

import (
	"errors"
	"sync"

	"github.com/jrsteele09/go-bidagri-client/users"
)

// Action is the outcome of evaluating a protected view
type Action int

const (
	ActionLoading  Action = iota // auth check pending, render a loading state
	ActionRender                 // show the protected content
	ActionRedirect               // navigate to Decision.Target
	ActionDeny                   // authenticated but not allowed, nowhere better to go
)

func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	case ActionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// State is what the guard knows about the session
type State struct {
	Checking      bool
	Loading       bool
	Authenticated bool
	Roles         users.RoleSet
}

// Request describes the view being mounted
type Request struct {
	Path          string
	RequiredRoles []users.RoleType
}

// Decision is what the view should do
type Decision struct {
	Action Action
	Target string
}

// Decide evaluates a request against state. Nothing redirects while a check
// is pending. An unauthenticated session goes to the home page. A session
// lacking the required role goes to its own dashboard, never back to the
// requested path.
func Decide(state State, req Request) Decision {
	if state.Checking || state.Loading {
		return Decision{Action: ActionLoading}
	}
	if !state.Authenticated {
		return Decision{Action: ActionRedirect, Target: RouteHome}
	}

	dashboard := DashboardFor(state.Roles)
	if req.Path == RouteHome {
		if dashboard != RouteHome {
			return Decision{Action: ActionRedirect, Target: dashboard}
		}
		return Decision{Action: ActionRender}
	}

	if len(req.RequiredRoles) > 0 && !state.Roles.HasAny(req.RequiredRoles...) {
		if dashboard == req.Path {
			return Decision{Action: ActionDeny}
		}
		return Decision{Action: ActionRedirect, Target: dashboard}
	}
	return Decision{Action: ActionRender}
}

// Authenticator re-checks the stored session. *auth.Service implements it.
type Authenticator interface {
	CheckAuth() (*users.User, bool)
}

// Guard tracks the authentication flag for protected views. Until Refresh
// has run, every evaluation is ActionLoading.
type Guard struct {
	auth          Authenticator
	checked       bool
	authenticated bool
	roles         users.RoleSet
	lock          sync.RWMutex
}

// New creates a guard backed by auth
func New(auth Authenticator) (*Guard, error) {
	if auth == nil {
		return nil, errors.New("[guard.New] authenticator is required")
	}
	return &Guard{auth: auth, roles: users.NewRoleSet()}, nil
}

// Refresh re-runs the auth check and records the result
func (g *Guard) Refresh() {
	user, ok := g.auth.CheckAuth()

	g.lock.Lock()
	defer g.lock.Unlock()

	g.checked = true
	g.authenticated = ok && user != nil
	g.roles = users.NewRoleSet()
	if g.authenticated {
		g.roles = user.Roles
	}
}

// State returns the current authentication state
func (g *Guard) State() State {
	g.lock.RLock()
	defer g.lock.RUnlock()

	return State{
		Checking:      !g.checked,
		Authenticated: g.authenticated,
		Roles:         g.roles,
	}
}

// Evaluate decides req against the current state without re-checking
func (g *Guard) Evaluate(req Request) Decision {
	return Decide(g.State(), req)
}

// Mount runs the auth check for a view being mounted and decides it
func (g *Guard) Mount(req Request) Decision {
	g.Refresh()
	return g.Evaluate(req)
}

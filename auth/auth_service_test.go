package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-bidagri-client/api"
	"github.com/jrsteele09/go-bidagri-client/auth"
	fakebackend "github.com/jrsteele09/go-bidagri-client/auth/repofakes"
	"github.com/jrsteele09/go-bidagri-client/guard"
	"github.com/jrsteele09/go-bidagri-client/kvstore/memstore"
	"github.com/jrsteele09/go-bidagri-client/lot"
	"github.com/jrsteele09/go-bidagri-client/products"
	"github.com/jrsteele09/go-bidagri-client/session"
	"github.com/jrsteele09/go-bidagri-client/session/sessiontest"
	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/stretchr/testify/require"
)

const (
	farmerEmail     = "farmer@example.com"
	storeEmail      = "store@example.com"
	adminEmail      = "admin@example.com"
	testPassword    = "password123"
	changedPassword = "password456"
)

// testFixture holds all test dependencies
type testFixture struct {
	now      time.Time
	store    *memstore.MemStore
	backend  *fakebackend.FakeBackend
	sessions *session.Manager
	lots     *lot.Store
	service  *auth.Service
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		now:     time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		store:   memstore.New(),
		backend: fakebackend.NewFakeBackend(),
	}
	nowFunc := func() time.Time { return f.now }

	sessions, err := session.NewManager(f.store, session.WithNowTime(nowFunc))
	require.NoError(t, err)
	f.sessions = sessions

	lots, err := lot.New(sessions, f.store, lot.WithNowTime(nowFunc), lot.WithAnonymousStaging())
	require.NoError(t, err)
	f.lots = lots

	service, err := auth.NewService(auth.Deps{
		Backend:  f.backend,
		Sessions: sessions,
		Lots:     lots,
		Store:    f.store,
	}, auth.WithNowTime(nowFunc))
	require.NoError(t, err)
	f.service = service

	f.addAccount(t, farmerEmail, "farmer-1", []string{"SYSTEM_USER"})
	f.addAccount(t, storeEmail, "store-1", []string{"ROLE_TENANT_ADMIN"})
	f.addAccount(t, adminEmail, "admin-1", []string{"SUPER_ADMIN"})
	return f
}

func (f *testFixture) credential(t *testing.T, sub string, roles []string, exp time.Time) string {
	t.Helper()
	return sessiontest.Credential(t, sessiontest.Claims(sub, roles, exp))
}

func (f *testFixture) addAccount(t *testing.T, email, sub string, roles []string) {
	t.Helper()
	f.backend.AddAccount(email, testPassword, f.credential(t, sub, roles, f.now.Add(time.Hour)))
}

func (f *testFixture) login(t *testing.T, email string) *users.User {
	t.Helper()
	user, err := f.service.Login(context.Background(), email, testPassword)
	require.NoError(t, err)
	return user
}

func TestNewService_RequiresDependencies(t *testing.T) {
	store := memstore.New()
	sessions, err := session.NewManager(store)
	require.NoError(t, err)
	backend := fakebackend.NewFakeBackend()

	_, err = auth.NewService(auth.Deps{Sessions: sessions, Store: store})
	require.Error(t, err)
	_, err = auth.NewService(auth.Deps{Backend: backend, Store: store})
	require.Error(t, err)
	_, err = auth.NewService(auth.Deps{Backend: backend, Sessions: sessions})
	require.Error(t, err)

	_, err = auth.NewService(auth.Deps{Backend: backend, Sessions: sessions, Store: store})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("farmer", func(t *testing.T) {
		f := setupTestFixture(t)

		user := f.login(t, farmerEmail)
		require.Equal(t, "farmer-1", user.ID)
		require.True(t, user.IsFarmer())
		require.True(t, f.sessions.IsValid())
		require.Equal(t, guard.RouteFarmerDashboard, f.service.DashboardRoute())
		require.Equal(t, guard.RouteFarmerLogin, f.service.LoginRedirect())
	})

	t.Run("store with prefixed role", func(t *testing.T) {
		f := setupTestFixture(t)

		user := f.login(t, storeEmail)
		require.True(t, user.IsTenantAdmin())
		require.Equal(t, guard.RouteStoreDashboard, f.service.DashboardRoute())
		require.Equal(t, guard.RouteStoreLogin, f.service.LoginRedirect())
	})

	t.Run("wrong password clears any previous session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)

		_, err := f.service.Login(ctx, farmerEmail, "wrong")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.ErrorIs(t, err, api.ErrRequestFailed)
		require.EqualError(t, err, auth.DefaultLoginMessage)

		_, ok := f.sessions.CurrentClaims()
		require.False(t, ok)
	})

	t.Run("backend message is kept", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.backend.RegisterFarmer(ctx, api.Registration{Email: "new@example.com", Password: testPassword})
		require.NoError(t, err)

		_, err = f.service.Login(ctx, "new@example.com", testPassword)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.EqualError(t, err, "User account is not verified")
	})

	t.Run("response without credential", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.SetCredential(farmerEmail, "")

		_, err := f.service.Login(ctx, farmerEmail, testPassword)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.ErrorIs(t, err, api.ErrApplicationFailure)
		require.EqualError(t, err, auth.DefaultLoginMessage)
	})

	t.Run("empty fields never reach the backend", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.Login(ctx, "  ", testPassword)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = f.service.Login(ctx, farmerEmail, "")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.Empty(t, f.backend.Calls())
	})

	t.Run("role gate", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.Login(ctx, adminEmail, testPassword)
		require.ErrorIs(t, err, auth.ErrAccessDenied)
		require.Contains(t, err.Error(), "SUPER_ADMIN")
		require.False(t, f.sessions.IsValid())
		_, ok := f.sessions.CurrentClaims()
		require.False(t, ok)
	})

	t.Run("corrupt credential", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.SetCredential(farmerEmail, "%%% not a credential %%%")

		_, err := f.service.Login(ctx, farmerEmail, testPassword)
		require.ErrorIs(t, err, session.ErrInvalidToken)
		_, ok := f.sessions.CurrentClaims()
		require.False(t, ok)
	})

	t.Run("already expired credential", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.SetCredential(farmerEmail, f.credential(t, "farmer-1", []string{"SYSTEM_USER"}, f.now.Add(-time.Minute)))

		_, err := f.service.Login(ctx, farmerEmail, testPassword)
		require.ErrorIs(t, err, session.ErrExpired)
		_, ok := f.sessions.CurrentClaims()
		require.False(t, ok)
	})
}

func TestLogin_MovesAnonymousLot(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.lots.Add(products.Product{ID: 7, Name: "Silage Wrap"})
	require.NoError(t, err)

	f.login(t, farmerEmail)
	entries := f.lots.List()
	require.Len(t, entries, 1)
	require.Equal(t, int64(7), entries[0].Product.ID)
	require.Equal(t, 1, entries[0].Quantity)
	require.Equal(t, "farmer-1", entries[0].OwnerID)

	require.NoError(t, f.service.Logout())
	f.login(t, farmerEmail)
	require.Equal(t, 1, f.lots.Count())
}

func TestCheckAuth(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)

		user, ok := f.service.CheckAuth()
		require.True(t, ok)
		require.Equal(t, "farmer-1", user.ID)
	})

	t.Run("signed out", func(t *testing.T) {
		f := setupTestFixture(t)
		_, ok := f.service.CheckAuth()
		require.False(t, ok)
		require.Equal(t, guard.RouteHome, f.service.DashboardRoute())
	})

	t.Run("expired keeps claims", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)
		f.now = f.now.Add(2 * time.Hour)

		_, ok := f.service.CheckAuth()
		require.False(t, ok)
		_, ok = f.sessions.CurrentClaims()
		require.True(t, ok)
		require.Equal(t, guard.RouteHome, f.service.DashboardRoute())
	})

	t.Run("disallowed role is cleared", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.sessions.Establish(f.credential(t, "admin-1", []string{"SUPER_ADMIN"}, f.now.Add(time.Hour)))
		require.NoError(t, err)

		_, ok := f.service.CheckAuth()
		require.False(t, ok)
		_, ok = f.sessions.CurrentClaims()
		require.False(t, ok)
	})

	t.Run("drives the route guard", func(t *testing.T) {
		f := setupTestFixture(t)
		g, err := guard.New(f.service)
		require.NoError(t, err)

		view := guard.Request{Path: guard.RouteStoreDashboard, RequiredRoles: []users.RoleType{users.RoleTenantAdmin}}
		require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteHome}, g.Mount(view))

		f.login(t, farmerEmail)
		require.Equal(t, guard.Decision{Action: guard.ActionRedirect, Target: guard.RouteFarmerDashboard}, g.Mount(view))
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, farmerEmail)

	require.NoError(t, f.service.Logout())
	require.False(t, f.sessions.IsValid())
	require.NoError(t, f.service.Logout())
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.service.ChangePassword(ctx, testPassword, changedPassword)
		require.ErrorIs(t, err, auth.ErrSessionNotFound)
		require.Empty(t, f.backend.Calls())
	})

	t.Run("new must differ", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)
		err := f.service.ChangePassword(ctx, testPassword, testPassword)
		require.ErrorIs(t, err, auth.ErrPasswordUnchanged)
	})

	t.Run("too short", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)
		err := f.service.ChangePassword(ctx, testPassword, "abc")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("wrong old password keeps the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)
		f.backend.AddAccount("farmer-1@example.com", "other-password", "")

		err := f.service.ChangePassword(ctx, testPassword, changedPassword)
		require.ErrorIs(t, err, api.ErrApplicationFailure)
		require.True(t, f.sessions.IsValid())
	})

	t.Run("success signs out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, farmerEmail)
		f.backend.AddAccount("farmer-1@example.com", testPassword, "")

		require.NoError(t, f.service.ChangePassword(ctx, testPassword, changedPassword))
		require.Equal(t, changedPassword, f.backend.Password("farmer-1@example.com"))
		require.False(t, f.sessions.IsValid())
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	require.Error(t, f.service.RequestPasswordReset(ctx, "not-an-email"))

	err := f.service.RequestPasswordReset(ctx, "nobody@example.com")
	require.ErrorIs(t, err, api.ErrApplicationFailure)

	require.NoError(t, f.service.RequestPasswordReset(ctx, farmerEmail))
	token := f.backend.ResetToken(farmerEmail)
	require.NotEmpty(t, token)

	require.Error(t, f.service.ResetPassword(ctx, "", farmerEmail, changedPassword))
	require.Error(t, f.service.ResetPassword(ctx, token, farmerEmail, "abc"))

	require.NoError(t, f.service.ResetPassword(ctx, token, farmerEmail, changedPassword))
	require.Equal(t, changedPassword, f.backend.Password(farmerEmail))

	err = f.service.ResetPassword(ctx, token, farmerEmail, changedPassword)
	require.ErrorIs(t, err, api.ErrApplicationFailure)
}

func TestRegistration(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	form := auth.FarmerRegistration{
		FirstName:       "Ada",
		LastName:        "Field",
		Email:           "ada@example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}

	_, ok := f.service.PendingRegistration()
	require.False(t, ok)
	require.ErrorIs(t, f.service.ResendVerification(ctx), auth.ErrNoPendingEmail)

	t.Run("register", func(t *testing.T) {
		mismatched := form
		mismatched.ConfirmPassword = "password999"
		require.Error(t, f.service.RegisterFarmer(ctx, mismatched))

		require.NoError(t, f.service.RegisterFarmer(ctx, form))

		reg, ok := f.service.PendingRegistration()
		require.True(t, ok)
		require.Equal(t, "ada@example.com", reg.PendingEmail)
		require.Equal(t, users.UserTypeFarmer, reg.PendingType)
		require.Equal(t, guard.RouteFarmerLogin, f.service.VerificationLoginRoute())

		err := f.service.RegisterFarmer(ctx, form)
		require.ErrorIs(t, err, api.ErrApplicationFailure)
	})

	t.Run("resend cooldown", func(t *testing.T) {
		require.NoError(t, f.service.ResendVerification(ctx))
		require.Equal(t, 1, f.backend.Resends("ada@example.com"))

		f.now = f.now.Add(30 * time.Second)
		err := f.service.ResendVerification(ctx)
		require.ErrorIs(t, err, auth.ErrResendCooldown)
		require.Contains(t, err.Error(), "30s")
		require.Equal(t, 1, f.backend.Resends("ada@example.com"))

		f.now = f.now.Add(31 * time.Second)
		require.NoError(t, f.service.ResendVerification(ctx))
		require.Equal(t, 2, f.backend.Resends("ada@example.com"))
	})

	t.Run("verify", func(t *testing.T) {
		_, err := f.service.VerifyRegistration(ctx, "   ")
		require.Error(t, err)

		_, err = f.service.VerifyRegistration(ctx, "bogus")
		require.ErrorIs(t, err, api.ErrApplicationFailure)

		msg, err := f.service.VerifyRegistration(ctx, f.backend.VerifyToken("ada@example.com"))
		require.NoError(t, err)
		require.Equal(t, "User verified successfully", msg)
		require.True(t, f.backend.Verified("ada@example.com"))
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, f.service.ClearRegistration())
		_, ok := f.service.PendingRegistration()
		require.False(t, ok)
		require.ErrorIs(t, f.service.ResendVerification(ctx), auth.ErrNoPendingEmail)
	})
}

func TestRegistration_CorruptStorage(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set(auth.RegistrationKey, "{not json"))

	_, ok := f.service.PendingRegistration()
	require.False(t, ok)
	require.Equal(t, guard.RouteFarmerLogin, f.service.VerificationLoginRoute())
}

func TestVerificationLoginRoute_Store(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set(auth.RegistrationKey, `{"pendingVerificationEmail":"shop@example.com","pendingUserType":"store"}`))

	reg, ok := f.service.PendingRegistration()
	require.True(t, ok)
	require.Equal(t, users.UserTypeStore, reg.PendingType)
	require.Equal(t, guard.RouteStoreLogin, f.service.VerificationLoginRoute())
}

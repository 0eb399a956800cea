// Package auth runs the account flows of the client: login and logout,
// the role gate, password changes and resets, and farmer registration with
// email verification.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-bidagri-client/api"
	"github.com/jrsteele09/go-bidagri-client/guard"
	"github.com/jrsteele09/go-bidagri-client/kvstore"
	"github.com/jrsteele09/go-bidagri-client/lot"
	"github.com/jrsteele09/go-bidagri-client/session"
	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultResendCooldown is the wait between verification mails
const DefaultResendCooldown = 60 * time.Second

// AllowedRoles are the roles that may sign in to the client
var AllowedRoles = []users.RoleType{users.RoleTenantAdmin, users.RoleSystemUser}

var _ guard.Authenticator = (*Service)(nil)

// Deps holds the collaborators of the Service
type Deps struct {
	Backend  Backend          // REST API
	Sessions *session.Manager // Stored credential and claims
	Lots     *lot.Store       // Optional; receives the anonymous lot on login
	Store    kvstore.Store    // Registration progress
}

// Service provides the login, password and registration flows.
type Service struct {
	deps           Deps
	validator      *Validator
	resendCooldown time.Duration
	nowTime        func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithResendCooldown sets the minimum wait between verification mails
func WithResendCooldown(cooldown time.Duration) ServiceOption {
	return func(s *Service) {
		s.resendCooldown = cooldown
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Backend == nil {
		return nil, errors.New("[NewService] Backend is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[NewService] Sessions is required")
	}
	if deps.Store == nil {
		return nil, errors.New("[NewService] Store is required")
	}

	s := &Service{
		deps:           deps,
		validator:      NewValidator(),
		resendCooldown: DefaultResendCooldown,
		nowTime:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login signs in with the backend, stores the session, and applies the
// role gate. Any anonymous lot moves to the signed-in user.
func (s *Service) Login(ctx context.Context, userName, password string) (*users.User, error) {
	if err := s.validator.ValidateUserCredentials(userName, password); err != nil {
		return nil, &CredentialsError{Message: err.Error()}
	}

	token, err := s.deps.Backend.Login(ctx, strings.TrimSpace(userName), password)
	if err != nil {
		s.clearSession()
		return nil, loginError(err)
	}

	claims, err := s.deps.Sessions.Establish(token)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] establishing session")
	}
	if err := s.deps.Sessions.Check(); err != nil {
		s.clearSession()
		return nil, errors.Wrap(err, "[Service.Login] issued session unusable")
	}

	roles := claims.Roles()
	if !roles.HasAny(AllowedRoles...) {
		s.clearSession()
		log.Warn().Str("sub", claims.Subject()).Str("roles", roles.String()).Msg("Login refused for role")
		return nil, errors.Wrapf(ErrAccessDenied, "your role(s): %s", roles)
	}

	s.migrateLot(claims.Subject())
	log.Info().Str("sub", claims.Subject()).Msg("Logged in")
	return claims.User(), nil
}

// Logout discards the stored session
func (s *Service) Logout() error {
	if err := s.deps.Sessions.Clear(); err != nil {
		return errors.Wrap(err, "[Service.Logout] clearing session")
	}
	return nil
}

// CheckAuth returns the signed-in user. A valid session without an allowed
// role is cleared. An expired session is reported absent but left stored.
func (s *Service) CheckAuth() (*users.User, bool) {
	if !s.deps.Sessions.IsValid() {
		return nil, false
	}

	user, ok := s.deps.Sessions.User()
	if !ok {
		return nil, false
	}
	if !user.HasRole(AllowedRoles...) {
		log.Warn().Str("sub", user.ID).Msg("Session lacks an allowed role, clearing")
		s.clearSession()
		return nil, false
	}
	return user, true
}

// DashboardRoute is the default view of the signed-in user
func (s *Service) DashboardRoute() string {
	return guard.DashboardFor(s.currentRoles())
}

// LoginRedirect is the login page matching the signed-in user's role
func (s *Service) LoginRedirect() string {
	return guard.LoginFor(s.currentRoles())
}

// ChangePassword changes the signed-in user's password and signs out on success.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := users.ValidatePasswordChange(oldPassword, newPassword); err != nil {
		return err
	}
	if err := s.deps.Sessions.Check(); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword] not signed in")
	}

	claims, _ := s.deps.Sessions.CurrentClaims()
	if err := s.deps.Backend.ChangePassword(ctx, claims.Email(), oldPassword, newPassword); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword] backend")
	}
	return s.Logout()
}

// RequestPasswordReset mails a reset link to email
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.validator.ValidateEmail(email); err != nil {
		return err
	}
	if err := s.deps.Backend.RequestPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		return errors.Wrap(err, "[Service.RequestPasswordReset] backend")
	}
	return nil
}

// ResetPassword sets a new password with the token from a reset link
func (s *Service) ResetPassword(ctx context.Context, token, email, password string) error {
	if err := s.validator.ValidatePasswordReset(token, email, password); err != nil {
		return err
	}
	if err := s.deps.Backend.ResetPassword(ctx, strings.TrimSpace(token), strings.TrimSpace(email), password); err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] backend")
	}
	return nil
}

// RegisterFarmer creates a farmer account and records it as awaiting
// email verification.
func (s *Service) RegisterFarmer(ctx context.Context, reg FarmerRegistration) error {
	if err := s.validator.ValidateRegistration(reg); err != nil {
		return err
	}

	email := strings.TrimSpace(reg.Email)
	if _, err := s.deps.Backend.RegisterFarmer(ctx, api.Registration{
		FirstName:        strings.TrimSpace(reg.FirstName),
		LastName:         strings.TrimSpace(reg.LastName),
		Email:            email,
		Password:         reg.Password,
		MatchingPassword: reg.ConfirmPassword,
	}); err != nil {
		return errors.Wrap(err, "[Service.RegisterFarmer] backend")
	}

	pending := s.loadRegistration()
	pending.PendingEmail = email
	pending.PendingType = users.UserTypeFarmer
	if err := s.saveRegistration(pending); err != nil {
		return errors.Wrap(err, "[Service.RegisterFarmer] storing registration")
	}
	return nil
}

// VerifyRegistration confirms an account and returns the backend's message
func (s *Service) VerifyRegistration(ctx context.Context, token string) (string, error) {
	if err := s.validator.ValidateVerificationToken(token); err != nil {
		return "", err
	}
	msg, err := s.deps.Backend.VerifyRegistration(ctx, strings.TrimSpace(token))
	if err != nil {
		return "", errors.Wrap(err, "[Service.VerifyRegistration] backend")
	}
	return msg, nil
}

// ResendVerification mails a new verification link to the pending
// sign-up. Calls within the cooldown of the last mail are refused.
func (s *Service) ResendVerification(ctx context.Context) error {
	reg := s.loadRegistration()
	if !reg.Pending() {
		return ErrNoPendingEmail
	}

	now := s.nowTime()
	if reg.LastResendTime != nil {
		if wait := reg.LastResendTime.Add(s.resendCooldown).Sub(now); wait > 0 {
			return errors.Wrapf(ErrResendCooldown, "try again in %s", wait.Round(time.Second))
		}
	}

	if err := s.deps.Backend.ResendVerification(ctx, reg.PendingEmail); err != nil {
		return errors.Wrap(err, "[Service.ResendVerification] backend")
	}

	reg.LastResendTime = &now
	if err := s.saveRegistration(reg); err != nil {
		return errors.Wrap(err, "[Service.ResendVerification] storing resend time")
	}
	return nil
}

// PendingRegistration returns the sign-up awaiting verification, if any
func (s *Service) PendingRegistration() (Registration, bool) {
	reg := s.loadRegistration()
	return reg, reg.Pending()
}

// ClearRegistration forgets the pending sign-up
func (s *Service) ClearRegistration() error {
	reg := s.loadRegistration()
	reg.PendingEmail = ""
	reg.PendingType = ""
	return s.saveRegistration(reg)
}

// VerificationLoginRoute is the login page for the pending sign-up's account kind
func (s *Service) VerificationLoginRoute() string {
	return guard.LoginForUserType(s.loadRegistration().PendingType)
}

func (s *Service) currentRoles() users.RoleSet {
	if !s.deps.Sessions.IsValid() {
		return users.NewRoleSet()
	}
	claims, ok := s.deps.Sessions.CurrentClaims()
	if !ok {
		return users.NewRoleSet()
	}
	return claims.Roles()
}

func (s *Service) migrateLot(sub string) {
	if s.deps.Lots == nil || sub == "" {
		return
	}
	if _, err := s.deps.Lots.MigrateAnonymousTo(sub); err != nil {
		log.Err(err).Str("sub", sub).Msg("Failed moving anonymous lot")
	}
}

func (s *Service) clearSession() {
	if err := s.deps.Sessions.Clear(); err != nil {
		log.Err(err).Msg("Failed clearing session")
	}
}

// loginError maps a backend refusal to a CredentialsError with a message
// fit for the user. Transport failures pass through wrapped.
func loginError(err error) error {
	var appErr *api.ApplicationError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if msg == "" {
			msg = DefaultLoginMessage
		}
		return &CredentialsError{Message: msg, Err: err}
	}

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Unauthorized() {
		msg := reqErr.Message
		if msg == "" {
			msg = DefaultLoginMessage
		}
		return &CredentialsError{Message: msg, Err: err}
	}
	return errors.Wrap(err, "[Service.Login] backend")
}

package fakebackend

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-bidagri-client/api"
	"github.com/jrsteele09/go-bidagri-client/auth"
)

var _ auth.Backend = (*FakeBackend)(nil)

type account struct {
	password   string
	credential string
	verified   bool
}

// FakeBackend answers the auth endpoints from memory, failing the way the
// real backend does.
type FakeBackend struct {
	accounts     map[string]*account
	resetTokens  map[string]string // token -> email
	verifyTokens map[string]string // token -> email
	resends      map[string]int
	calls        []string
	lock         sync.RWMutex
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		accounts:     make(map[string]*account),
		resetTokens:  make(map[string]string),
		verifyTokens: make(map[string]string),
		resends:      make(map[string]int),
	}
}

// AddAccount registers a verified account that logs in with credential.
// An empty credential makes login answer without one.
func (b *FakeBackend) AddAccount(email, password, credential string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.accounts[email] = &account{password: password, credential: credential, verified: true}
}

// SetCredential changes what a later login for email returns
func (b *FakeBackend) SetCredential(email, credential string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if acc, ok := b.accounts[email]; ok {
		acc.credential = credential
	}
}

// Password returns the current password of email
func (b *FakeBackend) Password(email string) string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if acc, ok := b.accounts[email]; ok {
		return acc.password
	}
	return ""
}

// Verified reports whether email completed verification
func (b *FakeBackend) Verified(email string) bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	acc, ok := b.accounts[email]
	return ok && acc.verified
}

// ResetToken returns the token mailed to email by RequestPasswordReset
func (b *FakeBackend) ResetToken(email string) string {
	return b.tokenFor(b.resetTokens, email)
}

// VerifyToken returns the token mailed to email by RegisterFarmer
func (b *FakeBackend) VerifyToken(email string) string {
	return b.tokenFor(b.verifyTokens, email)
}

// Resends counts verification mails resent to email
func (b *FakeBackend) Resends(email string) int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.resends[email]
}

// Calls lists the endpoints hit, in order
func (b *FakeBackend) Calls() []string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return append([]string(nil), b.calls...)
}

func (b *FakeBackend) Login(_ context.Context, userName, password string) (string, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "login")

	acc, ok := b.accounts[userName]
	if !ok || acc.password != password {
		return "", &api.RequestError{
			Method:     http.MethodPost,
			Path:       "/user/login",
			StatusCode: http.StatusUnauthorized,
			Status:     "401 Unauthorized",
		}
	}
	if !acc.verified {
		return "", &api.ApplicationError{Message: "User account is not verified", ResultStatus: "FAILED"}
	}
	if acc.credential == "" {
		return "", &api.ApplicationError{ResultStatus: "FAILED"}
	}
	return acc.credential, nil
}

func (b *FakeBackend) RequestPasswordReset(_ context.Context, email string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "resetPassword")

	if _, ok := b.accounts[email]; !ok {
		return &api.ApplicationError{Message: "User not found", ResultStatus: "FAILED"}
	}
	b.resetTokens["reset-"+email] = email
	return nil
}

func (b *FakeBackend) ResetPassword(_ context.Context, token, userName, password string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "reset/password")

	email, ok := b.resetTokens[token]
	if !ok || email != userName {
		return &api.ApplicationError{Message: "Invalid reset token", ResultStatus: "FAILED"}
	}
	delete(b.resetTokens, token)
	b.accounts[email].password = password
	return nil
}

func (b *FakeBackend) ChangePassword(_ context.Context, email, oldPassword, newPassword string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "changePassword")

	acc, ok := b.accounts[email]
	if !ok || acc.password != oldPassword {
		return &api.ApplicationError{Message: "Old password is incorrect", ResultStatus: "FAILED"}
	}
	acc.password = newPassword
	return nil
}

func (b *FakeBackend) RegisterFarmer(_ context.Context, reg api.Registration) (*api.RegisteredUser, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "register")

	if _, ok := b.accounts[reg.Email]; ok {
		return nil, &api.ApplicationError{Message: "User already exists", ResultStatus: "FAILED"}
	}
	b.accounts[reg.Email] = &account{password: reg.Password}
	b.verifyTokens["verify-"+reg.Email] = reg.Email
	return &api.RegisteredUser{
		ID:        int64(len(b.accounts)),
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Roles:     []api.Role{{ID: api.FarmerRoleID, Name: "SYSTEM_USER"}},
	}, nil
}

func (b *FakeBackend) VerifyRegistration(_ context.Context, token string) (string, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "verifyRegistration")

	email, ok := b.verifyTokens[token]
	if !ok {
		return "", &api.ApplicationError{Message: "Invalid verification token", ResultStatus: "FAILED"}
	}
	delete(b.verifyTokens, token)
	b.accounts[email].verified = true
	return "User verified successfully", nil
}

func (b *FakeBackend) ResendVerification(_ context.Context, email string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, "resendVerifyToken")

	if _, ok := b.accounts[email]; !ok {
		return &api.ApplicationError{Message: "User not found", ResultStatus: "FAILED"}
	}
	b.resends[email]++
	b.verifyTokens["verify-"+email] = email
	return nil
}

func (b *FakeBackend) tokenFor(tokens map[string]string, email string) string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for token, e := range tokens {
		if e == email {
			return token
		}
	}
	return ""
}

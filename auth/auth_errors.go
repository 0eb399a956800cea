package auth

import (
	ierrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
)

var (
	ErrInvalidCredentials = ierrors.ErrInvalidCredentials
	ErrAccessDenied       = ierrors.ErrAccessDenied
	ErrPasswordUnchanged  = ierrors.ErrPasswordUnchanged
	ErrResendCooldown     = ierrors.ErrResendCooldown
	ErrNoPendingEmail     = ierrors.ErrNoPendingEmail
	ErrSessionNotFound    = ierrors.ErrSessionNotFound
)

// DefaultLoginMessage is shown when a login fails without a backend message
const DefaultLoginMessage = "Invalid email/username or password. Please check your credentials."

// CredentialsError is a rejected login. Message is fit to show the user.
type CredentialsError struct {
	Message string
	Err     error
}

func (e *CredentialsError) Error() string {
	return e.Message
}

func (e *CredentialsError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidCredentials}
	}
	return []error{ErrInvalidCredentials, e.Err}
}

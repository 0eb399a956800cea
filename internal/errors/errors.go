package errors

import (
	"errors"
	"fmt"
)

// Common error types for the BidAgri client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrPasswordUnchanged  = errors.New("new password must be different from old password")
	ErrResendCooldown     = errors.New("verification email recently sent")
	ErrNoPendingEmail     = errors.New("no pending verification email")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Lot errors
	ErrUnauthenticatedWrite = errors.New("lot write requires an authenticated user")
	ErrOwnerMismatch        = errors.New("owner does not match active session")
	ErrUnknownPriceField    = errors.New("unknown price field")

	// Storage errors
	ErrStorageCorrupt = errors.New("stored data corrupt")

	// Backend errors
	ErrRequestFailed      = errors.New("request failed")
	ErrApplicationFailure = errors.New("request rejected by backend")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

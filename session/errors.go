package session

import (
	"fmt"

	ierrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
)

var (
	// ErrInvalidToken matches every *DecodeError
	ErrInvalidToken = ierrors.ErrInvalidToken
	// ErrExpired reports a stored session whose exp claim has passed
	ErrExpired = ierrors.ErrTokenExpired
	// ErrNotFound reports that no session is established
	ErrNotFound = ierrors.ErrSessionNotFound
	// ErrStorageCorrupt reports stored claims that cannot be parsed
	ErrStorageCorrupt = ierrors.ErrStorageCorrupt
)

// DecodeStage names the step of the credential pipeline that failed
type DecodeStage string

const (
	StageInput   DecodeStage = "input"
	StageBase64  DecodeStage = "base64"
	StageInflate DecodeStage = "inflate"
	StageJWT     DecodeStage = "jwt"
)

// DecodeError is returned when a credential cannot be turned into claims.
// It matches ErrInvalidToken with errors.Is.
type DecodeError struct {
	Stage DecodeStage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding credential (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrInvalidToken, e.Err}
}

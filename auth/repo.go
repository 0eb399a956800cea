package auth

import (
	"context"

	"github.com/jrsteele09/go-bidagri-client/api"
)

var _ Backend = (*api.Client)(nil)

// Backend is the part of the REST API the auth flows call
type Backend interface {
	Login(ctx context.Context, userName, password string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, userName, password string) error
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	RegisterFarmer(ctx context.Context, registration api.Registration) (*api.RegisteredUser, error)
	VerifyRegistration(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, email string) error
}

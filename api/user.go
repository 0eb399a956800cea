package api

import (
	"context"
	"net/http"
	"strings"
)

// Fixed ids the backend assigns self-registered farmers
const (
	DefaultTenantID int64 = 1
	FarmerRoleID    int64 = 3
)

const defaultLoginError = "Invalid email/username or password. Please check your credentials."

type (
	loginRequest struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}

	// LoginPayload is what /user/login returns on success
	LoginPayload struct {
		JWTToken string `json:"jwtToken"`
	}

	emailRequest struct {
		Email string `json:"email"`
	}

	resetPasswordRequest struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}

	changePasswordRequest struct {
		Email       string `json:"email"`
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}

	idRef struct {
		ID int64 `json:"id"`
	}

	// Registration is a farmer's sign-up form
	Registration struct {
		FirstName        string `json:"firstName"`
		LastName         string `json:"lastName"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		MatchingPassword string `json:"matchingPassword"`
	}

	registerRequest struct {
		Registration
		Tenant idRef   `json:"tenantDTO"`
		Roles  []idRef `json:"roleDTOs"`
	}

	// Role as the backend describes it
	Role struct {
		ID   int64  `json:"id"`
		Name string `json:"name,omitempty"`
		Code string `json:"code,omitempty"`
	}

	// RegisteredUser is the account created by RegisterFarmer
	RegisteredUser struct {
		ID        int64  `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Enabled   bool   `json:"enabled"`
		Active    bool   `json:"active"`
		Roles     []Role `json:"roleDTOs"`
	}
)

// Login exchanges a user name and password for the compressed credential.
// A response without a credential is an *ApplicationError whose message is
// the backend's, or a generic one when it sent none.
func (c *Client) Login(ctx context.Context, userName, password string) (string, error) {
	envelope, err := call[LoginPayload](ctx, c, http.MethodPost, "/user/login", authNone, loginRequest{
		UserName: userName,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	payload, _ := envelope.Data()
	if token := strings.TrimSpace(payload.JWTToken); token != "" {
		return token, nil
	}

	appErr := &ApplicationError{
		Message:      envelope.Message,
		ResultStatus: envelope.ResultStatus,
		HTTPCode:     string(envelope.HTTPCode),
	}
	if appErr.Message == "" {
		appErr.Message = defaultLoginError
	}
	return "", appErr
}

// RequestPasswordReset asks the backend to mail a reset link to email
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return expectSuccess[any](ctx, c, http.MethodPost, "/user/resetPassword", authNone, emailRequest{Email: email})
}

// ResetPassword sets a new password using the token from the reset link
func (c *Client) ResetPassword(ctx context.Context, token, userName, password string) error {
	path := withQuery("/user/reset/password", map[string]string{"token": token})
	return expectSuccess[any](ctx, c, http.MethodPost, path, authNone, resetPasswordRequest{
		UserName: userName,
		Password: password,
	})
}

// ChangePassword changes the signed-in user's password
func (c *Client) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	return expectSuccess[any](ctx, c, http.MethodPost, "/user/changePassword", authRequired, changePasswordRequest{
		Email:       email,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
}

// RegisterFarmer creates a farmer account in the default tenant
func (c *Client) RegisterFarmer(ctx context.Context, registration Registration) (*RegisteredUser, error) {
	envelope, err := call[RegisteredUser](ctx, c, http.MethodPost, "/user/register", authNone, registerRequest{
		Registration: registration,
		Tenant:       idRef{ID: DefaultTenantID},
		Roles:        []idRef{{ID: FarmerRoleID}},
	})
	if err != nil {
		return nil, err
	}
	if err := envelope.Err(); err != nil {
		return nil, err
	}
	user, _ := envelope.Data()
	return &user, nil
}

// VerifyRegistration confirms an account with the token from the
// verification mail and returns the backend's confirmation text.
func (c *Client) VerifyRegistration(ctx context.Context, token string) (string, error) {
	path := withQuery("/user/verifyRegistration", map[string]string{"token": token})
	envelope, err := call[string](ctx, c, http.MethodGet, path, authNone, nil)
	if err != nil {
		return "", err
	}
	if err := envelope.Err(); err != nil {
		return "", err
	}
	text, _ := envelope.Data()
	if text == "" {
		text = envelope.Message
	}
	return text, nil
}

// ResendVerification mails a fresh verification link to email
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	path := withQuery("/user/resendVerifyToken", map[string]string{"email": email})
	return expectSuccess[any](ctx, c, http.MethodGet, path, authNone, nil)
}

func expectSuccess[T any](ctx context.Context, c *Client, method, path string, auth authMode, body any) error {
	envelope, err := call[T](ctx, c, method, path, auth, body)
	if err != nil {
		return err
	}
	return envelope.Err()
}

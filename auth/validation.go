package auth

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-bidagri-client/users"
)

// Validator holds the form checks the auth flows run before calling the backend.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserCredentials validates login credentials. The user name may be
// an email or a plain user name.
func (v *Validator) ValidateUserCredentials(userName, password string) error {
	if strings.TrimSpace(userName) == "" {
		return fmt.Errorf("email or username is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateEmail validates an email address
func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateRegistration validates a farmer sign-up form
func (v *Validator) ValidateRegistration(reg FarmerRegistration) error {
	if strings.TrimSpace(reg.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if strings.TrimSpace(reg.LastName) == "" {
		return fmt.Errorf("last name is required")
	}
	if err := v.ValidateEmail(reg.Email); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(reg.Password); err != nil {
		return err
	}
	if reg.Password != reg.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// ValidatePasswordReset validates the reset-link form
func (v *Validator) ValidatePasswordReset(token, email, password string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("reset token is required")
	}
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	return users.ValidatePasswordStrength(password)
}

// ValidateVerificationToken validates the token pasted from a verification mail
func (v *Validator) ValidateVerificationToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("verification token is required")
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return fmt.Errorf("verification token must not contain whitespace")
	}
	return nil
}

package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-bidagri-client/internal/utils"
	"github.com/jrsteele09/go-bidagri-client/users"
)

// Claims is the decoded payload of a session credential. Recognised fields
// are sub, exp, roles, email, firstName and lastName; everything else is
// kept as decoded.
type Claims map[string]any

// Subject returns the sub claim, the user id
func (c Claims) Subject() string {
	sub, _ := jwtlib.MapClaims(c).GetSubject()
	return sub
}

// ExpiresAt returns the exp claim. ok is false when the claim is absent.
// A present but non-numeric exp is an error.
func (c Claims) ExpiresAt() (exp time.Time, ok bool, err error) {
	date, err := jwtlib.MapClaims(c).GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}
	if date == nil {
		return time.Time{}, false, nil
	}
	return date.Time, true, nil
}

// Roles returns the roles claim normalized to bare role names
func (c Claims) Roles() users.RoleSet {
	return users.NewRoleSet(utils.ToStringSlice(c["roles"])...)
}

// Email returns the email claim, falling back to the subject
func (c Claims) Email() string {
	if email := utils.StringValue(c["email"]); email != "" {
		return email
	}
	return c.Subject()
}

// User builds the user profile the claims describe
func (c Claims) User() *users.User {
	return &users.User{
		ID:        c.Subject(),
		Email:     c.Email(),
		FirstName: utils.StringValue(c["firstName"]),
		LastName:  utils.StringValue(c["lastName"]),
		Roles:     c.Roles(),
	}
}

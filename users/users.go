package users

import (
	"fmt"
	"sort"
	"strings"

	ierrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
)

// ErrPasswordUnchanged is returned when a new password repeats the old one
var ErrPasswordUnchanged = ierrors.ErrPasswordUnchanged

// RoleType is a role name carried in the session credential
type RoleType string

const (
	// RolePrefix is the conventional alias prefix. "ROLE_SYSTEM_USER" and
	// "SYSTEM_USER" name the same role.
	RolePrefix = "ROLE_"

	RoleSuperAdmin  RoleType = "SUPER_ADMIN"  // Platform administrator
	RoleTenantAdmin RoleType = "TENANT_ADMIN" // Store / merchant account
	RoleSystemUser  RoleType = "SYSTEM_USER"  // Farmer account
)

// UserType is the kind of account chosen at sign-up
type UserType string

const (
	UserTypeFarmer UserType = "farmer"
	UserTypeStore  UserType = "store"
)

// MinPasswordLength is the shortest password the backend accepts
const MinPasswordLength = 6

// NormalizeRole strips the ROLE_ alias prefix and surrounding whitespace.
func NormalizeRole(role string) RoleType {
	return RoleType(strings.TrimPrefix(strings.TrimSpace(role), RolePrefix))
}

// RoleSet is a set of normalized role names
type RoleSet map[RoleType]struct{}

// NewRoleSet normalizes every name and drops empties.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if n := NormalizeRole(r); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// HasAny reports whether the set holds at least one of roles, compared in
// normalized form.
func (s RoleSet) HasAny(roles ...RoleType) bool {
	for _, r := range roles {
		if _, ok := s[NormalizeRole(string(r))]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the role names in lexical order
func (s RoleSet) Sorted() []RoleType {
	roles := make([]RoleType, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func (s RoleSet) String() string {
	if len(s) == 0 {
		return "No roles assigned"
	}
	names := make([]string, 0, len(s))
	for _, r := range s.Sorted() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// User is the identity carried by an established session
type User struct {
	ID        string  `json:"id,omitempty"`         // Subject claim
	Email     string  `json:"email,omitempty"`      // Email claim, falling back to the subject
	FirstName string  `json:"first_name,omitempty"` // First name of the user
	LastName  string  `json:"last_name,omitempty"`  // Last name of the user
	Roles     RoleSet `json:"-"`                    // Normalized roles
}

// IsTenantAdmin returns true for store accounts
func (u *User) IsTenantAdmin() bool {
	return u != nil && u.Roles.HasAny(RoleTenantAdmin)
}

// IsFarmer returns true for farmer accounts
func (u *User) IsFarmer() bool {
	return u != nil && u.Roles.HasAny(RoleSystemUser)
}

// HasRole reports whether the user holds any of roles
func (u *User) HasRole(roles ...RoleType) bool {
	return u != nil && u.Roles.HasAny(roles...)
}

// FullName joins first and last name, or returns the email when both are empty
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// ValidatePasswordStrength checks the password length the backend enforces.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidatePasswordChange checks the new password and that it differs from the old one.
func ValidatePasswordChange(oldPassword, newPassword string) error {
	if oldPassword == "" {
		return fmt.Errorf("old password is required")
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	if oldPassword == newPassword {
		return ErrPasswordUnchanged
	}
	return nil
}

// Package session turns the credential issued at login into cached claims
// and answers the validity and role questions the rest of the client asks.
package session

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	ierrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
	"github.com/jrsteele09/go-bidagri-client/kvstore"
	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Storage keys. The raw credential and its claims are written and cleared together.
const (
	TokenKey  = "UserjwtToken"
	ClaimsKey = "decodedToken"
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Manager owns the session state held in a kvstore.Store.
type Manager struct {
	store   kvstore.Store
	nowTime func() time.Time // nowTime function (injectable for testing)
	lock    sync.RWMutex
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates a session manager over store.
func NewManager(store kvstore.Store, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}

	m := &Manager{
		store:   store,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Establish decodes raw and persists it with its claims. On a decode or
// storage failure any previous session is discarded and the session is
// left absent. Empty input is rejected without touching the stored session.
func (m *Manager) Establish(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &DecodeError{Stage: StageInput, Err: errors.New("no credential provided")}
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	claims, err := Decode(raw)
	if err != nil {
		log.Err(err).Msg("Discarding undecodable credential")
		m.clearLocked()
		return nil, err
	}

	encoded, err := json.Marshal(claims)
	if err != nil {
		m.clearLocked()
		return nil, &DecodeError{Stage: StageJWT, Err: err}
	}

	if err := m.store.Set(TokenKey, raw); err != nil {
		m.clearLocked()
		return nil, ierrors.Wrapf(err, "storing credential")
	}
	if err := m.store.Set(ClaimsKey, string(encoded)); err != nil {
		m.clearLocked()
		return nil, ierrors.Wrapf(err, "storing claims")
	}

	log.Debug().Str("sub", claims.Subject()).Msg("Session established")
	return claims, nil
}

// CurrentClaims returns the cached claims, or false when no session was
// established. Unparsable cached claims clear the whole session.
func (m *Manager) CurrentClaims() (Claims, bool) {
	m.lock.RLock()
	claims, err := m.claimsLocked()
	m.lock.RUnlock()

	if err != nil {
		m.repairCorrupt()
		return nil, false
	}
	return claims, claims != nil
}

// RawToken returns the stored credential as issued
func (m *Manager) RawToken() (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	raw, ok := m.store.Get(TokenKey)
	return raw, ok && raw != ""
}

// Check returns nil for a usable session, ErrNotFound when either half of
// the session is missing, and ErrExpired once exp has passed. Expired
// claims stay stored and queryable until Clear.
func (m *Manager) Check() error {
	_, _, err := m.check()
	return err
}

// IsValid reports whether Check passes
func (m *Manager) IsValid() bool {
	return m.Check() == nil
}

// HasRole reports whether the cached claims hold at least one of roles.
// ROLE_-prefixed and bare names are equivalent on both sides.
func (m *Manager) HasRole(roles ...users.RoleType) bool {
	claims, ok := m.CurrentClaims()
	if !ok {
		return false
	}
	return claims.Roles().HasAny(roles...)
}

// Subject returns the sub claim of the cached claims
func (m *Manager) Subject() (string, bool) {
	claims, ok := m.CurrentClaims()
	if !ok {
		return "", false
	}
	sub := claims.Subject()
	return sub, sub != ""
}

// User returns the profile described by the cached claims
func (m *Manager) User() (*users.User, bool) {
	claims, ok := m.CurrentClaims()
	if !ok {
		return nil, false
	}
	return claims.User(), true
}

// Token implements oauth2.TokenSource over the stored credential so HTTP
// clients can attach it as a bearer token.
func (m *Manager) Token() (*oauth2.Token, error) {
	raw, claims, err := m.check()
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, ok, _ := claims.ExpiresAt(); ok {
		token.Expiry = exp
	}
	return token, nil
}

// Clear removes the credential and its claims. Clearing an absent session
// is not an error.
func (m *Manager) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.clearLocked()
}

func (m *Manager) clearLocked() error {
	return errors.Join(m.store.Remove(TokenKey), m.store.Remove(ClaimsKey))
}

// claimsLocked returns nil claims when none are stored and an
// ErrStorageCorrupt error when the stored claims cannot be parsed.
func (m *Manager) claimsLocked() (Claims, error) {
	stored, ok := m.store.Get(ClaimsKey)
	if !ok || stored == "" {
		return nil, nil
	}

	var claims Claims
	if err := json.Unmarshal([]byte(stored), &claims); err != nil {
		return nil, ierrors.Wrapf(ErrStorageCorrupt, "parsing %s: %v", ClaimsKey, err)
	}
	if claims == nil {
		return nil, ierrors.Wrapf(ErrStorageCorrupt, "%s holds null", ClaimsKey)
	}
	return claims, nil
}

// repairCorrupt clears the session when the stored claims are still
// unparsable once the write lock is held.
func (m *Manager) repairCorrupt() {
	m.lock.Lock()
	defer m.lock.Unlock()

	_, err := m.claimsLocked()
	if !ierrors.Is(err, ErrStorageCorrupt) {
		return
	}
	log.Warn().Err(err).Msg("Stored claims corrupt, clearing session")
	if err := m.clearLocked(); err != nil {
		log.Err(err).Msg("Failed clearing corrupt session")
	}
}

// check runs checkLocked under the read lock, repairing corrupt storage.
// A repaired session reports ErrNotFound.
func (m *Manager) check() (string, Claims, error) {
	m.lock.RLock()
	raw, claims, err := m.checkLocked()
	m.lock.RUnlock()

	if ierrors.Is(err, ErrStorageCorrupt) {
		m.repairCorrupt()
		return "", nil, ErrNotFound
	}
	return raw, claims, err
}

func (m *Manager) checkLocked() (string, Claims, error) {
	raw, ok := m.store.Get(TokenKey)
	if !ok || raw == "" {
		return "", nil, ErrNotFound
	}
	claims, err := m.claimsLocked()
	if err != nil {
		return "", nil, err
	}
	if claims == nil {
		return "", nil, ErrNotFound
	}

	exp, hasExp, err := claims.ExpiresAt()
	if err != nil {
		return "", nil, ierrors.Wrapf(ErrInvalidToken, "%v", err)
	}
	if hasExp && !exp.After(m.nowTime()) {
		return "", nil, ErrExpired
	}
	return raw, claims, nil
}

package config

import "time"

const (
	resendCooldownVar = "RESEND_COOLDOWN"
	anonymousLotVar   = "ANONYMOUS_LOT"
)

type SessionConfig interface {
	GetResendCooldown() time.Duration
	GetAnonymousLot() bool
}

type Session struct {
	values fileValues
}

var _ SessionConfig = Session{}

// GetResendCooldown is the minimum gap between verification email resends
func (s Session) GetResendCooldown() time.Duration {
	return s.values.duration(resendCooldownVar, 60*time.Second)
}

// GetAnonymousLot reports whether products may be staged in the lot before login
func (s Session) GetAnonymousLot() bool {
	return s.values.bool(anonymousLotVar, false)
}

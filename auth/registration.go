package auth

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/rs/zerolog/log"
)

// RegistrationKey is where sign-up progress is kept between runs
const RegistrationKey = "auth-storage"

// FarmerRegistration is the sign-up form
type FarmerRegistration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Registration is the sign-up awaiting email verification
type Registration struct {
	PendingEmail   string         `json:"pendingVerificationEmail,omitempty"`
	PendingType    users.UserType `json:"pendingUserType,omitempty"`
	LastResendTime *time.Time     `json:"lastResendTime,omitempty"`
}

// Pending reports whether a sign-up is waiting for verification
func (r Registration) Pending() bool {
	return r.PendingEmail != ""
}

func (s *Service) loadRegistration() Registration {
	var reg Registration
	stored, ok := s.deps.Store.Get(RegistrationKey)
	if !ok || stored == "" {
		return reg
	}
	if err := json.Unmarshal([]byte(stored), &reg); err != nil {
		log.Warn().Err(err).Str("key", RegistrationKey).Msg("Stored registration corrupt, treating as empty")
		return Registration{}
	}
	return reg
}

func (s *Service) saveRegistration(reg Registration) error {
	if !reg.Pending() && reg.LastResendTime == nil {
		return s.deps.Store.Remove(RegistrationKey)
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	return s.deps.Store.Set(RegistrationKey, string(data))
}

package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	configFileVar  = "BIDAGRI_CONFIG"
	apiURLVar      = "API_URL"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	httpTimeoutVar = "HTTP_TIMEOUT"
)

type EnvVars struct {
	values fileValues
}

var _ EnvConfig = EnvVars{}

// GetAPIURL returns the backend base URL without a trailing slash
func (e EnvVars) GetAPIURL() string {
	return strings.TrimRight(e.values.get(apiURLVar, "http://localhost:8080/api/v1"), "/")
}

func (e EnvVars) GetAppName() string {
	return e.values.get(appNameVar, "BidAgri")
}

func (e EnvVars) GetEnv() string {
	return e.values.get(envVar, "DEV")
}

func (e EnvVars) GetLogLevel() string {
	if e.GetEnv() == "DEV" {
		return e.values.get(logLevelVar, "debug")
	}
	return e.values.get(logLevelVar, "info")
}

func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.values.duration(httpTimeoutVar, 30*time.Second)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// get resolves a setting: environment first, then the config file, then
// the default.
func (f fileValues) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := f[strings.ToLower(envVar)]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (f fileValues) duration(envVar string, defaultValue time.Duration) time.Duration {
	raw := f.get(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("setting", envVar).Str("value", raw).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}

func (f fileValues) bool(envVar string, defaultValue bool) bool {
	switch strings.ToLower(f.get(envVar, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

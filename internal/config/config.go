package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	StorageConfig
}

type EnvConfig interface {
	GetAPIURL() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Session
	Storage
}

// New builds a Config from the environment, overlaid on the file named by
// BIDAGRI_CONFIG when it is set.
func New() (Config, error) {
	return Load(GetEnv(configFileVar, ""))
}

// Load builds a Config from the environment overlaid on the given file.
// An empty path means environment and defaults only.
func Load(path string) (Config, error) {
	values, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars: EnvVars{values: values},
		Session: Session{values: values},
		Storage: Storage{values: values},
	}, nil
}

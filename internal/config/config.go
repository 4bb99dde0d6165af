package config

import "time"

type Config interface {
	EnvConfig
	CommerceConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetStorageBackend() string
	GetRedisAddr() string
	GetFakeAPI() bool
}

type CommerceConfig interface {
	GetAPIBaseURL() string
	GetCurrency() string
	GetRequestTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Commerce
	Security
}

func New() Config {
	return mainConfig{}
}

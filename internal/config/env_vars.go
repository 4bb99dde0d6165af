package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	logLevelVar    = "LOG_LEVEL"
	storageVar     = "STORAGE"
	redisAddrVar   = "REDIS_ADDR"
	fakeAPIEnvVar  = "FAKE_API"
	StorageMemory  = "memory"
	StorageRedis   = "redis"
	defaultPort    = "8081"
	defaultAppName = "Go Storefront"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, defaultPort)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, defaultAppName)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetStorageBackend selects where browser-session state is persisted: "memory" or "redis".
func (EnvVars) GetStorageBackend() string {
	backend := strings.ToLower(GetEnv(storageVar, StorageMemory))
	if backend != StorageRedis {
		return StorageMemory
	}
	return backend
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

// GetFakeAPI reports whether the in-process fake commerce API should be served instead of
// calling API_BASE_URL.
func (EnvVars) GetFakeAPI() bool {
	enabled, err := strconv.ParseBool(GetEnv(fakeAPIEnvVar, "false"))
	return err == nil && enabled
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

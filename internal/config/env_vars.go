package config

import (
	"os"
	"strconv"
)

const (
	appNameVar     = "APP_NAME"
	serverURLVar   = "SERVER_URL"
	folderEnvVar   = "FOLDER"
	httpTimeoutVar = "HTTP_TIMEOUT_SECONDS"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Attendance")
}

// GetServerURL returns the default backend address. The login screen can
// still override it per attempt; a remembered URL from a previous login
// wins over this default.
func (EnvVars) GetServerURL() string {
	return GetEnv(serverURLVar, "http://localhost:8080")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetHTTPTimeoutSeconds() int {
	raw := GetEnv(httpTimeoutVar, "30")
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 30
	}
	return secs
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// Package config reads the client's runtime settings from the
// environment. Each concern is a small interface so consumers declare only
// what they need.
package config

type Config interface {
	EnvConfig
	DeviceConfig
}

type EnvConfig interface {
	GetAppName() string
	GetServerURL() string
	GetDataFolder() string
	GetHTTPTimeoutSeconds() int
}

// DeviceConfig describes the static device metadata attached to every
// attendance submission.
type DeviceConfig interface {
	GetDeviceModel() string
	GetDeviceOS() string
}

type mainConfig struct {
	EnvVars
	Device
}

func New() Config {
	return mainConfig{}
}

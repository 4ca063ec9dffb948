package config

import "runtime"

type Device struct{}

var _ DeviceConfig = Device{}

func (Device) GetDeviceModel() string {
	return GetEnv("DEVICE_MODEL", "go-cli")
}

func (Device) GetDeviceOS() string {
	return GetEnv("DEVICE_OS", runtime.GOOS)
}

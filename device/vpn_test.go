package device_test

import (
	"net"
	"testing"

	"github.com/oneit/go-attendance-client/device"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func ifaceList(ifaces ...net.Interface) func() ([]net.Interface, error) {
	return func() ([]net.Interface, error) { return ifaces, nil }
}

func TestInterfaceScanner(t *testing.T) {
	t.Run("utun interface is a VPN", func(t *testing.T) {
		s := device.NewInterfaceScannerWith(ifaceList(
			net.Interface{Name: "en0", Flags: net.FlagUp},
			net.Interface{Name: "utun0", Flags: net.FlagUp},
		))
		active, err := s.VPNActive()
		require.NoError(t, err)
		require.True(t, active)
	})

	t.Run("plain interfaces are not", func(t *testing.T) {
		s := device.NewInterfaceScannerWith(ifaceList(
			net.Interface{Name: "en0", Flags: net.FlagUp},
			net.Interface{Name: "eth0", Flags: net.FlagUp},
		))
		active, err := s.VPNActive()
		require.NoError(t, err)
		require.False(t, active)
	})

	t.Run("down VPN interface is ignored", func(t *testing.T) {
		s := device.NewInterfaceScannerWith(ifaceList(
			net.Interface{Name: "tun0"},
		))
		active, err := s.VPNActive()
		require.NoError(t, err)
		require.False(t, active)
	})

	t.Run("loopback named oddly is ignored", func(t *testing.T) {
		s := device.NewInterfaceScannerWith(ifaceList(
			net.Interface{Name: "lotun", Flags: net.FlagUp | net.FlagLoopback},
		))
		active, err := s.VPNActive()
		require.NoError(t, err)
		require.False(t, active)
	})

	t.Run("enumeration failure surfaces", func(t *testing.T) {
		s := device.NewInterfaceScannerWith(func() ([]net.Interface, error) {
			return nil, errors.New("no netlink")
		})
		_, err := s.VPNActive()
		require.Error(t, err)
	})
}

// Package device probes the two host capabilities the attendance policy
// depends on: whether traffic would leave over a VPN, and whether the
// device owner can re-authenticate locally.
package device

import (
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// VPNChecker reports whether any active network interface belongs to a
// known VPN family.
type VPNChecker interface {
	VPNActive() (bool, error)
}

// vpnInterfaceFamilies are the interface name fragments that mark
// tunnel/PPP/IPsec/tap-family links across platforms.
var vpnInterfaceFamilies = []string{"utun", "ppp", "ipsec", "tap", "tun", "wg"}

var _ VPNChecker = (*InterfaceScanner)(nil)

// InterfaceScanner detects VPNs by inspecting the host's interface list.
// The enumeration function is injectable for tests.
type InterfaceScanner struct {
	interfaces func() ([]net.Interface, error)
}

func NewInterfaceScanner() *InterfaceScanner {
	return &InterfaceScanner{interfaces: net.Interfaces}
}

// NewInterfaceScannerWith uses the supplied enumeration function instead
// of the host's.
func NewInterfaceScannerWith(interfaces func() ([]net.Interface, error)) *InterfaceScanner {
	return &InterfaceScanner{interfaces: interfaces}
}

// VPNActive scans interfaces that are up and reports a match against the
// VPN family list. Loopback interfaces are ignored.
func (s *InterfaceScanner) VPNActive() (bool, error) {
	ifaces, err := s.interfaces()
	if err != nil {
		return false, errors.Wrap(err, "[InterfaceScanner.VPNActive] listing interfaces")
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		name := strings.ToLower(iface.Name)
		for _, family := range vpnInterfaceFamilies {
			if strings.Contains(name, family) {
				log.Debug().Str("interface", iface.Name).Msg("VPN-family interface detected")
				return true, nil
			}
		}
	}
	return false, nil
}

package arpframe

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseMAC converts a hardware address of the exact form
// "aa:bb:cc:dd:ee:ff" (six colon-separated hex octets) into bytes.
// Unlike net.ParseMAC it rejects dashes, dots and EUI-64 forms, keeping
// the wire-facing format unambiguous.
func ParseMAC(s string) (net.HardwareAddr, error) {
	parts := strings.Split(s, ":")
	if len(parts) != hardwareAddrLen {
		return nil, fmt.Errorf("%w: mac %q", ErrInvalidAddressFormat, s)
	}
	mac := make(net.HardwareAddr, hardwareAddrLen)
	for i, part := range parts {
		if len(part) != 2 {
			return nil, fmt.Errorf("%w: mac %q", ErrInvalidAddressFormat, s)
		}
		octet, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: mac %q", ErrInvalidAddressFormat, s)
		}
		mac[i] = byte(octet)
	}
	return mac, nil
}

// FormatMAC renders a 6-byte hardware address as lowercase
// colon-separated hex. Invalid lengths render as the all-zero string,
// matching the enumeration default for adapters without a MAC.
func FormatMAC(mac net.HardwareAddr) string {
	if len(mac) != hardwareAddrLen {
		mac = ZeroMAC
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

// ParseIPv4 converts a dotted-quad string into a 4-byte net.IP. IPv6
// literals and out-of-range octets are rejected.
func ParseIPv4(s string) (net.IP, error) {
	parts := strings.Split(s, ".")
	if len(parts) != protocolAddrLen {
		return nil, fmt.Errorf("%w: ip %q", ErrInvalidAddressFormat, s)
	}
	ip := make(net.IP, protocolAddrLen)
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return nil, fmt.Errorf("%w: ip %q", ErrInvalidAddressFormat, s)
		}
		octet, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: ip %q", ErrInvalidAddressFormat, s)
		}
		ip[i] = byte(octet)
	}
	return ip, nil
}

// FormatIPv4 renders a 4-byte address as a dotted quad.
func FormatIPv4(ip net.IP) string {
	ip4 := ip.To4()
	if ip4 == nil {
		return ""
	}
	return ip4.String()
}

// IsZeroMAC reports whether mac is empty or the all-zero sentinel used
// for unresolved hardware addresses.
func IsZeroMAC(mac net.HardwareAddr) bool {
	if len(mac) == 0 {
		return true
	}
	for _, b := range mac {
		if b != 0 {
			return false
		}
	}
	return true
}

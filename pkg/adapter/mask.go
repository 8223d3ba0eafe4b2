package adapter

import "net"

// maskString renders a prefix length as a dotted-quad subnet mask.
func maskString(prefixLength int) string {
	if prefixLength < 0 || prefixLength > 32 {
		return ""
	}
	return net.IP(net.CIDRMask(prefixLength, 32)).String()
}

//go:build windows

package adapter

import (
	"net"
	"os/exec"

	"github.com/tidwall/gjson"
)

// defaultGatewaysByIfIndex asks PowerShell for the IPv4 default routes
// and maps interface index to next-hop address. The adapter list API
// exposed to Go carries no gateway information, so the route table is
// queried separately; failures degrade to an empty map (no gateway)
// rather than failing enumeration.
func defaultGatewaysByIfIndex() map[uint32]string {
	gateways := make(map[uint32]string)

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command",
		"Get-NetRoute -AddressFamily IPv4 -DestinationPrefix 0.0.0.0/0 | Select-Object ifIndex,NextHop | ConvertTo-Json -Compress")
	output, err := cmd.Output()
	if err != nil {
		return gateways
	}

	// a single route serializes as a bare object, several as an array;
	// gjson's Array() normalizes both
	for _, route := range gjson.ParseBytes(output).Array() {
		nextHop := route.Get("NextHop").String()
		if ip := net.ParseIP(nextHop); ip == nil || ip.To4() == nil || ip.IsUnspecified() {
			continue
		}
		gateways[uint32(route.Get("ifIndex").Uint())] = nextHop
	}

	return gateways
}

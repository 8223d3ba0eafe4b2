//go:build !windows

package adapter

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/projectdiscovery/arpx/pkg/arpframe"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// enumerateAdapters lists host interfaces on non-Windows platforms.
// The adapter identifier is the interface name; loopbacks are skipped,
// everything else is included regardless of link state.
func enumerateAdapters() ([]Record, error) {
	interfaces, err := psnet.Interfaces()
	if err != nil {
		return nil, err
	}

	gateways := defaultGatewaysByInterface()

	var records []Record
	for _, iface := range interfaces {
		if hasFlag(iface.Flags, "loopback") {
			continue
		}

		record := Record{
			ID:          iface.Name,
			DisplayName: iface.Name,
			MAC:         arpframe.FormatMAC(nil),
			IsUp:        hasFlag(iface.Flags, "up"),
			IsWireless:  isWirelessInterface(iface.Name),
		}
		if mac, err := net.ParseMAC(iface.HardwareAddr); err == nil && len(mac) == 6 {
			record.MAC = arpframe.FormatMAC(mac)
		}

		for _, addr := range iface.Addrs {
			ip, ipnet, err := net.ParseCIDR(addr.Addr)
			if err != nil || ip.To4() == nil {
				continue
			}
			record.IP = ip.To4().String()
			ones, _ := ipnet.Mask.Size()
			record.SubnetMask = maskString(ones)
			break
		}

		if gw, ok := gateways[iface.Name]; ok {
			record.GatewayIP = gw
		}

		records = append(records, record)
	}

	return records, nil
}

func hasFlag(flags []string, want string) bool {
	for _, flag := range flags {
		if strings.EqualFold(flag, want) {
			return true
		}
	}
	return false
}

// isWirelessInterface checks the sysfs wireless marker; on platforms
// without sysfs this simply reports false.
func isWirelessInterface(name string) bool {
	_, err := os.Stat(filepath.Join("/sys/class/net", name, "wireless"))
	return err == nil
}

// defaultGatewaysByInterface parses /proc/net/route for 0.0.0.0/0
// routes. Fields are little-endian hex. Missing or unreadable route
// tables degrade to an empty map.
func defaultGatewaysByInterface() map[string]string {
	gateways := make(map[string]string)

	f, err := os.Open("/proc/net/route")
	if err != nil {
		return gateways
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// header line
	if !scanner.Scan() {
		return gateways
	}
	for scanner.Scan() {
		// Iface Destination Gateway Flags ...
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			continue
		}
		gw := make(net.IP, 4)
		binary.BigEndian.PutUint32(gw, binary.LittleEndian.Uint32(raw))
		if gw.IsUnspecified() {
			continue
		}
		if _, ok := gateways[fields[0]]; !ok {
			gateways[fields[0]] = gw.String()
		}
	}

	return gateways
}

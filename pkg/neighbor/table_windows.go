//go:build windows

package neighbor

import (
	"bufio"
	"fmt"
	"net"
	"os/exec"
	"strings"
)

// readNeighborTable parses `arp -a` output. The listing is grouped per
// interface:
//
//	Interface: 192.168.1.100 --- 0xa
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
func readNeighborTable() ([]Entry, error) {
	cmd := exec.Command("arp", "-a")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -a: %w", err)
	}

	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(string(output)))

	inTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.Contains(line, "Internet Address") && strings.Contains(line, "Physical Address") {
			inTable = true
			continue
		}
		if strings.HasPrefix(line, "Interface:") {
			inTable = false
			continue
		}
		if !inTable {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		macStr := fields[1]
		if macStr == "incomplete" || strings.HasPrefix(macStr, "ff-ff-ff-ff-ff-ff") {
			continue
		}
		// Windows prints dash-separated MACs
		macStr = strings.ReplaceAll(macStr, "-", ":")

		ip := net.ParseIP(fields[0])
		if ip == nil || ip.To4() == nil {
			continue
		}
		mac, err := net.ParseMAC(macStr)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{IP: ip.To4(), MAC: mac})
	}

	return entries, scanner.Err()
}

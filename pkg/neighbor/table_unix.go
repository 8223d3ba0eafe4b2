//go:build !windows

package neighbor

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"

	osutils "github.com/projectdiscovery/utils/os"
)

func readNeighborTable() ([]Entry, error) {
	if osutils.IsLinux() {
		return readLinuxTable()
	} else if osutils.IsOSX() {
		return readDarwinTable()
	}
	return nil, fmt.Errorf("unsupported OS")
}

// readLinuxTable parses /proc/net/arp.
func readLinuxTable() ([]Entry, error) {
	data, err := os.ReadFile("/proc/net/arp")
	if err != nil {
		return nil, err
	}

	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(string(data)))

	// header line
	if !scanner.Scan() {
		return entries, nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// IP address, HW type, Flags, HW address, Mask, Device
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}

		macStr := fields[3]
		if macStr == "00:00:00:00:00:00" || macStr == "<incomplete>" {
			continue
		}

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

// readDarwinTable parses `arp -a` lines of the form
// "? (192.168.1.1) at aa:bb:cc:dd:ee:ff [ethernet] on en0".
func readDarwinTable() ([]Entry, error) {
	cmd := exec.Command("arp", "-a")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -a: %w", err)
	}

	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(string(output)))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ipStart := strings.Index(line, "(")
		ipEnd := strings.Index(line, ")")
		if ipStart == -1 || ipEnd == -1 || ipStart >= ipEnd {
			continue
		}
		atIndex := strings.Index(line, " at ")
		if atIndex == -1 {
			continue
		}
		macStart := atIndex + 4
		macEnd := strings.IndexAny(line[macStart:], " [")
		if macEnd == -1 {
			macEnd = len(line) - macStart
		}
		macStr := strings.TrimSpace(line[macStart : macStart+macEnd])
		if macStr == "(incomplete)" || macStr == "" {
			continue
		}

		ip := net.ParseIP(line[ipStart+1 : ipEnd])
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

// Package neighbor reads the operating system's IP-to-MAC neighbor
// cache (the ARP table). The engine consults it before emitting ARP
// probes of its own.
package neighbor

import (
	"net"
)

// Entry is one cached IP-to-MAC binding.
type Entry struct {
	IP  net.IP
	MAC net.HardwareAddr
}

// Source supplies neighbor cache contents. The system implementation
// shells out to the platform's ARP table; tests substitute a fixture.
type Source interface {
	// Entries returns the current cache contents, incomplete entries
	// excluded.
	Entries() ([]Entry, error)
	// Lookup returns the cached MAC for ip, or nil when no entry
	// exists. A nil result is not an error.
	Lookup(ip net.IP) (net.HardwareAddr, error)
}

// SystemSource reads the host's neighbor cache.
type SystemSource struct{}

// NewSystemSource returns a Source backed by the operating system.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// Entries reads the platform neighbor table.
func (s *SystemSource) Entries() ([]Entry, error) {
	return readNeighborTable()
}

// Lookup scans the table for ip.
func (s *SystemSource) Lookup(ip net.IP) (net.HardwareAddr, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	return Find(entries, ip), nil
}

// Find returns the MAC bound to ip within entries, or nil.
func Find(entries []Entry, ip net.IP) net.HardwareAddr {
	for _, entry := range entries {
		if entry.IP.Equal(ip) {
			return entry.MAC
		}
	}
	return nil
}

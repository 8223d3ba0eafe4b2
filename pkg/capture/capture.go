// Package capture wraps the pcap handle used for raw frame injection
// and capture-device enumeration, keeping the cgo dependency out of the
// pure packages.
package capture

import (
	"time"

	"github.com/google/gopacket/pcap"
	errorutil "github.com/projectdiscovery/utils/errors"
)

const (
	// snapLen is the capture snapshot length.
	snapLen = 65536
	// promiscuous mode lets the handle see frames addressed to others,
	// which poisoning verification relies on.
	promiscuous = true
	// readTimeout keeps reads from blocking forever so the handle stays
	// responsive to close.
	readTimeout = 100 * time.Millisecond

	arpFilter = "arp"
)

// Injector transmits raw link-layer frames on an open capture handle.
type Injector interface {
	WritePacketData([]byte) error
	Close()
}

// Reader returns inbound frames from an open capture handle. *Handle
// implements it; injection-only fakes may not.
type Reader interface {
	ReadPacketData() ([]byte, error)
}

// Handle is a live pcap capture bound to one device.
type Handle struct {
	pcap *pcap.Handle
}

// Open opens device for live capture and injection in promiscuous,
// short-timeout mode and restricts inbound traffic to ARP.
func Open(device string) (*Handle, error) {
	h, err := pcap.OpenLive(device, snapLen, promiscuous, readTimeout)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not open capture device %s", device)
	}
	// non-fatal: injection does not need the filter, reads just see more
	_ = h.SetBPFFilter(arpFilter)
	return &Handle{pcap: h}, nil
}

// WritePacketData injects one raw frame.
func (h *Handle) WritePacketData(data []byte) error {
	return h.pcap.WritePacketData(data)
}

// ReadPacketData reads one raw frame, honoring the handle timeout.
func (h *Handle) ReadPacketData() ([]byte, error) {
	data, _, err := h.pcap.ReadPacketData()
	return data, err
}

// Close releases the underlying pcap handle.
func (h *Handle) Close() {
	h.pcap.Close()
}

// ListDevices enumerates the raw capture device paths known to the
// capture subsystem (on Windows these look like \Device\NPF_{GUID}).
func ListDevices() ([]string, error) {
	ifs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not list capture devices")
	}
	names := make([]string, 0, len(ifs))
	for _, iface := range ifs {
		names = append(names, iface.Name)
	}
	return names, nil
}

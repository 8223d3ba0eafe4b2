// Package adapter enumerates host network interfaces and binds each one
// to its packet-capture device. The operating system labels interfaces
// with a stable identifier while the capture subsystem uses a distinct
// path string embedding the same token, so the two naming schemes have
// to be reconciled here.
package adapter

import (
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
	stringsutil "github.com/projectdiscovery/utils/strings"
)

// Record describes one host interface from a single enumeration pass.
// CaptureDevice is empty when no capture device maps to the interface;
// MAC defaults to the all-zero string when the hardware address is
// unavailable. Records are immutable per snapshot.
type Record struct {
	ID            string `json:"id"`
	CaptureDevice string `json:"capture_device,omitempty"`
	DisplayName   string `json:"display_name"`
	Description   string `json:"description,omitempty"`
	MAC           string `json:"mac_address"`
	IP            string `json:"ip_address,omitempty"`
	SubnetMask    string `json:"subnet_mask,omitempty"`
	GatewayIP     string `json:"gateway_ip,omitempty"`
	IsUp          bool   `json:"is_up"`
	IsWireless    bool   `json:"is_wireless"`
}

// DeviceLister supplies the raw capture device paths. Injected so the
// catalog can be exercised without libpcap present.
type DeviceLister func() ([]string, error)

const snapshotTTL = 10 * time.Second

// Catalog enumerates adapters and answers validation and capture-device
// mapping queries against a short-lived snapshot.
type Catalog struct {
	lister   DeviceLister
	snapshot gcache.Cache[string, []Record]
}

const snapshotKey = "adapters"

// NewCatalog builds a catalog. lister may be nil, in which case every
// record's CaptureDevice stays empty (capture unavailable).
func NewCatalog(lister DeviceLister) *Catalog {
	return &Catalog{
		lister: lister,
		snapshot: gcache.New[string, []Record](1).
			LRU().
			Expiration(snapshotTTL).
			Build(),
	}
}

// List returns all non-loopback interfaces regardless of link state.
// Enumeration never fails because of a single degraded interface: a
// missing MAC becomes the all-zero string and a missing capture device
// an empty CaptureDevice.
func (c *Catalog) List() ([]Record, error) {
	if cached, err := c.snapshot.Get(snapshotKey); err == nil {
		return cached, nil
	}

	records, err := enumerateAdapters()
	if err != nil {
		return nil, err
	}

	var devices []string
	if c.lister != nil {
		// capture being unavailable degrades the records, never the call
		devices, _ = c.lister()
	}
	for i := range records {
		records[i].CaptureDevice = matchCaptureDevice(records[i].ID, devices)
	}

	_ = c.snapshot.Set(snapshotKey, records)
	return records, nil
}

// Validate reports whether adapterID appears in the current enumeration.
func (c *Catalog) Validate(adapterID string) bool {
	_, ok := c.find(adapterID)
	return ok
}

// Find returns the record for adapterID from the current snapshot.
func (c *Catalog) Find(adapterID string) (Record, bool) {
	return c.find(adapterID)
}

// ResolveCaptureDevice maps an adapter identifier to its capture device
// path. The empty string means capture is unavailable for this
// interface; callers must not treat that as an error.
func (c *Catalog) ResolveCaptureDevice(adapterID string) string {
	if record, ok := c.find(adapterID); ok && record.CaptureDevice != "" {
		return record.CaptureDevice
	}
	if c.lister == nil {
		return ""
	}
	devices, err := c.lister()
	if err != nil {
		return ""
	}
	return matchCaptureDevice(adapterID, devices)
}

func (c *Catalog) find(adapterID string) (Record, bool) {
	records, err := c.List()
	if err != nil {
		return Record{}, false
	}
	for _, record := range records {
		if stringsutil.EqualFoldAny(record.ID, adapterID) {
			return record, true
		}
	}
	return Record{}, false
}

// matchCaptureDevice picks the capture device path embedding the adapter
// token. Containment is checked in both directions to tolerate token
// truncation on either side. Deterministic: first match in device-list
// order wins.
func matchCaptureDevice(adapterID string, devices []string) string {
	if adapterID == "" {
		return ""
	}
	token := strings.ToLower(adapterID)
	for _, device := range devices {
		candidate := strings.ToLower(device)
		if strings.Contains(candidate, token) || strings.Contains(token, candidate) {
			return device
		}
	}
	return ""
}

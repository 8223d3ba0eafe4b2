package runner

import (
	"os"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/arpx/pkg/version"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
)

var au *aurora.Aurora

var (
	// InterfaceEnv preselects the network interface without a flag.
	InterfaceEnv = envutil.GetEnvOrDefault("ARPX_INTERFACE", "")
)

// Options contains the configuration options for a run.
type Options struct {
	Interface    string
	ListAdapters bool
	ListDevices  bool
	JSON         bool

	Probe goflags.StringSlice

	TargetIP  string
	TargetMAC string

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`arpx discovers local network topology over ARP and performs targeted cache poisoning for authorized testing`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Interface, "interface", "i", InterfaceEnv, "network interface to operate on (name or id)"),
		flagSet.BoolVarP(&options.ListAdapters, "list-adapters", "la", false, "list network adapters then exit"),
		flagSet.BoolVarP(&options.ListDevices, "list-devices", "ld", false, "list capture devices then exit"),
		flagSet.BoolVar(&options.JSON, "json", false, "write adapter listing as json"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.StringSliceVarP(&options.Probe, "probe", "p", nil, "send an arp request to single or multiple ipv4 addresses (comma separated)", goflags.NormalizedStringSliceOptions),
	)

	flagSet.CreateGroup("poison", "Poison",
		flagSet.StringVarP(&options.TargetIP, "target", "t", "", "victim ipv4 address to poison until interrupted"),
		flagSet.StringVarP(&options.TargetMAC, "target-mac", "tm", "", "victim hardware address (aa:bb:cc:dd:ee:ff)"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	// configure aurora for logging
	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.Version)
		os.Exit(0)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

// validate checks that the selected flags form a runnable combination.
func (options *Options) validate() error {
	if options.ListAdapters || options.ListDevices {
		return nil
	}
	if options.Interface == "" {
		return errInterfaceRequired
	}
	if (options.TargetIP == "") != (options.TargetMAC == "") {
		return errTargetIncomplete
	}
	return nil
}

package main

import (
	"github.com/projectdiscovery/arpx/internal/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {
	options := runner.ParseOptions()

	r, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}
	defer r.Close()

	if err := r.Run(); err != nil {
		gologger.Fatal().Msgf("Could not run arpx: %s\n", err)
	}
}

package runner

import (
	"github.com/projectdiscovery/arpx/pkg/version"
	"github.com/projectdiscovery/gologger"
)

var banner = `
   ____ _______  _  __
  / __ '/ ___/ |/ |/_/
 / /_/ / /   >  <_>  <
 \__,_/_/   /_/|_/_/|_|
`

// showBanner prints the project banner and version
func showBanner() {
	gologger.Print().Msgf("%s\n", au.Cyan(banner))
	gologger.Print().Msgf("\t\tprojectdiscovery.io  %s\n\n", au.Faint(version.Version))
}

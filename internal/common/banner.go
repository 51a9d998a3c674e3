package common

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

const appName = "Turn Green E2E"

// PrintBanner prints the startup banner and the target of this invocation.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print(appName, GetVersion())

	target := config.BaseURL
	if target == "" {
		target = "(BASE_URL not set)"
	}
	mode := "headed"
	if config.Browser.Headless {
		mode = "headless"
	}
	fmt.Fprintf(os.Stdout, "  %s -> %s%s\n  workers %d, retries %d, %s\n\n",
		config.Environment, target, config.ServicePath, config.Workers, config.Retries, mode)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("base_url", config.BaseURL).
		Bool("ci", config.CI).
		Msg("Starting " + appName)
}

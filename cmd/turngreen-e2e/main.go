package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/ternarybob/turngreen-e2e/internal/secure"
)

// app is the state shared by every subcommand once the root pre-run has
// resolved configuration.
type app struct {
	configFiles []string
	flags       common.FlagOverrides
	noBanner    bool

	config *common.Config
	logger arbor.ILogger
	masker *secure.Masker
}

func main() {
	os.Exit(run())
}

func run() int {
	defer common.RecoverWithCrashFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{masker: secure.NewMasker()}
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", a.masker.Redact(err.Error()))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	var (
		env      string
		logLevel string
	)

	root := &cobra.Command{
		Use:           "turngreen-e2e",
		Short:         "End-to-end browser tests for the Turn Green CMS",
		Version:       common.GetFullVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("env") {
				a.flags.Environment = &env
			}
			if cmd.Flags().Changed("log-level") {
				a.flags.LogLevel = &logLevel
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringSliceVarP(&a.configFiles, "config", "c", nil, "Configuration file (repeatable, later files override earlier ones)")
	root.PersistentFlags().StringVar(&env, "env", "", "Environment name, selects .env.{env} (overrides ENV)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.noBanner, "no-banner", false, "Do not print the startup banner")

	root.AddCommand(a.runCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.scheduleCmd())
	root.AddCommand(versionCmd())

	return root
}

// setup runs the startup sequence: load config (defaults, files, .env, env),
// apply flag overrides, validate, initialise logging, print the banner.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	files := a.configFiles
	if len(files) == 0 {
		files = discoverConfig()
	}

	var env string
	if a.flags.Environment != nil {
		env = *a.flags.Environment
	}
	config, err := common.LoadForEnvironment(env, files...)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	common.ApplyFlagOverrides(config, a.flags)
	if err := config.Validate(); err != nil {
		return err
	}

	a.config = config
	a.logger = common.InitLogger(config)
	common.InstallCrashHandler(config.Logging.Dir, a.masker.Redact)

	if !a.noBanner && cmd.Name() != "list" {
		common.PrintBanner(config, a.logger)
	}

	a.logger.Debug().
		Strs("config_files", files).
		Str("environment", config.Environment).
		Bool("ci", config.CI).
		Str("log_level", config.Logging.Level).
		Msg("Configuration resolved")
	return nil
}

// discoverConfig looks for a config file in the working directory, then in
// deployments/local for runs from the repository root.
func discoverConfig() []string {
	for _, path := range []string{"turngreen-e2e.toml", "deployments/local/turngreen-e2e.toml"} {
		if _, err := os.Stat(path); err == nil {
			return []string{path}
		}
	}
	return nil
}

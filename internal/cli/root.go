// Package cli implements the godotime commands.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/tliron/kutil/logging"

	// Must include a logging backend implementation.
	_ "github.com/tliron/kutil/logging/simple"

	"godotime/internal/config"
	"godotime/internal/lsp"
)

// Version is stamped at build time.
var Version = "0.1.0"

var (
	cfgPath     string
	wakatimeCLI string
	logFile     string
	debug       bool
)

// RootCmd is the top-level command; running it without a subcommand
// starts the LSP server on stdio.
var RootCmd = &cobra.Command{
	Use:   "godotime",
	Short: "Activity tracking for the Godot editor",
	Long: "An LSP server that observes Godot editor document events and emits " +
		"rate-limited wakatime heartbeats tagged with project and git branch.",
	RunE: runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Settings file (default: ~/.config/godotime/config.toml)")
	RootCmd.Flags().StringVar(&wakatimeCLI, "wakatime-cli", "", "Path to wakatime-cli binary (overrides config)")
	RootCmd.Flags().StringVar(&logFile, "log-file", "", "JSON activity log path (overrides config)")
	RootCmd.Flags().BoolVar(&debug, "debug", false, "Verbose logging")
}

func loadConfig() (config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if wakatimeCLI != "" {
		cfg.WakatimeCLI = wakatimeCLI
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr; stdout carries the LSP protocol.
	verbosity := 0
	if cfg.Debug {
		verbosity = 2
	}
	logging.Configure(verbosity, nil)

	return lsp.NewServer(cfg, Version, logging.GetLogger("godotime")).Run()
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/shellpad/internal/config"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "shellpad",
	Short: "Terminal workspace for HTML, CSS and JavaScript fiddles",
	Long: `Shellpad edits the markup, style and script of a fiddle in three
terminal panels and runs, saves, lints and tidies it against a fiddle
server. The serve command starts a local development server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: shellpad.toml or shellpad.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// loadConfig resolves the configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Find(wd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

package main

import (
	"io"
	"log/slog"

	"github.com/nao1215/crawlzip/internal/config"
	crawllog "github.com/nao1215/crawlzip/internal/log"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig loads file, .env and environment settings and then applies
// the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var configPath string
	if f := cmd.Flags().Lookup("config"); f != nil {
		configPath = f.Value.String()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	if flags.Changed("depth") {
		if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("addr") {
		if cfg.ListenAddress, err = flags.GetString("addr"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates the secret-masking logger. Without verbose output
// only warnings and errors are shown.
func setupLogger(w io.Writer, verbose, jsonFormat bool, quiet slog.Level) *slog.Logger {
	level := crawllog.Level(verbose, quiet)
	if jsonFormat {
		return crawllog.NewSecureJSONLogger(w, level)
	}
	return crawllog.NewSecureLogger(w, level)
}

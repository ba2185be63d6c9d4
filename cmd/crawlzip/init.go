package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/crawlzip/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/crawlzip.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new crawlzip configuration file",
		Long: `Initialize creates a new .crawlzip configuration file in the current directory.

The generated file documents every setting with its default value.
Secrets such as the API key are read from the environment only.

Examples:
  # Create .crawlzip in current directory
  crawlzip init

  # Create config file at a specific path
  crawlzip init -o myconfig.yaml

  # Force overwrite existing file
  crawlzip init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/crawlzip.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nSet secrets in the environment or a .env file:")
	fmt.Fprintf(out, "  %s=fc-your-api-key-here\n", config.EnvAPIKey)
	fmt.Fprintf(out, "  %s=... (or %s)\n", config.EnvAdminPassword, config.EnvAdminPasswordHash)

	return nil
}

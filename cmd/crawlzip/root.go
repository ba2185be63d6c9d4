package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for crawlzip.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawlzip",
		Short: "Crawl websites into markdown archives",
		Long: `crawlzip crawls a website through the Firecrawl service and saves every
page as a markdown file, together with an index and crawl metadata.

Run "crawlzip crawl" to write the files locally, or "crawlzip serve" to offer
a password-protected web form that returns the result as a zip download.

The API key is read from FIRECRAWL_API_KEY (a .env file is honored).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .crawlzip in current or home directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

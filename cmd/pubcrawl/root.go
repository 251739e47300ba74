// Package main provides the entry point for the pubcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pubcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubcrawl",
		Short: "Harvest publications and report metadata from agency websites",
		Long: `Pubcrawl harvests publication documents and report metadata from public
agency websites. It crawls a site for linked documents, paginates rendered
listing pages, extracts structured report records, and archives feed and
sitemap snapshots.

Use 'pubcrawl run' for a full harvest, or the stage commands (crawl,
scrape, feed, sitemap) to run a single stage on its own.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewFeedCmd())
	cmd.AddCommand(NewSitemapCmd())
	cmd.AddCommand(NewRecordsCmd())
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/database"
	"github.com/spf13/cobra"
)

// NewRecordsCmd creates the records command.
// This command inspects the report records stored by previous harvests.
func NewRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List report records stored in the database",
		Long: `Records lists the report records extracted by previous harvests.

Records live in a SQLite database in the XDG data directory. Each record
is keyed by its report page URL, so re-harvesting the same report never
creates duplicates.

Examples:
  # List all stored records
  pubcrawl records

  # Show the full record for one report page
  pubcrawl records --url https://www.tillvaxtanalys.se/publikationer/rapport-2024-07.html

  # Output records in JSON format
  pubcrawl records --json`,
		Args: cobra.NoArgs,
		RunE: runRecordsCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"Show the full record stored for this report page URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output records in JSON format")

	return cmd
}

// runRecordsCmd executes the records command.
func runRecordsCmd(cmd *cobra.Command, _ []string) error {
	recordURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if recordURL != "" {
		return showStoredRecord(ctx, db, recordURL, jsonOutput)
	}

	return listStoredRecords(ctx, db, jsonOutput)
}

// listStoredRecords lists every record in the database.
func listStoredRecords(ctx context.Context, db *database.ReportDB, jsonOutput bool) error {
	records, err := db.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No records found in the database.")
		fmt.Println("\nUse 'pubcrawl run <url>' to harvest a site.")
		return nil
	}

	fmt.Printf("Stored records (%d):\n\n", len(records))
	fmt.Printf("  %-6s  %-12s  %-18s  %s\n", "ID", "Date", "Series", "Title")
	fmt.Println("  " + strings.Repeat("-", 76))

	for _, record := range records {
		fmt.Printf("  %-6d  %-12s  %-18s  %s\n",
			record.ID,
			placeholder(record.Record.Date),
			placeholder(record.Record.SeriesNumber),
			placeholder(record.Record.Title),
		)
	}

	fmt.Println("\nUse 'pubcrawl records --url <url>' to see one full record.")

	return nil
}

// showStoredRecord prints the record stored for one report page URL.
func showStoredRecord(ctx context.Context, db *database.ReportDB, recordURL string, jsonOutput bool) error {
	record, err := db.GetReportByURL(ctx, recordURL)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if record == nil {
		return fmt.Errorf("no record stored for %s", recordURL)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	}

	fmt.Printf("Record #%d\n\n", record.ID)
	fmt.Printf("  Title:        %s\n", placeholder(record.Record.Title))
	fmt.Printf("  Case number:  %s\n", placeholder(record.Record.CaseNumber))
	fmt.Printf("  Series:       %s\n", placeholder(record.Record.SeriesNumber))
	fmt.Printf("  Date:         %s\n", placeholder(record.Record.Date))
	fmt.Printf("  URL:          %s\n", record.Record.URL)
	fmt.Printf("  Stored at:    %s\n", record.StoredAt.Format("2006-01-02 15:04:05"))
	if record.Record.Description != "" {
		fmt.Printf("\n  %s\n", record.Record.Description)
	}

	return nil
}

// placeholder substitutes "-" for values the extractor could not find.
func placeholder(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

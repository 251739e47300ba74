package main

import (
	"strings"
	"testing"
)

func TestNewScrapeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScrapeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scrape [url]" {
			t.Errorf("expected Use to be 'scrape [url]', got %s", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected Short description to be set")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(cmd.Long, "headless browser") {
			t.Errorf("expected Long description to mention the headless browser, got %s", cmd.Long)
		}
	})

	t.Run("has listing-url flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("listing-url")
		if flag == nil {
			t.Fatal("expected listing-url flag to exist")
		}
		if flag.DefValue != "" {
			t.Errorf("expected listing-url flag default to be empty, got %s", flag.DefValue)
		}
	})

	t.Run("has excel flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("excel")
		if flag == nil {
			t.Fatal("expected excel flag to exist")
		}
		if flag.DefValue != "" {
			t.Errorf("expected excel flag default to be empty, got %s", flag.DefValue)
		}
	})

	t.Run("does not have depth flag (pagination is not a crawl)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("depth") != nil {
			t.Error("expected depth flag to not exist")
		}
	})
}

// TestRunScrapeCmdNoListingURL exercises the pre-flight check that runs
// before the database is opened or a browser is started.
func TestRunScrapeCmdNoListingURL(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetArgs([]string{"scrape", "https://www.example.se"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error when no listing URL is configured")
	}
	if !strings.Contains(err.Error(), "no listing URL configured") {
		t.Errorf("expected 'no listing URL configured' error, got %v", err)
	}
}

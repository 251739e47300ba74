package main

import (
	"strings"
	"testing"
)

func TestNewSitemapCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSitemapCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "sitemap [url]" {
			t.Errorf("expected Use to be 'sitemap [url]', got %s", cmd.Use)
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
		if !strings.Contains(cmd.Long, "sitemap.xml") {
			t.Errorf("expected Long description to mention sitemap.xml, got %s", cmd.Long)
		}
	})

	t.Run("has sitemap-url flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("sitemap-url")
		if flag == nil {
			t.Fatal("expected sitemap-url flag to exist")
		}
		if flag.DefValue != "" {
			t.Errorf("expected sitemap-url flag default to be empty, got %s", flag.DefValue)
		}
	})

	t.Run("does not have depth flag (the sitemap is walked, not crawled)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("depth") != nil {
			t.Error("expected depth flag to not exist")
		}
	})
}

func TestRunSitemapCmdNoSitemapURL(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetArgs([]string{"sitemap", "https://www.example.se"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error when no sitemap URL is configured")
	}
	if !strings.Contains(err.Error(), "no sitemap URL configured") {
		t.Errorf("expected 'no sitemap URL configured' error, got %v", err)
	}
}

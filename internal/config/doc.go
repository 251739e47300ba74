// Package config provides configuration structures and utilities for pubcrawl.
// It defines the main configuration options for crawling target sites,
// listing pagination, metadata extraction, and report generation preferences.
package config

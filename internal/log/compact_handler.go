package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be masked.
// The fetcher injects consent cookies and custom headers into every
// request, and those values have no business appearing in log output.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":     true,
	"passwd":       true,
	"secret":       true,
	"token":        true,
	"api_key":      true,
	"apikey":       true,
	"api-key":      true,
	"access_token": true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"jsessionid": true,
}

// MaskValue is the string used to replace masked values.
const MaskValue = "***MASKED***"

// MaxAttrValueLen is the maximum length of a string attribute value before
// it is truncated. Crawl logs routinely carry page titles, anchor text, and
// extracted descriptions, and an unbounded value can dump an entire HTML
// fragment into a single log line.
const MaxAttrValueLen = 256

// truncationSuffix is appended to truncated values so readers can tell a
// shortened value from a naturally short one.
const truncationSuffix = "...(truncated)"

// CompactHandler wraps an slog.Handler to mask sensitive attributes and
// truncate oversized values. It intercepts log records and rewrites
// attribute values before passing them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. It keeps crawl logs readable when pages embed long markup
type CompactHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler
}

// NewCompactHandler creates a new CompactHandler wrapping the given handler.
// All log attributes will be masked or truncated before being passed to the
// underlying handler. If handler is nil, the returned CompactHandler will
// use slog.Default().Handler().
func NewCompactHandler(handler slog.Handler) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CompactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it to the underlying handler.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	// Create a new record with rewritten attributes
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are rewritten before being added.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewrittenAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewrittenAttrs[i] = h.rewriteAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(rewrittenAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name)}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func (h *CompactHandler) rewriteAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewrittenAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewrittenAttrs[i] = h.rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewrittenAttrs...)}
	}

	// Check if the key indicates sensitive data
	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	// Truncate oversized string values
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if len(strVal) > MaxAttrValueLen {
			return slog.String(a.Key, strVal[:MaxAttrValueLen]+truncationSuffix)
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// Note: We intentionally exclude the bare "key" keyword as it causes false
// positives (e.g., "primary_key", "keyboard", "monkey"). Specific key-related
// patterns like "api_key" are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth",
		"credential", "cookie",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// NewLogger creates a new slog.Logger with compact handling.
// The logger masks sensitive information and truncates oversized values
// in all log output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	compactHandler := NewCompactHandler(textHandler)

	return slog.New(compactHandler)
}

// NewJSONLogger creates a new slog.Logger with compact handling
// that outputs JSON format. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger configured for JSON output with masking and
// truncation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	compactHandler := NewCompactHandler(jsonHandler)

	return slog.New(compactHandler)
}

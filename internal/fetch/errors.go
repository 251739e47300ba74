package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned when a fetch is attempted with an empty URL.
	ErrEmptyURL = errors.New("fetch URL is empty")

	// ErrInvalidURL is returned when the URL cannot be parsed or is not absolute.
	ErrInvalidURL = errors.New("fetch URL is invalid")

	// ErrStatusNotOK is returned when the server answers with a non-2xx status.
	ErrStatusNotOK = errors.New("server returned non-2xx status")
)

// FailureKind classifies why a URL could not be turned into usable content.
type FailureKind string

const (
	// KindUnreachable covers transport errors, timeouts, and non-2xx
	// responses. The URL may exist but could not be retrieved.
	KindUnreachable FailureKind = "unreachable"

	// KindUnexpectedContentType marks a response whose Content-Type does not
	// match what the processing stage needs (e.g. a PDF link that serves HTML).
	KindUnexpectedContentType FailureKind = "unexpected_content_type"

	// KindShortOrEmptyContent marks a response whose body is too small to be
	// a real page. Rendered sessions use it to flag half-loaded documents.
	KindShortOrEmptyContent FailureKind = "short_or_empty_content"

	// KindParseAnomaly marks content that was retrieved but could not be
	// parsed into the expected structure.
	KindParseAnomaly FailureKind = "parse_anomaly"
)

// Failure is a typed fetch or processing failure. Callers are expected to
// log it and skip the URL rather than abort the run.
//
// Design decision: Failure is a struct rather than a set of sentinel errors
// because:
//  1. Callers need the URL and attempt count for log context
//  2. The kind drives run-report bookkeeping, not control flow
//  3. The cause chain stays intact via Unwrap for errors.Is checks
type Failure struct {
	// Kind classifies the failure.
	Kind FailureKind

	// URL is the URL that failed.
	URL string

	// StatusCode is the last HTTP status received, if any. Zero when the
	// request never produced a response.
	StatusCode int

	// Attempts is the number of fetch attempts made before giving up.
	Attempts int

	// Cause is the underlying error, if any.
	Cause error
}

// NewFailure creates a Failure of the given kind for a URL.
func NewFailure(kind FailureKind, url string, cause error) *Failure {
	return &Failure{
		Kind:  kind,
		URL:   url,
		Cause: cause,
	}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.URL, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.URL)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// IsKind reports whether err is a *Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

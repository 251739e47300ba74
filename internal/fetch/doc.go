// Package fetch retrieves single URLs over HTTP for the crawler and
// harvesters.
//
// The Fetcher rotates user agents from a configured pool, retries transient
// failures with a fixed delay, follows redirects while recording the final
// resolved URL, and caps page bodies at a configured size. A raw cookie
// string and extra headers can be injected into every request (including
// redirects) through a wrapping RoundTripper, which is how consent cookies
// are seeded for sites with cookie walls.
//
// Failures are typed: every abandoned URL yields a *Failure carrying a
// FailureKind, the last HTTP status, and the attempt count, so callers can
// log and skip without aborting the whole run.
package fetch

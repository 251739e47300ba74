// Package render loads pages in a JavaScript-capable browser session.
//
// The listing index and the report pages build their content client-side,
// so a plain HTTP GET returns a shell. ChromeRenderer drives headless
// Chrome through chromedp: it seeds a consent cookie before the first
// navigation, strips leftover cookie banners from the DOM, and returns the
// rendered outer HTML. The Renderer interface keeps callers testable with
// stub implementations returning canned markup.
package render

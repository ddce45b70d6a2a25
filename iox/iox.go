// Package iox holds small cleanup helpers shared by the HTTP clients
// and the CLI renderers.
package iox

import "io"

// DrainClose consumes the rest of an HTTP response body and closes it,
// keeping the underlying connection reusable. Neither error carries
// signal at cleanup time, so both are dropped:
//
//	defer iox.DrainClose(resp.Body)
func DrainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// CloseFunc adapts a Closer to the niladic shape t.Cleanup wants:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr runs a cleanup call whose error has nowhere useful to go,
// such as a deferred tabwriter Flush:
//
//	defer iox.DiscardErr(tw.Flush)
func DiscardErr(fn func() error) { _ = fn() }

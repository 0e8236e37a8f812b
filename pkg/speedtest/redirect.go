package speedtest

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultMaxRedirects is the maximum number of redirect hops a probe follows.
const DefaultMaxRedirects = 10

var (
	// ErrTooManyRedirects is returned when a redirect chain exceeds the configured max hops.
	ErrTooManyRedirects = errors.New("redirect loop detected")

	// ErrCrossProtocolRedirect is returned when a redirect leaves http/https.
	ErrCrossProtocolRedirect = errors.New("cross-protocol redirect not supported")
)

func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// RedirectPolicy returns a CheckRedirect function that caps the number of
// hops and refuses to follow a speed test endpoint off the web.
func RedirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: exceeded %d hops (last URL: %s)",
				ErrTooManyRedirects, maxRedirects, via[len(via)-1].URL)
		}
		if !isHTTPScheme(req.URL.Scheme) {
			return fmt.Errorf("%w: -> %s", ErrCrossProtocolRedirect, req.URL.Scheme)
		}
		return nil
	}
}

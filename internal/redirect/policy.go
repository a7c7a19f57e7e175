// Package redirect decides whether a tracked visitor is forwarded after
// the event has been logged. The decision is pure: configuration in,
// target URL out, no ambient state.
package redirect

import (
	"net/url"

	"github.com/clustmart/festival-tracker/internal/store"
)

// Decide returns the redirect target for a validated festival id, or
// ok=false when no redirect should happen. The id query parameter is set on
// the destination, replacing any pre-existing id while preserving all other
// parameters. A destination that fails to parse disables the redirect
// rather than forwarding the visitor somewhere malformed.
func Decide(cfg store.RedirectConfig, festivalID string) (string, bool) {
	if !cfg.Enabled || cfg.DestinationURL == "" {
		return "", false
	}

	u, err := url.Parse(cfg.DestinationURL)
	if err != nil || !u.IsAbs() {
		return "", false
	}

	q := u.Query()
	q.Set("id", festivalID)
	u.RawQuery = q.Encode()

	return u.String(), true
}

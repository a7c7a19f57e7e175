package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/clustmart/festival-tracker/internal/gate"
	"github.com/clustmart/festival-tracker/internal/identity"
	"github.com/clustmart/festival-tracker/internal/redirect"
	"github.com/clustmart/festival-tracker/internal/store"
	"github.com/sirupsen/logrus"
)

// appendTimeout bounds the synchronous event write on the tracking path.
// The write must happen before a redirect decision, but a slow database
// must never hold a visitor's page load for long.
const appendTimeout = 2 * time.Second

// Tracker inspects every inbound request for an id query parameter, logs
// accepted visits and optionally redirects them. All failure modes on this
// path degrade to "do nothing, continue serving" - anonymous visitors never
// see an error caused by tracking.
type Tracker struct {
	gate     *gate.Gate
	hasher   *identity.Hasher
	events   store.EventStore
	settings store.RedirectConfigStore
	log      *logrus.Entry
}

func NewTracker(logger *logrus.Logger, g *gate.Gate, h *identity.Hasher, events store.EventStore, settings store.RedirectConfigStore) *Tracker {
	return &Tracker{
		gate:     g,
		hasher:   h,
		events:   events,
		settings: settings,
		log:      logger.WithField("component", "tracker"),
	}
}

func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/admin") {
			if target, ok := t.track(r); ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// track returns a redirect target when the visit was accepted and the
// operator has a redirect configured. The event append always precedes the
// redirect decision; a pending redirect never skips or reorders logging.
func (t *Tracker) track(r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		return "", false
	}

	visit := gate.Visit{
		FestivalID: id,
		ClientIP:   getClientIP(r),
		UserAgent:  r.UserAgent(),
	}

	ok, reason := t.gate.Check(visit)
	if !ok {
		// Silent drop: no signal to the requester, only a debug trace.
		t.log.WithFields(logrus.Fields{
			"reason":    reason,
			"client_ip": visit.ClientIP,
		}).Debug("Tracking request dropped")
		return "", false
	}

	ctx, cancel := context.WithTimeout(r.Context(), appendTimeout)
	defer cancel()

	hash := t.hasher.Hash(visit.ClientIP, visit.UserAgent, time.Now())
	if _, err := t.events.Append(ctx, id, hash, visit.ClientIP); err != nil {
		// Fire-and-forget: the event is lost, the page load is not.
		t.log.WithError(err).Warn("Failed to record tracking event")
	}

	cfg, err := t.settings.Load(ctx)
	if err != nil {
		t.log.WithError(err).Warn("Failed to load redirect config")
		return "", false
	}

	return redirect.Decide(cfg, id)
}

// Package gate decides whether an anonymous tracking request is logged.
//
// Every rejection is silent by design: from the outside a rate-limited or
// bot-flagged request is indistinguishable from one without a matching id,
// so abusive clients get no signal to adapt to.
package gate

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var validFestivalID = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)

// Bot detection is a best-effort heuristic, not a security boundary. The
// substring list is intentionally coarse ("java" also matches user agents
// mentioning javascript) and matches the long-standing documented behavior.
var botSubstrings = []string{
	"bot", "crawler", "spider", "scraper", "curl", "wget",
	"python", "java", "ruby", "go-http", "postman",
}

// Visit is the per-request input, built once by the HTTP layer so the gate
// never reaches into ambient request state.
type Visit struct {
	FestivalID string
	ClientIP   string
	UserAgent  string
}

// Reason classifies a gate decision for logging. It is never surfaced to
// the requester.
type Reason string

const (
	Accepted     Reason = "accepted"
	InvalidID    Reason = "invalid_id"
	RateLimited  Reason = "rate_limited"
	BotSuspected Reason = "bot_suspected"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Gate struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*client
}

func New(limit int, window time.Duration) *Gate {
	g := &Gate{
		limit:   limit,
		window:  window,
		clients: make(map[string]*client),
	}
	go g.cleanupClients()
	return g
}

// Check applies the festival id format check, the per-IP rate limit and the
// bot heuristic, in that order. Every well-formed request consumes
// rate-limit budget, whether or not the bot filter later rejects it.
func (g *Gate) Check(v Visit) (bool, Reason) {
	if !validFestivalID.MatchString(v.FestivalID) {
		return false, InvalidID
	}

	if !g.allow(v.ClientIP) {
		return false, RateLimited
	}

	if isLikelyBot(v.UserAgent) {
		return false, BotSuspected
	}

	return true, Accepted
}

func (g *Gate) allow(ip string) bool {
	g.mu.Lock()
	c, exists := g.clients[ip]
	if !exists {
		c = &client{
			limiter: rate.NewLimiter(
				rate.Limit(float64(g.limit)/g.window.Seconds()),
				g.limit,
			),
		}
		g.clients[ip] = c
	}
	c.lastSeen = time.Now()
	g.mu.Unlock()

	return c.limiter.Allow()
}

func isLikelyBot(userAgent string) bool {
	if userAgent == "" {
		return true
	}
	ua := strings.ToLower(userAgent)
	for _, s := range botSubstrings {
		if strings.Contains(ua, s) {
			return true
		}
	}
	return false
}

func (g *Gate) cleanupClients() {
	for {
		time.Sleep(time.Minute)
		g.mu.Lock()
		for ip, c := range g.clients {
			if time.Since(c.lastSeen) > 3*g.window {
				delete(g.clients, ip)
			}
		}
		g.mu.Unlock()
	}
}

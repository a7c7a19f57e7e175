// Package identity derives day-rotating pseudonymous visitor fingerprints.
//
// The digest binds client IP, user agent and the UTC calendar day, so the
// same visitor hashes identically within one day (enabling daily-unique
// counting) and differently after midnight UTC (preventing long-term
// profiling). No raw identity beyond the best-effort IP is ever stored.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HashLen is the digest width in hex characters, sized to the
// visitor_hash varchar(32) column.
const HashLen = 32

type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Hash returns the fingerprint for a visitor on the calendar day of at (UTC).
func (h *Hasher) Hash(ip, userAgent string, at time.Time) string {
	day := at.UTC().Format("20060102")

	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(ip))
	mac.Write([]byte(userAgent))
	mac.Write([]byte(day))

	return hex.EncodeToString(mac.Sum(nil))[:HashLen]
}

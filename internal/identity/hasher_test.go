package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDeterministicWithinDay(t *testing.T) {
	h := NewHasher("test-secret")
	day := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	later := time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC)

	first := h.Hash("203.0.113.7", "Mozilla/5.0", day)
	second := h.Hash("203.0.113.7", "Mozilla/5.0", later)

	require.Equal(t, first, second)
}

func TestHashRotatesAcrossDays(t *testing.T) {
	h := NewHasher("test-secret")
	beforeMidnight := time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC)
	afterMidnight := time.Date(2025, 6, 15, 0, 0, 1, 0, time.UTC)

	require.NotEqual(t,
		h.Hash("203.0.113.7", "Mozilla/5.0", beforeMidnight),
		h.Hash("203.0.113.7", "Mozilla/5.0", afterMidnight),
	)
}

func TestHashVariesByVisitor(t *testing.T) {
	h := NewHasher("test-secret")
	at := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

	assert.NotEqual(t,
		h.Hash("203.0.113.7", "Mozilla/5.0", at),
		h.Hash("203.0.113.8", "Mozilla/5.0", at),
	)
	assert.NotEqual(t,
		h.Hash("203.0.113.7", "Mozilla/5.0", at),
		h.Hash("203.0.113.7", "Mozilla/4.0", at),
	)
}

func TestHashFormat(t *testing.T) {
	h := NewHasher("test-secret")
	digest := h.Hash("203.0.113.7", "Mozilla/5.0", time.Now())

	require.Len(t, digest, HashLen)
	assert.Regexp(t, "^[0-9a-f]{32}$", digest)
}

func TestHashUsesUTCDayBoundary(t *testing.T) {
	h := NewHasher("test-secret")
	// Same instant, different wall-clock days; only the UTC day may matter.
	loc := time.FixedZone("UTC-2", -2*60*60)
	local := time.Date(2025, 6, 14, 23, 30, 0, 0, loc) // 2025-06-15 01:30 UTC
	utc := time.Date(2025, 6, 15, 1, 30, 0, 0, time.UTC)

	require.Equal(t,
		h.Hash("203.0.113.7", "Mozilla/5.0", local),
		h.Hash("203.0.113.7", "Mozilla/5.0", utc),
	)
}

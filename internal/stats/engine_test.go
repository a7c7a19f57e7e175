package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clustmart/festival-tracker/internal/cache"
	"github.com/clustmart/festival-tracker/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventStore struct {
	total      int64
	distinct   int64
	today      int64
	daily      []store.DailyCount
	perID      []store.IDCount
	futureData bool
	err        error

	rollupCalls int
}

func (f *fakeEventStore) Append(ctx context.Context, festivalID, visitorHash, ip string) (uint, error) {
	return 1, f.err
}

func (f *fakeEventStore) CountAll(ctx context.Context) (int64, error) {
	return f.total, f.err
}

func (f *fakeEventStore) CountDistinctIDs(ctx context.Context) (int64, error) {
	return f.distinct, f.err
}

func (f *fakeEventStore) CountOnDay(ctx context.Context, day time.Time) (int64, error) {
	return f.today, f.err
}

func (f *fakeEventStore) DailyRollup(ctx context.Context, startDay, endDay time.Time) ([]store.DailyCount, error) {
	f.rollupCalls++
	return f.daily, f.err
}

func (f *fakeEventStore) ExistsOnOrAfter(ctx context.Context, day time.Time) (bool, error) {
	return f.futureData, f.err
}

func (f *fakeEventStore) PerIDRollup(ctx context.Context, limit int) ([]store.IDCount, error) {
	if limit > 0 && limit < len(f.perID) {
		return f.perID[:limit], f.err
	}
	return f.perID, f.err
}

type fakeConfigStore struct {
	cfg store.RedirectConfig
	err error
}

func (f *fakeConfigStore) Load(ctx context.Context) (store.RedirectConfig, error) {
	return f.cfg, f.err
}

func (f *fakeConfigStore) Save(ctx context.Context, cfg store.RedirectConfig) error {
	f.cfg = cfg
	return f.err
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestEngine(events *fakeEventStore, settings store.RedirectConfigStore) *Engine {
	logger := logrus.New()
	e := NewEngine(logger, events, cache.NewMemoryCache(), settings, Options{})
	e.now = func() time.Time { return day("2025-06-14").Add(12 * time.Hour) }
	return e
}

func TestDailyStatsZeroFillsMissingDays(t *testing.T) {
	events := &fakeEventStore{
		daily: []store.DailyCount{
			{Day: day("2025-06-10"), TotalCalls: 42, UniqueIDs: 7},
		},
	}
	e := newTestEngine(events, &fakeConfigStore{})

	anchor := day("2025-06-08")
	got, err := e.DailyStats(context.Background(), &anchor)
	require.NoError(t, err)

	require.Len(t, got.Days, 7)
	for i, d := range got.Days {
		expectedDate := anchor.AddDate(0, 0, i).Format("2006-01-02")
		assert.Equal(t, expectedDate, d.Date)
		if d.Date == "2025-06-10" {
			assert.EqualValues(t, 42, d.TotalCalls)
			assert.EqualValues(t, 7, d.UniqueIDs)
		} else {
			assert.Zero(t, d.TotalCalls, "day %s should be zero-filled", d.Date)
			assert.Zero(t, d.UniqueIDs)
		}
	}
}

func TestDailyStatsDefaultWindowEndsToday(t *testing.T) {
	e := newTestEngine(&fakeEventStore{}, &fakeConfigStore{})

	got, err := e.DailyStats(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, got.Days, 7)
	assert.Equal(t, "2025-06-08", got.Days[0].Date)
	assert.Equal(t, "2025-06-14", got.Days[6].Date)
}

func TestDailyStatsNextWindowFlag(t *testing.T) {
	events := &fakeEventStore{futureData: true}
	e := newTestEngine(events, &fakeConfigStore{})

	anchor := day("2025-05-01")
	got, err := e.DailyStats(context.Background(), &anchor)
	require.NoError(t, err)
	assert.True(t, got.HasNextWindow)

	e = newTestEngine(&fakeEventStore{futureData: false}, &fakeConfigStore{})
	got, err = e.DailyStats(context.Background(), &anchor)
	require.NoError(t, err)
	assert.False(t, got.HasNextWindow)
}

func TestDailyStatsServedFromCache(t *testing.T) {
	events := &fakeEventStore{
		daily: []store.DailyCount{{Day: day("2025-06-08"), TotalCalls: 1, UniqueIDs: 1}},
	}
	e := newTestEngine(events, &fakeConfigStore{})
	anchor := day("2025-06-08")

	_, err := e.DailyStats(context.Background(), &anchor)
	require.NoError(t, err)
	require.Equal(t, 1, events.rollupCalls)

	// Underlying data changes, but the cached window keeps serving.
	events.daily = []store.DailyCount{{Day: day("2025-06-08"), TotalCalls: 100, UniqueIDs: 9}}
	got, err := e.DailyStats(context.Background(), &anchor)
	require.NoError(t, err)
	assert.Equal(t, 1, events.rollupCalls)
	assert.EqualValues(t, 1, got.Days[0].TotalCalls)
}

func TestRefreshInvalidatesEveryAggregate(t *testing.T) {
	events := &fakeEventStore{
		total:    10,
		distinct: 3,
		today:    2,
		daily:    []store.DailyCount{{Day: day("2025-06-08"), TotalCalls: 1, UniqueIDs: 1}},
	}
	e := newTestEngine(events, &fakeConfigStore{})
	ctx := context.Background()
	anchor := day("2025-06-08")

	_, err := e.DailyStats(ctx, &anchor)
	require.NoError(t, err)
	quick, err := e.QuickStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, quick.TotalCalls)

	events.total = 20
	events.today = 5
	events.daily = []store.DailyCount{{Day: day("2025-06-08"), TotalCalls: 50, UniqueIDs: 2}}

	e.Refresh(ctx)

	quick, err = e.QuickStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20, quick.TotalCalls, "refresh must force recomputation")
	assert.EqualValues(t, 5, quick.TodayCalls)

	daily, err := e.DailyStats(ctx, &anchor)
	require.NoError(t, err)
	assert.EqualValues(t, 50, daily.Days[0].TotalCalls)
}

func TestPerIDStatsOrderingAndTruncation(t *testing.T) {
	// Store contract: descending accesses, ties broken by id ascending.
	events := &fakeEventStore{
		distinct: 7,
		perID: []store.IDCount{
			{FestivalID: "A1XXXX", TotalAccesses: 5, UniqueDaysUsed: 2},
			{FestivalID: "B2XXXX", TotalAccesses: 5, UniqueDaysUsed: 1},
			{FestivalID: "C3XXXX", TotalAccesses: 3, UniqueDaysUsed: 3},
			{FestivalID: "D4XXXX", TotalAccesses: 2, UniqueDaysUsed: 1},
			{FestivalID: "E5XXXX", TotalAccesses: 2, UniqueDaysUsed: 1},
			{FestivalID: "F6XXXX", TotalAccesses: 1, UniqueDaysUsed: 1},
			{FestivalID: "G7XXXX", TotalAccesses: 1, UniqueDaysUsed: 1},
		},
	}
	e := newTestEngine(events, &fakeConfigStore{})

	got, err := e.PerIDStats(context.Background(), false)
	require.NoError(t, err)

	assert.EqualValues(t, 7, got.TotalUniqueIDs, "total must be untruncated")
	require.Len(t, got.Rows, DefaultTopN)
	assert.Equal(t, "A1XXXX", got.Rows[0].FestivalID)
	assert.Equal(t, "B2XXXX", got.Rows[1].FestivalID)
	assert.Equal(t, "C3XXXX", got.Rows[2].FestivalID)

	all, err := e.PerIDStats(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all.Rows, 7)
}

func TestQuickStatsIncludesRedirectConfig(t *testing.T) {
	settings := &fakeConfigStore{cfg: store.RedirectConfig{
		Enabled:        true,
		DestinationURL: "https://example.com/festival",
	}}
	e := newTestEngine(&fakeEventStore{total: 3, distinct: 2, today: 1}, settings)

	got, err := e.QuickStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, got.TotalCalls)
	assert.EqualValues(t, 2, got.UniqueIDs)
	assert.EqualValues(t, 1, got.TodayCalls)
	assert.True(t, got.RedirectEnabled)
	assert.Equal(t, "https://example.com/festival", got.RedirectURL)
}

func TestStorageErrorPropagates(t *testing.T) {
	storeErr := &store.StorageError{Op: "count events", Err: errors.New("connection refused")}
	e := newTestEngine(&fakeEventStore{err: storeErr}, &fakeConfigStore{})

	_, err := e.QuickStats(context.Background())
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err), "no partial or degraded result on store failure")

	_, err = e.DailyStats(context.Background(), nil)
	require.Error(t, err)

	_, err = e.PerIDStats(context.Background(), false)
	require.Error(t, err)
}

// Package stats computes the dashboard views: a 7-day daily window and
// per-festival-id lifetime rollups, read through the aggregate cache.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/clustmart/festival-tracker/internal/cache"
	"github.com/clustmart/festival-tracker/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	// WindowDays is the fixed width of the daily dashboard view.
	WindowDays = 7
	// DefaultTopN is how many festival ids the per-id view shows unless the
	// operator asks for all of them.
	DefaultTopN = 5
)

type DayStats struct {
	Date       string `json:"date"`
	TotalCalls int64  `json:"total_calls"`
	UniqueIDs  int64  `json:"unique_ids_count"`
}

type DailyStats struct {
	Days          []DayStats `json:"days"`
	HasNextWindow bool       `json:"has_next_window"`
}

type IDStats struct {
	FestivalID     string `json:"festival_id"`
	TotalAccesses  int64  `json:"total_accesses"`
	UniqueDaysUsed int64  `json:"unique_days_used"`
}

type PerIDStats struct {
	TotalUniqueIDs int64     `json:"total_unique_ids"`
	Rows           []IDStats `json:"rows"`
}

type QuickStats struct {
	TotalCalls      int64  `json:"total_calls"`
	UniqueIDs       int64  `json:"unique_ids"`
	TodayCalls      int64  `json:"today_calls"`
	RedirectEnabled bool   `json:"redirect_enabled"`
	RedirectURL     string `json:"redirect_url"`
}

type Options struct {
	// TTL for lifetime counts, rollups and future-data checks.
	CacheTTL time.Duration
	// TTL for today's count, shorter because it changes intra-day.
	TodayTTL time.Duration
	// Upper bound on any single store query from the dashboard path.
	QueryTimeout time.Duration
}

type Engine struct {
	events   store.EventStore
	cache    cache.Cache
	settings store.RedirectConfigStore
	opts     Options
	log      *logrus.Entry

	now func() time.Time
}

func NewEngine(logger *logrus.Logger, events store.EventStore, c cache.Cache, settings store.RedirectConfigStore, opts Options) *Engine {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.TodayTTL <= 0 {
		opts.TodayTTL = 15 * time.Minute
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 5 * time.Second
	}
	return &Engine{
		events:   events,
		cache:    c,
		settings: settings,
		opts:     opts,
		log:      logger.WithField("component", "stats_engine"),
		now:      time.Now,
	}
}

// DailyStats returns the 7-day window anchored at startDay, or the window
// ending today when startDay is nil. Days without events are zero-filled;
// the store only reports days that have data. HasNextWindow is driven by
// recorded event timestamps, never by the wall clock, so forward navigation
// only appears when there is something to navigate to.
func (e *Engine) DailyStats(ctx context.Context, startDay *time.Time) (DailyStats, error) {
	var start time.Time
	if startDay != nil {
		start = store.StartOfDay(*startDay)
	} else {
		start = store.StartOfDay(e.now()).AddDate(0, 0, -(WindowDays - 1))
	}
	end := start.AddDate(0, 0, WindowDays-1)

	days := make([]DayStats, WindowDays)
	for i := range days {
		days[i] = DayStats{Date: start.AddDate(0, 0, i).Format("2006-01-02")}
	}

	key := fmt.Sprintf("daily:%s:%s", days[0].Date, days[WindowDays-1].Date)
	var rollup []store.DailyCount
	if !e.cache.Get(ctx, key, &rollup) {
		qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
		defer cancel()

		var err error
		rollup, err = e.events.DailyRollup(qctx, start, end)
		if err != nil {
			return DailyStats{}, err
		}
		e.cache.Set(ctx, key, rollup, e.opts.CacheTTL)
	}

	byDate := make(map[string]int, WindowDays)
	for i, d := range days {
		byDate[d.Date] = i
	}
	for _, row := range rollup {
		if i, ok := byDate[row.Day.UTC().Format("2006-01-02")]; ok {
			days[i].TotalCalls = row.TotalCalls
			days[i].UniqueIDs = row.UniqueIDs
		}
	}

	hasNext, err := e.hasDataOnOrAfter(ctx, end.AddDate(0, 0, 1))
	if err != nil {
		return DailyStats{}, err
	}

	return DailyStats{Days: days, HasNextWindow: hasNext}, nil
}

func (e *Engine) hasDataOnOrAfter(ctx context.Context, day time.Time) (bool, error) {
	key := "future:" + day.Format("2006-01-02")

	var exists bool
	if e.cache.Get(ctx, key, &exists) {
		return exists, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	defer cancel()

	exists, err := e.events.ExistsOnOrAfter(qctx, day)
	if err != nil {
		return false, err
	}
	e.cache.Set(ctx, key, exists, e.opts.CacheTTL)
	return exists, nil
}

// PerIDStats returns the top-N (or full) per-id rollup. TotalUniqueIDs is
// always the untruncated count so callers can render an "N more" affordance.
func (e *Engine) PerIDStats(ctx context.Context, showAll bool) (PerIDStats, error) {
	total, err := e.countDistinctIDs(ctx)
	if err != nil {
		return PerIDStats{}, err
	}

	limit := DefaultTopN
	key := fmt.Sprintf("perid:top%d", limit)
	if showAll {
		limit = 0
		key = "perid:all"
	}

	var rows []IDStats
	if !e.cache.Get(ctx, key, &rows) {
		qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
		defer cancel()

		rollup, err := e.events.PerIDRollup(qctx, limit)
		if err != nil {
			return PerIDStats{}, err
		}
		rows = make([]IDStats, len(rollup))
		for i, r := range rollup {
			rows[i] = IDStats{
				FestivalID:     r.FestivalID,
				TotalAccesses:  r.TotalAccesses,
				UniqueDaysUsed: r.UniqueDaysUsed,
			}
		}
		e.cache.Set(ctx, key, rows, e.opts.CacheTTL)
	}

	return PerIDStats{TotalUniqueIDs: total, Rows: rows}, nil
}

// QuickStats is the settings-page summary. The redirect configuration is
// always read fresh so a settings save is visible immediately.
func (e *Engine) QuickStats(ctx context.Context) (QuickStats, error) {
	total, err := e.countAll(ctx)
	if err != nil {
		return QuickStats{}, err
	}

	unique, err := e.countDistinctIDs(ctx)
	if err != nil {
		return QuickStats{}, err
	}

	today, err := e.countToday(ctx)
	if err != nil {
		return QuickStats{}, err
	}

	redirect, err := e.settings.Load(ctx)
	if err != nil {
		return QuickStats{}, err
	}

	return QuickStats{
		TotalCalls:      total,
		UniqueIDs:       unique,
		TodayCalls:      today,
		RedirectEnabled: redirect.Enabled,
		RedirectURL:     redirect.DestinationURL,
	}, nil
}

// Refresh drops every cached aggregate at once. The next read of any key
// recomputes from the store, so the dashboard never mixes refreshed and
// stale numbers.
func (e *Engine) Refresh(ctx context.Context) {
	e.cache.Flush(ctx)
	e.log.Info("Aggregate cache flushed")
}

func (e *Engine) countAll(ctx context.Context) (int64, error) {
	var count int64
	if e.cache.Get(ctx, "total_calls", &count) {
		return count, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	defer cancel()

	count, err := e.events.CountAll(qctx)
	if err != nil {
		return 0, err
	}
	e.cache.Set(ctx, "total_calls", count, e.opts.CacheTTL)
	return count, nil
}

func (e *Engine) countDistinctIDs(ctx context.Context) (int64, error) {
	var count int64
	if e.cache.Get(ctx, "unique_ids", &count) {
		return count, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	defer cancel()

	count, err := e.events.CountDistinctIDs(qctx)
	if err != nil {
		return 0, err
	}
	e.cache.Set(ctx, "unique_ids", count, e.opts.CacheTTL)
	return count, nil
}

func (e *Engine) countToday(ctx context.Context) (int64, error) {
	today := store.StartOfDay(e.now())
	key := "today_calls:" + today.Format("2006-01-02")

	var count int64
	if e.cache.Get(ctx, key, &count) {
		return count, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	defer cancel()

	count, err := e.events.CountOnDay(qctx, today)
	if err != nil {
		return 0, err
	}
	e.cache.Set(ctx, key, count, e.opts.TodayTTL)
	return count, nil
}

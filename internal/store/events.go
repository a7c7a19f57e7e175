// Package store persists tracking events and operator settings.
//
// Rollup queries are parameterized throughout; the only string ever
// interpolated into SQL is the server-controlled table name via the gorm
// model, never user or config input.
package store

import (
	"context"
	"time"

	"github.com/clustmart/festival-tracker/internal/models"
	"gorm.io/gorm"
)

// DailyCount is one day's aggregate. Day is the UTC calendar day at
// midnight. Days without events are not returned by the store; the stats
// engine zero-fills them.
type DailyCount struct {
	Day        time.Time `gorm:"column:day"`
	TotalCalls int64     `gorm:"column:total_calls"`
	UniqueIDs  int64     `gorm:"column:unique_ids"`
}

// IDCount is one festival id's lifetime aggregate.
type IDCount struct {
	FestivalID     string `gorm:"column:festival_id"`
	TotalAccesses  int64  `gorm:"column:total_accesses"`
	UniqueDaysUsed int64  `gorm:"column:unique_days_used"`
}

// EventStore is the append-only event log and its aggregate queries.
type EventStore interface {
	// Append inserts one immutable event. The timestamp is assigned here,
	// never by the caller.
	Append(ctx context.Context, festivalID, visitorHash, ip string) (uint, error)
	CountAll(ctx context.Context) (int64, error)
	CountDistinctIDs(ctx context.Context) (int64, error)
	CountOnDay(ctx context.Context, day time.Time) (int64, error)
	// DailyRollup returns one row per day in [startDay, endDay] that has at
	// least one event, ordered by day ascending.
	DailyRollup(ctx context.Context, startDay, endDay time.Time) ([]DailyCount, error)
	// ExistsOnOrAfter reports whether any event was recorded at or after the
	// start of the given day.
	ExistsOnOrAfter(ctx context.Context, day time.Time) (bool, error)
	// PerIDRollup returns lifetime aggregates ordered by total accesses
	// descending, ties broken by festival id ascending. limit <= 0 returns
	// the full set.
	PerIDRollup(ctx context.Context, limit int) ([]IDCount, error)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type PostgresEventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) Append(ctx context.Context, festivalID, visitorHash, ip string) (uint, error) {
	event := models.FestivalEvent{
		FestivalID:  festivalID,
		Timestamp:   time.Now().UTC(),
		VisitorHash: visitorHash,
		IPAddress:   ip,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return 0, storageErr("append event", err)
	}
	return event.ID, nil
}

func (s *PostgresEventStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.FestivalEvent{}).Count(&count).Error; err != nil {
		return 0, storageErr("count events", err)
	}
	return count, nil
}

func (s *PostgresEventStore) CountDistinctIDs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FestivalEvent{}).
		Distinct("festival_id").
		Count(&count).Error
	if err != nil {
		return 0, storageErr("count distinct ids", err)
	}
	return count, nil
}

func (s *PostgresEventStore) CountOnDay(ctx context.Context, day time.Time) (int64, error) {
	start := StartOfDay(day)
	end := start.Add(24 * time.Hour)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FestivalEvent{}).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, storageErr("count events on day", err)
	}
	return count, nil
}

func (s *PostgresEventStore) DailyRollup(ctx context.Context, startDay, endDay time.Time) ([]DailyCount, error) {
	start := StartOfDay(startDay)
	end := StartOfDay(endDay).Add(24 * time.Hour)

	var rows []DailyCount
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			DATE(timestamp) AS day,
			COUNT(*) AS total_calls,
			COUNT(DISTINCT festival_id) AS unique_ids
		FROM festival_events
		WHERE timestamp >= ? AND timestamp < ?
		GROUP BY DATE(timestamp)
		ORDER BY day ASC
	`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, storageErr("daily rollup", err)
	}
	return rows, nil
}

func (s *PostgresEventStore) ExistsOnOrAfter(ctx context.Context, day time.Time) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).Raw(`
		SELECT EXISTS (
			SELECT 1 FROM festival_events WHERE timestamp >= ? LIMIT 1
		)
	`, StartOfDay(day)).Scan(&exists).Error
	if err != nil {
		return false, storageErr("future data check", err)
	}
	return exists, nil
}

func (s *PostgresEventStore) PerIDRollup(ctx context.Context, limit int) ([]IDCount, error) {
	query := `
		SELECT
			festival_id,
			COUNT(*) AS total_accesses,
			COUNT(DISTINCT DATE(timestamp)) AS unique_days_used
		FROM festival_events
		GROUP BY festival_id
		ORDER BY total_accesses DESC, festival_id ASC
	`

	var rows []IDCount
	var err error
	if limit > 0 {
		err = s.db.WithContext(ctx).Raw(query+" LIMIT ?", limit).Scan(&rows).Error
	} else {
		err = s.db.WithContext(ctx).Raw(query).Scan(&rows).Error
	}
	if err != nil {
		return nil, storageErr("per-id rollup", err)
	}
	return rows, nil
}

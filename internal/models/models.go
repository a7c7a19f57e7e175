package models

import (
	"time"
)

// FestivalEvent is one tracked call. Rows are append-only: nothing in the
// service updates or deletes them outside the operator-driven archiver.
type FestivalEvent struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	FestivalID  string    `gorm:"type:varchar(10);not null;index"`
	Timestamp   time.Time `gorm:"index;not null"`
	VisitorHash string    `gorm:"type:varchar(32);not null;index"`
	IPAddress   string    `gorm:"type:varchar(45);not null"`
}

// Setting is an operator-controlled key-value pair.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (FestivalEvent) TableName() string {
	return "festival_events"
}

func (Setting) TableName() string {
	return "settings"
}

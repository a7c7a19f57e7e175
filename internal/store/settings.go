package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/clustmart/festival-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	keyRedirectEnabled = "redirect_enabled"
	keyRedirectURL     = "redirect_url"
)

// ErrInvalidRedirectURL rejects a settings write; the previously stored
// value stays in place.
var ErrInvalidRedirectURL = errors.New("redirect url must be an absolute http(s) URL")

// RedirectConfig is the operator-controlled redirect behavior.
type RedirectConfig struct {
	Enabled        bool   `json:"enabled"`
	DestinationURL string `json:"destination_url"`
}

// RedirectConfigStore loads and saves the redirect configuration. The
// interface exists so the policy and stats engine stay testable without a
// database.
type RedirectConfigStore interface {
	Load(ctx context.Context) (RedirectConfig, error)
	Save(ctx context.Context, cfg RedirectConfig) error
}

// ValidateRedirectURL accepts the empty string (redirect effectively off)
// or an absolute http(s) URL.
func ValidateRedirectURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRedirectURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidRedirectURL
	}
	return nil
}

type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Load(ctx context.Context) (RedirectConfig, error) {
	var rows []models.Setting
	err := s.db.WithContext(ctx).
		Where("key IN ?", []string{keyRedirectEnabled, keyRedirectURL}).
		Find(&rows).Error
	if err != nil {
		return RedirectConfig{}, storageErr("load settings", err)
	}

	cfg := RedirectConfig{}
	for _, row := range rows {
		switch row.Key {
		case keyRedirectEnabled:
			cfg.Enabled = row.Value == "1"
		case keyRedirectURL:
			cfg.DestinationURL = row.Value
		}
	}
	return cfg, nil
}

func (s *SettingsStore) Save(ctx context.Context, cfg RedirectConfig) error {
	if err := ValidateRedirectURL(cfg.DestinationURL); err != nil {
		return err
	}

	enabled := "0"
	if cfg.Enabled {
		enabled = "1"
	}
	rows := []models.Setting{
		{Key: keyRedirectEnabled, Value: enabled, UpdatedAt: time.Now().UTC()},
		{Key: keyRedirectURL, Value: cfg.DestinationURL, UpdatedAt: time.Now().UTC()},
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rows).Error
	if err != nil {
		return storageErr("save settings", err)
	}
	return nil
}

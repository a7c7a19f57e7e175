// Package archive moves aged tracking events out of the hot table into S3.
//
// This is the operator-controlled, out-of-band maintenance path: the
// tracking core itself never updates or deletes event rows. Rows are only
// removed after their CSV export has been uploaded successfully.
package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/clustmart/festival-tracker/internal/config"
	"github.com/clustmart/festival-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const exportBatchSize = 10000

type Archiver struct {
	logger   *logrus.Logger
	db       *gorm.DB
	uploader *s3manager.Uploader
	cfg      *config.Config
}

func NewArchiver(logger *logrus.Logger, db *gorm.DB, cfg *config.Config) *Archiver {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.S3Region),
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess := session.Must(session.NewSession(awsConfig))

	return &Archiver{
		logger:   logger,
		db:       db,
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
	}
}

func (a *Archiver) Start(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.ArchiveInterval)
	defer ticker.Stop()

	logEntry := a.logger.WithField("component", "archiver")
	logEntry.WithField("retention_days", a.cfg.ArchiveRetentionDays).Info("Starting event archiver")

	for {
		select {
		case <-ticker.C:
			a.archiveAgedEvents(ctx, logEntry)
		case <-ctx.Done():
			logEntry.Info("Stopping event archiver")
			return
		}
	}
}

func (a *Archiver) archiveAgedEvents(ctx context.Context, log *logrus.Entry) {
	log = log.WithField("operation", "archive")
	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.ArchiveRetentionDays)

	for {
		var events []models.FestivalEvent
		err := a.db.WithContext(ctx).
			Where("timestamp < ?", cutoff).
			Order("timestamp ASC").
			Limit(exportBatchSize).
			Find(&events).Error
		if err != nil {
			log.WithError(err).Error("Aged event query failed")
			return
		}
		if len(events) == 0 {
			return
		}

		key := fmt.Sprintf("events/%s_%s_%d.csv",
			events[0].Timestamp.UTC().Format("20060102"),
			events[len(events)-1].Timestamp.UTC().Format("20060102"),
			events[0].ID)

		if err := a.upload(ctx, key, events); err != nil {
			log.WithFields(logrus.Fields{"key": key, "error": err}).Error("Archive upload failed")
			return
		}

		ids := make([]uint, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		if err := a.db.WithContext(ctx).Delete(&models.FestivalEvent{}, ids).Error; err != nil {
			log.WithError(err).Error("Failed to delete archived events")
			return
		}

		log.WithFields(logrus.Fields{
			"key":   key,
			"count": len(events),
		}).Info("Archived aged events")

		if len(events) < exportBatchSize {
			return
		}
	}
}

func (a *Archiver) upload(ctx context.Context, key string, events []models.FestivalEvent) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "festival_id", "timestamp", "visitor_hash", "ip_address"}); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.FestivalID,
			e.Timestamp.UTC().Format(time.RFC3339),
			e.VisitorHash,
			e.IPAddress,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	_, err := a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	return err
}

// Package export renders attendance over a date range as CSV and delivers
// the file to the configured channel.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ultigroup/attendbot/internal/attendance"
)

const (
	opExport = "export.run"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var (
	// ErrMissingSource indicates the exporter was built without a record source.
	ErrMissingSource = errors.New("export: attendance source is required")
	// ErrMissingUploader indicates the exporter was built without an uploader.
	ErrMissingUploader = errors.New("export: uploader is required")
	// ErrInvalidRange indicates from does not precede to.
	ErrInvalidRange = errors.New("export: invalid date range")
	// ErrNoChannel indicates no export channel is configured.
	ErrNoChannel = errors.New("export: no export channel configured")
)

// RangeSource supplies the rows to export.
type RangeSource interface {
	InRange(ctx context.Context, from, to time.Time) ([]attendance.RangeRecord, error)
}

// Uploader delivers the rendered file.
type Uploader interface {
	UploadFile(ctx context.Context, channelID, filename string, content []byte) error
}

// ServiceError wraps export failures with the failing operation.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// ServiceConfig carries the exporter dependencies.
type ServiceConfig struct {
	Source   RangeSource
	Uploader Uploader
	Logger   *zap.Logger
}

// Service renders and delivers CSV exports.
type Service struct {
	source   RangeSource
	uploader Uploader
	logger   *zap.Logger
}

// NewService validates the configuration and returns an exporter.
func NewService(config ServiceConfig) (*Service, error) {
	if config.Source == nil {
		return nil, ErrMissingSource
	}
	if config.Uploader == nil {
		return nil, ErrMissingUploader
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: config.Source, uploader: config.Uploader, logger: logger}, nil
}

// Run exports every answer for events inside [from, to] and uploads the CSV
// to the channel. The filename carries the range and a short random suffix so
// repeated exports do not collide.
func (s *Service) Run(ctx context.Context, channelID string, from, to time.Time) error {
	if channelID == "" {
		return ErrNoChannel
	}
	if !from.Before(to) {
		return fmt.Errorf("%w: %s is not before %s", ErrInvalidRange, from.Format(dateLayout), to.Format(dateLayout))
	}

	records, err := s.source.InRange(ctx, from, to)
	if err != nil {
		return &ServiceError{code: opExport + ".query_failed", err: err}
	}

	content, err := Render(records)
	if err != nil {
		return &ServiceError{code: opExport + ".render_failed", err: err}
	}

	filename := fmt.Sprintf("dochazka_%s_%s_%s.csv",
		from.Format(dateLayout), to.Format(dateLayout), uuid.NewString()[:8])
	if err := s.uploader.UploadFile(ctx, channelID, filename, content); err != nil {
		s.logger.Error("export upload failed",
			zap.String("operation", opExport),
			zap.String("channel_id", channelID),
			zap.Error(err))
		return &ServiceError{code: opExport + ".upload_failed", err: err}
	}

	s.logger.Info("export delivered",
		zap.String("operation", opExport),
		zap.String("channel_id", channelID),
		zap.Int("rows", len(records)))
	return nil
}

// Render produces the CSV body: a header row followed by one row per answer.
func Render(records []attendance.RangeRecord) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	header := []string{"event", "start", "end", "player", "status", "note"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, record := range records {
		note := ""
		if record.Note != nil {
			note = *record.Note
		}
		row := []string{
			record.EventName,
			record.EventStart.Format(dateTimeLayout),
			record.EventEnd.Format(dateTimeLayout),
			record.UserName,
			string(record.Status),
			note,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

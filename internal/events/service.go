package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the referenced event does not exist.
	ErrNotFound        = errors.New("events: event not found")
	errMissingDatabase = errors.New("events: database handle is required")
	noOpLogger         = zap.NewNop()
)

const (
	opServiceNew = "events.service.new"
	opCreate     = "events.create"
	opGet        = "events.get"
	opUpdate     = "events.update"
	opDuplicate  = "events.duplicate"
	opDelete     = "events.delete"
	opList       = "events.list"
)

// ServiceError carries an operation-scoped failure code alongside its cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// ServiceConfig describes the dependencies of the event service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns event CRUD and the listings the views are built from.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the event service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// Create validates the draft and inserts a new event.
func (s *Service) Create(ctx context.Context, draft Draft) (Event, error) {
	if err := draft.validate(); err != nil {
		return Event{}, newServiceError(opCreate, "invalid_draft", err)
	}
	event := Event{
		Name:      strings.TrimSpace(draft.Name),
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		LockTime:  draft.LockTime,
		Category:  draft.Category,
		Address:   strings.TrimSpace(draft.Address),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		s.logError(opCreate, "insert_failed", err, zap.String("name", event.Name))
		return Event{}, newServiceError(opCreate, "insert_failed", err)
	}
	return event, nil
}

// Get loads one event by id.
func (s *Service) Get(ctx context.Context, eventID uint) (Event, error) {
	var event Event
	err := s.db.WithContext(ctx).Where("id = ?", eventID).Take(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Event{}, fmt.Errorf("%w: id %d", ErrNotFound, eventID)
	}
	if err != nil {
		s.logError(opGet, "query_failed", err, zap.Uint("event_id", eventID))
		return Event{}, newServiceError(opGet, "query_failed", err)
	}
	return event, nil
}

// Update rewrites the editable fields of an existing event. Start and end
// times are fixed after creation; duplicating is the way to reschedule.
func (s *Service) Update(ctx context.Context, eventID uint, name string, category Category, address string, lockTime time.Time) (Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Event{}, newServiceError(opUpdate, "invalid_draft", ErrInvalidName)
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return Event{}, newServiceError(opUpdate, "invalid_draft", err)
	}

	event.Name = strings.TrimSpace(name)
	event.Category = category
	event.Address = strings.TrimSpace(address)
	event.LockTime = lockTime
	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		s.logError(opUpdate, "update_failed", err, zap.Uint("event_id", eventID))
		return Event{}, newServiceError(opUpdate, "update_failed", err)
	}
	return event, nil
}

// Duplicate inserts a copy of an existing event with new times. The copy
// starts with no participation and no history.
func (s *Service) Duplicate(ctx context.Context, eventID uint, startTime, endTime, lockTime time.Time) (Event, error) {
	source, err := s.Get(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	draft := Draft{
		Name:      source.Name,
		StartTime: startTime,
		EndTime:   endTime,
		LockTime:  lockTime,
		Category:  source.Category,
		Address:   source.Address,
	}
	if err := draft.validate(); err != nil {
		return Event{}, newServiceError(opDuplicate, "invalid_draft", err)
	}
	copied := Event{
		Name:      draft.Name,
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		LockTime:  draft.LockTime,
		Category:  draft.Category,
		Address:   draft.Address,
	}
	if err := s.db.WithContext(ctx).Create(&copied).Error; err != nil {
		s.logError(opDuplicate, "insert_failed", err, zap.Uint("source_event_id", eventID))
		return Event{}, newServiceError(opDuplicate, "insert_failed", err)
	}
	return copied, nil
}

// Delete removes an event. Participation and history rows reference the
// event with ON DELETE CASCADE, so they go with it.
func (s *Service) Delete(ctx context.Context, eventID uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", eventID).Delete(&Event{})
	if result.Error != nil {
		s.logError(opDelete, "delete_failed", result.Error, zap.Uint("event_id", eventID))
		return newServiceError(opDelete, "delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, eventID)
	}
	return nil
}

// ListUpcoming returns events whose end time is still ahead, soonest first.
// A nil category returns all categories.
func (s *Service) ListUpcoming(ctx context.Context, category *Category) ([]Event, error) {
	query := s.db.WithContext(ctx).Where("end_time > ?", s.clock()).Order("start_time ASC")
	if category != nil {
		query = query.Where("type = ?", *category)
	}
	var listed []Event
	if err := query.Find(&listed).Error; err != nil {
		s.logError(opList, "upcoming_query_failed", err)
		return nil, newServiceError(opList, "upcoming_query_failed", err)
	}
	return listed, nil
}

// ListByDay returns events starting on the given calendar day.
func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]Event, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var listed []Event
	err := s.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Order("start_time ASC").
		Find(&listed).Error
	if err != nil {
		s.logError(opList, "by_day_query_failed", err)
		return nil, newServiceError(opList, "by_day_query_failed", err)
	}
	return listed, nil
}

// ListOpenTrainings returns trainings whose lock time has not passed and
// whose start falls on or before the given day. The bulk attendance flow
// feeds from this listing.
func (s *Service) ListOpenTrainings(ctx context.Context, until time.Time) ([]Event, error) {
	var listed []Event
	err := s.db.WithContext(ctx).
		Where("type = ? AND lock_time >= ? AND start_time <= ?", CategoryTraining, s.clock(), until).
		Order("start_time ASC").
		Find(&listed).Error
	if err != nil {
		s.logError(opList, "open_trainings_query_failed", err)
		return nil, newServiceError(opList, "open_trainings_query_failed", err)
	}
	return listed, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}
	attrs = append(attrs, fields...)
	s.logger.Error("event service error", attrs...)
}

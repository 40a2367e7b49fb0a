package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/status"
)

var (
	// ErrEventNotFound indicates the submission referenced a missing event.
	ErrEventNotFound = errors.New("attendance: event not found")
	// ErrInvalidStatus indicates a status outside the canonical set.
	ErrInvalidStatus = errors.New("attendance: invalid status")

	errMissingDatabase   = errors.New("attendance: database handle is required")
	errMissingVocabulary = errors.New("attendance: vocabulary source is required")
	noOpLogger           = zap.NewNop()
)

const (
	opServiceNew   = "attendance.service.new"
	opGet          = "attendance.get"
	opUpsert       = "attendance.upsert"
	opHistory      = "attendance.history"
	opParticipants = "attendance.participants"
	opMissing      = "attendance.missing"
	opRange        = "attendance.range"
)

// HistoryPageSize is the fixed page length of the history views.
const HistoryPageSize = 50

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

// ServiceConfig describes the dependencies of the attendance service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	// Vocabulary supplies the current display labels; history rows are
	// written with the labels active at submission time.
	Vocabulary func() status.Vocabulary
	Logger     *zap.Logger
}

// Service owns the participation ledger and its append-only history.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	vocabulary func() status.Vocabulary
	logger     *zap.Logger
}

// NewService constructs the attendance service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.Vocabulary == nil {
		return nil, newServiceError(opServiceNew, "missing_vocabulary", errMissingVocabulary)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:         cfg.Database,
		clock:      clock,
		vocabulary: cfg.Vocabulary,
		logger:     logger,
	}, nil
}

// Get loads the current answer of one user for one event. The second return
// value is false when the user has not answered yet.
func (s *Service) Get(ctx context.Context, eventID uint, userID string) (Participation, bool, error) {
	var record Participation
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Participation{}, false, nil
	}
	if err != nil {
		s.logError(opGet, "query_failed", err, eventID, userID)
		return Participation{}, false, newServiceError(opGet, "query_failed", err)
	}
	return record, true, nil
}

// UpsertResult reports the state transition one submission caused. Old is nil
// on the first answer for the (event, user) pair.
type UpsertResult struct {
	Old *Participation
	New Participation
}

// Upsert records a status answer. The read of the prior row, the ledger
// write, and the history append run in one transaction: either all commit or
// none do. The unique (event_id, user_id) index is the backstop against
// double inserts from rapid duplicate submissions.
func (s *Service) Upsert(ctx context.Context, eventID uint, userID string, newStatus status.Status, note string) (UpsertResult, error) {
	if !newStatus.Valid() {
		return UpsertResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}
	trimmedNote := normalizeNote(note)
	labels := s.vocabulary()

	var result UpsertResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event events.Event
		err := tx.Where("id = ?", eventID).Take(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrEventNotFound, eventID)
		}
		if err != nil {
			s.logError(opUpsert, "event_select_failed", err, eventID, userID)
			return newServiceError(opUpsert, "event_select_failed", err)
		}

		newLabel, err := labels.Display(newStatus, event.Category.IsTraining())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
		}

		var prior Participation
		var priorPtr *Participation
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Take(&prior).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			priorPtr = nil
		} else if err != nil {
			s.logError(opUpsert, "ledger_select_failed", err, eventID, userID)
			return newServiceError(opUpsert, "ledger_select_failed", err)
		} else {
			priorCopy := prior
			priorPtr = &priorCopy
		}

		entry := HistoryEntry{
			EventID:   eventID,
			UserID:    userID,
			NewStatus: newLabel,
			NewNote:   trimmedNote,
			Timestamp: s.clock().UTC(),
		}

		if priorPtr == nil {
			record := Participation{
				EventID: eventID,
				UserID:  userID,
				Status:  newStatus,
				Note:    trimmedNote,
			}
			if err := tx.Create(&record).Error; err != nil {
				s.logError(opUpsert, "ledger_insert_failed", err, eventID, userID)
				return newServiceError(opUpsert, "ledger_insert_failed", err)
			}
			entry.OldStatus = labels.Unset
			entry.OldNote = nil
			result = UpsertResult{Old: nil, New: record}
		} else {
			oldLabel, err := labels.Display(prior.Status, event.Category.IsTraining())
			if err != nil {
				return fmt.Errorf("%w: stored status %q", ErrInvalidStatus, prior.Status)
			}
			updates := map[string]interface{}{"status": newStatus, "note": trimmedNote}
			err = tx.Model(&Participation{}).
				Where("event_id = ? AND user_id = ?", eventID, userID).
				Updates(updates).Error
			if err != nil {
				s.logError(opUpsert, "ledger_update_failed", err, eventID, userID)
				return newServiceError(opUpsert, "ledger_update_failed", err)
			}
			updated := prior
			updated.Status = newStatus
			updated.Note = trimmedNote
			entry.OldStatus = oldLabel
			entry.OldNote = prior.Note
			result = UpsertResult{Old: priorPtr, New: updated}
		}

		// A ledger write without its history row is a data integrity
		// violation; failing the append rolls the ledger write back too.
		if err := tx.Create(&entry).Error; err != nil {
			s.logError(opUpsert, "history_append_failed", err, eventID, userID)
			return newServiceError(opUpsert, "history_append_failed", err)
		}
		return nil
	})
	if txErr != nil {
		return UpsertResult{}, txErr
	}
	return result, nil
}

// HistoryForEvent returns the full audit trail of one event, newest first.
// Callers page the returned slice; entries appended between fetches may shift
// later pages, which is accepted staleness.
func (s *Service) HistoryForEvent(ctx context.Context, eventID uint) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		s.logError(opHistory, "query_failed", err, eventID, "")
		return nil, newServiceError(opHistory, "query_failed", err)
	}
	return entries, nil
}

// ParticipantsForEvent returns everyone who answered, joined with their
// roster entry, ordered by name.
func (s *Service) ParticipantsForEvent(ctx context.Context, eventID uint) ([]EventParticipant, error) {
	var listed []EventParticipant
	err := s.db.WithContext(ctx).
		Table("participants p").
		Select("u.user_id, u.name, u.category, p.status, p.note").
		Joins("JOIN users u ON p.user_id = u.user_id").
		Where("p.event_id = ?", eventID).
		Order("u.name ASC").
		Scan(&listed).Error
	if err != nil {
		s.logError(opParticipants, "query_failed", err, eventID, "")
		return nil, newServiceError(opParticipants, "query_failed", err)
	}
	return listed, nil
}

// MissingForEvent returns the roster entries with no answer for the event,
// ordered by name.
func (s *Service) MissingForEvent(ctx context.Context, eventID uint) ([]roster.User, error) {
	var listed []roster.User
	err := s.db.WithContext(ctx).
		Table("users u").
		Select("u.user_id, u.name, u.category").
		Joins("LEFT JOIN participants p ON u.user_id = p.user_id AND p.event_id = ?", eventID).
		Where("p.user_id IS NULL").
		Order("u.name ASC").
		Scan(&listed).Error
	if err != nil {
		s.logError(opMissing, "query_failed", err, eventID, "")
		return nil, newServiceError(opMissing, "query_failed", err)
	}
	return listed, nil
}

// ForUser returns the user's answers across all events.
func (s *Service) ForUser(ctx context.Context, userID string) ([]Participation, error) {
	var listed []Participation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&listed).Error
	if err != nil {
		s.logError(opGet, "user_query_failed", err, 0, userID)
		return nil, newServiceError(opGet, "user_query_failed", err)
	}
	return listed, nil
}

// InRange returns all answers for events falling inside the date range,
// ordered by event start then player name. The CSV export feeds from this.
func (s *Service) InRange(ctx context.Context, from, to time.Time) ([]RangeRecord, error) {
	var listed []RangeRecord
	err := s.db.WithContext(ctx).
		Table("participants p").
		Select("e.name AS event_name, e.start_time AS event_start, e.end_time AS event_end, u.name AS user_name, p.status, p.note").
		Joins("JOIN events e ON p.event_id = e.id").
		Joins("JOIN users u ON p.user_id = u.user_id").
		Where("e.start_time >= ? AND e.end_time <= ?", from, to).
		Order("e.start_time ASC, u.name ASC").
		Scan(&listed).Error
	if err != nil {
		s.logError(opRange, "query_failed", err, 0, "")
		return nil, newServiceError(opRange, "query_failed", err)
	}
	return listed, nil
}

func normalizeNote(note string) *string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *Service) logError(operation, reason string, err error, eventID uint, userID string) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}
	if eventID != 0 {
		attrs = append(attrs, zap.Uint("event_id", eventID))
	}
	if userID != "" {
		attrs = append(attrs, zap.String("user_id", userID))
	}
	s.logger.Error("attendance service error", attrs...)
}

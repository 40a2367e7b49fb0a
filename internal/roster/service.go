package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the referenced user does not exist.
	ErrNotFound       = errors.New("roster: user not found")
	errMissingDB      = errors.New("roster: database handle is required")
	errMissingUserID  = errors.New("roster: user id is required")
	noOpLogger        = zap.NewNop()
)

const (
	opServiceNew  = "roster.service.new"
	opEnsure      = "roster.ensure"
	opGet         = "roster.get"
	opSetCategory = "roster.set_category"
	opList        = "roster.list"
)

func newServiceError(operation, reason string, cause error) error {
	return fmt.Errorf("%s.%s: %w", operation, reason, cause)
}

// ServiceConfig describes the dependencies of the roster service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service manages the lazily built user roster.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the roster service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDB)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// Ensure creates the user on first sight and refreshes a changed display
// name on later ones. It returns the stored row either way.
func (s *Service) Ensure(ctx context.Context, userID, name string) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, newServiceError(opEnsure, "missing_user_id", errMissingUserID)
	}
	name = strings.TrimSpace(name)

	var user User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{UserID: userID, Name: name}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			s.logError(opEnsure, "insert_failed", err, userID)
			return User{}, newServiceError(opEnsure, "insert_failed", err)
		}
		return user, nil
	}
	if err != nil {
		s.logError(opEnsure, "query_failed", err, userID)
		return User{}, newServiceError(opEnsure, "query_failed", err)
	}

	if name != "" && name != user.Name {
		user.Name = name
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			s.logError(opEnsure, "name_update_failed", err, userID)
			return User{}, newServiceError(opEnsure, "name_update_failed", err)
		}
	}
	return user, nil
}

// Get loads one user by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	if err != nil {
		s.logError(opGet, "query_failed", err, userID)
		return User{}, newServiceError(opGet, "query_failed", err)
	}
	return user, nil
}

// SetCategory assigns the user's division.
func (s *Service) SetCategory(ctx context.Context, userID string, category Category) error {
	if _, err := ParseCategory(string(category)); err != nil {
		return newServiceError(opSetCategory, "invalid_category", err)
	}
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("user_id = ?", userID).
		Update("category", category)
	if result.Error != nil {
		s.logError(opSetCategory, "update_failed", result.Error, userID)
		return newServiceError(opSetCategory, "update_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return nil
}

// HasCategory reports whether the user exists and has a division assigned.
func (s *Service) HasCategory(ctx context.Context, userID string) (bool, error) {
	user, err := s.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Category != CategoryUnset, nil
}

// List returns all users ordered by name.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		s.logError(opList, "query_failed", err, "")
		return nil, newServiceError(opList, "query_failed", err)
	}
	return users, nil
}

// ListByCategory returns the user ids of one division ordered by name.
func (s *Service) ListByCategory(ctx context.Context, category Category) ([]string, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Where("category = ?", category).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		s.logError(opList, "category_query_failed", err, "")
		return nil, newServiceError(opList, "category_query_failed", err)
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.UserID)
	}
	return ids, nil
}

func (s *Service) logError(operation, reason string, err error, userID string) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}
	if userID != "" {
		attrs = append(attrs, zap.String("user_id", userID))
	}
	s.logger.Error("roster service error", attrs...)
}

package events

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category classifies an event; trainings get their own status labels.
type Category string

const (
	CategoryTraining   Category = "training"
	CategoryTournament Category = "tournament"
	CategoryOther      Category = "other"
)

var (
	// ErrUnknownCategory indicates a category outside the three known values.
	ErrUnknownCategory = errors.New("events: unknown category")
	// ErrInvalidName indicates an empty event name.
	ErrInvalidName = errors.New("events: name is required")
	// ErrInvalidTimeRange indicates start_time after end_time.
	ErrInvalidTimeRange = errors.New("events: start time is after end time")
)

// ParseCategory validates raw input and returns a Category.
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryTraining, CategoryTournament, CategoryOther:
		return Category(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

// IsTraining reports whether the category selects the training label set.
func (c Category) IsTraining() bool {
	return c == CategoryTraining
}

// Event is a scheduled occurrence attendees respond to. Once end_time has
// passed it drops out of upcoming listings but keeps its rows.
type Event struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:190;not null"`
	StartTime time.Time `gorm:"column:start_time;not null;index"`
	EndTime   time.Time `gorm:"column:end_time;not null;index"`
	LockTime  time.Time `gorm:"column:lock_time;not null"`
	Category  Category  `gorm:"column:type;size:32;not null"`
	Address   string    `gorm:"column:address;size:320"`
}

// TableName provides the explicit table binding for GORM.
func (Event) TableName() string {
	return "events"
}

// Locked reports whether submissions are past the cutoff at the given time.
func (e Event) Locked(now time.Time) bool {
	return now.After(e.LockTime)
}

// Draft carries the validated fields for creating or updating an event.
type Draft struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	LockTime  time.Time
	Category  Category
	Address   string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrInvalidName
	}
	if d.StartTime.After(d.EndTime) {
		return ErrInvalidTimeRange
	}
	if _, err := ParseCategory(string(d.Category)); err != nil {
		return err
	}
	return nil
}

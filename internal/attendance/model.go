package attendance

import (
	"time"

	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/status"
)

// Participation is the current answer of one user for one event. There is at
// most one row per (event, user) pair; changes rewrite the row in place and
// every rewrite leaves a HistoryEntry behind.
type Participation struct {
	EventID uint          `gorm:"column:event_id;not null;uniqueIndex:idx_participants_event_user,priority:1"`
	UserID  string        `gorm:"column:user_id;size:64;not null;uniqueIndex:idx_participants_event_user,priority:2"`
	Status  status.Status `gorm:"column:status;size:32;not null"`
	Note    *string       `gorm:"column:note;size:500"`

	Event events.Event `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`
	User  roster.User  `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

// TableName provides the explicit table binding for GORM.
func (Participation) TableName() string {
	return "participants"
}

// HistoryEntry is one row of the append-only audit trail. Statuses are stored
// as display labels so the log reads the way the answer looked to the user at
// the time. Entries are never updated or deleted.
type HistoryEntry struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID   uint      `gorm:"column:event_id;not null;index"`
	UserID    string    `gorm:"column:user_id;size:64;not null"`
	OldStatus string    `gorm:"column:old_status;size:190;not null"`
	NewStatus string    `gorm:"column:new_status;size:190;not null"`
	OldNote   *string   `gorm:"column:old_note;size:500"`
	NewNote   *string   `gorm:"column:new_note;size:500"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`

	Event events.Event `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName provides the explicit table binding for GORM.
func (HistoryEntry) TableName() string {
	return "history"
}

// EventParticipant is a participation row joined with the player's roster
// entry, as rendered in the participant and history views.
type EventParticipant struct {
	UserID   string
	Name     string
	Category roster.Category
	Status   status.Status
	Note     *string
}

// RangeRecord is one exported row: a participation joined with its event,
// used by the CSV export over a date range.
type RangeRecord struct {
	EventName  string
	EventStart time.Time
	EventEnd   time.Time
	UserName   string
	Status     status.Status
	Note       *string
}

package roster

import (
	"errors"
	"fmt"
)

// Category groups players into divisions for participant and missing-player
// views. It is optional; attendance works without it.
type Category string

const (
	CategoryOpen  Category = "open"
	CategoryWomen Category = "women"
	CategoryUnset Category = ""
)

// ErrUnknownCategory indicates a division outside the known set.
var ErrUnknownCategory = errors.New("roster: unknown category")

// ParseCategory validates raw division input.
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryOpen, CategoryWomen, CategoryUnset:
		return Category(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

// User is a chat-platform account seen by the bot. Rows are created lazily on
// first interaction; the platform issues the identifier.
type User struct {
	UserID   string   `gorm:"column:user_id;primaryKey;size:64;not null"`
	Name     string   `gorm:"column:name;size:190;not null;index"`
	Category Category `gorm:"column:category;size:16"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

package status

import (
	"errors"
	"fmt"
)

// Status is one of the three canonical attendance answers. Display text is
// resolved through a Vocabulary; the canonical token never reaches the user.
type Status string

const (
	StatusComing    Status = "coming"
	StatusLate      Status = "late"
	StatusNotComing Status = "not_coming"
)

// ErrUnknownStatus indicates a value outside the canonical tri-state set.
var ErrUnknownStatus = errors.New("status: unknown status value")

// Parse validates raw input and returns a canonical Status.
func Parse(raw string) (Status, error) {
	switch Status(raw) {
	case StatusComing, StatusLate, StatusNotComing:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

// String returns the canonical token.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether the status is one of the three canonical values.
func (s Status) Valid() bool {
	switch s {
	case StatusComing, StatusLate, StatusNotComing:
		return true
	}
	return false
}

// LabelSet holds the display text for the three canonical statuses.
type LabelSet struct {
	Coming    string
	Late      string
	NotComing string
}

// Vocabulary maps canonical statuses to display labels. Trainings carry their
// own label set; tournaments and other events share the second one.
type Vocabulary struct {
	Training LabelSet
	Other    LabelSet
	// Unset is the history sentinel recorded when no prior answer existed.
	Unset string
}

// DefaultVocabulary returns the labels used when no overrides are configured.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Training: LabelSet{Coming: "Coming", Late: "Late", NotComing: "Not Coming"},
		Other:    LabelSet{Coming: "Coming", Late: "Late", NotComing: "Not Coming"},
		Unset:    "Unset",
	}
}

// Display resolves the human label for a canonical status given whether the
// event is a training. Unknown statuses are rejected, never coerced.
func (v Vocabulary) Display(s Status, training bool) (string, error) {
	set := v.Other
	if training {
		set = v.Training
	}
	switch s {
	case StatusComing:
		return set.Coming, nil
	case StatusLate:
		return set.Late, nil
	case StatusNotComing:
		return set.NotComing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

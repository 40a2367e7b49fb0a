// Package paging encodes the navigation state carried by interactive
// controls. Every next/prev button and filter tab holds an opaque token that
// round-trips through the chat platform untouched; the codec here is the only
// place that reads or writes those tokens.
package paging

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Filter narrows the attendance list to one event category.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterTraining   Filter = "training"
	FilterTournament Filter = "tournament"
	FilterOther      Filter = "other"
)

// Tab page bounds for the three-way participant status views.
const (
	TabFirst = 0
	TabLast  = 2
)

var (
	// ErrMalformedToken indicates a token that does not decode to a known shape.
	ErrMalformedToken = errors.New("paging: malformed token")
	// ErrNegativePage indicates a decoded page below zero.
	ErrNegativePage = errors.New("paging: negative page")
	// ErrUnknownFilter indicates a filter outside the four known values.
	ErrUnknownFilter = errors.New("paging: unknown filter")
)

// ParseFilter validates raw filter input. An absent filter means no
// narrowing, so the empty string decodes as FilterAll; zero-value states
// encode and decode the same as InitialListState.
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterTraining, FilterTournament, FilterOther:
		return Filter(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, raw)
	}
}

// ListState is the navigation state of the main attendance list.
type ListState struct {
	Page   int
	Filter Filter
}

// InitialListState returns the entry state: first page, no filter.
func InitialListState() ListState {
	return ListState{Page: 0, Filter: FilterAll}
}

// Next advances one page. Callers only attach a next control when more items
// remain, so no upper bound is enforced here.
func (s ListState) Next() ListState {
	return ListState{Page: s.Page + 1, Filter: s.Filter}
}

// Prev steps one page back, clamped at zero.
func (s ListState) Prev() ListState {
	if s.Page <= 0 {
		return ListState{Page: 0, Filter: s.Filter}
	}
	return ListState{Page: s.Page - 1, Filter: s.Filter}
}

// WithFilter switches the filter and resets to the first page.
func (s ListState) WithFilter(f Filter) ListState {
	return ListState{Page: 0, Filter: f}
}

// Encode serializes the state into an opaque token.
func (s ListState) Encode() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(s.Page))
	values.Set("filter", string(s.Filter))
	return values.Encode()
}

// DecodeListState parses a token produced by ListState.Encode.
func DecodeListState(token string) (ListState, error) {
	values, err := url.ParseQuery(token)
	if err != nil {
		return ListState{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	page, err := decodePage(values.Get("page"))
	if err != nil {
		return ListState{}, err
	}
	filter, err := ParseFilter(values.Get("filter"))
	if err != nil {
		return ListState{}, err
	}
	return ListState{Page: page, Filter: filter}, nil
}

// SubmitState is carried by status buttons in the attendance list: the event
// being answered plus the list position to re-render afterwards.
type SubmitState struct {
	Page    int
	Filter  Filter
	EventID uint
}

// Encode serializes the state into an opaque token.
func (s SubmitState) Encode() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(s.Page))
	values.Set("filter", string(s.Filter))
	values.Set("event", strconv.FormatUint(uint64(s.EventID), 10))
	return values.Encode()
}

// DecodeSubmitState parses a token produced by SubmitState.Encode.
func DecodeSubmitState(token string) (SubmitState, error) {
	values, err := url.ParseQuery(token)
	if err != nil {
		return SubmitState{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	page, err := decodePage(values.Get("page"))
	if err != nil {
		return SubmitState{}, err
	}
	filter, err := ParseFilter(values.Get("filter"))
	if err != nil {
		return SubmitState{}, err
	}
	eventID, err := strconv.ParseUint(values.Get("event"), 10, 64)
	if err != nil {
		return SubmitState{}, fmt.Errorf("%w: bad event id %q", ErrMalformedToken, values.Get("event"))
	}
	return SubmitState{Page: page, Filter: filter, EventID: uint(eventID)}, nil
}

// List returns the list position the submit state came from.
func (s SubmitState) List() ListState {
	return ListState{Page: s.Page, Filter: s.Filter}
}

// EventPageState is the navigation state of per-event listings (history,
// edit screens): a page within one event's data.
type EventPageState struct {
	Page    int
	EventID uint
}

// Encode serializes the state into an opaque token.
func (s EventPageState) Encode() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(s.Page))
	values.Set("event", strconv.FormatUint(uint64(s.EventID), 10))
	return values.Encode()
}

// DecodeEventPageState parses a token produced by EventPageState.Encode.
func DecodeEventPageState(token string) (EventPageState, error) {
	values, err := url.ParseQuery(token)
	if err != nil {
		return EventPageState{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	page, err := decodePage(values.Get("page"))
	if err != nil {
		return EventPageState{}, err
	}
	eventID, err := strconv.ParseUint(values.Get("event"), 10, 64)
	if err != nil {
		return EventPageState{}, fmt.Errorf("%w: bad event id %q", ErrMalformedToken, values.Get("event"))
	}
	return EventPageState{Page: page, EventID: uint(eventID)}, nil
}

// TabState is the navigation state of the three-way status tab views.
type TabState struct {
	Page    int
	EventID uint
}

// Encode serializes the state into an opaque token.
func (s TabState) Encode() string {
	return EventPageState{Page: s.Page, EventID: s.EventID}.Encode()
}

// DecodeTabState parses a tab token and enforces the 0..2 page bound.
func DecodeTabState(token string) (TabState, error) {
	decoded, err := DecodeEventPageState(token)
	if err != nil {
		return TabState{}, err
	}
	if decoded.Page > TabLast {
		return TabState{}, fmt.Errorf("%w: tab page %d out of range", ErrMalformedToken, decoded.Page)
	}
	return TabState{Page: decoded.Page, EventID: decoded.EventID}, nil
}

func decodePage(raw string) (int, error) {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad page %q", ErrMalformedToken, raw)
	}
	if page < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativePage, page)
	}
	return page, nil
}

// PageCount returns the number of pages needed for total items at the given
// page size; an empty listing still renders one page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Slice returns the bounds of one page over total items: [start, end).
// Pages past the end collapse to an empty slice at the tail.
func Slice(total, page, pageSize int) (int, int) {
	start := page * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// HasNext reports whether items remain beyond the given page.
func HasNext(total, page, pageSize int) bool {
	return (page+1)*pageSize < total
}

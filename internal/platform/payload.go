// Package platform defines the contract consumed from the chat platform:
// typed interaction payloads delivered to the bot, the block tree it renders
// views from, and the REST client used for outbound calls.
package platform

import (
	"errors"
	"fmt"
)

// ActionKind names one interactive control. The set is closed; the server
// dispatches over it exhaustively and logs anything outside it.
type ActionKind string

const (
	// Attendance home view.
	ActionStatusComing    ActionKind = "attendance_coming"
	ActionStatusLate      ActionKind = "attendance_late"
	ActionStatusNotComing ActionKind = "attendance_not_coming"
	ActionNextPage        ActionKind = "attendance_next_page"
	ActionPrevPage        ActionKind = "attendance_prev_page"
	ActionOpenFilter      ActionKind = "attendance_open_filter"
	ActionApplyFilter     ActionKind = "attendance_apply_filter"
	ActionRefreshHome     ActionKind = "refresh_home"
	ActionOpenMassEntry   ActionKind = "open_mass_entry"
	ActionSubmitMassEntry ActionKind = "submit_mass_entry"

	// Per-event modals.
	ActionShowParticipants ActionKind = "show_participants"
	ActionParticipantsTab  ActionKind = "participants_tab"
	ActionShowMissing      ActionKind = "show_missing"
	ActionMissingTab       ActionKind = "missing_tab"
	ActionShowHistory      ActionKind = "show_history"
	ActionHistoryPage      ActionKind = "history_page"

	// Admin: event management.
	ActionOpenAddEvent    ActionKind = "open_add_event"
	ActionSubmitEvent     ActionKind = "submit_event"
	ActionOpenEditEvent   ActionKind = "open_edit_event"
	ActionSubmitEditEvent ActionKind = "submit_edit_event"
	ActionOpenDuplicate   ActionKind = "open_duplicate_event"
	ActionSubmitDuplicate ActionKind = "submit_duplicate_event"
	ActionDeleteEvent     ActionKind = "delete_event"

	// Admin: per-player attendance editing.
	ActionOpenEditAttendance ActionKind = "open_edit_attendance"
	ActionSelectEditDay      ActionKind = "select_edit_day"
	ActionSelectEditUser     ActionKind = "select_edit_user"
	ActionAdminSetStatus     ActionKind = "admin_set_status"
	ActionSubmitPlayerEdit   ActionKind = "submit_player_edit"

	// Settings, export, roster.
	ActionOpenSettings    ActionKind = "open_settings"
	ActionSubmitSettings  ActionKind = "submit_settings"
	ActionOpenExport      ActionKind = "open_export"
	ActionSubmitExport    ActionKind = "submit_export"
	ActionSetUserCategory ActionKind = "set_user_category"
)

// ErrUnknownAction indicates an action id outside the known set.
var ErrUnknownAction = errors.New("platform: unknown action")

var knownActions = map[ActionKind]struct{}{
	ActionStatusComing: {}, ActionStatusLate: {}, ActionStatusNotComing: {},
	ActionNextPage: {}, ActionPrevPage: {}, ActionOpenFilter: {}, ActionApplyFilter: {},
	ActionRefreshHome: {}, ActionOpenMassEntry: {}, ActionSubmitMassEntry: {},
	ActionShowParticipants: {}, ActionParticipantsTab: {},
	ActionShowMissing: {}, ActionMissingTab: {}, ActionShowHistory: {}, ActionHistoryPage: {},
	ActionOpenAddEvent: {}, ActionSubmitEvent: {}, ActionOpenEditEvent: {}, ActionSubmitEditEvent: {},
	ActionOpenDuplicate: {}, ActionSubmitDuplicate: {}, ActionDeleteEvent: {},
	ActionOpenEditAttendance: {}, ActionSelectEditDay: {}, ActionSelectEditUser: {},
	ActionAdminSetStatus: {}, ActionSubmitPlayerEdit: {},
	ActionOpenSettings: {}, ActionSubmitSettings: {}, ActionOpenExport: {}, ActionSubmitExport: {},
	ActionSetUserCategory: {},
}

// ParseActionKind validates a raw action id.
func ParseActionKind(raw string) (ActionKind, error) {
	kind := ActionKind(raw)
	if _, ok := knownActions[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	return kind, nil
}

// ViewState is the submitted form state, keyed by block id then action id.
type ViewState map[string]map[string]string

// Value returns the field value at (blockID, actionID), or "" when absent.
func (s ViewState) Value(blockID, actionID string) string {
	if s == nil {
		return ""
	}
	return s[blockID][actionID]
}

// Interaction is one typed callback delivered by the platform: a button
// click, menu selection, or view submission.
type Interaction struct {
	Kind      ActionKind `json:"action_id"`
	Value     string     `json:"value"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	TriggerID string     `json:"trigger_id"`
	ViewID    string     `json:"view_id"`
	State     ViewState  `json:"state"`
	// Metadata carries the submitted view's private_metadata token.
	Metadata string `json:"private_metadata"`
}

// EventNotification is a non-interactive platform event, such as a user
// opening the app home.
type EventNotification struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// EventTypeHomeOpened is the notification sent when a user opens the home tab.
const EventTypeHomeOpened = "app_home_opened"

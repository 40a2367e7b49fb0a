package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/paging"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/settings"
	"github.com/ultigroup/attendbot/internal/status"
	"github.com/ultigroup/attendbot/internal/views"
)

var (
	errBadPayload = errors.New("server: malformed interaction payload")
	errForbidden  = errors.New("server: admin action from non-admin user")
)

const dateLayout = "2006-01-02"

const lockedMessage = "Událost už je uzamčená, docházku nelze změnit."

func (h *httpHandler) handleInteraction(c *gin.Context) {
	var interaction platform.Interaction
	if err := c.ShouldBindJSON(&interaction); err != nil || interaction.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	kind, err := platform.ParseActionKind(string(interaction.Kind))
	if err != nil {
		h.logger.Warn("unknown action id",
			zap.String("action_id", string(interaction.Kind)),
			zap.String("user_id", interaction.UserID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_action"})
		return
	}
	interaction.Kind = kind

	if err := h.dispatch(c.Request.Context(), interaction); err != nil {
		switch {
		case errors.Is(err, errForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, errBadPayload),
			errors.Is(err, paging.ErrMalformedToken),
			errors.Is(err, paging.ErrUnknownFilter),
			errors.Is(err, paging.ErrNegativePage),
			errors.Is(err, status.ErrUnknownStatus),
			errors.Is(err, roster.ErrUnknownCategory),
			errors.Is(err, events.ErrUnknownCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		case errors.Is(err, events.ErrNotFound), errors.Is(err, attendance.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event_not_found"})
		default:
			h.logger.Error("interaction handling failed",
				zap.String("action_id", string(kind)),
				zap.String("user_id", interaction.UserID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "interaction_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *httpHandler) handleEventNotification(c *gin.Context) {
	var notification platform.EventNotification
	if err := c.ShouldBindJSON(&notification); err != nil || notification.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if notification.Type != platform.EventTypeHomeOpened {
		// Unsubscribed event types are acknowledged and dropped.
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.roster.Ensure(ctx, notification.UserID, notification.UserName); err != nil {
		h.logger.Error("roster ensure failed", zap.String("user_id", notification.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event_failed"})
		return
	}
	if err := h.publishHome(ctx, notification.UserID, paging.InitialListState()); err != nil {
		h.logger.Error("home publish failed", zap.String("user_id", notification.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *httpHandler) dispatch(ctx context.Context, interaction platform.Interaction) error {
	switch interaction.Kind {
	case platform.ActionStatusComing:
		return h.onStatusSubmit(ctx, interaction, status.StatusComing)
	case platform.ActionStatusLate:
		return h.onStatusSubmit(ctx, interaction, status.StatusLate)
	case platform.ActionStatusNotComing:
		return h.onStatusSubmit(ctx, interaction, status.StatusNotComing)
	case platform.ActionNextPage, platform.ActionPrevPage, platform.ActionRefreshHome:
		return h.onHomeNavigate(ctx, interaction)
	case platform.ActionOpenFilter:
		return h.onOpenFilter(ctx, interaction)
	case platform.ActionApplyFilter:
		return h.onApplyFilter(ctx, interaction)
	case platform.ActionOpenMassEntry:
		return h.onOpenMassEntry(ctx, interaction)
	case platform.ActionSubmitMassEntry:
		return h.onSubmitMassEntry(ctx, interaction)

	case platform.ActionShowParticipants:
		return h.onParticipants(ctx, interaction, false)
	case platform.ActionParticipantsTab:
		return h.onParticipants(ctx, interaction, true)
	case platform.ActionShowMissing:
		return h.onMissing(ctx, interaction, false)
	case platform.ActionMissingTab:
		return h.onMissing(ctx, interaction, true)
	case platform.ActionShowHistory:
		return h.onHistory(ctx, interaction, false)
	case platform.ActionHistoryPage:
		return h.onHistory(ctx, interaction, true)

	case platform.ActionOpenAddEvent:
		return h.onOpenEventForm(ctx, interaction, platform.ActionSubmitEvent, "Přidat událost", false)
	case platform.ActionOpenEditEvent:
		return h.onOpenEventForm(ctx, interaction, platform.ActionSubmitEditEvent, "Upravit událost", true)
	case platform.ActionOpenDuplicate:
		return h.onOpenEventForm(ctx, interaction, platform.ActionSubmitDuplicate, "Duplikovat událost", true)
	case platform.ActionSubmitEvent:
		return h.onSubmitEvent(ctx, interaction)
	case platform.ActionSubmitEditEvent:
		return h.onSubmitEditEvent(ctx, interaction)
	case platform.ActionSubmitDuplicate:
		return h.onSubmitDuplicate(ctx, interaction)
	case platform.ActionDeleteEvent:
		return h.onDeleteEvent(ctx, interaction)

	case platform.ActionOpenEditAttendance, platform.ActionSelectEditDay:
		return h.onEditAttendance(ctx, interaction)
	case platform.ActionSelectEditUser:
		return h.onOpenEditPlayer(ctx, interaction)
	case platform.ActionAdminSetStatus:
		return h.onAdminSetStatus(ctx, interaction)
	case platform.ActionSubmitPlayerEdit:
		return h.onSubmitPlayerEdit(ctx, interaction)

	case platform.ActionOpenSettings:
		return h.onOpenSettings(ctx, interaction)
	case platform.ActionSubmitSettings:
		return h.onSubmitSettings(ctx, interaction)
	case platform.ActionOpenExport:
		return h.onOpenExport(ctx, interaction)
	case platform.ActionSubmitExport:
		return h.onSubmitExport(ctx, interaction)
	case platform.ActionSetUserCategory:
		return h.onSetUserCategory(ctx, interaction)
	}
	return fmt.Errorf("%w: %q", platform.ErrUnknownAction, interaction.Kind)
}

// publishHome renders and pushes one page of the attendance list.
func (h *httpHandler) publishHome(ctx context.Context, userID string, state paging.ListState) error {
	category := filterCategory(state.Filter)
	upcoming, err := h.events.ListUpcoming(ctx, category)
	if err != nil {
		return err
	}
	answers, err := h.attendance.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	mine := make(map[uint]attendance.Participation, len(answers))
	for _, answer := range answers {
		mine[answer.EventID] = answer
	}

	view := views.AttendanceHome(upcoming, mine, state, h.isAdmin(ctx, userID), h.labels(), h.clock())
	return h.client.PublishHome(ctx, userID, view)
}

func (h *httpHandler) onStatusSubmit(ctx context.Context, interaction platform.Interaction, newStatus status.Status) error {
	submit, err := paging.DecodeSubmitState(interaction.Value)
	if err != nil {
		return err
	}
	if _, err := h.roster.Ensure(ctx, interaction.UserID, interaction.UserName); err != nil {
		return err
	}

	event, err := h.events.Get(ctx, submit.EventID)
	if err != nil {
		return err
	}
	// Locked events drop the submission; the user gets a direct message and
	// the re-rendered home shows the lock marker instead of the new answer.
	if event.Locked(h.clock()) {
		if err := h.client.PostMessage(ctx, interaction.UserID, lockedMessage); err != nil {
			return err
		}
	} else {
		note := interaction.State.Value(views.NoteBlockID(submit.EventID), views.NoteActionID)
		if _, err := h.attendance.Upsert(ctx, submit.EventID, interaction.UserID, newStatus, note); err != nil {
			return err
		}
	}

	if err := h.publishHome(ctx, interaction.UserID, submit.List()); err != nil {
		return err
	}
	return h.promptForCategory(ctx, interaction)
}

// promptForCategory opens the division prompt for first-time responders.
func (h *httpHandler) promptForCategory(ctx context.Context, interaction platform.Interaction) error {
	if interaction.TriggerID == "" {
		return nil
	}
	known, err := h.roster.HasCategory(ctx, interaction.UserID)
	if err != nil || known {
		return err
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.CategoryPromptModal(interaction.UserID))
}

func (h *httpHandler) onHomeNavigate(ctx context.Context, interaction platform.Interaction) error {
	state := paging.InitialListState()
	if interaction.Value != "" {
		decoded, err := paging.DecodeListState(interaction.Value)
		if err != nil {
			return err
		}
		state = decoded
	}
	if _, err := h.roster.Ensure(ctx, interaction.UserID, interaction.UserName); err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, state)
}

func (h *httpHandler) onOpenFilter(ctx context.Context, interaction platform.Interaction) error {
	state, err := paging.DecodeListState(interaction.Value)
	if err != nil {
		return err
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.FilterModal(state))
}

func (h *httpHandler) onApplyFilter(ctx context.Context, interaction platform.Interaction) error {
	state, err := paging.DecodeListState(interaction.Value)
	if err != nil {
		return err
	}
	filter, err := paging.ParseFilter(interaction.State.Value(views.FilterBlockID, views.FilterActionID))
	if err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, state.WithFilter(filter))
}

func (h *httpHandler) onParticipants(ctx context.Context, interaction platform.Interaction, update bool) error {
	tab, err := paging.DecodeTabState(interaction.Value)
	if err != nil {
		return err
	}
	event, err := h.events.Get(ctx, tab.EventID)
	if err != nil {
		return err
	}
	participants, err := h.attendance.ParticipantsForEvent(ctx, tab.EventID)
	if err != nil {
		return err
	}
	modal := views.ParticipantsModal(event, participants, tab, h.labels())
	if update {
		return h.client.UpdateModal(ctx, interaction.ViewID, modal)
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, modal)
}

func (h *httpHandler) onMissing(ctx context.Context, interaction platform.Interaction, update bool) error {
	tab, err := paging.DecodeTabState(interaction.Value)
	if err != nil {
		return err
	}
	event, err := h.events.Get(ctx, tab.EventID)
	if err != nil {
		return err
	}
	missing, err := h.attendance.MissingForEvent(ctx, tab.EventID)
	if err != nil {
		return err
	}
	modal := views.MissingModal(event, missing, tab)
	if update {
		return h.client.UpdateModal(ctx, interaction.ViewID, modal)
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, modal)
}

func (h *httpHandler) onHistory(ctx context.Context, interaction platform.Interaction, update bool) error {
	state, err := paging.DecodeEventPageState(interaction.Value)
	if err != nil {
		return err
	}
	event, err := h.events.Get(ctx, state.EventID)
	if err != nil {
		return err
	}
	entries, err := h.attendance.HistoryForEvent(ctx, state.EventID)
	if err != nil {
		return err
	}
	modal := views.HistoryModal(event, entries, state)
	if update {
		return h.client.UpdateModal(ctx, interaction.ViewID, modal)
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, modal)
}

func (h *httpHandler) onOpenEventForm(ctx context.Context, interaction platform.Interaction, submit platform.ActionKind, title string, prefill bool) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	var initial *events.Event
	if prefill {
		state, err := paging.DecodeEventPageState(interaction.Value)
		if err != nil {
			return err
		}
		event, err := h.events.Get(ctx, state.EventID)
		if err != nil {
			return err
		}
		initial = &event
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.EventFormModal(submit, title, initial))
}

func (h *httpHandler) onSubmitEvent(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	draft, err := draftFromState(interaction.State)
	if err != nil {
		return err
	}
	if _, err := h.events.Create(ctx, draft); err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, paging.InitialListState())
}

func (h *httpHandler) onSubmitEditEvent(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	state, err := paging.DecodeEventPageState(interaction.Metadata)
	if err != nil {
		return err
	}
	draft, err := draftFromState(interaction.State)
	if err != nil {
		return err
	}
	if _, err := h.events.Update(ctx, state.EventID, draft.Name, draft.Category, draft.Address, draft.LockTime); err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, paging.InitialListState())
}

func (h *httpHandler) onSubmitDuplicate(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	state, err := paging.DecodeEventPageState(interaction.Metadata)
	if err != nil {
		return err
	}
	draft, err := draftFromState(interaction.State)
	if err != nil {
		return err
	}
	if _, err := h.events.Duplicate(ctx, state.EventID, draft.StartTime, draft.EndTime, draft.LockTime); err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, paging.InitialListState())
}

func (h *httpHandler) onDeleteEvent(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	state, err := paging.DecodeEventPageState(interaction.Value)
	if err != nil {
		return err
	}
	if err := h.events.Delete(ctx, state.EventID); err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, paging.InitialListState())
}

func (h *httpHandler) onEditAttendance(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	day := h.clock()
	if interaction.Kind == platform.ActionSelectEditDay {
		selected, err := time.ParseInLocation(dateLayout, interaction.Value, day.Location())
		if err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		day = selected
	}
	dayEvents, err := h.events.ListByDay(ctx, day)
	if err != nil {
		return err
	}
	return h.client.PublishHome(ctx, interaction.UserID, views.EditAttendanceHome(day, dayEvents))
}

func (h *httpHandler) onOpenEditPlayer(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	state, err := paging.DecodeEventPageState(interaction.Value)
	if err != nil {
		return err
	}
	event, err := h.events.Get(ctx, state.EventID)
	if err != nil {
		return err
	}
	players, err := h.roster.List(ctx)
	if err != nil {
		return err
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.EditPlayerModal(event, players, nil, h.labels()))
}

// onAdminSetStatus records an answer on behalf of another player. This path
// stays open after lock_time; corrections happen after the cutoff.
func (h *httpHandler) onAdminSetStatus(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	state, picked, err := decodeAdminStatusToken(interaction.Value)
	if err != nil {
		return err
	}
	targetID := interaction.State.Value(views.EditPlayerUserBlockID, views.EditPlayerUserAction)
	if targetID == "" {
		return fmt.Errorf("%w: no player selected", errBadPayload)
	}
	note := interaction.State.Value(views.EditNoteBlockID, views.EditNoteActionID)
	if _, err := h.attendance.Upsert(ctx, state.EventID, targetID, picked, note); err != nil {
		return err
	}
	return h.refreshEditPlayer(ctx, interaction.ViewID, state.EventID, targetID)
}

// onSubmitPlayerEdit applies a note-only edit from the modal submission,
// keeping the player's current status.
func (h *httpHandler) onSubmitPlayerEdit(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	state, err := paging.DecodeEventPageState(interaction.Metadata)
	if err != nil {
		return err
	}
	targetID := interaction.State.Value(views.EditPlayerUserBlockID, views.EditPlayerUserAction)
	if targetID == "" {
		return nil
	}
	current, found, err := h.attendance.Get(ctx, state.EventID, targetID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	note := interaction.State.Value(views.EditNoteBlockID, views.EditNoteActionID)
	_, err = h.attendance.Upsert(ctx, state.EventID, targetID, current.Status, note)
	return err
}

func (h *httpHandler) onOpenMassEntry(ctx context.Context, interaction platform.Interaction) error {
	if _, err := h.roster.Ensure(ctx, interaction.UserID, interaction.UserName); err != nil {
		return err
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.MassEntryModal(h.clock(), h.labels()))
}

// onSubmitMassEntry records one answer for every still-open training up to
// the picked day. The listing already excludes locked trainings, so no
// per-event lock check runs here.
func (h *httpHandler) onSubmitMassEntry(ctx context.Context, interaction platform.Interaction) error {
	picked, err := status.Parse(interaction.State.Value(views.MassEntryStatusBlockID, views.MassEntryFieldActionID))
	if err != nil {
		return err
	}
	until, err := time.ParseInLocation(dateLayout, interaction.State.Value(views.MassEntryUntilBlockID, views.MassEntryFieldActionID), time.Local)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	note := interaction.State.Value(views.MassEntryNoteBlockID, views.MassEntryFieldActionID)

	if _, err := h.roster.Ensure(ctx, interaction.UserID, interaction.UserName); err != nil {
		return err
	}
	// The picked end date is inclusive.
	trainings, err := h.events.ListOpenTrainings(ctx, until.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	for _, training := range trainings {
		if _, err := h.attendance.Upsert(ctx, training.ID, interaction.UserID, picked, note); err != nil {
			return err
		}
	}
	return h.publishHome(ctx, interaction.UserID, paging.InitialListState())
}

func (h *httpHandler) refreshEditPlayer(ctx context.Context, viewID string, eventID uint, targetID string) error {
	event, err := h.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	players, err := h.roster.List(ctx)
	if err != nil {
		return err
	}
	var selected *attendance.EventParticipant
	participants, err := h.attendance.ParticipantsForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	for i := range participants {
		if participants[i].UserID == targetID {
			selected = &participants[i]
			break
		}
	}
	return h.client.UpdateModal(ctx, viewID, views.EditPlayerModal(event, players, selected, h.labels()))
}

func (h *httpHandler) onOpenSettings(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.SettingsModal(h.settings.Current()))
}

func (h *httpHandler) onSubmitSettings(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	updated := settingsFromState(h.settings.Current(), interaction.State)
	if err := h.settings.Save(updated); err != nil {
		return err
	}
	return h.publishHome(ctx, interaction.UserID, paging.InitialListState())
}

func (h *httpHandler) onOpenExport(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	return h.client.OpenModal(ctx, interaction.TriggerID, views.ExportModal(h.clock()))
}

func (h *httpHandler) onSubmitExport(ctx context.Context, interaction platform.Interaction) error {
	if err := h.requireAdmin(ctx, interaction.UserID); err != nil {
		return err
	}
	if h.exporter == nil {
		return errors.New("server: exporter not configured")
	}
	from, err := time.ParseInLocation(dateLayout, interaction.State.Value(views.ExportFromBlockID, views.ExportFieldActionID), time.Local)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	to, err := time.ParseInLocation(dateLayout, interaction.State.Value(views.ExportToBlockID, views.ExportFieldActionID), time.Local)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	// The picked end date is inclusive.
	return h.exporter.Run(ctx, h.settings.Current().ExportChannel, from, to.AddDate(0, 0, 1))
}

func (h *httpHandler) onSetUserCategory(ctx context.Context, interaction platform.Interaction) error {
	category, err := roster.ParseCategory(interaction.State.Value(views.CategoryBlockID, views.CategoryActionID))
	if err != nil {
		return err
	}
	return h.roster.SetCategory(ctx, interaction.UserID, category)
}

func (h *httpHandler) labels() status.Vocabulary {
	return h.settings.Current().Labels
}

// isAdmin checks membership of the configured admin group. An unset group or
// a failed lookup means nobody is treated as admin.
func (h *httpHandler) isAdmin(ctx context.Context, userID string) bool {
	group := h.settings.Current().AdminGroup
	if group == "" {
		return false
	}
	members, err := h.client.GroupMembers(ctx, group)
	if err != nil {
		h.logger.Warn("admin group lookup failed", zap.String("group_id", group), zap.Error(err))
		return false
	}
	for _, member := range members {
		if member == userID {
			return true
		}
	}
	return false
}

func (h *httpHandler) requireAdmin(ctx context.Context, userID string) error {
	if !h.isAdmin(ctx, userID) {
		return fmt.Errorf("%w: %s", errForbidden, userID)
	}
	return nil
}

func filterCategory(filter paging.Filter) *events.Category {
	var category events.Category
	switch filter {
	case paging.FilterTraining:
		category = events.CategoryTraining
	case paging.FilterTournament:
		category = events.CategoryTournament
	case paging.FilterOther:
		category = events.CategoryOther
	default:
		return nil
	}
	return &category
}

// draftFromState reads the event form fields back out of the submitted view.
func draftFromState(state platform.ViewState) (events.Draft, error) {
	field := func(blockID string) string {
		return strings.TrimSpace(state.Value(blockID, views.EventFieldActionID))
	}
	parseTime := func(blockID string) (time.Time, error) {
		parsed, err := time.ParseInLocation(views.DateTimeLayout, field(blockID), time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return parsed, nil
	}

	start, err := parseTime(views.EventStartBlockID)
	if err != nil {
		return events.Draft{}, err
	}
	end, err := parseTime(views.EventEndBlockID)
	if err != nil {
		return events.Draft{}, err
	}
	lock, err := parseTime(views.EventLockBlockID)
	if err != nil {
		return events.Draft{}, err
	}
	category, err := events.ParseCategory(field(views.EventTypeBlockID))
	if err != nil {
		return events.Draft{}, err
	}
	return events.Draft{
		Name:      field(views.EventNameBlockID),
		StartTime: start,
		EndTime:   end,
		LockTime:  lock,
		Category:  category,
		Address:   field(views.EventAddressBlockID),
	}, nil
}

// decodeAdminStatusToken splits the event token carried by the admin status
// buttons into its page state and the picked status.
func decodeAdminStatusToken(token string) (paging.EventPageState, status.Status, error) {
	state, err := paging.DecodeEventPageState(token)
	if err != nil {
		return paging.EventPageState{}, "", err
	}
	values, err := url.ParseQuery(token)
	if err != nil {
		return paging.EventPageState{}, "", fmt.Errorf("%w: %v", errBadPayload, err)
	}
	picked, err := status.Parse(values.Get("status"))
	if err != nil {
		return paging.EventPageState{}, "", err
	}
	return state, picked, nil
}

func settingsFromState(current settings.Settings, state platform.ViewState) settings.Settings {
	field := func(blockID, fallback string) string {
		value := strings.TrimSpace(state.Value(blockID, views.SettingsFieldActionID))
		if value == "" {
			return fallback
		}
		return value
	}

	updated := current
	updated.AdminGroup = strings.TrimSpace(state.Value(views.SettingsAdminGroupBlockID, views.SettingsFieldActionID))
	updated.ExportChannel = strings.TrimSpace(state.Value(views.SettingsExportChannelBlockID, views.SettingsFieldActionID))
	updated.Labels.Other.Coming = field(views.SettingsComingBlockID, current.Labels.Other.Coming)
	updated.Labels.Other.Late = field(views.SettingsLateBlockID, current.Labels.Other.Late)
	updated.Labels.Other.NotComing = field(views.SettingsNotComingBlockID, current.Labels.Other.NotComing)
	updated.Labels.Training.Coming = field(views.SettingsComingTrainBlockID, current.Labels.Training.Coming)
	updated.Labels.Training.Late = field(views.SettingsLateTrainBlockID, current.Labels.Training.Late)
	updated.Labels.Training.NotComing = field(views.SettingsNotComingTrBlockID, current.Labels.Training.NotComing)
	return updated
}

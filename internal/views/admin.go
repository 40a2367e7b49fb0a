package views

import (
	"fmt"
	"time"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/paging"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/settings"
	"github.com/ultigroup/attendbot/internal/status"
)

// Block and action ids of the event form, read back from submitted view state.
const (
	EventNameBlockID    = "event_name_block"
	EventStartBlockID   = "event_start_block"
	EventEndBlockID     = "event_end_block"
	EventLockBlockID    = "event_lock_block"
	EventTypeBlockID    = "event_type_block"
	EventAddressBlockID = "event_address_block"
	EventFieldActionID  = "event_field"

	SettingsAdminGroupBlockID    = "settings_admin_group"
	SettingsExportChannelBlockID = "settings_export_channel"
	SettingsComingBlockID        = "settings_coming"
	SettingsLateBlockID          = "settings_late"
	SettingsNotComingBlockID     = "settings_not_coming"
	SettingsComingTrainBlockID   = "settings_coming_training"
	SettingsLateTrainBlockID     = "settings_late_training"
	SettingsNotComingTrBlockID   = "settings_not_coming_training"
	SettingsFieldActionID        = "settings_field"

	ExportFromBlockID    = "export_from"
	ExportToBlockID      = "export_to"
	ExportFieldActionID  = "export_field"
	CategoryBlockID      = "category_block"
	CategoryActionID     = "category_select"
	EditNoteBlockID      = "edit_note_block"
	EditNoteActionID     = "edit_note"
	EditDayBlockID       = "edit_day_block"
	EditDayActionID      = "edit_day"
	EditPlayerUserBlockID = "edit_player_user"
	EditPlayerUserAction  = "edit_player_user_select"
)

// DateTimeLayout is the format of free-text time fields in the event form.
const DateTimeLayout = "2.1.2006 15:04"

// EventFormModal renders the create, edit, or duplicate form. For edit and
// duplicate, initial carries the source event and PrivateMetadata its id.
func EventFormModal(callback platform.ActionKind, title string, initial *events.Event) platform.Modal {
	var name, start, end, lock, address, metadata string
	if initial != nil {
		name = initial.Name
		start = initial.StartTime.Format(DateTimeLayout)
		end = initial.EndTime.Format(DateTimeLayout)
		lock = initial.LockTime.Format(DateTimeLayout)
		address = initial.Address
		metadata = paging.EventPageState{EventID: initial.ID}.Encode()
	}

	categoryOptions := []platform.Option{
		{Text: platform.PlainText("Trénink"), Value: string(events.CategoryTraining)},
		{Text: platform.PlainText("Turnaj"), Value: string(events.CategoryTournament)},
		{Text: platform.PlainText("Ostatní"), Value: string(events.CategoryOther)},
	}

	field := platform.ActionKind(EventFieldActionID)
	return platform.Modal{
		Title:           title,
		Submit:          "Uložit",
		CallbackID:      string(callback),
		PrivateMetadata: metadata,
		Blocks: []platform.Block{
			platform.Input(EventNameBlockID, "Název", platform.TextInput(field, "", name), false),
			platform.Input(EventStartBlockID, "Začátek", platform.TextInput(field, "31.12.2026 18:00", start), false),
			platform.Input(EventEndBlockID, "Konec", platform.TextInput(field, "31.12.2026 20:00", end), false),
			platform.Input(EventLockBlockID, "Uzávěrka", platform.TextInput(field, "31.12.2026 12:00", lock), false),
			platform.Input(EventTypeBlockID, "Typ", platform.StaticSelect(field, categoryOptions), false),
			platform.Input(EventAddressBlockID, "Adresa", platform.TextInput(field, "", address), true),
		},
	}
}

// EditAttendanceHome renders the admin edit surface: a day picker plus the
// events of the selected day with per-event edit controls.
func EditAttendanceHome(day time.Time, dayEvents []events.Event) platform.HomeView {
	blocks := []platform.Block{
		platform.Header("Úprava docházky"),
		platform.Actions(platform.Button(platform.ActionRefreshHome, "Zpět", "")),
		platform.Input(EditDayBlockID, "Den", platform.DatePicker(platform.ActionSelectEditDay, day.Format("2006-01-02")), false),
		platform.Divider(),
	}
	if len(dayEvents) == 0 {
		blocks = append(blocks, platform.Section("Žádné události v tento den."))
	}
	for _, event := range dayEvents {
		text := fmt.Sprintf("*%s*\nZačátek: %s\nKonec: %s\nUzávěrka: %s\nTyp: %s",
			event.Name,
			event.StartTime.Format(timeLayout),
			event.EndTime.Format(timeLayout),
			event.LockTime.Format(timeLayout),
			categoryLabel(event.Category))
		if event.Address != "" {
			text += "\nAdresa: " + event.Address
		}
		blocks = append(blocks, platform.SectionWithAccessory(text,
			platform.Button(platform.ActionSelectEditUser, "Upravit hráče",
				paging.EventPageState{EventID: event.ID}.Encode())))
	}
	return platform.HomeView{Blocks: blocks}
}

// EditPlayerModal renders the admin per-player status editor. The admin path
// deliberately works after lock_time; corrections happen after the cutoff.
func EditPlayerModal(
	event events.Event,
	players []roster.User,
	selected *attendance.EventParticipant,
	labels status.Vocabulary,
) platform.Modal {
	options := make([]platform.Option, 0, len(players))
	for _, player := range players {
		options = append(options, platform.Option{Text: platform.PlainText(player.Name), Value: player.UserID})
	}

	eventToken := paging.EventPageState{EventID: event.ID}.Encode()
	blocks := []platform.Block{
		platform.Header(event.Name),
		platform.Input(EditPlayerUserBlockID, "Hráč", platform.StaticSelect(platform.ActionKind(EditPlayerUserAction), options), false),
	}

	if selected != nil {
		current := labels.Unset
		if label, err := labels.Display(selected.Status, event.Category.IsTraining()); err == nil {
			current = label
		}
		blocks = append(blocks, platform.Section(fmt.Sprintf("*%s*: %s", selected.Name, current)))
	}

	training := event.Category.IsTraining()
	blocks = append(blocks,
		platform.Actions(
			platform.StyledButton(platform.ActionAdminSetStatus, displayOrFallback(labels, status.StatusComing, training),
				adminStatusToken(eventToken, status.StatusComing), "primary"),
			platform.Button(platform.ActionAdminSetStatus, displayOrFallback(labels, status.StatusLate, training),
				adminStatusToken(eventToken, status.StatusLate)),
			platform.StyledButton(platform.ActionAdminSetStatus, displayOrFallback(labels, status.StatusNotComing, training),
				adminStatusToken(eventToken, status.StatusNotComing), "danger"),
		),
		platform.Input(EditNoteBlockID, "Poznámka", platform.TextInput(platform.ActionKind(EditNoteActionID), "", ""), true),
	)

	return platform.Modal{
		Title:           "Upravit hráče",
		Submit:          "Uložit",
		CallbackID:      string(platform.ActionSubmitPlayerEdit),
		PrivateMetadata: eventToken,
		Blocks:          blocks,
	}
}

// adminStatusToken appends the chosen status to the event token; one action
// id serves all three buttons.
func adminStatusToken(eventToken string, s status.Status) string {
	return eventToken + "&status=" + string(s)
}

// SettingsModal renders the label and group configuration form.
func SettingsModal(current settings.Settings) platform.Modal {
	field := platform.ActionKind(SettingsFieldActionID)
	return platform.Modal{
		Title:      "Nastavení",
		Submit:     "Uložit",
		CallbackID: string(platform.ActionSubmitSettings),
		Blocks: []platform.Block{
			platform.Input(SettingsAdminGroupBlockID, "Skupina administrátorů", platform.TextInput(field, "", current.AdminGroup), true),
			platform.Input(SettingsExportChannelBlockID, "Kanál pro export", platform.TextInput(field, "", current.ExportChannel), true),
			platform.Divider(),
			platform.Input(SettingsComingBlockID, "Přijdu", platform.TextInput(field, "", current.Labels.Other.Coming), false),
			platform.Input(SettingsLateBlockID, "Přijdu později", platform.TextInput(field, "", current.Labels.Other.Late), false),
			platform.Input(SettingsNotComingBlockID, "Nepřijdu", platform.TextInput(field, "", current.Labels.Other.NotComing), false),
			platform.Input(SettingsComingTrainBlockID, "Přijdu (trénink)", platform.TextInput(field, "", current.Labels.Training.Coming), false),
			platform.Input(SettingsLateTrainBlockID, "Přijdu později (trénink)", platform.TextInput(field, "", current.Labels.Training.Late), false),
			platform.Input(SettingsNotComingTrBlockID, "Nepřijdu (trénink)", platform.TextInput(field, "", current.Labels.Training.NotComing), false),
		},
	}
}

// ExportModal renders the CSV export date-range form.
func ExportModal(now time.Time) platform.Modal {
	field := platform.ActionKind(ExportFieldActionID)
	monthAhead := now.AddDate(0, 1, 0)
	return platform.Modal{
		Title:      "Export docházky",
		Submit:     "Exportovat",
		CallbackID: string(platform.ActionSubmitExport),
		Blocks: []platform.Block{
			platform.Input(ExportFromBlockID, "Od", platform.DatePicker(field, now.Format("2006-01-02")), false),
			platform.Input(ExportToBlockID, "Do", platform.DatePicker(field, monthAhead.Format("2006-01-02")), false),
		},
	}
}

// CategoryPromptModal asks a first-time user for their division.
func CategoryPromptModal(userID string) platform.Modal {
	options := []platform.Option{
		{Text: platform.PlainText("Open"), Value: string(roster.CategoryOpen)},
		{Text: platform.PlainText("Women"), Value: string(roster.CategoryWomen)},
	}
	return platform.Modal{
		Title:           "Divize",
		Submit:          "Uložit",
		CallbackID:      string(platform.ActionSetUserCategory),
		PrivateMetadata: userID,
		Blocks: []platform.Block{
			platform.Section("V jaké divizi hraješ?"),
			platform.Input(CategoryBlockID, "Divize", platform.StaticSelect(platform.ActionKind(CategoryActionID), options), false),
		},
	}
}

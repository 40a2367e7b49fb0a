// Package views builds the block trees the bot renders: the attendance home
// surface, the per-event modals, and the admin forms. Renderers are pure;
// they take loaded data and return blocks.
package views

import (
	"fmt"
	"time"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/paging"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/status"
)

// EventsPerPage bounds the attendance list: five blocks per event against the
// platform's cap of fifty blocks per view.
const EventsPerPage = 10

const timeLayout = "02.01.2006 15:04"

// NoteBlockID returns the block id of the note input rendered for one event.
func NoteBlockID(eventID uint) string {
	return fmt.Sprintf("note_%d", eventID)
}

// NoteActionID is the action id of every note input.
const NoteActionID = "note_input"

// FilterBlockID and FilterActionID locate the filter selection in submitted
// view state.
const (
	FilterBlockID  = "filter_block"
	FilterActionID = "filter_select"
)

// AttendanceHome renders one page of the attendance list. Status buttons
// carry a SubmitState token so the handler can re-render the same page;
// navigation controls appear only when the target page exists.
func AttendanceHome(
	upcoming []events.Event,
	mine map[uint]attendance.Participation,
	state paging.ListState,
	isAdmin bool,
	labels status.Vocabulary,
	now time.Time,
) platform.HomeView {
	blocks := []platform.Block{
		platform.Header("Docházka"),
		platform.Actions(
			platform.Button(platform.ActionOpenFilter, "Filtr: "+filterLabel(state.Filter), state.Encode()),
			platform.Button(platform.ActionOpenMassEntry, "Vyplnit hromadně tréninky", ""),
			platform.Button(platform.ActionRefreshHome, "Obnovit", state.Encode()),
		),
	}
	if isAdmin {
		blocks = append(blocks, platform.Actions(
			platform.Button(platform.ActionOpenAddEvent, "Přidat událost", ""),
			platform.Button(platform.ActionOpenEditAttendance, "Upravit docházku", ""),
			platform.Button(platform.ActionOpenSettings, "Nastavení", ""),
		))
	}
	blocks = append(blocks, platform.Divider())

	start, end := paging.Slice(len(upcoming), state.Page, EventsPerPage)
	for _, event := range upcoming[start:end] {
		blocks = append(blocks, eventBlocks(event, mine, state, isAdmin, labels, now)...)
	}
	if start == end {
		blocks = append(blocks, platform.Section("Žádné nadcházející události."))
	}

	var nav []platform.Element
	if state.Page > 0 {
		nav = append(nav, platform.Button(platform.ActionPrevPage, "Předchozí", state.Prev().Encode()))
	}
	if paging.HasNext(len(upcoming), state.Page, EventsPerPage) {
		nav = append(nav, platform.Button(platform.ActionNextPage, "Další", state.Next().Encode()))
	}
	if len(nav) > 0 {
		blocks = append(blocks, platform.Actions(nav...))
	}

	return platform.HomeView{Blocks: blocks}
}

func eventBlocks(
	event events.Event,
	mine map[uint]attendance.Participation,
	state paging.ListState,
	isAdmin bool,
	labels status.Vocabulary,
	now time.Time,
) []platform.Block {
	title := fmt.Sprintf("*%s*\n%s", event.Name, event.StartTime.Format(timeLayout))
	if event.Locked(now) {
		title += " - `Uzamčeno`"
	}
	title += "\n" + categoryLabel(event.Category)
	if event.Address != "" {
		title += "\n" + event.Address
	}

	blocks := []platform.Block{platform.Section(title)}

	if current, ok := mine[event.ID]; ok {
		label, err := labels.Display(current.Status, event.Category.IsTraining())
		if err == nil {
			answer := "Tvoje odpověď: " + label
			if current.Note != nil {
				answer += " (" + *current.Note + ")"
			}
			blocks = append(blocks, platform.Context(answer))
		}
	}

	token := paging.SubmitState{Page: state.Page, Filter: state.Filter, EventID: event.ID}.Encode()
	training := event.Category.IsTraining()
	blocks = append(blocks, platform.Actions(
		platform.StyledButton(platform.ActionStatusComing, displayOrFallback(labels, status.StatusComing, training), token, "primary"),
		platform.Button(platform.ActionStatusLate, displayOrFallback(labels, status.StatusLate, training), token),
		platform.StyledButton(platform.ActionStatusNotComing, displayOrFallback(labels, status.StatusNotComing, training), token, "danger"),
	))
	blocks = append(blocks, platform.Input(
		NoteBlockID(event.ID),
		"Poznámka",
		platform.TextInput(platform.ActionKind(NoteActionID), "Např. přijdu o 20 minut později", ""),
		true,
	))

	if isAdmin {
		eventToken := paging.EventPageState{Page: 0, EventID: event.ID}.Encode()
		blocks = append(blocks, platform.Actions(
			platform.Button(platform.ActionShowParticipants, "Účastníci", paging.TabState{Page: 0, EventID: event.ID}.Encode()),
			platform.Button(platform.ActionShowMissing, "Bez odpovědi", paging.TabState{Page: 0, EventID: event.ID}.Encode()),
			platform.Button(platform.ActionShowHistory, "Historie", eventToken),
			platform.Button(platform.ActionOpenEditEvent, "Upravit", eventToken),
			platform.Button(platform.ActionOpenDuplicate, "Duplikovat", eventToken),
			platform.StyledButton(platform.ActionDeleteEvent, "Smazat", eventToken, "danger"),
		))
	}

	blocks = append(blocks, platform.Divider())
	return blocks
}

// FilterModal renders the event-category filter selection.
func FilterModal(state paging.ListState) platform.Modal {
	options := []platform.Option{
		{Text: platform.PlainText("Vše"), Value: string(paging.FilterAll)},
		{Text: platform.PlainText("Tréninky"), Value: string(paging.FilterTraining)},
		{Text: platform.PlainText("Turnaje"), Value: string(paging.FilterTournament)},
		{Text: platform.PlainText("Ostatní"), Value: string(paging.FilterOther)},
	}
	return platform.Modal{
		Title:           "Filtr událostí",
		Submit:          "Použít",
		CallbackID:      string(platform.ActionApplyFilter),
		PrivateMetadata: state.Encode(),
		Blocks: []platform.Block{
			platform.Input(FilterBlockID, "Zobrazit", platform.StaticSelect(platform.ActionApplyFilter, options), false),
		},
	}
}

// Block and action ids of the bulk training form.
const (
	MassEntryStatusBlockID = "mass_entry_status"
	MassEntryUntilBlockID  = "mass_entry_until"
	MassEntryNoteBlockID   = "mass_entry_note"
	MassEntryFieldActionID = "mass_entry_field"
)

// MassEntryModal renders the bulk training form: one status and note applied
// to every open training up to the picked day.
func MassEntryModal(now time.Time, labels status.Vocabulary) platform.Modal {
	options := []platform.Option{
		{Text: platform.PlainText(displayOrFallback(labels, status.StatusComing, true)), Value: string(status.StatusComing)},
		{Text: platform.PlainText(displayOrFallback(labels, status.StatusLate, true)), Value: string(status.StatusLate)},
		{Text: platform.PlainText(displayOrFallback(labels, status.StatusNotComing, true)), Value: string(status.StatusNotComing)},
	}
	field := platform.ActionKind(MassEntryFieldActionID)
	return platform.Modal{
		Title:      "Vyplnit hromadně tréninky",
		Submit:     "Uložit",
		CallbackID: string(platform.ActionSubmitMassEntry),
		Blocks: []platform.Block{
			platform.Section("Odpověď se uloží ke všem tréninkům, které ještě nejsou uzamčené."),
			platform.Input(MassEntryStatusBlockID, "Odpověď", platform.StaticSelect(field, options), false),
			platform.Input(MassEntryUntilBlockID, "Do dne", platform.DatePicker(field, now.AddDate(0, 1, 0).Format("2006-01-02")), false),
			platform.Input(MassEntryNoteBlockID, "Poznámka", platform.TextInput(field, "", ""), true),
		},
	}
}

func filterLabel(filter paging.Filter) string {
	switch filter {
	case paging.FilterTraining:
		return "Tréninky"
	case paging.FilterTournament:
		return "Turnaje"
	case paging.FilterOther:
		return "Ostatní"
	default:
		return "Vše"
	}
}

func categoryLabel(category events.Category) string {
	switch category {
	case events.CategoryTraining:
		return "Trénink"
	case events.CategoryTournament:
		return "Turnaj"
	default:
		return "Ostatní"
	}
}

func displayOrFallback(labels status.Vocabulary, s status.Status, training bool) string {
	label, err := labels.Display(s, training)
	if err != nil {
		return s.String()
	}
	return label
}

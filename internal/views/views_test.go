package views

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/paging"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/settings"
	"github.com/ultigroup/attendbot/internal/status"
)

func testLabels() status.Vocabulary {
	return status.Vocabulary{
		Training: status.LabelSet{Coming: "Přijdu na trénink", Late: "Přijdu později", NotComing: "Nepřijdu na trénink"},
		Other:    status.LabelSet{Coming: "Přijdu", Late: "Přijdu později", NotComing: "Nepřijdu"},
		Unset:    "Nezadáno",
	}
}

func testEvent(id uint, category events.Category) events.Event {
	start := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	return events.Event{
		ID:        id,
		Name:      fmt.Sprintf("Event %d", id),
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		LockTime:  start.Add(-6 * time.Hour),
		Category:  category,
	}
}

func testEvents(count int) []events.Event {
	list := make([]events.Event, 0, count)
	for i := 0; i < count; i++ {
		list = append(list, testEvent(uint(i+1), events.CategoryTraining))
	}
	return list
}

// blockTexts flattens every text fragment of the view into one string so
// tests can assert on rendered content without walking the tree by hand.
func blockTexts(blocks []platform.Block) string {
	var builder strings.Builder
	for _, block := range blocks {
		if block.Text != nil {
			builder.WriteString(block.Text.Text)
			builder.WriteString("\n")
		}
		for _, element := range block.Elements {
			if element.Text != nil {
				builder.WriteString(element.Text.Text)
				builder.WriteString("\n")
			}
		}
	}
	return builder.String()
}

func findButtons(blocks []platform.Block, kind platform.ActionKind) []platform.Element {
	var found []platform.Element
	for _, block := range blocks {
		for _, element := range block.Elements {
			if element.ActionID == string(kind) {
				found = append(found, element)
			}
		}
		if block.Accessory != nil && block.Accessory.ActionID == string(kind) {
			found = append(found, *block.Accessory)
		}
	}
	return found
}

func findInput(t *testing.T, blocks []platform.Block, blockID string) platform.Element {
	t.Helper()
	for _, block := range blocks {
		if block.Type == "input" && block.BlockID == blockID {
			if block.Element == nil {
				t.Fatalf("input block %q has no element", blockID)
			}
			return *block.Element
		}
	}
	t.Fatalf("input block %q not rendered", blockID)
	return platform.Element{}
}

func TestAttendanceHomeEmptyList(t *testing.T) {
	home := AttendanceHome(nil, nil, paging.ListState{}, false, testLabels(), time.Now())

	if !strings.Contains(blockTexts(home.Blocks), "Žádné nadcházející události.") {
		t.Fatalf("expected empty-list placeholder, got:\n%s", blockTexts(home.Blocks))
	}
	if len(findButtons(home.Blocks, platform.ActionNextPage)) != 0 {
		t.Fatal("expected no next-page control on an empty list")
	}
	if len(findButtons(home.Blocks, platform.ActionPrevPage)) != 0 {
		t.Fatal("expected no prev-page control on an empty list")
	}
}

func TestAttendanceHomePageNavigation(t *testing.T) {
	list := testEvents(2*EventsPerPage + 5)
	labels := testLabels()

	first := AttendanceHome(list, nil, paging.ListState{Page: 0}, false, labels, time.Now())
	if len(findButtons(first.Blocks, platform.ActionPrevPage)) != 0 {
		t.Fatal("first page must not offer a previous-page control")
	}
	if len(findButtons(first.Blocks, platform.ActionNextPage)) != 1 {
		t.Fatal("first page of three must offer a next-page control")
	}

	middle := AttendanceHome(list, nil, paging.ListState{Page: 1}, false, labels, time.Now())
	if len(findButtons(middle.Blocks, platform.ActionPrevPage)) != 1 ||
		len(findButtons(middle.Blocks, platform.ActionNextPage)) != 1 {
		t.Fatal("middle page must offer both navigation controls")
	}

	last := AttendanceHome(list, nil, paging.ListState{Page: 2}, false, labels, time.Now())
	if len(findButtons(last.Blocks, platform.ActionNextPage)) != 0 {
		t.Fatal("last page must not offer a next-page control")
	}

	tokens := findButtons(middle.Blocks, platform.ActionNextPage)
	state, err := paging.DecodeListState(tokens[0].Value)
	if err != nil {
		t.Fatalf("next-page token does not decode: %v", err)
	}
	if state.Page != 2 {
		t.Fatalf("expected next-page token for page 2, got %d", state.Page)
	}
}

func TestAttendanceHomeEventsPerPageCap(t *testing.T) {
	list := testEvents(EventsPerPage + 3)
	home := AttendanceHome(list, nil, paging.ListState{}, false, testLabels(), time.Now())

	coming := findButtons(home.Blocks, platform.ActionStatusComing)
	if len(coming) != EventsPerPage {
		t.Fatalf("expected %d events on the first page, got %d", EventsPerPage, len(coming))
	}
}

func TestAttendanceHomeLockedMarker(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)
	now := event.LockTime.Add(time.Minute)

	home := AttendanceHome([]events.Event{event}, nil, paging.ListState{}, false, testLabels(), now)
	if !strings.Contains(blockTexts(home.Blocks), "Uzamčeno") {
		t.Fatal("expected a lock marker after lock_time")
	}

	before := AttendanceHome([]events.Event{event}, nil, paging.ListState{}, false, testLabels(), event.LockTime.Add(-time.Minute))
	if strings.Contains(blockTexts(before.Blocks), "Uzamčeno") {
		t.Fatal("expected no lock marker before lock_time")
	}
}

func TestAttendanceHomeTrainingLabels(t *testing.T) {
	training := testEvent(1, events.CategoryTraining)
	tournament := testEvent(2, events.CategoryTournament)
	labels := testLabels()

	home := AttendanceHome([]events.Event{training, tournament}, nil, paging.ListState{}, false, labels, time.Now())
	text := blockTexts(home.Blocks)
	if !strings.Contains(text, labels.Training.Coming) {
		t.Fatal("training event must use the training label set")
	}
	if !strings.Contains(text, labels.Other.Coming) {
		t.Fatal("tournament event must use the general label set")
	}
}

func TestAttendanceHomeShowsCurrentAnswer(t *testing.T) {
	event := testEvent(1, events.CategoryTournament)
	note := "s kolem"
	mine := map[uint]attendance.Participation{
		event.ID: {EventID: event.ID, UserID: "U1", Status: status.StatusLate, Note: &note},
	}

	home := AttendanceHome([]events.Event{event}, mine, paging.ListState{}, false, testLabels(), time.Now())
	text := blockTexts(home.Blocks)
	if !strings.Contains(text, "Tvoje odpověď: "+testLabels().Other.Late) {
		t.Fatalf("expected the current answer rendered, got:\n%s", text)
	}
	if !strings.Contains(text, note) {
		t.Fatal("expected the note rendered alongside the answer")
	}
}

func TestAttendanceHomeAdminControls(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)

	member := AttendanceHome([]events.Event{event}, nil, paging.ListState{}, false, testLabels(), time.Now())
	if len(findButtons(member.Blocks, platform.ActionDeleteEvent)) != 0 {
		t.Fatal("members must not see event management controls")
	}

	admin := AttendanceHome([]events.Event{event}, nil, paging.ListState{}, true, testLabels(), time.Now())
	for _, kind := range []platform.ActionKind{
		platform.ActionOpenAddEvent, platform.ActionOpenEditAttendance, platform.ActionOpenSettings,
		platform.ActionShowParticipants, platform.ActionShowMissing, platform.ActionShowHistory,
		platform.ActionOpenEditEvent, platform.ActionOpenDuplicate, platform.ActionDeleteEvent,
	} {
		if len(findButtons(admin.Blocks, kind)) == 0 {
			t.Fatalf("admin view missing %q control", kind)
		}
	}
}

func TestAttendanceHomeStatusTokenRoundTrip(t *testing.T) {
	event := testEvent(7, events.CategoryTraining)
	state := paging.ListState{Page: 1, Filter: paging.FilterTraining}

	home := AttendanceHome(paddedListWith(event, state), nil, state, false, testLabels(), time.Now())
	buttons := findButtons(home.Blocks, platform.ActionStatusComing)
	if len(buttons) == 0 {
		t.Fatal("expected at least one status button")
	}

	var token string
	for _, button := range buttons {
		decoded, err := paging.DecodeSubmitState(button.Value)
		if err != nil {
			t.Fatalf("status token does not decode: %v", err)
		}
		if decoded.EventID == event.ID {
			token = button.Value
		}
	}
	if token == "" {
		t.Fatalf("no status button carries event %d", event.ID)
	}

	decoded, err := paging.DecodeSubmitState(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.List() != state {
		t.Fatalf("expected list state %+v back, got %+v", state, decoded.List())
	}
}

// paddedListWith builds enough events that the given one lands on the page
// the state points at.
func paddedListWith(event events.Event, state paging.ListState) []events.Event {
	list := testEvents(state.Page * EventsPerPage)
	return append(list, event)
}

func TestFilterModalCarriesState(t *testing.T) {
	state := paging.ListState{Page: 2, Filter: paging.FilterTournament}
	modal := FilterModal(state)

	if modal.CallbackID != string(platform.ActionApplyFilter) {
		t.Fatalf("unexpected callback id %q", modal.CallbackID)
	}
	decoded, err := paging.DecodeListState(modal.PrivateMetadata)
	if err != nil {
		t.Fatalf("metadata does not decode: %v", err)
	}
	if decoded != state {
		t.Fatalf("expected %+v, got %+v", state, decoded)
	}
	if findInput(t, modal.Blocks, FilterBlockID).Type != "static_select" {
		t.Fatal("expected a select input for the filter")
	}
}

func TestParticipantsModalFiltersByTab(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)
	participants := []attendance.EventParticipant{
		{UserID: "U1", Name: "Alice", Status: status.StatusComing},
		{UserID: "U2", Name: "Bára", Status: status.StatusLate},
		{UserID: "U3", Name: "Cyril", Status: status.StatusComing},
	}

	coming := ParticipantsModal(event, participants, paging.TabState{Page: 0, EventID: event.ID}, testLabels())
	text := blockTexts(coming.Blocks)
	if !strings.Contains(text, "Alice") || !strings.Contains(text, "Cyril") {
		t.Fatalf("expected the coming players on the first tab, got:\n%s", text)
	}
	if strings.Contains(text, "Bára") {
		t.Fatal("late player must not appear on the coming tab")
	}

	late := ParticipantsModal(event, participants, paging.TabState{Page: 1, EventID: event.ID}, testLabels())
	if !strings.Contains(blockTexts(late.Blocks), "Bára") {
		t.Fatal("expected the late player on the second tab")
	}

	empty := ParticipantsModal(event, participants, paging.TabState{Page: 2, EventID: event.ID}, testLabels())
	if !strings.Contains(blockTexts(empty.Blocks), "Nikdo.") {
		t.Fatal("expected the empty-tab placeholder")
	}
}

func TestParticipantsModalTabNavigationEdges(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)

	first := ParticipantsModal(event, nil, paging.TabState{Page: 0, EventID: event.ID}, testLabels())
	nav := findButtons(first.Blocks, platform.ActionParticipantsTab)
	if len(nav) != 1 {
		t.Fatalf("first tab must offer exactly one navigation control, got %d", len(nav))
	}

	last := ParticipantsModal(event, nil, paging.TabState{Page: paging.TabLast, EventID: event.ID}, testLabels())
	nav = findButtons(last.Blocks, platform.ActionParticipantsTab)
	if len(nav) != 1 {
		t.Fatalf("last tab must offer exactly one navigation control, got %d", len(nav))
	}
	tab, err := paging.DecodeTabState(nav[0].Value)
	if err != nil {
		t.Fatalf("navigation token does not decode: %v", err)
	}
	if tab.Page != paging.TabLast-1 || tab.EventID != event.ID {
		t.Fatalf("unexpected navigation target %+v", tab)
	}
}

func TestMissingModalDivisionTabs(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)
	missing := []roster.User{
		{UserID: "U1", Name: "Alice", Category: roster.CategoryOpen},
		{UserID: "U2", Name: "Bára", Category: roster.CategoryWomen},
		{UserID: "U3", Name: "Cyril", Category: roster.CategoryUnset},
	}

	open := MissingModal(event, missing, paging.TabState{Page: 0, EventID: event.ID})
	if text := blockTexts(open.Blocks); !strings.Contains(text, "Alice") || strings.Contains(text, "Bára") {
		t.Fatalf("expected only the open division on the first tab, got:\n%s", text)
	}

	unset := MissingModal(event, missing, paging.TabState{Page: 2, EventID: event.ID})
	if !strings.Contains(blockTexts(unset.Blocks), "Cyril") {
		t.Fatal("expected the undivided player on the last tab")
	}
}

func TestHistoryModalPaging(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)
	entries := make([]attendance.HistoryEntry, 0, attendance.HistoryPageSize+10)
	for i := 0; i < attendance.HistoryPageSize+10; i++ {
		entries = append(entries, attendance.HistoryEntry{
			EventID:   event.ID,
			UserID:    fmt.Sprintf("U%d", i),
			OldStatus: "Nezadáno",
			NewStatus: "Přijdu",
			Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		})
	}

	first := HistoryModal(event, entries, paging.EventPageState{Page: 0, EventID: event.ID})
	nav := findButtons(first.Blocks, platform.ActionHistoryPage)
	if len(nav) != 1 || nav[0].Text.Text != "Starší" {
		t.Fatalf("first page must offer only the older-page control, got %+v", nav)
	}

	second := HistoryModal(event, entries, paging.EventPageState{Page: 1, EventID: event.ID})
	nav = findButtons(second.Blocks, platform.ActionHistoryPage)
	if len(nav) != 1 || nav[0].Text.Text != "Novější" {
		t.Fatalf("last page must offer only the newer-page control, got %+v", nav)
	}

	// Header plus ten remaining entries.
	if len(second.Blocks) != 12 {
		t.Fatalf("expected 12 blocks on the second page, got %d", len(second.Blocks))
	}
}

func TestHistoryModalEmpty(t *testing.T) {
	event := testEvent(1, events.CategoryTraining)
	modal := HistoryModal(event, nil, paging.EventPageState{EventID: event.ID})
	if !strings.Contains(blockTexts(modal.Blocks), "Žádné záznamy.") {
		t.Fatal("expected the empty-history placeholder")
	}
}

func TestEventFormModalPrefill(t *testing.T) {
	event := testEvent(9, events.CategoryTournament)
	event.Address = "Hřiště Letná"

	modal := EventFormModal(platform.ActionSubmitEditEvent, "Upravit událost", &event)
	if modal.CallbackID != string(platform.ActionSubmitEditEvent) {
		t.Fatalf("unexpected callback id %q", modal.CallbackID)
	}

	decoded, err := paging.DecodeEventPageState(modal.PrivateMetadata)
	if err != nil {
		t.Fatalf("metadata does not decode: %v", err)
	}
	if decoded.EventID != event.ID {
		t.Fatalf("expected event %d in metadata, got %d", event.ID, decoded.EventID)
	}

	if got := findInput(t, modal.Blocks, EventNameBlockID).InitialValue; got != event.Name {
		t.Fatalf("expected name prefill %q, got %q", event.Name, got)
	}
	if got := findInput(t, modal.Blocks, EventStartBlockID).InitialValue; got != event.StartTime.Format(DateTimeLayout) {
		t.Fatalf("unexpected start prefill %q", got)
	}
	if got := findInput(t, modal.Blocks, EventAddressBlockID).InitialValue; got != event.Address {
		t.Fatalf("unexpected address prefill %q", got)
	}
}

func TestEventFormModalBlank(t *testing.T) {
	modal := EventFormModal(platform.ActionSubmitEvent, "Přidat událost", nil)
	if modal.PrivateMetadata != "" {
		t.Fatalf("blank form must carry no metadata, got %q", modal.PrivateMetadata)
	}
	if got := findInput(t, modal.Blocks, EventNameBlockID).InitialValue; got != "" {
		t.Fatalf("expected empty name prefill, got %q", got)
	}
}

func defaultTestSettings() settings.Settings {
	return settings.Settings{
		AdminGroup:    "S123",
		ExportChannel: "C456",
		Labels:        testLabels(),
	}
}

func TestSettingsModalPrefill(t *testing.T) {
	current := defaultTestSettings()
	modal := SettingsModal(current)

	if got := findInput(t, modal.Blocks, SettingsComingBlockID).InitialValue; got != current.Labels.Other.Coming {
		t.Fatalf("expected label prefill %q, got %q", current.Labels.Other.Coming, got)
	}
	if got := findInput(t, modal.Blocks, SettingsAdminGroupBlockID).InitialValue; got != current.AdminGroup {
		t.Fatalf("expected admin group prefill %q, got %q", current.AdminGroup, got)
	}
}

func TestCategoryPromptModalMetadata(t *testing.T) {
	modal := CategoryPromptModal("U42")
	if modal.PrivateMetadata != "U42" {
		t.Fatalf("expected the user id in metadata, got %q", modal.PrivateMetadata)
	}
	options := findInput(t, modal.Blocks, CategoryBlockID).Options
	if len(options) != 2 {
		t.Fatalf("expected two division options, got %d", len(options))
	}
}

func TestEditPlayerModalSubmitsPlayerEdit(t *testing.T) {
	event := testEvent(4, events.CategoryTraining)
	modal := EditPlayerModal(event, nil, nil, testLabels())
	if modal.Submit == "" {
		t.Fatal("expected a submit control on the edit modal")
	}
	if modal.CallbackID != string(platform.ActionSubmitPlayerEdit) {
		t.Fatalf("unexpected callback %q", modal.CallbackID)
	}
}

func TestEditPlayerModalFallsBackToUnsetLabel(t *testing.T) {
	event := testEvent(5, events.CategoryTraining)
	selected := &attendance.EventParticipant{UserID: "U1", Name: "Alice"}

	modal := EditPlayerModal(event, nil, selected, testLabels())
	if !strings.Contains(blockTexts(modal.Blocks), "Nezadáno") {
		t.Fatal("expected the configured unset label rendered")
	}
}

func TestMassEntryModalUsesTrainingLabels(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	modal := MassEntryModal(now, testLabels())
	if modal.CallbackID != string(platform.ActionSubmitMassEntry) {
		t.Fatalf("unexpected callback %q", modal.CallbackID)
	}
	options := findInput(t, modal.Blocks, MassEntryStatusBlockID).Options
	if len(options) != 3 {
		t.Fatalf("expected three status options, got %d", len(options))
	}
	if options[0].Text.Text != "Přijdu na trénink" {
		t.Fatalf("expected the training label, got %q", options[0].Text.Text)
	}
	if got := findInput(t, modal.Blocks, MassEntryUntilBlockID).InitialValue; got != "2026-09-10" {
		t.Fatalf("expected a month-ahead default, got %q", got)
	}
}

func TestEditPlayerModalStatusTokens(t *testing.T) {
	event := testEvent(3, events.CategoryTraining)
	players := []roster.User{{UserID: "U1", Name: "Alice"}}

	modal := EditPlayerModal(event, players, nil, testLabels())
	buttons := findButtons(modal.Blocks, platform.ActionAdminSetStatus)
	if len(buttons) != 3 {
		t.Fatalf("expected three status controls, got %d", len(buttons))
	}
	for _, button := range buttons {
		values, err := url.ParseQuery(button.Value)
		if err != nil {
			t.Fatalf("status token does not parse: %v", err)
		}
		if _, err := status.Parse(values.Get("status")); err != nil {
			t.Fatalf("token carries an unknown status: %v", err)
		}
	}
}

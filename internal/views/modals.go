package views

import (
	"fmt"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/paging"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/status"
)

var tabStatuses = [3]status.Status{status.StatusComing, status.StatusLate, status.StatusNotComing}

// ParticipantsModal renders one status tab of the participant list.
func ParticipantsModal(
	event events.Event,
	participants []attendance.EventParticipant,
	tab paging.TabState,
	labels status.Vocabulary,
) platform.Modal {
	current := tabStatuses[tab.Page]
	title := displayOrFallback(labels, current, event.Category.IsTraining())

	blocks := []platform.Block{
		platform.Header(event.Name),
		platform.Section(fmt.Sprintf("*%s*", title)),
	}

	count := 0
	for _, participant := range participants {
		if participant.Status != current {
			continue
		}
		count++
		line := participant.Name
		if participant.Note != nil {
			line += " _" + *participant.Note + "_"
		}
		blocks = append(blocks, platform.Section(line))
	}
	if count == 0 {
		blocks = append(blocks, platform.Section("Nikdo."))
	}

	if nav := tabNavigation(platform.ActionParticipantsTab, tab); len(nav) > 0 {
		blocks = append(blocks, platform.Actions(nav...))
	}
	return platform.Modal{Title: "Účastníci", Blocks: blocks}
}

// MissingModal renders one division tab of the players with no answer.
func MissingModal(event events.Event, missing []roster.User, tab paging.TabState) platform.Modal {
	divisions := [3]struct {
		title    string
		category roster.Category
	}{
		{"Open", roster.CategoryOpen},
		{"Women", roster.CategoryWomen},
		{"Bez divize", roster.CategoryUnset},
	}
	division := divisions[tab.Page]

	blocks := []platform.Block{
		platform.Header(event.Name),
		platform.Section(fmt.Sprintf("*Bez odpovědi - %s*", division.title)),
	}
	count := 0
	for _, user := range missing {
		if user.Category != division.category {
			continue
		}
		count++
		blocks = append(blocks, platform.Section(user.Name))
	}
	if count == 0 {
		blocks = append(blocks, platform.Section("Nikdo."))
	}

	if nav := tabNavigation(platform.ActionMissingTab, tab); len(nav) > 0 {
		blocks = append(blocks, platform.Actions(nav...))
	}
	return platform.Modal{Title: "Bez odpovědi", Blocks: blocks}
}

// HistoryModal renders one page of the event's audit trail, newest first.
// The page is a pure slice of the sequence passed in.
func HistoryModal(event events.Event, entries []attendance.HistoryEntry, state paging.EventPageState) platform.Modal {
	blocks := []platform.Block{platform.Header("Historie: " + event.Name)}

	start, end := paging.Slice(len(entries), state.Page, attendance.HistoryPageSize)
	for _, entry := range entries[start:end] {
		blocks = append(blocks, platform.Section(formatHistoryEntry(entry)))
	}
	if start == end {
		blocks = append(blocks, platform.Section("Žádné záznamy."))
	}

	var nav []platform.Element
	if state.Page > 0 {
		nav = append(nav, platform.Button(platform.ActionHistoryPage, "Novější",
			paging.EventPageState{Page: state.Page - 1, EventID: state.EventID}.Encode()))
	}
	if paging.HasNext(len(entries), state.Page, attendance.HistoryPageSize) {
		nav = append(nav, platform.Button(platform.ActionHistoryPage, "Starší",
			paging.EventPageState{Page: state.Page + 1, EventID: state.EventID}.Encode()))
	}
	if len(nav) > 0 {
		blocks = append(blocks, platform.Actions(nav...))
	}

	return platform.Modal{Title: "Historie", Blocks: blocks}
}

func formatHistoryEntry(entry attendance.HistoryEntry) string {
	line := fmt.Sprintf("%s: *%s* → *%s*",
		entry.Timestamp.Format(timeLayout), entry.OldStatus, entry.NewStatus)
	if entry.NewNote != nil {
		line += fmt.Sprintf(" _%s_", *entry.NewNote)
	}
	return fmt.Sprintf("<@%s> %s", entry.UserID, line)
}

func tabNavigation(kind platform.ActionKind, tab paging.TabState) []platform.Element {
	var nav []platform.Element
	if tab.Page > paging.TabFirst {
		nav = append(nav, platform.Button(kind, "Předchozí",
			paging.TabState{Page: tab.Page - 1, EventID: tab.EventID}.Encode()))
	}
	if tab.Page < paging.TabLast {
		nav = append(nav, platform.Button(kind, "Další",
			paging.TabState{Page: tab.Page + 1, EventID: tab.EventID}.Encode()))
	}
	return nav
}

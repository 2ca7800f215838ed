package importer

import (
	"sort"
	"strings"

	"college-portal-api/models"
)

// calendarRow builds one event from a row; rows without a parseable date or
// a description are rejected.
func calendarRow(cm ColumnMap) func(RawRow) (models.CalendarEvent, bool) {
	return func(row RawRow) (models.CalendarEvent, bool) {
		date, ok := NormalizeDate(cm.Value(row, FieldDate))
		if !ok {
			return models.CalendarEvent{}, false
		}
		description := collapseSpaces(cm.Text(row, FieldDescription))
		if description == "" {
			return models.CalendarEvent{}, false
		}

		event := models.CalendarEvent{
			Date:        date,
			Description: description,
			Type:        ParseEventType(cm.Text(row, FieldType), description),
		}
		if end, ok := NormalizeDate(cm.Value(row, FieldEndDate)); ok {
			event.EndDate = end
		}
		return withValidEndDate(event), true
	}
}

// withValidEndDate drops an end date that precedes or repeats the start.
func withValidEndDate(e models.CalendarEvent) models.CalendarEvent {
	if e.EndDate != "" && e.EndDate <= e.Date {
		e.EndDate = ""
	}
	return e
}

// sortEvents orders events by start date, keeping sheet order for ties.
func sortEvents(events []models.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
}

// calendarKey identifies an event by start date and case-insensitive description.
func calendarKey(e models.CalendarEvent) string {
	return e.Date + "|" + strings.ToLower(e.Description)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

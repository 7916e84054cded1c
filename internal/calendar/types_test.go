package calendar

import (
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestToEventSummaryNil(t *testing.T) {
	summary := toEventSummary(nil)
	if summary.ID != "" {
		t.Errorf("Expected empty ID for nil event, got %s", summary.ID)
	}
}

func TestToEventSummary(t *testing.T) {
	event := &calendar.Event{
		Id:       "evt1",
		Summary:  "Standup",
		Location: "Meet",
		Start:    &calendar.EventDateTime{DateTime: "2026-08-24T09:00:00Z"},
		End:      &calendar.EventDateTime{DateTime: "2026-08-24T09:15:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
		},
	}

	summary := toEventSummary(event)
	if summary.ID != "evt1" {
		t.Errorf("Expected ID evt1, got %s", summary.ID)
	}
	if !summary.Start.Equal(time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start time: %v", summary.Start)
	}
	if len(summary.Attendees) != 2 {
		t.Errorf("Expected 2 attendees, got %d", len(summary.Attendees))
	}
}

func TestParseEventTimeAllDay(t *testing.T) {
	parsed := parseEventTime(&calendar.EventDateTime{Date: "2026-08-24"})
	if parsed.IsZero() {
		t.Error("Expected all-day date to parse")
	}
	if parsed.Day() != 24 {
		t.Errorf("Unexpected day: %d", parsed.Day())
	}
}

func TestParseEventTimeNil(t *testing.T) {
	if !parseEventTime(nil).IsZero() {
		t.Error("Expected zero time for nil")
	}
}

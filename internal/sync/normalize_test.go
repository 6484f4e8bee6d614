package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/beekhof/ics-sync/internal/feed"
)

func TestNormalizeMapsFields(t *testing.T) {
	item := feed.Item{
		UID:          "uid-1@example.org",
		Summary:      "Planning",
		Description:  "Quarterly planning",
		Location:     "Room 4",
		Status:       "tentative",
		Transparency: "transparent",
		Sequence:     3,
		HasSequence:  true,
		Start:        feed.Stamp{Time: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)},
		End:          feed.Stamp{Time: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)},
	}

	ev, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize() returned an error: %v", err)
	}

	if ev.ICalUID != "uid-1@example.org" {
		t.Errorf("Expected the UID to be carried, got %q", ev.ICalUID)
	}
	if ev.Summary != "Planning" || ev.Description != "Quarterly planning" || ev.Location != "Room 4" {
		t.Errorf("Expected the text fields to be carried, got %q %q %q", ev.Summary, ev.Description, ev.Location)
	}
	if ev.Status != "tentative" || ev.Transparency != "transparent" {
		t.Errorf("Expected explicit status and transparency to survive, got %q %q", ev.Status, ev.Transparency)
	}
	if ev.Sequence != 3 {
		t.Errorf("Expected sequence 3, got %d", ev.Sequence)
	}
	if ev.Start.DateTime != "2026-09-07T09:00:00Z" || ev.End.DateTime != "2026-09-07T10:00:00Z" {
		t.Errorf("Expected UTC instants, got %q and %q", ev.Start.DateTime, ev.End.DateTime)
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	item := feed.Item{
		UID:   "uid-1@example.org",
		Start: feed.Stamp{Time: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)},
		End:   feed.Stamp{Time: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)},
	}

	ev, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize() returned an error: %v", err)
	}
	if ev.Status != "confirmed" {
		t.Errorf("Expected the default status, got %q", ev.Status)
	}
	if ev.Transparency != "opaque" {
		t.Errorf("Expected the default transparency, got %q", ev.Transparency)
	}
}

func TestNormalizeAllDayWindow(t *testing.T) {
	item := feed.Item{
		UID:   "uid-1@example.org",
		Start: feed.Stamp{Time: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), AllDay: true},
		End:   feed.Stamp{Time: time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC), AllDay: true},
	}

	ev, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize() returned an error: %v", err)
	}
	if ev.Start.Date != "2026-09-07" || ev.Start.DateTime != "" {
		t.Errorf("Expected an all-day start date, got %+v", ev.Start)
	}
	if ev.End.Date != "2026-09-08" {
		t.Errorf("Expected an all-day end date, got %+v", ev.End)
	}
}

func TestNormalizeCarriesRecurrenceRule(t *testing.T) {
	item := feed.Item{
		UID:   "uid-1@example.org",
		RRule: "FREQ=WEEKLY;BYDAY=MO,WE",
		Start: feed.Stamp{Time: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)},
		End:   feed.Stamp{Time: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)},
	}

	ev, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize() returned an error: %v", err)
	}
	if len(ev.Recurrence) != 1 || ev.Recurrence[0] != "RRULE:FREQ=WEEKLY;BYDAY=MO,WE" {
		t.Errorf("Expected the rule to be carried with its prefix, got %v", ev.Recurrence)
	}
}

func TestNormalizeRejectsMissingWindow(t *testing.T) {
	_, err := Normalize(feed.Item{UID: "uid-1@example.org", Summary: "No times"})
	if !errors.Is(err, ErrUnsupportedItem) {
		t.Fatalf("Expected ErrUnsupportedItem, got %v", err)
	}
}

func TestNormalizeRejectsUnusableRule(t *testing.T) {
	item := feed.Item{
		UID:   "uid-1@example.org",
		RRule: "FREQ=SOMETIMES",
		Start: feed.Stamp{Time: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)},
		End:   feed.Stamp{Time: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)},
	}

	if _, err := Normalize(item); !errors.Is(err, ErrUnsupportedItem) {
		t.Fatalf("Expected ErrUnsupportedItem for a bad rule, got %v", err)
	}
}

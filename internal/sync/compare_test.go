package sync

import (
	"testing"

	"google.golang.org/api/calendar/v3"
)

func baseEvent() *calendar.Event {
	return &calendar.Event{
		ICalUID:      "uid-1@example.org",
		Summary:      "Team standup",
		Status:       "confirmed",
		Transparency: "opaque",
		Start:        &calendar.EventDateTime{DateTime: "2026-09-07T09:00:00Z"},
		End:          &calendar.EventDateTime{DateTime: "2026-09-07T09:30:00Z"},
		Sequence:     2,
	}
}

func TestDiffEqualEvents(t *testing.T) {
	if diffs := Diff(baseEvent(), baseEvent(), false); len(diffs) != 0 {
		t.Errorf("Expected identical events to have no diffs, got %v", diffs)
	}
}

func TestDiffReportsChangedFields(t *testing.T) {
	remote := baseEvent()
	remote.Summary = "Old name"
	remote.Location = "Room 2"

	diffs := Diff(baseEvent(), remote, false)
	if len(diffs) != 2 {
		t.Fatalf("Expected 2 diffs, got %v", diffs)
	}
	if diffs[0].Field != "summary" || diffs[0].Desired != "Team standup" || diffs[0].Remote != "Old name" {
		t.Errorf("Expected the summary diff first, got %+v", diffs[0])
	}
	if diffs[1].Field != "location" {
		t.Errorf("Expected the location diff, got %+v", diffs[1])
	}
}

func TestDiffAbsentTextMatchesEmpty(t *testing.T) {
	desired := baseEvent()
	desired.Description = ""
	remote := baseEvent()
	remote.Description = ""
	remote.Location = ""

	if diffs := Diff(desired, remote, false); len(diffs) != 0 {
		t.Errorf("Expected absent text fields to match empty ones, got %v", diffs)
	}
}

func TestDiffDefaultsMatchAbsent(t *testing.T) {
	remote := baseEvent()
	remote.Status = ""
	remote.Transparency = ""

	if diffs := Diff(baseEvent(), remote, false); len(diffs) != 0 {
		t.Errorf("Expected confirmed/opaque to match an absent value, got %v", diffs)
	}

	remote.Transparency = "transparent"
	if Equal(baseEvent(), remote, false) {
		t.Error("Expected transparent to differ from opaque")
	}
}

func TestDiffComparesInstantsNotRenderings(t *testing.T) {
	desired := baseEvent()
	remote := baseEvent()
	remote.Start = &calendar.EventDateTime{DateTime: "2026-09-07T11:00:00+02:00"}
	remote.End = &calendar.EventDateTime{DateTime: "2026-09-07T11:30:00+02:00"}

	if diffs := Diff(desired, remote, false); len(diffs) != 0 {
		t.Errorf("Expected the same instant in another offset to match, got %v", diffs)
	}
}

func TestDiffDateNeverMatchesInstant(t *testing.T) {
	desired := baseEvent()
	remote := baseEvent()
	remote.Start = &calendar.EventDateTime{Date: "2026-09-07"}

	diffs := Diff(desired, remote, false)
	if len(diffs) != 1 || diffs[0].Field != "start" {
		t.Errorf("Expected a start diff between a date and an instant, got %v", diffs)
	}
}

func TestDiffAllDayDatesCompareLiterally(t *testing.T) {
	desired := baseEvent()
	desired.Start = &calendar.EventDateTime{Date: "2026-09-07"}
	desired.End = &calendar.EventDateTime{Date: "2026-09-08"}
	remote := baseEvent()
	remote.Start = &calendar.EventDateTime{Date: "2026-09-07"}
	remote.End = &calendar.EventDateTime{Date: "2026-09-08"}

	if diffs := Diff(desired, remote, false); len(diffs) != 0 {
		t.Errorf("Expected equal all-day windows to match, got %v", diffs)
	}

	remote.End = &calendar.EventDateTime{Date: "2026-09-09"}
	if Equal(desired, remote, false) {
		t.Error("Expected differing all-day windows to mismatch")
	}
}

func TestDiffRecurrenceSetIgnoresOrdering(t *testing.T) {
	desired := baseEvent()
	desired.Recurrence = []string{"RRULE:FREQ=WEEKLY;BYDAY=MO,TU"}
	remote := baseEvent()
	remote.Recurrence = []string{"RRULE:BYDAY=TU,MO;FREQ=WEEKLY"}

	if diffs := Diff(desired, remote, false); len(diffs) != 0 {
		t.Errorf("Expected reordered rule parts to match, got %v", diffs)
	}
}

func TestDiffRecurrenceCountsRules(t *testing.T) {
	desired := baseEvent()
	desired.Recurrence = []string{"RRULE:FREQ=WEEKLY"}
	remote := baseEvent()
	remote.Recurrence = []string{"RRULE:FREQ=WEEKLY", "RRULE:FREQ=WEEKLY"}

	diffs := Diff(desired, remote, false)
	if len(diffs) != 1 || diffs[0].Field != "recurrence" {
		t.Errorf("Expected differing rule counts to mismatch, got %v", diffs)
	}
}

func TestDiffRecurrenceContentMismatch(t *testing.T) {
	desired := baseEvent()
	desired.Recurrence = []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}
	remote := baseEvent()
	remote.Recurrence = []string{"RRULE:FREQ=WEEKLY;BYDAY=TU"}

	if Equal(desired, remote, false) {
		t.Error("Expected differing rule content to mismatch")
	}
}

func TestDiffSequenceOnlyWhenAsked(t *testing.T) {
	desired := baseEvent()
	remote := baseEvent()
	remote.Sequence = 7

	if diffs := Diff(desired, remote, true); len(diffs) != 0 {
		t.Errorf("Expected sequence to be ignored, got %v", diffs)
	}
	diffs := Diff(desired, remote, false)
	if len(diffs) != 1 || diffs[0].Field != "sequence" {
		t.Errorf("Expected a sequence diff, got %v", diffs)
	}
}

package sync

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
)

// FieldDiff names one field whose desired and remote values disagree.
type FieldDiff struct {
	Field   string
	Desired string
	Remote  string
}

// Equal reports whether the remote event already carries the desired
// state. Sequence participates only when ignoreSequence is false.
func Equal(desired, remote *calendar.Event, ignoreSequence bool) bool {
	return len(Diff(desired, remote, ignoreSequence)) == 0
}

// Diff compares the two events field by field and reports every mismatch.
// Absent and empty text fields are the same thing, and the store defaults
// (status confirmed, transparency opaque) match an absent value, so a
// fresh read never looks different from what was written.
func Diff(desired, remote *calendar.Event, ignoreSequence bool) []FieldDiff {
	var diffs []FieldDiff

	if desired.Summary != remote.Summary {
		diffs = append(diffs, FieldDiff{"summary", desired.Summary, remote.Summary})
	}
	if desired.Description != remote.Description {
		diffs = append(diffs, FieldDiff{"description", desired.Description, remote.Description})
	}
	if desired.Location != remote.Location {
		diffs = append(diffs, FieldDiff{"location", desired.Location, remote.Location})
	}

	if !timeEqual(desired.Start, remote.Start) {
		diffs = append(diffs, FieldDiff{"start", timeValue(desired.Start), timeValue(remote.Start)})
	}
	if !timeEqual(desired.End, remote.End) {
		diffs = append(diffs, FieldDiff{"end", timeValue(desired.End), timeValue(remote.End)})
	}

	if !recurrenceEqual(desired.Recurrence, remote.Recurrence) {
		diffs = append(diffs, FieldDiff{"recurrence", strings.Join(desired.Recurrence, " "), strings.Join(remote.Recurrence, " ")})
	}

	if !enumEqual(desired.Transparency, remote.Transparency, "opaque") {
		diffs = append(diffs, FieldDiff{"transparency", desired.Transparency, remote.Transparency})
	}
	if !enumEqual(desired.Status, remote.Status, "confirmed") {
		diffs = append(diffs, FieldDiff{"status", desired.Status, remote.Status})
	}

	if !ignoreSequence && desired.Sequence != remote.Sequence {
		diffs = append(diffs, FieldDiff{"sequence", strconv.FormatInt(desired.Sequence, 10), strconv.FormatInt(remote.Sequence, 10)})
	}

	return diffs
}

// enumEqual treats absence and the store default as the same value.
func enumEqual(a, b, def string) bool {
	if a == "" {
		a = def
	}
	if b == "" {
		b = def
	}
	return a == b
}

// timeEqual compares the effective value of two event times. Instants in
// different offsets that name the same moment are equal; all-day dates
// compare literally; a date never equals an instant.
func timeEqual(a, b *calendar.EventDateTime) bool {
	av, aAllDay := splitTime(a)
	bv, bAllDay := splitTime(b)
	if aAllDay != bAllDay {
		return false
	}
	if aAllDay {
		return av == bv
	}

	at, aErr := time.Parse(time.RFC3339, av)
	bt, bErr := time.Parse(time.RFC3339, bv)
	if aErr != nil || bErr != nil {
		return av == bv
	}
	return at.Equal(bt)
}

func timeValue(t *calendar.EventDateTime) string {
	v, _ := splitTime(t)
	return v
}

func splitTime(t *calendar.EventDateTime) (value string, allDay bool) {
	if t == nil {
		return "", false
	}
	if t.Date != "" {
		return t.Date, true
	}
	return t.DateTime, false
}

// recurrenceEqual compares rule sets ignoring order. Within each rule the
// semicolon-separated parts, and the comma-separated values inside a part,
// are order-independent, so FREQ=WEEKLY;BYDAY=MO,TU matches
// BYDAY=TU,MO;FREQ=WEEKLY. Differing rule counts never match.
func recurrenceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	seen := make(map[string]int, len(a))
	for _, rule := range a {
		seen[canonicalRule(rule)]++
	}
	for _, rule := range b {
		key := canonicalRule(rule)
		if seen[key] == 0 {
			return false
		}
		seen[key]--
	}
	return true
}

// canonicalRule renders a recurrence rule with its parts and part values
// sorted so that reordered but equivalent rules collapse to one form.
func canonicalRule(rule string) string {
	body, _ := strings.CutPrefix(rule, "RRULE:")
	parts := strings.Split(body, ";")
	for i, part := range parts {
		key, values, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		list := strings.Split(values, ",")
		sort.Strings(list)
		parts[i] = key + "=" + strings.Join(list, ",")
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

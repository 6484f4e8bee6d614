package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"google.golang.org/api/calendar/v3"

	"github.com/beekhof/ics-sync/internal/feed"
)

// ErrUnsupportedItem marks a feed item that cannot be expressed as a
// calendar event. Such items are recorded without any store access.
var ErrUnsupportedItem = errors.New("item cannot be mapped to a calendar event")

// Normalize maps one feed item onto the desired event shape. Missing
// optional fields take the store defaults: status confirmed, transparency
// opaque. The recurrence rule is carried verbatim as a single-element rule
// set. Normalize never touches the store.
func Normalize(item feed.Item) (*calendar.Event, error) {
	if item.Start.IsZero() || item.End.IsZero() {
		return nil, fmt.Errorf("%w: %s has no time window", ErrUnsupportedItem, item.UID)
	}

	ev := &calendar.Event{
		ICalUID:      item.UID,
		Summary:      item.Summary,
		Description:  item.Description,
		Location:     item.Location,
		Status:       item.Status,
		Transparency: item.Transparency,
		Start:        stampToDateTime(item.Start),
		End:          stampToDateTime(item.End),
		Sequence:     item.Sequence,
	}
	if ev.Status == "" {
		ev.Status = "confirmed"
	}
	if ev.Transparency == "" {
		ev.Transparency = "opaque"
	}

	if item.RRule != "" {
		if _, err := rrule.StrToRRule(item.RRule); err != nil {
			return nil, fmt.Errorf("%w: %s has unusable recurrence rule %q: %v", ErrUnsupportedItem, item.UID, item.RRule, err)
		}
		ev.Recurrence = []string{"RRULE:" + item.RRule}
	}

	return ev, nil
}

func stampToDateTime(s feed.Stamp) *calendar.EventDateTime {
	if s.AllDay {
		return &calendar.EventDateTime{Date: s.Time.Format("2006-01-02")}
	}
	return &calendar.EventDateTime{DateTime: s.Time.UTC().Format(time.RFC3339)}
}

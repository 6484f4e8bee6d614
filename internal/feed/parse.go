package feed

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// Parse decodes every calendar in the stream and lifts its VEVENT
// components into items. Non-event components (to-dos, free/busy blocks,
// timezone definitions) are dropped. Events without a UID are dropped with
// a warning since they cannot be matched across runs.
func Parse(r io.Reader, logger *log.Logger) ([]Item, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	dec := ical.NewDecoder(r)
	var items []Item
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decoding calendar: %v", ErrSourceUnavailable, err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				logger.Printf("Skipping non-event component %s", comp.Name)
				continue
			}

			item, err := parseEvent(comp, logger)
			if err != nil {
				logger.Printf("Warning: skipping event: %v", err)
				continue
			}
			items = append(items, item)
		}
	}

	return items, nil
}

// parseEvent lifts a single VEVENT into an Item. Only a missing UID is
// fatal for the event; malformed optional properties degrade to their
// absent form so the engine can classify the item instead of losing it.
func parseEvent(comp *ical.Component, logger *log.Logger) (Item, error) {
	var item Item

	uid := comp.Props.Get(ical.PropUID)
	if uid == nil || uid.Value == "" {
		return item, fmt.Errorf("event has no UID")
	}
	item.UID = uid.Value

	if seq := comp.Props.Get("SEQUENCE"); seq != nil {
		n, err := strconv.ParseInt(strings.TrimSpace(seq.Value), 10, 64)
		if err != nil {
			logger.Printf("Warning: event %s has unusable SEQUENCE %q, treating as untracked", item.UID, seq.Value)
		} else {
			item.Sequence = n
			item.HasSequence = true
		}
	}

	if p := comp.Props.Get(ical.PropSummary); p != nil {
		item.Summary = strings.TrimSpace(p.Value)
	}
	if p := comp.Props.Get(ical.PropDescription); p != nil {
		item.Description = p.Value
	}
	if p := comp.Props.Get(ical.PropLocation); p != nil {
		item.Location = p.Value
	}
	if p := comp.Props.Get(ical.PropStatus); p != nil {
		item.Status = strings.ToLower(p.Value)
	}
	if p := comp.Props.Get("TRANSP"); p != nil {
		item.Transparency = strings.ToLower(p.Value)
	}
	if p := comp.Props.Get(ical.PropRecurrenceRule); p != nil {
		item.RRule = p.Value
	}

	var err error
	if item.Start, err = parseStamp(comp.Props.Get(ical.PropDateTimeStart)); err != nil {
		logger.Printf("Warning: event %s has unusable DTSTART: %v", item.UID, err)
	}
	if item.End, err = parseStamp(comp.Props.Get(ical.PropDateTimeEnd)); err != nil {
		logger.Printf("Warning: event %s has unusable DTEND: %v", item.UID, err)
	}

	if rid := comp.Props.Get("RECURRENCE-ID"); rid != nil {
		// Pass nil for location to default to UTC.
		start, err := rid.DateTime(nil)
		if err != nil {
			return item, fmt.Errorf("event %s has unusable RECURRENCE-ID: %v", item.UID, err)
		}
		item.RecurrenceID = &InstanceRef{
			Start: start,
			End:   start.Add(item.duration()),
		}
	}

	return item, nil
}

func parseStamp(prop *ical.Prop) (Stamp, error) {
	if prop == nil {
		return Stamp{}, nil
	}
	t, err := prop.DateTime(nil)
	if err != nil {
		return Stamp{}, err
	}
	return Stamp{Time: t, AllDay: prop.Params.Get("VALUE") == "DATE"}, nil
}

// duration is the item's own window length, used to bound the occurrence a
// RECURRENCE-ID override replaces. All-day items without an explicit end
// span one day.
func (it Item) duration() time.Duration {
	if it.Start.IsZero() {
		return 0
	}
	if !it.End.IsZero() && it.End.Time.After(it.Start.Time) {
		return it.End.Time.Sub(it.Start.Time)
	}
	if it.Start.AllDay {
		return 24 * time.Hour
	}
	return 0
}

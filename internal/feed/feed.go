// Package feed reads ICS calendar documents from a local file or URL and
// turns them into the ordered item sequence consumed by the sync engine.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// ErrSourceUnavailable marks a feed that could not be opened, fetched, or
// decoded. It aborts the whole run before any calendar access happens.
var ErrSourceUnavailable = errors.New("feed source unavailable")

// Stamp is one end of an event's time window: a precise instant, or a
// calendar date for all-day events.
type Stamp struct {
	Time   time.Time
	AllDay bool
}

// IsZero reports whether the stamp was never set.
func (s Stamp) IsZero() bool {
	return s.Time.IsZero()
}

// InstanceRef marks an item as an override of a single occurrence of a
// recurring series. Start and End bound the occurrence being replaced,
// derived from RECURRENCE-ID and the item's own duration.
type InstanceRef struct {
	Start time.Time
	End   time.Time
}

// Item is one event lifted out of an ICS document.
type Item struct {
	UID          string
	Sequence     int64
	HasSequence  bool
	Summary      string
	Description  string
	Location     string
	Status       string
	Transparency string
	Start        Stamp
	End          Stamp
	RRule        string
	RecurrenceID *InstanceRef
}

// IsInstance reports whether the item overrides a single occurrence of a
// recurring series rather than defining the series itself.
func (it Item) IsInstance() bool {
	return it.RecurrenceID != nil
}

// Options control how a feed source is fetched and parsed.
type Options struct {
	// Proxy is an optional forward proxy URL for http(s) sources.
	Proxy string

	// Username and Password are optional basic credentials sent with
	// http(s) fetches.
	Username string
	Password string

	// Timeout bounds the fetch. Zero means 30 seconds.
	Timeout time.Duration

	// Logger receives skip and parse warnings. Nil discards them.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard, "", 0)
}

// Read fetches the source and parses it into items, ordered so that every
// series definition precedes every instance override. The ordering is what
// lets the engine reconcile a series before any of its occurrences.
func Read(ctx context.Context, src string, opts Options) ([]Item, error) {
	body, err := Fetch(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSourceUnavailable, src, err)
	}

	// A login page instead of calendar data is the most common failure
	// mode for authenticated feeds.
	head := strings.ToUpper(strings.TrimSpace(string(data[:min(len(data), 64)])))
	if strings.HasPrefix(head, "<!DOCTYPE") || strings.HasPrefix(head, "<HTML") {
		return nil, fmt.Errorf("%w: %s returned HTML instead of calendar data - check if the URL requires authentication", ErrSourceUnavailable, src)
	}

	items, err := Parse(bytes.NewReader(data), opts.Logger)
	if err != nil {
		return nil, err
	}

	return orderItems(items), nil
}

// orderItems places series definitions ahead of instance overrides,
// preserving document order within each class.
func orderItems(items []Item) []Item {
	ordered := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.IsInstance() {
			ordered = append(ordered, it)
		}
	}
	for _, it := range items {
		if it.IsInstance() {
			ordered = append(ordered, it)
		}
	}
	return ordered
}

// Package store provides access to the Google Calendar event set the sync
// engine reconciles a feed against.
package store

import (
	"context"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Query bounds wide enough to behave as an unbounded window, so a series
// defined years out is still found by identity.
var (
	MinTime = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Store is the event store for one target calendar.
type Store interface {
	// FindEventsByUID returns the events carrying the given iCalendar UID
	// without expanding recurring series into instances.
	FindEventsByUID(ctx context.Context, uid string) ([]*calendar.Event, error)

	// GetInstances returns the materialized instances of a recurring event
	// that fall inside the window.
	GetInstances(ctx context.Context, eventID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)

	// GetEvents returns the events in the window without expanding
	// recurring series.
	GetEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error)

	// ImportEvent creates an event, preserving its iCalendar UID and
	// sequence number.
	ImportEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error)

	// UpdateEvent overwrites the event with the given ID.
	UpdateEvent(ctx context.Context, eventID string, event *calendar.Event) (*calendar.Event, error)

	// DeleteEvent removes the event with the given ID. Deleting an event
	// that is already gone is not an error.
	DeleteEvent(ctx context.Context, eventID string) error
}

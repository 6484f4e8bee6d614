package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Service wraps an authenticated Google Calendar API connection.
type Service struct {
	api    *calendar.Service
	logger *log.Logger
}

// NewService creates a Google Calendar service. Pass at least
// option.WithHTTPClient with an authenticated client.
func NewService(ctx context.Context, logger *log.Logger, opts ...option.ClientOption) (*Service, error) {
	api, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{api: api, logger: logger}, nil
}

// ResolveCalendar resolves a calendar ID or display name to a calendar ID.
// "primary" and email-form IDs pass through; anything else is looked up by
// display name in the user's calendar list.
func (s *Service) ResolveCalendar(nameOrID string) (string, error) {
	if nameOrID == "primary" || strings.Contains(nameOrID, "@") {
		return nameOrID, nil
	}

	list, err := s.api.CalendarList.List().Do()
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}
	for _, cal := range list.Items {
		if cal.Summary == nameOrID {
			return cal.Id, nil
		}
	}

	return "", fmt.Errorf("no calendar named %q", nameOrID)
}

// FindOrCreateCalendar finds a calendar by display name or creates it with
// the given timezone. Returns the calendar ID.
func (s *Service) FindOrCreateCalendar(name, timezone string) (string, error) {
	list, err := s.api.CalendarList.List().Do()
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}
	for _, cal := range list.Items {
		if cal.Summary == name {
			return cal.Id, nil
		}
	}

	created, err := s.api.Calendars.Insert(&calendar.Calendar{
		Summary:  name,
		TimeZone: timezone,
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar %q: %w", name, err)
	}
	s.logger.Printf("Created calendar %q (%s)", name, created.Id)

	return created.Id, nil
}

// Calendar binds the service to one target calendar.
func (s *Service) Calendar(calendarID string) *Client {
	return &Client{api: s.api, calendarID: calendarID, logger: s.logger}
}

// Client implements Store against one Google calendar.
type Client struct {
	api        *calendar.Service
	calendarID string
	logger     *log.Logger
}

// FindEventsByUID returns the series masters and plain events carrying the
// given iCalendar UID. Materialized exceptions share the series UID and are
// skipped so the caller sees the series exactly once.
func (c *Client) FindEventsByUID(ctx context.Context, uid string) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		call := c.api.Events.List(c.calendarID).
			ICalUID(uid).
			TimeMin(MinTime.Format(time.RFC3339)).
			TimeMax(MaxTime.Format(time.RFC3339)).
			SingleEvents(false).
			Context(ctx)
		if pageToken != "" {
			call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events for UID %s: %w", uid, err)
		}
		for _, ev := range res.Items {
			if ev.RecurringEventId != "" {
				continue
			}
			events = append(events, ev)
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}

// GetInstances returns the materialized instances of a recurring event
// inside the window.
func (c *Client) GetInstances(ctx context.Context, eventID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		call := c.api.Events.Instances(c.calendarID, eventID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			Context(ctx)
		if pageToken != "" {
			call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list instances of %s: %w", eventID, err)
		}
		events = append(events, res.Items...)
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}

// GetEvents returns the events in the window without expanding recurring
// series.
func (c *Client) GetEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		call := c.api.Events.List(c.calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(false).
			Context(ctx)
		if pageToken != "" {
			call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		events = append(events, res.Items...)
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}

// ImportEvent creates the event through the import endpoint, which keeps
// the iCalendar UID and sequence number instead of assigning fresh ones.
func (c *Client) ImportEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.api.Events.Import(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to import event %s: %w", event.ICalUID, err)
	}
	return created, nil
}

// UpdateEvent overwrites an existing event.
// Sets sendUpdates="none" to prevent notifications.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, event *calendar.Event) (*calendar.Event, error) {
	updated, err := c.api.Events.Update(c.calendarID, eventID, event).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return updated, nil
}

// DeleteEvent removes an event. A gone or not-found response means the
// event is already absent, which is what deletion wants.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.api.Events.Delete(c.calendarID, eventID).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil && !isGone(err) {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

// Clear deletes every event in the calendar and returns how many went.
func (c *Client) Clear(ctx context.Context) (int, error) {
	events, err := c.GetEvents(ctx, MinTime, MaxTime)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, ev := range events {
		if err := c.DeleteEvent(ctx, ev.Id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusConflict, http.StatusGone:
			return true
		}
	}
	return false
}

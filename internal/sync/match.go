package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/beekhof/ics-sync/internal/feed"
	"github.com/beekhof/ics-sync/internal/store"
)

// ErrAmbiguousMatch marks a lookup that found zero or several events where
// exactly one was required. The engine never guesses between candidates.
var ErrAmbiguousMatch = errors.New("ambiguous match")

// matchSeries resolves the remote event for an identity. A nil event with
// a nil error means nothing matched and the item is new.
func matchSeries(ctx context.Context, st store.Store, uid string) (*calendar.Event, error) {
	events, err := st.FindEventsByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	switch len(events) {
	case 0:
		return nil, nil
	case 1:
		return events[0], nil
	default:
		return nil, fmt.Errorf("%w: %d events carry UID %s", ErrAmbiguousMatch, len(events), uid)
	}
}

// matchInstance resolves the materialized occurrence an override replaces:
// the series by identity first, then the single occurrence inside the
// override's window.
func matchInstance(ctx context.Context, st store.Store, uid string, ref *feed.InstanceRef) (*calendar.Event, error) {
	parent, err := matchSeries(ctx, st, uid)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("no series with UID %s exists for the override", uid)
	}

	instances, err := st.GetInstances(ctx, parent.Id, ref.Start, ref.End)
	if err != nil {
		return nil, err
	}
	if len(instances) != 1 {
		return nil, fmt.Errorf("%w: expected one occurrence of %s in [%s, %s], found %d",
			ErrAmbiguousMatch, uid,
			ref.Start.Format(time.RFC3339), ref.End.Format(time.RFC3339), len(instances))
	}
	return instances[0], nil
}

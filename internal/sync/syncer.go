// Package sync reconciles a parsed ICS feed against one Google calendar:
// it decides, per feed item, whether the calendar needs a create, an
// update, or nothing, and can afterwards sweep out events the feed no
// longer carries.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"

	"github.com/beekhof/ics-sync/internal/feed"
	"github.com/beekhof/ics-sync/internal/store"
)

// ErrVerificationMismatch marks a write that went through but left the
// store disagreeing with the intended state even after one corrective
// retry.
var ErrVerificationMismatch = errors.New("store state does not match intent after write")

// Config holds the knobs for one reconciliation run.
type Config struct {
	// ClearFirst deletes every event in the calendar before importing.
	ClearFirst bool

	// DeleteFringe sweeps out events present in the calendar but absent
	// from the feed after the import pass.
	DeleteFringe bool

	// IgnoreSequence disables the staleness gate: fields are compared and
	// written even when the store's copy carries a newer sequence number.
	IgnoreSequence bool

	// DryRun logs every intended write without touching the store. The
	// run's ledger is still built so the outcome report stays useful.
	DryRun bool

	// IncludePast widens the fringe sweep from "now" back to the epoch.
	IncludePast bool

	// Debug logs the per-field differences behind every write decision.
	Debug bool

	// Logger receives run progress. Nil defaults to stderr.
	Logger *log.Logger
}

// Syncer drives the reconciliation of feed items into one calendar.
type Syncer struct {
	store  store.Store
	config Config
	logger *log.Logger
}

// NewSyncer creates a Syncer for the given calendar store.
func NewSyncer(st store.Store, cfg Config) *Syncer {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Syncer{store: st, config: cfg, logger: logger}
}

// Run reconciles the items in order and returns the run's ledger. Items
// settle one at a time: a series is fully written and verified before any
// of its overrides is looked at, and one bad item never aborts the rest.
func (s *Syncer) Run(ctx context.Context, items []feed.Item) (*Ledger, error) {
	ledger := NewLedger()

	if s.config.ClearFirst {
		if err := s.clear(ctx); err != nil {
			return ledger, err
		}
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return ledger, err
		}
		s.reconcileItem(ctx, ledger, item)
	}

	if s.config.DeleteFringe {
		_, err := s.Sweep(ctx, ledger)
		switch {
		case errors.Is(err, ErrEmptyLedger):
			s.logger.Printf("Warning: nothing was imported, skipping the fringe sweep")
		case err != nil:
			return ledger, err
		}
	}

	return ledger, nil
}

func (s *Syncer) reconcileItem(ctx context.Context, ledger *Ledger, item feed.Item) {
	if ledger.Seen(item.UID) {
		s.logger.Printf("Duplicate UID %s in feed, keeping the first occurrence", item.UID)
		ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeDuplicate})
		return
	}

	desired, err := Normalize(item)
	if err != nil {
		s.logger.Printf("Warning: %v", err)
		ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeUnsupported, Err: err})
		return
	}

	s.logger.Printf("Processing %q (UID: %s)", item.Summary, item.UID)

	var remote *calendar.Event
	if item.IsInstance() {
		remote, err = matchInstance(ctx, s.store, item.UID, item.RecurrenceID)
		if err != nil {
			s.fail(ledger, item.UID, err)
			return
		}
	} else {
		remote, err = matchSeries(ctx, s.store, item.UID)
		if err != nil {
			s.fail(ledger, item.UID, err)
			return
		}
	}

	if remote == nil {
		s.create(ctx, ledger, item, desired)
		return
	}
	s.update(ctx, ledger, item, desired, remote)
}

func (s *Syncer) create(ctx context.Context, ledger *Ledger, item feed.Item, desired *calendar.Event) {
	if s.config.DryRun {
		s.logger.Printf("[dry-run] Would create %q (UID: %s)", desired.Summary, item.UID)
		ev := *desired
		ev.Id = "dry-run-" + uuid.NewString()
		ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeCreated, Event: &ev, Synthetic: true})
		return
	}

	created, err := s.store.ImportEvent(ctx, desired)
	if err != nil {
		s.fail(ledger, item.UID, err)
		return
	}

	if diffs := Diff(desired, created, true); len(diffs) > 0 {
		// The store sometimes materializes imports in a cancelled status
		// for reasons of its own; retry once with a plain update.
		s.logDiffs(diffs)
		s.logger.Printf("Event %s was not created as intended, correcting it", item.UID)
		created, err = s.overwrite(ctx, created, desired)
		if err != nil {
			s.fail(ledger, item.UID, err)
			return
		}
		if diffs := Diff(desired, created, true); len(diffs) > 0 {
			s.logDiffs(diffs)
			s.fail(ledger, item.UID, fmt.Errorf("%w: event %s", ErrVerificationMismatch, item.UID))
			return
		}
	}

	s.logger.Printf("Created %q (UID: %s)", created.Summary, item.UID)
	ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeCreated, Event: created})
}

func (s *Syncer) update(ctx context.Context, ledger *Ledger, item feed.Item, desired, remote *calendar.Event) {
	// Staleness gate: a store copy with a newer sequence means a delayed
	// or out-of-order feed must not win.
	if item.HasSequence && !s.config.IgnoreSequence && remote.Sequence > item.Sequence {
		s.logger.Printf("Calendar sequence %d is newer than feed sequence %d for %s, leaving it alone",
			remote.Sequence, item.Sequence, item.UID)
		ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeUntouched, Event: remote})
		return
	}

	diffs := Diff(desired, remote, true)
	if len(diffs) == 0 {
		ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeUntouched, Event: remote})
		return
	}
	s.logDiffs(diffs)

	if s.config.DryRun {
		s.logger.Printf("[dry-run] Would update %q (UID: %s)", desired.Summary, item.UID)
		ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeUpdated, Event: remote, Synthetic: true})
		return
	}

	updated, err := s.overwrite(ctx, remote, desired)
	if err != nil {
		s.fail(ledger, item.UID, err)
		return
	}
	if diffs := Diff(desired, updated, true); len(diffs) > 0 {
		s.logDiffs(diffs)
		s.fail(ledger, item.UID, fmt.Errorf("%w: event %s", ErrVerificationMismatch, item.UID))
		return
	}

	s.logger.Printf("Updated %q (UID: %s)", updated.Summary, item.UID)
	ledger.Record(&Entry{UID: item.UID, Outcome: OutcomeUpdated, Event: updated})
}

// overwrite pushes the desired state onto an existing handle. The
// instance linkage fields ride along untouched, and the store's own
// sequence counter is never lowered since it rejects that.
func (s *Syncer) overwrite(ctx context.Context, remote, desired *calendar.Event) (*calendar.Event, error) {
	ev := *desired
	ev.Id = remote.Id
	ev.RecurringEventId = remote.RecurringEventId
	ev.OriginalStartTime = remote.OriginalStartTime
	if remote.Sequence > ev.Sequence {
		ev.Sequence = remote.Sequence
	}
	return s.store.UpdateEvent(ctx, remote.Id, &ev)
}

// clear empties the calendar before the import pass.
func (s *Syncer) clear(ctx context.Context) error {
	events, err := s.store.GetEvents(ctx, store.MinTime, store.MaxTime)
	if err != nil {
		return fmt.Errorf("failed to clear calendar: %w", err)
	}

	deleted := 0
	for _, ev := range events {
		if s.config.DryRun {
			s.logger.Printf("[dry-run] Would delete %q (%s)", ev.Summary, ev.Id)
			continue
		}
		if err := s.store.DeleteEvent(ctx, ev.Id); err != nil {
			return fmt.Errorf("failed to clear calendar: %w", err)
		}
		deleted++
	}
	s.logger.Printf("Cleared %d events", deleted)
	return nil
}

func (s *Syncer) fail(ledger *Ledger, uid string, err error) {
	s.logger.Printf("Warning: %s failed: %v", uid, err)
	ledger.Record(&Entry{UID: uid, Outcome: OutcomeFailed, Err: err})
}

func (s *Syncer) logDiffs(diffs []FieldDiff) {
	if !s.config.Debug {
		return
	}
	for _, d := range diffs {
		s.logger.Printf("DEBUG: %s mismatch: %q != %q", d.Field, d.Desired, d.Remote)
	}
}

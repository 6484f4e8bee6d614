package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beekhof/ics-sync/internal/store"
)

// ErrEmptyLedger refuses a sweep whose ledger holds no live events. An
// unreachable or empty feed would otherwise read as "delete everything".
var ErrEmptyLedger = errors.New("no events were synced, refusing to sweep")

// Sweep deletes calendar events whose UID the run's ledger does not hold
// as live. It returns the number of events removed, or counted in dry-run
// mode.
func (s *Syncer) Sweep(ctx context.Context, ledger *Ledger) (int, error) {
	if !ledger.Settled() && !s.config.DryRun {
		return 0, ErrEmptyLedger
	}

	lower := time.Now().UTC()
	if s.config.IncludePast {
		lower = store.MinTime
	}

	events, err := s.store.GetEvents(ctx, lower, store.MaxTime)
	if err != nil {
		return 0, fmt.Errorf("failed to list calendar for sweep: %w", err)
	}

	removed := 0
	for _, ev := range events {
		if ledger.Live(ev.ICalUID) {
			continue
		}
		if s.config.DryRun {
			s.logger.Printf("[dry-run] Would delete %q (UID: %s)", ev.Summary, ev.ICalUID)
			removed++
			continue
		}
		if err := s.store.DeleteEvent(ctx, ev.Id); err != nil {
			s.logger.Printf("Warning: failed to delete %q (UID: %s): %v", ev.Summary, ev.ICalUID, err)
			continue
		}
		s.logger.Printf("Deleted %q (UID: %s)", ev.Summary, ev.ICalUID)
		removed++
	}
	return removed, nil
}

package sync

import (
	"google.golang.org/api/calendar/v3"
)

// Outcome classifies what happened to one identity during a run.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeUpdated     Outcome = "updated"
	OutcomeUntouched   Outcome = "untouched"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeFailed      Outcome = "failed"
)

// Entry is the recorded result for one feed item.
type Entry struct {
	UID     string
	Outcome Outcome

	// Event is the resulting remote event, when one exists.
	Event *calendar.Event

	// Synthetic marks a dry-run entry that does not reflect a store write.
	Synthetic bool

	// Err is set for failed entries.
	Err error
}

// Ledger accumulates the per-item results of one reconciliation run. Each
// identity settles on the outcome of its first occurrence; repeats are
// recorded as duplicates without disturbing it. The ledger lives for one
// run only.
type Ledger struct {
	all     []*Entry
	settled map[string]*Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{settled: make(map[string]*Entry)}
}

// Seen reports whether the identity already settled in this run.
func (l *Ledger) Seen(uid string) bool {
	_, ok := l.settled[uid]
	return ok
}

// Record adds an entry. The first entry per identity settles it.
func (l *Ledger) Record(e *Entry) {
	l.all = append(l.all, e)
	if _, ok := l.settled[e.UID]; !ok {
		l.settled[e.UID] = e
	}
}

// Entries returns every recorded entry in run order, duplicates included.
func (l *Ledger) Entries() []*Entry {
	return l.all
}

// Counts tallies entries per outcome.
func (l *Ledger) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, e := range l.all {
		counts[e.Outcome]++
	}
	return counts
}

// Failed returns the entries that failed, in run order.
func (l *Ledger) Failed() []*Entry {
	var failed []*Entry
	for _, e := range l.all {
		if e.Outcome == OutcomeFailed {
			failed = append(failed, e)
		}
	}
	return failed
}

// Live reports whether the identity finished the run present in the
// store: created, updated, or untouched.
func (l *Ledger) Live(uid string) bool {
	e, ok := l.settled[uid]
	if !ok {
		return false
	}
	switch e.Outcome {
	case OutcomeCreated, OutcomeUpdated, OutcomeUntouched:
		return true
	}
	return false
}

// Settled reports whether at least one identity finished with a non-failed
// outcome, meaning the feed was actually read and processed.
func (l *Ledger) Settled() bool {
	for _, e := range l.settled {
		if e.Outcome != OutcomeFailed {
			return true
		}
	}
	return false
}

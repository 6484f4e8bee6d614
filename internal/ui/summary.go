// Package ui renders the end-of-run report for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/beekhof/ics-sync/internal/sync"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	updatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func countLine(style lipgloss.Style, label string, n int) string {
	return fmt.Sprintf("  %s %d", style.Render(label+":"), n)
}

// Summary renders the per-outcome counts of a run, with the failed
// identities listed underneath.
func Summary(calendar string, ledger *sync.Ledger) string {
	counts := ledger.Counts()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Sync results for %s", calendar)))
	b.WriteString("\n")
	b.WriteString(countLine(createdStyle, "created", counts[sync.OutcomeCreated]))
	b.WriteString("\n")
	b.WriteString(countLine(updatedStyle, "updated", counts[sync.OutcomeUpdated]))
	b.WriteString("\n")
	b.WriteString(countLine(mutedStyle, "untouched", counts[sync.OutcomeUntouched]))
	b.WriteString("\n")
	if n := counts[sync.OutcomeDuplicate]; n > 0 {
		b.WriteString(countLine(mutedStyle, "duplicate", n))
		b.WriteString("\n")
	}
	if n := counts[sync.OutcomeUnsupported]; n > 0 {
		b.WriteString(countLine(mutedStyle, "unsupported", n))
		b.WriteString("\n")
	}
	b.WriteString(countLine(failedStyle, "failed", counts[sync.OutcomeFailed]))

	for _, e := range ledger.Failed() {
		b.WriteString("\n")
		b.WriteString(failedStyle.Render("    " + e.UID))
		if e.Err != nil {
			b.WriteString(mutedStyle.Render(" " + e.Err.Error()))
		}
	}

	return b.String()
}

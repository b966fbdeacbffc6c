// # cmd/bindgen/summary.go
package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bindgen/internal/app"
	"bindgen/internal/emit"
	"bindgen/internal/history"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

func renderSummary(s app.Summary, top []history.KindCount) string {
	var b strings.Builder
	rule := strings.Repeat("-", 40)

	b.WriteString(rule + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("Generated %d/%d binding files", s.Generated(), len(s.Files))))
	b.WriteString(" " + mutedStyle.Render(fmt.Sprintf("in %v", s.Duration.Round(time.Millisecond))) + "\n")

	failed := s.Failed()
	if len(failed) > 0 {
		b.WriteString(failureStyle.Render(fmt.Sprintf("FAILED %d:", len(failed))) + "\n")
		for _, f := range failed {
			b.WriteString(fmt.Sprintf("   %s: %v\n", f.Source, f.Err))
		}
	} else {
		b.WriteString(successStyle.Render("No failures.") + "\n")
	}

	byReason := s.SkippedByReason()
	if len(byReason) > 0 {
		reasons := make([]string, 0, len(byReason))
		for reason := range byReason {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		parts := make([]string, 0, len(reasons))
		for _, r := range reasons {
			parts = append(parts, fmt.Sprintf("%s=%d", r, byReason[emit.Reason(r)]))
		}
		b.WriteString(skippedStyle.Render("Skipped nodes:") + " " + strings.Join(parts, " ") + "\n")
	}

	if len(top) > 0 {
		b.WriteString(mutedStyle.Render("Most skipped kinds (latest runs):") + "\n")
		for _, kc := range top {
			b.WriteString(fmt.Sprintf("   %-28s %-18s %d\n", kc.Kind, kc.Reason, kc.Count))
		}
	}
	b.WriteString(rule + "\n")
	return b.String()
}

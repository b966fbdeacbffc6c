// # cmd/bindgen/ui.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bindgen/internal/app"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	summary    app.Summary
	lastUpdate time.Time
}

type updateMsg struct {
	summary app.Summary
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.summary = msg.summary
		m.lastUpdate = time.Now()
		m.list.SetItems(summaryItems(msg.summary))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// summaryItems lists failures first, then files that skipped nodes.
func summaryItems(s app.Summary) []list.Item {
	items := []list.Item{}
	for _, f := range s.Failed() {
		items = append(items, item{
			title: "Failed: " + f.Source,
			desc:  f.Err.Error(),
		})
	}
	for _, f := range s.Files {
		if f.Err != nil || len(f.Skipped) == 0 {
			continue
		}
		items = append(items, item{
			title: f.Source,
			desc:  fmt.Sprintf("%d fragments, %d skipped -> %s", f.Fragments, len(f.Skipped), f.Output),
		})
	}
	return items
}

func (m model) View() string {
	status := mutedStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d generated",
		m.lastUpdate.Format("15:04:05"), len(m.summary.Files), m.summary.Generated()))

	var state string
	if failed := len(m.summary.Failed()); failed > 0 {
		state = failureStyle.Render(fmt.Sprintf("%d Failed", failed))
	} else {
		state = successStyle.Render("All bindings generated")
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Binding Generator"), status, state)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Generation Results"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

// runUI watches roots and renders every regeneration until the user quits
// or ctx ends.
func runUI(ctx context.Context, a *app.App, roots []string, initial app.Summary) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	a.SetUpdateHandler(func(s app.Summary) {
		p.Send(updateMsg{summary: s})
	})

	go func() {
		p.Send(updateMsg{summary: initial})
		if err := a.Watch(ctx, roots); err != nil {
			slog.Error("watch failed", "error", err)
		}
		p.Quit()
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

package display

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/idleplanner/internal/planner"
)

// progressMsg carries a solver progress snapshot into the TUI.
type progressMsg planner.Progress

// doneMsg ends the TUI when the solve finishes.
type doneMsg struct{}

// ProgressModel is a Bubble Tea model showing live solver counters
// while a long solve runs.
type ProgressModel struct {
	goal    string
	spinner spinner.Model
	latest  planner.Progress
	updates <-chan planner.Progress
	done    <-chan struct{}
	quit    bool
}

// NewProgressModel builds the live progress model. Feed it snapshots on
// updates and close done when the solve returns.
func NewProgressModel(goal string, updates <-chan planner.Progress, done <-chan struct{}) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	return ProgressModel{goal: goal, spinner: sp, updates: updates, done: done}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

func (m ProgressModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case p, ok := <-m.updates:
			if !ok {
				return doneMsg{}
			}
			return progressMsg(p)
		case <-m.done:
			return doneMsg{}
		}
	}
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.latest = planner.Progress(msg)
		return m, m.waitForUpdate()
	case doneMsg:
		m.quit = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	if m.quit {
		return ""
	}
	return fmt.Sprintf("%s solving %s  expanded=%d enqueued=%d queue=%d best_f=%.0f\n",
		m.spinner.View(), m.goal,
		m.latest.Expanded, m.latest.Enqueued, m.latest.QueueLen, m.latest.BestF)
}

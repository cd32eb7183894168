package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sampturned/Dimas/pkg/provisioner"
)

// Message types for pipeline events.
type (
	// eventMsg carries a pipeline progress update.
	eventMsg provisioner.ProgressEvent

	// eventsClosedMsg indicates the pipeline stopped emitting events.
	eventsClosedMsg struct{}
)

// ProgressModel renders the provisioning pipeline as a stage checklist.
type ProgressModel struct {
	events <-chan provisioner.ProgressEvent

	stages  []provisioner.Stage
	done    map[provisioner.Stage]bool
	current provisioner.Stage
	message string
	err     error

	spinner  spinner.Model
	finished bool
}

// NewProgressModel creates a progress view fed by pipeline events.
func NewProgressModel(events <-chan provisioner.ProgressEvent) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &ProgressModel{
		events:  events,
		stages:  provisioner.RunStages(),
		done:    make(map[provisioner.Stage]bool),
		spinner: s,
	}
}

// Init starts the spinner and event listener.
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// waitForEvent reads the next pipeline event.
func (m *ProgressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles messages.
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := provisioner.ProgressEvent(msg)
		switch ev.Stage {
		case provisioner.StageComplete:
			if m.current != "" {
				m.done[m.current] = true
			}
			m.finished = true
			m.message = ev.Message
			return m, tea.Quit
		case provisioner.StageError:
			m.err = ev.Err
			m.finished = true
			return m, tea.Quit
		default:
			if m.current != "" {
				m.done[m.current] = true
			}
			m.current = ev.Stage
			m.message = ev.Message
		}
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the stage checklist.
func (m *ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Provisioning"))
	b.WriteString("\n")

	for _, stage := range m.stages {
		switch {
		case m.done[stage]:
			b.WriteString(SuccessStyle.Render("  ✓ "))
			b.WriteString(stage.DisplayName())
		case stage == m.current && m.err == nil && !m.finished:
			b.WriteString("  " + m.spinner.View())
			b.WriteString(InfoStyle.Render(stage.DisplayName()))
			if m.message != "" {
				b.WriteString(DimStyle.Render("  " + m.message))
			}
		case stage == m.current && m.err != nil:
			b.WriteString(ErrorStyle.Render("  ✗ "))
			b.WriteString(stage.DisplayName())
		default:
			b.WriteString(DimStyle.Render("  · " + stage.DisplayName()))
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.finished {
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render("Service installed and enabled."))
		b.WriteString("\n")
	}

	return b.String()
}

// Err returns the pipeline error observed by the view, if any.
func (m *ProgressModel) Err() error {
	return m.err
}

// RunProgress displays the pipeline progress until completion or failure.
func RunProgress(events <-chan provisioner.ProgressEvent) error {
	model := NewProgressModel(events)
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}

	if m, ok := final.(*ProgressModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

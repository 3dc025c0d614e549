package app

import (
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type stopSpinnerMsg struct{}

type busyModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func (m busyModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m busyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopSpinnerMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m busyModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// Spinner shows a busy indicator while a notice is drafted.
// The zero value is a no-op.
type Spinner struct {
	program *tea.Program
	done    chan struct{}
}

// StartSpinner starts a spinner on out when it is a terminal.
func StartSpinner(out *os.File, label string) *Spinner {
	if !IsTerminal(out) {
		return &Spinner{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a017"))

	p := tea.NewProgram(busyModel{spinner: sp, label: label},
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	s := &Spinner{program: p, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		_, _ = p.Run()
	}()
	return s
}

// Stop removes the spinner and waits for the terminal to be released.
func (s *Spinner) Stop() {
	if s == nil || s.program == nil {
		return
	}
	s.program.Send(stopSpinnerMsg{})
	<-s.done
}

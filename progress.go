package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// progressInterval is how often the spinner redraws while art is generated
const progressInterval = 200 * time.Millisecond

// Progress blocks until done is closed, optionally showing activity
type Progress interface {
	Wait(label string, done <-chan struct{})
}

// silentProgress just blocks
type silentProgress struct{}

func (silentProgress) Wait(_ string, done <-chan struct{}) {
	<-done
}

// spinnerProgress draws a bubbles spinner until the task completes
type spinnerProgress struct {
	out io.Writer
}

func newSpinnerProgress(out io.Writer) *spinnerProgress {
	return &spinnerProgress{out: out}
}

// Wait runs a small Bubble Tea program that quits when done closes.
// If the program cannot start the wait still completes.
func (p *spinnerProgress) Wait(label string, done <-chan struct{}) {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    progressInterval,
	}
	s.Style = loadingStyle

	m := waitModel{label: label, done: done, spinner: s}
	prog := tea.NewProgram(m, tea.WithInput(nil), tea.WithOutput(p.out))
	if _, err := prog.Run(); err != nil {
		<-done
		fmt.Fprintf(p.out, "%s... done!\n", label)
	}
}

// waitModel is the Elm-style model behind spinnerProgress
type waitModel struct {
	label    string
	done     <-chan struct{}
	spinner  spinner.Model
	finished bool
}

// taskDoneMsg reports that the background generation finished
type taskDoneMsg struct{}

// Init starts the spinner and the wait command together
func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForTask(m.done))
}

// Update advances the spinner until the task reports completion
func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the spinner line
func (m waitModel) View() string {
	if m.finished {
		return fmt.Sprintf("%s... %s\n", m.label, accentStyle.Render("done!"))
	}
	return fmt.Sprintf("%s... %s", m.label, m.spinner.View())
}

func waitForTask(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return taskDoneMsg{}
	}
}

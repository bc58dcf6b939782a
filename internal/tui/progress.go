package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/trajprop/internal/viz"
)

const recentLines = 8

// StepMsg reports one finished unit of work: a sweep point or a batch run.
type StepMsg struct {
	Label  string
	Detail string
}

// DoneMsg ends the progress view. Err is the worker's error, if any.
type DoneMsg struct{ Err error }

// Progress shows how far a sequence of experiments has got. Pressing q or
// ctrl+c calls cancel, and the view keeps running until DoneMsg arrives so
// the worker can unwind.
type Progress struct {
	title    string
	total    int
	done     int
	recent   []string
	started  time.Time
	cancel   context.CancelFunc
	stopping bool
	finished bool
	err      error
}

func NewProgress(title string, total int, cancel context.CancelFunc) Progress {
	return Progress{
		title:   title,
		total:   total,
		started: time.Now(),
		cancel:  cancel,
	}
}

func (m Progress) Init() tea.Cmd { return nil }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
		return m, nil
	case StepMsg:
		m.done++
		line := msg.Label
		if msg.Detail != "" {
			line += "  " + viz.Subtle.Render(msg.Detail)
		}
		m.recent = append(m.recent, line)
		if len(m.recent) > recentLines {
			m.recent = m.recent[1:]
		}
		return m, nil
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) View() string {
	var b strings.Builder
	b.WriteString(viz.Title.Render(m.title))
	b.WriteString("\n\n")

	frac := 1.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	fmt.Fprintf(&b, "%s %s\n", viz.CoverageBar(frac, 40),
		viz.MetricValue.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
	fmt.Fprintf(&b, "%s %v\n", viz.MetricLabel.Render("elapsed"), time.Since(m.started).Round(time.Millisecond))

	if len(m.recent) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(m.recent, "\n"))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + viz.Warning.Render(m.err.Error()) + "\n")
	case m.stopping && !m.finished:
		b.WriteString("\n" + viz.Warning.Render("stopping...") + "\n")
	case !m.finished:
		b.WriteString("\n" + viz.Subtle.Render("q to stop") + "\n")
	}
	return viz.Panel.Render(b.String()) + "\n"
}

// Done reports the finished count and the worker error.
func (m Progress) Done() (int, error) { return m.done, m.err }

// Run drives a Progress view while work runs in its own goroutine. work
// receives a context cancelled by the view and a send function for
// StepMsg updates. The view is drawn on opts' output (stderr by default
// in the CLI).
func Run(ctx context.Context, title string, total int, work func(ctx context.Context, send func(StepMsg)) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgress(title, total, cancel), opts...)
	errc := make(chan error, 1)
	go func() {
		err := work(ctx, func(m StepMsg) { p.Send(m) })
		p.Send(DoneMsg{Err: err})
		errc <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return err
	}
	return <-errc
}

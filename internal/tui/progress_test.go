package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func update(t *testing.T, m Progress, msg tea.Msg) (Progress, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	p, ok := next.(Progress)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return p, cmd
}

func TestProgress_CountsSteps(t *testing.T) {
	m := NewProgress("sweep leo", 3, nil)

	for i := 0; i < 2; i++ {
		var cmd tea.Cmd
		m, cmd = update(t, m, StepMsg{Label: "step=60", Detail: "1.2e-08"})
		if cmd != nil {
			t.Fatal("a step should not end the program")
		}
	}
	if n, err := m.Done(); n != 2 || err != nil {
		t.Errorf("done %d err %v", n, err)
	}
	if view := m.View(); !strings.Contains(view, "2/3") || !strings.Contains(view, "step=60") {
		t.Errorf("view missing progress:\n%s", view)
	}
}

func TestProgress_KeepsRecentLines(t *testing.T) {
	m := NewProgress("batch", 20, nil)
	for i := 0; i < 20; i++ {
		m, _ = update(t, m, StepMsg{Label: string(rune('a' + i))})
	}
	if len(m.recent) != recentLines {
		t.Fatalf("kept %d lines", len(m.recent))
	}
	if m.recent[recentLines-1] != "t" {
		t.Errorf("last line %q", m.recent[recentLines-1])
	}
}

func TestProgress_DoneQuits(t *testing.T) {
	boom := errors.New("diverged")
	m := NewProgress("batch", 1, nil)

	m, cmd := update(t, m, DoneMsg{Err: boom})
	if cmd == nil {
		t.Fatal("DoneMsg should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if _, err := m.Done(); !errors.Is(err, boom) {
		t.Errorf("err %v", err)
	}
	if !strings.Contains(m.View(), "diverged") {
		t.Error("view should show the error")
	}
}

func TestProgress_QuitKeyCancelsOnce(t *testing.T) {
	calls := 0
	m := NewProgress("sweep", 4, func() { calls++ })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("quit key should wait for the worker, not exit")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if calls != 1 {
		t.Errorf("cancel called %d times", calls)
	}
	if !strings.Contains(m.View(), "stopping") {
		t.Error("view should say it is stopping")
	}
}

func TestRun_ReturnsWorkError(t *testing.T) {
	boom := errors.New("bad scenario")
	var out strings.Builder

	err := Run(context.Background(), "batch", 2, func(ctx context.Context, send func(StepMsg)) error {
		send(StepMsg{Label: "run 1"})
		return boom
	}, tea.WithInput(nil), tea.WithOutput(&out))

	if !errors.Is(err, boom) {
		t.Errorf("expected the worker error, got %v", err)
	}
}

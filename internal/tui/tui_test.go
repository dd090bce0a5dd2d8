package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/report"
)

func doc() report.Document {
	return report.Document{
		File: "Wallet.sol",
		Violations: []report.Entry{
			{Violation: model.Violation{DetectorID: "suicidal", Severity: model.SeverityHigh, Contract: "Wallet", Message: "kill"}, Line: 18, Column: 5, Context: "\n    function kill() public {\n        selfdestruct(payable(msg.sender));"},
			{Violation: model.Violation{DetectorID: "assembly", Severity: model.SeverityInformational, Contract: "Wallet", Message: "asm"}, Line: 30},
		},
	}
}

func press(m tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func TestBrowser_Navigation(t *testing.T) {
	m, _ := press(newBrowser(doc()), "down", "down", "down")
	if got := m.(browser).cursor; got != 1 {
		t.Errorf("cursor = %d, want clamped to 1", got)
	}
	m, _ = press(m, "up", "up", "k")
	if got := m.(browser).cursor; got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
	m, _ = press(m, "G")
	if got := m.(browser).cursor; got != 1 {
		t.Errorf("cursor after G = %d", got)
	}
}

func TestBrowser_View(t *testing.T) {
	m, _ := press(newBrowser(doc()), "enter")
	view := m.View()
	for _, want := range []string{"Wallet.sol: 2 violation(s)", "> [high] suicidal:18 kill", "location: Wallet.sol:18:5", "|     function kill() public {", "|         selfdestruct", "  [informational] assembly:30 asm"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	m, _ = press(m, "enter")
	if strings.Contains(m.View(), "location:") {
		t.Error("details should collapse on second enter")
	}
}

func TestBrowser_Quit(t *testing.T) {
	_, cmd := press(newBrowser(doc()), "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowser_Empty(t *testing.T) {
	m, _ := press(newBrowser(report.Document{File: "A.sol"}), "down", "G")
	if m.(browser).cursor != 0 || !strings.Contains(m.View(), "No violations found.") {
		t.Errorf("unexpected state %+v", m)
	}
}

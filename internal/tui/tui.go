// Package tui is an interactive browser over the violations of one run.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xab-mack/nexeth/internal/report"
)

type browser struct {
	doc      report.Document
	cursor   int
	expanded bool
}

func newBrowser(doc report.Document) browser { return browser{doc: doc} }

func (m browser) Init() tea.Cmd { return nil }

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.doc.Violations)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if n := len(m.doc.Violations); n > 0 {
			m.cursor = n - 1
		}
	case "enter", " ":
		m.expanded = !m.expanded
	}
	return m, nil
}

func (m browser) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d violation(s)", m.doc.File, len(m.doc.Violations))
	if n := len(m.doc.Errors); n > 0 {
		fmt.Fprintf(&b, ", %d detector(s) failed", n)
	}
	b.WriteString("\n\n")

	if len(m.doc.Violations) == 0 {
		b.WriteString("  No violations found.\n")
	}
	for i, e := range m.doc.Violations {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s[%s] %s:%d %s\n", marker, e.Severity, e.DetectorID, e.Line, e.Message)
		if i == m.cursor && m.expanded {
			fmt.Fprintf(&b, "      contract: %s\n", e.Contract)
			fmt.Fprintf(&b, "      location: %s:%d:%d\n", m.doc.File, e.Line, e.Column)
			if e.Context != "" {
				for _, line := range strings.Split(e.Context, "\n") {
					fmt.Fprintf(&b, "      | %s\n", line)
				}
			}
		}
	}
	b.WriteString("\n↑/↓ move • enter details • q quit\n")
	return b.String()
}

// Run opens the browser and blocks until the user quits.
func Run(doc report.Document) error {
	p := tea.NewProgram(newBrowser(doc))
	_, err := p.Run()
	return err
}

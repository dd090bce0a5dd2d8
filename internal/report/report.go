// Package report renders an analysis result as JSON, SARIF or coloured text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/engine"
	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/util"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// contextLines is how many surrounding source lines an Entry carries.
const contextLines = 4

// Entry is a violation resolved against the unit's source text.
type Entry struct {
	model.Violation
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	Context     string `json:"context,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

type Summary struct {
	Attempted int                    `json:"attempted"`
	Succeeded int                    `json:"succeeded"`
	Total     int                    `json:"total"`
	Counts    map[model.Severity]int `json:"counts"`
}

// Document is the format-neutral view every renderer works from.
type Document struct {
	File       string                `json:"file"`
	Pragma     string                `json:"pragma,omitempty"`
	Summary    Summary               `json:"summary"`
	Violations []Entry               `json:"violations"`
	Errors     []model.DetectorError `json:"errors,omitempty"`
}

func Build(unit *ast.SourceUnit, result *model.DetectorResult) Document {
	doc := Document{
		Summary: Summary{
			Attempted: result.Attempted,
			Succeeded: result.Succeeded,
			Total:     result.Total,
			Counts:    make(map[model.Severity]int, len(model.Severities)),
		},
		Violations: make([]Entry, 0, result.Total),
		Errors:     result.Errors,
	}
	if unit != nil {
		doc.File = unit.Path
		doc.Pragma = unit.PragmaVersion
	}
	for _, s := range model.Severities {
		doc.Summary.Counts[s] = result.Count(s)
	}
	for _, v := range result.All() {
		e := Entry{Violation: v, Fingerprint: engine.Fingerprint(unit, v)}
		if pos := unit.Position(v.Src); pos.Line > 0 {
			e.Line, e.Column = pos.Line, pos.Column
			e.Snippet = strings.TrimSpace(util.LineText(unit.Source, pos.Line))
			e.Context = util.ExtractSnippet(unit.Source, pos.Line, pos.Line, contextLines)
		}
		doc.Violations = append(doc.Violations, e)
	}
	return doc
}

// Render writes doc in the named format. rules feed the SARIF rule table.
func Render(w io.Writer, format string, doc Document, rules []model.RuleMeta, color bool) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, doc)
	case FormatSARIF:
		return RenderSARIF(w, doc, rules)
	case FormatText, "":
		return RenderText(w, doc, color)
	}
	return fmt.Errorf("unknown format %q (want text, json or sarif)", format)
}

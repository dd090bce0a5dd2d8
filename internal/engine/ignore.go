package engine

import (
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/config"
	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/util"
)

// InlineMarker starts a suppression comment:
//
//	// nexeth:ignore suicidal,assembly
//
// A marker on the violation's line or the line above suppresses the listed
// rules; a marker without rule ids suppresses every rule.
const InlineMarker = "nexeth:ignore"

// IgnoreFilter drops violations matched by cfg's ignore rules or by inline
// suppression comments in the unit's source.
func IgnoreFilter(cfg config.Config) Filter {
	return func(unit *ast.SourceUnit, v model.Violation) bool {
		return !isIgnored(unit, v, cfg)
	}
}

func isIgnored(unit *ast.SourceUnit, v model.Violation, cfg config.Config) bool {
	for _, ig := range cfg.Ignore {
		if ig.Rule == "" && ig.Contract == "" {
			continue
		}
		if ig.Rule != "" && !strings.EqualFold(ig.Rule, v.DetectorID) {
			continue
		}
		if ig.Contract != "" && ig.Contract != v.Contract {
			continue
		}
		return true
	}
	return hasInlineSuppression(unit, v)
}

func hasInlineSuppression(unit *ast.SourceUnit, v model.Violation) bool {
	if unit == nil || unit.Source == "" {
		return false
	}
	line := unit.Position(v.Src).Line
	if line == 0 {
		return false
	}
	for _, l := range []int{line, line - 1} {
		if markerMatches(util.LineText(unit.Source, l), v.DetectorID) {
			return true
		}
	}
	return false
}

func markerMatches(text, ruleID string) bool {
	idx := strings.Index(text, InlineMarker)
	if idx < 0 {
		return false
	}
	rest := text[idx+len(InlineMarker):]
	ids := strings.FieldsFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' })
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if strings.EqualFold(id, ruleID) {
			return true
		}
	}
	return false
}

// Package logger implements the engine's Reporter on top of zerolog. A
// Reporter is built per run and passed to the engine explicitly.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

type Reporter struct {
	log zerolog.Logger
}

// New returns a Reporter writing to w. format is FormatJSON for one JSON
// object per event; anything else selects human-readable console output,
// colored when w is a terminal.
func New(w io.Writer, format string) *Reporter {
	out := w
	if format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w), TimeFormat: time.Kitchen}
	}
	return &Reporter{log: zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()}
}

// SetLevel changes the minimum level written; the default is info.
func (r *Reporter) SetLevel(l zerolog.Level) { r.log = r.log.Level(l) }

// Logger exposes the underlying logger for run-level messages.
func (r *Reporter) Logger() *zerolog.Logger { return &r.log }

func (r *Reporter) Violation(unit *ast.SourceUnit, v model.Violation) {
	ev := r.log.Info()
	if v.Severity == model.SeverityHigh || v.Severity == model.SeverityMedium {
		ev = r.log.Warn()
	}
	ev = ev.Str("detector", v.DetectorID).
		Str("severity", string(v.Severity)).
		Str("contract", v.Contract)
	if unit != nil {
		pos := unit.Position(v.Src)
		ev = ev.Str("file", unit.Path)
		if pos.Line > 0 {
			ev = ev.Int("line", pos.Line).
				Int("column", pos.Column).
				Str("at", fmt.Sprintf("%s:%d:%d", unit.Path, pos.Line, pos.Column))
		}
	}
	ev.Msg(v.Message)
}

func (r *Reporter) DetectorError(meta model.RuleMeta, err error) {
	r.log.Error().Err(err).Str("detector", meta.ID).Msg("detector failed")
}

func (r *Reporter) Summary(unit *ast.SourceUnit, result *model.DetectorResult) {
	file := ""
	if unit != nil {
		file = unit.Path
	}
	switch {
	case result.Attempted == 0:
		r.log.Warn().Str("file", file).Msg("no detectors enabled")
	case result.Succeeded == 0:
		r.log.Error().Str("file", file).
			Int("attempted", result.Attempted).
			Msg("no detector completed")
	case result.Total == 0:
		r.log.Info().Str("file", file).
			Int("detectors", result.Succeeded).
			Int("failed", len(result.Errors)).
			Msg("no violations found")
	default:
		ev := r.log.Info().Str("file", file)
		for _, s := range model.Severities {
			ev = ev.Int(string(s), result.Count(s))
		}
		ev.Int("total", result.Total).
			Int("detectors", result.Succeeded).
			Int("failed", len(result.Errors)).
			Msg("analysis complete")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xab-mack/nexeth/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w     io.Writer
	color bool
	err   error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// c returns code when colour is enabled.
func (tw *textWriter) c(code string) string {
	if !tw.color {
		return ""
	}
	return code
}

func RenderText(w io.Writer, doc Document, color bool) error {
	tw := &textWriter{w: w, color: color}
	reset, bold, dim := tw.c(colorReset), tw.c(colorBold), tw.c(colorDim)

	tw.printf("%s%s%s%s\n", bold, tw.c(colorCyan), doc.File, reset)
	if doc.Pragma != "" {
		tw.printf("  %spragma %s%s\n", dim, doc.Pragma, reset)
	}
	tw.printf("\n")

	for _, e := range doc.Errors {
		tw.printf("  %sdetector %s failed:%s %s\n", tw.c(colorRed), e.DetectorID, reset, e.Message)
	}
	if len(doc.Errors) > 0 {
		tw.printf("\n")
	}

	if len(doc.Violations) == 0 {
		tw.printf("%s%sNo violations found.%s\n", bold, tw.c(colorGreen), reset)
		return tw.err
	}

	for i, e := range doc.Violations {
		label, code := severityFormat(e.Severity)
		tw.printf("  %s%-13s%s %s%s%s\n", tw.c(code), label, reset, bold, e.DetectorID, reset)
		tw.printf("  %s\n", e.Message)
		loc := doc.File
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", doc.File, e.Line, e.Column)
		}
		if e.Contract != "" {
			loc += " (" + e.Contract + ")"
		}
		tw.printf("  %s→ %s%s\n", dim, loc, reset)
		if e.Snippet != "" {
			tw.printf("  %s| %s%s\n", dim, e.Snippet, reset)
		}
		if i < len(doc.Violations)-1 {
			tw.printf("\n")
		}
	}

	var parts []string
	for _, s := range model.Severities {
		if n := doc.Summary.Counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	tw.printf("\n%s%d violation(s):%s %s\n", bold, doc.Summary.Total, reset, strings.Join(parts, ", "))
	return tw.err
}

func severityFormat(s model.Severity) (string, string) {
	switch s {
	case model.SeverityHigh:
		return "HIGH", colorRed
	case model.SeverityMedium:
		return "MEDIUM", colorYellow
	case model.SeverityLow:
		return "LOW", colorBlue
	case model.SeverityOptimization:
		return "OPTIMIZATION", colorDim
	default:
		return "INFO", colorCyan
	}
}

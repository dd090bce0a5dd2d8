package model

import (
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
)

type Severity string

const (
	SeverityInformational Severity = "informational"
	SeverityLow           Severity = "low"
	SeverityMedium        Severity = "medium"
	SeverityHigh          Severity = "high"
	SeverityOptimization  Severity = "optimization"
)

// Severities lists every severity in reporting order.
var Severities = []Severity{
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInformational,
	SeverityOptimization,
}

// ParseSeverity maps a user-supplied name onto a Severity. Unknown names
// report ok=false.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh, true
	case "medium":
		return SeverityMedium, true
	case "low":
		return SeverityLow, true
	case "informational", "info":
		return SeverityInformational, true
	case "optimization", "gas":
		return SeverityOptimization, true
	}
	return "", false
}

// rank orders severities for threshold checks; optimization sits below
// informational since it never indicates a defect.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInformational:
		return 1
	}
	return 0
}

func SeverityGTE(a, b Severity) bool {
	return a.rank() >= b.rank()
}

type RuleMeta struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Violation is one reported rule breach. Values are created by detectors and
// never modified afterwards.
type Violation struct {
	DetectorID string   `json:"detectorId"`
	Severity   Severity `json:"severity"`
	// Target is the kind of declaration at fault: "contract", "function",
	// "variable", "parameter", "event", ...
	Target     string   `json:"target,omitempty"`
	Name       string   `json:"name,omitempty"`
	Convention string   `json:"convention,omitempty"`
	Message    string   `json:"message"`
	Contract   string   `json:"contract"`
	Src        ast.Src  `json:"src"`
	Node       ast.Node `json:"-"`
}

type DetectorError struct {
	DetectorID string `json:"detectorId"`
	Err        error  `json:"-"`
	Message    string `json:"message"`
}

func (e DetectorError) Error() string {
	return e.DetectorID + ": " + e.Message
}

func (e DetectorError) Unwrap() error { return e.Err }

// DetectorResult buckets violations by severity. Within a bucket, order is
// registry order then detection order.
type DetectorResult struct {
	Violations map[Severity][]Violation `json:"violations"`
	Errors     []DetectorError          `json:"errors,omitempty"`
	Attempted  int                      `json:"attempted"`
	Succeeded  int                      `json:"succeeded"`
	Total      int                      `json:"total"`
}

func NewDetectorResult() *DetectorResult {
	r := &DetectorResult{Violations: make(map[Severity][]Violation, len(Severities))}
	for _, s := range Severities {
		r.Violations[s] = []Violation{}
	}
	return r
}

func (r *DetectorResult) Add(v Violation) {
	r.Violations[v.Severity] = append(r.Violations[v.Severity], v)
	r.Total++
}

// All flattens the buckets in reporting order.
func (r *DetectorResult) All() []Violation {
	out := make([]Violation, 0, r.Total)
	for _, s := range Severities {
		out = append(out, r.Violations[s]...)
	}
	return out
}

func (r *DetectorResult) Count(s Severity) int {
	return len(r.Violations[s])
}

// Filter returns a copy of r holding only violations for which keep is true.
func (r *DetectorResult) Filter(keep func(Violation) bool) *DetectorResult {
	out := NewDetectorResult()
	out.Errors = r.Errors
	out.Attempted = r.Attempted
	out.Succeeded = r.Succeeded
	for _, v := range r.All() {
		if keep(v) {
			out.Add(v)
		}
	}
	return out
}

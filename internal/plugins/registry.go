package plugins

import (
	"context"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// Detector is one independent rule over a parsed unit. Detect must not modify
// the tree and returns an empty slice when the unit is clean.
type Detector interface {
	Meta() model.RuleMeta
	Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error)
}

// Factory builds a fresh detector instance.
type Factory func() Detector

// builtin is the static rule table. Its order is the registry order and
// therefore the order of violations within a severity bucket.
var builtin = []struct {
	ID  string
	New Factory
}{
	{"naming-convention", func() Detector { return &namingConvention{} }},
	{"unimplemented-function", func() Detector { return &unimplementedFunction{} }},
	{"suicidal", func() Detector { return &suicidal{} }},
	{"assembly", func() Detector { return &assemblyUsage{} }},
	{"incorrect-shift", func() Detector { return &incorrectShift{} }},
	{"erc20-indexed", func() Detector { return &erc20Indexed{} }},
	{"multiple-constructors", func() Detector { return &multipleConstructors{} }},
	{"var-read-using-this", func() Detector { return &varReadUsingThis{} }},
	{"arbitrary-send-eth", func() Detector { return &arbitrarySendEth{} }},
}

// BuiltinIDs lists the identifiers of the built-in rules in registry order.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtin))
	for _, b := range builtin {
		ids = append(ids, b.ID)
	}
	return ids
}

// New constructs the built-in detector registered under id.
func New(id string) (Detector, bool) {
	for _, b := range builtin {
		if b.ID == id {
			return b.New(), true
		}
	}
	return nil, false
}

type Registry struct{ detectors []Detector }

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Register(d Detector) { r.detectors = append(r.detectors, d) }

func (r *Registry) RegisterBuiltin() {
	for _, b := range builtin {
		r.Register(b.New())
	}
}

func (r *Registry) Detectors() []Detector { return r.detectors }

func (r *Registry) Lookup(id string) (Detector, bool) {
	for _, d := range r.detectors {
		if d.Meta().ID == id {
			return d, true
		}
	}
	return nil, false
}

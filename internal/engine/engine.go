package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/plugins"
)

// Reporter receives the events of one analysis run. All calls happen on the
// goroutine that called Analyse, after every detector has finished.
type Reporter interface {
	Violation(unit *ast.SourceUnit, v model.Violation)
	DetectorError(meta model.RuleMeta, err error)
	Summary(unit *ast.SourceUnit, result *model.DetectorResult)
}

type nopReporter struct{}

func (nopReporter) Violation(*ast.SourceUnit, model.Violation) {}
func (nopReporter) DetectorError(model.RuleMeta, error) {}
func (nopReporter) Summary(*ast.SourceUnit, *model.DetectorResult) {}

// Filter decides whether a violation is kept in the result.
type Filter func(unit *ast.SourceUnit, v model.Violation) bool

type Options struct {
	// DisabledDetectors are skipped entirely: no violations, no events.
	DisabledDetectors map[string]bool
	// DetectorTimeout bounds each Detect call; zero disables the limit.
	DetectorTimeout time.Duration
	// Concurrency caps parallel detectors; zero means runtime.NumCPU().
	Concurrency int
	// Filters run before violations are reported.
	Filters []Filter
}

type Engine struct {
	registry *plugins.Registry
	reporter Reporter
}

// New builds an engine over registry. A nil registry gets the built-in
// detectors and a nil reporter discards every event.
func New(registry *plugins.Registry, reporter Reporter) *Engine {
	if registry == nil {
		registry = plugins.NewRegistry()
		registry.RegisterBuiltin()
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Engine{registry: registry, reporter: reporter}
}

func (e *Engine) Registry() *plugins.Registry { return e.registry }

type outcome struct {
	violations []model.Violation
	err        error
}

// Analyse runs every enabled detector against unit and folds their results
// into severity buckets in registry order.
func (e *Engine) Analyse(ctx context.Context, unit *ast.SourceUnit, opts Options) *model.DetectorResult {
	var enabled []plugins.Detector
	for _, d := range e.registry.Detectors() {
		if opts.DisabledDetectors[d.Meta().ID] {
			continue
		}
		enabled = append(enabled, d)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	slots := make([]outcome, len(enabled))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, d := range enabled {
		i, d := i, d
		g.Go(func() error {
			vs, err := runDetector(ctx, d, unit, opts.DetectorTimeout)
			slots[i] = outcome{violations: vs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := model.NewDetectorResult()
	result.Attempted = len(enabled)
	for i, d := range enabled {
		meta := d.Meta()
		out := slots[i]
		if out.err != nil {
			de := model.DetectorError{DetectorID: meta.ID, Err: out.err, Message: out.err.Error()}
			result.Errors = append(result.Errors, de)
			e.reporter.DetectorError(meta, de)
			continue
		}
		result.Succeeded++
		for _, v := range out.violations {
			v.DetectorID = meta.ID
			v.Severity = meta.Severity
			if keep(unit, v, opts.Filters) {
				result.Add(v)
			}
		}
	}

	for _, v := range result.All() {
		e.reporter.Violation(unit, v)
	}
	e.reporter.Summary(unit, result)
	return result
}

func keep(unit *ast.SourceUnit, v model.Violation, filters []Filter) bool {
	for _, f := range filters {
		if !f(unit, v) {
			return false
		}
	}
	return true
}

// runDetector isolates one Detect call: panics become errors and, with a
// timeout, a detector that overruns is abandoned and reported as failed.
func runDetector(ctx context.Context, d plugins.Detector, unit *ast.SourceUnit, timeout time.Duration) ([]model.Violation, error) {
	if timeout <= 0 {
		return safeDetect(ctx, d, unit)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		vs, err := safeDetect(ctx, d, unit)
		ch <- outcome{violations: vs, err: err}
	}()
	select {
	case out := <-ch:
		return out.violations, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

func safeDetect(ctx context.Context, d plugins.Detector, unit *ast.SourceUnit) (vs []model.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			vs, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return d.Detect(ctx, unit)
}

package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/plugins"
)

// --- Helpers ---

type fakeDetector struct {
	id       string
	severity model.Severity
	detect   func(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error)
}

func (f *fakeDetector) Meta() model.RuleMeta {
	return model.RuleMeta{ID: f.id, Title: f.id, Severity: f.severity}
}

func (f *fakeDetector) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	return f.detect(ctx, unit)
}

func emitting(id string, sev model.Severity, messages ...string) *fakeDetector {
	return &fakeDetector{id: id, severity: sev, detect: func(context.Context, *ast.SourceUnit) ([]model.Violation, error) {
		out := []model.Violation{}
		for _, m := range messages {
			out = append(out, model.Violation{Message: m, Contract: "C"})
		}
		return out, nil
	}}
}

type recordingReporter struct {
	violations []model.Violation
	errors     []string
	summaries  int
	last       *model.DetectorResult
}

func (r *recordingReporter) Violation(_ *ast.SourceUnit, v model.Violation) {
	r.violations = append(r.violations, v)
}

func (r *recordingReporter) DetectorError(meta model.RuleMeta, _ error) {
	r.errors = append(r.errors, meta.ID)
}

func (r *recordingReporter) Summary(_ *ast.SourceUnit, result *model.DetectorResult) {
	r.summaries++
	r.last = result
}

func registryOf(ds ...plugins.Detector) *plugins.Registry {
	r := plugins.NewRegistry()
	for _, d := range ds {
		r.Register(d)
	}
	return r
}

func messages(vs []model.Violation) []string {
	out := []string{}
	for _, v := range vs {
		out = append(out, v.Message)
	}
	return out
}

// fixtureUnit trips several built-in detectors at once.
func fixtureUnit() *ast.SourceUnit {
	kill := &ast.FunctionDefinition{Name: "kill", Visibility: ast.VisibilityPublic, Body: &ast.Block{Statements: []ast.Node{
		&ast.FunctionCall{Expression: &ast.Identifier{Name: "selfdestruct"}},
	}}}
	asm := &ast.FunctionDefinition{Name: "Pack", Visibility: ast.VisibilityPublic, Body: &ast.Block{Statements: []ast.Node{
		&ast.InlineAssembly{Body: &ast.YulBlock{}},
	}}}
	base := &ast.ContractDefinition{Name: "base", Members: []ast.Node{
		&ast.FunctionDefinition{Name: "f1", Visibility: ast.VisibilityPublic, Body: &ast.Block{}},
		&ast.FunctionDefinition{Name: "f2", Visibility: ast.VisibilityPublic, Body: &ast.Block{}},
	}}
	child := &ast.ContractDefinition{Name: "Child", BaseContracts: []string{"base"}, Members: []ast.Node{
		&ast.FunctionDefinition{IsConstructor: true, Body: &ast.Block{}},
		&ast.FunctionDefinition{IsConstructor: true, Body: &ast.Block{}},
		&ast.FunctionDefinition{Name: "f1", Visibility: ast.VisibilityPublic, Body: &ast.Block{}},
		kill,
		asm,
	}}
	return &ast.SourceUnit{Path: "Fixture.sol", Contracts: []*ast.ContractDefinition{base, child}}
}

// --- Tests ---

func TestAnalyse_BucketsInRegistryOrder(t *testing.T) {
	reg := registryOf(
		emitting("low-a", model.SeverityLow, "a1", "a2"),
		emitting("high-b", model.SeverityHigh, "b1"),
		emitting("low-c", model.SeverityLow, "c1"),
		emitting("gas-d", model.SeverityOptimization, "d1"),
	)
	rep := &recordingReporter{}
	res := New(reg, rep).Analyse(context.Background(), &ast.SourceUnit{}, Options{})

	if res.Total != 5 || res.Attempted != 4 || res.Succeeded != 4 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if got := messages(res.Violations[model.SeverityLow]); !reflect.DeepEqual(got, []string{"a1", "a2", "c1"}) {
		t.Errorf("low bucket = %v", got)
	}
	if got := messages(rep.violations); !reflect.DeepEqual(got, []string{"b1", "a1", "a2", "c1", "d1"}) {
		t.Errorf("reported order = %v", got)
	}
	if rep.summaries != 1 || rep.last != res {
		t.Errorf("summary called %d times", rep.summaries)
	}
	for _, v := range res.Violations[model.SeverityHigh] {
		if v.DetectorID != "high-b" {
			t.Errorf("detector id = %s", v.DetectorID)
		}
	}
}

func TestAnalyse_Deterministic(t *testing.T) {
	e := New(nil, nil)
	opts := Options{Concurrency: 4}
	first := e.Analyse(context.Background(), fixtureUnit(), opts)
	for i := 0; i < 10; i++ {
		again := e.Analyse(context.Background(), fixtureUnit(), opts)
		if !reflect.DeepEqual(messages(first.All()), messages(again.All())) {
			t.Fatalf("run %d differs:\n%v\n%v", i, messages(first.All()), messages(again.All()))
		}
	}
	if first.Total == 0 {
		t.Fatal("fixture should produce violations")
	}
}

func TestAnalyse_FixtureProperties(t *testing.T) {
	res := New(nil, nil).Analyse(context.Background(), fixtureUnit(), Options{})
	count := func(id string) int {
		n := 0
		for _, v := range res.All() {
			if v.DetectorID == id {
				n++
			}
		}
		return n
	}
	if n := count("multiple-constructors"); n != 1 {
		t.Errorf("multiple-constructors = %d, want 1", n)
	}
	if n := count("unimplemented-function"); n != 1 {
		t.Errorf("unimplemented-function = %d, want 1", n)
	}
	if n := count("suicidal"); n != 1 {
		t.Errorf("suicidal = %d, want 1", n)
	}
	if n := count("assembly"); n != 1 {
		t.Errorf("assembly = %d, want 1", n)
	}
	// "base" contract name and "Pack" function name.
	if n := count("naming-convention"); n != 2 {
		t.Errorf("naming-convention = %d, want 2", n)
	}
	if res.Count(model.SeverityHigh) != 2 {
		t.Errorf("high = %d, want 2", res.Count(model.SeverityHigh))
	}
}

func TestAnalyse_DisableIsolation(t *testing.T) {
	e := New(nil, nil)
	full := e.Analyse(context.Background(), fixtureUnit(), Options{})

	rep := &recordingReporter{}
	partial := New(nil, rep).Analyse(context.Background(), fixtureUnit(), Options{
		DisabledDetectors: map[string]bool{"suicidal": true},
	})

	var want []string
	for _, v := range full.All() {
		if v.DetectorID != "suicidal" {
			want = append(want, v.DetectorID+":"+v.Message)
		}
	}
	var got []string
	for _, v := range partial.All() {
		got = append(got, v.DetectorID+":"+v.Message)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("disabling suicidal changed other output:\n got %v\nwant %v", got, want)
	}
	for _, v := range rep.violations {
		if v.DetectorID == "suicidal" {
			t.Error("disabled detector must not emit events")
		}
	}
	if partial.Attempted != full.Attempted-1 {
		t.Errorf("attempted = %d, want %d", partial.Attempted, full.Attempted-1)
	}
}

func TestAnalyse_FailureIsolation(t *testing.T) {
	failing := &fakeDetector{id: "fails", severity: model.SeverityHigh, detect: func(context.Context, *ast.SourceUnit) ([]model.Violation, error) {
		return nil, errors.New("not implemented")
	}}
	panicking := &fakeDetector{id: "panics", severity: model.SeverityHigh, detect: func(context.Context, *ast.SourceUnit) ([]model.Violation, error) {
		var u *ast.SourceUnit
		_ = u.Contracts
		return nil, nil
	}}
	rep := &recordingReporter{}
	reg := registryOf(failing, emitting("ok", model.SeverityLow, "fine"), panicking)
	res := New(reg, rep).Analyse(context.Background(), &ast.SourceUnit{}, Options{})

	if res.Attempted != 3 || res.Succeeded != 1 || res.Total != 1 {
		t.Fatalf("unexpected counters: attempted=%d succeeded=%d total=%d", res.Attempted, res.Succeeded, res.Total)
	}
	if len(res.Errors) != 2 || res.Errors[0].DetectorID != "fails" || res.Errors[1].DetectorID != "panics" {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if !strings.HasPrefix(res.Errors[1].Message, "panic:") {
		t.Errorf("panic message = %q", res.Errors[1].Message)
	}
	if !reflect.DeepEqual(rep.errors, []string{"fails", "panics"}) {
		t.Errorf("reported errors = %v", rep.errors)
	}
}

func TestAnalyse_Timeout(t *testing.T) {
	slow := &fakeDetector{id: "slow", severity: model.SeverityLow, detect: func(context.Context, *ast.SourceUnit) ([]model.Violation, error) {
		time.Sleep(500 * time.Millisecond)
		return []model.Violation{{Message: "late"}}, nil
	}}
	reg := registryOf(slow, emitting("fast", model.SeverityLow, "quick"))
	res := New(reg, nil).Analyse(context.Background(), &ast.SourceUnit{}, Options{DetectorTimeout: 20 * time.Millisecond})

	if len(res.Errors) != 1 || res.Errors[0].DetectorID != "slow" {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if !errors.Is(res.Errors[0], context.DeadlineExceeded) {
		t.Errorf("error should wrap DeadlineExceeded: %v", res.Errors[0].Err)
	}
	if got := messages(res.All()); !reflect.DeepEqual(got, []string{"quick"}) {
		t.Errorf("violations = %v", got)
	}
}

func TestAnalyse_NoDetectorsEnabled(t *testing.T) {
	rep := &recordingReporter{}
	reg := registryOf(emitting("only", model.SeverityLow, "x"))
	res := New(reg, rep).Analyse(context.Background(), &ast.SourceUnit{}, Options{DisabledDetectors: map[string]bool{"only": true}})
	if res.Attempted != 0 || res.Total != 0 || rep.summaries != 1 {
		t.Errorf("unexpected result %+v, summaries=%d", res, rep.summaries)
	}
	for _, s := range model.Severities {
		if res.Violations[s] == nil {
			t.Errorf("bucket %s should be empty, not nil", s)
		}
	}
}

func TestAnalyse_FiltersBeforeReporting(t *testing.T) {
	rep := &recordingReporter{}
	reg := registryOf(emitting("d", model.SeverityLow, "keep", "drop"))
	res := New(reg, rep).Analyse(context.Background(), &ast.SourceUnit{}, Options{
		Filters: []Filter{func(_ *ast.SourceUnit, v model.Violation) bool { return v.Message != "drop" }},
	})
	if res.Total != 1 || len(rep.violations) != 1 || rep.violations[0].Message != "keep" {
		t.Errorf("filter not applied: total=%d reported=%v", res.Total, messages(rep.violations))
	}
}

func TestExceedsThreshold(t *testing.T) {
	res := model.NewDetectorResult()
	res.Add(model.Violation{Severity: model.SeverityMedium})
	res.Add(model.Violation{Severity: model.SeverityOptimization})
	if !ExceedsThreshold(res, model.SeverityLow) || !ExceedsThreshold(res, model.SeverityMedium) {
		t.Error("medium violation should exceed low and medium thresholds")
	}
	if ExceedsThreshold(res, model.SeverityHigh) {
		t.Error("no high violation present")
	}
	if got := FilterBySeverity(res, model.SeverityInformational); got.Total != 1 {
		t.Errorf("filtered total = %d, want 1", got.Total)
	}
}

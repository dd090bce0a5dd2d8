package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/config"
	"github.com/xab-mack/nexeth/internal/plugins"
)

var walletAST = filepath.Join("..", "solidity", "testdata", "wallet.json")

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := &cobra.Command{Use: "nexeth", SilenceUsage: true, SilenceErrors: true}
	AddCommands(root)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--log-format", "json"))
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

type jsonReport struct {
	File       string `json:"file"`
	Violations []struct {
		DetectorID string `json:"detectorId"`
		Line       int    `json:"line"`
	} `json:"violations"`
}

func readReport(t *testing.T, path string) jsonReport {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var r jsonReport
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	return r
}

func (r jsonReport) has(id string) bool {
	for _, v := range r.Violations {
		if v.DetectorID == id {
			return true
		}
	}
	return false
}

func TestAnalyse_WritesReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	_, stderr, err := execute(t, "analyse", walletAST, "--out", out)
	if err != nil {
		t.Fatalf("analyse: %v", err)
	}
	r := readReport(t, out)
	if !r.has("suicidal") || !r.has("assembly") {
		t.Errorf("missing expected violations: %+v", r.Violations)
	}
	if r.has("arbitrary-send-eth") {
		t.Error("guarded payout should not be reported")
	}
	if !r.has("incorrect-shift") {
		t.Errorf("swapped shl operands not reported: %+v", r.Violations)
	}
	for _, v := range r.Violations {
		if v.DetectorID == "suicidal" && v.Line != 18 {
			t.Errorf("suicidal reported on line %d, want 18", v.Line)
		}
		if v.DetectorID == "incorrect-shift" && v.Line != 29 {
			t.Errorf("incorrect-shift reported on line %d, want 29", v.Line)
		}
	}
	if !strings.Contains(stderr, `"detector":"suicidal"`) || !strings.Contains(stderr, "analysis complete") {
		t.Errorf("log events missing from stderr:\n%s", stderr)
	}
}

func TestAnalyse_FailOn(t *testing.T) {
	_, _, err := execute(t, "analyse", walletAST, "--fail-on", "high")
	if err == nil || !strings.Contains(err.Error(), "fail-on threshold met") {
		t.Fatalf("expected threshold error, got %v", err)
	}

	_, _, err = execute(t, "analyse", walletAST, "--fail-on", "high", "--disable", "suicidal")
	if err == nil || !strings.Contains(err.Error(), "1 violation(s)") {
		t.Errorf("incorrect-shift should still meet the threshold, got %v", err)
	}

	_, _, err = execute(t, "analyse", walletAST, "--fail-on", "high", "--disable", "suicidal,incorrect-shift")
	if err != nil {
		t.Errorf("disabling every high detector should pass, got %v", err)
	}

	if _, _, err := execute(t, "analyse", walletAST, "--fail-on", "urgent"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestAnalyse_Baseline(t *testing.T) {
	baseline := filepath.Join(t.TempDir(), "baseline.json")
	if _, _, err := execute(t, "analyse", walletAST, "--write-baseline", baseline); err != nil {
		t.Fatalf("writing baseline: %v", err)
	}
	if _, _, err := execute(t, "analyse", walletAST, "--baseline", baseline, "--fail-on", "optimization"); err != nil {
		t.Errorf("every violation is in the baseline, got %v", err)
	}
}

func TestAnalyse_ParseError(t *testing.T) {
	_, _, err := execute(t, "analyse", filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestAnalyse_StoreAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	if _, _, err := execute(t, "analyse", walletAST, "--store", db); err != nil {
		t.Fatalf("analyse: %v", err)
	}
	stdout, _, err := execute(t, "history", "--store", db, "--format", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []struct {
		File  string `json:"file"`
		Total int    `json:"total"`
	}
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("invalid history output: %v\n%s", err, stdout)
	}
	if len(runs) != 1 || runs[0].File != "wallet.sol" || runs[0].Total == 0 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRulesList(t *testing.T) {
	stdout, _, err := execute(t, "rules", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range plugins.BuiltinIDs() {
		if !strings.Contains(stdout, id) {
			t.Errorf("rules list missing %s", id)
		}
	}
	if _, _, err := execute(t, "rules", "show", "nope"); err == nil {
		t.Error("expected error for unknown detector")
	}
	stdout, _, err = execute(t, "rules", "show", "incorrect-shift")
	if err != nil || !strings.Contains(stdout, "incorrect-shift (high)") {
		t.Errorf("rules show = %q, %v", stdout, err)
	}
}

func TestAnalyse_WarnsOnUnknownDisabledDetector(t *testing.T) {
	_, stderr, err := execute(t, "analyse", walletAST, "--disable", "nope,assembly")
	if err != nil {
		t.Fatalf("analyse: %v", err)
	}
	if !strings.Contains(stderr, "unknown detector in disable list") || !strings.Contains(stderr, `"detector":"nope"`) {
		t.Errorf("missing warning for unknown id:\n%s", stderr)
	}
	if strings.Count(stderr, "unknown detector in disable list") != 1 {
		t.Errorf("only nope should be reported as unknown:\n%s", stderr)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := execute(t, "init", "--dir", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, path, err := config.Load(dir)
	if err != nil || path == "" {
		t.Fatalf("config not loadable: %v", err)
	}
	if cfg.DetectorTimeoutMs != config.Default().DetectorTimeoutMs {
		t.Errorf("unexpected config %+v", cfg)
	}
	if _, _, err := execute(t, "init", "--dir", dir); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, _, err := execute(t, "init", "--dir", dir, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestGraph_RequiresPassword(t *testing.T) {
	t.Setenv("NEO4J_PASSWORD", "")
	if _, _, err := execute(t, "graph", walletAST); err == nil || !strings.Contains(err.Error(), "neo4j-pass") {
		t.Fatalf("expected password error, got %v", err)
	}
}

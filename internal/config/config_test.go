package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.DetectorTimeout() != 5*time.Second || cfg.Solc != "solc" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "contracts", "tokens")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `disabledDetectors: [assembly, " naming-convention "]
detectorTimeoutMs: 250
failOn: high
ignore:
  - rule: suicidal
    contract: Legacy
    reason: audited
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Load(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, FileName) {
		t.Errorf("path = %q", path)
	}
	disabled := cfg.Disabled()
	if !disabled["assembly"] || !disabled["naming-convention"] || len(disabled) != 2 {
		t.Errorf("disabled = %v", disabled)
	}
	if cfg.DetectorTimeout() != 250*time.Millisecond || cfg.FailOn != "high" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Solc != "solc" {
		t.Errorf("unset keys should keep defaults, solc = %q", cfg.Solc)
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0].Contract != "Legacy" || cfg.Ignore[0].Reason != "audited" {
		t.Errorf("ignore = %+v", cfg.Ignore)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("concurrency: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Concurrency = 3
	cfg.Ignore = []IgnoreRule{{Rule: "assembly"}}
	if err := Write(filepath.Join(dir, FileName), cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Concurrency != 3 || len(got.Ignore) != 1 || got.Ignore[0].Rule != "assembly" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestDetectorTimeout_Disabled(t *testing.T) {
	if (Config{DetectorTimeoutMs: 0}).DetectorTimeout() != 0 {
		t.Error("zero timeout should mean none")
	}
	if (Config{DetectorTimeoutMs: -5}).DetectorTimeout() != 0 {
		t.Error("negative timeout should mean none")
	}
}

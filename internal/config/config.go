package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = ".nexeth.yaml"

type IgnoreRule struct {
	Rule     string `yaml:"rule"`
	Contract string `yaml:"contract,omitempty"`
	Reason   string `yaml:"reason,omitempty"`
}

type Config struct {
	DisabledDetectors []string     `yaml:"disabledDetectors,omitempty"`
	DetectorTimeoutMs int          `yaml:"detectorTimeoutMs"`
	Concurrency       int          `yaml:"concurrency,omitempty"`
	FailOn            string       `yaml:"failOn,omitempty"`
	Solc              string       `yaml:"solc,omitempty"`
	Store             string       `yaml:"store,omitempty"`
	Ignore            []IgnoreRule `yaml:"ignore,omitempty"`
}

func Default() Config {
	return Config{
		DetectorTimeoutMs: 5000,
		Solc:              "solc",
	}
}

// DetectorTimeout converts DetectorTimeoutMs; zero or negative means none.
func (c Config) DetectorTimeout() time.Duration {
	if c.DetectorTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.DetectorTimeoutMs) * time.Millisecond
}

// Disabled returns DisabledDetectors as a set.
func (c Config) Disabled() map[string]bool {
	out := make(map[string]bool, len(c.DisabledDetectors))
	for _, id := range c.DisabledDetectors {
		if id = strings.TrimSpace(id); id != "" {
			out[id] = true
		}
	}
	return out
}

// Load searches startDir and its parents for FileName. It returns the
// defaults and an empty path when no file exists.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return cfg, "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		b, err := os.ReadFile(candidate)
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, candidate, fmt.Errorf("parsing %s: %w", candidate, err)
			}
			return cfg, candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, candidate, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cfg, "", nil
}

func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

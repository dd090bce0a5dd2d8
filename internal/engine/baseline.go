package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/util"
)

type baselineFile struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	Fingerprints []string  `json:"fingerprints"`
}

// Baseline is a set of accepted violation fingerprints.
type Baseline map[string]bool

// Fingerprint identifies v independently of its source offset.
func Fingerprint(unit *ast.SourceUnit, v model.Violation) string {
	path := ""
	if unit != nil {
		path = unit.Path
	}
	return util.Fingerprint(v.DetectorID, path, v.Contract, v.Message)
}

// LoadBaseline reads either a bare JSON array of fingerprints or the object
// written by WriteBaseline.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{}
	if path == "" {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	var fps []string
	if err := json.Unmarshal(data, &fps); err != nil {
		var f baselineFile
		if err := json.Unmarshal(data, &f); err != nil {
			return b, fmt.Errorf("parsing baseline %s: %w", path, err)
		}
		fps = f.Fingerprints
	}
	for _, fp := range fps {
		b[fp] = true
	}
	return b, nil
}

// WriteBaseline records the fingerprints of every violation in result.
func WriteBaseline(path string, result *model.DetectorResult, unit *ast.SourceUnit) error {
	seen := make(map[string]bool)
	out := baselineFile{GeneratedAt: time.Now().UTC(), Fingerprints: []string{}}
	for _, v := range result.All() {
		fp := Fingerprint(unit, v)
		if !seen[fp] {
			seen[fp] = true
			out.Fingerprints = append(out.Fingerprints, fp)
		}
	}
	sort.Strings(out.Fingerprints)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func BaselineFilter(b Baseline) Filter {
	return func(unit *ast.SourceUnit, v model.Violation) bool {
		return !b[Fingerprint(unit, v)]
	}
}

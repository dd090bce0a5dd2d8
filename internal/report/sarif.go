package report

import (
	"io"

	"github.com/xab-mack/nexeth/internal/model"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
	FullDescription  sarifMessage `json:"fullDescription"`
	DefaultConfig    sarifConfig  `json:"defaultConfiguration"`
}

type sarifConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	Physical sarifPhys      `json:"physicalLocation"`
	Logical  []sarifLogical `json:"logicalLocations,omitempty"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

type sarifLogical struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func sarifLevel(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	}
	return "note"
}

func RenderSARIF(w io.Writer, doc Document, rules []model.RuleMeta) error {
	driver := sarifDriver{Name: "nexeth"}
	for _, r := range rules {
		driver.Rules = append(driver.Rules, sarifRule{
			ID:               r.ID,
			Name:             r.Title,
			ShortDescription: sarifMessage{Text: r.Title},
			FullDescription:  sarifMessage{Text: r.Description},
			DefaultConfig:    sarifConfig{Level: sarifLevel(r.Severity)},
		})
	}

	results := make([]sarifResult, 0, len(doc.Violations))
	for _, e := range doc.Violations {
		loc := sarifLoc{Physical: sarifPhys{ArtifactLocation: sarifArt{URI: doc.File}}}
		if e.Line > 0 {
			loc.Physical.Region = &sarifRegion{StartLine: e.Line, StartColumn: e.Column}
		}
		if e.Contract != "" {
			loc.Logical = []sarifLogical{{Name: e.Contract, Kind: "type"}}
		}
		results = append(results, sarifResult{
			RuleID:              e.DetectorID,
			Level:               sarifLevel(e.Severity),
			Message:             sarifMessage{Text: e.Message},
			Locations:           []sarifLoc{loc},
			PartialFingerprints: map[string]string{"nexeth/v1": e.Fingerprint},
		})
	}

	return RenderJSON(w, sarif{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs:    []sarifRun{{Tool: sarifTool{Driver: driver}, Results: results}},
	})
}

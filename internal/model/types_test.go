package model

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"high", SeverityHigh, true},
		{" Medium ", SeverityMedium, true},
		{"info", SeverityInformational, true},
		{"gas", SeverityOptimization, true},
		{"critical", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSeverity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSeverity(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSeverityGTE(t *testing.T) {
	if !SeverityGTE(SeverityHigh, SeverityMedium) {
		t.Error("high should be >= medium")
	}
	if SeverityGTE(SeverityOptimization, SeverityInformational) {
		t.Error("optimization should rank below informational")
	}
	if !SeverityGTE(SeverityLow, SeverityLow) {
		t.Error("severity should be >= itself")
	}
}

func TestDetectorResult_AllFollowsReportingOrder(t *testing.T) {
	r := NewDetectorResult()
	r.Add(Violation{DetectorID: "a", Severity: SeverityOptimization})
	r.Add(Violation{DetectorID: "b", Severity: SeverityInformational})
	r.Add(Violation{DetectorID: "c", Severity: SeverityHigh})
	r.Add(Violation{DetectorID: "d", Severity: SeverityHigh})

	all := r.All()
	want := []string{"c", "d", "b", "a"}
	if len(all) != len(want) {
		t.Fatalf("expected %d violations, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].DetectorID != id {
			t.Errorf("all[%d] = %s, want %s", i, all[i].DetectorID, id)
		}
	}
	if r.Total != 4 || r.Count(SeverityHigh) != 2 || r.Count(SeverityMedium) != 0 {
		t.Errorf("unexpected counts: total=%d high=%d", r.Total, r.Count(SeverityHigh))
	}
}

func TestDetectorResult_Filter(t *testing.T) {
	r := NewDetectorResult()
	r.Attempted, r.Succeeded = 3, 2
	r.Errors = []DetectorError{{DetectorID: "x", Message: "boom"}}
	r.Add(Violation{DetectorID: "keep", Severity: SeverityLow})
	r.Add(Violation{DetectorID: "drop", Severity: SeverityLow})

	out := r.Filter(func(v Violation) bool { return v.DetectorID == "keep" })
	if out.Total != 1 || out.Violations[SeverityLow][0].DetectorID != "keep" {
		t.Errorf("unexpected filter result: %+v", out.Violations)
	}
	if out.Attempted != 3 || out.Succeeded != 2 || len(out.Errors) != 1 {
		t.Error("filter should carry run counters and errors")
	}
	if r.Total != 2 {
		t.Error("filter must not modify the receiver")
	}
}

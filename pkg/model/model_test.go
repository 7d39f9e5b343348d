package model

import "testing"

func TestSeverityRankOrdering(t *testing.T) {
	order := []Severity{SevInfo, SevLow, SevMedium, SevHigh, SevCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("%q must rank above %q", order[i], order[i-1])
		}
	}
	if Severity("bogus").Rank() >= SevInfo.Rank() {
		t.Error("unknown severities must rank below info")
	}
}

func TestParseSeverity(t *testing.T) {
	if _, ok := ParseSeverity("high"); !ok {
		t.Error("high must parse")
	}
	if _, ok := ParseSeverity("extreme"); ok {
		t.Error("extreme must not parse")
	}
}

func TestSummary(t *testing.T) {
	var s Summary
	for _, sev := range []Severity{SevCritical, SevHigh, SevHigh, SevInfo} {
		s.Add(sev)
	}
	if s.Critical != 1 || s.High != 2 || s.Info != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.Total() != 4 {
		t.Errorf("total = %d, want 4", s.Total())
	}
}

func TestScanResultHelpers(t *testing.T) {
	r := &ScanResult{Findings: []Finding{
		{Severity: SevMedium},
		{Severity: SevLow},
		{Severity: SevLow},
	}}
	if !r.HasSeverityAtLeast(SevMedium) {
		t.Error("expected a finding at medium or above")
	}
	if r.HasSeverityAtLeast(SevHigh) {
		t.Error("no finding reaches high")
	}
	if r.CountAt(SevLow) != 2 {
		t.Errorf("CountAt(low) = %d, want 2", r.CountAt(SevLow))
	}
}

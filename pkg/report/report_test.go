package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nself-org/secretscan/pkg/model"
	"github.com/nself-org/secretscan/pkg/rules"
)

// fixtureResult builds a result with deliberately unsorted findings so
// reporter ordering is observable.
func fixtureResult() *model.ScanResult {
	return &model.ScanResult{
		RunID:       "11111111-2222-3333-4444-555555555555",
		Tool:        "secretscan",
		ToolVersion: "test",
		RootDir:     "/repo",
		Environment: "development",
		Timestamp:   time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Findings: []model.Finding{
			{
				RuleID: "generic-password", Category: model.CategoryCredentialProvider,
				Severity: model.SevMedium, Confidence: model.ConfidenceLow,
				FilePath: "z/settings.ini", LineNumber: 9, ColumnStart: 0, ColumnEnd: 30,
				RedactedSnippet: "supe****alue",
			},
			{
				RuleID: "aws-access-key", Category: model.CategoryCredentialProvider,
				Severity: model.SevCritical, Confidence: model.ConfidenceHigh,
				FilePath: "a/config.py", LineNumber: 2, ColumnStart: 7, ColumnEnd: 27,
				RedactedSnippet: "AKIA****MNOP",
			},
			{
				RuleID: "stripe-publishable-key", Category: model.CategoryCredentialProvider,
				Severity: model.SevLow, Confidence: model.ConfidenceHigh,
				FilePath: "a/config.py", LineNumber: 7, ColumnStart: 0, ColumnEnd: 32,
				RedactedSnippet: "pk_t****aaaa",
				ReasonCodes:     []string{model.ReasonTestCredentialInProduction},
			},
		},
		Summary:         model.Summary{Critical: 1, Medium: 1, Low: 1},
		SuppressedCount: 2,
		ShouldBlock:     true,
		FilesScanned:    5,
		FilesDiscovered: 5,
	}
}

func TestSortedFindings(t *testing.T) {
	result := fixtureResult()
	sorted := sortedFindings(result.Findings)

	want := []string{"a/config.py:2", "a/config.py:7", "z/settings.ini:9"}
	for i, f := range sorted {
		got := fmt.Sprintf("%s:%d", f.FilePath, f.LineNumber)
		if got != want[i] {
			t.Errorf("position %d = %s, want %s", i, got, want[i])
		}
	}

	// The input slice is left untouched.
	if result.Findings[0].RuleID != "generic-password" {
		t.Error("sortedFindings mutated its input")
	}
}

func TestTextReport(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(fixtureResult(), &buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"CRITICAL (1)",
		"MEDIUM (1)",
		"LOW (1)",
		"a/config.py:2:8  aws-access-key  AKIA****MNOP",
		"[test-credential-in-production]",
		"suppressed by allowlist: 2",
		"DEPLOYMENT BLOCKED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	// Severity groups are ordered most severe first.
	if strings.Index(out, "CRITICAL") > strings.Index(out, "MEDIUM") {
		t.Error("critical group rendered after medium")
	}

	if strings.Contains(out, "\033[") {
		t.Error("ANSI escapes present with color disabled")
	}
}

func TestTextReportAllowed(t *testing.T) {
	result := fixtureResult()
	result.Findings = nil
	result.Summary = model.Summary{}
	result.ShouldBlock = false

	var buf bytes.Buffer
	if err := Text(result, &buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No findings.") {
		t.Errorf("missing empty-state line:\n%s", out)
	}
	if !strings.Contains(out, "Deployment allowed") {
		t.Errorf("missing allowed footer:\n%s", out)
	}
}

func TestTextReportPartialWarning(t *testing.T) {
	result := fixtureResult()
	result.Partial = true
	result.FilesScanned = 3

	var buf bytes.Buffer
	if err := Text(result, &buf, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "WARNING: scan cut short") {
		t.Error("partial result not surfaced in text output")
	}
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(fixtureResult(), &buf); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["shouldBlockDeployment"] != true {
		t.Error("shouldBlockDeployment missing or false")
	}
	if decoded["suppressedCount"] != float64(2) {
		t.Errorf("suppressedCount = %v", decoded["suppressedCount"])
	}

	findings, ok := decoded["findings"].([]interface{})
	if !ok || len(findings) != 3 {
		t.Fatalf("findings = %v", decoded["findings"])
	}
	first := findings[0].(map[string]interface{})
	if first["ruleId"] != "aws-access-key" {
		t.Errorf("first finding = %v, want aws-access-key after sorting", first["ruleId"])
	}

	// Encoding the same result twice is byte-identical.
	var again bytes.Buffer
	if err := JSON(fixtureResult(), &again); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Error("JSON encoding is not stable across runs")
	}
}

func TestSARIFReport(t *testing.T) {
	var buf bytes.Buffer
	if err := SARIF(fixtureResult(), rules.NewRegistry(), &buf); err != nil {
		t.Fatal(err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Message   struct{ Text string }
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if log.Version != "2.1.0" {
		t.Errorf("version = %q, want 2.1.0", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "secretscan" {
		t.Errorf("driver name = %q", run.Tool.Driver.Name)
	}

	// One descriptor per fired rule, no more.
	if len(run.Tool.Driver.Rules) != 3 {
		t.Errorf("rule descriptors = %d, want 3", len(run.Tool.Driver.Rules))
	}

	if len(run.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(run.Results))
	}

	levels := map[string]string{}
	for _, r := range run.Results {
		levels[r.RuleID] = r.Level
	}
	wantLevels := map[string]string{
		"aws-access-key":         "error",
		"generic-password":       "warning",
		"stripe-publishable-key": "note",
	}
	for id, want := range wantLevels {
		if levels[id] != want {
			t.Errorf("level for %s = %q, want %q", id, levels[id], want)
		}
	}

	first := run.Results[0]
	if first.RuleID != "aws-access-key" {
		t.Errorf("first result = %q, want aws-access-key after sorting", first.RuleID)
	}
	loc := first.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "a/config.py" {
		t.Errorf("uri = %q", loc.ArtifactLocation.URI)
	}
	if loc.Region.StartLine != 2 || loc.Region.StartColumn != 8 {
		t.Errorf("region = %+v, want line 2 column 8 (1-based)", loc.Region)
	}

	// The redacted snippet, and only the redacted snippet, appears.
	if !strings.Contains(first.Message.Text, "AKIA****MNOP") {
		t.Errorf("message = %q, want redacted snippet", first.Message.Text)
	}
}

func TestSeverityToLevel(t *testing.T) {
	tests := []struct {
		sev  model.Severity
		want string
	}{
		{model.SevCritical, "error"},
		{model.SevHigh, "error"},
		{model.SevMedium, "warning"},
		{model.SevLow, "note"},
		{model.SevInfo, "note"},
	}
	for _, tt := range tests {
		if got := severityToLevel(tt.sev); got != tt.want {
			t.Errorf("severityToLevel(%q) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"text", "json", "sarif"} {
		if _, err := ParseFormat(valid); err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

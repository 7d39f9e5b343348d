package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/nself-org/secretscan/pkg/model"
	"github.com/nself-org/secretscan/pkg/rules"
)

// SARIF v2.1.0 output, sufficient for ingestion by code-scanning
// dashboards. Reference:
// https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

type sarifLog struct {
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
	Name            string      `json:"name"`
	Version         string      `json:"version"`
	SemanticVersion string      `json:"semanticVersion"`
	Rules           []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	ShortDescription     sarifMessage       `json:"shortDescription"`
	DefaultConfiguration sarifConfiguration `json:"defaultConfiguration"`
	Properties           sarifRuleProps     `json:"properties,omitempty"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifRuleProps struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIF renders the result as a SARIF 2.1.0 run. Rule descriptors are
// built only for rules that actually fired. Result messages carry the
// redacted snippet, never the raw secret.
func SARIF(result *model.ScanResult, reg *rules.Registry, w io.Writer) error {
	findings := sortedFindings(result.Findings)

	ruleIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, f := range findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			ruleIDs = append(ruleIDs, f.RuleID)
		}
	}
	sort.Strings(ruleIDs)

	descriptors := make([]sarifRule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		name := id
		level := "warning"
		var tags []string
		if r, ok := reg.ByID(id); ok {
			name = r.Name
			level = severityToLevel(r.BaseSeverity)
			tags = []string{"security", "secret", string(r.Category)}
		}
		descriptors = append(descriptors, sarifRule{
			ID:                   id,
			Name:                 name,
			ShortDescription:     sarifMessage{Text: name},
			DefaultConfiguration: sarifConfiguration{Level: level},
			Properties:           sarifRuleProps{Tags: tags},
		})
	}

	results := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		results = append(results, sarifResult{
			RuleID: f.RuleID,
			Level:  severityToLevel(f.Severity),
			Message: sarifMessage{
				Text: f.RuleID + " detected: " + f.RedactedSnippet,
			},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifact{URI: f.FilePath},
					Region: sarifRegion{
						StartLine:   f.LineNumber,
						StartColumn: f.ColumnStart + 1,
						EndColumn:   f.ColumnEnd + 1,
					},
				},
			}},
		})
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:            result.Tool,
				Version:         result.ToolVersion,
				SemanticVersion: result.ToolVersion,
				Rules:           descriptors,
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&log)
}

// severityToLevel collapses the five internal severities onto SARIF's
// three levels. The mapping is deliberately lossy: critical and high
// both become "error", medium becomes "warning", low and info become
// "note". Consumers needing the full scale should use the JSON report.
func severityToLevel(s model.Severity) string {
	switch s {
	case model.SevCritical, model.SevHigh:
		return "error"
	case model.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

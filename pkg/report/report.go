// Package report renders a ScanResult as text, JSON or SARIF. Every
// renderer is a pure function over the result: reporters sort findings
// by (filePath, lineNumber, ruleId) themselves, since the scan makes no
// cross-file ordering guarantee.
package report

import (
	"fmt"
	"sort"

	"github.com/nself-org/secretscan/pkg/model"
)

// Format selects an output renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatSARIF:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid output format %q (want text, json or sarif)", s)
}

// sortedFindings returns a copy ordered for deterministic output.
func sortedFindings(in []model.Finding) []model.Finding {
	out := make([]model.Finding, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		if out[i].LineNumber != out[j].LineNumber {
			return out[i].LineNumber < out[j].LineNumber
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

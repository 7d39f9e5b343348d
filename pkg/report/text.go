package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nself-org/secretscan/pkg/model"
)

// ANSI colors, enabled only when the caller knows stdout is a terminal.
const (
	colorReset    = "\033[0m"
	colorCritical = "\033[91m"
	colorHigh     = "\033[93m"
	colorMedium   = "\033[33m"
	colorLow      = "\033[32m"
	colorInfo     = "\033[90m"
)

var severityOrder = []model.Severity{
	model.SevCritical, model.SevHigh, model.SevMedium, model.SevLow, model.SevInfo,
}

// Text renders the human-readable report: findings grouped by severity,
// a summary table, and a diagnostics section for skipped files/rules.
func Text(result *model.ScanResult, w io.Writer, color bool) error {
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	fmt.Fprintf(w, "%s %s - scan of %s\n", result.Tool, result.ToolVersion, result.RootDir)
	fmt.Fprintf(w, "run %s at %s (environment: %s)\n\n",
		result.RunID, result.Timestamp.Format("2006-01-02 15:04:05 MST"), result.Environment)

	if result.Partial {
		fmt.Fprintf(w, "WARNING: scan cut short by deadline, %d of %d discovered files scanned\n\n",
			result.FilesScanned, result.FilesDiscovered)
	}

	findings := sortedFindings(result.Findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
	}

	for _, sev := range severityOrder {
		group := make([]model.Finding, 0)
		for _, f := range findings {
			if f.Severity == sev {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(w, "%s (%d)\n", paint(severityColor(sev), strings.ToUpper(string(sev))), len(group))
		for _, f := range group {
			fmt.Fprintf(w, "  %s:%d:%d  %s  %s", f.FilePath, f.LineNumber, f.ColumnStart+1, f.RuleID, f.RedactedSnippet)
			if len(f.ReasonCodes) > 0 {
				fmt.Fprintf(w, "  [%s]", strings.Join(f.ReasonCodes, ", "))
			}
			fmt.Fprintf(w, "  (confidence: %s)\n", f.Confidence)
		}
		fmt.Fprintln(w)
	}

	// Summary table.
	fmt.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  critical  %d\n", result.Summary.Critical)
	fmt.Fprintf(w, "  high      %d\n", result.Summary.High)
	fmt.Fprintf(w, "  medium    %d\n", result.Summary.Medium)
	fmt.Fprintf(w, "  low       %d\n", result.Summary.Low)
	fmt.Fprintf(w, "  info      %d\n", result.Summary.Info)
	fmt.Fprintf(w, "  suppressed by allowlist: %d\n", result.SuppressedCount)
	fmt.Fprintf(w, "  files scanned: %d / %d discovered\n", result.FilesScanned, result.FilesDiscovered)

	if len(result.SkippedFiles) > 0 || len(result.SkippedRules) > 0 {
		fmt.Fprintln(w, "\nScan diagnostics")
		for _, sf := range result.SkippedFiles {
			fmt.Fprintf(w, "  skipped file %s (%s): %s\n", sf.Path, sf.Reason, sf.Error)
		}
		for _, sr := range result.SkippedRules {
			fmt.Fprintf(w, "  skipped rule %s on %s: %s\n", sr.RuleID, sr.Path, sr.Reason)
		}
	}

	if result.ShouldBlock {
		fmt.Fprintf(w, "\n%s\n", paint(colorCritical, "DEPLOYMENT BLOCKED"))
	} else {
		fmt.Fprintf(w, "\n%s\n", paint(colorLow, "Deployment allowed"))
	}
	return nil
}

func severityColor(s model.Severity) string {
	switch s {
	case model.SevCritical:
		return colorCritical
	case model.SevHigh:
		return colorHigh
	case model.SevMedium:
		return colorMedium
	case model.SevLow:
		return colorLow
	default:
		return colorInfo
	}
}

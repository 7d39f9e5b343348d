package model

import "time"

// Summary counts unsuppressed, visible findings per severity level.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Add increments the counter for the given severity.
func (s *Summary) Add(sev Severity) {
	switch sev {
	case SevCritical:
		s.Critical++
	case SevHigh:
		s.High++
	case SevMedium:
		s.Medium++
	case SevLow:
		s.Low++
	case SevInfo:
		s.Info++
	}
}

// Total returns the number of findings across all levels.
func (s Summary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Info
}

// SkippedFile records a file the scan could not read. These surface in the
// report's diagnostics section instead of silently vanishing.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// SkippedRule records a rule/file pair abandoned after the per-pattern
// time budget was exhausted.
type SkippedRule struct {
	Path   string `json:"path"`
	RuleID string `json:"ruleId"`
	Reason string `json:"reason"`
}

// ScanResult is the final output of a scan invocation. It is assembled
// once, handed to the policy evaluator, and never mutated afterwards.
type ScanResult struct {
	RunID           string        `json:"runId"`
	Tool            string        `json:"tool"`
	ToolVersion     string        `json:"toolVersion"`
	RootDir         string        `json:"rootDir"`
	Environment     string        `json:"environment"`
	Timestamp       time.Time     `json:"timestamp"`
	Findings        []Finding     `json:"findings"`
	Summary         Summary       `json:"summary"`
	SuppressedCount int           `json:"suppressedCount"`
	ShouldBlock     bool          `json:"shouldBlockDeployment"`
	Partial         bool          `json:"partial"`
	FilesScanned    int           `json:"filesScanned"`
	FilesDiscovered int           `json:"filesDiscovered"`
	SkippedFiles    []SkippedFile `json:"skippedFiles,omitempty"`
	SkippedRules    []SkippedRule `json:"skippedRules,omitempty"`
}

// HasSeverityAtLeast reports whether any finding is at or above min.
func (r *ScanResult) HasSeverityAtLeast(min Severity) bool {
	for _, f := range r.Findings {
		if f.Severity.Rank() >= min.Rank() {
			return true
		}
	}
	return false
}

// CountAt returns the number of findings at exactly the given severity.
func (r *ScanResult) CountAt(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

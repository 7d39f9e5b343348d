package model

// Severity is the five-level scale used across the engine. Reporters may
// collapse it (SARIF uses three levels); the engine never does.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
	SevLow      Severity = "low"
	SevInfo     Severity = "info"
)

var severityRanks = map[Severity]int{
	SevInfo:     0,
	SevLow:      1,
	SevMedium:   2,
	SevHigh:     3,
	SevCritical: 4,
}

// Rank returns the ordinal position of the severity (info=0 .. critical=4).
// Unknown severities rank below info.
func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	return -1
}

// Valid reports whether s is one of the five known levels.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Downgrade returns the severity one level lower. Info stays info.
func (s Severity) Downgrade() Severity {
	switch s {
	case SevCritical:
		return SevHigh
	case SevHigh:
		return SevMedium
	case SevMedium:
		return SevLow
	default:
		return SevInfo
	}
}

// ParseSeverity normalizes a user-supplied severity string.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(s)
	return sev, sev.Valid()
}

// Confidence expresses how likely a finding is a true positive.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Category groups rules by the kind of credential they detect.
type Category string

const (
	CategoryCredentialProvider Category = "credential-provider"
	CategoryKeyMaterial        Category = "key-material"
	CategoryWebhook            Category = "webhook"
	CategoryConnectionString   Category = "connection-string"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCredentialProvider, CategoryKeyMaterial, CategoryWebhook, CategoryConnectionString:
		return true
	}
	return false
}

// Reason codes attached to findings by the classifier.
const (
	ReasonPlaceholderSuspected       = "placeholder-suspected"
	ReasonTestCredentialInProduction = "test-credential-in-production"
)

// Finding is a classified, redacted detection. Immutable once created;
// anything in ScanResult.Findings has already survived allowlist
// suppression and the minimum-severity visibility filter.
type Finding struct {
	RuleID          string     `json:"ruleId"`
	Category        Category   `json:"category"`
	Severity        Severity   `json:"severity"`
	Confidence      Confidence `json:"confidence"`
	FilePath        string     `json:"filePath"`
	LineNumber      int        `json:"lineNumber"`
	ColumnStart     int        `json:"columnStart"`
	ColumnEnd       int        `json:"columnEnd"`
	RedactedSnippet string     `json:"redactedSnippet"`
	ReasonCodes     []string   `json:"reasonCodes,omitempty"`
}

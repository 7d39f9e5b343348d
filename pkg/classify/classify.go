package classify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nself-org/secretscan/pkg/matcher"
	"github.com/nself-org/secretscan/pkg/model"
	"github.com/nself-org/secretscan/pkg/rules"
)

// Environment flags how strictly test-mode credentials are judged.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Classifier turns raw matches into findings: de-duplication, severity
// adjustment, allowlist suppression, redaction. Deterministic for the
// same inputs; it holds no per-file state.
type Classifier struct {
	reg   *rules.Registry
	allow *Allowlist
	env   Environment
	log   *zap.SugaredLogger
}

// New builds a classifier. allow may be nil (nothing suppressed).
func New(reg *rules.Registry, allow *Allowlist, env Environment, log *zap.SugaredLogger) *Classifier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if env == "" {
		env = EnvDevelopment
	}
	return &Classifier{reg: reg, allow: allow, env: env, log: log}
}

// Classify processes raw matches in order. It returns the surviving
// findings and the number suppressed by the allowlist. Suppressed
// matches are counted, never returned.
func (c *Classifier) Classify(matches []matcher.RawMatch) ([]model.Finding, int) {
	var findings []model.Finding
	suppressed := 0

	// Identical (file, line, rule) hits collapse to one finding. Hits at
	// the same location under different rules stay distinct: different
	// rules represent different risks.
	seen := make(map[string]bool)

	for _, m := range matches {
		key := fmt.Sprintf("%s\x00%d\x00%s", m.FilePath, m.LineNumber, m.RuleID)
		if seen[key] {
			continue
		}
		seen[key] = true

		rule, ok := c.reg.ByID(m.RuleID)
		if !ok {
			c.log.Warnw("match references unknown rule", "rule", m.RuleID, "path", m.FilePath)
			continue
		}

		severity := rule.BaseSeverity
		confidence := rule.Confidence
		var reasons []string

		// 1. Placeholder heuristic: downgrade one level, confidence low.
		if isPlaceholder(m.MatchedText, m.LineText) {
			severity = severity.Downgrade()
			confidence = model.ConfidenceLow
			reasons = append(reasons, model.ReasonPlaceholderSuspected)
		}

		// 2. Test credential in a production-flagged scan: no downgrade,
		// this is a misconfiguration worth surfacing loudly.
		if c.env == EnvProduction && rule.TestMarker != nil && rule.TestMarker.MatchString(m.MatchedText) {
			reasons = append(reasons, model.ReasonTestCredentialInProduction)
		}

		// 3. Allowlist suppression, evaluated last.
		if c.allow.Suppresses(m.RuleID, m.FilePath, m.MatchedText) {
			suppressed++
			continue
		}

		findings = append(findings, model.Finding{
			RuleID:          m.RuleID,
			Category:        rule.Category,
			Severity:        severity,
			Confidence:      confidence,
			FilePath:        m.FilePath,
			LineNumber:      m.LineNumber,
			ColumnStart:     m.ColumnStart,
			ColumnEnd:       m.ColumnEnd,
			RedactedSnippet: Redact(m.MatchedText),
			ReasonCodes:     reasons,
		})
	}

	return findings, suppressed
}

package classify

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nself-org/secretscan/pkg/ignore"
)

// AllowlistEntry suppresses findings matching every dimension it
// configures. Reason is mandatory so suppressions stay auditable.
type AllowlistEntry struct {
	RuleID   string `yaml:"ruleId,omitempty"`
	PathGlob string `yaml:"pathGlob,omitempty"`
	// Pattern is a literal or regular expression that must match the
	// ENTIRE matched text, never a substring, so an allowlisted fragment
	// cannot accidentally suppress unrelated true positives.
	Pattern string `yaml:"pattern,omitempty"`
	Reason  string `yaml:"reason"`

	re *regexp.Regexp
}

// Allowlist is an immutable set of suppression entries, loaded once per
// scan and shared read-only across workers.
type Allowlist struct {
	Entries []AllowlistEntry
}

type allowlistFile struct {
	Entries []AllowlistEntry `yaml:"entries"`
}

// LoadAllowlist reads and validates a YAML allowlist file. Invalid
// syntax, a missing reason, or an entry with no matching dimension at
// all aborts the scan before any file is read.
func LoadAllowlist(path string) (*Allowlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allowlist: %w", err)
	}
	var af allowlistFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parse allowlist %s: %w", path, err)
	}
	return NewAllowlist(af.Entries)
}

// NewAllowlist validates entries and compiles their patterns.
func NewAllowlist(entries []AllowlistEntry) (*Allowlist, error) {
	for i := range entries {
		e := &entries[i]
		if e.Reason == "" {
			return nil, fmt.Errorf("allowlist entry %d: reason is required", i+1)
		}
		if e.RuleID == "" && e.PathGlob == "" && e.Pattern == "" {
			return nil, fmt.Errorf("allowlist entry %d: at least one of ruleId, pathGlob, pattern is required", i+1)
		}
		if e.Pattern != "" {
			// Anchored so the entry must account for the whole match.
			re, err := regexp.Compile("^(?:" + e.Pattern + ")$")
			if err != nil {
				return nil, fmt.Errorf("allowlist entry %d: invalid pattern: %w", i+1, err)
			}
			e.re = re
		}
	}
	return &Allowlist{Entries: entries}, nil
}

// Suppresses reports whether any entry matches the finding. Every
// dimension an entry configures must match; dimensions it omits are
// ignored. Path matching is glob-based and intentionally covers whole
// directories; text matching is whole-match only.
func (a *Allowlist) Suppresses(ruleID, relPath, matchedText string) bool {
	if a == nil {
		return false
	}
	for i := range a.Entries {
		e := &a.Entries[i]
		if e.RuleID != "" && e.RuleID != ruleID {
			continue
		}
		if e.PathGlob != "" && !ignore.PathMatch(e.PathGlob, relPath) {
			continue
		}
		if e.re != nil && !e.re.MatchString(matchedText) {
			continue
		}
		return true
	}
	return false
}

package rules

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nself-org/secretscan/pkg/model"
)

// Rule is a single detection rule: a compiled pattern plus metadata.
// Rules are immutable after registry construction and shared read-only
// across scan workers.
type Rule struct {
	ID           string
	Name         string
	Category     model.Category
	Pattern      *regexp.Regexp
	BaseSeverity model.Severity
	Confidence   model.Confidence

	// MinMatchLength/MaxMatchLength bound the matched text; zero means
	// unbounded on that side.
	MinMatchLength int
	MaxMatchLength int

	// Multiline marks block-style rules (PEM private keys). The matcher
	// treats Pattern as the block opener and tracks state until the
	// matching END line.
	Multiline bool

	// TestMarker matches provider-specific test-mode credentials
	// (e.g. Stripe sk_test_). Used by the classifier in
	// production-flagged scans.
	TestMarker *regexp.Regexp
}

// DefinitionError reports an invalid rule definition. Loading is
// all-or-nothing: a single bad entry rejects the whole file.
type DefinitionError struct {
	Path   string
	RuleID string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rule %q: %s", e.RuleID, e.Reason)
	}
	return fmt.Sprintf("rule file %s: rule %q: %s", e.Path, e.RuleID, e.Reason)
}

// Registry holds the ordered rule catalog.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry returns a registry seeded with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Rule)}
	for _, rule := range builtinRules() {
		r.rules = append(r.rules, rule)
		r.byID[rule.ID] = rule
	}
	return r
}

// All returns the rules in registration order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// ByID looks up a rule by its unique id.
func (r *Registry) ByID(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// IDs returns all rule ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		ids = append(ids, rule.ID)
	}
	sort.Strings(ids)
	return ids
}

// ruleFile is the YAML shape of an external rule file.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Category   string `yaml:"category"`
	Pattern    string `yaml:"pattern"`
	Severity   string `yaml:"severity"`
	Confidence string `yaml:"confidence"`
	MinLength  int    `yaml:"minLength"`
	MaxLength  int    `yaml:"maxLength"`
	Multiline  bool   `yaml:"multiline"`
	TestMarker string `yaml:"testMarker"`
}

// LoadFile extends the registry with rules from a YAML file. The load is
// atomic: any invalid pattern, unknown severity, unknown category, or id
// collision rejects the entire file and leaves the registry unchanged.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rule file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse rule file %s: %w", path, err)
	}

	loaded := make([]Rule, 0, len(rf.Rules))
	seen := make(map[string]bool)
	for _, e := range rf.Rules {
		if e.ID == "" {
			return &DefinitionError{Path: path, RuleID: e.ID, Reason: "missing id"}
		}
		if _, exists := r.byID[e.ID]; exists || seen[e.ID] {
			return &DefinitionError{Path: path, RuleID: e.ID, Reason: "id collides with an existing rule"}
		}
		sev, ok := model.ParseSeverity(e.Severity)
		if !ok {
			return &DefinitionError{Path: path, RuleID: e.ID, Reason: fmt.Sprintf("invalid severity %q", e.Severity)}
		}
		cat := model.Category(e.Category)
		if !cat.Valid() {
			return &DefinitionError{Path: path, RuleID: e.ID, Reason: fmt.Sprintf("invalid category %q", e.Category)}
		}
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return &DefinitionError{Path: path, RuleID: e.ID, Reason: fmt.Sprintf("pattern does not compile: %v", err)}
		}
		conf := model.Confidence(e.Confidence)
		if conf == "" {
			conf = model.ConfidenceMedium
		}
		rule := Rule{
			ID:             e.ID,
			Name:           e.Name,
			Category:       cat,
			Pattern:        re,
			BaseSeverity:   sev,
			Confidence:     conf,
			MinMatchLength: e.MinLength,
			MaxMatchLength: e.MaxLength,
			Multiline:      e.Multiline,
		}
		if e.TestMarker != "" {
			tm, err := regexp.Compile(e.TestMarker)
			if err != nil {
				return &DefinitionError{Path: path, RuleID: e.ID, Reason: fmt.Sprintf("testMarker does not compile: %v", err)}
			}
			rule.TestMarker = tm
		}
		seen[e.ID] = true
		loaded = append(loaded, rule)
	}

	for _, rule := range loaded {
		r.rules = append(r.rules, rule)
		r.byID[rule.ID] = rule
	}
	return nil
}

package matcher

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nself-org/secretscan/pkg/model"
	"github.com/nself-org/secretscan/pkg/rules"
	"github.com/nself-org/secretscan/pkg/walker"
)

// DefaultPatternBudget is the per-rule, per-file time budget. A rule that
// burns through it is abandoned for that file only and recorded as a
// skipped-rule diagnostic, so a pathological pattern cannot hang a CI
// gate.
const DefaultPatternBudget = 2 * time.Second

// endBlockRe closes a PEM private key block opened by a multiline rule.
var endBlockRe = regexp.MustCompile(`-----END[ A-Z0-9_-]{0,100}PRIVATE KEY-----`)

// RawMatch is one regex hit, before classification. LineText carries the
// surrounding source line for the classifier's context heuristics and is
// never serialized.
type RawMatch struct {
	RuleID      string
	FilePath    string
	LineNumber  int // 1-based
	ColumnStart int // byte offset within the line
	ColumnEnd   int
	MatchedText string
	LineText    string
}

// Engine applies the rule catalog to file content. It is stateless
// across files and safe for concurrent use by scan workers.
type Engine struct {
	rules  []rules.Rule
	budget time.Duration
	log    *zap.SugaredLogger
}

// New builds an engine over the registry's rules.
func New(reg *rules.Registry, budget time.Duration, log *zap.SugaredLogger) *Engine {
	if budget <= 0 {
		budget = DefaultPatternBudget
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{rules: reg.All(), budget: budget, log: log}
}

// blockState tracks an open PEM-style block for one multiline rule.
// Scoped per file; discarded when the file completes.
type blockState struct {
	open      bool
	startLine int
	startCol  int
	lines     []string
}

// Match tests every rule against the file and returns the raw hits plus
// any rules abandoned on the pattern time budget.
func (e *Engine) Match(ref *walker.FileRef) ([]RawMatch, []model.SkippedRule, error) {
	content, err := ref.Content()
	if err != nil {
		return nil, nil, err
	}

	var (
		matches   []RawMatch
		skips     []model.SkippedRule
		spent     = make(map[string]time.Duration)
		abandoned = make(map[string]bool)
		blocks    = make(map[string]*blockState)
	)

	lines := strings.Split(string(content), "\n")
	for lineIdx, line := range lines {
		lineNum := lineIdx + 1

		for i := range e.rules {
			rule := &e.rules[i]
			if abandoned[rule.ID] {
				continue
			}

			start := time.Now()
			if rule.Multiline {
				e.stepBlock(rule, blocks, line, lineNum, ref.RelPath, &matches)
			} else {
				e.matchLine(rule, line, lineNum, ref.RelPath, &matches)
			}
			spent[rule.ID] += time.Since(start)

			if spent[rule.ID] > e.budget {
				abandoned[rule.ID] = true
				delete(blocks, rule.ID)
				skips = append(skips, model.SkippedRule{
					Path: ref.RelPath, RuleID: rule.ID, Reason: "pattern time budget exceeded",
				})
				e.log.Warnw("rule abandoned for file", "rule", rule.ID, "path", ref.RelPath)
			}
		}
	}

	// An unterminated BEGIN with no END before EOF is a reportable
	// anomaly, anchored at the BEGIN line.
	for ruleID, bs := range blocks {
		if bs.open {
			matches = append(matches, RawMatch{
				RuleID:      ruleID,
				FilePath:    ref.RelPath,
				LineNumber:  bs.startLine,
				ColumnStart: bs.startCol,
				ColumnEnd:   bs.startCol + len(bs.lines[0]),
				MatchedText: strings.Join(bs.lines, "\n"),
				LineText:    bs.lines[0],
			})
		}
	}

	return matches, skips, nil
}

func (e *Engine) matchLine(rule *rules.Rule, line string, lineNum int, relPath string, out *[]RawMatch) {
	hits := rule.Pattern.FindAllStringSubmatchIndex(line, -1)
	for _, hit := range hits {
		full := line[hit[0]:hit[1]]
		if rule.MinMatchLength > 0 && len(full) < rule.MinMatchLength {
			continue
		}
		if rule.MaxMatchLength > 0 && len(full) > rule.MaxMatchLength {
			continue
		}

		// The secret value is the last capture group when the pattern
		// has one; patterns like generic-api-key capture the value
		// separately from the key name.
		text := full
		if len(hit) >= 4 && hit[len(hit)-2] >= 0 {
			text = line[hit[len(hit)-2]:hit[len(hit)-1]]
		}

		*out = append(*out, RawMatch{
			RuleID:      rule.ID,
			FilePath:    relPath,
			LineNumber:  lineNum,
			ColumnStart: hit[0],
			ColumnEnd:   hit[1],
			MatchedText: text,
			LineText:    line,
		})
	}
}

// stepBlock advances the two-state machine (outside / inside key block)
// for one multiline rule.
func (e *Engine) stepBlock(rule *rules.Rule, blocks map[string]*blockState, line string, lineNum int, relPath string, out *[]RawMatch) {
	bs := blocks[rule.ID]
	if bs == nil {
		bs = &blockState{}
		blocks[rule.ID] = bs
	}

	if !bs.open {
		loc := rule.Pattern.FindStringIndex(line)
		if loc == nil {
			return
		}
		bs.open = true
		bs.startLine = lineNum
		bs.startCol = loc[0]
		bs.lines = []string{line}
		// Degenerate single-line block: BEGIN and END on the same line.
		if endBlockRe.MatchString(line[loc[1]:]) {
			*out = append(*out, RawMatch{
				RuleID:      rule.ID,
				FilePath:    relPath,
				LineNumber:  lineNum,
				ColumnStart: loc[0],
				ColumnEnd:   len(line),
				MatchedText: line[loc[0]:],
				LineText:    line,
			})
			*bs = blockState{}
		}
		return
	}

	bs.lines = append(bs.lines, line)
	if endBlockRe.MatchString(line) {
		*out = append(*out, RawMatch{
			RuleID:      rule.ID,
			FilePath:    relPath,
			LineNumber:  bs.startLine,
			ColumnStart: bs.startCol,
			ColumnEnd:   bs.startCol + len(bs.lines[0]),
			MatchedText: strings.Join(bs.lines, "\n"),
			LineText:    bs.lines[0],
		})
		*bs = blockState{}
	}
}

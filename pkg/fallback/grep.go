// Package fallback is the grep-based degraded scanner used when the
// native engine cannot run (e.g. minimal CI images). It is deliberately
// a separate, simpler matcher/reporter pair: a coarse pattern list, no
// severity levels, no allowlist, and its own output shape. Its counts
// are not comparable with the primary engine's ScanResult and no
// reconciliation is attempted.
package fallback

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// coarsePatterns is the reduced rule set. POSIX ERE syntax, since it is
// handed to the system grep.
var coarsePatterns = []struct {
	Name string
	Expr string
}{
	{"aws-key", `(AKIA|ASIA)[A-Z0-9]{16}`},
	{"github-token", `gh[pousr]_[A-Za-z0-9]{36}`},
	{"stripe-key", `(sk|pk)_(live|test)_[A-Za-z0-9]{24,}`},
	{"private-key", `-----BEGIN [A-Z ]*PRIVATE KEY-----`},
	{"url-credentials", `[a-z+]+://[^:/@ ]+:[^@ ]+@`},
}

// Match is one grep hit: file, line and the redacted matched text.
type Match struct {
	PatternName string
	File        string
	Line        int
	Text        string
}

// Scan shells out to the system grep for each coarse pattern. grep exit
// status 1 means "no matches" and is not an error.
func Scan(ctx context.Context, root string, log *zap.SugaredLogger) ([]Match, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if _, err := exec.LookPath("grep"); err != nil {
		return nil, fmt.Errorf("fallback scanner requires grep on PATH: %w", err)
	}

	var all []Match
	for _, p := range coarsePatterns {
		// The pattern goes through -e: the private-key expression starts
		// with dashes and would otherwise be parsed as an option.
		cmd := exec.CommandContext(ctx, "grep",
			"-rnIoE",
			"--exclude-dir=.git",
			"--exclude-dir=node_modules",
			"--exclude-dir=vendor",
			"-e", p.Expr,
			"--", root,
		)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
				continue // no matches for this pattern
			}
			return nil, fmt.Errorf("grep failed for %s: %v: %s", p.Name, err, stderr.String())
		}

		matches, err := parseGrepOutput(p.Name, &stdout)
		if err != nil {
			return nil, err
		}
		log.Debugw("fallback pattern done", "pattern", p.Name, "matches", len(matches))
		all = append(all, matches...)
	}
	return all, nil
}

// parseGrepOutput reads "file:line:text" records.
func parseGrepOutput(patternName string, r io.Reader) ([]Match, error) {
	var out []Match
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 3)
		if len(parts) < 3 {
			continue
		}
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		out = append(out, Match{
			PatternName: patternName,
			File:        parts[0],
			Line:        line,
			Text:        mask(strings.TrimSpace(parts[2])),
		})
	}
	return out, scanner.Err()
}

// mask redacts the matched text. Same shape as the primary engine's
// redaction: edges visible, middle replaced.
func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Render writes the fallback report: one line per match, then a count.
func Render(matches []Match, w io.Writer) {
	for _, m := range matches {
		fmt.Fprintf(w, "%s:%d [%s] %s\n", m.File, m.Line, m.PatternName, m.Text)
	}
	fmt.Fprintf(w, "\n%d potential secrets (fallback scan; run the native engine for classified results)\n", len(matches))
}

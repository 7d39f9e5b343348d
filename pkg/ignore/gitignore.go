package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// GitIgnore holds the parsed patterns of a repository root .gitignore.
// The zero value matches nothing.
type GitIgnore struct {
	patterns []pattern
}

type pattern struct {
	expr     string
	negation bool // line started with !
	dirOnly  bool // line ended with /
	anchored bool // line contained a non-trailing /
}

// LoadGitIgnore reads <root>/.gitignore. A missing file yields an empty
// matcher, not an error.
func LoadGitIgnore(root string) *GitIgnore {
	gi := &GitIgnore{}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return gi
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		gi.add(scanner.Text())
	}
	return gi
}

func (gi *GitIgnore) add(line string) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p pattern
	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		p.anchored = true
	}

	p.expr = line
	if p.expr != "" {
		gi.patterns = append(gi.patterns, p)
	}
}

// Match reports whether relPath (relative to the .gitignore root) is
// ignored. Last matching pattern wins, as in git.
func (gi *GitIgnore) Match(relPath string, isDir bool) bool {
	if len(gi.patterns) == 0 {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	matched := false
	for _, p := range gi.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.matches(relPath) {
			matched = !p.negation
		}
	}
	return matched
}

func (p *pattern) matches(relPath string) bool {
	if p.anchored {
		return MatchGlob(p.expr, relPath)
	}

	// Unanchored patterns match the basename or any path suffix.
	if MatchGlob(p.expr, filepath.Base(relPath)) {
		return true
	}
	segs := strings.Split(relPath, "/")
	for i := range segs {
		if MatchGlob(p.expr, strings.Join(segs[i:], "/")) {
			return true
		}
	}
	return false
}

package ignore

import (
	"path/filepath"
	"strings"
)

// MatchGlob matches name against a glob pattern supporting *, ? and **.
// * and ? never match a path separator; ** matches any number of path
// segments.
func MatchGlob(pattern, name string) bool {
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, name)
	}
	return matchSegment(pattern, name)
}

// PathMatch matches a slash-separated relative path against a glob,
// with directory-level semantics: a pattern without a trailing /** still
// covers everything beneath a directory it names.
func PathMatch(pattern, relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	pattern = strings.Trim(filepath.ToSlash(pattern), "/")
	if MatchGlob(pattern, relPath) {
		return true
	}
	// "fixtures" should allowlist "fixtures/creds.txt" as well.
	return MatchGlob(pattern+"/**", relPath)
}

// matchSegment handles * and ? with backtracking. Neither wildcard
// crosses a / boundary.
func matchSegment(pattern, name string) bool {
	px, nx := 0, 0
	starPx, starNx := -1, -1

	for nx < len(name) {
		if px < len(pattern) && pattern[px] == '*' {
			starPx, starNx = px, nx
			px++
			continue
		}
		if px < len(pattern) && (pattern[px] == '?' || pattern[px] == name[nx]) {
			if pattern[px] == '?' && name[nx] == '/' {
				if starPx >= 0 {
					px = starPx + 1
					starNx++
					nx = starNx
					continue
				}
				return false
			}
			px++
			nx++
			continue
		}
		if starPx >= 0 {
			if name[starNx] == '/' {
				return false
			}
			px = starPx + 1
			starNx++
			nx = starNx
			continue
		}
		return false
	}

	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}

// matchDoublestar splits on the first ** and tries every segment
// boundary for the halves.
func matchDoublestar(pattern, name string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimRight(parts[0], "/")
	suffix := ""
	if len(parts) > 1 {
		suffix = strings.TrimLeft(parts[1], "/")
	}

	if prefix == "" && suffix == "" {
		return true
	}

	segs := strings.Split(name, "/")

	if prefix == "" {
		for i := range segs {
			if matchGlobTail(suffix, strings.Join(segs[i:], "/")) {
				return true
			}
		}
		return false
	}

	if suffix == "" {
		for i := 1; i <= len(segs); i++ {
			if matchSegment(prefix, strings.Join(segs[:i], "/")) {
				return true
			}
		}
		return false
	}

	for i := 1; i <= len(segs); i++ {
		if !matchSegment(prefix, strings.Join(segs[:i], "/")) {
			continue
		}
		for j := i; j <= len(segs); j++ {
			if matchGlobTail(suffix, strings.Join(segs[j:], "/")) {
				return true
			}
		}
	}
	return false
}

// matchGlobTail lets a suffix itself contain a further **.
func matchGlobTail(pattern, name string) bool {
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, name)
	}
	return matchSegment(pattern, name)
}

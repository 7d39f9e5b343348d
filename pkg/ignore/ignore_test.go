package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*.pyc", "cache.pyc", true},
		{"*.pyc", "dir/cache.pyc", false}, // * does not cross /
		{"?.txt", "a.txt", true},
		{"?.txt", "ab.txt", false},
		{"**/*.pem", "certs/server.pem", true},
		{"**/*.pem", "a/b/c/server.pem", true},
		{"**/*.pem", "server.go", false},
		{"build/**", "build/out/app", true},
		{"build/**", "src/build.go", false},
		{"src/**/gen_*.go", "src/api/v1/gen_types.go", true},
		{"src/**/gen_*.go", "src/api/types.go", false},
		{"**", "anything/at/all", true},
		{"exact.txt", "exact.txt", true},
		{"exact.txt", "inexact.txt", false},
	}
	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.name); got != tt.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestPathMatch(t *testing.T) {
	tests := []struct {
		pattern string
		relPath string
		want    bool
	}{
		// A bare directory name covers everything beneath it.
		{"fixtures", "fixtures/creds.txt", true},
		{"fixtures", "fixtures/nested/creds.txt", true},
		{"fixtures", "src/creds.txt", false},
		{"fixtures/**", "fixtures/nested/creds.txt", true},
		{"fixtures/**", "src/fixtures.go", false},
		{"*.env", ".env", true}, // * may match an empty prefix
		{"*.env", "prod.env", true},
		{"/testdata", "testdata/x.key", true}, // leading slash is stripped
	}
	for _, tt := range tests {
		if got := PathMatch(tt.pattern, tt.relPath); got != tt.want {
			t.Errorf("PathMatch(%q, %q) = %v, want %v", tt.pattern, tt.relPath, got, tt.want)
		}
	}
}

func TestGitIgnore(t *testing.T) {
	dir := t.TempDir()
	content := `# build outputs
*.log
/dist
node_modules/
secrets/*.pem
!secrets/public.pem
`
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	gi := LoadGitIgnore(dir)

	tests := []struct {
		relPath string
		isDir   bool
		want    bool
	}{
		{"app.log", false, true},
		{"nested/deep/app.log", false, true},
		{"app.go", false, false},
		{"dist", true, true},
		{"src/dist", true, false}, // anchored: only root-level dist
		{"node_modules", true, true},
		{"node_modules", false, false}, // dir-only pattern
		{"secrets/server.pem", false, true},
		{"secrets/public.pem", false, false}, // negated
	}
	for _, tt := range tests {
		if got := gi.Match(tt.relPath, tt.isDir); got != tt.want {
			t.Errorf("Match(%q, isDir=%v) = %v, want %v", tt.relPath, tt.isDir, got, tt.want)
		}
	}
}

func TestGitIgnoreMissingFile(t *testing.T) {
	gi := LoadGitIgnore(t.TempDir())
	if gi.Match("anything.log", false) {
		t.Error("empty gitignore matched a path")
	}
}

package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func collect(t *testing.T, w *Walker) []string {
	t.Helper()
	var got []string
	_, err := w.Walk(context.Background(), func(f *FileRef) error {
		got = append(got, f.RelPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(got)
	return got
}

func TestWalkSelectsCandidates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":              "package main",
		"config/app.yaml":      "key: value",
		"README.md":            "# readme",
		"image.png":            "not scanned",          // extension not included
		"node_modules/mod.js":  "skipped dependency",   // excluded directory
		".git/config":          "skipped vcs metadata", // excluded directory
		"notes.unknownext":     "skipped extension",
	})

	got := collect(t, New(root, Options{}))
	want := []string{"README.md", "config/app.yaml", "main.go"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("walked %v, want %v", got, want)
	}
}

func TestWalkSkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"text.txt": "plain text"})
	if err := os.WriteFile(filepath.Join(root, "blob.txt"), []byte("bin\x00ary"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := collect(t, New(root, Options{}))
	if len(got) != 1 || got[0] != "text.txt" {
		t.Errorf("walked %v, want only text.txt", got)
	}
}

func TestWalkSizeCeiling(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.txt": "ok",
		"large.txt": strings.Repeat("x", 100),
	})

	got := collect(t, New(root, Options{MaxFileSize: 50}))
	if len(got) != 1 || got[0] != "small.txt" {
		t.Errorf("walked %v, want only small.txt", got)
	}
}

func TestWalkExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.go":          "package app",
		"fixtures/creds.txt":  "AKIA...",
		"fixtures/sub/k.yaml": "key: value",
	})

	got := collect(t, New(root, Options{ExcludeGlobs: []string{"fixtures/**"}}))
	if len(got) != 1 || got[0] != "src/app.go" {
		t.Errorf("walked %v, want only src/app.go", got)
	}
}

func TestWalkHonorsGitIgnore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":     "*.env\nsecrets/\n",
		"app.go":         "package main",
		"prod.env":       "API_KEY=x",
		"secrets/k.yaml": "key: value",
	})

	got := collect(t, New(root, Options{UseGitIgnore: true}))
	if len(got) != 1 || got[0] != "app.go" {
		t.Errorf("walked %v, want only app.go", got)
	}

	// Without the option the same files are visible (.gitignore itself has
	// no scanned extension, so it never appears either way).
	got = collect(t, New(root, Options{}))
	want := []string{"app.go", "prod.env", "secrets/k.yaml"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("walked %v, want %v", got, want)
	}
}

func TestWalkDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real/app.go": "package app"})
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "loop")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	got := collect(t, New(root, Options{}))
	if len(got) != 1 || got[0] != "real/app.go" {
		t.Errorf("walked %v, want only real/app.go", got)
	}
}

func TestWalkCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"app.go": "package main"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(root, Options{})
	_, err := w.Walk(ctx, func(f *FileRef) error { return nil })
	if err == nil {
		t.Fatal("expected context error")
	}
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFileRefContentLazy(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"app.go": "package main"})

	ref := &FileRef{Path: filepath.Join(root, "app.go"), RelPath: "app.go"}
	first, err := ref.Content()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != "package main" {
		t.Errorf("content = %q", first)
	}

	// Second call serves the cached bytes even if the file is gone.
	if err := os.Remove(ref.Path); err != nil {
		t.Fatal(err)
	}
	second, err := ref.Content()
	if err != nil {
		t.Fatal(err)
	}
	if string(second) != "package main" {
		t.Errorf("cached content = %q", second)
	}
}

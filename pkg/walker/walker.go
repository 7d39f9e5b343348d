package walker

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nself-org/secretscan/pkg/ignore"
	"github.com/nself-org/secretscan/pkg/model"
)

// DefaultMaxFileSize bounds how large a file the walker will hand to the
// matcher. Anything bigger is skipped to keep memory use predictable.
const DefaultMaxFileSize = 16 << 20

// binarySniffLen is how much of the file head is inspected for a NUL
// byte before deciding the file is binary.
const binarySniffLen = 8000

// DefaultExtensions lists the file types worth scanning for credentials.
var DefaultExtensions = []string{
	".go", ".py", ".js", ".ts", ".tsx", ".jsx", ".rb", ".php", ".java",
	".cs", ".rs", ".c", ".cpp", ".sh", ".bash",
	".json", ".yaml", ".yml", ".toml", ".xml", ".ini",
	".env", ".conf", ".cfg", ".properties", ".tf", ".tfvars",
	".txt", ".md", ".sql", ".pem",
}

// excludedDirNames are never descended into, regardless of configuration:
// version-control metadata and dependency trees.
var excludedDirNames = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".next":        true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// FileRef points at one candidate file. Content is read lazily and at
// most once per scan.
type FileRef struct {
	Path    string // filesystem path
	RelPath string // slash-separated, relative to the walk root
	Size    int64

	content []byte
	readErr error
	loaded  bool
}

// Content returns the file bytes, reading them on first call.
func (f *FileRef) Content() ([]byte, error) {
	if !f.loaded {
		f.content, f.readErr = os.ReadFile(f.Path)
		f.loaded = true
	}
	return f.content, f.readErr
}

// Options configure a traversal.
type Options struct {
	// IncludeExts overrides DefaultExtensions when non-empty.
	IncludeExts []string
	// ExcludeGlobs are caller-supplied path globs (relative to root).
	ExcludeGlobs []string
	// MaxFileSize overrides DefaultMaxFileSize when positive.
	MaxFileSize int64
	// UseGitIgnore honors the root .gitignore.
	UseGitIgnore bool
	Logger       *zap.SugaredLogger
}

// Walker enumerates candidate files beneath a root. Each call to Walk is
// a fresh traversal; no state is cached across scans.
type Walker struct {
	root    string
	opts    Options
	include map[string]bool
	maxSize int64
	log     *zap.SugaredLogger
}

// New builds a walker for root.
func New(root string, opts Options) *Walker {
	exts := opts.IncludeExts
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	include := make(map[string]bool, len(exts))
	for _, e := range exts {
		include[strings.ToLower(e)] = true
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Walker{root: root, opts: opts, include: include, maxSize: maxSize, log: log}
}

// Walk invokes fn for every candidate file. Per-file access problems are
// collected and returned rather than aborting the traversal; a context
// cancellation stops the walk and is returned as the error.
func (w *Walker) Walk(ctx context.Context, fn func(*FileRef) error) ([]model.SkippedFile, error) {
	var skipped []model.SkippedFile

	var gi *ignore.GitIgnore
	if w.opts.UseGitIgnore {
		gi = ignore.LoadGitIgnore(w.root)
	}

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			skipped = append(skipped, model.SkippedFile{
				Path: path, Reason: "access", Error: walkErr.Error(),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		// Symlinks are never followed: avoids traversal cycles and
		// escapes out of the root.
		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if excludedDirNames[d.Name()] {
				return fs.SkipDir
			}
			if w.excludedByGlob(rel) {
				return fs.SkipDir
			}
			if gi != nil && gi.Match(rel, true) {
				return fs.SkipDir
			}
			return nil
		}

		if !w.include[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if w.excludedByGlob(rel) || (gi != nil && gi.Match(rel, false)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped = append(skipped, model.SkippedFile{
				Path: path, Reason: "access", Error: err.Error(),
			})
			return nil
		}
		if info.Size() > w.maxSize {
			w.log.Debugw("skipping oversized file", "path", rel, "size", info.Size())
			return nil
		}

		binary, err := isBinary(path)
		if err != nil {
			skipped = append(skipped, model.SkippedFile{
				Path: path, Reason: "access", Error: err.Error(),
			})
			return nil
		}
		if binary {
			return nil
		}

		return fn(&FileRef{Path: path, RelPath: rel, Size: info.Size()})
	})

	return skipped, err
}

func (w *Walker) excludedByGlob(rel string) bool {
	for _, g := range w.opts.ExcludeGlobs {
		if ignore.PathMatch(g, rel) {
			return true
		}
	}
	return false
}

// isBinary sniffs the file head for a NUL byte.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true, nil
		}
	}
	return false, nil
}

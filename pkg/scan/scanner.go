// Package scan orchestrates a full scan: traversal, matching,
// classification and the final blocking decision, aggregated into a
// model.ScanResult.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nself-org/secretscan/pkg/classify"
	"github.com/nself-org/secretscan/pkg/matcher"
	"github.com/nself-org/secretscan/pkg/model"
	"github.com/nself-org/secretscan/pkg/policy"
	"github.com/nself-org/secretscan/pkg/rules"
	"github.com/nself-org/secretscan/pkg/walker"
)

// ToolName identifies the engine in reports and SARIF driver metadata.
const ToolName = "secretscan"

// Scanner wires the pipeline together. Registry, allowlist and policy
// are read-only for the duration of a scan; the only synchronized state
// is the findings sink and the scanned-files counter.
type Scanner struct {
	Root        string
	Registry    *rules.Registry
	Allowlist   *classify.Allowlist
	Environment classify.Environment

	// MinSeverity is a visibility filter: findings below it are dropped
	// from the result entirely, before the policy evaluator runs.
	MinSeverity model.Severity

	Policy        policy.Config
	Workers       int
	WalkOptions   walker.Options
	PatternBudget time.Duration
	Version       string
	Logger        *zap.SugaredLogger
}

// Run executes the scan. Per-file problems become diagnostics on the
// result; only configuration-level failures (unreadable root) are
// returned as errors. When the context expires mid-scan, in-flight
// files finish, no new files are dispatched, and the result is marked
// partial.
func (s *Scanner) Run(ctx context.Context) (*model.ScanResult, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path %s is not a directory", s.Root)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	eng := matcher.New(s.Registry, s.PatternBudget, log)
	cls := classify.New(s.Registry, s.Allowlist, s.Environment, log)
	w := walker.New(s.Root, s.WalkOptions)

	var (
		mu           sync.Mutex // guards the aggregation sink only
		findings     []model.Finding
		suppressed   int
		skippedFiles []model.SkippedFile
		skippedRules []model.SkippedRule

		filesScanned    atomic.Int64
		filesDiscovered atomic.Int64
		partial         atomic.Bool
	)

	files := make(chan *walker.FileRef)
	g := new(errgroup.Group)

	// Producer: a fresh traversal per scan. On deadline expiry the walk
	// stops and the channel closes; workers drain what was already
	// dispatched.
	g.Go(func() error {
		defer close(files)
		walkSkipped, walkErr := w.Walk(ctx, func(ref *walker.FileRef) error {
			filesDiscovered.Add(1)
			select {
			case files <- ref:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		mu.Lock()
		skippedFiles = append(skippedFiles, walkSkipped...)
		mu.Unlock()
		if walkErr != nil {
			if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
				partial.Store(true)
				return nil
			}
			return walkErr
		}
		return nil
	})

	// Workers: matching and classification stay lock-free; only the
	// per-file batch append takes the lock.
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for ref := range files {
				raw, ruleSkips, err := eng.Match(ref)
				if err != nil {
					mu.Lock()
					skippedFiles = append(skippedFiles, model.SkippedFile{
						Path: ref.RelPath, Reason: "read", Error: err.Error(),
					})
					mu.Unlock()
					continue
				}

				fileFindings, fileSuppressed := cls.Classify(raw)
				fileFindings = s.filterVisible(fileFindings)

				mu.Lock()
				findings = append(findings, fileFindings...)
				suppressed += fileSuppressed
				skippedRules = append(skippedRules, ruleSkips...)
				mu.Unlock()
				filesScanned.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rootDir := s.Root
	if abs, err := filepath.Abs(s.Root); err == nil {
		rootDir = abs
	}

	result := &model.ScanResult{
		RunID:           uuid.NewString(),
		Tool:            ToolName,
		ToolVersion:     s.Version,
		RootDir:         rootDir,
		Environment:     string(s.Environment),
		Timestamp:       time.Now().UTC(),
		Findings:        findings,
		SuppressedCount: suppressed,
		Partial:         partial.Load(),
		FilesScanned:    int(filesScanned.Load()),
		FilesDiscovered: int(filesDiscovered.Load()),
		SkippedFiles:    skippedFiles,
		SkippedRules:    skippedRules,
	}
	for _, f := range findings {
		result.Summary.Add(f.Severity)
	}
	result.ShouldBlock = policy.Evaluate(findings, s.Policy)

	log.Debugw("scan complete",
		"files", result.FilesScanned,
		"findings", len(result.Findings),
		"suppressed", result.SuppressedCount,
		"partial", result.Partial,
	)
	return result, nil
}

// filterVisible drops findings below the minimum severity. The filter
// runs after allowlist suppression so summary counts reflect genuinely
// visible findings.
func (s *Scanner) filterVisible(in []model.Finding) []model.Finding {
	if s.MinSeverity == "" || s.MinSeverity == model.SevInfo {
		return in
	}
	out := in[:0]
	for _, f := range in {
		if f.Severity.Rank() >= s.MinSeverity.Rank() {
			out = append(out, f)
		}
	}
	return out
}

// Package policy converts classified findings into the deployment
// gating decision. It sees only visible, unsuppressed findings: the
// minimum-severity filter and allowlist run before it.
package policy

import (
	"fmt"

	"github.com/nself-org/secretscan/pkg/model"
)

// BlockMode selects the gating semantics.
type BlockMode string

const (
	// BlockAuto blocks on critical always, on high/medium per config.
	BlockAuto BlockMode = "auto"
	// BlockAlways blocks on any remaining finding of any severity.
	BlockAlways BlockMode = "always"
	// BlockNever is the explicit report-only override.
	BlockNever BlockMode = "never"
)

// ParseBlockMode validates a user-supplied mode string.
func ParseBlockMode(s string) (BlockMode, error) {
	switch BlockMode(s) {
	case BlockAuto, BlockAlways, BlockNever:
		return BlockMode(s), nil
	}
	return "", fmt.Errorf("invalid block mode %q (want auto, always or never)", s)
}

// Config holds the blocking policy knobs.
type Config struct {
	Mode          BlockMode
	BlockOnHigh   bool // default true
	BlockOnMedium bool // default false
}

// DefaultConfig returns the auto policy with its documented defaults.
func DefaultConfig() Config {
	return Config{Mode: BlockAuto, BlockOnHigh: true, BlockOnMedium: false}
}

// Evaluate decides whether the scan blocks deployment.
func Evaluate(findings []model.Finding, cfg Config) bool {
	switch cfg.Mode {
	case BlockNever:
		return false
	case BlockAlways:
		return len(findings) > 0
	}

	for _, f := range findings {
		switch f.Severity {
		case model.SevCritical:
			return true
		case model.SevHigh:
			if cfg.BlockOnHigh {
				return true
			}
		case model.SevMedium:
			if cfg.BlockOnMedium {
				return true
			}
		}
	}
	return false
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func resetScanFlags() {
	blockModeFlag = "auto"
	envFlag = "development"
	workersFlag = 0
	for _, name := range []string{"block-mode", "env", "workers"} {
		if f := scanCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

func TestApplyEnvDefaults(t *testing.T) {
	resetScanFlags()
	t.Setenv("SECRETSCAN_BLOCK_MODE", "never")
	t.Setenv("SECRETSCAN_ENV", "production")
	t.Setenv("SECRETSCAN_WORKERS", "3")

	applyEnvDefaults(scanCmd)

	if blockModeFlag != "never" {
		t.Errorf("block mode = %q, want never", blockModeFlag)
	}
	if envFlag != "production" {
		t.Errorf("env = %q, want production", envFlag)
	}
	if workersFlag != 3 {
		t.Errorf("workers = %d, want 3", workersFlag)
	}
}

func TestApplyEnvDefaultsFlagWins(t *testing.T) {
	resetScanFlags()
	t.Setenv("SECRETSCAN_BLOCK_MODE", "never")

	if err := scanCmd.Flags().Set("block-mode", "always"); err != nil {
		t.Fatal(err)
	}
	defer resetScanFlags()

	applyEnvDefaults(scanCmd)

	if blockModeFlag != "always" {
		t.Errorf("block mode = %q, explicit flag must win over the environment", blockModeFlag)
	}
}

func TestApplyEnvDefaultsIgnoresBadWorkers(t *testing.T) {
	resetScanFlags()
	t.Setenv("SECRETSCAN_WORKERS", "not-a-number")

	applyEnvDefaults(scanCmd)

	if workersFlag != 0 {
		t.Errorf("workers = %d, want 0 for an unparseable value", workersFlag)
	}
}

func TestDotEnvFeedsScanDefaults(t *testing.T) {
	resetScanFlags()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRETSCAN_BLOCK_MODE=never\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	os.Unsetenv("SECRETSCAN_BLOCK_MODE")
	defer os.Unsetenv("SECRETSCAN_BLOCK_MODE")

	// Same sequence Execute runs: .env first, then flag resolution.
	if err := godotenv.Load(); err != nil {
		t.Fatal(err)
	}
	applyEnvDefaults(scanCmd)

	if blockModeFlag != "never" {
		t.Errorf("block mode = %q, want never from .env", blockModeFlag)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nself-org/secretscan/pkg/classify"
	"github.com/nself-org/secretscan/pkg/model"
	"github.com/nself-org/secretscan/pkg/policy"
	"github.com/nself-org/secretscan/pkg/report"
	"github.com/nself-org/secretscan/pkg/rules"
	"github.com/nself-org/secretscan/pkg/scan"
	"github.com/nself-org/secretscan/pkg/walker"
)

var (
	formatFlag      string
	blockModeFlag   string
	minSeverityFlag string
	envFlag         string
	allowlistFlag   string
	rulesFileFlag   string
	outputFlag      string
	workersFlag     int
	excludeFlag     []string
	noGitIgnore     bool
	maxFileSize     int64
	deadlineFlag    time.Duration
	blockOnHigh     bool
	blockOnMedium   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree for hardcoded credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&formatFlag, "format", "f", "text", "output format (text, json, sarif)")
	f.StringVar(&blockModeFlag, "block-mode", "auto", "blocking policy (auto, always, never); env SECRETSCAN_BLOCK_MODE")
	f.StringVar(&minSeverityFlag, "min-severity", "info", "hide findings below this severity")
	f.StringVar(&envFlag, "env", string(classify.EnvDevelopment), "scan environment (development, production); env SECRETSCAN_ENV")
	f.StringVar(&allowlistFlag, "allowlist", "", "path to a YAML allowlist file")
	f.StringVar(&rulesFileFlag, "rules", "", "path to an additional YAML rule file")
	f.StringVarP(&outputFlag, "output", "o", "", "write the report to a file instead of stdout")
	f.IntVar(&workersFlag, "workers", 0, "number of scan workers (0 = CPU count); env SECRETSCAN_WORKERS")
	f.StringSliceVar(&excludeFlag, "exclude", nil, "path globs to exclude (repeatable)")
	f.BoolVar(&noGitIgnore, "no-gitignore", false, "do not honor the root .gitignore")
	f.Int64Var(&maxFileSize, "max-file-size", 0, "per-file size ceiling in bytes (default 16MiB)")
	f.DurationVar(&deadlineFlag, "deadline", 0, "overall scan deadline (0 = none)")
	f.BoolVar(&blockOnHigh, "block-on-high", true, "in auto mode, block on high findings")
	f.BoolVar(&blockOnMedium, "block-on-medium", false, "in auto mode, block on medium findings")
	rootCmd.AddCommand(scanCmd)
}

// applyEnvDefaults fills flags from SECRETSCAN_* variables when they
// were not set on the command line. It runs at scan time, after Execute
// has loaded the optional .env file, so flag registration order cannot
// shadow environment configuration.
func applyEnvDefaults(cmd *cobra.Command) {
	if !cmd.Flags().Changed("block-mode") {
		blockModeFlag = envDefault("SECRETSCAN_BLOCK_MODE", blockModeFlag)
	}
	if !cmd.Flags().Changed("env") {
		envFlag = envDefault("SECRETSCAN_ENV", envFlag)
	}
	if !cmd.Flags().Changed("workers") {
		if v := os.Getenv("SECRETSCAN_WORKERS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				workersFlag = n
			}
		}
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return err
	}
	defer logger.Sync()

	applyEnvDefaults(cmd)

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	mode, err := policy.ParseBlockMode(blockModeFlag)
	if err != nil {
		return err
	}
	minSev, ok := model.ParseSeverity(minSeverityFlag)
	if !ok {
		return fmt.Errorf("invalid minimum severity %q", minSeverityFlag)
	}
	environment := classify.Environment(envFlag)
	if environment != classify.EnvDevelopment && environment != classify.EnvProduction {
		return fmt.Errorf("invalid environment %q (want development or production)", envFlag)
	}

	registry := rules.NewRegistry()
	if rulesFileFlag != "" {
		if err := registry.LoadFile(rulesFileFlag); err != nil {
			return err
		}
	}

	var allowlist *classify.Allowlist
	if allowlistFlag != "" {
		allowlist, err = classify.LoadAllowlist(allowlistFlag)
		if err != nil {
			return err
		}
	}

	scanner := &scan.Scanner{
		Root:        root,
		Registry:    registry,
		Allowlist:   allowlist,
		Environment: environment,
		MinSeverity: minSev,
		Policy: policy.Config{
			Mode:          mode,
			BlockOnHigh:   blockOnHigh,
			BlockOnMedium: blockOnMedium,
		},
		Workers: workersFlag,
		WalkOptions: walker.Options{
			ExcludeGlobs: excludeFlag,
			MaxFileSize:  maxFileSize,
			UseGitIgnore: !noGitIgnore,
			Logger:       logger,
		},
		Version: AppVersion,
		Logger:  logger,
	}

	ctx := context.Background()
	if deadlineFlag > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadlineFlag)
		defer cancel()
	}

	interactive := isTTY() && !quietMode && format == report.FormatText

	var spinner *pterm.SpinnerPrinter
	if interactive {
		spinner, _ = pterm.DefaultSpinner.
			WithWriter(os.Stderr).
			Start("Scanning " + root)
	}

	result, err := scanner.Run(ctx)
	if spinner != nil {
		if err != nil {
			spinner.Fail("scan failed")
		} else {
			spinner.Success(fmt.Sprintf("Scanned %d files", result.FilesScanned))
		}
	}
	if err != nil {
		return err
	}

	if err := render(result, format, registry); err != nil {
		return err
	}

	if interactive {
		printSummaryTable(result)
	}

	if result.ShouldBlock {
		os.Exit(exitBlocked)
	}
	return nil
}

// render writes the report. A failing output file is not fatal while
// stdout is still available: the report falls back to stdout and the
// failure is logged.
func render(result *model.ScanResult, format report.Format, registry *rules.Registry) error {
	var w io.Writer = os.Stdout
	var f *os.File
	if outputFlag != "" {
		var err error
		f, err = os.Create(outputFlag)
		if err != nil {
			logger.Errorw("cannot write report file, falling back to stdout", "path", outputFlag, "error", err)
		} else {
			defer f.Close()
			w = f
		}
	}

	color := f == nil && isTTY() && format == report.FormatText
	switch format {
	case report.FormatJSON:
		return report.JSON(result, w)
	case report.FormatSARIF:
		return report.SARIF(result, registry, w)
	default:
		return report.Text(result, w, color)
	}
}

func printSummaryTable(result *model.ScanResult) {
	data := pterm.TableData{
		{"severity", "count"},
		{"critical", strconv.Itoa(result.Summary.Critical)},
		{"high", strconv.Itoa(result.Summary.High)},
		{"medium", strconv.Itoa(result.Summary.Medium)},
		{"low", strconv.Itoa(result.Summary.Low)},
		{"info", strconv.Itoa(result.Summary.Info)},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSDF/internal/metrics"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/analyzer"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/pair"
)

var (
	// Global flags
	verbose      bool
	catalogPath  string
	delayPattern string
	excludes     []string

	// Analysis flags
	aligned     bool
	metricsPath string
)

var rootCmd = &cobra.Command{
	Use:   "sdfscan <folder_path>",
	Short: "Netlist and SDF timing annex scanner",
	Long: `Scan a folder for Verilog netlists (.v) and SDF timing annex files (.sdf)
that share a base name, detect flip-flops and lookup tables in each pair,
extract IOPATH delays and print a schematic of the signal path.

Examples:
  sdfscan designs/                          # Analyze every pair in designs/
  sdfscan --aligned designs/                # Column-aligned schematics
  sdfscan --pattern triple -v designs/      # Min:typ:max aware, with pin listing
  sdfscan pairs designs/                    # List matched base names
  sdfscan export adder.v adder.sdf          # Write board_design.json`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runAnalyze,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "",
		"YAML keyword catalog (default: built-in flip-flop and LUT patterns)")
	rootCmd.PersistentFlags().StringVar(&delayPattern, "pattern", "",
		`delay pattern: "first", "triple" or a regular expression with a capture group`)
	rootCmd.PersistentFlags().StringArrayVar(&excludes, "exclude", nil,
		"gitignore-style pattern of files to skip (repeatable)")

	rootCmd.Flags().BoolVar(&aligned, "aligned", false, "align schematic columns")
	rootCmd.Flags().StringVar(&metricsPath, "metrics", "",
		"write analysis counters to this file in Prometheus textfile format")
}

// newLogger logs diagnostics to stderr, at debug level when verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the catalog and delay pattern from the global flags.
func loadConfig() (*catalog.Config, error) {
	cfg := catalog.DefaultConfig()
	cfg.CatalogPath = catalogPath
	cfg.DelayPattern = delayPattern
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: sdfscan <folder_path>")
		return nil
	}
	dir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	if metricsPath != "" {
		reg = metrics.NewRegistry()
	}

	a := &analyzer.Analyzer{
		Catalog: cfg.Catalog(),
		Delay:   cfg.Delay(),
		Out:     os.Stdout,
		Logger:  slog.Default(),
		Metrics: reg,
		Aligned: aligned,
		Verbose: verbose,
		Exclude: excludes,
	}

	if verbose {
		fmt.Printf("Analyzing folder: %s (delay pattern: %s)\n", dir, cfg.Delay().Name)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.AnalyzeDir(ctx, dir); err != nil {
		if errors.Is(err, pair.ErrNotDirectory) {
			fmt.Printf("Error: %s is not a valid directory.\n", dir)
			return nil
		}
		return err
	}

	if reg != nil {
		if err := reg.WriteTextfile(metricsPath); err != nil {
			return err
		}
		slog.Debug("metrics written", "path", metricsPath)
	}
	return nil
}

// Package cli implements the munge command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/output"
	"github.com/vegasq/munge/pipeline"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// RunOptions holds the flags of the root command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	Config     pipeline.Config
}

// NewRootCommand creates the root command for the munge CLI.
func NewRootCommand() *cobra.Command {
	rootOpts := &RootOptions{}
	opts := &RunOptions{RootOptions: rootOpts, Config: pipeline.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "munge [flags] <input> <output>",
		Short: "Filter, aggregate and transform tabular files",
		Long: `munge reads a table (csv, tsv, json, jsonl, excel, parquet or sqlite), keeps
the rows matching --filter and --match, optionally groups them with
--group-by/--agg-column/--agg-function, adds columns with --transform and
writes the result in any supported format.

Stages always run in that order. Transforms run left to right and each one
sees the columns added before it.

Examples:
  munge people.csv adults.csv --filter "age >= 18"
  munge sales.csv totals.json --output-format json \
      --group-by region --group-by year --agg-column amount --agg-function sum
  munge in.csv out.tsv --delimiter ";" --output-format tsv
  munge in.xlsx out.csv --input-format excel --transform "total=price*qty" --transform "vat=total*0.2"
  munge --config job.yaml`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(2)(cmd, args); err != nil {
				return WrapExitError(ExitUsage, "invalid arguments", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(rootOpts, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, args)
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return WrapExitError(ExitUsage, "invalid flags", err)
	})

	// Global flags
	cmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "verbose output")

	cfg := &opts.Config
	flags := cmd.Flags()
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML job file; flags given explicitly override it")
	flags.StringVar(&cfg.InputFormat, "input-format", cfg.InputFormat, "input format ("+formatList(true)+")")
	flags.StringVar(&cfg.OutputFormat, "output-format", cfg.OutputFormat, "output format ("+formatList(false)+")")
	flags.StringVar(&cfg.InputCompression, "input-compression", cfg.InputCompression, "input compression ("+compressionList()+")")
	flags.StringVar(&cfg.OutputCompression, "output-compression", cfg.OutputCompression, "output compression ("+compressionList()+")")
	flags.StringVar(&cfg.Delimiter, "delimiter", "", "input field delimiter for csv/tsv, also used for csv output (single character or \"tab\")")
	flags.StringVar(&cfg.OutputDelimiter, "output-delimiter", "", "output field delimiter for csv/tsv (default: --delimiter for csv, tab for tsv)")
	flags.StringVar(&cfg.Sheet, "sheet", "", "spreadsheet sheet to read or write")
	flags.StringVar(&cfg.Table, "table", "", "sqlite table to read or write (default \"data\")")
	flags.StringVar(&cfg.Filter, "filter", "", "keep rows where the expression is true (e.g. \"age > 30 and city == 'Paris'\")")
	flags.StringVar(&cfg.Match, "match", "", "keep rows matching a bexpr expression (e.g. 'status == \"active\"')")
	flags.StringArrayVar(&cfg.GroupBy, "group-by", nil, "column to group by (repeat for several; commas are part of the name)")
	flags.StringVar(&cfg.AggColumn, "agg-column", "", "column to aggregate")
	flags.StringVar(&cfg.AggFunction, "agg-function", "", "aggregation function (sum|avg|max|min)")
	flags.StringArrayVar(&cfg.Transforms, "transform", nil, "add a column: name=expression (repeatable, applied in order)")
	flags.BoolVar(&cfg.SafeCSV, "safe-csv", false, "escape cells that spreadsheets would run as formulas")

	// Add subcommands
	cmd.AddCommand(NewSchemaCommand(rootOpts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func setupLogging(opts *RootOptions, w io.Writer) {
	// Configure logging based on verbose flag
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func runPipeline(cmd *cobra.Command, opts *RunOptions, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), opts, args)
	if err != nil {
		return err
	}

	plan, err := pipeline.Compile(cfg)
	if err != nil {
		return err
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := plan.Run(ctx); err != nil {
		return err
	}

	// Keep stdout clean when it carries the data
	w := cmd.OutOrStdout()
	if cfg.Output == output.Stdout {
		w = cmd.ErrOrStderr()
	}
	fmt.Fprintf(w, "Processed data written to %s\n", cfg.Output)
	return nil
}

// resolveConfig merges the config file, the flags that were set explicitly
// and the positional paths, in increasing priority.
func resolveConfig(flags *pflag.FlagSet, opts *RunOptions, args []string) (pipeline.Config, error) {
	if len(args) == 1 {
		return pipeline.Config{}, NewExitError(ExitUsage, "expected both <input> and <output>")
	}

	cfg := opts.Config
	if opts.ConfigPath != "" {
		fileCfg, err := pipeline.LoadConfig(opts.ConfigPath)
		if err != nil {
			return pipeline.Config{}, err
		}
		flags.Visit(func(f *pflag.Flag) {
			overrideFlag(&fileCfg, &opts.Config, f.Name)
		})
		cfg = fileCfg
	}

	if len(args) == 2 {
		cfg.Input, cfg.Output = args[0], args[1]
	}
	if cfg.Input == "" || cfg.Output == "" {
		return pipeline.Config{}, NewExitError(ExitUsage, "input and output paths are required (as arguments or in --config)")
	}
	return cfg, nil
}

// overrideFlag copies the setting behind flag name from src to dst
func overrideFlag(dst, src *pipeline.Config, name string) {
	switch name {
	case "input-format":
		dst.InputFormat = src.InputFormat
	case "output-format":
		dst.OutputFormat = src.OutputFormat
	case "input-compression":
		dst.InputCompression = src.InputCompression
	case "output-compression":
		dst.OutputCompression = src.OutputCompression
	case "delimiter":
		dst.Delimiter = src.Delimiter
	case "output-delimiter":
		dst.OutputDelimiter = src.OutputDelimiter
	case "sheet":
		dst.Sheet = src.Sheet
	case "table":
		dst.Table = src.Table
	case "filter":
		dst.Filter = src.Filter
	case "match":
		dst.Match = src.Match
	case "group-by":
		dst.GroupBy = src.GroupBy
	case "agg-column":
		dst.AggColumn = src.AggColumn
	case "agg-function":
		dst.AggFunction = src.AggFunction
	case "transform":
		dst.Transforms = src.Transforms
	case "safe-csv":
		dst.SafeCSV = src.SafeCSV
	}
}

func formatList(readable bool) string {
	names := make([]string, 0, len(munge.Formats))
	for _, f := range munge.Formats {
		if readable && !f.Readable() {
			continue
		}
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}

func compressionList() string {
	names := make([]string, 0, len(munge.Compressions))
	for _, c := range munge.Compressions {
		names = append(names, string(c))
	}
	return strings.Join(names, "|")
}

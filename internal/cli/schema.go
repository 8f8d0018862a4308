package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
	"github.com/vegasq/munge/output"
	"github.com/vegasq/munge/pipeline"
	"github.com/vegasq/munge/reader"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	InputFormat      string
	InputCompression string
	Delimiter        string
	Sheet            string
	Table            string
	Format           string
}

// NewSchemaCommand creates the schema subcommand.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema <input>",
		Short: "Show the columns of an input file",
		Long: `Read an input file and print one line per column: the value kinds seen,
whether any row lacks a value, and how many rows carry it.

Examples:
  munge schema people.csv
  munge schema events.jsonl.gz --input-format jsonl --input-compression gzip
  munge schema data.db --input-format sqlite --table events --format json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return WrapExitError(ExitUsage, "invalid arguments", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.InputFormat, "input-format", string(munge.FormatCSV), "input format ("+formatList(true)+")")
	cmd.Flags().StringVar(&opts.InputCompression, "input-compression", string(munge.CompressionNone), "input compression ("+compressionList()+")")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", "", "field delimiter for csv/tsv")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "spreadsheet sheet to read")
	cmd.Flags().StringVar(&opts.Table, "table", "", "sqlite table to read")
	cmd.Flags().StringVar(&opts.Format, "format", string(munge.FormatTable), "how to print the schema (table|csv|json|jsonl)")

	return cmd
}

func runSchema(cmd *cobra.Command, opts *SchemaOptions, path string) error {
	format, err := munge.ParseFormat(opts.InputFormat)
	if err != nil {
		return err
	}
	compression, err := munge.ParseCompression(opts.InputCompression)
	if err != nil {
		return err
	}
	delimiter, err := pipeline.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}
	printFormat, err := munge.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	// Fail on the print format before reading a potentially large input
	formatter, err := output.NewFormatter(printFormat, cmd.OutOrStdout(), output.Options{})
	if err != nil {
		return err
	}

	ds, err := reader.ReadFile(path, format, reader.Options{
		Delimiter:   delimiter,
		Sheet:       opts.Sheet,
		Table:       opts.Table,
		Compression: compression,
	})
	if err != nil {
		return err
	}

	return formatter.Format(schemaDataset(reader.ExtractSchemaInfo(ds)))
}

// schemaDataset lays the schema out as rows so any stream formatter can print it
func schemaDataset(infos []reader.SchemaInfo) dataset.Dataset {
	ds := make(dataset.Dataset, 0, len(infos))
	for _, info := range infos {
		ds = append(ds, dataset.RowOf(
			"column", info.Name,
			"kinds", strings.Join(info.Kinds, ","),
			"nullable", info.Nullable,
			"rows", info.Rows,
		))
	}
	return ds
}

// Package pipeline runs a munge job: read, filter, match, aggregate,
// transform, write.
package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
	"github.com/vegasq/munge/output"
	"github.com/vegasq/munge/query"
	"github.com/vegasq/munge/reader"
)

// Plan is a validated Config with every expression compiled
type Plan struct {
	input     string
	output    string
	inFormat  munge.Format
	outFormat munge.Format
	reader    reader.Reader
	writeOpts output.Options

	filter     *query.Expression
	matcher    *query.Matcher
	aggregate  *query.AggregateSpec
	transforms []query.Assignment

	logger *slog.Logger
}

// Stats counts the rows read from the input and written to the output
type Stats struct {
	Read    int
	Written int
}

// stage is one dataset-to-dataset step of a run. columns maps the header
// before the stage to the header after it; nil keeps it.
type stage struct {
	name    string
	run     func(dataset.Dataset) (dataset.Dataset, error)
	columns func([]string) []string
}

// Compile validates cfg and compiles its expressions. Nothing is read or
// written.
func Compile(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Validate already parsed these
	inFormat, _ := munge.ParseFormat(cfg.InputFormat)
	outFormat, _ := munge.ParseFormat(cfg.OutputFormat)
	inCompression, _ := munge.ParseCompression(cfg.InputCompression)
	outCompression, _ := munge.ParseCompression(cfg.OutputCompression)
	delimiter, _ := cfg.delimiter()
	outDelimiter, _ := cfg.outputDelimiter(outFormat)

	r, err := reader.New(inFormat, reader.Options{
		Delimiter:   delimiter,
		Sheet:       cfg.Sheet,
		Table:       cfg.Table,
		Compression: inCompression,
	})
	if err != nil {
		return nil, err
	}

	writeOpts := output.Options{
		Delimiter:   outDelimiter,
		Sheet:       cfg.Sheet,
		Table:       cfg.Table,
		Compression: outCompression,
		SafeCSV:     cfg.SafeCSV,
	}
	if err := output.CheckTarget(cfg.Output, outFormat, writeOpts); err != nil {
		return nil, err
	}

	p := &Plan{
		input:     cfg.Input,
		output:    cfg.Output,
		inFormat:  inFormat,
		outFormat: outFormat,
		reader:    r,
		writeOpts: writeOpts,
		logger:    slog.Default(),
	}

	if cfg.Filter != "" {
		if p.filter, err = query.Compile(cfg.Filter); err != nil {
			return nil, err
		}
	}
	if cfg.Match != "" {
		if p.matcher, err = query.NewMatcher(cfg.Match); err != nil {
			return nil, err
		}
	}
	if cfg.Aggregates() {
		fn, _ := query.ParseAggFunc(cfg.AggFunction)
		p.aggregate = &query.AggregateSpec{
			GroupBy:  cfg.GroupBy,
			Column:   cfg.AggColumn,
			Function: fn,
		}
	}
	if p.transforms, err = query.ParseAssignments(cfg.Transforms); err != nil {
		return nil, err
	}

	return p, nil
}

// WithLogger sets the logger stage progress is reported to
func (p *Plan) WithLogger(logger *slog.Logger) *Plan {
	p.logger = logger
	return p
}

// Output returns the path the plan writes to
func (p *Plan) Output() string {
	return p.output
}

// stages lists the configured steps in their fixed order
func (p *Plan) stages() []stage {
	var stages []stage
	if p.filter != nil {
		stages = append(stages, stage{name: "filter", run: func(ds dataset.Dataset) (dataset.Dataset, error) {
			return query.ApplyFilter(ds, p.filter)
		}})
	}
	if p.matcher != nil {
		stages = append(stages, stage{name: "match", run: func(ds dataset.Dataset) (dataset.Dataset, error) {
			return query.ApplyMatch(ds, p.matcher)
		}})
	}
	if p.aggregate != nil {
		stages = append(stages, stage{
			name: "aggregate",
			run: func(ds dataset.Dataset) (dataset.Dataset, error) {
				return query.ApplyGroupByAndAggregate(ds, *p.aggregate)
			},
			columns: func([]string) []string {
				return append(slices.Clone(p.aggregate.GroupBy), p.aggregate.OutputColumn())
			},
		})
	}
	if len(p.transforms) > 0 {
		stages = append(stages, stage{
			name: "transform",
			run: func(ds dataset.Dataset) (dataset.Dataset, error) {
				return query.ApplyTransforms(ds, p.transforms)
			},
			columns: func(columns []string) []string {
				out := slices.Clone(columns)
				for _, a := range p.transforms {
					if !slices.Contains(out, a.Name) {
						out = append(out, a.Name)
					}
				}
				return out
			},
		})
	}
	return stages
}

// Run executes the plan. The context is checked between stages; once it is
// cancelled nothing more is written.
func (p *Plan) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	start := time.Now()

	p.logger.Debug("reading input", "path", p.input, "format", p.inFormat)
	ds, columns, err := reader.ReadWithHeader(p.reader, p.input)
	if err != nil {
		return stats, err
	}
	stats.Read = len(ds)
	p.logger.Info("input read", "path", p.input, "rows", stats.Read)

	for _, s := range p.stages() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rowsIn := len(ds)
		if ds, err = s.run(ds); err != nil {
			return stats, err
		}
		if s.columns != nil {
			columns = s.columns(columns)
		}
		p.logger.Debug("stage done", "stage", s.name, "rows_in", rowsIn, "rows_out", len(ds))
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	// The header only matters when no rows are left to carry it
	opts := p.writeOpts
	opts.Columns = columns
	if err := output.WriteFile(ctx, p.output, p.outFormat, ds, opts); err != nil {
		return stats, err
	}
	stats.Written = len(ds)
	p.logger.Info("output written",
		"path", p.output,
		"format", p.outFormat,
		"rows", stats.Written,
		"duration", time.Since(start),
	)

	return stats, nil
}

// Run compiles cfg and runs it with the default logger
func Run(ctx context.Context, cfg Config) (Stats, error) {
	p, err := Compile(cfg)
	if err != nil {
		return Stats{}, err
	}
	return p.Run(ctx)
}

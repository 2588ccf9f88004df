package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"mmmsynth/domain/core"
	"mmmsynth/domain/mmm"
	"mmmsynth/internal"
	"mmmsynth/internal/analysis/chart"
	"mmmsynth/internal/analysis/describe"
	"mmmsynth/internal/analysis/ols"
	"mmmsynth/internal/config"
	"mmmsynth/internal/errors"
	"mmmsynth/internal/synth"
	"mmmsynth/ports"
)

// Pipeline runs the generate, export, fit and report stages in order
type Pipeline struct {
	cfg    *config.Config
	logger *internal.Logger
	writer ports.TableWriter
	reader ports.TableReader
	ledger ports.RunLedger
	now    func() time.Time
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(cfg *config.Config, logger *internal.Logger, writer ports.TableWriter, reader ports.TableReader) *Pipeline {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		writer: writer,
		reader: reader,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp regression reports
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// WithLedger records every completed run in l
func (p *Pipeline) WithLedger(l ports.RunLedger) *Pipeline {
	p.ledger = l
	return p
}

// RunResult is what one full pipeline run produced
type RunResult struct {
	RunID       core.RunID
	Table       *mmm.Table
	Results     *ols.Results
	Summaries   []describe.Summary
	OutputPath  string
	Fingerprint core.Fingerprint
}

// GeneratorSettings converts the loaded configuration into generator input
func GeneratorSettings(g config.GeneratorConfig) (synth.Config, error) {
	start, err := g.Start()
	if err != nil {
		return synth.Config{}, errors.ConfigInvalid("start_date must be YYYY-MM-DD, got " + g.StartDate)
	}
	mode, ok := synth.ParseMissingMode(g.MissingMode)
	if !ok {
		return synth.Config{}, errors.ConfigInvalid("unknown missing_mode " + g.MissingMode)
	}

	cfg := synth.DefaultConfig()
	cfg.Samples = g.Samples
	cfg.Seed = g.Seed
	cfg.StartDate = start
	cfg.KeepFraction = g.KeepFraction
	cfg.MissingMode = mode
	return cfg, nil
}

// Generate builds the synthetic table from the configured seed
func (p *Pipeline) Generate(ctx context.Context) (*mmm.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := GeneratorSettings(p.cfg.Generator)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	table, err := synth.GenerateSeeded(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "generate dataset")
	}

	missing := 0
	for _, ch := range mmm.Channels {
		n := table.MissingSpend(ch)
		p.logger.Trace("%s: %d missing of %d", ch.Column(), n, table.Len())
		missing += n
	}
	p.logger.Debug("generated %d weeks (seed=%d, holidays=%d, missing spend=%d) in %v",
		table.Len(), cfg.Seed, table.HolidayCount(), missing, time.Since(started))
	return table, nil
}

// Export writes the published columns to the configured output path and
// returns the fingerprint of the bytes written
func (p *Pipeline) Export(ctx context.Context, t *mmm.Table) (core.Fingerprint, error) {
	return p.ExportTo(ctx, p.cfg.Output.Path, t)
}

// ExportTo writes the published columns to path, replacing any existing file
func (p *Pipeline) ExportTo(ctx context.Context, path string, t *mmm.Table) (core.Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := p.encode(t)
	if err != nil {
		return "", errors.ExportError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.ExportError(path, err)
	}

	fp := core.NewFingerprint(data)
	p.logger.Info("exported %d rows to %s (%s, sha256 %s)", t.Len(), path, p.writer.Format(), fp.Short())
	return fp, nil
}

func (p *Pipeline) encode(t *mmm.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.writer.Write(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fit regresses sales on the spend channels, the holiday flag and the constant
func (p *Pipeline) Fit(ctx context.Context, t *mmm.Table) (*ols.Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := ols.FitSales(t)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("fitted %s on %d observations: R²=%.4f, cond=%.3g", res.DepVar, res.NObs, res.RSquared, res.CondNo)
	return res, nil
}

// Report prints the regression summary followed by the describe table
func (p *Pipeline) Report(w io.Writer, res *ols.Results, summaries []describe.Summary) error {
	if res != nil {
		if err := res.WriteSummary(w, p.now()); err != nil {
			return errors.Wrap(err, "write regression summary")
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	if err := describe.Render(w, summaries); err != nil {
		return errors.Wrap(err, "write describe table")
	}
	return nil
}

// Run executes the full pipeline and writes the reports to w
func (p *Pipeline) Run(ctx context.Context, w io.Writer) (*RunResult, error) {
	result := &RunResult{RunID: core.NewRunID(), OutputPath: p.cfg.Output.Path}
	log := p.logger.With("run_id", result.RunID.String())
	log.Info("starting pipeline: %d weeks, seed %d", p.cfg.Generator.Samples, p.cfg.Generator.Seed)

	table, err := p.Generate(ctx)
	if err != nil {
		return nil, err
	}
	result.Table = table

	if result.Fingerprint, err = p.Export(ctx, table); err != nil {
		return nil, err
	}

	if result.Results, err = p.Fit(ctx, table); err != nil {
		return nil, err
	}
	if result.Summaries, err = describe.Frame(table.Frame()); err != nil {
		return nil, errors.Wrap(err, "describe frame")
	}
	if err := p.Report(w, result.Results, result.Summaries); err != nil {
		return nil, err
	}

	if p.ledger != nil {
		if err := p.ledger.Record(ctx, p.runRecord(result)); err != nil {
			log.Warn("failed to record run in ledger: %v", err)
		}
	}

	log.Info("pipeline complete")
	return result, nil
}

func (p *Pipeline) runRecord(r *RunResult) *mmm.RunRecord {
	holiday, _ := r.Results.Param(mmm.ColumnHoliday)
	return &mmm.RunRecord{
		RunID:       r.RunID.String(),
		Seed:        p.cfg.Generator.Seed,
		Samples:     p.cfg.Generator.Samples,
		MissingMode: p.cfg.Generator.MissingMode,
		OutputPath:  r.OutputPath,
		Format:      p.writer.Format(),
		Fingerprint: r.Fingerprint.String(),
		RSquared:    r.Results.RSquared,
		AdjRSquared: r.Results.AdjRSquared,
		HolidayCoef: holiday,
		CreatedAt:   p.now(),
	}
}

// History writes the most recent ledger entries to w
func (p *Pipeline) History(ctx context.Context, limit int, w io.Writer) ([]mmm.RunRecord, error) {
	if p.ledger == nil {
		return nil, errors.ConfigInvalid("run ledger is not configured; set LEDGER_DSN")
	}
	runs, err := p.ledger.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSEED\tWEEKS\tMODE\tR²\tBLACK FRIDAY\tSHA256\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%.4f\t%.1f\t%s\t%s\n",
			r.RunID, r.CreatedAt.UTC().Format(time.RFC3339), r.Seed, r.Samples, r.MissingMode,
			r.RSquared, r.HolidayCoef, core.Hash(r.Fingerprint).Short(), r.OutputPath)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Load reads a previously exported table
func (p *Pipeline) Load(ctx context.Context, path string) (*mmm.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := p.reader.Read(path)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("loaded %d rows from %s", t.Len(), path)
	return t, nil
}

// FitFile fits the sales model to an exported file and prints the summary
func (p *Pipeline) FitFile(ctx context.Context, path string, w io.Writer) (*ols.Results, error) {
	t, err := p.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	res, err := p.Fit(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := res.WriteSummary(w, p.now()); err != nil {
		return nil, errors.Wrap(err, "write regression summary")
	}
	return res, nil
}

// DescribeFile prints the describe table of an exported file
func (p *Pipeline) DescribeFile(ctx context.Context, path string, w io.Writer) ([]describe.Summary, error) {
	t, err := p.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	summaries, err := describe.Frame(t.Frame())
	if err != nil {
		return nil, errors.Wrap(err, "describe frame")
	}
	if err := p.Report(w, nil, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Plot fits the generated table and draws actual against fitted sales
func (p *Pipeline) Plot(ctx context.Context, out string) error {
	table, err := p.Generate(ctx)
	if err != nil {
		return err
	}
	res, err := p.Fit(ctx, table)
	if err != nil {
		return err
	}
	pl, err := chart.SalesFit(table, res.Fitted)
	if err != nil {
		return err
	}
	if err := chart.Save(out, pl); err != nil {
		return err
	}
	p.logger.Info("wrote plot to %s", out)
	return nil
}

// Verification reports the determinism and round-trip checks
type Verification struct {
	First         core.Fingerprint
	Second        core.Fingerprint
	Deterministic bool

	InMemory  describe.Summary
	Reread    describe.Summary
	RoundTrip bool
}

// Verify generates the table twice and compares the export bytes, then writes
// the table into dir, reads it back and compares the Sales statistics. A
// failed check is returned as an error alongside the report.
func (p *Pipeline) Verify(ctx context.Context, dir string) (*Verification, error) {
	v := &Verification{}

	first, err := p.Generate(ctx)
	if err != nil {
		return nil, err
	}
	second, err := p.Generate(ctx)
	if err != nil {
		return nil, err
	}
	a, err := p.encode(first)
	if err != nil {
		return nil, errors.Wrap(err, "encode first run")
	}
	b, err := p.encode(second)
	if err != nil {
		return nil, errors.Wrap(err, "encode second run")
	}
	v.First, v.Second = core.NewFingerprint(a), core.NewFingerprint(b)
	v.Deterministic = v.First == v.Second

	path := filepath.Join(dir, "verify."+p.writer.Format())
	if _, err := p.ExportTo(ctx, path, first); err != nil {
		return nil, err
	}
	reread, err := p.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	if v.InMemory, err = describe.Column(mmm.ColumnSales, first.Sales()); err != nil {
		return nil, err
	}
	if v.Reread, err = describe.Column(mmm.ColumnSales, reread.Sales()); err != nil {
		return nil, err
	}
	v.RoundTrip = v.InMemory.Equal(v.Reread)

	switch {
	case !v.Deterministic:
		return v, errors.InternalError(fmt.Sprintf("exports differ: %s vs %s", v.First.Short(), v.Second.Short()))
	case !v.RoundTrip:
		return v, errors.InternalError("sales statistics changed after reading the export back")
	}
	p.logger.Info("verification passed (sha256 %s)", v.First.Short())
	return v, nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"DefiPrime/internal/domain/models"
	domrepo "DefiPrime/internal/domain/repository"
	"DefiPrime/internal/services/composite"
	applogger "DefiPrime/pkg/logger"
)

// TVLResult is the outcome of a protocol TVL report.
type TVLResult struct {
	Entities    []string // protocols present in Table, sorted
	Table       models.ValueTable
	Diagnostics []models.Diagnostic
}

// TVLReport lines up the locked value of several protocols from the first
// date on which all of them report.
type TVLReport struct {
	p *CompositePipeline
}

// NewTVLReport shares the fetch settings of PipelineConfig; the window fields are unused.
func NewTVLReport(source domrepo.SeriesSource, metrics domrepo.Metrics, l *applogger.Logger, cfg PipelineConfig) *TVLReport {
	return &TVLReport{p: NewCompositePipeline(source, metrics, l, cfg)}
}

// Run fetches every protocol and returns the trimmed value table. When
// nothing is left to report the error wraps models.ErrNoDataAvailable.
func (r *TVLReport) Run(ctx context.Context, protocols []string) (*TVLResult, error) {
	start := time.Now()
	ids := uniqueSorted(protocols)
	series, res, err := r.p.collect(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := &TVLResult{Diagnostics: res.Diagnostics}

	table, err := composite.Align(series)
	if err != nil {
		return out, fmt.Errorf("align %d protocols: %w", len(series), err)
	}
	table = composite.CommonStart(table)
	if table.Empty() {
		return out, fmt.Errorf("trim %d protocols: %w", len(series), models.ErrNoDataAvailable)
	}

	out.Table = composite.Values(table)
	out.Entities = out.Table.Entities
	r.p.record(func(m domrepo.Metrics) { m.RecordLatency("tvl", time.Since(start).Seconds()) })
	r.p.l.Info("tvl report built",
		applogger.Int("protocols", len(out.Entities)),
		applogger.Int("unavailable", len(out.Diagnostics)),
		applogger.String("from", table.Rows[0].Date.String()),
		applogger.Int("rows", len(out.Table.Rows)),
	)
	return out, nil
}

// Export runs the report and hands the value table to sink.
func (r *TVLReport) Export(ctx context.Context, protocols []string, sink domrepo.CompositeSink) (*TVLResult, error) {
	res, err := r.Run(ctx, protocols)
	if err != nil {
		return res, err
	}
	if err := sink.WriteValues(ctx, res.Table); err != nil {
		return res, fmt.Errorf("write sink: %w", err)
	}
	return res, nil
}

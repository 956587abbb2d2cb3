package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"DefiPrime/internal/domain/models"
	domrepo "DefiPrime/internal/domain/repository"
	"DefiPrime/internal/services/composite"
	applogger "DefiPrime/pkg/logger"
)

// PipelineConfig holds the tunables of a run.
type PipelineConfig struct {
	TrendWindow     int
	DisplayDays     int
	Concurrency     int
	FetchTimeout    time.Duration
	DuplicatePolicy models.DuplicatePolicy
}

// RunOptions override the window settings for a single run. Zero keeps the configured value.
type RunOptions struct {
	TrendWindow int
	DisplayDays int
}

// Result is the outcome of a run.
type Result struct {
	Entities    []string // entities that made it into the table, sorted
	Rows        []models.CompositeRow
	Diagnostics []models.Diagnostic // excluded entities, sorted by id
	Stats       composite.AggregateStats
}

// CompositePipeline fetches every entity, then normalizes, aligns,
// aggregates, smooths and windows the result.
type CompositePipeline struct {
	source  domrepo.SeriesSource
	metrics domrepo.Metrics
	l       *applogger.Logger
	cfg     PipelineConfig
}

func NewCompositePipeline(source domrepo.SeriesSource, metrics domrepo.Metrics, l *applogger.Logger, cfg PipelineConfig) *CompositePipeline {
	if cfg.TrendWindow <= 0 {
		cfg.TrendWindow = composite.DefaultTrendWindow
	}
	if cfg.DisplayDays <= 0 {
		cfg.DisplayDays = composite.DefaultDisplayDays
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = models.KeepLast
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CompositePipeline{source: source, metrics: metrics, l: l, cfg: cfg}
}

// Run executes the pipeline with the configured windows.
func (p *CompositePipeline) Run(ctx context.Context, entities []string) (*Result, error) {
	return p.RunWith(ctx, entities, RunOptions{})
}

// RunWith executes the pipeline. Per-entity failures are recorded as
// diagnostics and never abort the run. When no entity yields data the error
// wraps models.ErrNoDataAvailable and the returned Result carries only the
// diagnostics.
func (p *CompositePipeline) RunWith(ctx context.Context, entities []string, opts RunOptions) (*Result, error) {
	start := time.Now()
	window, days := p.cfg.TrendWindow, p.cfg.DisplayDays
	if opts.TrendWindow > 0 {
		window = opts.TrendWindow
	}
	if opts.DisplayDays > 0 {
		days = opts.DisplayDays
	}

	ids := uniqueSorted(entities)
	series, res, err := p.collect(ctx, ids)
	if err != nil {
		return nil, err
	}

	table, err := composite.Align(series)
	if err != nil {
		p.l.Error("no data to process",
			applogger.Int("requested", len(ids)),
			applogger.Int("unavailable", len(res.Diagnostics)),
			applogger.Error(err),
		)
		return &Result{Diagnostics: res.Diagnostics}, fmt.Errorf("align %d entities: %w", len(series), err)
	}

	rows, stats := composite.Build(table, window)
	res.Stats = stats
	res.Rows = composite.SelectTrailing(rows, days)

	if stats.DegenerateDays > 0 {
		p.l.Debug("zero total weight, composite set to 0", applogger.Int("days", stats.DegenerateDays))
	}
	p.record(func(m domrepo.Metrics) {
		m.RecordDegenerateDays(stats.DegenerateDays)
		last := rows[len(rows)-1]
		m.RecordComposite(last.CompositeRate, last.TrendRate)
		m.RecordLatency("pipeline", time.Since(start).Seconds())
	})

	p.l.Info("composite built",
		applogger.Int("entities", len(res.Entities)),
		applogger.Int("unavailable", len(res.Diagnostics)),
		applogger.Int("days", stats.Days),
		applogger.Int("rows", len(res.Rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return res, nil
}

// collect fetches and normalizes every id. Unavailable entities are logged,
// counted and reported in the returned Result; only cancellation is an error.
func (p *CompositePipeline) collect(ctx context.Context, ids []string) ([]models.EntitySeries, *Result, error) {
	outcomes := p.fetchAll(ctx, ids)
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("fetch entities: %w", err)
	}

	res := &Result{}
	series := make([]models.EntitySeries, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			p.l.Warn("entity unavailable",
				applogger.String("entity", o.err.EntityID),
				applogger.String("reason", o.err.Reason),
				applogger.String("source", p.source.Name()),
				applogger.Error(o.err),
			)
			p.record(func(m domrepo.Metrics) {
				m.RecordFetch(p.source.Name(), "error")
				m.RecordUnavailable(o.err.Reason)
			})
			res.Diagnostics = append(res.Diagnostics, models.DiagnosticOf(o.err))
			continue
		}
		p.record(func(m domrepo.Metrics) { m.RecordFetch(p.source.Name(), "ok") })
		series = append(series, o.series)
		res.Entities = append(res.Entities, o.series.EntityID)
	}
	return series, res, nil
}

type outcome struct {
	series models.EntitySeries
	err    *models.SourceUnavailableError
}

// fetchAll retrieves and normalizes every entity. Outcomes are indexed like
// ids regardless of completion order.
func (p *CompositePipeline) fetchAll(ctx context.Context, ids []string) []outcome {
	out := make([]outcome, len(ids))
	workers := min(p.cfg.Concurrency, len(ids))
	if workers <= 1 {
		for i, id := range ids {
			out[i] = p.fetchOne(ctx, id)
		}
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = p.fetchOne(ctx, ids[i])
			}
		}()
	}
	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

func (p *CompositePipeline) fetchOne(ctx context.Context, id string) outcome {
	start := time.Now()
	if p.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.FetchTimeout)
		defer cancel()
	}

	recs, err := p.source.Fetch(ctx, id)
	p.record(func(m domrepo.Metrics) { m.RecordLatency("fetch", time.Since(start).Seconds()) })
	if err != nil {
		return outcome{err: models.AsUnavailable(id, err)}
	}

	s, err := composite.Normalize(id, recs, p.cfg.DuplicatePolicy)
	if err != nil {
		return outcome{err: models.AsUnavailable(id, err)}
	}
	p.l.Debug("entity normalized", applogger.String("entity", id), applogger.Int("days", s.Len()))
	return outcome{series: s}
}

func (p *CompositePipeline) record(fn func(domrepo.Metrics)) {
	if p.metrics != nil {
		fn(p.metrics)
	}
}

func uniqueSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

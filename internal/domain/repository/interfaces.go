package repository

import (
	"context"

	"DefiPrime/internal/domain/models"
)

// SeriesSource retrieves the raw records of one entity.
type SeriesSource interface {
	Fetch(ctx context.Context, entityID string) ([]models.RawRecord, error)
	Name() string
}

// CompositeSink consumes the presentation table and the locked-value report.
type CompositeSink interface {
	Write(ctx context.Context, rows []models.CompositeRow) error
	WriteValues(ctx context.Context, table models.ValueTable) error
	Close() error
}

type Metrics interface {
	RecordFetch(source, result string)
	RecordUnavailable(reason string)
	RecordLatency(op string, seconds float64)
	RecordDegenerateDays(n int)
	RecordComposite(rate, trend float64)
}

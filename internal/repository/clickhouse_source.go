package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"DefiPrime/internal/domain/models"
	domrepo "DefiPrime/internal/domain/repository"
	applogger "DefiPrime/pkg/logger"
)

// CHSeriesSource reads entity history from a ClickHouse table with columns
// (entity_id String, ts DateTime, rate Nullable(Float64), value Nullable(Float64)).
type CHSeriesSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHSeriesSource creates a ClickHouse-backed SeriesSource.
func NewCHSeriesSource(db *sql.DB, table string) domrepo.SeriesSource {
	return &CHSeriesSource{db: db, table: table}
}

// SetLogger injects a structured logger.
func (s *CHSeriesSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesSource) Name() string { return "clickhouse" }

func (s *CHSeriesSource) Fetch(ctx context.Context, entityID string) ([]models.RawRecord, error) {
	const qtpl = `
        SELECT ts, rate, value
        FROM %s
        WHERE entity_id = ?
        ORDER BY ts ASC
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), entityID)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse series query error",
				applogger.String("table", s.table),
				applogger.String("entity", entityID),
				applogger.Error(err),
			)
		}
		return nil, models.Unavailable(entityID, models.ReasonTransport, fmt.Errorf("query series: %w", err))
	}
	defer rows.Close()

	out := make([]models.RawRecord, 0, 512)
	for rows.Next() {
		var (
			ts          time.Time
			rate, value sql.NullFloat64
		)
		if err := rows.Scan(&ts, &rate, &value); err != nil {
			return nil, models.Unavailable(entityID, models.ReasonMalformedPayload, fmt.Errorf("scan series: %w", err))
		}
		out = append(out, models.RawRecord{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Rate:      nullable(rate),
			Value:     nullable(value),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, models.Unavailable(entityID, models.ReasonTransport, fmt.Errorf("read series: %w", err))
	}
	if len(out) == 0 {
		return nil, models.Unavailable(entityID, models.ReasonEmptyPayload, nil)
	}
	return out, nil
}

func nullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

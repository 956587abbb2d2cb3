package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"DefiPrime/internal/domain/models"
	domrepo "DefiPrime/internal/domain/repository"
	"DefiPrime/internal/service/payload"
)

// FileSeriesSource reads <dir>/<entity>.json payloads saved from a remote source.
type FileSeriesSource struct {
	dir    string
	fields payload.Fields
}

// NewFileSeriesSource creates a directory-backed SeriesSource.
func NewFileSeriesSource(dir string, fields payload.Fields) domrepo.SeriesSource {
	return &FileSeriesSource{dir: dir, fields: fields}
}

func (s *FileSeriesSource) Name() string { return "file" }

func (s *FileSeriesSource) Fetch(ctx context.Context, entityID string) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Unavailable(entityID, models.ReasonTransport, err)
	}
	if entityID == "" || filepath.Base(entityID) != entityID {
		return nil, models.Unavailable(entityID, models.ReasonTransport, fmt.Errorf("invalid entity id"))
	}
	body, err := os.ReadFile(filepath.Join(s.dir, entityID+".json"))
	if err != nil {
		return nil, models.Unavailable(entityID, models.ReasonTransport, fmt.Errorf("read payload: %w", err))
	}
	return payload.ParseRecords(entityID, body, s.fields)
}

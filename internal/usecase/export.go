package usecase

import (
	"context"
	"fmt"

	domrepo "DefiPrime/internal/domain/repository"
)

// Export runs the pipeline and hands the presentation table to sink.
func (p *CompositePipeline) Export(ctx context.Context, entities []string, sink domrepo.CompositeSink) (*Result, error) {
	res, err := p.Run(ctx, entities)
	if err != nil {
		return res, err
	}
	if err := sink.Write(ctx, res.Rows); err != nil {
		return res, fmt.Errorf("write sink: %w", err)
	}
	return res, nil
}

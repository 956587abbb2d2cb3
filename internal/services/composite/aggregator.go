package composite

import "DefiPrime/internal/domain/models"

// AggregateStats summarizes one aggregation pass.
type AggregateStats struct {
	Days           int
	DegenerateDays int // days where every present entity had zero value
}

// weighted is the per-date reduction state.
type weighted struct {
	sum    float64 // sum of rate*value
	weight float64 // sum of value
}

func (w weighted) add(o models.Observation) weighted {
	return weighted{sum: w.sum + o.Rate*o.Value, weight: w.weight + o.Value}
}

// rate divides the weighted sum by total weight. A zero total weight is
// replaced by 1 so the composite is 0 instead of undefined.
func (w weighted) rate() (float64, bool) {
	divisor, degenerate := w.weight, false
	if divisor == 0 {
		divisor, degenerate = 1, true
	}
	return w.sum / divisor, degenerate
}

// missingAsZero is the missing-value policy of the aggregation step: an entity
// that did not report on a date contributes nothing to either sum.
func missingAsZero(row models.AlignedRow, entityID string) models.Observation {
	if o, ok := row.Observation(entityID); ok {
		return o
	}
	return models.Observation{}
}

// Aggregate computes the value-weighted composite rate for every row of the
// table. Entities are folded in table order so results are reproducible bit for bit.
func Aggregate(table models.AlignedTable) ([]float64, AggregateStats) {
	out := make([]float64, len(table.Rows))
	stats := AggregateStats{Days: len(table.Rows)}

	for i, row := range table.Rows {
		var acc weighted
		for _, id := range table.Entities {
			acc = acc.add(missingAsZero(row, id))
		}
		r, degenerate := acc.rate()
		if degenerate {
			stats.DegenerateDays++
		}
		out[i] = r
	}

	return out, stats
}

package composite

import "DefiPrime/internal/domain/models"

// Build aggregates an aligned table and attaches the trailing trend.
func Build(table models.AlignedTable, window int) ([]models.CompositeRow, AggregateStats) {
	rates, stats := Aggregate(table)
	trend := TrailingMean(rates, window)

	rows := make([]models.CompositeRow, len(rates))
	for i, row := range table.Rows {
		rows[i] = models.CompositeRow{
			Date:          row.Date,
			CompositeRate: rates[i],
			TrendRate:     trend[i],
		}
	}
	return rows, stats
}

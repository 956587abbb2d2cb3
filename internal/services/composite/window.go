package composite

import "DefiPrime/internal/domain/models"

// DefaultDisplayDays is the trailing span kept for presentation.
const DefaultDisplayDays = 360

// SelectTrailing keeps rows dated on or after (last date - days). Rows must be
// sorted by date. A table shorter than the span is returned whole.
func SelectTrailing(rows []models.CompositeRow, days int) []models.CompositeRow {
	if len(rows) == 0 {
		return []models.CompositeRow{}
	}
	cutoff := rows[len(rows)-1].Date.AddDays(-days)

	out := make([]models.CompositeRow, 0, len(rows))
	for _, r := range rows {
		if r.Date >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

package composite

import (
	"fmt"
	"slices"

	"DefiPrime/internal/domain/models"
)

// Align outer-joins the series onto the union of their dates, sorted ascending.
// Entities are keyed and ordered by id, so the result does not depend on the
// order of the input. Returns models.ErrNoDataAvailable when nothing is left
// to align.
func Align(series []models.EntitySeries) (models.AlignedTable, error) {
	byDate := make(map[models.Date]map[string]models.Observation)
	entities := make([]string, 0, len(series))

	for _, s := range series {
		if s.Len() == 0 {
			continue
		}
		if slices.Contains(entities, s.EntityID) {
			return models.AlignedTable{}, fmt.Errorf("align: duplicate entity %q", s.EntityID)
		}
		entities = append(entities, s.EntityID)

		for d, o := range s.Observations {
			row, ok := byDate[d]
			if !ok {
				row = make(map[string]models.Observation)
				byDate[d] = row
			}
			row[s.EntityID] = o
		}
	}

	if len(byDate) == 0 {
		return models.AlignedTable{}, models.ErrNoDataAvailable
	}

	dates := make([]models.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	slices.Sort(entities)

	rows := make([]models.AlignedRow, len(dates))
	for i, d := range dates {
		rows[i] = models.AlignedRow{Date: d, Observations: byDate[d]}
	}

	return models.AlignedTable{Entities: entities, Rows: rows}, nil
}

package composite

import (
	"DefiPrime/internal/domain/models"
)

const base = models.Date(19400) // 2023-02-12

func day(n int) models.Date { return base.AddDays(n) }

func f(v float64) *float64 { return &v }

func series(id string, obs map[int]models.Observation) models.EntitySeries {
	m := make(map[models.Date]models.Observation, len(obs))
	for n, o := range obs {
		m[day(n)] = o
	}
	return models.EntitySeries{EntityID: id, Observations: m}
}

func dates(table models.AlignedTable) []models.Date {
	out := make([]models.Date, len(table.Rows))
	for i, r := range table.Rows {
		out[i] = r.Date
	}
	return out
}

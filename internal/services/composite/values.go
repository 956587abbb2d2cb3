package composite

import "DefiPrime/internal/domain/models"

// CommonStart drops the rows before the latest first date among the entities,
// so every entity has started reporting by the first remaining row. Entities
// with no observation left are dropped from the result.
func CommonStart(table models.AlignedTable) models.AlignedTable {
	first := make(map[string]models.Date, len(table.Entities))
	for _, row := range table.Rows {
		for id := range row.Observations {
			if _, ok := first[id]; !ok {
				first[id] = row.Date
			}
		}
	}

	var start models.Date
	seen := false
	for _, id := range table.Entities {
		if d, ok := first[id]; ok && (!seen || d > start) {
			start, seen = d, true
		}
	}

	out := models.AlignedTable{}
	present := make(map[string]bool, len(table.Entities))
	for _, row := range table.Rows {
		if row.Date < start {
			continue
		}
		out.Rows = append(out.Rows, row)
		for id := range row.Observations {
			present[id] = true
		}
	}
	for _, id := range table.Entities {
		if present[id] {
			out.Entities = append(out.Entities, id)
		}
	}
	return out
}

// Values projects an aligned table onto locked values.
func Values(table models.AlignedTable) models.ValueTable {
	out := models.ValueTable{
		Entities: append([]string(nil), table.Entities...),
		Rows:     make([]models.ValueRow, len(table.Rows)),
	}
	for i, row := range table.Rows {
		vals := make(map[string]float64, len(row.Observations))
		for id, o := range row.Observations {
			vals[id] = o.Value
		}
		out.Rows[i] = models.ValueRow{Date: row.Date, Values: vals}
	}
	return out
}

package composite

import (
	"testing"

	"DefiPrime/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIdempotent(t *testing.T) {
	raw := map[string][]models.RawRecord{
		"b": {
			{Timestamp: "2023-03-02T00:00:00Z", Rate: f(10), Value: f(100)},
			{Timestamp: "2023-03-03T00:00:00Z", Rate: f(10), Value: f(300)},
		},
		"a": {
			{Timestamp: "1677628800", Rate: f(5), Value: f(100)},
			{Timestamp: "1677715200", Rate: f(5), Value: f(100)},
			{Timestamp: "1677801600", Rate: f(5), Value: f(100)},
		},
	}

	run := func() []models.CompositeRow {
		var all []models.EntitySeries
		for id, recs := range raw {
			s, err := Normalize(id, recs, models.KeepLast)
			require.NoError(t, err)
			all = append(all, s)
		}
		table, err := Align(all)
		require.NoError(t, err)
		rows, _ := Build(table, DefaultTrendWindow)
		return SelectTrailing(rows, DefaultDisplayDays)
	}

	first, second := run(), run()
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "2023-03-01", first[0].Date.String())
	assert.InDelta(t, 5.0, first[0].CompositeRate, 1e-12)
	assert.InDelta(t, 7.5, first[1].CompositeRate, 1e-12)
	assert.InDelta(t, 8.75, first[2].CompositeRate, 1e-12)
	assert.InDelta(t, (5+7.5+8.75)/3, first[2].TrendRate, 1e-12)
}

func TestBuildTrendCountsRowsAcrossGaps(t *testing.T) {
	a := series("a", map[int]models.Observation{
		0:  {Rate: 2, Value: 1},
		1:  {Rate: 4, Value: 1},
		10: {Rate: 8, Value: 1},
		11: {Rate: 16, Value: 1},
	})
	table, err := Align([]models.EntitySeries{a})
	require.NoError(t, err)

	rows, _ := Build(table, 2)
	require.Len(t, rows, 4)
	assert.Equal(t, day(10), rows[2].Date)
	// day 10 averages with day 1: the window spans rows, not calendar days
	assert.InDelta(t, (4.0+8.0)/2, rows[2].TrendRate, 1e-12)
	assert.InDelta(t, (8.0+16.0)/2, rows[3].TrendRate, 1e-12)
	assert.InDelta(t, 2.0, rows[0].TrendRate, 1e-12)
}

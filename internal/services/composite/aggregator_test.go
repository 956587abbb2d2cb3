package composite

import (
	"math"
	"math/rand"
	"testing"

	"DefiPrime/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTwoEntities(t *testing.T) {
	a := series("A", map[int]models.Observation{
		1: {Rate: 5, Value: 100}, 2: {Rate: 5, Value: 100}, 3: {Rate: 5, Value: 100},
	})
	b := series("B", map[int]models.Observation{
		2: {Rate: 10, Value: 100}, 3: {Rate: 10, Value: 300},
	})
	table, err := Align([]models.EntitySeries{a, b})
	require.NoError(t, err)

	rates, stats := Aggregate(table)
	require.Len(t, rates, 3)
	assert.InDelta(t, 5.0, rates[0], 1e-12)
	assert.InDelta(t, 7.5, rates[1], 1e-12)
	assert.InDelta(t, 8.75, rates[2], 1e-12)
	assert.Equal(t, AggregateStats{Days: 3}, stats)
}

func TestAggregateZeroWeight(t *testing.T) {
	a := series("A", map[int]models.Observation{
		1: {Rate: 4, Value: 0}, 2: {Rate: 7, Value: 0}, 3: {Rate: 0, Value: 0},
	})
	table, err := Align([]models.EntitySeries{a})
	require.NoError(t, err)

	rates, stats := Aggregate(table)
	assert.Equal(t, []float64{0, 0, 0}, rates)
	assert.Equal(t, 3, stats.DegenerateDays)
	for _, r := range rates {
		assert.False(t, math.IsNaN(r))
	}
}

func TestAggregateWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var all []models.EntitySeries
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		obs := map[int]models.Observation{}
		for n := 0; n < 60; n++ {
			if rng.Intn(3) == 0 {
				continue
			}
			obs[n] = models.Observation{Rate: rng.Float64()*20 - 2, Value: rng.Float64() * 1e9}
		}
		all = append(all, series(id, obs))
	}
	table, err := Align(all)
	require.NoError(t, err)

	rates, _ := Aggregate(table)
	for i, row := range table.Rows {
		lo, hi := math.Inf(1), math.Inf(-1)
		total := 0.0
		for _, o := range row.Observations {
			lo, hi = math.Min(lo, o.Rate), math.Max(hi, o.Rate)
			total += o.Value
		}
		if total == 0 {
			continue
		}
		assert.GreaterOrEqual(t, rates[i], lo-1e-9, "row %d", i)
		assert.LessOrEqual(t, rates[i], hi+1e-9, "row %d", i)
	}
}

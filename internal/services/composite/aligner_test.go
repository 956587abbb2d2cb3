package composite

import (
	"errors"
	"testing"

	"DefiPrime/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignUnion(t *testing.T) {
	a := series("a", map[int]models.Observation{1: {Rate: 1, Value: 1}, 3: {Rate: 1, Value: 1}, 7: {Rate: 1, Value: 1}})
	b := series("b", map[int]models.Observation{3: {Rate: 2, Value: 2}, 5: {Rate: 2, Value: 2}})
	c := series("c", map[int]models.Observation{0: {Rate: 3, Value: 0}})

	table, err := Align([]models.EntitySeries{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, table.Entities)
	assert.Equal(t, []models.Date{day(0), day(1), day(3), day(5), day(7)}, dates(table))

	seen := map[models.Date]int{}
	for _, d := range dates(table) {
		seen[d]++
	}
	for _, s := range []models.EntitySeries{a, b, c} {
		for d := range s.Observations {
			assert.Equal(t, 1, seen[d], "date %s", d)
		}
	}
}

func TestAlignAbsentIsNotZero(t *testing.T) {
	a := series("a", map[int]models.Observation{1: {Rate: 5, Value: 0}})
	b := series("b", map[int]models.Observation{2: {Rate: 5, Value: 10}})

	table, err := Align([]models.EntitySeries{a, b})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	o, ok := table.Rows[0].Observation("a")
	assert.True(t, ok)
	assert.Equal(t, models.Observation{Rate: 5, Value: 0}, o)

	_, ok = table.Rows[0].Observation("b")
	assert.False(t, ok)
}

func TestAlignNoSeries(t *testing.T) {
	table, err := Align(nil)
	assert.True(t, errors.Is(err, models.ErrNoDataAvailable))
	assert.True(t, table.Empty())

	_, err = Align([]models.EntitySeries{{EntityID: "empty"}})
	assert.ErrorIs(t, err, models.ErrNoDataAvailable)
}

func TestAlignSingleSeries(t *testing.T) {
	a := series("a", map[int]models.Observation{2: {Rate: 1, Value: 3}, 1: {Rate: 2, Value: 4}})

	table, err := Align([]models.EntitySeries{a})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, table.Entities)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, day(1), table.Rows[0].Date)
	assert.Equal(t, map[string]models.Observation{"a": {Rate: 2, Value: 4}}, table.Rows[0].Observations)
}

func TestAlignIndependentOfInputOrder(t *testing.T) {
	a := series("a", map[int]models.Observation{1: {Rate: 1, Value: 1}})
	b := series("b", map[int]models.Observation{1: {Rate: 2, Value: 2}, 2: {Rate: 2, Value: 2}})

	t1, err := Align([]models.EntitySeries{a, b})
	require.NoError(t, err)
	t2, err := Align([]models.EntitySeries{b, a})
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}

func TestAlignDuplicateEntity(t *testing.T) {
	a := series("a", map[int]models.Observation{1: {Rate: 1, Value: 1}})
	_, err := Align([]models.EntitySeries{a, a})
	assert.Error(t, err)
}

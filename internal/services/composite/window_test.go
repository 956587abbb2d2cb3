package composite

import (
	"testing"

	"DefiPrime/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func rowsAt(days ...int) []models.CompositeRow {
	out := make([]models.CompositeRow, len(days))
	for i, n := range days {
		out[i] = models.CompositeRow{Date: day(n), CompositeRate: float64(n)}
	}
	return out
}

func TestSelectTrailingShortTable(t *testing.T) {
	rows := rowsAt(0, 1, 2, 3)
	assert.Equal(t, rows, SelectTrailing(rows, DefaultDisplayDays))
}

func TestSelectTrailingCutoffInclusive(t *testing.T) {
	rows := rowsAt(0, 5, 10, 11, 20)
	got := SelectTrailing(rows, 10)
	assert.Equal(t, rowsAt(10, 11, 20), got)
}

func TestSelectTrailingEmpty(t *testing.T) {
	assert.Empty(t, SelectTrailing(nil, 10))
}

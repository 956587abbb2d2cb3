package composite

import (
	"errors"
	"testing"

	"DefiPrime/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEncodingsShareDate(t *testing.T) {
	s, err := Normalize("pool-a", []models.RawRecord{
		{Timestamp: "2023-03-01T00:00:00.000Z", Rate: f(4), Value: f(10)},
		{Timestamp: "1677758400", Rate: f(5), Value: f(20)}, // 2023-03-02 12:00 UTC
	}, models.KeepLast)
	require.NoError(t, err)

	assert.Equal(t, "pool-a", s.EntityID)
	assert.Equal(t, 2, s.Len())

	mar1 := models.Date(19417)
	assert.Equal(t, "2023-03-01", mar1.String())
	assert.Equal(t, models.Observation{Rate: 4, Value: 10}, s.Observations[mar1])
	assert.Equal(t, models.Observation{Rate: 5, Value: 20}, s.Observations[mar1.AddDays(1)])
}

func TestNormalizeTruncatesTimeOfDay(t *testing.T) {
	s, err := Normalize("x", []models.RawRecord{
		{Timestamp: "2023-03-01T23:59:59Z", Rate: f(1), Value: f(1)},
	}, models.KeepLast)
	require.NoError(t, err)
	_, ok := s.Observations[models.Date(19417)]
	assert.True(t, ok)
}

func TestNormalizeDuplicatePolicy(t *testing.T) {
	records := []models.RawRecord{
		{Timestamp: "2023-03-01T01:00:00Z", Rate: f(1), Value: f(100)},
		{Timestamp: "2023-03-01T18:00:00Z", Rate: f(2), Value: f(200)},
	}
	d := models.Date(19417)

	last, err := Normalize("x", records, models.KeepLast)
	require.NoError(t, err)
	assert.Equal(t, models.Observation{Rate: 2, Value: 200}, last.Observations[d])

	first, err := Normalize("x", records, models.KeepFirst)
	require.NoError(t, err)
	assert.Equal(t, models.Observation{Rate: 1, Value: 100}, first.Observations[d])
}

func TestNormalizeNullFieldsReadAsZero(t *testing.T) {
	s, err := Normalize("x", []models.RawRecord{{Timestamp: "2023-03-01"}}, models.KeepLast)
	require.NoError(t, err)
	assert.Equal(t, models.Observation{}, s.Observations[models.Date(19417)])
}

func TestNormalizeUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		records []models.RawRecord
		reason  string
	}{
		{"empty", nil, models.ReasonEmptyPayload},
		{"missing timestamp", []models.RawRecord{
			{Timestamp: "2023-03-01", Rate: f(1), Value: f(1)},
			{Rate: f(1), Value: f(1)},
		}, models.ReasonMissingTimestamp},
		{"bad timestamp", []models.RawRecord{{Timestamp: "soon", Value: f(1)}}, models.ReasonInvalidRecord},
		{"negative value", []models.RawRecord{{Timestamp: "2023-03-01", Value: f(-1)}}, models.ReasonInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize("pool-z", tt.records, models.KeepLast)
			require.Error(t, err)

			var su *models.SourceUnavailableError
			require.True(t, errors.As(err, &su))
			assert.Equal(t, "pool-z", su.EntityID)
			assert.Equal(t, tt.reason, su.Reason)
		})
	}
}

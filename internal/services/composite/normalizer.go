package composite

import (
	"fmt"
	"math"

	"DefiPrime/internal/domain/models"
	"DefiPrime/pkg/util"
)

// Normalize converts one entity's raw records into a canonical series keyed by
// UTC calendar date. Any defect in the payload makes the whole entity
// unavailable; the returned error is always a *models.SourceUnavailableError.
func Normalize(entityID string, records []models.RawRecord, policy models.DuplicatePolicy) (models.EntitySeries, error) {
	if len(records) == 0 {
		return models.EntitySeries{}, models.Unavailable(entityID, models.ReasonEmptyPayload, nil)
	}

	obs := make(map[models.Date]models.Observation, len(records))
	for i, rec := range records {
		if rec.Timestamp == "" {
			return models.EntitySeries{}, models.Unavailable(entityID, models.ReasonMissingTimestamp,
				fmt.Errorf("record %d has no timestamp", i))
		}
		t, ok := util.ParseTime(rec.Timestamp)
		if !ok {
			return models.EntitySeries{}, models.Unavailable(entityID, models.ReasonInvalidRecord,
				fmt.Errorf("record %d: unrecognized timestamp %q", i, rec.Timestamp))
		}

		o := models.Observation{Rate: orZero(rec.Rate), Value: orZero(rec.Value)}
		if o.Value < 0 || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return models.EntitySeries{}, models.Unavailable(entityID, models.ReasonInvalidRecord,
				fmt.Errorf("record %d: invalid value %v", i, o.Value))
		}
		if math.IsNaN(o.Rate) || math.IsInf(o.Rate, 0) {
			return models.EntitySeries{}, models.Unavailable(entityID, models.ReasonInvalidRecord,
				fmt.Errorf("record %d: invalid rate %v", i, o.Rate))
		}

		d := models.DateOf(t)
		if _, seen := obs[d]; seen && policy == models.KeepFirst {
			continue
		}
		obs[d] = o
	}

	return models.EntitySeries{EntityID: entityID, Observations: obs}, nil
}

// orZero reads an omitted or null numeric field as zero.
func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

package models

import (
	"fmt"
	"time"
)

// RawRecord is one observation as received from a source. Timestamp holds the
// raw text: either a date string or a decimal epoch. Rate and Value are nil
// when the source omitted them or sent null.
type RawRecord struct {
	Timestamp string
	Rate      *float64 // percent
	Value     *float64 // currency amount
}

// Date is a calendar day in UTC, stored as days since the Unix epoch.
type Date int32

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	days := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
	return Date(days)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Unix(int64(d)*86400, 0).UTC() }

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date { return d + Date(n) }

func (d Date) String() string { return d.Time().Format(time.DateOnly) }

// MarshalText renders the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText parses YYYY-MM-DD.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.DateOnly, string(b))
	if err != nil {
		return fmt.Errorf("parse date %q: %w", b, err)
	}
	*d = DateOf(t)
	return nil
}

// Observation is one entity's (rate, value) pair on a date.
type Observation struct {
	Rate  float64 `json:"rate"`
	Value float64 `json:"value"`
}

// EntitySeries is the canonical per-entity series: at most one observation per date.
type EntitySeries struct {
	EntityID     string
	Observations map[Date]Observation
}

// Len returns the number of dated observations.
func (s EntitySeries) Len() int { return len(s.Observations) }

// AlignedRow holds every entity that reported on Date. Entities that did not
// report are absent from Observations.
type AlignedRow struct {
	Date         Date
	Observations map[string]Observation
}

// Observation looks up one entity in the row.
func (r AlignedRow) Observation(entityID string) (Observation, bool) {
	o, ok := r.Observations[entityID]
	return o, ok
}

// AlignedTable is the outer join of all entity series on a sorted date axis.
type AlignedTable struct {
	Entities []string // sorted
	Rows     []AlignedRow
}

// Empty reports whether the table has no rows.
func (t AlignedTable) Empty() bool { return len(t.Rows) == 0 }

// CompositeRow is one row of the presentation table.
type CompositeRow struct {
	Date          Date    `json:"date"`
	CompositeRate float64 `json:"composite_rate"`
	TrendRate     float64 `json:"trend_rate"`
}

// ValueRow is one date of a locked-value table. Entities that did not report
// on Date are absent from Values.
type ValueRow struct {
	Date   Date               `json:"date"`
	Values map[string]float64 `json:"values"`
}

// ValueTable is the per-entity locked value on a shared date axis.
type ValueTable struct {
	Entities []string   `json:"entities"`
	Rows     []ValueRow `json:"rows"`
}

// DuplicatePolicy picks which record survives when a source reports a date twice.
type DuplicatePolicy string

const (
	KeepLast  DuplicatePolicy = "last"
	KeepFirst DuplicatePolicy = "first"
)

// Package composite turns per-entity (rate, value) series into a single
// value-weighted composite rate per day and its trailing trend.
//
// The stages run in order and each consumes the full output of the previous one:
//
//	Normalize -> Align -> Aggregate -> TrailingMean -> SelectTrailing
//
// All stages are pure functions over immutable inputs.
package composite

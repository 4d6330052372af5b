package analytics

import (
	"context"
	"time"

	"github.com/mfurudate/apodash/internal/store"
)

// Comparator computes before/after appointment rates around a
// revision's execution date. The pre and post windows may filter on
// different dimension values: a talk improvement swaps the script
// name at the boundary, while a list cleanup keeps the same list
// name on both sides because only the list's contents changed.
type Comparator struct {
	calc *Calculator
}

// NewComparator creates a comparator on top of calc.
func NewComparator(calc *Calculator) *Comparator {
	return &Comparator{calc: calc}
}

// RateComparison holds the two sides of a before/after rate
// comparison in the monthly-summary convention: nil means that side
// is undetermined.
type RateComparison struct {
	Pre  *float64
	Post *float64
}

// Diff returns post minus pre, or nil when either side is
// undetermined.
func (rc RateComparison) Diff() *float64 {
	if rc.Pre == nil || rc.Post == nil {
		return nil
	}
	d := *rc.Post - *rc.Pre
	return &d
}

// CompareRates computes the pre rate over [preStart, split) filtered
// on preValue and the post rate over [split, postEnd) filtered on
// postValue.
func (c *Comparator) CompareRates(ctx context.Context, client string, dim store.Dimension, preValue, postValue string, preStart, split, postEnd time.Time) (RateComparison, error) {
	pre, err := c.calc.Rate(ctx, client, dim, preValue, preStart, split)
	if err != nil {
		return RateComparison{}, err
	}
	post, err := c.calc.Rate(ctx, client, dim, postValue, split, postEnd)
	if err != nil {
		return RateComparison{}, err
	}
	return RateComparison{Pre: pre, Post: post}, nil
}

// CompareStats is the client-detail variant: full stats per side,
// with a 0.00 rate when a window holds no calls.
func (c *Comparator) CompareStats(ctx context.Context, client string, dim store.Dimension, preValue, postValue string, preStart, split, postEnd time.Time) (pre, post *RateStats, err error) {
	preStats, err := c.calc.Stats(ctx, client, dim, preValue, preStart, split)
	if err != nil {
		return nil, nil, err
	}
	postStats, err := c.calc.Stats(ctx, client, dim, postValue, split, postEnd)
	if err != nil {
		return nil, nil, err
	}
	return &preStats, &postStats, nil
}

// FixedWindows returns the monthly summary's comparison bounds: a
// fixed 30 calendar days on each side of the execution date.
func FixedWindows(execution time.Time) (preStart, postEnd time.Time) {
	const window = 30 * 24 * time.Hour
	return execution.Add(-window), execution.Add(window)
}

// CalendarWindows returns the client detail's comparison bounds: the
// calendar month containing the execution date, regardless of which
// month the dashboard is displaying.
func CalendarWindows(execution time.Time) (monthStart, monthNext time.Time) {
	return MonthRange(execution)
}

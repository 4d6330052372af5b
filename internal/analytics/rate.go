package analytics

import (
	"context"
	"time"

	"github.com/mfurudate/apodash/internal/store"
)

// Calculator computes appointment rates from filtered call-result
// rows. It exposes two entry points with different "no data"
// conventions: Stats treats an empty window as a 0.00 rate (the
// client-detail convention), Rate treats it as undetermined and
// returns nil (the monthly-summary convention).
type Calculator struct {
	store store.Store
}

// NewCalculator creates a rate calculator reading from st.
func NewCalculator(st store.Store) *Calculator {
	return &Calculator{store: st}
}

// Stats sums calls and appointments for client rows matching the
// dimension value in [from, to) and returns them with a formatted
// rate. Zero calls yields rate "0.00".
func (c *Calculator) Stats(ctx context.Context, client string, dim store.Dimension, value string, from, to time.Time) (RateStats, error) {
	calls, appointments, err := c.totals(ctx, client, dim, value, from, to)
	if err != nil {
		return RateStats{}, err
	}

	rate := 0.0
	if calls > 0 {
		rate = float64(appointments) / float64(calls) * 100
	}
	return RateStats{
		TotalCalls:        calls,
		TotalAppointments: appointments,
		AppointmentRate:   formatRate(rate),
	}, nil
}

// Rate returns the appointment rate for the same query, or nil when
// the window holds no calls and the rate is undetermined.
func (c *Calculator) Rate(ctx context.Context, client string, dim store.Dimension, value string, from, to time.Time) (*float64, error) {
	calls, appointments, err := c.totals(ctx, client, dim, value, from, to)
	if err != nil {
		return nil, err
	}
	if calls == 0 {
		return nil, nil
	}
	rate := float64(appointments) / float64(calls) * 100
	return &rate, nil
}

func (c *Calculator) totals(ctx context.Context, client string, dim store.Dimension, value string, from, to time.Time) (calls, appointments int, err error) {
	rows, err := c.store.CallResults(ctx, store.CallFilter{
		Client:    client,
		Dimension: dim,
		Value:     value,
		From:      from,
		To:        to,
	})
	if err != nil {
		return 0, 0, err
	}
	for _, row := range rows {
		calls += row.CallCount
		appointments += row.Appointment
	}
	return calls, appointments, nil
}

package analytics

import (
	"context"
	"time"

	"github.com/mfurudate/apodash/internal/store"
)

// DetailBuilder produces the drill-down view for one client and
// month: daily chart series, revision markers with calendar-month
// before/after stats, and per-script / per-list aggregates.
type DetailBuilder struct {
	store store.Store
	comp  *Comparator
}

// NewDetailBuilder creates a client detail builder reading from st.
func NewDetailBuilder(st store.Store) *DetailBuilder {
	return &DetailBuilder{store: st, comp: NewComparator(NewCalculator(st))}
}

// Build assembles the client detail for the month starting at
// monthStart. Any store read failure aborts the whole view; partial
// renders are not produced.
func (b *DetailBuilder) Build(ctx context.Context, client string, monthStart time.Time) (*ClientDetails, error) {
	from, to := MonthRange(monthStart)

	rows, err := b.store.CallResults(ctx, store.CallFilter{Client: client, From: from, To: to})
	if err != nil {
		return nil, err
	}
	agg := AggregateDaily(rows)

	revisions, err := b.store.Revisions(ctx, store.RevisionFilter{Client: client, From: from, To: to})
	if err != nil {
		return nil, err
	}

	details := make([]RevisionDetail, 0, len(revisions))
	for _, rev := range revisions {
		detail, err := b.buildRevision(ctx, rev)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	var totalCalls, totalAppointments int
	for _, row := range rows {
		totalCalls += row.CallCount
		totalAppointments += row.Appointment
	}
	rate := 0.0
	if totalCalls > 0 {
		rate = float64(totalAppointments) / float64(totalCalls) * 100
	}

	return &ClientDetails{
		ChartDataSets:     agg.ChartDataSets(),
		Revisions:         details,
		TotalAppointments: totalAppointments,
		TotalCalls:        totalCalls,
		AppointmentRate:   formatRate(rate),
		ScriptAggregates:  b.scriptAggregates(agg, details),
		ListAggregates:    b.listAggregates(agg, details),
	}, nil
}

// buildRevision computes the before/after stats for one revision
// over the calendar month containing its execution date. A 両方実施
// revision carries the talk-improvement comparison here; its cleanup
// side only appears in the monthly summary.
func (b *DetailBuilder) buildRevision(ctx context.Context, rev store.Revision) (RevisionDetail, error) {
	detail := RevisionDetail{
		ExecutionDate:       rev.ExecutionDate.Format(dateLayout),
		MeasureName:         Classify(rev),
		PreFixTalkListName:  rev.PreFixTalkListName,
		PostFixTalkListName: rev.PostFixTalkListName,
		DeletedListName:     rev.DeletedListName,
	}

	monthStart, monthNext := CalendarWindows(rev.ExecutionDate)

	switch detail.MeasureName {
	case MeasureTalkImprovement, MeasureBoth:
		pre, post, err := b.comp.CompareStats(ctx, rev.ClientName, store.DimensionScript,
			*rev.PreFixTalkListName, *rev.PostFixTalkListName,
			monthStart, rev.ExecutionDate, monthNext)
		if err != nil {
			return RevisionDetail{}, err
		}
		detail.PreMeasureStats, detail.PostMeasureStats = pre, post
	case MeasureDataCleanup:
		pre, post, err := b.comp.CompareStats(ctx, rev.ClientName, store.DimensionList,
			*rev.DeletedListName, *rev.DeletedListName,
			monthStart, rev.ExecutionDate, monthNext)
		if err != nil {
			return RevisionDetail{}, err
		}
		detail.PreMeasureStats, detail.PostMeasureStats = pre, post
	}

	return detail, nil
}

func (b *DetailBuilder) scriptAggregates(agg *DailyAggregate, revisions []RevisionDetail) map[string]*DimensionAggregate {
	out := make(map[string]*DimensionAggregate, len(agg.ByScript))
	for _, script := range agg.ScriptNames() {
		entry := sumDimension(agg.ByScript[script])

		for i := range revisions {
			rev := &revisions[i]
			preMatch := rev.PreFixTalkListName != nil && *rev.PreFixTalkListName == script
			postMatch := rev.PostFixTalkListName != nil && *rev.PostFixTalkListName == script
			if !preMatch && !postMatch {
				continue
			}
			entry.ExecutionDate = strPtr(rev.ExecutionDate)
			if preMatch {
				entry.PreMeasureStats = rev.PreMeasureStats
			}
			if postMatch {
				entry.PostMeasureStats = rev.PostMeasureStats
			}
			break
		}
		out[script] = entry
	}
	return out
}

func (b *DetailBuilder) listAggregates(agg *DailyAggregate, revisions []RevisionDetail) map[string]*DimensionAggregate {
	out := make(map[string]*DimensionAggregate, len(agg.ByList))
	for _, list := range agg.ListNames() {
		entry := sumDimension(agg.ByList[list])

		for i := range revisions {
			rev := &revisions[i]
			if rev.DeletedListName == nil || *rev.DeletedListName != list {
				continue
			}
			entry.ExecutionDate = strPtr(rev.ExecutionDate)
			entry.PreMeasureStats = rev.PreMeasureStats
			entry.PostMeasureStats = rev.PostMeasureStats
			break
		}
		out[list] = entry
	}
	return out
}

func sumDimension(days map[string]*DayTotals) *DimensionAggregate {
	var calls, appointments int
	for _, totals := range days {
		calls += totals.TotalCalls
		appointments += totals.Appointments
	}
	rate := 0.0
	if calls > 0 {
		rate = float64(appointments) / float64(calls) * 100
	}
	return &DimensionAggregate{
		TotalCalls:        calls,
		TotalAppointments: appointments,
		AppointmentRate:   formatRate(rate),
	}
}

package analytics

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mfurudate/apodash/internal/store"
)

// SummaryBuilder produces the monthly overview: one row per campaign
// revision executed in the month, across all clients, each with
// fixed 30-day before/after rates.
type SummaryBuilder struct {
	store store.Store
	comp  *Comparator
}

// NewSummaryBuilder creates a monthly summary builder reading from st.
func NewSummaryBuilder(st store.Store) *SummaryBuilder {
	return &SummaryBuilder{store: st, comp: NewComparator(NewCalculator(st))}
}

// Build returns one summary row per revision executed in the month
// starting at monthStart. The revision fetch itself is fatal; a
// single revision's rate fetches are not — those rows keep nil stats
// so one bad revision cannot block the rest of the month.
func (b *SummaryBuilder) Build(ctx context.Context, monthStart time.Time) ([]SummaryRow, error) {
	from, to := MonthRange(monthStart)
	revisions, err := b.store.Revisions(ctx, store.RevisionFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, len(revisions))
	var wg sync.WaitGroup
	for i, rev := range revisions {
		wg.Add(1)
		go func(i int, rev store.Revision) {
			defer wg.Done()
			rows[i] = b.buildRow(ctx, rev)
		}(i, rev)
	}
	wg.Wait()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ExecutionDate != rows[j].ExecutionDate {
			return rows[i].ExecutionDate < rows[j].ExecutionDate
		}
		return rows[i].ClientName < rows[j].ClientName
	})
	return rows, nil
}

func (b *SummaryBuilder) buildRow(ctx context.Context, rev store.Revision) SummaryRow {
	row := SummaryRow{
		ClientName:          rev.ClientName,
		ExecutionDate:       rev.ExecutionDate.Format(dateLayout),
		MeasureName:         Classify(rev),
		PreFixTalkListName:  rev.PreFixTalkListName,
		PostFixTalkListName: rev.PostFixTalkListName,
		DeletedListName:     rev.DeletedListName,
	}

	preStart, postEnd := FixedWindows(rev.ExecutionDate)

	if hasValue(rev.PreFixTalkListName) && hasValue(rev.PostFixTalkListName) {
		cmp, err := b.comp.CompareRates(ctx, rev.ClientName, store.DimensionScript,
			*rev.PreFixTalkListName, *rev.PostFixTalkListName,
			preStart, rev.ExecutionDate, postEnd)
		if err != nil {
			log.Printf("summary: talk improvement rates for %s at %s: %v", rev.ClientName, row.ExecutionDate, err)
		} else {
			row.TalkImprovementPreRate = formatRatePtr(cmp.Pre)
			row.TalkImprovementPostRate = formatRatePtr(cmp.Post)
			row.TalkImprovementDiff = formatRatePtr(cmp.Diff())
		}
	}

	if hasValue(rev.DeletedListName) {
		cmp, err := b.comp.CompareRates(ctx, rev.ClientName, store.DimensionList,
			*rev.DeletedListName, *rev.DeletedListName,
			preStart, rev.ExecutionDate, postEnd)
		if err != nil {
			log.Printf("summary: data deletion rates for %s at %s: %v", rev.ClientName, row.ExecutionDate, err)
		} else {
			row.DataDeletionPreRate = formatRatePtr(cmp.Pre)
			row.DataDeletionPostRate = formatRatePtr(cmp.Post)
			row.DataDeletionDiff = formatRatePtr(cmp.Diff())
		}
	}

	return row
}

func formatRatePtr(v *float64) *string {
	if v == nil {
		return nil
	}
	return strPtr(formatRate(*v))
}

package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/mfurudate/apodash/internal/store"
)

func talkRevision(client, day, pre, post string) store.Revision {
	return store.Revision{
		ClientName:          client,
		ExecutionDate:       date(day),
		PreFixTalkListName:  ptr(pre),
		PostFixTalkListName: ptr(post),
	}
}

func TestSummaryBuildTalkImprovement(t *testing.T) {
	mem := store.NewMemory()
	mem.AddRevisions(talkRevision("Acme", "2025-07-15", "ScriptOld", "ScriptNew"))
	mem.AddCallResults(
		callRow("Acme", "ScriptOld", "", "2025-07-01", 100, 5),
		callRow("Acme", "ScriptNew", "", "2025-07-20", 100, 15),
	)

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.MeasureName != MeasureTalkImprovement {
		t.Errorf("expected %q, got %q", MeasureTalkImprovement, row.MeasureName)
	}
	if row.TalkImprovementPreRate == nil || *row.TalkImprovementPreRate != "5.00" {
		t.Errorf("expected pre rate 5.00, got %v", row.TalkImprovementPreRate)
	}
	if row.TalkImprovementPostRate == nil || *row.TalkImprovementPostRate != "15.00" {
		t.Errorf("expected post rate 15.00, got %v", row.TalkImprovementPostRate)
	}
	if row.TalkImprovementDiff == nil || *row.TalkImprovementDiff != "10.00" {
		t.Errorf("expected diff 10.00, got %v", row.TalkImprovementDiff)
	}
	if row.DataDeletionPreRate != nil || row.DataDeletionDiff != nil {
		t.Error("expected no cleanup stats for a talk-only revision")
	}
}

func TestSummaryBuildBothMeasures(t *testing.T) {
	mem := store.NewMemory()
	rev := talkRevision("Acme", "2025-07-15", "ScriptOld", "ScriptNew")
	rev.DeletedListName = ptr("ListX")
	mem.AddRevisions(rev)
	mem.AddCallResults(
		callRow("Acme", "ScriptOld", "", "2025-07-01", 100, 5),
		callRow("Acme", "ScriptNew", "", "2025-07-20", 100, 15),
		callRow("Acme", "", "ListX", "2025-07-01", 50, 1),
		callRow("Acme", "", "ListX", "2025-07-20", 50, 5),
	)

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := rows[0]
	if row.MeasureName != MeasureBoth {
		t.Errorf("expected %q, got %q", MeasureBoth, row.MeasureName)
	}
	if row.TalkImprovementDiff == nil {
		t.Error("expected talk stats for a both-measures revision")
	}
	if row.DataDeletionPreRate == nil || *row.DataDeletionPreRate != "2.00" {
		t.Errorf("expected cleanup pre rate 2.00, got %v", row.DataDeletionPreRate)
	}
	if row.DataDeletionDiff == nil || *row.DataDeletionDiff != "8.00" {
		t.Errorf("expected cleanup diff 8.00, got %v", row.DataDeletionDiff)
	}
}

func TestSummaryUndeterminedRatesAreNil(t *testing.T) {
	mem := store.NewMemory()
	// No call rows at all: both windows are undetermined.
	mem.AddRevisions(talkRevision("Acme", "2025-07-15", "ScriptOld", "ScriptNew"))

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := rows[0]
	if row.TalkImprovementPreRate != nil || row.TalkImprovementPostRate != nil || row.TalkImprovementDiff != nil {
		t.Errorf("expected nil rates for empty windows, got %+v", row)
	}
}

func TestSummaryRevisionFetchFailureIsFatal(t *testing.T) {
	mem := store.NewMemory()
	mem.Fail = errors.New("store down")

	if _, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01")); err == nil {
		t.Error("expected error when the revisions fetch fails")
	}
}

func TestSummaryRateFetchFailureIsNotFatal(t *testing.T) {
	mem := store.NewMemory()
	mem.AddRevisions(
		talkRevision("Acme", "2025-07-10", "A", "B"),
		talkRevision("Beta", "2025-07-20", "C", "D"),
	)
	mem.FailCalls = errors.New("transient failure")

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("expected per-revision failures to be downgraded, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.TalkImprovementPreRate != nil || row.TalkImprovementDiff != nil {
			t.Errorf("expected nil stats for failed revision %s", row.ClientName)
		}
	}
}

func TestSummarySortOrder(t *testing.T) {
	mem := store.NewMemory()
	mem.AddRevisions(
		talkRevision("Zeta", "2025-07-20", "A", "B"),
		talkRevision("Beta", "2025-07-10", "A", "B"),
		talkRevision("Acme", "2025-07-20", "A", "B"),
	)

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, row := range rows {
		got = append(got, row.ExecutionDate+"/"+row.ClientName)
	}
	want := []string{"2025-07-10/Beta", "2025-07-20/Acme", "2025-07-20/Zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSummaryMonthRangeExcludesNeighbors(t *testing.T) {
	mem := store.NewMemory()
	mem.AddRevisions(
		talkRevision("Acme", "2025-06-30", "A", "B"),
		talkRevision("Acme", "2025-07-01", "A", "B"),
		talkRevision("Acme", "2025-07-31", "A", "B"),
		talkRevision("Acme", "2025-08-01", "A", "B"),
	)

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 revisions inside [2025-07-01, 2025-08-01), got %d", len(rows))
	}
}

func TestSummaryOtherMeasureHasNoStats(t *testing.T) {
	mem := store.NewMemory()
	mem.AddRevisions(store.Revision{ClientName: "Acme", ExecutionDate: date("2025-07-15")})

	rows, err := NewSummaryBuilder(mem).Build(context.Background(), date("2025-07-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := rows[0]
	if row.MeasureName != MeasureOther {
		t.Errorf("expected %q, got %q", MeasureOther, row.MeasureName)
	}
	if row.TalkImprovementPreRate != nil || row.DataDeletionPreRate != nil {
		t.Error("expected no stats for その他")
	}
}

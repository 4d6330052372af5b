// Package analytics turns raw call-result rows and campaign
// revisions into appointment-rate aggregates, chartable time series,
// and before/after comparisons around each revision's execution date.
package analytics

import (
	"fmt"
	"time"
)

// Measure categories derived from a revision's populated fields.
const (
	MeasureBoth            = "両方実施"
	MeasureTalkImprovement = "トーク改善"
	MeasureDataCleanup     = "不要データ削除"
	MeasureOther           = "その他"
)

// Sentinel labels for rows missing a script or list name, so no row
// is silently dropped from the aggregation.
const (
	UnknownScript = "不明_script"
	UnknownList   = "不明_list"
)

const dateLayout = "2006-01-02"

// RateStats is the summed outcome of a filtered set of call-result
// rows. AppointmentRate is pre-formatted to two decimals for display;
// a zero denominator yields "0.00".
type RateStats struct {
	TotalCalls        int    `json:"totalCalls"`
	TotalAppointments int    `json:"totalAppointments"`
	AppointmentRate   string `json:"appointmentRate"`
}

// Point is one chart point. Y is a pre-formatted string: a two
// decimal rate for line series, a plain integer for bar series.
type Point struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// ChartDataSet is one renderable series: an appointment-rate line or
// a call-count bar for a single script or list.
type ChartDataSet struct {
	Label           string  `json:"label"`
	Data            []Point `json:"data"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	Type            string  `json:"type"`
	Fill            bool    `json:"fill"`
}

// SummaryRow is one monthly-summary table row: one revision with its
// talk-improvement and data-cleanup before/after rates. Rate fields
// are nil when the measure does not apply, when the window held no
// calls, or when that revision's fetch failed.
type SummaryRow struct {
	ClientName              string  `json:"client_name"`
	ExecutionDate           string  `json:"execution_date"`
	MeasureName             string  `json:"measure_name"`
	TalkImprovementPreRate  *string `json:"talk_improvement_pre_rate"`
	TalkImprovementPostRate *string `json:"talk_improvement_post_rate"`
	TalkImprovementDiff     *string `json:"talk_improvement_diff"`
	DataDeletionPreRate     *string `json:"data_deletion_pre_rate"`
	DataDeletionPostRate    *string `json:"data_deletion_post_rate"`
	DataDeletionDiff        *string `json:"data_deletion_diff"`
	PreFixTalkListName      *string `json:"pre_fix_talk_list_name"`
	PostFixTalkListName     *string `json:"post_fix_talk_list_name"`
	DeletedListName         *string `json:"deleted_list_name"`
}

// RevisionDetail is a classified revision with its calendar-month
// before/after stats, used to draw marker lines on the detail chart.
type RevisionDetail struct {
	ExecutionDate       string     `json:"execution_date"`
	MeasureName         string     `json:"measure_name"`
	PreMeasureStats     *RateStats `json:"preMeasureStats"`
	PostMeasureStats    *RateStats `json:"postMeasureStats"`
	PreFixTalkListName  *string    `json:"pre_fix_talk_list_name"`
	PostFixTalkListName *string    `json:"post_fix_talk_list_name"`
	DeletedListName     *string    `json:"deleted_list_name"`
}

// DimensionAggregate is a whole-month total for one script or list,
// with the related revision's before/after stats attached when that
// value appears in a revision.
type DimensionAggregate struct {
	TotalCalls        int        `json:"totalCalls"`
	TotalAppointments int        `json:"totalAppointments"`
	AppointmentRate   string     `json:"appointmentRate"`
	ExecutionDate     *string    `json:"execution_date,omitempty"`
	PreMeasureStats   *RateStats `json:"preMeasureStats,omitempty"`
	PostMeasureStats  *RateStats `json:"postMeasureStats,omitempty"`
}

// ClientDetails is the full drill-down view for one client and month.
type ClientDetails struct {
	ChartDataSets     []ChartDataSet                 `json:"chartDataSets"`
	Revisions         []RevisionDetail               `json:"revisions"`
	TotalAppointments int                            `json:"totalAppointments"`
	TotalCalls        int                            `json:"totalCalls"`
	AppointmentRate   string                         `json:"appointmentRate"`
	ScriptAggregates  map[string]*DimensionAggregate `json:"scriptAggregates"`
	ListAggregates    map[string]*DimensionAggregate `json:"listAggregates"`
}

// ParseMonth parses a YYYY-MM month string into the first day of
// that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// MonthRange returns the half-open [first day, first day of next
// month) range for the month containing t.
func MonthRange(t time.Time) (start, next time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	next = start.AddDate(0, 1, 0)
	return start, next
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.2f", rate)
}

func strPtr(s string) *string { return &s }

func hasValue(s *string) bool { return s != nil && *s != "" }

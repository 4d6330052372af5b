package analytics

import (
	"sort"
	"strconv"

	"github.com/mfurudate/apodash/internal/store"
)

// DayTotals accumulates calls and appointments for one day.
type DayTotals struct {
	TotalCalls   int
	Appointments int
}

// DailyAggregate buckets a client's call-result rows by script name
// and by list name, then by calendar day. Accumulation is additive;
// the multiset of input rows determines the totals regardless of
// their order.
type DailyAggregate struct {
	ByScript map[string]map[string]*DayTotals
	ByList   map[string]map[string]*DayTotals
}

// AggregateDaily builds the daily aggregation for a set of rows.
// Rows missing a script or list name are bucketed under the 不明
// sentinels; timestamps are truncated to the calendar day.
func AggregateDaily(rows []store.CallResult) *DailyAggregate {
	agg := &DailyAggregate{
		ByScript: make(map[string]map[string]*DayTotals),
		ByList:   make(map[string]map[string]*DayTotals),
	}
	for _, row := range rows {
		date := row.OperatingDate.Format(dateLayout)

		script := UnknownScript
		if hasValue(row.ScriptName) {
			script = *row.ScriptName
		}
		list := UnknownList
		if hasValue(row.ListName) {
			list = *row.ListName
		}

		accumulate(agg.ByScript, script, date, row)
		accumulate(agg.ByList, list, date, row)
	}
	return agg
}

func accumulate(m map[string]map[string]*DayTotals, name, date string, row store.CallResult) {
	days, ok := m[name]
	if !ok {
		days = make(map[string]*DayTotals)
		m[name] = days
	}
	totals, ok := days[date]
	if !ok {
		totals = &DayTotals{}
		days[date] = totals
	}
	totals.TotalCalls += row.CallCount
	totals.Appointments += row.Appointment
}

// ScriptNames returns the distinct script names, sorted.
func (a *DailyAggregate) ScriptNames() []string { return sortedKeys(a.ByScript) }

// ListNames returns the distinct list names, sorted.
func (a *DailyAggregate) ListNames() []string { return sortedKeys(a.ByList) }

// ChartDataSets renders the aggregation as chart series: per script
// and per list, an appointment-rate line and a call-count bar, with
// points sorted by date. Colors come from a fixed palette indexed by
// series position so repeated builds are identical.
func (a *DailyAggregate) ChartDataSets() []ChartDataSet {
	var sets []ChartDataSet
	for _, script := range a.ScriptNames() {
		sets = appendSeriesPair(sets, "スクリプト: "+script, a.ByScript[script])
	}
	for _, list := range a.ListNames() {
		sets = appendSeriesPair(sets, "リスト: "+list, a.ByList[list])
	}
	return sets
}

func appendSeriesPair(sets []ChartDataSet, prefix string, days map[string]*DayTotals) []ChartDataSet {
	dates := sortedKeys(days)

	ratePoints := make([]Point, 0, len(dates))
	callPoints := make([]Point, 0, len(dates))
	for _, date := range dates {
		totals := days[date]
		rate := 0.0
		if totals.TotalCalls > 0 {
			rate = float64(totals.Appointments) / float64(totals.TotalCalls) * 100
		}
		ratePoints = append(ratePoints, Point{X: date, Y: formatRate(rate)})
		callPoints = append(callPoints, Point{X: date, Y: strconv.Itoa(totals.TotalCalls)})
	}

	line := seriesColor(len(sets))
	sets = append(sets, ChartDataSet{
		Label:           prefix + " (アポ率)",
		Data:            ratePoints,
		BorderColor:     line,
		BackgroundColor: line + "80",
		Type:            "line",
		Fill:            false,
	})
	bar := seriesColor(len(sets))
	sets = append(sets, ChartDataSet{
		Label:           prefix + " (架電数)",
		Data:            callPoints,
		BorderColor:     bar,
		BackgroundColor: bar + "80",
		Type:            "bar",
		Fill:            true,
	})
	return sets
}

// palette is a fixed set of distinguishable series colors; series
// beyond its length wrap around.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

func seriesColor(index int) string {
	return palette[index%len(palette)]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

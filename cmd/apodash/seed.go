package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mfurudate/apodash/internal/store"
	"github.com/mfurudate/apodash/internal/store/sqlitestore"
)

// seedCallResults loads call-result rows from a CSV with columns
// client_name, script_name, list_name, operating_date, call_count,
// appointment. Rows with a missing client or unparseable date or
// count are skipped, not fatal.
func seedCallResults(db *sqlitestore.DB, path string) (loaded, skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("unable to read header: %w", err)
	}
	colMap := normalizeHeaders(headers)

	clientIdx, ok := findColumn(colMap, []string{"client_name", "client"})
	if !ok {
		return 0, 0, errors.New("missing client_name column")
	}
	dateIdx, ok := findColumn(colMap, []string{"operating_date", "date"})
	if !ok {
		return 0, 0, errors.New("missing operating_date column")
	}
	callsIdx, ok := findColumn(colMap, []string{"call_count", "calls"})
	if !ok {
		return 0, 0, errors.New("missing call_count column")
	}
	apptIdx, ok := findColumn(colMap, []string{"appointment", "appointments"})
	if !ok {
		return 0, 0, errors.New("missing appointment column")
	}
	scriptIdx, _ := findColumn(colMap, []string{"script_name", "script"})
	listIdx, _ := findColumn(colMap, []string{"list_name", "list"})

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return loaded, skipped, fmt.Errorf("unable to read CSV: %w", err)
		}

		client := getValue(record, clientIdx)
		if client == "" {
			skipped++
			continue
		}
		date, err := parseDate(getValue(record, dateIdx))
		if err != nil {
			skipped++
			continue
		}
		calls, err := strconv.Atoi(getValue(record, callsIdx))
		if err != nil || calls < 0 {
			skipped++
			continue
		}
		appointments, err := strconv.Atoi(getValue(record, apptIdx))
		if err != nil || appointments < 0 {
			skipped++
			continue
		}

		row := store.CallResult{
			ClientName:    client,
			ScriptName:    optional(getValue(record, scriptIdx)),
			ListName:      optional(getValue(record, listIdx)),
			OperatingDate: date,
			CallCount:     calls,
			Appointment:   appointments,
		}
		if err := db.InsertCallResult(row); err != nil {
			return loaded, skipped, err
		}
		loaded++
	}
	return loaded, skipped, nil
}

// seedRevisions loads campaign revisions from a CSV with columns
// client_name, execution_date, pre_fix_talk_list_name,
// post_fix_talk_list_name, deleted_list_name.
func seedRevisions(db *sqlitestore.DB, path string) (loaded, skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("unable to read header: %w", err)
	}
	colMap := normalizeHeaders(headers)

	clientIdx, ok := findColumn(colMap, []string{"client_name", "client"})
	if !ok {
		return 0, 0, errors.New("missing client_name column")
	}
	dateIdx, ok := findColumn(colMap, []string{"execution_date", "date"})
	if !ok {
		return 0, 0, errors.New("missing execution_date column")
	}
	preIdx, _ := findColumn(colMap, []string{"pre_fix_talk_list_name", "pre"})
	postIdx, _ := findColumn(colMap, []string{"post_fix_talk_list_name", "post"})
	deletedIdx, _ := findColumn(colMap, []string{"deleted_list_name", "deleted"})

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return loaded, skipped, fmt.Errorf("unable to read CSV: %w", err)
		}

		client := getValue(record, clientIdx)
		if client == "" {
			skipped++
			continue
		}
		date, err := parseDate(getValue(record, dateIdx))
		if err != nil {
			skipped++
			continue
		}

		rev := store.Revision{
			ClientName:          client,
			ExecutionDate:       date,
			PreFixTalkListName:  optional(getValue(record, preIdx)),
			PostFixTalkListName: optional(getValue(record, postIdx)),
			DeletedListName:     optional(getValue(record, deletedIdx)),
		}
		if err := db.InsertRevision(rev); err != nil {
			return loaded, skipped, err
		}
		loaded++
	}
	return loaded, skipped, nil
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

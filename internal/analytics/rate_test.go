package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/mfurudate/apodash/internal/store"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func callRow(client, script, list, day string, calls, appointments int) store.CallResult {
	row := store.CallResult{
		ClientName:    client,
		OperatingDate: date(day),
		CallCount:     calls,
		Appointment:   appointments,
	}
	if script != "" {
		row.ScriptName = ptr(script)
	}
	if list != "" {
		row.ListName = ptr(list)
	}
	return row
}

func TestCalculatorStats(t *testing.T) {
	mem := store.NewMemory()
	mem.AddCallResults(
		callRow("Acme", "A", "L1", "2025-07-01", 100, 10),
		callRow("Acme", "A", "L1", "2025-07-02", 50, 10),
		callRow("Acme", "B", "L1", "2025-07-02", 999, 0),
		callRow("Other", "A", "L1", "2025-07-02", 999, 0),
	)

	calc := NewCalculator(mem)
	stats, err := calc.Stats(context.Background(), "Acme", store.DimensionScript, "A",
		date("2025-07-01"), date("2025-08-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCalls != 150 {
		t.Errorf("expected 150 calls, got %d", stats.TotalCalls)
	}
	if stats.TotalAppointments != 20 {
		t.Errorf("expected 20 appointments, got %d", stats.TotalAppointments)
	}
	if stats.AppointmentRate != "13.33" {
		t.Errorf("expected rate 13.33, got %q", stats.AppointmentRate)
	}
}

func TestCalculatorStatsEmptyWindow(t *testing.T) {
	calc := NewCalculator(store.NewMemory())
	stats, err := calc.Stats(context.Background(), "Acme", store.DimensionScript, "A",
		date("2025-07-01"), date("2025-08-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCalls != 0 || stats.TotalAppointments != 0 {
		t.Errorf("expected zero totals, got %+v", stats)
	}
	if stats.AppointmentRate != "0.00" {
		t.Errorf("expected 0.00 rate for empty window, got %q", stats.AppointmentRate)
	}
}

func TestCalculatorRateEmptyWindowIsNil(t *testing.T) {
	calc := NewCalculator(store.NewMemory())
	rate, err := calc.Rate(context.Background(), "Acme", store.DimensionScript, "A",
		date("2025-07-01"), date("2025-08-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != nil {
		t.Errorf("expected nil rate for empty window, got %v", *rate)
	}
}

func TestCalculatorRangeIsHalfOpen(t *testing.T) {
	mem := store.NewMemory()
	mem.AddCallResults(
		callRow("Acme", "A", "", "2025-06-30", 10, 1),
		callRow("Acme", "A", "", "2025-07-01", 10, 1),
		callRow("Acme", "A", "", "2025-07-31", 10, 1),
		callRow("Acme", "A", "", "2025-08-01", 10, 1),
	)

	calc := NewCalculator(mem)
	stats, err := calc.Stats(context.Background(), "Acme", store.DimensionScript, "A",
		date("2025-07-01"), date("2025-08-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCalls != 20 {
		t.Errorf("expected boundary rows excluded/included per [from, to), got %d calls", stats.TotalCalls)
	}
}

func TestCalculatorListDimension(t *testing.T) {
	mem := store.NewMemory()
	mem.AddCallResults(
		callRow("Acme", "A", "ListX", "2025-07-01", 40, 4),
		callRow("Acme", "A", "ListY", "2025-07-01", 60, 30),
	)

	calc := NewCalculator(mem)
	stats, err := calc.Stats(context.Background(), "Acme", store.DimensionList, "ListX",
		date("2025-07-01"), date("2025-08-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCalls != 40 || stats.AppointmentRate != "10.00" {
		t.Errorf("expected ListX only (40 calls, 10.00), got %+v", stats)
	}
}

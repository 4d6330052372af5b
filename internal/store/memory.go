package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Store for tests and fixtures.
type Memory struct {
	mu        sync.RWMutex
	calls     []CallResult
	revisions []Revision

	// Fail, when set, is returned by every read. Tests use it to
	// simulate upstream failures.
	Fail error
	// FailCalls, when set, is returned by CallResults only, leaving
	// the revisions fetch healthy.
	FailCalls error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// AddCallResults appends call-result rows.
func (m *Memory) AddCallResults(rows ...CallResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, rows...)
}

// AddRevisions appends revision rows.
func (m *Memory) AddRevisions(rows ...Revision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revisions = append(m.revisions, rows...)
}

// CallResults returns rows matching the filter, in insertion order.
func (m *Memory) CallResults(_ context.Context, f CallFilter) ([]CallResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	if m.FailCalls != nil {
		return nil, m.FailCalls
	}

	var out []CallResult
	for _, row := range m.calls {
		if row.ClientName != f.Client {
			continue
		}
		if !f.From.IsZero() && row.OperatingDate.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !row.OperatingDate.Before(f.To) {
			continue
		}
		switch f.Dimension {
		case DimensionScript:
			if row.ScriptName == nil || *row.ScriptName != f.Value {
				continue
			}
		case DimensionList:
			if row.ListName == nil || *row.ListName != f.Value {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Revisions returns rows matching the filter, in insertion order.
func (m *Memory) Revisions(_ context.Context, f RevisionFilter) ([]Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}

	var out []Revision
	for _, rev := range m.revisions {
		if f.Client != "" && rev.ClientName != f.Client {
			continue
		}
		if !f.From.IsZero() && rev.ExecutionDate.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !rev.ExecutionDate.Before(f.To) {
			continue
		}
		out = append(out, rev)
	}
	return out, nil
}

// Ping reports the configured failure, if any.
func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Fail
}

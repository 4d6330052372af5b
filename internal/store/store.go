package store

import (
	"context"
	"time"
)

// Dimension selects which categorical column a call-result query
// filters on.
type Dimension string

const (
	DimensionScript Dimension = "script_name"
	DimensionList   Dimension = "list_name"
)

// CallResult is one ingested row of the call-results table: the
// outcome of calling one list with one script for one client on one
// operating day. Rows are immutable; an external pipeline owns them.
type CallResult struct {
	ClientName    string
	ScriptName    *string
	ListName      *string
	OperatingDate time.Time
	CallCount     int
	Appointment   int
}

// Revision is one dated campaign intervention. Which measure it
// represents is derived from which of the three nullable fields are
// populated (see analytics.Classify).
type Revision struct {
	ClientName          string
	ExecutionDate       time.Time
	PreFixTalkListName  *string
	PostFixTalkListName *string
	DeletedListName     *string
}

// CallFilter narrows a call-results read. Client is required. When
// Dimension is set, Value is matched exactly against that column.
// The date range is half-open: From <= operating_date < To.
type CallFilter struct {
	Client    string
	Dimension Dimension
	Value     string
	From      time.Time
	To        time.Time
}

// RevisionFilter narrows a revisions read. Client is optional (the
// monthly summary reads every client's revisions). The date range is
// half-open on execution_date.
type RevisionFilter struct {
	Client string
	From   time.Time
	To     time.Time
}

// Store is the read contract against the two external datasets.
// Implementations must be safe for concurrent use; the builders fan
// queries out across goroutines.
type Store interface {
	CallResults(ctx context.Context, f CallFilter) ([]CallResult, error)
	Revisions(ctx context.Context, f RevisionFilter) ([]Revision, error)
	Ping(ctx context.Context) error
}

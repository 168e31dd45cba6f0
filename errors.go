package vdba

import (
	"errors"

	"github.com/zoobzio/vdba/internal/eval"
	"github.com/zoobzio/vdba/internal/types"
)

// ErrUsage matches every UsageError through errors.Is.
var ErrUsage = errors.New("usage error")

// UsageError reports a call the API cannot accept, such as a missing
// argument. It is raised before any row is touched.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrUsage) hold for every UsageError.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

func usage(msg string) error { return &UsageError{Message: msg} }

// Usage error messages.
const (
	msgCount         = "Count expected."
	msgOrdering      = "Ordering column(s) expected."
	msgFilter        = "Filter expected."
	msgCallback      = "Callback expected."
	msgTarget        = "Target table expected."
	msgSourceColumn  = "Source column name expected."
	msgGrouping      = "Grouping column(s) expected."
	msgNoGrouping    = "No grouping column specified."
	msgColumn        = "Column name expected."
	msgTable         = "Table name expected."
	msgTables        = "Table names expected."
	msgIndexName     = "Index name expected."
	msgIndexColumns  = "Indexing column(s) expected."
	msgIndex         = "Index expected."
	msgRows          = "Row(s) expected."
	msgUpdateColumns = "Column(s) to update expected."
	msgConfiguration = "Configuration expected."
	msgMap           = "Map expected."
	msgColumns       = "Column(s) expected."
	msgInvalidFilter = "Invalid filter: "
	msgInvalidUpdate = "Invalid update: "
	msgInvalidSchema = "Invalid table definition: "
)

// Data errors. Backends and the table layer wrap these with context.
var (
	ErrTableExists = errors.New("table already exists")
	ErrIndexExists = errors.New("index already exists")
	ErrNoTable     = eval.ErrNoTable
	ErrNoColumn    = eval.ErrNoColumn
	ErrConstraint  = errors.New("constraint violation")
	ErrType        = types.ErrType
	ErrOperand     = eval.ErrOperand
	ErrClosed      = errors.New("connection is closed")
)

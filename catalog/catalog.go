// Package catalog defines the interfaces the planner and execution engine
// use to reach table metadata and row data. The Paradox binary decoder and
// the directory walker that locate real .DB files are external
// collaborators outside this module's core; Catalog is the seam between
// them and the engine.
package catalog

import (
	"context"
	"errors"

	"github.com/wanjarus/paradoxdriver/types"
)

// ErrIteratorDone is returned by RowIterator.Next once every row has been
// produced.
var ErrIteratorDone = errors.New("catalog: iterator exhausted")

// ColumnDescriptor describes one column of a catalog table.
type ColumnDescriptor struct {
	Name     string
	SQLType  types.SQLType
	Nullable bool
}

// RowIterator is a forward-only, finite iterator over a table's rows.
type RowIterator interface {
	// Next returns the next row, or ErrIteratorDone once exhausted.
	Next() (types.Row, error)
	Close() error
}

// TableDescriptor exposes a catalog table's name, its columns, and a
// fresh row scan.
type TableDescriptor interface {
	Name() string
	Columns() []ColumnDescriptor
	Scan(ctx context.Context) (RowIterator, error)
}

// Catalog enumerates tables in a named schema. namePattern matches
// case-insensitively; an empty pattern matches every table.
type Catalog interface {
	ListTables(ctx context.Context, namePattern string) ([]TableDescriptor, error)
}

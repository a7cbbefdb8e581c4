// Package resultset implements the materialized, bidirectionally
// scrollable row cursor returned by query execution: positioning
// (before-first, on-row, after-last), absolute/relative navigation, and
// typed column accessors bridging FieldValue to a client's SQL type
// system.
package resultset

import (
	"strings"

	"github.com/wanjarus/paradoxdriver/sqlerr"
	"github.com/wanjarus/paradoxdriver/types"
)

type state int

const (
	beforeFirst state = iota
	onRow
	afterLast
	closed
)

// ResultSet is a scroll-insensitive, read-only cursor over a fully
// materialized row set. The source it is built from materializes every
// row up front; streaming is not supported here because absolute and
// previous both require random access into rows already produced.
type ResultSet struct {
	rows    []types.Row
	columns []types.Column

	st          state
	index       int // valid only when st == onRow
	lastWasNull bool
}

// New wraps rows and columns in a cursor positioned BeforeFirst.
func New(rows []types.Row, columns []types.Column) *ResultSet {
	return &ResultSet{rows: rows, columns: columns, st: beforeFirst}
}

func (r *ResultSet) checkOpen() error {
	if r.st == closed {
		return sqlerr.Newf(sqlerr.InvalidState, "result set is closed")
	}
	return nil
}

func (r *ResultSet) checkOnRow() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if r.st != onRow {
		return sqlerr.Newf(sqlerr.InvalidState, "result set is not positioned on a row")
	}
	return nil
}

// Next advances one row forward. From BeforeFirst it lands on row 0 if
// any rows exist; from On(i) it advances
// while i+1 is in range; anywhere else it moves to (or stays at) AfterLast.
func (r *ResultSet) Next() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	switch r.st {
	case beforeFirst:
		if len(r.rows) > 0 {
			r.st, r.index = onRow, 0
			return true, nil
		}
		r.st = afterLast
		return false, nil
	case onRow:
		if r.index+1 < len(r.rows) {
			r.index++
			return true, nil
		}
		r.st = afterLast
		return false, nil
	default: // afterLast
		return false, nil
	}
}

// Previous is Next's mirror image, moving toward BeforeFirst.
func (r *ResultSet) Previous() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	switch r.st {
	case afterLast:
		if len(r.rows) > 0 {
			r.st, r.index = onRow, len(r.rows)-1
			return true, nil
		}
		r.st = beforeFirst
		return false, nil
	case onRow:
		if r.index-1 >= 0 {
			r.index--
			return true, nil
		}
		r.st = beforeFirst
		return false, nil
	default: // beforeFirst
		return false, nil
	}
}

// First moves to row 0 if any rows exist, else to BeforeFirst.
func (r *ResultSet) First() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	if len(r.rows) > 0 {
		r.st, r.index = onRow, 0
		return true, nil
	}
	r.st = beforeFirst
	return false, nil
}

// Last moves to the final row if any rows exist, else to AfterLast.
func (r *ResultSet) Last() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	if len(r.rows) > 0 {
		r.st, r.index = onRow, len(r.rows)-1
		return true, nil
	}
	r.st = afterLast
	return false, nil
}

// BeforeFirst unconditionally repositions to BeforeFirst.
func (r *ResultSet) BeforeFirst() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	r.st = beforeFirst
	return nil
}

// AfterLast unconditionally repositions to AfterLast.
func (r *ResultSet) AfterLast() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	r.st = afterLast
	return nil
}

func (r *ResultSet) IsBeforeFirst() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.st == beforeFirst, nil
}

func (r *ResultSet) IsAfterLast() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.st == afterLast, nil
}

func (r *ResultSet) IsFirst() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.st == onRow && len(r.rows) > 0 && r.index == 0, nil
}

func (r *ResultSet) IsLast() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.st == onRow && len(r.rows) > 0 && r.index == len(r.rows)-1, nil
}

// Absolute implements the bit-exact positioning contract:
//
//   - n == 0: always moves to BeforeFirst and returns true.
//   - n > 0: targets row n-1; in range -> On(n-1), true; else -> AfterLast,
//     false.
//   - n < 0: targets row len+n; in range (>= 0) -> On(len+n), true; else
//     -> BeforeFirst, false.
//
// This is the plain formula, applied uniformly including on an empty
// result set. An earlier note in the source claimed absolute(n<0) returns
// true even when len==0; that is inconsistent with the documented
// absolute(-1)-on-empty example (false, BeforeFirst), so this
// implementation follows the example rather than the note — see
// DESIGN.md's Open Question decisions.
func (r *ResultSet) Absolute(n int) (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	if n == 0 {
		r.st = beforeFirst
		return true, nil
	}
	if n > 0 {
		idx := n - 1
		if idx < len(r.rows) {
			r.st, r.index = onRow, idx
			return true, nil
		}
		r.st = afterLast
		return false, nil
	}
	idx := len(r.rows) + n
	if idx >= 0 {
		r.st, r.index = onRow, idx
		return true, nil
	}
	r.st = beforeFirst
	return false, nil
}

// Relative is Absolute(current+n), where current is the 1-based row
// number GetRow reports (0 when not positioned on a row).
func (r *ResultSet) Relative(n int) (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.Absolute(r.GetRow() + n)
}

// GetRow returns the 1-based index of the current row, or 0 when the
// cursor is not positioned on a row.
func (r *ResultSet) GetRow() int {
	if r.st != onRow {
		return 0
	}
	return r.index + 1
}

// Close releases row storage and marks the cursor closed. It is
// idempotent. After Close, positioning methods and typed accessors fail
// with InvalidState; IsClosed, GetRow (which reports 0), GetMetadata,
// FindColumn, and WasNull do not check for closure and keep answering.
func (r *ResultSet) Close() error {
	r.rows = nil
	r.st = closed
	return nil
}

// IsClosed reports whether Close has been called.
func (r *ResultSet) IsClosed() bool { return r.st == closed }

// GetMetadata returns the column descriptors for this result set.
func (r *ResultSet) GetMetadata() []types.Column { return r.columns }

// FindColumn does a case-insensitive label lookup, returning a 1-based
// column index.
func (r *ResultSet) FindColumn(name string) (int, error) {
	for i, c := range r.columns {
		if strings.EqualFold(c.Label, name) {
			return i + 1, nil
		}
	}
	return 0, sqlerr.Newf(sqlerr.NotFound, "no such column %q", name)
}

func (r *ResultSet) fieldAt(col int) (types.FieldValue, error) {
	if err := r.checkOnRow(); err != nil {
		return types.FieldValue{}, err
	}
	idx := col - 1
	if idx < 0 || idx >= len(r.columns) {
		return types.FieldValue{}, sqlerr.Newf(sqlerr.InvalidSQL, "column index %d out of range", col)
	}
	v := r.rows[r.index][idx]
	r.lastWasNull = v.IsNull()
	return v, nil
}

// WasNull reports whether the most recent typed accessor returned a null
// field.
func (r *ResultSet) WasNull() bool { return r.lastWasNull }

// GetString returns the 1-based column's value as a string; a null field
// yields "" with WasNull()==true.
func (r *ResultSet) GetString(col int) (string, error) {
	v, err := r.fieldAt(col)
	if err != nil {
		return "", err
	}
	if v.IsNull() {
		return "", nil
	}
	s, _ := v.Text()
	return s, nil
}

// GetInt64 returns the 1-based column's value as an integer; a null field
// yields 0 with WasNull()==true.
func (r *ResultSet) GetInt64(col int) (int64, error) {
	v, err := r.fieldAt(col)
	if err != nil {
		return 0, err
	}
	if v.IsNull() {
		return 0, nil
	}
	i, _ := v.Int64()
	return i, nil
}

// GetFloat64 returns the 1-based column's value as a float; a null field
// yields 0 with WasNull()==true.
func (r *ResultSet) GetFloat64(col int) (float64, error) {
	v, err := r.fieldAt(col)
	if err != nil {
		return 0, err
	}
	if v.IsNull() {
		return 0, nil
	}
	f, _ := v.Float64()
	return f, nil
}

// GetBool returns the 1-based column's value as a boolean; a null field
// yields false with WasNull()==true.
func (r *ResultSet) GetBool(col int) (bool, error) {
	v, err := r.fieldAt(col)
	if err != nil {
		return false, err
	}
	if v.IsNull() {
		return false, nil
	}
	b, _ := v.Bool()
	return b, nil
}

// GetBytes returns the 1-based column's value as a byte slice; a null
// field yields nil with WasNull()==true.
func (r *ResultSet) GetBytes(col int) ([]byte, error) {
	v, err := r.fieldAt(col)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, nil
	}
	b, _ := v.Bytes()
	return b, nil
}

// GetStringByName is GetString via a case-insensitive column label.
func (r *ResultSet) GetStringByName(name string) (string, error) {
	i, err := r.FindColumn(name)
	if err != nil {
		return "", err
	}
	return r.GetString(i)
}

// GetInt64ByName is GetInt64 via a case-insensitive column label.
func (r *ResultSet) GetInt64ByName(name string) (int64, error) {
	i, err := r.FindColumn(name)
	if err != nil {
		return 0, err
	}
	return r.GetInt64(i)
}

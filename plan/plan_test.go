package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanjarus/paradoxdriver/catalog"
	"github.com/wanjarus/paradoxdriver/sqlerr"
	"github.com/wanjarus/paradoxdriver/types"
)

// stubTable is a minimal catalog.TableDescriptor for planner tests.
type stubTable struct {
	name string
	cols []catalog.ColumnDescriptor
}

func (s *stubTable) Name() string                          { return s.name }
func (s *stubTable) Columns() []catalog.ColumnDescriptor    { return s.cols }
func (s *stubTable) Scan(context.Context) (catalog.RowIterator, error) {
	return nil, nil
}

func acTable() *stubTable {
	return &stubTable{
		name: "test",
		cols: []catalog.ColumnDescriptor{
			{Name: "ac", SQLType: types.Char, Nullable: true},
		},
	}
}

func expectCode(t *testing.T, err error, code sqlerr.Code) {
	t.Helper()
	require.Error(t, err)
	got, ok := sqlerr.CodeOf(err)
	require.True(t, ok, "expected a *sqlerr.Error, got %v", err)
	require.Equal(t, code, got)
}

func TestAddColumnUnqualifiedAmbiguous(t *testing.T) {
	p := New()
	tbl := acTable()
	p.AddTable("test", tbl)
	p.AddTable("test2", tbl)

	_, err := p.AddColumn("ac")
	expectCode(t, err, sqlerr.InvalidSQL)
	require.Len(t, p.Columns, 0, "failed AddColumn must not grow Columns")
}

func TestAddColumnQualifiedSucceeds(t *testing.T) {
	p := New()
	p.AddTable("test", acTable())

	col, err := p.AddColumn("test.ac")
	require.NoError(t, err)
	require.NotNil(t, col)
	require.Len(t, p.Columns, 1)
}

func TestAddColumnUnknownAliasFails(t *testing.T) {
	p := New()
	p.AddTable("test", acTable())

	_, err := p.AddColumn("test2.ac")
	expectCode(t, err, sqlerr.InvalidSQL)
}

func TestAddColumnNullTableFails(t *testing.T) {
	p := New()
	p.AddTable("test", nil)

	_, err := p.AddColumn("test.ac")
	expectCode(t, err, sqlerr.InvalidSQL)
}

func TestAddColumnUnqualifiedUniqueMatchBinds(t *testing.T) {
	p := New()
	p.AddTable("t", acTable())

	col, err := p.AddColumn("AC")
	require.NoError(t, err)
	require.Equal(t, 0, col.ColumnIndex)
}

func TestAddColumnUnqualifiedSkipsNullTables(t *testing.T) {
	p := New()
	p.AddTable("missing", nil)
	p.AddTable("present", acTable())

	col, err := p.AddColumn("ac")
	require.NoError(t, err)
	require.Equal(t, "present", col.SourceTable.Alias)
}

func TestAddColumnUnknownColumnFails(t *testing.T) {
	p := New()
	p.AddTable("t", acTable())

	_, err := p.AddColumn("nope")
	expectCode(t, err, sqlerr.InvalidSQL)
}

func TestGetColumnsReturnsBoundOrder(t *testing.T) {
	p := New()
	tbl := &stubTable{
		name: "t",
		cols: []catalog.ColumnDescriptor{
			{Name: "a", SQLType: types.Char},
			{Name: "b", SQLType: types.Char},
		},
	}
	p.AddTable("t", tbl)
	_, err := p.AddColumn("b")
	require.NoError(t, err)
	_, err = p.AddColumn("a")
	require.NoError(t, err)

	cols := p.GetColumns()
	require.Len(t, cols, 2)
	require.Equal(t, 1, cols[0].ColumnIndex)
	require.Equal(t, 0, cols[1].ColumnIndex)
}

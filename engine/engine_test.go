package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanjarus/paradoxdriver/ast"
	"github.com/wanjarus/paradoxdriver/catalog"
	"github.com/wanjarus/paradoxdriver/parser"
	"github.com/wanjarus/paradoxdriver/resultset"
	"github.com/wanjarus/paradoxdriver/types"
)

type memTable struct {
	name string
	cols []catalog.ColumnDescriptor
	rows []types.Row
}

func (t *memTable) Name() string                       { return t.name }
func (t *memTable) Columns() []catalog.ColumnDescriptor { return t.cols }
func (t *memTable) Scan(context.Context) (catalog.RowIterator, error) {
	return &memIterator{rows: t.rows}, nil
}

type memIterator struct {
	rows []types.Row
	pos  int
}

func (it *memIterator) Next() (types.Row, error) {
	if it.pos >= len(it.rows) {
		return nil, catalog.ErrIteratorDone
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}
func (it *memIterator) Close() error { return nil }

type memCatalog struct {
	tables []*memTable
}

func (c *memCatalog) ListTables(ctx context.Context, namePattern string) ([]catalog.TableDescriptor, error) {
	var out []catalog.TableDescriptor
	for _, t := range c.tables {
		if namePattern == "" || strings.EqualFold(t.name, namePattern) || strings.Contains(strings.ToUpper(t.name), strings.ToUpper(namePattern)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func areacodesCatalog() *memCatalog {
	return &memCatalog{tables: []*memTable{
		{
			name: "areacodes",
			cols: []catalog.ColumnDescriptor{
				{Name: "AC", SQLType: types.Char, Nullable: true},
				{Name: "STATE", SQLType: types.Char, Nullable: true},
			},
			rows: []types.Row{
				{types.NewText("201"), types.NewText("NJ")},
				{types.NewText("202"), types.NewText("DC")},
				{types.NewText("203"), types.NewText("CT")},
			},
		},
	}}
}

// parseSelect parses sql, which must contain exactly one SELECT statement,
// and returns its AST.
func parseSelect(t *testing.T, sql string) *ast.SelectStatement {
	t.Helper()
	stmts, err := parser.Parse(sql)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	sel, ok := stmts[0].(*ast.SelectStatement)
	require.True(t, ok)
	return sel
}

// drain reads every row of rs as strings, for easy assertion.
func drain(t *testing.T, rs *resultset.ResultSet) [][]string {
	t.Helper()
	defer rs.Close()
	cols := rs.GetMetadata()
	var out [][]string
	for {
		ok, err := rs.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		row := make([]string, len(cols))
		for i := range cols {
			s, err := rs.GetString(i + 1)
			require.NoError(t, err)
			row[i] = s
		}
		out = append(out, row)
	}
	return out
}

func TestSelectStarReturnsAllRows(t *testing.T) {
	cat := areacodesCatalog()
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT * FROM areacodes"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 3)
	require.Equal(t, "201", rows[0][0])
}

func TestSelectWithWhereFiltersRows(t *testing.T) {
	cat := areacodesCatalog()
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT AC FROM areacodes WHERE STATE = 'NJ'"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 1)
	require.Equal(t, "201", rows[0][0])
}

func TestSelectWithOrFolding(t *testing.T) {
	cat := areacodesCatalog()
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT AC FROM areacodes WHERE STATE = 'NJ' OR STATE = 'DC'"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 2)
}

func TestSelectDistinctDeduplicates(t *testing.T) {
	cat := &memCatalog{tables: []*memTable{
		{
			name: "t",
			cols: []catalog.ColumnDescriptor{{Name: "A", SQLType: types.Char}},
			rows: []types.Row{{types.NewText("x")}, {types.NewText("x")}, {types.NewText("y")}},
		},
	}}
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT DISTINCT A FROM t"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 2)
}

func TestSelectJoinOnMatches(t *testing.T) {
	cat := &memCatalog{tables: []*memTable{
		{
			name: "orders",
			cols: []catalog.ColumnDescriptor{{Name: "ID", SQLType: types.Char}, {Name: "CUST", SQLType: types.Char}},
			rows: []types.Row{{types.NewText("1"), types.NewText("a")}, {types.NewText("2"), types.NewText("b")}},
		},
		{
			name: "customers",
			cols: []catalog.ColumnDescriptor{{Name: "ID", SQLType: types.Char}, {Name: "NAME", SQLType: types.Char}},
			rows: []types.Row{{types.NewText("a"), types.NewText("Alice")}, {types.NewText("b"), types.NewText("Bob")}},
		},
	}}
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT customers.NAME FROM orders JOIN customers ON orders.CUST = customers.ID"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 2)
}

func TestSelectBetweenFiltersInclusive(t *testing.T) {
	cat := &memCatalog{tables: []*memTable{
		{
			name: "n",
			cols: []catalog.ColumnDescriptor{{Name: "V", SQLType: types.Integer}},
			rows: []types.Row{{types.NewInteger(1)}, {types.NewInteger(5)}, {types.NewInteger(10)}},
		},
	}}
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT V FROM n WHERE V BETWEEN 1 AND 5"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 2)
}

func TestSelectNotFiltersOut(t *testing.T) {
	cat := areacodesCatalog()
	rs, err := Execute(context.Background(), cat, parseSelect(t, "SELECT AC FROM areacodes WHERE NOT STATE = 'NJ'"))
	require.NoError(t, err)
	rows := drain(t, rs)
	require.Len(t, rows, 2)
}

func TestExecuteUnknownTableFails(t *testing.T) {
	cat := areacodesCatalog()
	_, err := Execute(context.Background(), cat, parseSelect(t, "SELECT * FROM nope"))
	require.Error(t, err)
}

func TestParseRejectsNonSelectStatement(t *testing.T) {
	_, err := parser.Parse("DELETE FROM areacodes")
	require.Error(t, err)
}

// Package engine ties the parser, planner, catalog, and result set cursor
// together: it resolves a statement's FROM list against a Catalog,
// materializes the Cartesian product of the source tables, applies JOIN
// ON and WHERE filters, projects the surviving rows, and hands the result
// to resultset.New.
package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/wanjarus/paradoxdriver/ast"
	"github.com/wanjarus/paradoxdriver/catalog"
	"github.com/wanjarus/paradoxdriver/plan"
	"github.com/wanjarus/paradoxdriver/resultset"
	"github.com/wanjarus/paradoxdriver/sqlerr"
	"github.com/wanjarus/paradoxdriver/types"
)

// Execute plans and runs stmt against cat, returning a scrollable cursor
// over the result. Only SELECT statements reach here; the parser rejects
// every other statement form before execution is attempted.
func Execute(ctx context.Context, cat catalog.Catalog, stmt *ast.SelectStatement) (*resultset.ResultSet, error) {
	sp := plan.New()
	var filterLists [][]ast.Condition

	for _, tr := range stmt.From {
		table, err := resolveTable(ctx, cat, tr.Name)
		if err != nil {
			return nil, err
		}
		sp.AddTable(tr.Alias, table)

		for _, j := range tr.Joins {
			jtable, err := resolveTable(ctx, cat, j.TableName)
			if err != nil {
				return nil, err
			}
			sp.AddTable(j.Alias, jtable)
			if len(j.On) > 0 {
				filterLists = append(filterLists, j.On)
			}
		}
	}

	if len(stmt.Where) > 0 {
		filterLists = append(filterLists, stmt.Where)
	}

	rowsPerTable := make([][]types.Row, len(sp.Tables))
	for i, ref := range sp.Tables {
		rows, err := materialize(ctx, ref.Table)
		if err != nil {
			return nil, err
		}
		rowsPerTable[i] = rows
	}

	projections, outCols, err := resolveProjection(sp, stmt.Projection)
	if err != nil {
		return nil, err
	}

	var out []types.Row
	seen := make(map[string]struct{})

	var walk func(tableIdx int, combo []types.Row) error
	walk = func(tableIdx int, combo []types.Row) error {
		if tableIdx == len(sp.Tables) {
			env := &rowEnv{tables: sp.Tables, rows: combo}
			for _, list := range filterLists {
				ok, err := evalConditions(list, env)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			row, err := project(env, projections)
			if err != nil {
				return err
			}
			if stmt.Distinct {
				key := rowKey(row)
				if _, dup := seen[key]; dup {
					return nil
				}
				seen[key] = struct{}{}
			}
			out = append(out, row)
			return nil
		}
		for _, r := range rowsPerTable[tableIdx] {
			if err := walk(tableIdx+1, append(combo, r)); err != nil {
				return err
			}
		}
		return nil
	}
	if len(sp.Tables) > 0 {
		if err := walk(0, make([]types.Row, 0, len(sp.Tables))); err != nil {
			return nil, err
		}
	}

	return resultset.New(out, outCols), nil
}

func resolveTable(ctx context.Context, cat catalog.Catalog, name string) (catalog.TableDescriptor, error) {
	tables, err := cat.ListTables(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if strings.EqualFold(t.Name(), name) {
			return t, nil
		}
	}
	if len(tables) == 1 {
		return tables[0], nil
	}
	return nil, sqlerr.Newf(sqlerr.NotFound, "no such table %q", name)
}

func materialize(ctx context.Context, table catalog.TableDescriptor) ([]types.Row, error) {
	it, err := table.Scan(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var rows []types.Row
	for {
		row, err := it.Next()
		if err == catalog.ErrIteratorDone {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// projSource is one resolved output column: either a literal value
// repeated for every row, or a (table, column) pair read from each combo.
type projSource struct {
	literal  *types.FieldValue
	tableIdx int
	colIdx   int
}

func resolveProjection(sp *plan.SelectPlan, items []ast.ProjectionItem) ([]projSource, []types.Column, error) {
	var sources []projSource
	var cols []types.Column

	tableIndex := func(ref *plan.PlanTableRef) int {
		for i, t := range sp.Tables {
			if t == ref {
				return i
			}
		}
		return -1
	}

	for _, item := range items {
		switch v := item.(type) {
		case *ast.Asterisk:
			for _, ref := range sp.Tables {
				if ref.Table == nil {
					continue
				}
				for i, c := range ref.Table.Columns() {
					sources = append(sources, projSource{tableIdx: tableIndex(ref), colIdx: i})
					cols = append(cols, types.Column{Name: c.Name, Label: c.Name, SQLType: c.SQLType, Nullable: c.Nullable, TableName: ref.Alias})
				}
			}

		case *ast.FieldRef:
			pc, err := sp.AddColumn(v.String())
			if err != nil {
				return nil, nil, err
			}
			desc := pc.ColumnDescriptor()
			sources = append(sources, projSource{tableIdx: tableIndex(pc.SourceTable), colIdx: pc.ColumnIndex})
			cols = append(cols, types.Column{Name: desc.Name, Label: v.Alias, SQLType: desc.SQLType, Nullable: desc.Nullable, TableName: pc.SourceTable.Alias})

		case *ast.CharacterLiteral:
			val := types.NewText(v.Text)
			sources = append(sources, projSource{literal: &val})
			cols = append(cols, types.Column{Name: v.Alias, Label: v.Alias, SQLType: types.Char})

		case *ast.NumericLiteral:
			val := parseNumericLiteral(v.Text)
			sources = append(sources, projSource{literal: &val})
			cols = append(cols, types.Column{Name: v.Alias, Label: v.Alias, SQLType: val.SQLType})

		default:
			return nil, nil, sqlerr.Newf(sqlerr.UnsupportedOperation, "unsupported projection item %T", item)
		}
	}
	return sources, cols, nil
}

func project(env *rowEnv, sources []projSource) (types.Row, error) {
	row := make(types.Row, len(sources))
	for i, s := range sources {
		if s.literal != nil {
			row[i] = *s.literal
			continue
		}
		row[i] = env.rows[s.tableIdx][s.colIdx]
	}
	return row, nil
}

func rowKey(row types.Row) string {
	var b strings.Builder
	for _, v := range row {
		s, _ := v.Text()
		b.WriteString(s)
		b.WriteByte(0)
	}
	return b.String()
}

// rowEnv is the combined row context a condition is evaluated against:
// one source row per table in sp.Tables order.
type rowEnv struct {
	tables []*plan.PlanTableRef
	rows   []types.Row
}

func (e *rowEnv) resolve(tableAlias, name string) (types.FieldValue, error) {
	for i, t := range e.tables {
		if t.Table == nil {
			continue
		}
		if tableAlias != "" && !strings.EqualFold(t.Alias, tableAlias) {
			continue
		}
		for ci, c := range t.Table.Columns() {
			if strings.EqualFold(c.Name, name) {
				return e.rows[i][ci], nil
			}
		}
		if tableAlias != "" {
			return types.FieldValue{}, sqlerr.Newf(sqlerr.InvalidSQL, "unknown column %q on table alias %q", name, tableAlias)
		}
	}
	return types.FieldValue{}, sqlerr.Newf(sqlerr.InvalidSQL, "unknown column %q", name)
}

func evalField(f ast.Field, env *rowEnv) (types.FieldValue, error) {
	switch v := f.(type) {
	case *ast.FieldRef:
		return env.resolve(v.TableAlias, v.Name)
	case *ast.CharacterLiteral:
		return types.NewText(v.Text), nil
	case *ast.NumericLiteral:
		return parseNumericLiteral(v.Text), nil
	default:
		return types.FieldValue{}, sqlerr.Newf(sqlerr.UnsupportedOperation, "unsupported field node %T", f)
	}
}

func parseNumericLiteral(text string) types.FieldValue {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return types.NewInteger(i)
	}
	f, _ := strconv.ParseFloat(text, 64)
	return types.NewFloat(f)
}

func isNumeric(t types.SQLType) bool { return t == types.Integer || t == types.Float }

func asFloat(v types.FieldValue) float64 {
	if v.SQLType == types.Integer {
		i, _ := v.Int64()
		return float64(i)
	}
	f, _ := v.Float64()
	return f
}

// valuesEqual compares two non-null field values, coercing Integer and
// Float against each other so `intCol = 3` and `floatCol = 3` both work
// without forcing the literal parser to guess the column's declared type.
func valuesEqual(a, b types.FieldValue) bool {
	if isNumeric(a.SQLType) && isNumeric(b.SQLType) {
		return asFloat(a) == asFloat(b)
	}
	return a.Equal(b)
}

// compareValues orders two non-null field values for < and >, with the
// same Integer/Float coercion as valuesEqual.
func compareValues(a, b types.FieldValue) (int, error) {
	if isNumeric(a.SQLType) && isNumeric(b.SQLType) {
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.SQLType != b.SQLType {
		return 0, sqlerr.Newf(sqlerr.InvalidSQL, "cannot compare %s and %s", a.SQLType, b.SQLType)
	}
	switch a.SQLType {
	case types.Char:
		as, _ := a.Text()
		bs, _ := b.Text()
		return strings.Compare(as, bs), nil
	case types.Date, types.Time, types.Timestamp:
		at, _ := a.Time()
		bt, _ := b.Time()
		switch {
		case at.Before(bt):
			return -1, nil
		case at.After(bt):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, sqlerr.Newf(sqlerr.InvalidSQL, "type %s is not ordered", a.SQLType)
	}
}

// evalCond evaluates a single predicate node (a comparison, NOT, or
// EXISTS). evalConditions consumes And, Or, and Xor as the operator
// joining the predicate before and the predicate after; one that reaches
// here instead (a list starting with an operator, or NOT applied to one)
// fails with UnsupportedOperation.
func evalCond(c ast.Condition, env *rowEnv) (bool, error) {
	switch v := c.(type) {
	case *ast.Equals:
		lhs, err := evalField(v.LHS, env)
		if err != nil {
			return false, err
		}
		rhs, err := evalField(v.RHS, env)
		if err != nil {
			return false, err
		}
		if lhs.IsNull() || rhs.IsNull() {
			return false, nil
		}
		return valuesEqual(lhs, rhs), nil

	case *ast.NotEquals:
		lhs, err := evalField(v.LHS, env)
		if err != nil {
			return false, err
		}
		rhs, err := evalField(v.RHS, env)
		if err != nil {
			return false, err
		}
		if lhs.IsNull() || rhs.IsNull() {
			return false, nil
		}
		return !valuesEqual(lhs, rhs), nil

	case *ast.LessThan:
		lhs, err := evalField(v.LHS, env)
		if err != nil {
			return false, err
		}
		rhs, err := evalField(v.RHS, env)
		if err != nil {
			return false, err
		}
		if lhs.IsNull() || rhs.IsNull() {
			return false, nil
		}
		cmp, err := compareValues(lhs, rhs)
		return cmp < 0, err

	case *ast.GreaterThan:
		lhs, err := evalField(v.LHS, env)
		if err != nil {
			return false, err
		}
		rhs, err := evalField(v.RHS, env)
		if err != nil {
			return false, err
		}
		if lhs.IsNull() || rhs.IsNull() {
			return false, nil
		}
		cmp, err := compareValues(lhs, rhs)
		return cmp > 0, err

	case *ast.Between:
		val, err := evalField(v.FieldExpr, env)
		if err != nil {
			return false, err
		}
		lo, err := evalField(v.Lo, env)
		if err != nil {
			return false, err
		}
		hi, err := evalField(v.Hi, env)
		if err != nil {
			return false, err
		}
		if val.IsNull() || lo.IsNull() || hi.IsNull() {
			return false, nil
		}
		cmpLo, err := compareValues(val, lo)
		if err != nil {
			return false, err
		}
		cmpHi, err := compareValues(val, hi)
		if err != nil {
			return false, err
		}
		return cmpLo >= 0 && cmpHi <= 0, nil

	case *ast.Not:
		inner, err := evalCond(v.Child, env)
		if err != nil {
			return false, err
		}
		return !inner, nil

	case *ast.Exists:
		rs, err := Execute(context.Background(), uncorrelatedCatalogOf(env), v.Subselect)
		if err != nil {
			return false, err
		}
		defer rs.Close()
		ok, err := rs.Next()
		return ok, err

	default:
		return false, sqlerr.Newf(sqlerr.UnsupportedOperation, "unsupported condition node %T", c)
	}
}

// uncorrelatedCatalogOf returns a catalog made of the tables env's outer
// query already resolved. EXISTS subselects here are uncorrelated: they
// re-resolve their own FROM list against that table set rather than
// seeing the outer row's bindings. A table the outer FROM list does not
// name is not in the set, so such a subselect fails with NotFound.
func uncorrelatedCatalogOf(env *rowEnv) catalog.Catalog {
	return staticCatalog{tables: env.tables}
}

// staticCatalog answers ListTables from an already-resolved table set,
// matching table names case-insensitively. It holds no reference to the
// catalog.Catalog the outer query was resolved against, so rowEnv does not
// need to carry one.
type staticCatalog struct {
	tables []*plan.PlanTableRef
}

func (c staticCatalog) ListTables(ctx context.Context, namePattern string) ([]catalog.TableDescriptor, error) {
	var out []catalog.TableDescriptor
	for _, t := range c.tables {
		if t.Table == nil {
			continue
		}
		if namePattern == "" || strings.EqualFold(t.Table.Name(), namePattern) {
			out = append(out, t.Table)
		}
	}
	return out, nil
}

// evalConditions folds a flat condition list left to right: predicate,
// (operator, predicate)*, with no operator precedence. This mirrors how
// the parser emits the list (see parser.parseCondList) rather than
// reconstructing an AND/OR tree.
func evalConditions(conds []ast.Condition, env *rowEnv) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	result, err := evalCond(conds[0], env)
	if err != nil {
		return false, err
	}
	i := 1
	for i < len(conds) {
		if i+1 >= len(conds) {
			return false, sqlerr.Newf(sqlerr.InvalidSQL, "trailing boolean operator with no right-hand condition")
		}
		rhs, err := evalCond(conds[i+1], env)
		if err != nil {
			return false, err
		}
		switch conds[i].(type) {
		case *ast.And:
			result = result && rhs
		case *ast.Or:
			result = result || rhs
		case *ast.Xor:
			result = result != rhs
		default:
			return false, sqlerr.Newf(sqlerr.InvalidSQL, "expected AND, OR, or XOR, got %T", conds[i])
		}
		i += 2
	}
	return result, nil
}

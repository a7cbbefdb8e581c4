// Package plan implements the logical planner: it resolves identifiers
// from a parsed statement against catalog tables, detects alias and
// column-name ambiguity, and produces a SelectPlan ready for execution.
package plan

import (
	"strings"

	"github.com/google/uuid"

	"github.com/wanjarus/paradoxdriver/catalog"
	"github.com/wanjarus/paradoxdriver/sqlerr"
)

// PlanTableRef binds one FROM-list alias to a catalog table. Table may be
// nil when the catalog could not resolve the underlying table; that is
// only an error once a column tries to bind against this alias.
type PlanTableRef struct {
	Alias string
	Table catalog.TableDescriptor
}

// PlanColumn is one resolved, ordered output column: the table it came
// from and its index within that table's column list.
type PlanColumn struct {
	SourceTable *PlanTableRef
	ColumnIndex int
}

// ColumnDescriptor returns the underlying catalog column this PlanColumn
// is bound to.
func (c *PlanColumn) ColumnDescriptor() catalog.ColumnDescriptor {
	return c.SourceTable.Table.Columns()[c.ColumnIndex]
}

// SelectPlan is the resolved, alias-bound representation of a query ready
// for execution. Tables and Columns are built by append-only operations
// and should be treated as frozen once execution begins.
type SelectPlan struct {
	ConnectionHandle uuid.UUID
	Tables           []*PlanTableRef
	Columns          []*PlanColumn
}

// New constructs an empty SelectPlan carrying a fresh connection handle.
// The handle is an opaque identifier only: the planner never uses it to
// reach the catalog or connection state, since tables are supplied
// directly through AddTable (see DESIGN.md, plan).
func New() *SelectPlan {
	return &SelectPlan{ConnectionHandle: uuid.New()}
}

// AddTable appends a PlanTableRef under alias. A nil table is accepted
// here; it becomes an error only if a column later binds to alias.
func (p *SelectPlan) AddTable(alias string, table catalog.TableDescriptor) *PlanTableRef {
	ref := &PlanTableRef{Alias: alias, Table: table}
	p.Tables = append(p.Tables, ref)
	return ref
}

// findByAlias returns the first PlanTableRef named alias and how many
// PlanTableRefs carry that alias.
func (p *SelectPlan) findByAlias(alias string) (*PlanTableRef, int) {
	var found *PlanTableRef
	n := 0
	for _, ref := range p.Tables {
		if ref.Alias == alias {
			if found == nil {
				found = ref
			}
			n++
		}
	}
	return found, n
}

func findColumnIndex(cols []catalog.ColumnDescriptor, name string) int {
	for i, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// AddColumn resolves reference — either "name" or "alias.name" — against
// the tables already added, appends the resulting PlanColumn, and returns
// it. On any error the plan is left unchanged: Columns only grows on
// success.
//
// Resolution:
//  1. Qualified ("alias.name"): the alias must name exactly one
//     PlanTableRef with a non-nil table; name is then looked up
//     case-insensitively within that table's columns.
//  2. Unqualified ("name"): every PlanTableRef with a non-nil table is
//     searched. Two or more matches is an ambiguity error; zero matches is
//     an unknown-column error; exactly one binds.
func (p *SelectPlan) AddColumn(reference string) (*PlanColumn, error) {
	aliasPart, namePart := splitReference(reference)

	if aliasPart != "" {
		ref, n := p.findByAlias(aliasPart)
		if ref == nil {
			return nil, sqlerr.Newf(sqlerr.InvalidSQL, "unknown table alias %q", aliasPart)
		}
		if n > 1 {
			return nil, sqlerr.Newf(sqlerr.InvalidSQL, "ambiguous table alias %q", aliasPart)
		}
		if ref.Table == nil {
			return nil, sqlerr.Newf(sqlerr.InvalidSQL, "table alias %q has no underlying table", aliasPart)
		}
		idx := findColumnIndex(ref.Table.Columns(), namePart)
		if idx < 0 {
			return nil, sqlerr.Newf(sqlerr.InvalidSQL, "unknown column %q on table alias %q", namePart, aliasPart)
		}
		col := &PlanColumn{SourceTable: ref, ColumnIndex: idx}
		p.Columns = append(p.Columns, col)
		return col, nil
	}

	var match *PlanTableRef
	var matchIdx int
	ambiguous := false
	for _, ref := range p.Tables {
		if ref.Table == nil {
			continue
		}
		idx := findColumnIndex(ref.Table.Columns(), namePart)
		if idx < 0 {
			continue
		}
		if match != nil {
			ambiguous = true
			break
		}
		match, matchIdx = ref, idx
	}
	if ambiguous {
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "ambiguous column %q", namePart)
	}
	if match == nil {
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "unknown column %q", namePart)
	}
	col := &PlanColumn{SourceTable: match, ColumnIndex: matchIdx}
	p.Columns = append(p.Columns, col)
	return col, nil
}

// splitReference splits "alias.name" into ("alias", "name"), or returns
// ("", reference) for an unqualified reference.
func splitReference(reference string) (alias, name string) {
	if i := strings.IndexByte(reference, '.'); i >= 0 {
		return reference[:i], reference[i+1:]
	}
	return "", reference
}

// GetColumns returns the ordered bound columns. Deduplication is not
// required: a column referenced twice in the projection binds twice.
func (p *SelectPlan) GetColumns() []*PlanColumn {
	return p.Columns
}

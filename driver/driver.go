// Package driver binds the parser, planner, and engine to
// database/sql/driver, so the read-only query engine is reachable through
// the standard library's sql.DB the way any other Go SQL driver is. The
// catalog adapter's choice of backing storage is itself out of scope: this
// driver always opens a DirCatalog over the DSN path, since the real
// Paradox binary decoder is an external collaborator this module only
// consumes through the Catalog interface.
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"

	"github.com/wanjarus/paradoxdriver/ast"
	"github.com/wanjarus/paradoxdriver/catalog"
	"github.com/wanjarus/paradoxdriver/engine"
	"github.com/wanjarus/paradoxdriver/parser"
	"github.com/wanjarus/paradoxdriver/resultset"
	"github.com/wanjarus/paradoxdriver/sqlerr"
	"go.uber.org/zap"
)

func init() {
	sql.Register("paradox", &Driver{})
}

// Driver opens a DirCatalog rooted at the DSN path.
type Driver struct {
	Logger *zap.SugaredLogger
}

// Open implements database/sql/driver.Driver. dsn is a filesystem
// directory containing ".tbl" table fixtures (see catalog.DirCatalog).
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	return &conn{cat: catalog.NewDirCatalog(dsn, d.Logger)}, nil
}

type conn struct {
	cat catalog.Catalog
}

// Prepare defers all parsing to Query/Exec time: Paradox SQL has no bind
// parameters, so there is nothing useful to precompile here.
func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{conn: c, sql: query}, nil
}

// Close is a no-op: the DirCatalog holds no resources needing release.
func (c *conn) Close() error { return nil }

// Begin always fails: this driver exposes a read-only query engine with
// no transactional write path.
func (c *conn) Begin() (driver.Tx, error) {
	return nil, sqlerr.Newf(sqlerr.UnsupportedOperation, "this driver is read-only; transactions are not supported")
}

type stmt struct {
	conn *conn
	sql  string
}

func (s *stmt) Close() error { return nil }

// NumInput reports -1 (unknown) since the grammar has no placeholders and
// database/sql skips its own argument-count check in that case.
func (s *stmt) NumInput() int { return -1 }

// Exec always fails: every accepted statement is a SELECT.
func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, sqlerr.Newf(sqlerr.UnsupportedOperation, "Exec is not supported; this driver only accepts SELECT")
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	sel, err := parseSingleSelect(s.sql)
	if err != nil {
		return nil, err
	}
	rs, err := engine.Execute(context.Background(), s.conn.cat, sel)
	if err != nil {
		return nil, err
	}
	return &rows{rs: rs}, nil
}

func parseSingleSelect(sql string) (*ast.SelectStatement, error) {
	stmts, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, sqlerr.Newf(sqlerr.UnsupportedOperation, "exactly one statement is supported per call, got %d", len(stmts))
	}
	sel, ok := stmts[0].(*ast.SelectStatement)
	if !ok {
		return nil, sqlerr.Newf(sqlerr.UnsupportedOperation, "only SELECT statements are supported")
	}
	return sel, nil
}

// rows adapts resultset.ResultSet's cursor to driver.Rows' forward-only,
// string-value iteration contract.
type rows struct {
	rs *resultset.ResultSet
}

func (r *rows) Columns() []string {
	cols := r.rs.GetMetadata()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Label
	}
	return names
}

func (r *rows) Close() error { return r.rs.Close() }

func (r *rows) Next(dest []driver.Value) error {
	ok, err := r.rs.Next()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	for i := range dest {
		s, err := r.rs.GetString(i + 1)
		if err != nil {
			return err
		}
		if r.rs.WasNull() {
			dest[i] = nil
		} else {
			dest[i] = s
		}
	}
	return nil
}

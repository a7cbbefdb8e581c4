package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wanjarus/paradoxdriver/sqlerr"
	"github.com/wanjarus/paradoxdriver/types"
	"go.uber.org/zap"
)

// DirCatalog is a reference Catalog implementation that treats a
// filesystem directory as the schema, the way the real driver treats a
// directory of Paradox .DB files. Since decoding the binary Paradox
// format is explicitly out of scope for this module, each table here is
// instead a small sidecar text format (".tbl"): a header line of
// "name:TYPE" column specs separated by "|", followed by one "|"-delimited
// row per line, with "\N" standing in for a null field. This keeps the
// planner, engine, and result set exercised against real directory I/O
// without pulling in a binary-format decoder that belongs to a different
// component.
type DirCatalog struct {
	dir string
	log *zap.SugaredLogger
}

// NewDirCatalog returns a DirCatalog rooted at dir.
func NewDirCatalog(dir string, log *zap.SugaredLogger) *DirCatalog {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DirCatalog{dir: dir, log: log}
}

// ListTables enumerates every ".tbl" fixture file in the catalog
// directory whose stem case-insensitively contains namePattern.
func (c *DirCatalog) ListTables(ctx context.Context, namePattern string) ([]TableDescriptor, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.ConnectionFailure, err, "reading catalog directory %q", c.dir)
	}

	pattern := strings.ToUpper(namePattern)
	var tables []TableDescriptor
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tbl") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".tbl")
		if pattern != "" && !strings.Contains(strings.ToUpper(stem), pattern) {
			continue
		}
		t, err := loadFixtureTable(filepath.Join(c.dir, e.Name()), stem)
		if err != nil {
			return nil, err
		}
		c.log.Debugw("catalog: loaded table", "name", stem, "columns", len(t.columns))
		tables = append(tables, t)
	}
	return tables, nil
}

// fixtureTable is a TableDescriptor backed by an in-memory decode of a
// ".tbl" sidecar file.
type fixtureTable struct {
	name    string
	columns []ColumnDescriptor
	rows    []types.Row
}

func loadFixtureTable(path, name string) (*fixtureTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.ConnectionFailure, err, "reading table file %q", path)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return nil, sqlerr.Newf(sqlerr.DataFormat, "table file %q has no header", path)
	}

	cols, err := parseColumnSpecs(lines[0])
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.DataFormat, err, "parsing column header of %q", path)
	}

	t := &fixtureTable{name: name, columns: cols}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := parseRow(line, cols)
		if err != nil {
			return nil, sqlerr.Wrap(sqlerr.DataFormat, err, "decoding row of %q", path)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func parseColumnSpecs(header string) ([]ColumnDescriptor, error) {
	fields := strings.Split(header, "|")
	cols := make([]ColumnDescriptor, 0, len(fields))
	for _, f := range fields {
		parts := strings.SplitN(f, ":", 2)
		if len(parts) != 2 {
			return nil, sqlerr.Newf(sqlerr.DataFormat, "malformed column spec %q", f)
		}
		sqlType, err := parseSQLType(parts[1])
		if err != nil {
			return nil, err
		}
		cols = append(cols, ColumnDescriptor{Name: parts[0], SQLType: sqlType, Nullable: true})
	}
	return cols, nil
}

func parseSQLType(spelling string) (types.SQLType, error) {
	switch strings.ToUpper(spelling) {
	case "CHAR":
		return types.Char, nil
	case "INTEGER":
		return types.Integer, nil
	case "FLOAT":
		return types.Float, nil
	case "BOOLEAN":
		return types.Boolean, nil
	default:
		return 0, sqlerr.Newf(sqlerr.DataFormat, "unknown column type %q", spelling)
	}
}

func parseRow(line string, cols []ColumnDescriptor) (types.Row, error) {
	fields := strings.Split(line, "|")
	if len(fields) != len(cols) {
		return nil, sqlerr.Newf(sqlerr.DataFormat, "expected %d fields, got %d", len(cols), len(fields))
	}
	row := make(types.Row, len(cols))
	for i, raw := range fields {
		if raw == `\N` {
			row[i] = types.Null(cols[i].SQLType)
			continue
		}
		switch cols[i].SQLType {
		case types.Integer:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, err
			}
			row[i] = types.NewInteger(n)
		case types.Float:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, err
			}
			row[i] = types.NewFloat(f)
		case types.Boolean:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, err
			}
			row[i] = types.NewBoolean(b)
		default:
			row[i] = types.NewText(raw)
		}
	}
	return row, nil
}

func (t *fixtureTable) Name() string                   { return t.name }
func (t *fixtureTable) Columns() []ColumnDescriptor     { return t.columns }
func (t *fixtureTable) Scan(ctx context.Context) (RowIterator, error) {
	return &fixtureIterator{rows: t.rows}, nil
}

// fixtureIterator walks the table's in-memory rows forward-only.
type fixtureIterator struct {
	rows []types.Row
	pos  int
}

func (it *fixtureIterator) Next() (types.Row, error) {
	if it.pos >= len(it.rows) {
		return nil, ErrIteratorDone
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *fixtureIterator) Close() error { return nil }

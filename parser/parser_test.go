package parser

import (
	"testing"

	"github.com/wanjarus/paradoxdriver/ast"
	"github.com/wanjarus/paradoxdriver/sqlerr"
)

func checkErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseSelectStar(t *testing.T) {
	stmts, err := Parse("SELECT * FROM t")
	checkErr(t, err)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	stmt, ok := stmts[0].(*ast.SelectStatement)
	if !ok {
		t.Fatalf("expected *ast.SelectStatement, got %T", stmts[0])
	}
	if stmt.Distinct {
		t.Errorf("expected Distinct=false")
	}
	if len(stmt.Projection) != 1 {
		t.Fatalf("expected 1 projection item, got %d", len(stmt.Projection))
	}
	if _, ok := stmt.Projection[0].(*ast.Asterisk); !ok {
		t.Errorf("expected Asterisk projection, got %T", stmt.Projection[0])
	}
	if len(stmt.From) != 1 || stmt.From[0].Name != "t" || stmt.From[0].Alias != "t" {
		t.Errorf("unexpected From: %+v", stmt.From)
	}
	if len(stmt.Where) != 0 {
		t.Errorf("expected no WHERE clause, got %+v", stmt.Where)
	}
}

func TestParseProjectionList(t *testing.T) {
	stmts, err := Parse("SELECT a, b, c FROM t")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	if len(stmt.Projection) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(stmt.Projection))
	}
}

func TestParseDistinct(t *testing.T) {
	stmts, err := Parse("SELECT DISTINCT Name FROM Products")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	if !stmt.Distinct {
		t.Errorf("expected Distinct=true")
	}
}

func TestParseQualifiedColumnAndAlias(t *testing.T) {
	stmts, err := Parse("SELECT t.first AS f FROM t")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	f := stmt.Projection[0].(*ast.FieldRef)
	if f.TableAlias != "t" || f.Name != "first" || f.Alias != "f" {
		t.Errorf("unexpected field ref: %+v", f)
	}
}

func TestParseWhereComparison(t *testing.T) {
	stmts, err := Parse("SELECT * FROM t WHERE t.a = t.b")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	if len(stmt.Where) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(stmt.Where))
	}
	eq, ok := stmt.Where[0].(*ast.Equals)
	if !ok {
		t.Fatalf("expected *ast.Equals, got %T", stmt.Where[0])
	}
	if got, want := eq.String(), "t.a = t.b"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseWhereFlatConditionList(t *testing.T) {
	stmts, err := Parse("SELECT * FROM t WHERE a = 1 AND b = 2")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	if len(stmt.Where) != 3 {
		t.Fatalf("expected a flat 3-element condition list, got %d: %+v", len(stmt.Where), stmt.Where)
	}
	if _, ok := stmt.Where[1].(*ast.And); !ok {
		t.Errorf("expected middle element to be a skeleton And node, got %T", stmt.Where[1])
	}
}

func TestParseBetween(t *testing.T) {
	stmts, err := Parse("SELECT * FROM t WHERE age BETWEEN 1 AND 10")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	b, ok := stmt.Where[0].(*ast.Between)
	if !ok {
		t.Fatalf("expected *ast.Between, got %T", stmt.Where[0])
	}
	if got, want := b.String(), "age BETWEEN 1 AND 10"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseJoin(t *testing.T) {
	stmts, err := Parse("SELECT * FROM a LEFT JOIN b ON a.id = b.aid")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	if len(stmt.From[0].Joins) != 1 {
		t.Fatalf("expected 1 join, got %d", len(stmt.From[0].Joins))
	}
	j := stmt.From[0].Joins[0]
	if j.Kind != ast.LeftOuterJoin {
		t.Errorf("expected LeftOuterJoin, got %v", j.Kind)
	}
	if len(j.On) != 1 {
		t.Fatalf("expected 1 ON condition, got %d", len(j.On))
	}
}

func TestParseExists(t *testing.T) {
	stmts, err := Parse("SELECT * FROM a WHERE EXISTS (SELECT * FROM b)")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	ex, ok := stmt.Where[0].(*ast.Exists)
	if !ok {
		t.Fatalf("expected *ast.Exists, got %T", stmt.Where[0])
	}
	if len(ex.Subselect.From) != 1 || ex.Subselect.From[0].Name != "b" {
		t.Errorf("unexpected subselect: %+v", ex.Subselect)
	}
}

func TestParseNonSelectFails(t *testing.T) {
	_, err := Parse("DELETE FROM t")
	if err == nil {
		t.Fatal("expected an error")
	}
	code, ok := sqlerr.CodeOf(err)
	if !ok || code != sqlerr.UnsupportedOperation {
		t.Errorf("expected UnsupportedOperation, got %v (%v)", code, err)
	}
}

func TestParseBareFieldInWhereFails(t *testing.T) {
	_, err := Parse("SELECT * FROM t WHERE flag")
	if err == nil {
		t.Fatal("expected an error for a bare field in WHERE")
	}
	code, ok := sqlerr.CodeOf(err)
	if !ok || code != sqlerr.InvalidSQL {
		t.Errorf("expected InvalidSQL, got %v (%v)", code, err)
	}
}

func TestParseUnterminatedStringFails(t *testing.T) {
	_, err := Parse("SELECT 'abc FROM t")
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	code, ok := sqlerr.CodeOf(err)
	if !ok || code != sqlerr.InvalidSQL {
		t.Errorf("expected InvalidSQL, got %v (%v)", code, err)
	}
}

func TestParseNotEqualsSpellings(t *testing.T) {
	for _, sql := range []string{"SELECT * FROM t WHERE a <> b", "SELECT * FROM t WHERE a != b"} {
		stmts, err := Parse(sql)
		checkErr(t, err)
		stmt := stmts[0].(*ast.SelectStatement)
		if _, ok := stmt.Where[0].(*ast.NotEquals); !ok {
			t.Errorf("%q: expected *ast.NotEquals, got %T", sql, stmt.Where[0])
		}
	}
}

func TestParseCrossJoinComma(t *testing.T) {
	stmts, err := Parse("SELECT * FROM a, b")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	if len(stmt.From) != 2 {
		t.Fatalf("expected 2 table refs, got %d", len(stmt.From))
	}
}

func TestRoundTripEqualsField(t *testing.T) {
	stmts, err := Parse("SELECT * FROM t WHERE table.first = table.last")
	checkErr(t, err)
	stmt := stmts[0].(*ast.SelectStatement)
	text := stmt.Where[0].String()
	if got, want := text, "table.first = table.last"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	reparsed, err := Parse("SELECT * FROM t WHERE " + text)
	checkErr(t, err)
	reStmt := reparsed[0].(*ast.SelectStatement)
	if got, want := reStmt.Where[0].String(), want; got != want {
		t.Errorf("round-trip mismatch: %q != %q", got, want)
	}
}

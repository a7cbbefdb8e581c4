// Package parser implements a recursive-descent parser over the Paradox
// SQL token stream, producing a tree of ast.Statement values.
package parser

import (
	"github.com/wanjarus/paradoxdriver/ast"
	"github.com/wanjarus/paradoxdriver/lexer"
	"github.com/wanjarus/paradoxdriver/sqlerr"
	"github.com/wanjarus/paradoxdriver/token"
)

// Parser consumes a lexer.Lexer one token ahead of the current position.
type Parser struct {
	lex       *lexer.Lexer
	cur, peek token.Token
}

// New primes a Parser over l, reading the first two tokens. It fails if
// the scanner cannot produce them.
func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{lex: l}
	t1, err := readToken(l)
	if err != nil {
		return nil, wrapScanErr(err)
	}
	t2, err := readToken(l)
	if err != nil {
		return nil, wrapScanErr(err)
	}
	p.cur, p.peek = t1, t2
	return p, nil
}

func readToken(l *lexer.Lexer) (token.Token, error) {
	if !l.HasNext() {
		return token.Token{Kind: token.EOF}, nil
	}
	return l.NextToken()
}

func wrapScanErr(err error) error {
	return sqlerr.Newf(sqlerr.InvalidSQL, "%v", err)
}

func (p *Parser) advance() error {
	p.cur = p.peek
	t, err := readToken(p.lex)
	if err != nil {
		return wrapScanErr(err)
	}
	p.peek = t
	return nil
}

// expect asserts the current token's kind, advances past it, and returns
// its lexeme, or fails with InvalidSQL naming the offending lexeme.
func (p *Parser) expect(kind token.Kind) (string, error) {
	if p.cur.Kind != kind {
		return "", sqlerr.Newf(sqlerr.InvalidSQL, "expected %s, got %q", kind, p.cur.Lexeme)
	}
	lexeme := p.cur.Lexeme
	if err := p.advance(); err != nil {
		return "", err
	}
	return lexeme, nil
}

// expectAny is expect for any of a set of acceptable kinds.
func (p *Parser) expectAny(kinds ...token.Kind) (token.Token, error) {
	for _, k := range kinds {
		if p.cur.Kind == k {
			tok := p.cur
			if err := p.advance(); err != nil {
				return token.Token{}, err
			}
			return tok, nil
		}
	}
	return token.Token{}, sqlerr.Newf(sqlerr.InvalidSQL, "unexpected token %q", p.cur.Lexeme)
}

// Parse scans and parses sql to completion, returning every top-level
// statement (in practice a single SelectStatement) in source order.
// Parse requires at least one token in sql; the caller must not invoke it
// on empty input.
func Parse(sql string) ([]ast.Statement, error) {
	l := lexer.New(sql)
	if !l.HasNext() {
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "empty statement")
	}
	p, err := New(l)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

// ParseProgram parses every statement up to EOF.
func (p *Parser) ParseProgram() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for p.cur.Kind != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.cur.Kind == token.Semicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return stmts, nil
}

// parseStatement implements `statement := SELECT select`. Any leading
// token other than SELECT is UnsupportedOperation: this dialect is
// read-only and accepts no other statement form.
func (p *Parser) parseStatement() (ast.Statement, error) {
	if p.cur.Kind != token.Select {
		return nil, sqlerr.Newf(sqlerr.UnsupportedOperation, "unsupported statement starting with %q; only SELECT is accepted", p.cur.Lexeme)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseSelectBody()
}

// parseSelectBody implements `select := DISTINCT? projection FROM from
// (WHERE cond_list)?`. It is shared between the top-level SELECT entry
// point and the subselect parsed inside EXISTS(...).
func (p *Parser) parseSelectBody() (*ast.SelectStatement, error) {
	stmt := &ast.SelectStatement{}

	if p.cur.Kind == token.Distinct {
		stmt.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	projection, err := p.parseProjection()
	if err != nil {
		return nil, err
	}
	stmt.Projection = projection

	if p.cur.Kind == token.From {
		if err := p.advance(); err != nil {
			return nil, err
		}
		from, err := p.parseFrom()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}

	if p.cur.Kind == token.Where {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseCondList()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

// parseProjection implements `projection := proj_item (COMMA proj_item)*`.
func (p *Parser) parseProjection() ([]ast.ProjectionItem, error) {
	var items []ast.ProjectionItem
	item, err := p.parseProjItem()
	if err != nil {
		return nil, err
	}
	items = append(items, item)

	for p.cur.Kind == token.Comma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		item, err := p.parseProjItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// aliasFollows reports whether the current token could begin an alias
// clause: `AS name` or a bare identifier immediately following.
func (p *Parser) aliasFollows() bool {
	return p.cur.Kind == token.As || p.cur.Kind == token.Identifier
}

// parseAlias implements `alias := AS (IDENT | CHARACTER) | IDENT`.
func (p *Parser) parseAlias() (string, error) {
	if p.cur.Kind == token.As {
		if err := p.advance(); err != nil {
			return "", err
		}
		tok, err := p.expectAny(token.Identifier, token.Character)
		if err != nil {
			return "", err
		}
		return tok.Lexeme, nil
	}
	tok, err := p.expectAny(token.Identifier)
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

// parseProjItem implements:
//
//	proj_item := ASTERISK
//	           | CHARACTER alias?
//	           | NUMERIC   alias?
//	           | IDENT (PERIOD IDENT)? alias?
func (p *Parser) parseProjItem() (ast.ProjectionItem, error) {
	switch p.cur.Kind {
	case token.Asterisk:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Asterisk{}, nil

	case token.Character:
		text := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		alias, err := p.maybeAlias()
		if err != nil {
			return nil, err
		}
		if alias == "" {
			alias = text
		}
		return &ast.CharacterLiteral{Text: text, Alias: alias}, nil

	case token.Numeric:
		text := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		alias, err := p.maybeAlias()
		if err != nil {
			return nil, err
		}
		if alias == "" {
			alias = text
		}
		return &ast.NumericLiteral{Text: text, Alias: alias}, nil

	case token.Identifier:
		tableAlias, name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		alias, err := p.maybeAlias()
		if err != nil {
			return nil, err
		}
		return ast.NewFieldRef(tableAlias, name, alias), nil

	default:
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "unexpected token %q in projection", p.cur.Lexeme)
	}
}

// maybeAlias consumes an alias clause if present, returning "" otherwise.
func (p *Parser) maybeAlias() (string, error) {
	if !p.aliasFollows() {
		return "", nil
	}
	return p.parseAlias()
}

// parseDottedName consumes `IDENT (PERIOD IDENT)?`, returning
// ("", name) for an unqualified name and (firstIdent, name) for a
// qualified one.
func (p *Parser) parseDottedName() (tableAlias, name string, err error) {
	first, err := p.expect(token.Identifier)
	if err != nil {
		return "", "", err
	}
	if p.cur.Kind != token.Period {
		return "", first, nil
	}
	if err := p.advance(); err != nil {
		return "", "", err
	}
	second, err := p.expect(token.Identifier)
	if err != nil {
		return "", "", err
	}
	return first, second, nil
}

// parseFrom implements `from := table_ref (COMMA table_ref)*`.
func (p *Parser) parseFrom() ([]ast.TableRef, error) {
	var refs []ast.TableRef
	ref, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	refs = append(refs, *ref)

	for p.cur.Kind == token.Comma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

func isJoinStart(k token.Kind) bool {
	switch k {
	case token.Left, token.Right, token.Inner, token.Outer, token.Join:
		return true
	default:
		return false
	}
}

// parseTableRef implements `table_ref := IDENT alias? join*`.
func (p *Parser) parseTableRef() (*ast.TableRef, error) {
	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	alias, err := p.maybeAlias()
	if err != nil {
		return nil, err
	}
	ref := ast.NewTableRef(name, alias)

	for isJoinStart(p.cur.Kind) {
		j, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		ref.Joins = append(ref.Joins, *j)
	}
	return ref, nil
}

// parseJoin implements `join := (LEFT|RIGHT)? (INNER|OUTER)? JOIN IDENT
// alias? ON cond_list`.
func (p *Parser) parseJoin() (*ast.JoinClause, error) {
	kind := ast.InnerJoin
	switch p.cur.Kind {
	case token.Left:
		kind = ast.LeftOuterJoin
		if err := p.advance(); err != nil {
			return nil, err
		}
	case token.Right:
		kind = ast.RightOuterJoin
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	switch p.cur.Kind {
	case token.Inner, token.Outer:
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Join); err != nil {
		return nil, err
	}
	tableName, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	alias, err := p.maybeAlias()
	if err != nil {
		return nil, err
	}
	if alias == "" {
		alias = tableName
	}
	if _, err := p.expect(token.On); err != nil {
		return nil, err
	}
	on, err := p.parseCondList()
	if err != nil {
		return nil, err
	}
	return &ast.JoinClause{Kind: kind, TableName: tableName, Alias: alias, On: on}, nil
}

func isCondStart(k token.Kind) bool {
	switch k {
	case token.And, token.Or, token.Xor, token.Not, token.Exists,
		token.Identifier, token.Numeric, token.Character:
		return true
	default:
		return false
	}
}

// parseCondList implements `cond_list := cond+`, stopping at the first
// token that cannot begin another cond (a "break token": COMMA, FROM,
// WHERE, RPAREN, a join keyword, SEMICOLON, or EOF). It does not assemble
// a precedence tree: the returned slice is the flat, source-ordered
// sequence the grammar describes, with boolean operators as skeleton
// nodes (see ast.And/Or/Xor). engine.evalConditions folds this list left
// to right, with AND, OR, and XOR at equal precedence.
func (p *Parser) parseCondList() ([]ast.Condition, error) {
	var conds []ast.Condition
	for isCondStart(p.cur.Kind) {
		c, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "expected a condition, got %q", p.cur.Lexeme)
	}
	return conds, nil
}

// parseCond implements:
//
//	cond := NOT cond | EXISTS LPAREN select RPAREN | boolean_op | field_pred
//
// A parenthesized sub-condition, e.g. `WHERE (a = 1 OR b = 2)`, is not a
// production of this grammar: LPAREN is only valid right after EXISTS.
// This is a deliberate decision, not an oversight — an earlier revision
// of this parser accepted a bare LPAREN here and silently discarded
// everything up to the matching RPAREN, which is worse than rejecting the
// input outright.
func (p *Parser) parseCond() (ast.Condition, error) {
	switch p.cur.Kind {
	case token.Not:
		if err := p.advance(); err != nil {
			return nil, err
		}
		child, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Child: child}, nil

	case token.Exists:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Select); err != nil {
			return nil, err
		}
		sub, err := p.parseSelectBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &ast.Exists{Subselect: sub}, nil

	case token.And:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.And{}, nil

	case token.Or:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Or{}, nil

	case token.Xor:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Xor{}, nil

	case token.Identifier, token.Numeric, token.Character:
		return p.parseFieldPred()

	default:
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "unexpected token %q in condition", p.cur.Lexeme)
	}
}

// parseFieldPred implements:
//
//	field_pred := field (BETWEEN field AND field | '=' field | '<>' field
//	            | '!=' field | '<' field | '>' field)
//
// A bare field with no following comparison operator is illegal: this
// dialect has no boolean-valued column reference, so `WHERE flag` is a
// parse error rather than an implicit truthiness test.
func (p *Parser) parseFieldPred() (ast.Condition, error) {
	lhs, err := p.parseFieldNode()
	if err != nil {
		return nil, err
	}

	switch p.cur.Kind {
	case token.Between:
		if err := p.advance(); err != nil {
			return nil, err
		}
		lo, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.And); err != nil {
			return nil, err
		}
		hi, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		return &ast.Between{FieldExpr: lhs, Lo: lo, Hi: hi}, nil

	case token.Equals:
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		return &ast.Equals{LHS: lhs, RHS: rhs}, nil

	case token.NotEquals:
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		return &ast.NotEquals{LHS: lhs, RHS: rhs, Spelling: "<>"}, nil

	case token.NotEquals2:
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		return &ast.NotEquals{LHS: lhs, RHS: rhs, Spelling: "!="}, nil

	case token.Less:
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		return &ast.LessThan{LHS: lhs, RHS: rhs}, nil

	case token.More:
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseFieldNode()
		if err != nil {
			return nil, err
		}
		return &ast.GreaterThan{LHS: lhs, RHS: rhs}, nil

	default:
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "expected comparison operator, got %q", p.cur.Lexeme)
	}
}

// parseFieldNode implements `field := IDENT (PERIOD IDENT)? | NUMERIC | CHARACTER`.
func (p *Parser) parseFieldNode() (ast.Field, error) {
	switch p.cur.Kind {
	case token.Identifier:
		tableAlias, name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		return ast.NewFieldRef(tableAlias, name, name), nil
	case token.Numeric:
		text := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.NumericLiteral{Text: text}, nil
	case token.Character:
		text := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.CharacterLiteral{Text: text}, nil
	default:
		return nil, sqlerr.Newf(sqlerr.InvalidSQL, "expected a field, got %q", p.cur.Lexeme)
	}
}

// Package ast defines the typed statement tree produced by the parser.
package ast

import "strings"

// Node is any AST node; String renders it back to SQL text.
type Node interface {
	String() string
}

// Field is a node usable on either side of a comparison: a column
// reference or a literal.
type Field interface {
	Node
	fieldNode()
}

// ProjectionItem is a node usable in a SELECT projection list.
type ProjectionItem interface {
	Node
	projectionNode()
}

// Condition is either a Comparison or a Boolean node. The parser emits a
// flat, source-ordered slice of Condition for WHERE and JOIN...ON clauses
// (see Parser design notes); it does not itself build a precedence tree.
type Condition interface {
	Node
	conditionNode()
}

// -----------------------------------------------------------------------
// Field references and literals
// -----------------------------------------------------------------------

// FieldRef is a (possibly table-qualified) column reference.
type FieldRef struct {
	TableAlias string // "" when unqualified
	Name       string
	Alias      string // defaults to Name
}

// NewFieldRef builds a FieldRef, defaulting Alias to Name when alias is
// empty, per the invariant that every FieldRef.Alias is non-empty.
func NewFieldRef(tableAlias, name, alias string) *FieldRef {
	if alias == "" {
		alias = name
	}
	return &FieldRef{TableAlias: tableAlias, Name: name, Alias: alias}
}

func (f *FieldRef) fieldNode()      {}
func (f *FieldRef) projectionNode() {}
func (f *FieldRef) String() string {
	if f.TableAlias != "" {
		return f.TableAlias + "." + f.Name
	}
	return f.Name
}

// CharacterLiteral is a quoted string literal, optionally aliased in a
// projection.
type CharacterLiteral struct {
	Text  string
	Alias string
}

func (c *CharacterLiteral) fieldNode()      {}
func (c *CharacterLiteral) projectionNode() {}
func (c *CharacterLiteral) String() string {
	return "'" + strings.ReplaceAll(c.Text, "'", "''") + "'"
}

// NumericLiteral is a numeric literal, optionally aliased in a projection.
type NumericLiteral struct {
	Text  string
	Alias string
}

func (n *NumericLiteral) fieldNode()      {}
func (n *NumericLiteral) projectionNode() {}
func (n *NumericLiteral) String() string  { return n.Text }

// Asterisk is the unqualified `*` projection item.
type Asterisk struct{}

func (a *Asterisk) projectionNode() {}
func (a *Asterisk) String() string  { return "*" }

// -----------------------------------------------------------------------
// Comparisons
// -----------------------------------------------------------------------

// Equals is `lhs = rhs`.
type Equals struct{ LHS, RHS Field }

func (e *Equals) conditionNode() {}
func (e *Equals) String() string { return e.LHS.String() + " = " + e.RHS.String() }

// NotEquals is `lhs <> rhs` or `lhs != rhs`; Spelling preserves which form
// the source used so round-tripping is exact.
type NotEquals struct {
	LHS, RHS Field
	Spelling string // "<>" or "!="
}

func (n *NotEquals) conditionNode() {}
func (n *NotEquals) String() string {
	sp := n.Spelling
	if sp == "" {
		sp = "<>"
	}
	return n.LHS.String() + " " + sp + " " + n.RHS.String()
}

// LessThan is `lhs < rhs`.
type LessThan struct{ LHS, RHS Field }

func (l *LessThan) conditionNode() {}
func (l *LessThan) String() string { return l.LHS.String() + " < " + l.RHS.String() }

// GreaterThan is `lhs > rhs`.
type GreaterThan struct{ LHS, RHS Field }

func (g *GreaterThan) conditionNode() {}
func (g *GreaterThan) String() string { return g.LHS.String() + " > " + g.RHS.String() }

// Between is `field BETWEEN lo AND hi`.
type Between struct {
	FieldExpr Field
	Lo, Hi    Field
}

func (b *Between) conditionNode() {}
func (b *Between) String() string {
	return b.FieldExpr.String() + " BETWEEN " + b.Lo.String() + " AND " + b.Hi.String()
}

// -----------------------------------------------------------------------
// Boolean operators
// -----------------------------------------------------------------------

// And is a boolean AND node. The parser emits it as a skeleton with
// Child == nil; a later pass may link it to the condition it joins. See
// the Parser design notes on the flat condition list.
type And struct{ Child Condition }

func (a *And) conditionNode() {}
func (a *And) String() string {
	if a.Child == nil {
		return "AND"
	}
	return "AND " + a.Child.String()
}

// Or is a boolean OR node, emitted as a skeleton like And.
type Or struct{ Child Condition }

func (o *Or) conditionNode() {}
func (o *Or) String() string {
	if o.Child == nil {
		return "OR"
	}
	return "OR " + o.Child.String()
}

// Xor is a boolean XOR node, emitted as a skeleton like And.
type Xor struct{ Child Condition }

func (x *Xor) conditionNode() {}
func (x *Xor) String() string {
	if x.Child == nil {
		return "XOR"
	}
	return "XOR " + x.Child.String()
}

// Not negates a single condition; unlike And/Or/Xor its child is never
// nil because the grammar requires one (`NOT cond`).
type Not struct{ Child Condition }

func (n *Not) conditionNode() {}
func (n *Not) String() string { return "NOT " + n.Child.String() }

// Exists wraps a correlated or uncorrelated subselect.
type Exists struct{ Subselect *SelectStatement }

func (e *Exists) conditionNode() {}
func (e *Exists) String() string { return "EXISTS (" + e.Subselect.String() + ")" }

// -----------------------------------------------------------------------
// Tables and joins
// -----------------------------------------------------------------------

// JoinKind distinguishes the join composition forms the grammar accepts.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
	RightOuterJoin
	CrossComma // implicit join from a comma-separated FROM list
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "JOIN"
	case LeftOuterJoin:
		return "LEFT JOIN"
	case RightOuterJoin:
		return "RIGHT JOIN"
	case CrossComma:
		return ","
	default:
		return "JOIN"
	}
}

// JoinClause is one `[LEFT|RIGHT] [INNER|OUTER] JOIN table alias ON cond`
// clause attached to a TableRef.
type JoinClause struct {
	Kind      JoinKind
	TableName string
	Alias     string
	On        []Condition
}

func (j *JoinClause) String() string {
	var b strings.Builder
	b.WriteString(j.Kind.String())
	b.WriteString(" ")
	b.WriteString(j.TableName)
	if j.Alias != "" && j.Alias != j.TableName {
		b.WriteString(" ")
		b.WriteString(j.Alias)
	}
	if len(j.On) > 0 {
		b.WriteString(" ON ")
		for i, c := range j.On {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(c.String())
		}
	}
	return b.String()
}

// TableRef is one entry of the FROM list together with the joins chained
// off it.
type TableRef struct {
	Name  string
	Alias string // defaults to Name
	Joins []JoinClause
}

// NewTableRef builds a TableRef, defaulting Alias to Name.
func NewTableRef(name, alias string) *TableRef {
	if alias == "" {
		alias = name
	}
	return &TableRef{Name: name, Alias: alias}
}

func (t *TableRef) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if t.Alias != "" && t.Alias != t.Name {
		b.WriteString(" ")
		b.WriteString(t.Alias)
	}
	for _, j := range t.Joins {
		b.WriteString(" ")
		b.WriteString(j.String())
	}
	return b.String()
}

// -----------------------------------------------------------------------
// Select statement
// -----------------------------------------------------------------------

// SelectStatement is the root node produced by the parser for a single
// `SELECT ...` statement.
type SelectStatement struct {
	Distinct   bool
	Projection []ProjectionItem
	From       []TableRef
	Where      []Condition
}

func (s *SelectStatement) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	for i, p := range s.Projection {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, t := range s.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.String())
		}
	}
	if len(s.Where) > 0 {
		b.WriteString(" WHERE ")
		for i, c := range s.Where {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(c.String())
		}
	}
	return b.String()
}

// Statement is any top-level node parse() can return. SelectStatement is
// presently the only implementation; the interface exists so the parser's
// public entry point has a stable return type as the grammar grows.
type Statement interface {
	Node
	statementNode()
}

func (s *SelectStatement) statementNode() {}

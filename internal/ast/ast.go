// Package ast defines the tagged abstract syntax tree produced by
// internal/parser for the statement grammar.
//
// The node shape (Node/Statement/Expression interfaces, each concrete
// node carrying its leading Token plus a String() renderer) is a
// standard recursive-descent AST layout; the node set itself is
// specific to LatticeDB's recognized grammar.
package ast

import (
	"strconv"
	"strings"

	"github.com/latticedb/latticedb/internal/token"
)

// Node is any AST node.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a top-level statement node, or the one wrapped by EXPLAIN.
type Statement interface {
	Node
	statementNode()
}

// Expression is a value-producing node: literals and identifiers.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: a sequence of statements, since multiple
// semicolon-delimited statements are allowed per input.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteString(";\n")
	}
	return b.String()
}

// ---- Expressions -----------------------------------------------------

// Identifier is a bare or qualified ("table.column") name reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// Qualifier splits "t.c" into ("t", "c", true), or ("", "c", false) if
// unqualified.
func (i *Identifier) Qualifier() (table, column string, qualified bool) {
	if idx := strings.LastIndexByte(i.Value, '.'); idx >= 0 {
		return i.Value[:idx], i.Value[idx+1:], true
	}
	return "", i.Value, false
}

// IntLiteral is an integer literal, optionally negative.
type IntLiteral struct {
	Token token.Token
	Value int64
}

func (l *IntLiteral) expressionNode()      {}
func (l *IntLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *IntLiteral) String() string       { return strconv.FormatInt(l.Value, 10) }

// FloatLiteral is a floating-point literal, optionally negative.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (l *FloatLiteral) expressionNode()      {}
func (l *FloatLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *FloatLiteral) String() string       { return strconv.FormatFloat(l.Value, 'g', -1, 64) }

// StringLiteral is a quoted text literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (l *StringLiteral) expressionNode()      {}
func (l *StringLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *StringLiteral) String() string       { return "'" + l.Value + "'" }

// NullLiteral is the NULL keyword used as a value.
type NullLiteral struct {
	Token token.Token
}

func (l *NullLiteral) expressionNode()      {}
func (l *NullLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *NullLiteral) String() string       { return "NULL" }

// SetLiteral is a "{a,b,c}" set-of-text literal.
type SetLiteral struct {
	Token token.Token
	Items []Expression
}

func (l *SetLiteral) expressionNode()      {}
func (l *SetLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *SetLiteral) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// VectorLiteral is a "[f,f,f]" vector-of-float literal.
type VectorLiteral struct {
	Token  token.Token
	Values []float64
}

func (l *VectorLiteral) expressionNode()      {}
func (l *VectorLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *VectorLiteral) String() string {
	parts := make([]string, len(l.Values))
	for i, f := range l.Values {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ---- WHERE conditions --------------------------------------------------

// Condition is one conjunct of a WHERE clause: conditions combine with
// AND only, and each one is either <col> <op> <lit>, <col> IS [NOT]
// NULL, or DISTANCE(<col>, <vec-lit>) < <float>.
type Condition interface {
	Node
	conditionNode()
}

// Comparison is "<col> <op> <lit>".
type Comparison struct {
	Token  token.Token // the operator token
	Column *Identifier
	Op     string // "=", "<>", "<", ">", "<=", ">="
	Value  Expression
}

func (c *Comparison) conditionNode()       {}
func (c *Comparison) TokenLiteral() string { return c.Token.Literal }
func (c *Comparison) String() string       { return c.Column.String() + " " + c.Op + " " + c.Value.String() }

// IsNullCondition is "<col> IS [NOT] NULL".
type IsNullCondition struct {
	Token  token.Token
	Column *Identifier
	Not    bool
}

func (c *IsNullCondition) conditionNode()       {}
func (c *IsNullCondition) TokenLiteral() string { return c.Token.Literal }
func (c *IsNullCondition) String() string {
	if c.Not {
		return c.Column.String() + " IS NOT NULL"
	}
	return c.Column.String() + " IS NULL"
}

// DistanceCondition is "DISTANCE(<col>, <vec-lit>) < <float>".
type DistanceCondition struct {
	Token     token.Token
	Column    *Identifier
	Vector    *VectorLiteral
	Threshold float64
}

func (c *DistanceCondition) conditionNode()       {}
func (c *DistanceCondition) TokenLiteral() string { return c.Token.Literal }
func (c *DistanceCondition) String() string {
	return "DISTANCE(" + c.Column.String() + ", " + c.Vector.String() + ") < " +
		strconv.FormatFloat(c.Threshold, 'g', -1, 64)
}

// ---- CREATE TABLE ------------------------------------------------------

// ColumnDef is one column in a CREATE TABLE statement.
type ColumnDef struct {
	Name      string
	TypeName  string // INT/INTEGER, DOUBLE/FLOAT, TEXT, SET, VECTOR
	VectorDim int
	PK        bool
	MergeKind string // "", "lww", "sum_bounded", "gset" (lowercased)
	MergeMin  int64
	MergeMax  int64
}

// CreateTableStatement is "CREATE TABLE <name> (<col> ...)".
type CreateTableStatement struct {
	Token   token.Token
	Name    string
	Columns []ColumnDef
}

func (s *CreateTableStatement) statementNode()      {}
func (s *CreateTableStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateTableStatement) String() string       { return "CREATE TABLE " + s.Name }

// DropTableStatement is "DROP TABLE <name>".
type DropTableStatement struct {
	Token token.Token
	Name  string
}

func (s *DropTableStatement) statementNode()      {}
func (s *DropTableStatement) TokenLiteral() string { return s.Token.Literal }
func (s *DropTableStatement) String() string       { return "DROP TABLE " + s.Name }

// ---- INSERT -------------------------------------------------------------

// InsertStatement is "INSERT INTO <name> (<cols>) VALUES (<tuple>),... [ON CONFLICT MERGE]".
type InsertStatement struct {
	Token           token.Token
	Table           string
	Columns         []string
	Rows            [][]Expression
	OnConflictMerge bool
}

func (s *InsertStatement) statementNode()      {}
func (s *InsertStatement) TokenLiteral() string { return s.Token.Literal }
func (s *InsertStatement) String() string       { return "INSERT INTO " + s.Table }

// ---- UPDATE --------------------------------------------------------------

// Assignment is one "<col> = <lit>" in an UPDATE's SET clause.
type Assignment struct {
	Column string
	Value  Expression
}

// UpdateStatement is "UPDATE <name> SET <assignments> [VALID PERIOD ...] [WHERE <conds>]".
type UpdateStatement struct {
	Token       token.Token
	Table       string
	Assignments []Assignment
	ValidFrom   *string
	ValidTo     *string
	Where       []Condition
}

func (s *UpdateStatement) statementNode()      {}
func (s *UpdateStatement) TokenLiteral() string { return s.Token.Literal }
func (s *UpdateStatement) String() string       { return "UPDATE " + s.Table }

// ---- DELETE --------------------------------------------------------------

// DeleteStatement is "DELETE FROM <name> [WHERE <conds>]". WHERE accepts
// a full conjunction, unified with UPDATE/SELECT rather than limited to
// a single condition.
type DeleteStatement struct {
	Token token.Token
	Table string
	Where []Condition
}

func (s *DeleteStatement) statementNode()      {}
func (s *DeleteStatement) TokenLiteral() string { return s.Token.Literal }
func (s *DeleteStatement) String() string       { return "DELETE FROM " + s.Table }

// ---- SELECT --------------------------------------------------------------

// AggFunc names one of the recognized aggregate call kinds.
type AggFunc string

const (
	AggCount   AggFunc = "COUNT"
	AggSum     AggFunc = "SUM"
	AggAvg     AggFunc = "AVG"
	AggMin     AggFunc = "MIN"
	AggMax     AggFunc = "MAX"
	AggDPCount AggFunc = "DP_COUNT"
)

// SelectItem is one projection item: "*", a column reference, an
// aggregate call, or the DP_EPSILON session-parameter readback.
type SelectItem struct {
	Star    bool
	Epsilon bool // SELECT DP_EPSILON
	Column  *Identifier
	Agg     AggFunc // "" if not an aggregate
	AggStar bool    // true for COUNT(*) / DP_COUNT(*)
	AggArg  *Identifier
	Alias   string
}

func (it *SelectItem) IsAggregate() bool { return it.Agg != "" }

func (it *SelectItem) String() string {
	switch {
	case it.Star:
		return "*"
	case it.Epsilon:
		return "DP_EPSILON"
	case it.IsAggregate():
		if it.AggStar {
			return string(it.Agg) + "(*)"
		}
		return string(it.Agg) + "(" + it.AggArg.String() + ")"
	default:
		return it.Column.String()
	}
}

// JoinClause is "JOIN <name> ON <col>=<col>" (inner equi-join only).
type JoinClause struct {
	Table      string
	Alias      string
	LeftColumn *Identifier
	RightColumn *Identifier
}

// OrderByItem is one "ORDER BY <col> [DESC]" entry.
type OrderByItem struct {
	Column *Identifier
	Desc   bool
}

// SelectStatement is the full SELECT grammar.
type SelectStatement struct {
	Token      token.Token
	Items      []SelectItem
	Table      string
	Alias      string
	Join       *JoinClause
	AsOfTx     *int64
	Where      []Condition
	GroupBy    []*Identifier
	OrderBy    []OrderByItem
	Limit      *int64
}

func (s *SelectStatement) statementNode()      {}
func (s *SelectStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SelectStatement) String() string       { return "SELECT ... FROM " + s.Table }

func (s *SelectStatement) HasAggregate() bool {
	if len(s.GroupBy) > 0 {
		return true
	}
	for _, it := range s.Items {
		if it.IsAggregate() {
			return true
		}
	}
	return false
}

// ---- Session / snapshot / transaction control --------------------------

// SetEpsilonStatement is "SET DP_EPSILON = <float>".
type SetEpsilonStatement struct {
	Token token.Token
	Value float64
}

func (s *SetEpsilonStatement) statementNode()      {}
func (s *SetEpsilonStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SetEpsilonStatement) String() string       { return "SET DP_EPSILON = ..." }

// SaveDatabaseStatement is "SAVE DATABASE '<path>'".
type SaveDatabaseStatement struct {
	Token token.Token
	Path  string
}

func (s *SaveDatabaseStatement) statementNode()      {}
func (s *SaveDatabaseStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SaveDatabaseStatement) String() string       { return "SAVE DATABASE '" + s.Path + "'" }

// LoadDatabaseStatement is "LOAD DATABASE '<path>'".
type LoadDatabaseStatement struct {
	Token token.Token
	Path  string
}

func (s *LoadDatabaseStatement) statementNode()      {}
func (s *LoadDatabaseStatement) TokenLiteral() string { return s.Token.Literal }
func (s *LoadDatabaseStatement) String() string       { return "LOAD DATABASE '" + s.Path + "'" }

// BeginStatement is "BEGIN [TRANSACTION]".
type BeginStatement struct{ Token token.Token }

func (s *BeginStatement) statementNode()      {}
func (s *BeginStatement) TokenLiteral() string { return s.Token.Literal }
func (s *BeginStatement) String() string       { return "BEGIN" }

// CommitStatement is "COMMIT | END".
type CommitStatement struct{ Token token.Token }

func (s *CommitStatement) statementNode()      {}
func (s *CommitStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CommitStatement) String() string       { return "COMMIT" }

// RollbackStatement is "ROLLBACK".
type RollbackStatement struct{ Token token.Token }

func (s *RollbackStatement) statementNode()      {}
func (s *RollbackStatement) TokenLiteral() string { return s.Token.Literal }
func (s *RollbackStatement) String() string       { return "ROLLBACK" }

// ExitStatement is "EXIT | QUIT".
type ExitStatement struct{ Token token.Token }

func (s *ExitStatement) statementNode()      {}
func (s *ExitStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ExitStatement) String() string       { return "EXIT" }

// ---- Introspection and planning statements -------------------------------

// ExplainStatement is "EXPLAIN <stmt>".
type ExplainStatement struct {
	Token token.Token
	Inner Statement
}

func (s *ExplainStatement) statementNode()      {}
func (s *ExplainStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ExplainStatement) String() string       { return "EXPLAIN " + s.Inner.String() }

// ShowTablesStatement is "SHOW TABLES".
type ShowTablesStatement struct{ Token token.Token }

func (s *ShowTablesStatement) statementNode()      {}
func (s *ShowTablesStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ShowTablesStatement) String() string       { return "SHOW TABLES" }

// DescribeStatement is "DESCRIBE <table>".
type DescribeStatement struct {
	Token token.Token
	Table string
}

func (s *DescribeStatement) statementNode()      {}
func (s *DescribeStatement) TokenLiteral() string { return s.Token.Literal }
func (s *DescribeStatement) String() string       { return "DESCRIBE " + s.Table }

// ---- Invalid statement --------------------------------------------------

// InvalidStatement is the tagged invalid AST node for unrecognized
// input: parsing never panics, it produces this node with a
// human-readable message instead.
type InvalidStatement struct {
	Token   token.Token
	Message string
}

func (s *InvalidStatement) statementNode()      {}
func (s *InvalidStatement) TokenLiteral() string { return s.Token.Literal }
func (s *InvalidStatement) String() string       { return "INVALID: " + s.Message }

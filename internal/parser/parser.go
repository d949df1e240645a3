// Package parser implements a recursive-descent parser over
// internal/lexer's token stream, producing internal/ast nodes for the
// statement grammar.
//
// The Parser shape (curToken/peekToken two-token lookahead,
// expectPeek/peekError error accumulation, one parseXxxStatement per
// leading keyword) is the classic Pratt-adjacent recursive-descent
// layout.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticedb/latticedb/internal/ast"
	"github.com/latticedb/latticedb/internal/lexer"
	"github.com/latticedb/latticedb/internal/token"
)

// Parser turns a token stream into an *ast.Program. It never panics on
// malformed input: unrecognized statements become *ast.InvalidStatement
// nodes and the error is also recorded in Errors().
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string
}

// New constructs a Parser positioned before the first token of input.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every error accumulated while parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: expected next token to be %s, got %s (%q) instead",
		p.peekToken.Line, t, p.peekToken.Type, p.peekToken.Literal))
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: ", p.curToken.Line)+fmt.Sprintf(format, args...))
}

// ParseProgram parses every statement up to EOF, each terminated by an
// optional trailing semicolon. A statement whose parse recorded an error
// is replaced by an *ast.InvalidStatement carrying those errors, and the
// rest of it is skipped up to the next semicolon.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		start, errCount := p.curToken, len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > errCount {
			if _, invalid := stmt.(*ast.InvalidStatement); !invalid {
				stmt = &ast.InvalidStatement{Token: start, Message: strings.Join(p.errors[errCount:], "; ")}
			}
			for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.EOF) {
				p.nextToken()
			}
		} else {
			p.nextToken()
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		for p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDropTable()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.SELECT:
		return p.parseSelect()
	case token.SET:
		return p.parseSetEpsilon()
	case token.SAVE:
		return p.parseSaveDatabase()
	case token.LOAD:
		return p.parseLoadDatabase()
	case token.BEGIN:
		return p.parseBegin()
	case token.COMMIT, token.END:
		return p.parseCommit()
	case token.ROLLBACK:
		return p.parseRollback()
	case token.EXIT, token.QUIT:
		return p.parseExit()
	case token.EXPLAIN:
		return p.parseExplain()
	case token.SHOW:
		return p.parseShowTables()
	case token.DESCRIBE:
		return p.parseDescribe()
	default:
		return p.parseInvalid()
	}
}

// parseInvalid consumes tokens up to the next statement boundary so one
// bad statement doesn't desynchronize the rest of the program.
func (p *Parser) parseInvalid() ast.Statement {
	tok := p.curToken
	msg := fmt.Sprintf("unrecognized statement starting with %s (%q)", tok.Type, tok.Literal)
	p.errors = append(p.errors, "line "+strconv.Itoa(tok.Line)+": "+msg)
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	return &ast.InvalidStatement{Token: tok, Message: msg}
}

// ---- CREATE / DROP TABLE -------------------------------------------------

func (p *Parser) parseCreateTable() ast.Statement {
	stmt := &ast.CreateTableStatement{Token: p.curToken}
	if !p.expectPeek(token.TABLE) {
		return stmt
	}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		col, ok := p.parseColumnDef()
		if !ok {
			break
		}
		stmt.Columns = append(stmt.Columns, col)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RPAREN)
	return stmt
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, bool) {
	var col ast.ColumnDef
	if !p.curTokenIs(token.IDENT) {
		p.errorf("expected column name, got %s", p.curToken.Type)
		return col, false
	}
	col.Name = p.curToken.Literal
	p.nextToken()

	switch p.curToken.Type {
	case token.INTEGER_TYPE:
		col.TypeName = "INT"
	case token.DOUBLE_TYPE, token.FLOAT_TYPE:
		col.TypeName = "DOUBLE"
	case token.TEXT_TYPE:
		col.TypeName = "TEXT"
	case token.SET:
		col.TypeName = "SET"
		if !p.expectPeek(token.LT) || !p.expectPeek(token.TEXT_TYPE) || !p.expectPeek(token.GT) {
			return col, false
		}
	case token.VECTOR_TYPE:
		col.TypeName = "VECTOR"
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			if !p.expectPeek(token.INT) {
				return col, false
			}
			dim, _ := strconv.Atoi(p.curToken.Literal)
			col.VectorDim = dim
			if !p.expectPeek(token.GT) {
				return col, false
			}
		}
	default:
		p.errorf("expected a column type, got %s", p.curToken.Type)
		return col, false
	}

	if p.peekTokenIs(token.PRIMARY) {
		p.nextToken()
		if !p.expectPeek(token.KEY) {
			return col, false
		}
		col.PK = true
	}

	if p.peekTokenIs(token.MERGE) {
		p.nextToken()
		p.nextToken()
		switch p.curToken.Type {
		case token.LWW:
			col.MergeKind = "lww"
		case token.GSET:
			col.MergeKind = "gset"
		case token.SUM_BOUNDED:
			col.MergeKind = "sum_bounded"
			if !p.expectPeek(token.LPAREN) {
				return col, false
			}
			if !p.expectPeek(token.INT) {
				return col, false
			}
			col.MergeMin, _ = strconv.ParseInt(p.curToken.Literal, 10, 64)
			if !p.expectPeek(token.COMMA) {
				return col, false
			}
			if !p.expectPeek(token.INT) {
				return col, false
			}
			col.MergeMax, _ = strconv.ParseInt(p.curToken.Literal, 10, 64)
			if !p.expectPeek(token.RPAREN) {
				return col, false
			}
		default:
			p.errorf("expected a merge kind, got %s", p.curToken.Type)
			return col, false
		}
	}

	return col, true
}

func (p *Parser) parseDropTable() ast.Statement {
	stmt := &ast.DropTableStatement{Token: p.curToken}
	if !p.expectPeek(token.TABLE) {
		return stmt
	}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Name = p.curToken.Literal
	return stmt
}

// ---- INSERT ---------------------------------------------------------------

func (p *Parser) parseInsert() ast.Statement {
	stmt := &ast.InsertStatement{Token: p.curToken}
	if !p.expectPeek(token.INTO) {
		return stmt
	}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Table = p.curToken.Literal

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		p.nextToken()
		for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
			if p.curTokenIs(token.IDENT) {
				stmt.Columns = append(stmt.Columns, p.curToken.Literal)
			}
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			p.nextToken()
			break
		}
	}

	if !p.expectPeek(token.VALUES) {
		return stmt
	}

	for {
		if !p.expectPeek(token.LPAREN) {
			return stmt
		}
		p.nextToken()
		var row []ast.Expression
		for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
			row = append(row, p.parseValueExpression())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			p.nextToken()
			break
		}
		stmt.Rows = append(stmt.Rows, row)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(token.ON) {
		p.nextToken()
		if p.expectPeek(token.CONFLICT) && p.expectPeek(token.MERGE) {
			stmt.OnConflictMerge = true
		}
	}

	return stmt
}

// ---- UPDATE -----------------------------------------------------------

func (p *Parser) parseUpdate() ast.Statement {
	stmt := &ast.UpdateStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Table = p.curToken.Literal
	if !p.expectPeek(token.SET) {
		return stmt
	}
	p.nextToken()
	for {
		if !p.curTokenIs(token.IDENT) {
			p.errorf("expected column name in SET clause, got %s", p.curToken.Type)
			break
		}
		assign := ast.Assignment{Column: p.curToken.Literal}
		if !p.expectPeek(token.EQ) {
			break
		}
		p.nextToken()
		assign.Value = p.parseValueExpression()
		stmt.Assignments = append(stmt.Assignments, assign)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(token.VALID) {
		p.nextToken()
		if !p.expectPeek(token.PERIOD) {
			return stmt
		}
		// Half-open interval literal "['<ts>','<ts>')": a literal '['
		// then a ')' close, mirroring mathematical half-open notation.
		if !p.expectPeek(token.LBRACKET) {
			return stmt
		}
		p.nextToken()
		from := p.parseValueExpression()
		if s, ok := from.(*ast.StringLiteral); ok {
			stmt.ValidFrom = &s.Value
		}
		if !p.expectPeek(token.COMMA) {
			return stmt
		}
		p.nextToken()
		to := p.parseValueExpression()
		if s, ok := to.(*ast.StringLiteral); ok {
			stmt.ValidTo = &s.Value
		}
		p.expectPeek(token.RPAREN)
	}

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseConditionList()
	}

	return stmt
}

// ---- DELETE -------------------------------------------------------------

func (p *Parser) parseDelete() ast.Statement {
	stmt := &ast.DeleteStatement{Token: p.curToken}
	if !p.expectPeek(token.FROM) {
		return stmt
	}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Table = p.curToken.Literal
	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseConditionList()
	}
	return stmt
}

// ---- SELECT -------------------------------------------------------------

func (p *Parser) parseSelect() ast.Statement {
	stmt := &ast.SelectStatement{Token: p.curToken}
	p.nextToken()

	for {
		item, ok := p.parseSelectItem()
		if !ok {
			break
		}
		stmt.Items = append(stmt.Items, item)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.FROM) {
		return stmt
	}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Table = p.curToken.Literal
	stmt.Alias = p.parseOptionalAlias()

	if p.peekTokenIs(token.JOIN) {
		p.nextToken()
		join := &ast.JoinClause{}
		if !p.expectPeek(token.IDENT) {
			return stmt
		}
		join.Table = p.curToken.Literal
		join.Alias = p.parseOptionalAlias()
		if !p.expectPeek(token.ON) {
			return stmt
		}
		p.nextToken()
		join.LeftColumn = p.parseColumnRef()
		if !p.expectPeek(token.EQ) {
			return stmt
		}
		p.nextToken()
		join.RightColumn = p.parseColumnRef()
		stmt.Join = join
	}

	if p.peekTokenIs(token.FOR) {
		p.nextToken()
		if !p.expectPeek(token.SYSTEM_TIME) {
			return stmt
		}
		if !p.expectPeek(token.AS) {
			return stmt
		}
		if !p.expectPeek(token.OF) {
			return stmt
		}
		if !p.expectPeek(token.TX) {
			return stmt
		}
		if !p.expectPeek(token.INT) {
			return stmt
		}
		n, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		stmt.AsOfTx = &n
	}

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseConditionList()
	}

	if p.peekTokenIs(token.GROUP) {
		p.nextToken()
		if !p.expectPeek(token.BY) {
			return stmt
		}
		p.nextToken()
		for {
			stmt.GroupBy = append(stmt.GroupBy, p.parseColumnRef())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.peekTokenIs(token.ORDER) {
		p.nextToken()
		if !p.expectPeek(token.BY) {
			return stmt
		}
		p.nextToken()
		for {
			item := ast.OrderByItem{Column: p.parseColumnRef()}
			if p.peekTokenIs(token.ASC) {
				p.nextToken()
			} else if p.peekTokenIs(token.DESC) {
				p.nextToken()
				item.Desc = true
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.peekTokenIs(token.LIMIT) {
		p.nextToken()
		if !p.expectPeek(token.INT) {
			return stmt
		}
		n, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		stmt.Limit = &n
	}

	return stmt
}

// parseOptionalAlias consumes "AS <ident>" or a bare "<ident>" table
// alias, returning "" if neither follows.
func (p *Parser) parseOptionalAlias() string {
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if p.expectPeek(token.IDENT) {
			return p.curToken.Literal
		}
		return ""
	}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		return p.curToken.Literal
	}
	return ""
}

func (p *Parser) parseSelectItem() (ast.SelectItem, bool) {
	var item ast.SelectItem
	switch p.curToken.Type {
	case token.EOF, token.FROM:
		return item, false
	case token.SEMICOLON:
		return item, false
	}

	if p.curTokenIs(token.STAR) {
		item.Star = true
		return item, true
	}

	switch p.curToken.Type {
	case token.DP_EPSILON:
		item.Epsilon = true
		return item, true
	case token.COUNT, token.SUM, token.AVG, token.MIN, token.MAX, token.DP_COUNT:
		item.Agg = ast.AggFunc(strings.ToUpper(p.curToken.Type.String()))
		if !p.expectPeek(token.LPAREN) {
			return item, false
		}
		p.nextToken()
		if p.curTokenIs(token.STAR) {
			item.AggStar = true
		} else {
			item.AggArg = p.parseColumnRef()
		}
		if !p.expectPeek(token.RPAREN) {
			return item, false
		}
	default:
		item.Column = p.parseColumnRef()
	}

	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if p.expectPeek(token.IDENT) {
			item.Alias = p.curToken.Literal
		}
	}
	return item, true
}

// ---- WHERE conditions ---------------------------------------------------

func (p *Parser) parseConditionList() []ast.Condition {
	var conds []ast.Condition
	for {
		c := p.parseCondition()
		if c != nil {
			conds = append(conds, c)
		}
		if p.peekTokenIs(token.AND) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	return conds
}

func (p *Parser) parseCondition() ast.Condition {
	if p.curTokenIs(token.DISTANCE) {
		tok := p.curToken
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		p.nextToken()
		col := p.parseColumnRef()
		if !p.expectPeek(token.COMMA) {
			return nil
		}
		p.nextToken()
		vec, ok := p.parseValueExpression().(*ast.VectorLiteral)
		if !ok {
			p.errorf("DISTANCE requires a vector literal argument")
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		if !p.expectPeek(token.LT) {
			return nil
		}
		p.nextToken()
		threshold := p.parseValueExpression()
		f := literalAsFloat(threshold)
		return &ast.DistanceCondition{Token: tok, Column: col, Vector: vec, Threshold: f}
	}

	col := p.parseColumnRef()

	if p.peekTokenIs(token.IS) {
		p.nextToken()
		tok := p.curToken
		not := false
		if p.peekTokenIs(token.NOT) {
			p.nextToken()
			not = true
		}
		if !p.expectPeek(token.NULL_KW) {
			return nil
		}
		return &ast.IsNullCondition{Token: tok, Column: col, Not: not}
	}

	var op string
	switch p.peekToken.Type {
	case token.EQ:
		op = "="
	case token.NEQ:
		op = "<>"
	case token.LT:
		op = "<"
	case token.GT:
		op = ">"
	case token.LTE:
		op = "<="
	case token.GTE:
		op = ">="
	default:
		p.errorf("expected a comparison operator, got %s", p.peekToken.Type)
		return nil
	}
	p.nextToken()
	tok := p.curToken
	p.nextToken()
	val := p.parseValueExpression()
	return &ast.Comparison{Token: tok, Column: col, Op: op, Value: val}
}

func literalAsFloat(e ast.Expression) float64 {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return float64(v.Value)
	case *ast.FloatLiteral:
		return v.Value
	default:
		return 0
	}
}

// ---- column refs and literal value expressions ---------------------------

func (p *Parser) parseColumnRef() *ast.Identifier {
	name := p.curToken.Literal
	tok := p.curToken
	if p.peekTokenIs(token.DOT) {
		p.nextToken()
		p.nextToken()
		name = name + "." + p.curToken.Literal
	}
	return &ast.Identifier{Token: tok, Value: name}
}

// parseValueExpression parses one literal value: an optionally
// negative number, a quoted string, NULL, a {set} literal, or a
// [vector] literal. It leaves curToken on the last token consumed.
func (p *Parser) parseValueExpression() ast.Expression {
	neg := false
	if p.curTokenIs(token.MINUS) {
		neg = true
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.INT:
		n, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if neg {
			n = -n
		}
		return &ast.IntLiteral{Token: p.curToken, Value: n}
	case token.FLOAT:
		f, _ := strconv.ParseFloat(p.curToken.Literal, 64)
		if neg {
			f = -f
		}
		return &ast.FloatLiteral{Token: p.curToken, Value: f}
	case token.STRING:
		return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.NULL_KW:
		return &ast.NullLiteral{Token: p.curToken}
	case token.LBRACE:
		return p.parseSetLiteral()
	case token.LBRACKET:
		return p.parseVectorLiteral()
	default:
		p.errorf("expected a literal value, got %s (%q)", p.curToken.Type, p.curToken.Literal)
		return &ast.NullLiteral{Token: p.curToken}
	}
}

func (p *Parser) parseSetLiteral() ast.Expression {
	lit := &ast.SetLiteral{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		lit.Items = append(lit.Items, p.parseValueExpression())
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return lit
}

func (p *Parser) parseVectorLiteral() ast.Expression {
	lit := &ast.VectorLiteral{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACKET) && !p.curTokenIs(token.EOF) {
		v := p.parseValueExpression()
		lit.Values = append(lit.Values, literalAsFloat(v))
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		p.nextToken()
		break
	}
	return lit
}

// ---- session / snapshot / transaction control ----------------------------

func (p *Parser) parseSetEpsilon() ast.Statement {
	stmt := &ast.SetEpsilonStatement{Token: p.curToken}
	if !p.expectPeek(token.DP_EPSILON) {
		return stmt
	}
	if !p.expectPeek(token.EQ) {
		return stmt
	}
	p.nextToken()
	neg := false
	if p.curTokenIs(token.MINUS) {
		neg = true
		p.nextToken()
	}
	switch p.curToken.Type {
	case token.FLOAT:
		f, _ := strconv.ParseFloat(p.curToken.Literal, 64)
		if neg {
			f = -f
		}
		stmt.Value = f
	case token.INT:
		n, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if neg {
			n = -n
		}
		stmt.Value = float64(n)
	default:
		p.errorf("expected a numeric epsilon value, got %s", p.curToken.Type)
	}
	return stmt
}

func (p *Parser) parseSaveDatabase() ast.Statement {
	stmt := &ast.SaveDatabaseStatement{Token: p.curToken}
	if !p.expectPeek(token.DATABASE) {
		return stmt
	}
	if !p.expectPeek(token.STRING) {
		return stmt
	}
	stmt.Path = p.curToken.Literal
	return stmt
}

func (p *Parser) parseLoadDatabase() ast.Statement {
	stmt := &ast.LoadDatabaseStatement{Token: p.curToken}
	if !p.expectPeek(token.DATABASE) {
		return stmt
	}
	if !p.expectPeek(token.STRING) {
		return stmt
	}
	stmt.Path = p.curToken.Literal
	return stmt
}

func (p *Parser) parseBegin() ast.Statement {
	stmt := &ast.BeginStatement{Token: p.curToken}
	if p.peekTokenIs(token.TRANSACTION) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseCommit() ast.Statement {
	return &ast.CommitStatement{Token: p.curToken}
}

func (p *Parser) parseRollback() ast.Statement {
	return &ast.RollbackStatement{Token: p.curToken}
}

func (p *Parser) parseExit() ast.Statement {
	return &ast.ExitStatement{Token: p.curToken}
}

// ---- supplemented introspection statements -------------------------------

func (p *Parser) parseExplain() ast.Statement {
	tok := p.curToken
	p.nextToken()
	inner := p.parseStatement()
	return &ast.ExplainStatement{Token: tok, Inner: inner}
}

func (p *Parser) parseShowTables() ast.Statement {
	stmt := &ast.ShowTablesStatement{Token: p.curToken}
	p.expectPeek(token.TABLES)
	return stmt
}

func (p *Parser) parseDescribe() ast.Statement {
	stmt := &ast.DescribeStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Table = p.curToken.Literal
	return stmt
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/latticedb/internal/ast"
)

func checkErrors(t *testing.T, p *Parser) {
	t.Helper()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser had %d errors: %v", len(errs), errs)
	}
}

func TestParseCreateTableWithMergeSpecs(t *testing.T) {
	input := `CREATE TABLE people (
		id TEXT PRIMARY KEY,
		credits INT MERGE sum_bounded(0, 1000),
		tags SET<TEXT> MERGE gset,
		bio TEXT MERGE lww
	);`

	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)
	require.Len(t, prog.Statements, 1)

	stmt, ok := prog.Statements[0].(*ast.CreateTableStatement)
	require.True(t, ok)
	assert.Equal(t, "people", stmt.Name)
	require.Len(t, stmt.Columns, 4)

	assert.Equal(t, "id", stmt.Columns[0].Name)
	assert.True(t, stmt.Columns[0].PK)

	assert.Equal(t, "sum_bounded", stmt.Columns[1].MergeKind)
	assert.Equal(t, int64(0), stmt.Columns[1].MergeMin)
	assert.Equal(t, int64(1000), stmt.Columns[1].MergeMax)

	assert.Equal(t, "SET", stmt.Columns[2].TypeName)
	assert.Equal(t, "gset", stmt.Columns[2].MergeKind)

	assert.Equal(t, "lww", stmt.Columns[3].MergeKind)
}

func TestParseInsertOnConflictMerge(t *testing.T) {
	input := `INSERT INTO people (id, credits, tags) VALUES ('u1', 10, {'a','b'}) ON CONFLICT MERGE;`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)
	require.Len(t, prog.Statements, 1)

	stmt := prog.Statements[0].(*ast.InsertStatement)
	assert.Equal(t, "people", stmt.Table)
	assert.Equal(t, []string{"id", "credits", "tags"}, stmt.Columns)
	require.Len(t, stmt.Rows, 1)
	require.Len(t, stmt.Rows[0], 3)
	assert.True(t, stmt.OnConflictMerge)

	set, ok := stmt.Rows[0][2].(*ast.SetLiteral)
	require.True(t, ok)
	assert.Len(t, set.Items, 2)
}

func TestParseSelectWithJoinWhereGroupByOrderByLimit(t *testing.T) {
	input := `SELECT dept, COUNT(*) FROM employees JOIN depts ON employees.dept_id = depts.id
		WHERE credits > 10 AND name IS NOT NULL
		GROUP BY dept ORDER BY dept DESC LIMIT 5;`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)
	require.Len(t, prog.Statements, 1)

	stmt := prog.Statements[0].(*ast.SelectStatement)
	assert.Equal(t, "employees", stmt.Table)
	require.NotNil(t, stmt.Join)
	assert.Equal(t, "depts", stmt.Join.Table)
	assert.Equal(t, "employees.dept_id", stmt.Join.LeftColumn.Value)
	assert.Equal(t, "depts.id", stmt.Join.RightColumn.Value)

	require.Len(t, stmt.Where, 2)
	cmp, ok := stmt.Where[0].(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ">", cmp.Op)
	isNull, ok := stmt.Where[1].(*ast.IsNullCondition)
	require.True(t, ok)
	assert.True(t, isNull.Not)

	require.Len(t, stmt.GroupBy, 1)
	assert.Equal(t, "dept", stmt.GroupBy[0].Value)
	require.Len(t, stmt.OrderBy, 1)
	assert.True(t, stmt.OrderBy[0].Desc)
	require.NotNil(t, stmt.Limit)
	assert.Equal(t, int64(5), *stmt.Limit)

	require.Len(t, stmt.Items, 2)
	assert.Equal(t, "dept", stmt.Items[0].Column.Value)
	assert.Equal(t, ast.AggCount, stmt.Items[1].Agg)
	assert.True(t, stmt.Items[1].AggStar)
	assert.True(t, stmt.HasAggregate())
}

func TestParseSelectAsOfTxAndDistance(t *testing.T) {
	input := `SELECT * FROM docs FOR SYSTEM_TIME AS OF TX 42 WHERE DISTANCE(embedding, [0.1,-2,4]) < 0.5;`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)

	stmt := prog.Statements[0].(*ast.SelectStatement)
	require.Len(t, stmt.Items, 1)
	assert.True(t, stmt.Items[0].Star)
	require.NotNil(t, stmt.AsOfTx)
	assert.Equal(t, int64(42), *stmt.AsOfTx)

	require.Len(t, stmt.Where, 1)
	dist, ok := stmt.Where[0].(*ast.DistanceCondition)
	require.True(t, ok)
	assert.Equal(t, "embedding", dist.Column.Value)
	assert.InDelta(t, 0.5, dist.Threshold, 1e-9)
	require.Len(t, dist.Vector.Values, 3)
	assert.InDelta(t, -2.0, dist.Vector.Values[1], 1e-9)
}

func TestParseUpdateWithValidPeriodAndWhere(t *testing.T) {
	input := `UPDATE people SET bio = 'new', credits = 5 VALID PERIOD ['2026-01-01T00:00:00Z','2026-02-01T00:00:00Z') WHERE id = 'u1';`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)

	stmt := prog.Statements[0].(*ast.UpdateStatement)
	assert.Equal(t, "people", stmt.Table)
	require.Len(t, stmt.Assignments, 2)
	require.NotNil(t, stmt.ValidFrom)
	assert.Equal(t, "2026-01-01T00:00:00Z", *stmt.ValidFrom)
	require.Len(t, stmt.Where, 1)
}

func TestParseDeleteWithConjunctiveWhere(t *testing.T) {
	input := `DELETE FROM people WHERE credits < 0 AND bio IS NULL;`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)

	stmt := prog.Statements[0].(*ast.DeleteStatement)
	assert.Equal(t, "people", stmt.Table)
	require.Len(t, stmt.Where, 2)
}

func TestParseSessionAndSnapshotAndTxnStatements(t *testing.T) {
	input := `SET DP_EPSILON = 0.5; SAVE DATABASE 'out.snap'; LOAD DATABASE 'in.snap'; BEGIN TRANSACTION; COMMIT; ROLLBACK; EXIT;`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)
	require.Len(t, prog.Statements, 7)

	assert.Equal(t, 0.5, prog.Statements[0].(*ast.SetEpsilonStatement).Value)
	assert.Equal(t, "out.snap", prog.Statements[1].(*ast.SaveDatabaseStatement).Path)
	assert.Equal(t, "in.snap", prog.Statements[2].(*ast.LoadDatabaseStatement).Path)
	_, ok := prog.Statements[3].(*ast.BeginStatement)
	assert.True(t, ok)
	_, ok = prog.Statements[4].(*ast.CommitStatement)
	assert.True(t, ok)
	_, ok = prog.Statements[5].(*ast.RollbackStatement)
	assert.True(t, ok)
	_, ok = prog.Statements[6].(*ast.ExitStatement)
	assert.True(t, ok)
}

func TestParseExplainShowTablesDescribe(t *testing.T) {
	input := `EXPLAIN SELECT * FROM people; SHOW TABLES; DESCRIBE people;`
	p := New(input)
	prog := p.ParseProgram()
	checkErrors(t, p)
	require.Len(t, prog.Statements, 3)

	explain := prog.Statements[0].(*ast.ExplainStatement)
	_, ok := explain.Inner.(*ast.SelectStatement)
	assert.True(t, ok)

	_, ok = prog.Statements[1].(*ast.ShowTablesStatement)
	assert.True(t, ok)

	desc := prog.Statements[2].(*ast.DescribeStatement)
	assert.Equal(t, "people", desc.Table)
}

func TestParseInvalidStatementRecordsErrorWithoutPanicking(t *testing.T) {
	input := `FROBNICATE everything;`
	p := New(input)
	prog := p.ParseProgram()
	require.Len(t, prog.Statements, 1)
	_, ok := prog.Statements[0].(*ast.InvalidStatement)
	assert.True(t, ok)
	assert.NotEmpty(t, p.Errors())
}

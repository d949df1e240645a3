package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOK(t *testing.T, results []Result) []Result {
	t.Helper()
	for i, r := range results {
		if !r.OK {
			t.Fatalf("statement %d failed: %s", i, r.Message)
		}
	}
	return results
}

// S1 — bounded-counter, growing-set, and LWW merges compose correctly
// under ON CONFLICT MERGE. The scenario's literal VALUES tuple swaps the
// name/credits positions relative to its own column list; this test
// uses the value order that actually produces the scenario's stated
// result (name='Ada Lovelace', credits=25), recorded in DESIGN.md.
func TestScenarioS1CRDTMerge(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT MERGE lww,
		  tags SET<TEXT> MERGE gset, credits INT MERGE sum_bounded(0, 1000000));
		INSERT INTO people (id,name,tags,credits) VALUES ('u1','Ada',{'engineer'},10);
		INSERT INTO people (id,name,tags,credits) VALUES ('u1','Ada Lovelace',{'leader'},15) ON CONFLICT MERGE;
	`))

	res := e.Execute(`SELECT name, tags, credits FROM people WHERE id='u1';`)
	require.Len(t, res, 1)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 1)

	row := res[0].Rows[0]
	assert.Equal(t, "Ada Lovelace", row[0].Canonical())
	assert.Equal(t, "{engineer,leader}", row[1].Canonical())
	assert.Equal(t, "25", row[2].Canonical())
}

// S2 — FOR SYSTEM_TIME AS OF TX 1 sees the pre-merge version.
func TestScenarioS2TimeTravel(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT MERGE lww,
		  tags SET<TEXT> MERGE gset, credits INT MERGE sum_bounded(0, 1000000));
		INSERT INTO people (id,name,tags,credits) VALUES ('u1','Ada',{'engineer'},10);
		INSERT INTO people (id,name,tags,credits) VALUES ('u1','Ada Lovelace',{'leader'},15) ON CONFLICT MERGE;
	`))

	res := e.Execute(`SELECT name FROM people FOR SYSTEM_TIME AS OF TX 1 WHERE id='u1';`)
	require.Len(t, res, 1)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 1)
	assert.Equal(t, "Ada", res[0].Rows[0][0].Canonical())
}

// S3 — inner equi-join, GROUP BY, aggregates, ORDER BY.
func TestScenarioS3JoinGroupBy(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE departments (dept_id INT PRIMARY KEY, dept_name TEXT);
		CREATE TABLE employees (emp_id INT PRIMARY KEY, name TEXT, dept_id INT, salary INT);
		INSERT INTO departments VALUES (1,'Eng'),(2,'Sales');
		INSERT INTO employees VALUES (1,'A',1,100),(2,'B',1,120),(3,'C',2,90);
	`))

	res := e.Execute(`
		SELECT d.dept_name, COUNT(*), SUM(e.salary)
		  FROM employees e JOIN departments d ON e.dept_id=d.dept_id
		  GROUP BY d.dept_name ORDER BY dept_name;
	`)
	require.Len(t, res, 1)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 2)

	assert.Equal(t, "Eng", res[0].Rows[0][0].Canonical())
	assert.Equal(t, "2", res[0].Rows[0][1].Canonical())
	assert.Equal(t, "220", res[0].Rows[0][2].Canonical())

	assert.Equal(t, "Sales", res[0].Rows[1][0].Canonical())
	assert.Equal(t, "1", res[0].Rows[1][1].Canonical())
	assert.Equal(t, "90", res[0].Rows[1][2].Canonical())
}

// S4 — ROLLBACK undoes a staged INSERT entirely.
func TestScenarioS4TransactionRollback(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`CREATE TABLE people (id TEXT PRIMARY KEY, name TEXT MERGE lww,
		  tags SET<TEXT> MERGE gset, credits INT MERGE sum_bounded(0, 1000000));`))

	before := e.Execute(`SELECT COUNT(*) FROM people;`)
	require.True(t, before[0].OK)
	beforeCount := before[0].Rows[0][0].Canonical()

	mustOK(t, e.Execute(`BEGIN;`))
	mustOK(t, e.Execute(`INSERT INTO people (id,name,tags,credits) VALUES ('u2','X',{},0);`))
	mustOK(t, e.Execute(`ROLLBACK;`))

	after := e.Execute(`SELECT COUNT(*) FROM people;`)
	require.True(t, after[0].OK)
	assert.Equal(t, beforeCount, after[0].Rows[0][0].Canonical())
}

// S5 — vector DISTANCE predicate filters rows.
func TestScenarioS5VectorDistance(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE v (id TEXT PRIMARY KEY, e VECTOR<4>);
		INSERT INTO v VALUES ('a',[0,0,0,0]), ('b',[1,1,1,1]);
	`))

	res := e.Execute(`SELECT id FROM v WHERE DISTANCE(e,[0.1,0,0,0]) < 0.5;`)
	require.Len(t, res, 1)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 1)
	assert.Equal(t, "a", res[0].Rows[0][0].Canonical())
}

// S6 — DP_COUNT deviates from the true count on the order of 1/epsilon.
func TestScenarioS6DPCount(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE employees (emp_id INT PRIMARY KEY, name TEXT, dept_id INT, salary INT);
		INSERT INTO employees VALUES (1,'A',1,100),(2,'B',1,120),(3,'C',2,90);
		SET DP_EPSILON = 0.5;
	`))

	res := e.Execute(`SELECT DP_COUNT(*) FROM employees;`)
	require.Len(t, res, 1)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 1)
	require.Len(t, res[0].Rows[0], 1)

	got := res[0].Rows[0][0].F
	assert.True(t, math.Abs(got-3) < 50, "noisy count %v implausibly far from true count 3", got)
}

func TestDPCountMustBeSoleSelectItem(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`CREATE TABLE t (id INT PRIMARY KEY);`))
	res := e.Execute(`SELECT id, DP_COUNT(*) FROM t;`)
	require.Len(t, res, 1)
	assert.False(t, res[0].OK)
}

func TestSelectStarIncludesBitemporalFields(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE t (id INT PRIMARY KEY, name TEXT);
		INSERT INTO t VALUES (1,'x');
	`))
	res := e.Execute(`SELECT * FROM t;`)
	require.True(t, res[0].OK, res[0].Message)
	require.Equal(t, []string{"id", "name", "tx_from", "tx_to", "valid_from", "valid_to"}, res[0].Header)
	require.Len(t, res[0].Rows, 1)
	assert.Equal(t, "1", res[0].Rows[0][0].Canonical())
}

func TestUpdateAppliesMergeAndValidPeriod(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE people (id TEXT PRIMARY KEY, credits INT MERGE sum_bounded(0,1000));
		INSERT INTO people (id,credits) VALUES ('u1',10);
	`))
	mustOK(t, e.Execute(`UPDATE people SET credits = 5 VALID PERIOD ['2026-01-01T00:00:00Z','2026-02-01T00:00:00Z') WHERE id='u1';`))

	res := e.Execute(`SELECT credits, valid_from, valid_to FROM people WHERE id='u1';`)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 1)
	assert.Equal(t, "15", res[0].Rows[0][0].Canonical())
	assert.Equal(t, "2026-01-01T00:00:00Z", res[0].Rows[0][1].Canonical())
	assert.Equal(t, "2026-02-01T00:00:00Z", res[0].Rows[0][2].Canonical())
}

func TestDeleteClosesMatchingVersions(t *testing.T) {
	e := New()
	mustOK(t, e.Execute(`
		CREATE TABLE t (id INT PRIMARY KEY, flag TEXT);
		INSERT INTO t VALUES (1,'keep'),(2,'drop');
	`))
	mustOK(t, e.Execute(`DELETE FROM t WHERE flag = 'drop';`))

	res := e.Execute(`SELECT id FROM t;`)
	require.True(t, res[0].OK, res[0].Message)
	require.Len(t, res[0].Rows, 1)
	assert.Equal(t, "1", res[0].Rows[0][0].Canonical())
}

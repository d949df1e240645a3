// Package engine ties the catalog, bitemporal store, transaction
// controller, and SQL parser/executor into the single top-level type an
// embedder talks to: one Execute call per statement, returning a
// structured Result.
package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/latticedb/latticedb/internal/ast"
	"github.com/latticedb/latticedb/internal/catalog"
	"github.com/latticedb/latticedb/internal/dpcount"
	"github.com/latticedb/latticedb/internal/merge"
	"github.com/latticedb/latticedb/internal/parser"
	"github.com/latticedb/latticedb/internal/snapshot"
	"github.com/latticedb/latticedb/internal/store"
	"github.com/latticedb/latticedb/internal/txn"
	"github.com/latticedb/latticedb/internal/value"
)

// Engine owns every piece of mutable state for one LatticeDB session:
// catalog, store, transaction controller, and the DP_EPSILON session
// parameter. All mutable state lives on the instance, never in package
// globals, so multiple engines can coexist in one process.
type Engine struct {
	id  uuid.UUID
	cat *catalog.Catalog
	st  *store.Store
	txn *txn.Controller

	epsilon float64
	rng     *rand.Rand

	log zerolog.Logger
}

// New returns a fresh, empty Engine. Logging defaults to a no-op logger
// so library consumers get no unsolicited output; call SetLogger to
// install a real one (cmd/latticedb does this for its console writer).
func New() *Engine {
	id := uuid.New()
	return &Engine{
		id:      id,
		cat:     catalog.New(),
		st:      store.New(),
		txn:     txn.New(),
		epsilon: dpcount.DefaultEpsilon,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     zerolog.Nop(),
	}
}

// SetLogger installs l, annotated with this engine's instance id, as
// the engine's logger, and logs the engine's construction so
// concurrent engine instances in one process's logs can be told apart.
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.log = l.With().Str("engine_id", e.id.String()).Logger()
	e.log.Info().Msg("engine initialized")
}

// Execute parses input as zero or more semicolon-delimited statements
// and runs each one in turn, returning one Result per statement.
// Multiple statements per input are permitted when delimited.
func (e *Engine) Execute(input string) []Result {
	p := parser.New(input)
	prog := p.ParseProgram()

	if len(prog.Statements) == 0 {
		if errs := p.Errors(); len(errs) > 0 {
			msg := strings.Join(errs, "; ")
			e.log.Warn().Str("error", msg).Msg("parse failed")
			return []Result{fail("parse error: %s", msg)}
		}
		return nil
	}

	results := make([]Result, 0, len(prog.Statements))
	for _, stmt := range prog.Statements {
		results = append(results, e.executeStatement(stmt))
	}
	return results
}

// executeStatement dispatches stmt and logs a warning for any failed
// result, the single choke point every dispatched statement's fail(...)
// funnels through (Execute logs its own no-statement parse failure).
func (e *Engine) executeStatement(stmt ast.Statement) Result {
	res := e.dispatchStatement(stmt)
	if !res.OK {
		e.log.Warn().Str("error", res.Message).Msg("statement failed")
	}
	return res
}

func (e *Engine) dispatchStatement(stmt ast.Statement) Result {
	switch s := stmt.(type) {
	case *ast.CreateTableStatement:
		return e.execCreateTable(s)
	case *ast.DropTableStatement:
		return e.execDropTable(s)
	case *ast.InsertStatement:
		return e.execInsert(s)
	case *ast.UpdateStatement:
		return e.execUpdate(s)
	case *ast.DeleteStatement:
		return e.execDelete(s)
	case *ast.SelectStatement:
		return e.execSelect(s)
	case *ast.SetEpsilonStatement:
		e.epsilon = s.Value
		return ok(fmt.Sprintf("DP_EPSILON = %s", value.NewDouble(s.Value).Canonical()))
	case *ast.SaveDatabaseStatement:
		return e.execSave(s)
	case *ast.LoadDatabaseStatement:
		return e.execLoad(s)
	case *ast.BeginStatement:
		if err := e.txn.Begin(); err != nil {
			return fail("%v", err)
		}
		e.log.Debug().Int64("next_tx", e.st.PeekNextTx()).Msg("transaction began")
		return ok("BEGIN")
	case *ast.CommitStatement:
		if err := e.txn.Commit(e.st); err != nil {
			return fail("%v", err)
		}
		e.log.Debug().Int64("next_tx", e.st.PeekNextTx()).Msg("transaction committed")
		return ok("COMMIT")
	case *ast.RollbackStatement:
		if err := e.txn.Rollback(e.st); err != nil {
			return fail("%v", err)
		}
		e.log.Debug().Int64("next_tx", e.st.PeekNextTx()).Msg("transaction rolled back")
		return ok("ROLLBACK")
	case *ast.ExitStatement:
		return ok("goodbye")
	case *ast.ExplainStatement:
		return e.execExplain(s)
	case *ast.ShowTablesStatement:
		return e.execShowTables()
	case *ast.DescribeStatement:
		return e.execDescribe(s)
	case *ast.InvalidStatement:
		return fail("parse error: %s", s.Message)
	default:
		return fail("unsupported statement type %T", stmt)
	}
}

func (e *Engine) tableOrFail(name string) (*catalog.TableDef, Result, bool) {
	t, found := e.cat.Table(name)
	if !found {
		return nil, fail("unknown table %q", name), false
	}
	return t, Result{}, true
}

func columnKind(typeName string) value.Kind {
	switch typeName {
	case "INT":
		return value.Int
	case "DOUBLE":
		return value.Double
	case "TEXT":
		return value.Text
	case "SET":
		return value.Set
	case "VECTOR":
		return value.Vector
	default:
		return value.Null
	}
}

func mergeSpecFor(c ast.ColumnDef) merge.Spec {
	switch strings.ToLower(c.MergeKind) {
	case "lww":
		return merge.LWWSpec
	case "gset":
		return merge.GSetSpec
	case "sum_bounded":
		return merge.SumBoundedSpec(c.MergeMin, c.MergeMax)
	default:
		return merge.NoneSpec
	}
}

func (e *Engine) execCreateTable(s *ast.CreateTableStatement) Result {
	def := &catalog.TableDef{Display: s.Name, Mergeable: true, PKIndex: -1}
	for _, c := range s.Columns {
		col := catalog.ColumnDef{
			Name:      strings.ToUpper(c.Name),
			Display:   c.Name,
			Type:      columnKind(c.TypeName),
			PK:        c.PK,
			Merge:     mergeSpecFor(c),
			VectorDim: c.VectorDim,
		}
		if c.PK {
			def.PKIndex = len(def.Columns)
		}
		def.Columns = append(def.Columns, col)
	}
	if err := e.cat.CreateTable(def); err != nil {
		return fail("%v", err)
	}
	e.log.Info().Str("table", s.Name).Int("columns", len(def.Columns)).Msg("table created")
	return ok(fmt.Sprintf("CREATE TABLE %s", s.Name))
}

func (e *Engine) execDropTable(s *ast.DropTableStatement) Result {
	if err := e.cat.DropTable(s.Name); err != nil {
		return fail("%v", err)
	}
	e.st.DropTable(s.Name)
	e.log.Info().Str("table", s.Name).Msg("table dropped")
	return ok(fmt.Sprintf("DROP TABLE %s", s.Name))
}

func (e *Engine) execSave(s *ast.SaveDatabaseStatement) Result {
	f, err := os.Create(s.Path)
	if err != nil {
		return fail("cannot create snapshot file %q: %v", s.Path, err)
	}
	defer f.Close()
	if err := snapshot.Save(f, e.cat, e.st); err != nil {
		return fail("snapshot save failed: %v", err)
	}
	e.log.Info().Str("path", s.Path).Msg("snapshot saved")
	return ok(fmt.Sprintf("SAVE DATABASE '%s'", s.Path))
}

// execLoad parses the snapshot into a fresh Database value and only
// swaps it into the engine on success, leaving prior state untouched
// on any error.
func (e *Engine) execLoad(s *ast.LoadDatabaseStatement) Result {
	f, err := os.Open(s.Path)
	if err != nil {
		return fail("cannot open snapshot file %q: %v", s.Path, err)
	}
	defer f.Close()

	db, err := snapshot.Load(f)
	if err != nil {
		return fail("snapshot load failed: %v", err)
	}
	e.cat = db.Catalog
	e.st = db.Store
	e.txn = txn.New()
	e.log.Info().Str("path", s.Path).Msg("snapshot loaded")
	return ok(fmt.Sprintf("LOAD DATABASE '%s'", s.Path))
}

func (e *Engine) execExplain(s *ast.ExplainStatement) Result {
	if s.Inner == nil {
		return fail("nothing to explain")
	}
	return okRows([]string{"plan"}, [][]value.Value{
		{value.NewText(explainPlan(s.Inner))},
	})
}

func (e *Engine) execShowTables() Result {
	tables := e.cat.Tables()
	rows := make([][]value.Value, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []value.Value{value.NewText(t.Display)})
	}
	return okRows([]string{"table"}, rows)
}

func (e *Engine) execDescribe(s *ast.DescribeStatement) Result {
	t, res, okT := e.tableOrFail(s.Table)
	if !okT {
		return res
	}
	rows := make([][]value.Value, 0, len(t.Columns))
	for _, c := range t.Columns {
		pk := "NO"
		if c.PK {
			pk = "YES"
		}
		mk := c.Merge.Kind.String()
		rows = append(rows, []value.Value{
			value.NewText(c.Display), value.NewText(c.Type.String()),
			value.NewText(pk), value.NewText(mk),
		})
	}
	return okRows([]string{"column", "type", "pk", "merge"}, rows)
}

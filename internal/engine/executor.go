package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/latticedb/latticedb/internal/ast"
	"github.com/latticedb/latticedb/internal/catalog"
	"github.com/latticedb/latticedb/internal/dpcount"
	"github.com/latticedb/latticedb/internal/merge"
	"github.com/latticedb/latticedb/internal/store"
	"github.com/latticedb/latticedb/internal/txn"
	"github.com/latticedb/latticedb/internal/value"
)

// astToValue converts a literal expression node to its runtime value.
func astToValue(e ast.Expression) value.Value {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return value.NewInt(v.Value)
	case *ast.FloatLiteral:
		return value.NewDouble(v.Value)
	case *ast.StringLiteral:
		return value.NewText(v.Value)
	case *ast.NullLiteral:
		return value.NewNull()
	case *ast.SetLiteral:
		items := make([]string, 0, len(v.Items))
		for _, it := range v.Items {
			items = append(items, astLiteralText(it))
		}
		return value.NewSet(items...)
	case *ast.VectorLiteral:
		return value.NewVector(v.Values...)
	default:
		return value.NewNull()
	}
}

func astLiteralText(e ast.Expression) string {
	if s, ok := e.(*ast.StringLiteral); ok {
		return s.Value
	}
	return astToValue(e).Canonical()
}

func coerceColumn(col catalog.ColumnDef, expr ast.Expression) value.Value {
	lit := astToValue(expr)
	if col.Type == value.Vector {
		return lit.CoerceToDim(col.VectorDim)
	}
	return lit.CoerceTo(col.Type)
}

func (e *Engine) applyOrStage(op txn.StagedOp) {
	if e.txn.InTransaction() {
		e.txn.Stage(op)
		return
	}
	op.Apply(e.st)
}

// boundTable pairs a table definition with the row version bound to it
// for the row currently being evaluated.
type boundTable struct {
	def     *catalog.TableDef
	alias   string
	version store.RowVersion
}

// rowContext resolves column references against one or two bound tables
// (plain SELECT vs. the single-JOIN shape). Unqualified names resolve
// against the first table in order, then the second.
type rowContext struct {
	byAlias map[string]*boundTable
	order   []*boundTable
}

func newRowContext(tables ...*boundTable) *rowContext {
	ctx := &rowContext{byAlias: make(map[string]*boundTable), order: tables}
	for _, t := range tables {
		ctx.byAlias[strings.ToUpper(t.alias)] = t
		ctx.byAlias[strings.ToUpper(t.def.Display)] = t
	}
	return ctx
}

var bitemporalFields = []string{"tx_from", "tx_to", "valid_from", "valid_to"}

func bitemporalValue(v store.RowVersion, name string) (value.Value, bool) {
	switch strings.ToLower(name) {
	case "tx_from":
		return value.NewInt(v.TxFrom), true
	case "tx_to":
		return value.NewInt(v.TxTo), true
	case "valid_from":
		return value.NewText(v.ValidFrom), true
	case "valid_to":
		return value.NewText(v.ValidTo), true
	default:
		return value.Value{}, false
	}
}

func (ctx *rowContext) resolve(ref *ast.Identifier) (value.Value, bool) {
	table, col, qualified := ref.Qualifier()
	if qualified {
		bt, ok := ctx.byAlias[strings.ToUpper(table)]
		if !ok {
			return value.Value{}, false
		}
		if idx := bt.def.ColumnIndex(col); idx >= 0 {
			return bt.version.Data[idx], true
		}
		return bitemporalValue(bt.version, col)
	}
	for _, bt := range ctx.order {
		if idx := bt.def.ColumnIndex(col); idx >= 0 {
			return bt.version.Data[idx], true
		}
	}
	if len(ctx.order) > 0 {
		return bitemporalValue(ctx.order[0].version, col)
	}
	return value.Value{}, false
}

// evalConditions evaluates a conjunction of conditions (WHERE is a flat
// AND-list); an unresolvable column reference is a schema error.
func (e *Engine) evalConditions(conds []ast.Condition, ctx *rowContext) (bool, error) {
	for _, c := range conds {
		match, err := e.evalCondition(c, ctx)
		if err != nil {
			return false, err
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

func (e *Engine) evalCondition(c ast.Condition, ctx *rowContext) (bool, error) {
	switch cond := c.(type) {
	case *ast.Comparison:
		lhs, ok := ctx.resolve(cond.Column)
		if !ok {
			return false, fmt.Errorf("unknown column %q", cond.Column.Value)
		}
		rhs := astToValue(cond.Value)
		switch cond.Op {
		case "=":
			return value.Equal(lhs, rhs), nil
		case "<>":
			return !value.Equal(lhs, rhs), nil
		default:
			cmp, comparable := value.Compare(lhs, rhs)
			if !comparable {
				return false, nil
			}
			switch cond.Op {
			case "<":
				return cmp < 0, nil
			case ">":
				return cmp > 0, nil
			case "<=":
				return cmp <= 0, nil
			case ">=":
				return cmp >= 0, nil
			default:
				return false, fmt.Errorf("unknown comparison operator %q", cond.Op)
			}
		}
	case *ast.IsNullCondition:
		v, ok := ctx.resolve(cond.Column)
		if !ok {
			return false, fmt.Errorf("unknown column %q", cond.Column.Value)
		}
		if cond.Not {
			return !v.IsNull(), nil
		}
		return v.IsNull(), nil
	case *ast.DistanceCondition:
		v, ok := ctx.resolve(cond.Column)
		if !ok {
			return false, fmt.Errorf("unknown column %q", cond.Column.Value)
		}
		lhs := v.CoerceTo(value.Vector)
		rhs := value.NewVector(cond.Vector.Values...)
		return value.L2Distance(lhs, rhs) < cond.Threshold, nil
	default:
		return false, fmt.Errorf("unsupported condition type %T", c)
	}
}

// ---- INSERT ----

func (e *Engine) execInsert(s *ast.InsertStatement) Result {
	table, res, okT := e.tableOrFail(s.Table)
	if !okT {
		return res
	}
	if table.PKIndex < 0 {
		return fail("table %q has no primary key column; INSERT requires one", s.Table)
	}

	log := e.st.Table(table.Name)
	inserted := 0

	for _, row := range s.Rows {
		values := make([]value.Value, len(table.Columns))
		for i := range values {
			values[i] = value.NewNull()
		}

		if len(s.Columns) > 0 {
			if len(s.Columns) != len(row) {
				return fail("INSERT column count (%d) does not match value count (%d)", len(s.Columns), len(row))
			}
			for i, colName := range s.Columns {
				idx := table.ColumnIndex(colName)
				if idx < 0 {
					return fail("unknown column %q in INSERT", colName)
				}
				values[idx] = coerceColumn(table.Columns[idx], row[i])
			}
		} else {
			if len(row) != len(table.Columns) {
				return fail("INSERT value count (%d) does not match table column count (%d)", len(row), len(table.Columns))
			}
			for i, expr := range row {
				values[i] = coerceColumn(table.Columns[i], expr)
			}
		}

		pkVal := values[table.PKIndex]
		rowID, okID := store.EncodeRowID(pkVal)
		if !okID {
			return fail("INSERT is missing a valid primary key value")
		}

		var op txn.StagedOp
		if curIdx, exists := log.CurrentVersion(rowID); exists {
			old := log.Versions[curIdx]
			txN := e.st.BeginTx()
			newData := make([]value.Value, len(values))
			if s.OnConflictMerge && table.Mergeable {
				for i, col := range table.Columns {
					merged := merge.Merge(col.Merge, old.Data[i], values[i])
					if merged.IsNull() {
						merged = old.Data[i]
					}
					newData[i] = merged
				}
			} else {
				for i := range values {
					if values[i].IsNull() {
						newData[i] = old.Data[i]
					} else {
						newData[i] = values[i]
					}
				}
			}
			newVersion := store.RowVersion{
				RowID: rowID, TxFrom: txN, TxTo: store.Infinity,
				ValidFrom: old.ValidFrom, ValidTo: old.ValidTo, Data: newData,
			}
			op = txn.NewAppendAndClose(table.Name, []int{curIdx}, txN, []store.RowVersion{newVersion})
		} else {
			txN := e.st.BeginTx()
			newVersion := store.RowVersion{
				RowID: rowID, TxFrom: txN, TxTo: store.Infinity,
				ValidFrom: time.Now().UTC().Format(time.RFC3339), ValidTo: store.DefaultValidTo,
				Data: values,
			}
			op = &txn.AppendOp{Table: table.Name, Versions: []store.RowVersion{newVersion}}
		}
		e.applyOrStage(op)
		inserted++
	}

	return ok(fmt.Sprintf("INSERT %d", inserted))
}

// ---- UPDATE ----

func (e *Engine) execUpdate(s *ast.UpdateStatement) Result {
	table, res, okT := e.tableOrFail(s.Table)
	if !okT {
		return res
	}
	log := e.st.Table(table.Name)
	visible := log.VisibleSet(store.Infinity)

	matched := 0
	for rowID, idx := range visible {
		ver := log.Versions[idx]
		ctx := newRowContext(&boundTable{def: table, alias: s.Table, version: ver})
		match, err := e.evalConditions(s.Where, ctx)
		if err != nil {
			return fail("%v", err)
		}
		if !match {
			continue
		}

		newData := append([]value.Value(nil), ver.Data...)
		for _, assign := range s.Assignments {
			colIdx := table.ColumnIndex(assign.Column)
			if colIdx < 0 {
				return fail("unknown column %q in UPDATE", assign.Column)
			}
			col := table.Columns[colIdx]
			newVal := coerceColumn(col, assign.Value)
			if col.Merge.Kind != merge.None && table.Mergeable {
				newData[colIdx] = merge.Merge(col.Merge, ver.Data[colIdx], newVal)
			} else {
				newData[colIdx] = newVal
			}
		}

		validFrom, validTo := ver.ValidFrom, ver.ValidTo
		if s.ValidFrom != nil {
			validFrom = *s.ValidFrom
		}
		if s.ValidTo != nil {
			validTo = *s.ValidTo
		}

		txN := e.st.BeginTx()
		newVersion := store.RowVersion{
			RowID: rowID, TxFrom: txN, TxTo: store.Infinity,
			ValidFrom: validFrom, ValidTo: validTo, Data: newData,
		}
		op := txn.NewAppendAndClose(table.Name, []int{idx}, txN, []store.RowVersion{newVersion})
		e.applyOrStage(op)
		matched++
	}

	return ok(fmt.Sprintf("UPDATE %d", matched))
}

// ---- DELETE ----

func (e *Engine) execDelete(s *ast.DeleteStatement) Result {
	table, res, okT := e.tableOrFail(s.Table)
	if !okT {
		return res
	}
	log := e.st.Table(table.Name)
	visible := log.VisibleSet(store.Infinity)

	matched := 0
	for _, idx := range visible {
		ver := log.Versions[idx]
		ctx := newRowContext(&boundTable{def: table, alias: s.Table, version: ver})
		match, err := e.evalConditions(s.Where, ctx)
		if err != nil {
			return fail("%v", err)
		}
		if !match {
			continue
		}
		txN := e.st.BeginTx()
		op := &txn.CloseOp{Table: table.Name, Indices: []int{idx}, TxN: txN}
		e.applyOrStage(op)
		matched++
	}

	return ok(fmt.Sprintf("DELETE %d", matched))
}

// explainPlan renders a one-line plan description for EXPLAIN. The
// wrapped statement is never itself executed for its writes.
func explainPlan(stmt ast.Statement) string {
	sel, ok := stmt.(*ast.SelectStatement)
	if !ok {
		return fmt.Sprintf("%T (not a query plan)", stmt)
	}

	scan := "seq_scan " + sel.Table
	if sel.Join != nil {
		scan = fmt.Sprintf("hash_join %s = %s", sel.Join.LeftColumn.Value, sel.Join.RightColumn.Value)
	}
	if len(sel.Where) > 0 {
		scan += fmt.Sprintf(" | filter(%d cond)", len(sel.Where))
	}
	if sel.HasAggregate() {
		var keys []string
		for _, gb := range sel.GroupBy {
			keys = append(keys, gb.Value)
		}
		scan += fmt.Sprintf(" | aggregate(group_by=%v)", keys)
	}
	if len(sel.OrderBy) > 0 {
		scan += " | sort"
	}
	if sel.Limit != nil {
		scan += fmt.Sprintf(" | limit(%d)", *sel.Limit)
	}
	return scan
}

// ---- SELECT ----

type joinedRow struct {
	left  store.RowVersion
	right *store.RowVersion
}

func (e *Engine) execSelect(s *ast.SelectStatement) Result {
	leftTable, res, okT := e.tableOrFail(s.Table)
	if !okT {
		return res
	}
	leftAlias := s.Alias
	if leftAlias == "" {
		leftAlias = s.Table
	}

	asOf := int64(store.Infinity)
	if s.AsOfTx != nil {
		asOf = *s.AsOfTx
	}

	leftLog := e.st.Table(leftTable.Name)
	leftVisible := leftLog.VisibleSet(asOf)

	var rightTable *catalog.TableDef
	rightAlias := ""
	var candidates []joinedRow

	if s.Join != nil {
		var res2 Result
		rightTable, res2, okT = e.tableOrFail(s.Join.Table)
		if !okT {
			return res2
		}
		rightAlias = s.Join.Alias
		if rightAlias == "" {
			rightAlias = s.Join.Table
		}
		rightLog := e.st.Table(rightTable.Name)
		rightVisible := rightLog.VisibleSet(asOf)

		leftColIdx := leftTable.ColumnIndex(s.Join.LeftColumn.Value)
		rightColIdx := rightTable.ColumnIndex(s.Join.RightColumn.Value)
		if leftColIdx < 0 || rightColIdx < 0 {
			return fail("unknown join column")
		}

		rightHash := make(map[string][]store.RowVersion)
		for _, idx := range rightVisible {
			rv := rightLog.Versions[idx]
			key := rv.Data[rightColIdx].HashKey()
			rightHash[key] = append(rightHash[key], rv)
		}
		for _, idx := range leftVisible {
			lv := leftLog.Versions[idx]
			key := lv.Data[leftColIdx].HashKey()
			for _, rv := range rightHash[key] {
				rv := rv
				candidates = append(candidates, joinedRow{left: lv, right: &rv})
			}
		}
	} else {
		for _, idx := range leftVisible {
			candidates = append(candidates, joinedRow{left: leftLog.Versions[idx]})
		}
	}

	buildCtx := func(r joinedRow) *rowContext {
		tables := []*boundTable{{def: leftTable, alias: leftAlias, version: r.left}}
		if r.right != nil {
			tables = append(tables, &boundTable{def: rightTable, alias: rightAlias, version: *r.right})
		}
		return newRowContext(tables...)
	}

	var filtered []joinedRow
	for _, c := range candidates {
		match, err := e.evalConditions(s.Where, buildCtx(c))
		if err != nil {
			return fail("%v", err)
		}
		if match {
			filtered = append(filtered, c)
		}
	}

	if s.HasAggregate() {
		return e.execAggregateSelect(s, buildCtx, filtered)
	}
	return e.execProjectionSelect(s, leftTable, buildCtx, filtered)
}

func headerNameFor(item ast.SelectItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	if item.Star {
		return "*"
	}
	if item.Epsilon {
		return "DP_EPSILON"
	}
	if item.IsAggregate() {
		if item.AggStar {
			return string(item.Agg) + "(*)"
		}
		return string(item.Agg) + "(" + item.AggArg.Value + ")"
	}
	_, col, _ := item.Column.Qualifier()
	return col
}

func (e *Engine) execProjectionSelect(s *ast.SelectStatement, leftTable *catalog.TableDef, buildCtx func(joinedRow) *rowContext, rows []joinedRow) Result {
	star := len(s.Items) == 1 && s.Items[0].Star

	var header []string
	if star {
		for _, c := range leftTable.Columns {
			header = append(header, c.Display)
		}
		header = append(header, bitemporalFields...)
	} else {
		for _, item := range s.Items {
			header = append(header, headerNameFor(item))
		}
	}

	data := make([][]value.Value, 0, len(rows))
	for _, r := range rows {
		ctx := buildCtx(r)
		var out []value.Value
		if star {
			out = append(out, r.left.Data...)
			out = append(out,
				value.NewInt(r.left.TxFrom), value.NewInt(r.left.TxTo),
				value.NewText(r.left.ValidFrom), value.NewText(r.left.ValidTo),
			)
		} else {
			for _, item := range s.Items {
				switch {
				case item.Epsilon:
					out = append(out, value.NewDouble(e.epsilon))
				default:
					v, okV := ctx.resolve(item.Column)
					if !okV {
						return fail("unknown column %q", item.Column.Value)
					}
					out = append(out, v)
				}
			}
		}
		data = append(data, out)
	}

	sortRows(data, header, s.OrderBy, false)
	data = applyLimit(data, s.Limit)

	return okRows(header, data)
}

func (e *Engine) execAggregateSelect(s *ast.SelectStatement, buildCtx func(joinedRow) *rowContext, rows []joinedRow) Result {
	dpCountSole := len(s.Items) == 1 && s.Items[0].Agg == ast.AggDPCount
	anyDPCount := false
	for _, it := range s.Items {
		if it.Agg == ast.AggDPCount {
			anyDPCount = true
		}
	}
	if anyDPCount && !dpCountSole {
		return fail("DP_COUNT must be the sole SELECT item")
	}
	if dpCountSole {
		noisy := dpcount.Noisy(int64(len(rows)), e.epsilon, e.rng)
		return okRows([]string{"DP_COUNT(*)"}, [][]value.Value{{value.NewDouble(noisy)}})
	}

	type group struct {
		keyValues []value.Value
		rows      []joinedRow
	}
	groups := make(map[string]*group)
	var order []string

	for _, r := range rows {
		ctx := buildCtx(r)
		keyVals := make([]value.Value, len(s.GroupBy))
		parts := make([]string, len(s.GroupBy))
		for i, gb := range s.GroupBy {
			v, okV := ctx.resolve(gb)
			if !okV {
				return fail("unknown column %q in GROUP BY", gb.Value)
			}
			keyVals[i] = v
			parts[i] = v.HashKey()
		}
		key := strings.Join(parts, "\x1f")
		g, exists := groups[key]
		if !exists {
			g = &group{keyValues: keyVals}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
	}
	if len(order) == 0 {
		groups[""] = &group{}
		order = []string{""}
	}

	var header []string
	for _, item := range s.Items {
		header = append(header, headerNameFor(item))
	}

	data := make([][]value.Value, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := make([]value.Value, len(s.Items))
		for i, item := range s.Items {
			switch {
			case item.Epsilon:
				row[i] = value.NewDouble(e.epsilon)
			case item.IsAggregate():
				row[i] = e.computeAggregate(item, g.rows, buildCtx)
			default:
				if idx := groupByIndex(s.GroupBy, item.Column); idx >= 0 {
					row[i] = g.keyValues[idx]
				} else {
					row[i] = value.NewNull()
				}
			}
		}
		data = append(data, row)
	}

	sortRows(data, header, s.OrderBy, true)
	data = applyLimit(data, s.Limit)

	return okRows(header, data)
}

func groupByIndex(groupBy []*ast.Identifier, col *ast.Identifier) int {
	if col == nil {
		return -1
	}
	_, name, _ := col.Qualifier()
	for i, gb := range groupBy {
		_, gbName, _ := gb.Qualifier()
		if strings.EqualFold(gbName, name) {
			return i
		}
	}
	return -1
}

func (e *Engine) computeAggregate(item ast.SelectItem, rows []joinedRow, buildCtx func(joinedRow) *rowContext) value.Value {
	switch item.Agg {
	case ast.AggCount:
		return value.NewInt(int64(len(rows)))
	case ast.AggDPCount:
		return value.NewDouble(dpcount.Noisy(int64(len(rows)), e.epsilon, e.rng))
	}

	var nums []float64
	for _, r := range rows {
		ctx := buildCtx(r)
		v, okV := ctx.resolve(item.AggArg)
		if !okV {
			continue
		}
		coerced := v.CoerceTo(value.Double)
		if coerced.Kind == value.Double {
			nums = append(nums, coerced.F)
		}
	}
	if len(nums) == 0 {
		return value.NewNull()
	}
	switch item.Agg {
	case ast.AggSum:
		var sum float64
		for _, f := range nums {
			sum += f
		}
		return value.NewDouble(sum)
	case ast.AggAvg:
		var sum float64
		for _, f := range nums {
			sum += f
		}
		return value.NewDouble(sum / float64(len(nums)))
	case ast.AggMin:
		m := nums[0]
		for _, f := range nums[1:] {
			if f < m {
				m = f
			}
		}
		return value.NewDouble(m)
	case ast.AggMax:
		m := nums[0]
		for _, f := range nums[1:] {
			if f > m {
				m = f
			}
		}
		return value.NewDouble(m)
	default:
		return value.NewNull()
	}
}

func unqualifiedName(s string) string {
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func findHeaderIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func compareCell(a, b value.Value, numeric bool) int {
	if numeric {
		if cmp, comparable := value.Compare(a, b); comparable {
			return cmp
		}
	}
	as, bs := a.Canonical(), b.Canonical()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// sortRows implements ORDER BY: numeric comparison by output-column
// index for aggregate result sets, stringified-value comparison for
// non-aggregate ones.
func sortRows(rows [][]value.Value, header []string, orderBy []ast.OrderByItem, numeric bool) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ob := range orderBy {
			idx := findHeaderIndex(header, unqualifiedName(ob.Column.Value))
			if idx < 0 {
				continue
			}
			c := compareCell(rows[i][idx], rows[j][idx], numeric)
			if c == 0 {
				continue
			}
			if ob.Desc {
				c = -c
			}
			return c < 0
		}
		return false
	})
}

func applyLimit(rows [][]value.Value, limit *int64) [][]value.Value {
	if limit != nil && int64(len(rows)) > *limit {
		return rows[:*limit]
	}
	return rows
}

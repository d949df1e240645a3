// Package catalog implements LatticeDB's table/column catalog:
// case-insensitive table and column name resolution, create and drop
// of table definitions.
package catalog

import (
	"fmt"
	"strings"

	"github.com/latticedb/latticedb/internal/merge"
	"github.com/latticedb/latticedb/internal/value"
)

// ColumnDef describes one declared column.
type ColumnDef struct {
	Name      string // stored uppercased; display name preserves declared case
	Display   string
	Type      value.Kind
	PK        bool
	Merge     merge.Spec
	VectorDim int // only meaningful when Type == value.Vector
}

// TableDef is a table's schema.
type TableDef struct {
	Name       string // uppercased
	Display    string
	Columns    []ColumnDef
	PKIndex    int // -1 if no PK declared
	Mergeable  bool
}

// ColumnIndex returns the index of the named column, or -1 if absent.
// Name may be unqualified ("id") or qualified ("people.id"); the
// qualifier, if present, is ignored here — qualification against a
// specific table is resolved by the executor, which knows which side
// of a join "people" refers to.
func (t *TableDef) ColumnIndex(name string) int {
	name = unqualify(name)
	upper := strings.ToUpper(name)
	for i, c := range t.Columns {
		if c.Name == upper {
			return i
		}
	}
	return -1
}

func unqualify(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Catalog owns the set of table definitions known to one engine
// instance, resolved case-insensitively.
type Catalog struct {
	tables map[string]*TableDef // keyed by uppercased name
	order  []string             // insertion order, for deterministic SHOW TABLES
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{tables: make(map[string]*TableDef)}
}

// CreateTable registers def. It is an error to redefine an existing
// table.
func (c *Catalog) CreateTable(def *TableDef) error {
	key := strings.ToUpper(def.Display)
	if _, exists := c.tables[key]; exists {
		return fmt.Errorf("table %q already exists", def.Display)
	}
	def.Name = key
	c.tables[key] = def
	c.order = append(c.order, key)
	return nil
}

// DropTable removes a table definition. Dropping an unknown table is an
// error.
func (c *Catalog) DropTable(name string) error {
	key := strings.ToUpper(name)
	if _, exists := c.tables[key]; !exists {
		return fmt.Errorf("unknown table %q", name)
	}
	delete(c.tables, key)
	for i, n := range c.order {
		if n == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Table looks up a table definition by name, case-insensitively.
func (c *Catalog) Table(name string) (*TableDef, bool) {
	def, ok := c.tables[strings.ToUpper(name)]
	return def, ok
}

// Tables returns definitions in creation order (used by SHOW TABLES and
// the snapshot codec, which both need deterministic iteration).
func (c *Catalog) Tables() []*TableDef {
	out := make([]*TableDef, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.tables[n])
	}
	return out
}

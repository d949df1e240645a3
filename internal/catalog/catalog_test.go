package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/latticedb/internal/merge"
	"github.com/latticedb/latticedb/internal/value"
)

func peopleDef() *TableDef {
	return &TableDef{
		Display:   "people",
		Mergeable: true,
		PKIndex:   0,
		Columns: []ColumnDef{
			{Name: "ID", Display: "id", Type: value.Text, PK: true, Merge: merge.NoneSpec},
			{Name: "NAME", Display: "name", Type: value.Text, Merge: merge.LWWSpec},
		},
	}
}

func TestCreateTableCaseInsensitiveLookup(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(peopleDef()))

	def, ok := c.Table("PEOPLE")
	require.True(t, ok)
	assert.Equal(t, "PEOPLE", def.Name)

	def2, ok := c.Table("People")
	require.True(t, ok)
	assert.Same(t, def, def2)
}

func TestCreateTableDuplicateRejected(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(peopleDef()))
	err := c.CreateTable(peopleDef())
	assert.Error(t, err)
}

func TestDropUnknownTableErrors(t *testing.T) {
	c := New()
	err := c.DropTable("ghost")
	assert.Error(t, err)
}

func TestDropThenCreateAllowed(t *testing.T) {
	c := New()
	require.NoError(t, c.CreateTable(peopleDef()))
	require.NoError(t, c.DropTable("people"))
	require.NoError(t, c.CreateTable(peopleDef()))
}

func TestColumnIndexQualifiedAndUnqualified(t *testing.T) {
	def := peopleDef()
	assert.Equal(t, 0, def.ColumnIndex("id"))
	assert.Equal(t, 0, def.ColumnIndex("people.id"))
	assert.Equal(t, 1, def.ColumnIndex("NAME"))
	assert.Equal(t, -1, def.ColumnIndex("missing"))
}

func TestTablesPreservesInsertionOrder(t *testing.T) {
	c := New()
	a := &TableDef{Display: "a", PKIndex: -1}
	b := &TableDef{Display: "b", PKIndex: -1}
	require.NoError(t, c.CreateTable(a))
	require.NoError(t, c.CreateTable(b))
	names := []string{}
	for _, d := range c.Tables() {
		names = append(names, d.Display)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

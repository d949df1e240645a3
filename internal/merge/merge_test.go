package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/latticedb/internal/value"
)

func TestLWWIsRightBiased(t *testing.T) {
	got := Merge(LWWSpec, value.NewText("Ada"), value.NewText("Ada Lovelace"))
	assert.Equal(t, "Ada Lovelace", got.S)

	reversed := Merge(LWWSpec, value.NewText("Ada Lovelace"), value.NewText("Ada"))
	assert.Equal(t, "Ada", reversed.S)
}

func TestSumBoundedClampsAndIsCommutative(t *testing.T) {
	spec := SumBoundedSpec(0, 1000000)
	a := Merge(spec, value.NewInt(10), value.NewInt(15))
	b := Merge(spec, value.NewInt(15), value.NewInt(10))
	require.Equal(t, int64(25), a.I)
	assert.Equal(t, a, b)

	clampedHigh := Merge(SumBoundedSpec(0, 20), value.NewInt(15), value.NewInt(10))
	assert.Equal(t, int64(20), clampedHigh.I)

	clampedLow := Merge(SumBoundedSpec(0, 20), value.NewInt(-15), value.NewInt(-10))
	assert.Equal(t, int64(0), clampedLow.I)
}

func TestSumBoundedNonNumericYieldsNull(t *testing.T) {
	got := Merge(SumBoundedSpec(0, 10), value.NewText("x"), value.NewInt(5))
	assert.True(t, got.IsNull())
}

func TestGSetUnionCommutativeAndIdempotent(t *testing.T) {
	a := value.NewSet("engineer")
	b := value.NewSet("leader")

	ab := Merge(GSetSpec, a, b)
	ba := Merge(GSetSpec, b, a)
	assert.ElementsMatch(t, ab.Set, ba.Set)
	assert.ElementsMatch(t, []string{"engineer", "leader"}, ab.Set)

	idempotent := Merge(GSetSpec, a, a)
	assert.Equal(t, []string{"engineer"}, idempotent.Set)
}

func TestGSetLiftsTextToSingleton(t *testing.T) {
	got := Merge(GSetSpec, value.NewText("a"), value.NewText("b"))
	assert.ElementsMatch(t, []string{"a", "b"}, got.Set)
}

func TestNoneOverwrites(t *testing.T) {
	got := Merge(NoneSpec, value.NewInt(1), value.NewInt(2))
	assert.Equal(t, int64(2), got.I)
}

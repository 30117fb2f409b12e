package need

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/boxflow/internal/dock"
	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
)

type fixture struct {
	tyme  float64
	mine  *mine.Mine
	dock  *dock.MemDock
	stuff mine.Key
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{}
	tymth := func() float64 { return f.tyme }
	f.mine = mine.New(tymth)
	f.dock = dock.NewMemDock(tymth)
	key, err := mine.ParseKey("stuff")
	require.NoError(t, err)
	f.stuff = key
	f.mine.Ensure(key)
	return f
}

func (f *fixture) need(expr string) *Need {
	return New(Config{
		Expr:  expr,
		Boxer: "b",
		Box:   "x",
		Mine:  f.mine,
		Dock:  f.dock,
		Tymth: func() float64 { return f.tyme },
	})
}

func TestEmptyExprIsTrue(t *testing.T) {
	f := newFixture(t)
	hold, err := f.need("").Eval()
	require.NoError(t, err)
	assert.True(t, hold)

	hold, err = True().Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

func TestBooleanExprs(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		expr string
		hold bool
	}{
		{"true", true},
		{"false", false},
		{"true and not false", true},
		{"1 < 2 or false", true},
		{"2 >= 3", false},
	}
	for _, tc := range cases {
		hold, err := f.need(tc.expr).Eval()
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.hold, hold, tc.expr)
	}
}

func TestMineReferences(t *testing.T) {
	f := newFixture(t)
	f.mine.Write(f.stuff, 5)

	hold, err := f.need(`M("stuff") == 5`).Eval()
	require.NoError(t, err)
	assert.True(t, hold)

	hold, err = f.need(`M("stuff") > 7`).Eval()
	require.NoError(t, err)
	assert.False(t, hold)
}

func TestDockReferences(t *testing.T) {
	f := newFixture(t)
	key, err := mine.ParseKey("durable.flag")
	require.NoError(t, err)
	require.NoError(t, f.dock.Put(key, true))

	hold, err := f.need(`D("durable.flag")`).Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

func TestUnknownKeyIsGuardError(t *testing.T) {
	f := newFixture(t)
	_, err := f.need(`M("absent") == 1`).Eval()
	var guardErr *hierr.GuardError
	require.ErrorAs(t, err, &guardErr)
}

func TestIllFormedExprIsGuardError(t *testing.T) {
	f := newFixture(t)
	_, err := f.need("1 +").Eval()
	var guardErr *hierr.GuardError
	require.ErrorAs(t, err, &guardErr)

	_, err = f.need("1 + 2").Eval()
	require.ErrorAs(t, err, &guardErr, "non-boolean result fails")
}

func TestUpdatedCondition(t *testing.T) {
	f := newFixture(t)
	markKey, err := mine.UpdateKey("b", "x", f.stuff)
	require.NoError(t, err)
	nd := f.need(`updated("stuff")`)

	// no mark bag yet: guard error
	_, err = nd.Eval()
	var guardErr *hierr.GuardError
	require.ErrorAs(t, err, &guardErr)

	// mark stored with the bag untouched: not updated
	f.mine.Write(markKey, nil)
	hold, err := nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	// bag written at 0.5: updated
	f.tyme = 0.5
	f.mine.Write(f.stuff, 1)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.True(t, hold)

	// mark restored to the write tyme: idempotent until the next write
	f.mine.Write(markKey, 0.5)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	f.tyme = 0.75
	f.mine.Write(f.stuff, 2)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

func TestChangedCondition(t *testing.T) {
	f := newFixture(t)
	markKey, err := mine.ChangeKey("b", "x", f.stuff)
	require.NoError(t, err)
	nd := f.need(`changed("stuff")`)

	f.mine.Write(f.stuff, 1)
	f.mine.Write(markKey, []any{1})

	hold, err := nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	// rewriting the same value is not a change
	f.tyme = 0.5
	f.mine.Write(f.stuff, 1)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	f.mine.Write(f.stuff, 2)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

func TestCountCondition(t *testing.T) {
	f := newFixture(t)
	countKey, err := mine.CountKey("b", "x")
	require.NoError(t, err)
	f.mine.Ensure(countKey)
	nd := f.need("count(2)")

	// unset counter never holds
	hold, err := nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	f.mine.Write(countKey, 1)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	f.mine.Write(countKey, 2)
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

func TestElapsedCondition(t *testing.T) {
	f := newFixture(t)
	tymeKey, err := mine.TymeKey("b", "x")
	require.NoError(t, err)
	f.mine.Ensure(tymeKey)
	nd := f.need("elapsed(1.0)")

	// unmarked entry tyme never holds
	hold, err := nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	f.mine.Write(tymeKey, 0.5)
	f.tyme = 1.25
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.False(t, hold)

	f.tyme = 1.5
	hold, err = nd.Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

func TestConditionAndedWithExpr(t *testing.T) {
	f := newFixture(t)
	countKey, err := mine.CountKey("b", "x")
	require.NoError(t, err)
	f.mine.Ensure(countKey)
	f.mine.Write(countKey, 3)
	f.mine.Write(f.stuff, 10)

	nd := f.need(`(count(2)) and (M("stuff") > 5)`)
	hold, err := nd.Eval()
	require.NoError(t, err)
	assert.True(t, hold)
}

package dock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/boxflow/internal/hierr"
	"github.com/smilemakc/boxflow/internal/mine"
)

func testKey(t *testing.T, s string) mine.Key {
	t.Helper()
	key, err := mine.ParseKey(s)
	require.NoError(t, err)
	return key
}

// exercise runs the shared Dock contract against d.
func exercise(t *testing.T, d Dock) {
	t.Helper()
	key := testKey(t, ".boxer.b.box.x.count")

	ok, err := d.Has(key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.Get(key)
	var missing *hierr.MissingKeyError
	require.ErrorAs(t, err, &missing)

	require.NoError(t, d.Put(key, 3.0))
	ok, err = d.Has(key)
	require.NoError(t, err)
	assert.True(t, ok)

	bag, err := d.Get(key)
	require.NoError(t, err)
	assert.Equal(t, 3.0, bag.Value)
	require.NotNil(t, bag.Tyme)
	assert.Equal(t, 0.5, *bag.Tyme)

	require.NoError(t, d.Put(key, 4.0))
	bag, err = d.Get(key)
	require.NoError(t, err)
	assert.Equal(t, 4.0, bag.Value)

	require.NoError(t, d.Delete(key))
	ok, err = d.Has(key)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting an absent key is not an error
	require.NoError(t, d.Delete(key))
}

func TestMemDock(t *testing.T) {
	d := NewMemDock(func() float64 { return 0.5 })
	defer d.Close()
	exercise(t, d)
}

func TestBuntDockInMemory(t *testing.T) {
	d, err := NewBuntDock(":memory:", func() float64 { return 0.5 })
	require.NoError(t, err)
	defer d.Close()
	exercise(t, d)
}

func TestBuntDockPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dock.db")
	tymth := func() float64 { return 0.5 }
	key := testKey(t, "kept.value")

	d, err := NewBuntDock(path, tymth)
	require.NoError(t, err)
	require.NoError(t, d.Put(key, "still here"))
	require.NoError(t, d.Close())

	// bags survive a reopen
	d, err = NewBuntDock(path, tymth)
	require.NoError(t, err)
	defer d.Close()
	bag, err := d.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "still here", bag.Value)
}

package boxing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxName(t *testing.T) {
	box, err := NewBox("alpha_1")
	require.NoError(t, err)
	assert.Equal(t, "alpha_1", box.Name)

	for _, bad := range []string{"", "1a", "a-b", "a b"} {
		_, err := NewBox(bad)
		assert.Error(t, err, bad)
	}
}

func TestPileIntegrity(t *testing.T) {
	boxes := chain(t, "A", "B", "C")
	for _, box := range boxes {
		pile := box.Pile()
		spot := box.Spot()
		assert.Same(t, box, pile[spot])
		for i := 1; i <= spot; i++ {
			assert.Same(t, pile[i-1], pile[i].Over())
		}
		for i := spot + 1; i < len(pile); i++ {
			assert.Same(t, pile[i], pile[i-1].Unders[0])
		}
	}
	// every box of one chain shares the same pile membership
	assert.Equal(t, names(boxes[0].Pile()), names(boxes[2].Pile()))
}

func TestTrail(t *testing.T) {
	boxes := chain(t, "A", "B", "C")
	assert.Equal(t, "<A>B>C", boxes[0].Trail())
	assert.Equal(t, "A<B>C", boxes[1].Trail())
	assert.Equal(t, "A<B<C>", boxes[2].Trail())
	assert.Equal(t, "Box(A<B>C)", boxes[1].String())

	solo, err := NewBox("solo")
	require.NoError(t, err)
	assert.Equal(t, "<solo>", solo.Trail())
}

func TestPileCacheInvalidation(t *testing.T) {
	boxes := chain(t, "A", "B")
	b := boxes[1]
	assert.Len(t, b.Pile(), 2)

	// a new primary under must show up after the link mutation
	c, err := NewBox("C")
	require.NoError(t, err)
	c.SetOver(b)
	b.AddUnder(c)
	assert.Equal(t, []string{"A", "B", "C"}, names(b.Pile()))
	assert.Equal(t, "A<B>C", b.Trail())
}

func TestPrimaryUnder(t *testing.T) {
	boxes := chain(t, "A", "B")
	a := boxes[0]
	second, err := NewBox("B2")
	require.NoError(t, err)
	second.SetOver(a)
	a.AddUnder(second)

	// the pile follows the primary (zeroth) under only
	assert.Equal(t, []string{"A", "B"}, names(a.Pile()))
	assert.Equal(t, []string{"A", "B2"}, names(second.Pile()))
}

package boxing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds a root-to-leaf chain of linked boxes by name.
func chain(t *testing.T, names ...string) []*Box {
	t.Helper()
	boxes := make([]*Box, len(names))
	for i, name := range names {
		box, err := NewBox(name)
		require.NoError(t, err)
		boxes[i] = box
		if i > 0 {
			box.SetOver(boxes[i-1])
			boxes[i-1].AddUnder(box)
		}
	}
	return boxes
}

func names(boxes []*Box) []string {
	out := make([]string, len(boxes))
	for i, box := range boxes {
		out[i] = box.Name
	}
	return out
}

func TestExenForcedReentrySameBranch(t *testing.T) {
	abc := chain(t, "A", "B", "C")
	top := abc[0]

	exits, enters, rexits, renters := Exen(top, top)
	assert.Equal(t, []string{"C", "B", "A"}, names(exits))
	assert.Equal(t, []string{"A", "B", "C"}, names(enters))
	assert.Empty(t, rexits)
	assert.Empty(t, renters)
}

func TestExenForcedReentryMidPile(t *testing.T) {
	abc := chain(t, "A", "B", "C")
	mid, leaf := abc[1], abc[2]

	exits, enters, rexits, renters := Exen(leaf, mid)
	assert.Equal(t, []string{"C", "B"}, names(exits))
	assert.Equal(t, []string{"B", "C"}, names(enters))
	assert.Equal(t, []string{"A"}, names(rexits))
	assert.Equal(t, []string{"A"}, names(renters))
}

func TestExenDifferentBranches(t *testing.T) {
	ra := chain(t, "R", "A", "X")
	a := ra[1]
	x := ra[2]
	y, err := NewBox("Y")
	require.NoError(t, err)
	y.SetOver(a)
	a.AddUnder(y)

	exits, enters, rexits, renters := Exen(x, y)
	assert.Equal(t, []string{"X"}, names(exits))
	assert.Equal(t, []string{"Y"}, names(enters))
	assert.Equal(t, []string{"A", "R"}, names(rexits))
	assert.Equal(t, []string{"R", "A"}, names(renters))
}

func TestExenDisjointTrees(t *testing.T) {
	pq := chain(t, "P", "Q")
	rs := chain(t, "R", "S")

	exits, enters, rexits, renters := Exen(pq[1], rs[1])
	assert.Equal(t, []string{"Q", "P"}, names(exits))
	assert.Equal(t, []string{"R", "S"}, names(enters))
	assert.Empty(t, rexits)
	assert.Empty(t, renters)
}

func TestExenPartitionProperties(t *testing.T) {
	// R < A < {X < W, Y}
	boxes := chain(t, "R", "A", "X", "W")
	a, x := boxes[1], boxes[2]
	y, err := NewBox("Y")
	require.NoError(t, err)
	y.SetOver(a)
	a.AddUnder(y)

	near := boxes[3] // W, pile [R A X W]
	for _, far := range []*Box{y, x, a, near} {
		exits, enters, rexits, renters := Exen(near, far)

		assert.ElementsMatch(t, names(rexits), names(renters), "rexits and renters agree")
		assert.ElementsMatch(t,
			append(names(exits), names(rexits)...),
			names(near.Pile()),
			"exits plus rexits cover the near pile")
		assert.ElementsMatch(t,
			append(names(enters), names(renters)...),
			names(far.Pile()),
			"enters plus renters cover the far pile")

		forced := false
		for _, box := range near.Pile() {
			if box == far {
				forced = true
			}
		}
		if !forced {
			for _, e := range exits {
				assert.NotContains(t, enters, e, "exits and enters disjoint")
			}
		}
	}
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/tablemaze/model"
)

var threeAnchors = []model.Position{{X: 4, Y: 0}, {X: 7, Y: 4}, {X: 4, Y: 7}}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry(threeAnchors, 2)
	require.Equal(t, 3, r.Len())

	p, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, model.InitialPlacement, p.State)
	assert.Equal(t, 2, p.ReachDistance)
	assert.Equal(t, threeAnchors[1], p.Position)
	assert.Equal(t, threeAnchors[1], p.Anchor)

	_, ok = r.Get(3)
	assert.False(t, ok)
	_, ok = r.Get(-1)
	assert.False(t, ok)
}

func TestRegistryNextActiveWraps(t *testing.T) {
	r := NewRegistry(threeAnchors, 2)

	next, ok := r.NextActive(0)
	require.True(t, ok)
	assert.Equal(t, 1, next)

	next, _ = r.NextActive(2)
	assert.Equal(t, 0, next)

	next, _ = r.NextActive(-1)
	assert.Equal(t, 0, next)
}

func TestRegistryNextActiveSkipsDisabled(t *testing.T) {
	r := NewRegistry(threeAnchors, 2)
	p, _ := r.Get(1)
	p.State = model.Disabled

	next, _ := r.NextActive(0)
	assert.Equal(t, 2, next)

	p, _ = r.Get(2)
	p.State = model.Disabled
	next, ok := r.NextActive(0)
	require.True(t, ok)
	assert.Equal(t, 0, next, "a lone player keeps the turn")

	r.DisableAll()
	_, ok = r.NextActive(0)
	assert.False(t, ok)
	assert.Equal(t, 3, r.CountIn(model.Disabled))
}

func TestRegistryOccupied(t *testing.T) {
	r := NewRegistry(threeAnchors, 2)
	p, _ := r.Get(2)
	p.State = model.Disabled

	assert.Equal(t, []model.Position{threeAnchors[1]}, r.Occupied(0))

	idx, ok := r.OccupiedBy(threeAnchors[1], 0)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = r.OccupiedBy(threeAnchors[2], 0)
	assert.False(t, ok, "disabled players do not block cells")
	_, ok = r.OccupiedBy(threeAnchors[0], 0)
	assert.False(t, ok)
}

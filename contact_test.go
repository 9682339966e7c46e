// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelvinfold/rigid/math/lin"
)

func TestManifoldMergeMarksRestingOnBitEqual(t *testing.T) {
	m := &Manifold{}
	p := ContactPoint{PointA: lin.V3{X: 1}, PointB: lin.V3{X: 2}, Penetration: 0.1}
	m.merge([]ContactPoint{p})
	require.Len(t, m.Points, 1)
	assert.False(t, m.Points[0].Resting)

	m.merge([]ContactPoint{p})
	require.Len(t, m.Points, 1)
	assert.True(t, m.Points[0].Resting)
}

func TestManifoldMergeAppendsUpToFour(t *testing.T) {
	m := &Manifold{}
	var fresh []ContactPoint
	for i := 0; i < 4; i++ {
		fresh = append(fresh, ContactPoint{PointA: lin.V3{X: float64(i)}, PointB: lin.V3{X: float64(i) + 10}, Penetration: float64(i) + 1})
	}
	m.merge(fresh)
	assert.Len(t, m.Points, 4)
}

func TestManifoldMergeReplacesShallowestWhenFull(t *testing.T) {
	m := &Manifold{}
	var fresh []ContactPoint
	for i := 0; i < 4; i++ {
		fresh = append(fresh, ContactPoint{PointA: lin.V3{X: float64(i)}, PointB: lin.V3{X: float64(i) + 10}, Penetration: float64(i) + 1})
	}
	m.merge(fresh)

	newPoint := ContactPoint{PointA: lin.V3{X: 99}, PointB: lin.V3{X: 199}, Penetration: 50}
	m.merge([]ContactPoint{newPoint})

	require.Len(t, m.Points, 4)
	found := false
	for _, p := range m.Points {
		if p.PointA == newPoint.PointA {
			found = true
		}
	}
	assert.True(t, found, "new point should have replaced the shallowest existing point")
	for _, p := range m.Points {
		assert.NotEqual(t, 1.0, p.Penetration) // shallowest (penetration 1) was evicted
	}
}

func TestManifoldMergeNoFreshMarksNotColliding(t *testing.T) {
	m := &Manifold{Colliding: true}
	m.merge(nil)
	assert.False(t, m.Colliding)
}

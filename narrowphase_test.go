// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelvinfold/rigid/math/lin"
)

func newSphereBody(x, y, z, r float64, dynamic bool) *RigidBody {
	return newRigidBody(BodySpec{
		Shape:    NewSphereShape(r),
		Position: lin.V3{X: x, Y: y, Z: z},
		Dynamic:  dynamic,
		Mass:     1,
	})
}

func newBoxBody(x, y, z, hx, hy, hz float64, dynamic bool) *RigidBody {
	return newRigidBody(BodySpec{
		Shape:    NewBoxShape(hx, hy, hz),
		Position: lin.V3{X: x, Y: y, Z: z},
		Dynamic:  dynamic,
		Mass:     1,
	})
}

// TestSphereSphereContactSymmetry covers §8 property 7: swapping the
// two bodies negates the contact normal.
func TestSphereSphereContactSymmetry(t *testing.T) {
	a := newSphereBody(-1, 0, 0, 1, true)
	b := newSphereBody(1, 0, 0, 1, true)

	pts, ok := narrowPhase(a, b, false)
	require.True(t, ok)
	require.Len(t, pts, 1)

	pts2, ok2 := narrowPhase(b, a, false)
	require.True(t, ok2)
	require.Len(t, pts2, 1)

	assert.InDelta(t, pts[0].Normal.X, -pts2[0].Normal.X, 1e-9)
	assert.InDelta(t, pts[0].Penetration, pts2[0].Penetration, 1e-9)
}

func TestSphereSphereNoContactWhenSeparated(t *testing.T) {
	a := newSphereBody(-5, 0, 0, 1, true)
	b := newSphereBody(5, 0, 0, 1, true)
	_, ok := narrowPhase(a, b, false)
	assert.False(t, ok)
}

func TestSphereConvexContactNormalMatchesFace(t *testing.T) {
	// box centered at origin with half extent 1 in every axis; sphere
	// overlapping the top face by 0.1.
	box := newBoxBody(0, 0, 0, 1, 1, 1, false)
	sphere := newSphereBody(0, 0, 1.9, 1, true)

	pts, ok := narrowPhase(sphere, box, false)
	require.True(t, ok)
	require.Len(t, pts, 1)
	assert.InDelta(t, -1, pts[0].Normal.Z, 1e-3) // from sphere toward box: -Z
}

func TestConvexConvexBoxOnBoxContact(t *testing.T) {
	bottom := newBoxBody(0, 0, 0, 1, 1, 1, false)
	top := newBoxBody(0, 0, 1.9, 1, 1, 1, true)

	pts, ok := narrowPhase(top, bottom, false)
	require.True(t, ok)
	require.NotEmpty(t, pts)
	for _, p := range pts {
		assert.Greater(t, p.Penetration, 0.0)
	}
}

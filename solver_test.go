// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelvinfold/rigid/math/lin"
)

func TestPrepareContactZeroMassGivesZeroNormalMass(t *testing.T) {
	a := newSphereBody(-1, 0, 0, 1, false) // static: InverseMass 0
	b := newSphereBody(1, 0, 0, 1, false)

	cp := ContactPoint{PointA: lin.V3{X: -0.5}, PointB: lin.V3{X: 0.5}, Normal: lin.V3{X: 1}, Penetration: 1.5}
	prepareContact(a, b, &cp)
	assert.Equal(t, 0.0, cp.NormalMass)
}

func TestSolveContactClampsImpulseNonNegative(t *testing.T) {
	a := newSphereBody(-1, 0, 0, 1, true)
	b := newSphereBody(1, 0, 0, 1, true)
	a.LinearVelocity = lin.V3{X: -5}
	b.LinearVelocity = lin.V3{X: 5} // separating already

	cp := ContactPoint{PointA: lin.V3{X: -0.1}, PointB: lin.V3{X: 0.1}, Normal: lin.V3{X: 1}, Penetration: 0.01}
	prepareContact(a, b, &cp)

	info := &solverInfo{timestep: 1.0 / 60, velocityIterations: 4, biasFactor: 0.1, slop: defaultSlop}
	for i := 0; i < info.velocityIterations; i++ {
		solveContact(a, b, &cp, info)
	}
	assert.GreaterOrEqual(t, cp.NormalImpulse, 0.0)
}

func TestSphereHeadOnConservesMomentumAndSeparates(t *testing.T) {
	a := newSphereBody(-0.95, 0, 0, 1, true)
	b := newSphereBody(0.95, 0, 0, 1, true)
	a.LinearVelocity = lin.V3{X: 5}
	b.LinearVelocity = lin.V3{X: -5}
	a.Restitution, b.Restitution = 1, 1

	bodies := map[BodyHandle]*RigidBody{a.handle: a, b.handle: b}
	pts, ok := narrowPhase(a, b, false)
	if !ok {
		t.Skip("spheres not overlapping at these starting positions")
	}
	for i := range pts {
		pts[i].Restitution = 1
	}
	m := &Manifold{A: a.handle, B: b.handle}
	m.merge(pts)
	manifolds := map[pair]*Manifold{{a.handle, b.handle}: m}

	info := &solverInfo{timestep: 1.0 / 60, velocityIterations: 20, biasFactor: 0.1, slop: defaultSlop}
	solveManifolds(bodies, manifolds, info)

	assert.InDelta(t, 0, a.LinearVelocity.X+b.LinearVelocity.X, 1e-3)
	var relVel lin.V3
	relVel.Sub(&b.LinearVelocity, &a.LinearVelocity)
	assert.Greater(t, relVel.Dot(&m.Points[0].Normal), 0.0)
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import "github.com/kelvinfold/rigid/math/lin"

// integrate implements §4.7 semi-implicit Euler: gravity is folded into
// net force, velocities are advanced first, then pose is advanced using
// the already-updated velocities (symplectic, not fully-implicit).
func integrate(b *RigidBody, gravity *lin.V3, gravityEnabled bool, dt float64) {
	if !b.Dynamic {
		b.Collider.Refit()
		return
	}

	b.GravityForce.SetS(0, 0, 0)
	if gravityEnabled && b.TakesGravity && b.InverseMass > 0 {
		b.GravityForce.Scale(gravity, 1/b.InverseMass)
		b.NetForce.Add(&b.NetForce, &b.GravityForce)
	}

	var dv lin.V3
	dv.Scale(&b.NetForce, dt*b.InverseMass)
	b.LinearVelocity.Add(&b.LinearVelocity, &dv)

	// source does not pre-multiply by inverse inertia; preserved here.
	var dw lin.V3
	dw.Scale(&b.NetTorque, dt)
	b.AngularVelocity.Add(&b.AngularVelocity, &dw)

	prev := lin.T{Loc: lin.NewV3().Set(&b.Collider.Position), Rot: lin.NewQ().Set(&b.Collider.Orientation)}
	next := lin.T{Loc: &b.Collider.Position, Rot: &b.Collider.Orientation}
	next.Integrate(&prev, &b.LinearVelocity, &b.AngularVelocity, dt)

	b.refreshInertiaWorld()
	b.clearForces()
	b.Collider.Refit()
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import "github.com/kelvinfold/rigid/math/lin"

// solverInfo holds the per-step constants the solver needs; grounded
// on the teacher's Bullet-derived solverInfo, trimmed to the
// normal-only subset this spec requires.
type solverInfo struct {
	timestep           float64
	velocityIterations int
	biasFactor         float64
	slop               float64
}

const defaultSlop = 0.005
const restingThreshold = -0.5

// prepareContact computes §4.6's preparation step once per contact per
// step: the effective normal mass and the restitution-driven velocity
// bias, using the arms from each body's center to the contact point.
func prepareContact(a, b *RigidBody, cp *ContactPoint) {
	var ra, rb lin.V3
	ra.Sub(&cp.PointA, &a.Collider.Position)
	rb.Sub(&cp.PointB, &b.Collider.Position)

	var raXn, rbXn, ta, tb lin.V3
	raXn.Cross(&ra, &cp.Normal)
	rbXn.Cross(&rb, &cp.Normal)
	ta.MultMv(&a.InverseInertiaTensor, &raXn).Cross(&ta, &ra)
	tb.MultMv(&b.InverseInertiaTensor, &rbXn).Cross(&tb, &rb)

	kn := a.InverseMass + b.InverseMass + cp.Normal.Dot(&ta) + cp.Normal.Dot(&tb)
	if kn > 0 {
		cp.NormalMass = 1 / kn
	} else {
		cp.NormalMass = 0
	}

	vRel := relativeNormalVelocity(a, b, &ra, &rb, &cp.Normal)
	if vRel < restingThreshold {
		cp.VelocityBias = -cp.Restitution * vRel
	} else {
		cp.VelocityBias = 0
	}
}

// relativeNormalVelocity is n . (v_b + w_b x r_b - v_a - w_a x r_a).
func relativeNormalVelocity(a, b *RigidBody, ra, rb, n *lin.V3) float64 {
	var va, vb, wa, wb, rel lin.V3
	wa.Cross(&a.AngularVelocity, ra)
	va.Add(&a.LinearVelocity, &wa)
	wb.Cross(&b.AngularVelocity, rb)
	vb.Add(&b.LinearVelocity, &wb)
	rel.Sub(&vb, &va)
	return n.Dot(&rel)
}

// warmStart re-applies any resting contact's stored normal impulse
// before the velocity iterations begin.
func warmStart(a, b *RigidBody, cp *ContactPoint) {
	if !cp.Resting || cp.NormalImpulse == 0 {
		return
	}
	var ra, rb, impulse lin.V3
	ra.Sub(&cp.PointA, &a.Collider.Position)
	rb.Sub(&cp.PointB, &b.Collider.Position)
	impulse.Scale(&cp.Normal, cp.NormalImpulse)
	applyImpulse(a, b, &ra, &rb, &impulse)
}

// solveContact runs one velocity-iteration pass over a single contact,
// per §4.6's iteration step.
func solveContact(a, b *RigidBody, cp *ContactPoint, info *solverInfo) {
	var ra, rb lin.V3
	ra.Sub(&cp.PointA, &a.Collider.Position)
	rb.Sub(&cp.PointB, &b.Collider.Position)

	vRel := relativeNormalVelocity(a, b, &ra, &rb, &cp.Normal)
	bias := (info.biasFactor / info.timestep) * maxFloat(0, cp.Penetration-info.slop)

	lambda := -(vRel - (bias + cp.VelocityBias)) * cp.NormalMass
	newImpulse := maxFloat(0, cp.NormalImpulse+lambda)
	lambda = newImpulse - cp.NormalImpulse
	cp.NormalImpulse = newImpulse

	var impulse lin.V3
	impulse.Scale(&cp.Normal, lambda)
	applyImpulse(a, b, &ra, &rb, &impulse)
}

// applyImpulse applies P to a at -1 and to b at +1, per the solver's
// symmetric update: v -= m^-1 P, w -= I^-1 (r x P) for a; mirrored
// (positive sign) for b.
func applyImpulse(a, b *RigidBody, ra, rb *lin.V3, impulse *lin.V3) {
	if a.Dynamic {
		var dv, dw, rxp lin.V3
		dv.Scale(impulse, a.InverseMass)
		a.LinearVelocity.Sub(&a.LinearVelocity, &dv)
		rxp.Cross(ra, impulse)
		dw.MultMv(&a.InverseInertiaTensor, &rxp)
		a.AngularVelocity.Sub(&a.AngularVelocity, &dw)
	}
	if b.Dynamic {
		var dv, dw, rxp lin.V3
		dv.Scale(impulse, b.InverseMass)
		b.LinearVelocity.Add(&b.LinearVelocity, &dv)
		rxp.Cross(rb, impulse)
		dw.MultMv(&b.InverseInertiaTensor, &rxp)
		b.AngularVelocity.Add(&b.AngularVelocity, &dw)
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// solveManifolds runs the full §4.6 sequence over every colliding
// manifold: prepare, warm start, N velocity iterations.
func solveManifolds(bodies map[BodyHandle]*RigidBody, manifolds map[pair]*Manifold, info *solverInfo) {
	active := make([]*Manifold, 0, len(manifolds))
	for _, m := range manifolds {
		if !m.Colliding {
			continue
		}
		a, okA := bodies[m.A]
		b, okB := bodies[m.B]
		if !okA || !okB {
			continue
		}
		for i := range m.Points {
			prepareContact(a, b, &m.Points[i])
			warmStart(a, b, &m.Points[i])
		}
		active = append(active, m)
	}

	for iter := 0; iter < info.velocityIterations; iter++ {
		for _, m := range active {
			a, b := bodies[m.A], bodies[m.B]
			for i := range m.Points {
				solveContact(a, b, &m.Points[i], info)
			}
		}
	}
}

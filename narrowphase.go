// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"math"

	"github.com/kelvinfold/rigid/math/lin"
)

// narrowPhase dispatches by shape-type pair and returns the contact
// points for bodies a and b, with Normal always pointing from a
// toward b. colliding is false (points is empty) when the shapes do
// not overlap.
func narrowPhase(a, b *RigidBody, useGJK bool) (points []ContactPoint, colliding bool) {
	ca, cb := a.Collider, b.Collider
	switch {
	case ca.Shape.Kind == Sphere && cb.Shape.Kind == Sphere:
		return sphereSphereContact(ca, cb)

	case ca.Shape.Kind == Sphere && cb.Shape.Kind == Convex:
		n, pConvex, pSphere, depth, ok := sphereConvexContact(ca, cb)
		if !ok {
			return nil, false
		}
		// n points from convex toward sphere, i.e. from b toward a;
		// flip to the a->b convention.
		var out lin.V3
		out.Neg(&n)
		return []ContactPoint{{PointA: pSphere, PointB: pConvex, Normal: out, Penetration: depth}}, true

	case ca.Shape.Kind == Convex && cb.Shape.Kind == Sphere:
		n, pConvex, pSphere, depth, ok := sphereConvexContact(cb, ca)
		if !ok {
			return nil, false
		}
		return []ContactPoint{{PointA: pConvex, PointB: pSphere, Normal: n, Penetration: depth}}, true

	default: // Convex/Convex
		pts, ok := convexConvexContact(ca, cb)
		if ok {
			return pts, true
		}
		if useGJK {
			return convexConvexGJKEPA(ca, cb)
		}
		return nil, false
	}
}

// sphereSphereContact implements §4.4 Sphere/Sphere. A single contact
// point is produced at the midpoint of the two surface points along
// the normal from a toward b.
func sphereSphereContact(a, b *Collider) ([]ContactPoint, bool) {
	var d lin.V3
	d.Sub(&b.Position, &a.Position)
	dist := d.Len()
	ra, rb := a.Radius(), b.Radius()
	if dist > ra+rb {
		return nil, false
	}
	var n lin.V3
	if dist > lin.Epsilon {
		n.Scale(&d, 1/dist)
	} else {
		n = lin.V3{Y: 1}
	}
	penetration := ra + rb - dist

	var onA, onB, mid lin.V3
	onA.Scale(&n, ra).Add(&onA, &a.Position)
	onB.Scale(&n, -rb).Add(&onB, &b.Position)
	mid.Add(&onA, &onB).Scale(&mid, 0.5)

	return []ContactPoint{{PointA: mid, PointB: mid, Normal: n, Penetration: penetration}}, true
}

// sphereConvexContact implements §4.4 Sphere/Convex. Returned normal
// points from convex toward sphere (outward from the reference face).
func sphereConvexContact(sphere, convex *Collider) (n lin.V3, pointConvex, pointSphere lin.V3, penetration float64, colliding bool) {
	minD := math.MaxFloat64
	var bestNormal lin.V3
	found := false
	for i, f := range convex.Shape.Faces {
		normal := convex.WorldNormal(i)
		v0 := convex.WorldVertex(f.Indices[0])
		var diff lin.V3
		diff.Sub(v0, &sphere.Position)
		d := diff.Dot(normal) + sphere.Radius()
		if d <= 0 {
			return n, pointConvex, pointSphere, 0, false
		}
		if d < minD {
			minD = d
			bestNormal = *normal
			found = true
		}
	}
	if !found {
		return n, pointConvex, pointSphere, 0, false
	}
	pointSphere.Scale(&bestNormal, -sphere.Radius()).Add(&pointSphere, &sphere.Position)
	pointConvex.Scale(&bestNormal, minD).Add(&pointConvex, &pointSphere)
	return bestNormal, pointConvex, pointSphere, minD, true
}

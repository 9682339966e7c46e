// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"math"

	"github.com/kelvinfold/rigid/math/lin"
)

// convexConvexContact implements the primary §4.4 Convex/Convex path:
// face SAT to find the separating axis with least penetration, then
// Sutherland-Hodgman clipping of the incident face against the
// reference face's side planes to build the manifold. Output points
// have Normal from a toward b.
func convexConvexContact(a, b *Collider) ([]ContactPoint, bool) {
	bestA, axisA, okA := faceSATAxis(a, b)
	if !okA {
		return nil, false
	}
	bestB, axisB, okB := faceSATAxis(b, a)
	if !okB {
		return nil, false
	}

	refIsA := bestA*1.002+0.0005 < bestB
	var refCollider, incCollider *Collider
	var referenceNormal lin.V3
	var penetration float64
	if refIsA {
		refCollider, incCollider = a, b
		referenceNormal, penetration = axisA, bestA
	} else {
		refCollider, incCollider = b, a
		referenceNormal, penetration = axisB, bestB
	}

	refFace := bestFaceAlongNormal(refCollider, &referenceNormal)
	incFace := worstFaceAlongNormal(incCollider, &referenceNormal)

	clipped := clipIncidentAgainstReference(refCollider, refFace, incCollider, incFace, &referenceNormal)
	if len(clipped) == 0 {
		return nil, false
	}
	clipped = reduceToFour(clipped, &referenceNormal)

	refFaceVertex := refCollider.WorldVertex(refCollider.Shape.Faces[refFace].Indices[0])

	points := make([]ContactPoint, 0, len(clipped))
	for _, p := range clipped {
		var diff lin.V3
		diff.Sub(refFaceVertex, &p)
		depth := diff.Dot(&referenceNormal)
		if depth <= 0 {
			continue
		}
		var refProjected lin.V3
		refProjected.Scale(&referenceNormal, depth).Add(&refProjected, &p)

		cp := ContactPoint{Penetration: depth}
		if refIsA {
			cp.PointA, cp.PointB = refProjected, p
			cp.Normal = referenceNormal
		} else {
			cp.PointA, cp.PointB = p, refProjected
			cp.Normal.Neg(&referenceNormal)
		}
		points = append(points, cp)
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}

// faceSATAxis tests every face normal of ref as a separating axis
// against other, returning the smallest positive penetration depth
// found and its normal. ok is false if some axis separates the
// shapes entirely.
func faceSATAxis(ref, other *Collider) (depth float64, axis lin.V3, ok bool) {
	depth = math.MaxFloat64
	for i, f := range ref.Shape.Faces {
		n := ref.WorldNormal(i)
		v0 := ref.WorldVertex(f.Indices[0])

		var negN, support lin.V3
		negN.Neg(n)
		supportPoint(other, &negN, &support)

		var diff lin.V3
		diff.Sub(v0, &support)
		d := diff.Dot(n)
		if d < 0 {
			return 0, axis, false
		}
		if d < depth {
			depth = d
			axis = *n
		}
	}
	if len(ref.Shape.Faces) == 0 {
		return 0, axis, false
	}
	return depth, axis, true
}

// bestFaceAlongNormal returns the face of c whose normal matches n
// most closely (used to recover the reference face index once its
// axis has already been chosen).
func bestFaceAlongNormal(c *Collider, n *lin.V3) int {
	best, bestDot := 0, -math.MaxFloat64
	for i := range c.Shape.Faces {
		d := c.WorldNormal(i).Dot(n)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return best
}

// worstFaceAlongNormal returns the face of c most anti-parallel to n:
// the incident face per §4.4 step 1.
func worstFaceAlongNormal(c *Collider, n *lin.V3) int {
	best, bestDot := 0, math.MaxFloat64
	for i := range c.Shape.Faces {
		d := c.WorldNormal(i).Dot(n)
		if d < bestDot {
			bestDot = d
			best = i
		}
	}
	return best
}

// clipIncidentAgainstReference runs steps 2-4 of §4.4: start from the
// incident face's world vertices, clip against each side plane of the
// reference face (Sutherland-Hodgman, keep positive side), then keep
// only points with positive depth against the reference plane.
func clipIncidentAgainstReference(ref *Collider, refFace int, inc *Collider, incFace int, refNormal *lin.V3) []lin.V3 {
	f := inc.Shape.Faces[incFace]
	poly := make([]lin.V3, len(f.Indices))
	for i, idx := range f.Indices {
		poly[i] = *inc.WorldVertex(idx)
	}

	rf := ref.Shape.Faces[refFace]
	n := len(rf.Indices)
	for i := 0; i < n; i++ {
		v0 := ref.WorldVertex(rf.Indices[i])
		v1 := ref.WorldVertex(rf.Indices[(i+1)%n])
		var edgeDir, sideNormal lin.V3
		edgeDir.Sub(v1, v0)
		sideNormal.Cross(refNormal, &edgeDir)
		if sideNormal.LenSqr() < lin.Epsilon {
			continue
		}
		poly = sutherlandHodgman(poly, v0, &sideNormal)
		if len(poly) == 0 {
			return poly
		}
	}

	refFaceVertex := ref.WorldVertex(rf.Indices[0])
	kept := poly[:0]
	for _, p := range poly {
		var diff lin.V3
		diff.Sub(refFaceVertex, &p)
		if diff.Dot(refNormal) > 0 {
			kept = append(kept, p)
		}
	}
	return kept
}

// sutherlandHodgman clips the ordered polygon poly against the
// half-space (x-planePoint)·planeNormal >= 0, keeping the positive
// side as directed by §4.4 step 3.
func sutherlandHodgman(poly []lin.V3, planePoint, planeNormal *lin.V3) []lin.V3 {
	n := len(poly)
	if n == 0 {
		return poly
	}
	inside := func(p *lin.V3) bool {
		var diff lin.V3
		diff.Sub(p, planePoint)
		return diff.Dot(planeNormal) >= 0
	}
	intersect := func(prev, cur *lin.V3) lin.V3 {
		var diffPrev, edge lin.V3
		diffPrev.Sub(planePoint, prev)
		edge.Sub(cur, prev)
		denom := edge.Dot(planeNormal)
		t := 0.0
		if math.Abs(denom) > lin.Epsilon {
			t = diffPrev.Dot(planeNormal) / denom
		}
		var out lin.V3
		out.Scale(&edge, t).Add(&out, prev)
		return out
	}

	var out []lin.V3
	for i := 0; i < n; i++ {
		cur := poly[i]
		prev := poly[(i-1+n)%n]
		curIn, prevIn := inside(&cur), inside(&prev)
		if curIn {
			if !prevIn {
				out = append(out, intersect(&prev, &cur))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(&prev, &cur))
		}
	}
	return out
}

// reduceToFour implements §4.4 step 5: when more than 4 points survive
// clipping, keep the four that maximize spread along two in-plane
// axes u, v built from the normal and the farthest surviving point.
func reduceToFour(points []lin.V3, normal *lin.V3) []lin.V3 {
	if len(points) <= 4 {
		return points
	}
	var centroid lin.V3
	for i := range points {
		centroid.Add(&centroid, &points[i])
	}
	centroid.Scale(&centroid, 1/float64(len(points)))

	far := 0
	farDist := -1.0
	for i := range points {
		d := points[i].DistSqr(&centroid)
		if d > farDist {
			farDist = d
			far = i
		}
	}
	var u, v lin.V3
	u.Sub(&points[far], &centroid).Unit()
	v.Cross(&u, normal).Unit()

	idx := map[int]bool{}
	extremum := func(axis *lin.V3, maximize bool) int {
		best := 0
		bestVal := points[0].Dot(axis)
		for i := 1; i < len(points); i++ {
			val := points[i].Dot(axis)
			if (maximize && val > bestVal) || (!maximize && val < bestVal) {
				bestVal = val
				best = i
			}
		}
		return best
	}
	idx[extremum(&u, true)] = true
	idx[extremum(&u, false)] = true
	idx[extremum(&v, true)] = true
	idx[extremum(&v, false)] = true

	out := make([]lin.V3, 0, 4)
	for i := range points {
		if idx[i] {
			out = append(out, points[i])
		}
	}
	return out
}

// SPDX-FileCopyrightText: © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package rigid

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/kelvinfold/rigid/math/lin"
)

type v3Int struct{ x, y, z uint32 }
type v2Int struct{ x, y uint32 }

// epaMaxIterations and epaTolerance are the spec-mandated bounds on
// the expanding-polytope fallback: 32 iterations, 0.001 tolerance.
const epaMaxIterations = 32
const epaTolerance = 0.001

func polytopeFromSimplex(s *simplex) ([]lin.V3, []v3Int) {
	polytope := []lin.V3{s.a, s.b, s.c, s.d}
	faces := []v3Int{
		{0, 1, 2}, // ABC
		{0, 2, 3}, // ACD
		{0, 3, 1}, // ADB
		{1, 2, 3}, // BCD
	}
	return polytope, faces
}

// faceNormalAndDistance returns the outward unit normal of face and
// the (signed, then corrected to non-negative) distance from the
// origin to the face's plane.
func faceNormalAndDistance(face v3Int, polytope []lin.V3) (normal lin.V3, distance float64) {
	a := &polytope[face.x]
	b := &polytope[face.y]
	c := &polytope[face.z]

	var ab, ac, n lin.V3
	ab.Sub(b, a)
	ac.Sub(c, a)
	n.Cross(&ab, &ac).Unit()
	if n.X == 0 && n.Y == 0 && n.Z == 0 {
		slog.Error("faceNormalAndDistance: degenerate face normal")
		return normal, distance
	}

	distance = n.Dot(a)
	if distance < 0 {
		n.Neg(&n)
		distance = -distance
	} else if distance == 0 {
		resolved := false
		for i := range polytope {
			aux := n.Dot(&polytope[i])
			if aux < -lin.Epsilon || aux > lin.Epsilon {
				if aux >= 0 {
					n.Neg(&n)
				}
				resolved = true
				break
			}
		}
		if !resolved {
			panic(fmt.Errorf("epa: all points coplanar, degenerate polytope"))
		}
	}
	return n, distance
}

func addEdge(edges []v2Int, edge v2Int, polytope []lin.V3) []v2Int {
	for i, cur := range edges {
		if (edge.x == cur.x && edge.y == cur.y) || (edge.x == cur.y && edge.y == cur.x) {
			return slices.Delete(edges, i, i+1)
		}
		if polytope[cur.x] == polytope[edge.x] && polytope[cur.y] == polytope[edge.y] {
			return slices.Delete(edges, i, i+1)
		}
		if polytope[cur.x] == polytope[edge.y] && polytope[cur.y] == polytope[edge.x] {
			return slices.Delete(edges, i, i+1)
		}
	}
	return append(edges, edge)
}

func triangleCentroid(p1, p2, p3 lin.V3) (centroid lin.V3) {
	centroid.Add(&p2, &p3).Add(&centroid, &p1)
	centroid.Scale(&centroid, 1.0/3.0)
	return centroid
}

// epa expands the polytope built from a GJK terminal simplex until the
// closest face to the origin stabilizes, returning the separating
// normal (pointing from a toward b) and the penetration depth.
func epa(a, b *Collider, s *simplex) (normal lin.V3, penetration float64, ok bool) {
	polytope, faces := polytopeFromSimplex(s)

	normals := make([]lin.V3, 0, len(faces))
	distances := make([]float64, 0, len(faces))
	minNormal := lin.NewV3()
	minDistance := math.MaxFloat64
	for _, f := range faces {
		n, d := faceNormalAndDistance(f, polytope)
		normals = append(normals, n)
		distances = append(distances, d)
		if d < minDistance {
			minDistance = d
			*minNormal = n
		}
	}

	var edges []v2Int
	converged := false
	for it := 0; it < epaMaxIterations; it++ {
		var support lin.V3
		supportMinkowski(a, b, minNormal, &support)

		d := minNormal.Dot(&support)
		if math.Abs(d-minDistance) < epaTolerance {
			normal = *minNormal
			penetration = minDistance
			converged = true
			break
		}

		newIndex := uint32(len(polytope))
		polytope = append(polytope, support)

		for i := 0; i < len(normals); i++ {
			n := normals[i]
			f := faces[i]
			centroid := triangleCentroid(polytope[f.x], polytope[f.y], polytope[f.z])
			var toSupport lin.V3
			toSupport.Sub(&support, &centroid)
			if n.Dot(&toSupport) > 0 {
				edges = addEdge(edges, v2Int{f.x, f.y}, polytope)
				edges = addEdge(edges, v2Int{f.y, f.z}, polytope)
				edges = addEdge(edges, v2Int{f.z, f.x}, polytope)

				faces = slices.Delete(faces, i, i+1)
				distances = slices.Delete(distances, i, i+1)
				normals = slices.Delete(normals, i, i+1)
				i--
			}
		}

		for _, e := range edges {
			newFace := v3Int{x: e.x, y: e.y, z: newIndex}
			faces = append(faces, newFace)
			n, d := faceNormalAndDistance(newFace, polytope)
			normals = append(normals, n)
			distances = append(distances, d)
		}

		minDistance = math.MaxFloat64
		for i, dist := range distances {
			if dist < minDistance {
				minDistance = dist
				minNormal = &normals[i]
			}
		}
		edges = edges[:0]
	}
	if !converged {
		slog.Debug("EPA did not converge within iteration budget")
	}
	return normal, penetration, converged
}

// convexConvexGJKEPA is the optional fallback narrow-phase path used
// when convexConvexContact reports no contact: either a face axis
// separates the shapes, or clipping leaves no point below the
// reference face (as with an edge-edge contact). GJK
// confirms overlap, EPA recovers the penetration depth and normal, and
// a single contact point is reconstructed from the support points
// along that normal.
func convexConvexGJKEPA(a, b *Collider) ([]ContactPoint, bool) {
	s, overlapping := gjkIntersects(a, b)
	if !overlapping {
		return nil, false
	}
	normal, penetration, ok := epa(a, b, s)
	if !ok || penetration <= 0 {
		return nil, false
	}

	var pointA, pointB lin.V3
	supportPoint(a, &normal, &pointA)
	var negNormal lin.V3
	negNormal.Neg(&normal)
	supportPoint(b, &negNormal, &pointB)

	return []ContactPoint{{PointA: pointA, PointB: pointB, Normal: normal, Penetration: penetration}}, true
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"math"

	"github.com/kelvinfold/rigid/math/lin"
)

// ShapeKind enumerates the collision primitives a Shape can describe.
// OBB and other boxes are not a distinct kind: they are authored as a
// Convex hull of 8 vertices and 6 faces, same as any other polyhedron.
type ShapeKind int

const (
	Sphere ShapeKind = iota
	Convex
)

// Face is one flat polygonal face of a Convex shape, local space.
// Indices name vertices in winding order; Normal is the outward unit
// normal of the plane through those vertices.
type Face struct {
	Indices []int
	Normal  lin.V3
}

// Edge is one boundary edge of a Convex shape, local space. FaceA and
// FaceB are the indices of the two faces sharing the edge. Edges are
// recorded for callers only: the narrow phase's SAT tests face normals
// alone and enumerates no edge-edge axes.
type Edge struct {
	V0, V1       int
	FaceA, FaceB int
}

// Shape is immutable collision input, always defined in local space
// centered at the origin. A Collider combines a Shape with a pose and
// scale to place it in world space. Shapes do not allocate during
// simulation; Collider.Refit fills caller-owned caches.
type Shape struct {
	Kind ShapeKind

	// Sphere: local radius before scale is applied. The canonical
	// sphere has Radius 1 so the world radius equals Collider.Scale.X.
	Radius float64

	// Convex: vertices, faces and derived edges, all in local space.
	Vertices []lin.V3
	Faces    []Face
	Edges    []Edge

	// cached local-space bounding box, lazily computed by localBoxExtent.
	boxCached              bool
	boxHx, boxHy, boxHz    float64
	boxCx, boxCy, boxCz    float64
}

// NewSphereShape returns a sphere Shape with the given local radius.
// A non-positive radius is a degenerate shape; AddBody rejects it.
func NewSphereShape(radius float64) *Shape {
	return &Shape{Kind: Sphere, Radius: radius}
}

// NewConvexShape returns a Convex Shape from explicit vertices and
// faces. Edges are derived from the faces' boundary loops: consecutive
// vertices of a face share an edge, and an edge shared by two faces
// records both. A boundary edge touched by only one supplied face
// keeps FaceB equal to FaceA, meaning it contributes no distinct
// edge-edge axis (degenerate geometry, not expected from a closed
// hull).
func NewConvexShape(vertices []lin.V3, faces []Face) *Shape {
	s := &Shape{Kind: Convex, Vertices: vertices, Faces: faces}
	s.Edges = deriveEdges(faces)
	return s
}

// NewBoxShape returns the canonical convex box: a unit cube scaled by
// the given half-extents, 8 vertices and 6 faces. This is the OBB
// special case the spec calls out: boxes are not a separate shape
// kind, only a convenient Convex constructor.
func NewBoxShape(hx, hy, hz float64) *Shape {
	hx, hy, hz = math.Abs(hx), math.Abs(hy), math.Abs(hz)
	v := []lin.V3{
		{X: -hx, Y: -hy, Z: -hz}, // 0
		{X: hx, Y: -hy, Z: -hz},  // 1
		{X: hx, Y: hy, Z: -hz},   // 2
		{X: -hx, Y: hy, Z: -hz},  // 3
		{X: -hx, Y: -hy, Z: hz},  // 4
		{X: hx, Y: -hy, Z: hz},   // 5
		{X: hx, Y: hy, Z: hz},    // 6
		{X: -hx, Y: hy, Z: hz},   // 7
	}
	faces := []Face{
		{Indices: []int{0, 3, 2, 1}, Normal: lin.V3{Z: -1}}, // back
		{Indices: []int{4, 5, 6, 7}, Normal: lin.V3{Z: 1}},  // front
		{Indices: []int{0, 1, 5, 4}, Normal: lin.V3{Y: -1}}, // bottom
		{Indices: []int{3, 7, 6, 2}, Normal: lin.V3{Y: 1}},  // top
		{Indices: []int{0, 4, 7, 3}, Normal: lin.V3{X: -1}}, // left
		{Indices: []int{1, 2, 6, 5}, Normal: lin.V3{X: 1}},  // right
	}
	return NewConvexShape(v, faces)
}

// deriveEdges walks each face's boundary loop and collects the unique
// undirected edges, recording which one or two faces border each.
func deriveEdges(faces []Face) []Edge {
	type key struct{ a, b int }
	index := map[key]int{}
	var edges []Edge
	for fi, f := range faces {
		n := len(f.Indices)
		for i := 0; i < n; i++ {
			v0, v1 := f.Indices[i], f.Indices[(i+1)%n]
			k := key{v0, v1}
			rk := key{v1, v0}
			if ei, ok := index[rk]; ok {
				edges[ei].FaceB = fi
				continue
			}
			if _, ok := index[k]; ok {
				continue // already recorded from this same direction, skip dup
			}
			index[k] = len(edges)
			edges = append(edges, Edge{V0: v0, V1: v1, FaceA: fi, FaceB: fi})
		}
	}
	return edges
}

// Volume returns the shape's local-space volume, used by callers that
// derive mass as density*Volume().
func (s *Shape) Volume() float64 {
	switch s.Kind {
	case Sphere:
		return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	case Convex:
		// Sum of signed tetrahedron volumes from the origin to each
		// triangle of the fan-triangulated faces. Correct for any
		// convex polyhedron centered near the origin.
		vol := 0.0
		for _, f := range s.Faces {
			for i := 1; i+1 < len(f.Indices); i++ {
				a := s.Vertices[f.Indices[0]]
				b := s.Vertices[f.Indices[i]]
				c := s.Vertices[f.Indices[i+1]]
				var ab, ac, cr lin.V3
				ab.Sub(&b, &a)
				ac.Sub(&c, &a)
				cr.Cross(&ab, &ac)
				vol += a.Dot(&cr) / 6.0
			}
		}
		return math.Abs(vol)
	}
	return 0
}

// LocalInertia fills inertia with the diagonal of the shape's local
// inertia tensor for the given mass (off-diagonal terms are assumed
// zero for these symmetric primitives). The updated vector is
// returned.
func (s *Shape) LocalInertia(mass float64, inertia *lin.V3) *lin.V3 {
	switch s.Kind {
	case Sphere:
		i := 0.4 * mass * s.Radius * s.Radius
		inertia.SetS(i, i, i)
		return inertia
	case Convex:
		// Point-mass approximation: distribute mass evenly over the
		// hull's vertices and accumulate their parallel-axis
		// contribution. Adequate for the rigid-body solving this core
		// does; a closed-form polyhedral tensor is not required.
		if len(s.Vertices) == 0 {
			inertia.SetS(0, 0, 0)
			return inertia
		}
		perVertex := mass / float64(len(s.Vertices))
		var ix, iy, iz float64
		for _, v := range s.Vertices {
			ix += perVertex * (v.Y*v.Y + v.Z*v.Z)
			iy += perVertex * (v.X*v.X + v.Z*v.Z)
			iz += perVertex * (v.X*v.X + v.Y*v.Y)
		}
		inertia.SetS(ix, iy, iz)
		return inertia
	}
	inertia.SetS(0, 0, 0)
	return inertia
}

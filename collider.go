// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"math"

	"github.com/kelvinfold/rigid/math/lin"
)

// Collider places an immutable Shape in world space and caches the
// derived world-space data narrow phase needs every step: transform,
// vertices, face normals and the bounding box. Collider does not
// allocate once its caches have been sized by Refit's first call.
type Collider struct {
	Shape *Shape

	Position    lin.V3
	Orientation lin.Q  // kept normalized whenever non-zero.
	Scale       lin.V3 // non-uniform scale; sphere radius uses Scale.X.

	transform lin.T // position + orientation only; scale applied separately.

	worldVertices []lin.V3
	worldNormals  []lin.V3
	box           lin.AABB
}

// NewCollider returns a Collider for shape at the given pose and
// scale, with caches sized and populated by an initial Refit.
func NewCollider(shape *Shape, position lin.V3, orientation lin.Q, scale lin.V3) *Collider {
	c := &Collider{Shape: shape, Position: position, Orientation: orientation, Scale: scale}
	if shape.Kind == Convex {
		c.worldVertices = make([]lin.V3, len(shape.Vertices))
		c.worldNormals = make([]lin.V3, len(shape.Faces))
	}
	c.Refit()
	return c
}

// Transform returns the collider's object-to-world rotation and
// translation (scale is not part of it; Scale is applied separately
// wherever a local vertex is placed in world space).
func (c *Collider) Transform() *lin.T { return &c.transform }

// Radius returns the effective world-space sphere radius. Only
// meaningful for Collider.Shape.Kind == Sphere.
func (c *Collider) Radius() float64 { return c.Shape.Radius * c.Scale.X }

// Box returns the collider's current tight world-space AABB, i.e. the
// box as of the last Refit, with no fattening applied.
func (c *Collider) Box() *lin.AABB { return &c.box }

// WorldVertex returns the i'th vertex of a Convex shape in world
// space, as of the last Refit.
func (c *Collider) WorldVertex(i int) *lin.V3 { return &c.worldVertices[i] }

// WorldNormal returns the outward world-space normal of the i'th face
// of a Convex shape, as of the last Refit.
func (c *Collider) WorldNormal(i int) *lin.V3 { return &c.worldNormals[i] }

// Refit recomputes the object-to-world transform, the world-space
// vertex and face-normal caches (Convex only) and the tight world
// AABB. Called once per step for every body (§4.1), and also whenever
// a collider is first created or its pose is set directly.
func (c *Collider) Refit() {
	c.Orientation.Unit()
	c.transform.Loc = &c.Position
	c.transform.Rot = &c.Orientation

	switch c.Shape.Kind {
	case Sphere:
		r := c.Radius()
		c.box.Lower.SetS(c.Position.X-r, c.Position.Y-r, c.Position.Z-r)
		c.box.Upper.SetS(c.Position.X+r, c.Position.Y+r, c.Position.Z+r)
	case Convex:
		for i, v := range c.Shape.Vertices {
			scaled := lin.V3{X: v.X * c.Scale.X, Y: v.Y * c.Scale.Y, Z: v.Z * c.Scale.Z}
			c.worldVertices[i].MultQ(&scaled, &c.Orientation).Add(&c.worldVertices[i], &c.Position)
		}
		for i, f := range c.Shape.Faces {
			c.worldNormals[i].MultQ(&f.Normal, &c.Orientation).Unit()
		}
		c.refitConvexBoxMoller()
	}
}

// refitConvexBoxMoller computes the world AABB of a Convex collider
// via Moller's method: rotate the local half-extents' basis vectors
// and dot the (scaled) half-extents against their absolute values,
// rather than rebuilding the box by scanning every transformed
// vertex. Requires the shape's local AABB half-extents and center,
// computed once and cached on the Shape the first time this runs.
func (c *Collider) refitConvexBoxMoller() {
	hx, hy, hz, cx, cy, cz := c.Shape.localBoxExtent()

	xx, xy, xz := quatRotateBasisX(&c.Orientation)
	yx, yy, yz := quatRotateBasisY(&c.Orientation)
	zx, zy, zz := quatRotateBasisZ(&c.Orientation)
	xx, xy, xz = math.Abs(xx), math.Abs(xy), math.Abs(xz)
	yx, yy, yz = math.Abs(yx), math.Abs(yy), math.Abs(yz)
	zx, zy, zz = math.Abs(zx), math.Abs(zy), math.Abs(zz)

	hmx, hmy, hmz := hx*c.Scale.X, hy*c.Scale.Y, hz*c.Scale.Z
	ex := hmx*xx + hmy*yx + hmz*zx
	ey := hmx*xy + hmy*yy + hmz*zy
	ez := hmx*xz + hmy*yz + hmz*zz

	var worldCenter lin.V3
	localCenter := lin.V3{X: cx * c.Scale.X, Y: cy * c.Scale.Y, Z: cz * c.Scale.Z}
	worldCenter.MultQ(&localCenter, &c.Orientation).Add(&worldCenter, &c.Position)

	c.box.Lower.SetS(worldCenter.X-ex, worldCenter.Y-ey, worldCenter.Z-ez)
	c.box.Upper.SetS(worldCenter.X+ex, worldCenter.Y+ey, worldCenter.Z+ez)
}

// quatRotateBasisX, Y, Z rotate the corresponding standard basis
// vector by q, avoiding a throwaway V3 allocation at each call site.
func quatRotateBasisX(q *lin.Q) (x, y, z float64) {
	v := lin.V3{X: 1}
	var r lin.V3
	r.MultQ(&v, q)
	return r.X, r.Y, r.Z
}
func quatRotateBasisY(q *lin.Q) (x, y, z float64) {
	v := lin.V3{Y: 1}
	var r lin.V3
	r.MultQ(&v, q)
	return r.X, r.Y, r.Z
}
func quatRotateBasisZ(q *lin.Q) (x, y, z float64) {
	v := lin.V3{Z: 1}
	var r lin.V3
	r.MultQ(&v, q)
	return r.X, r.Y, r.Z
}

// localBoxExtent returns the shape's local-space AABB as a center and
// half-extents, computing and caching it on first use.
func (s *Shape) localBoxExtent() (hx, hy, hz, cx, cy, cz float64) {
	if s.boxCached {
		return s.boxHx, s.boxHy, s.boxHz, s.boxCx, s.boxCy, s.boxCz
	}
	if len(s.Vertices) == 0 {
		return 0, 0, 0, 0, 0, 0
	}
	minX, minY, minZ := math.MaxFloat64, math.MaxFloat64, math.MaxFloat64
	maxX, maxY, maxZ := -math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64
	for _, v := range s.Vertices {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
		minZ, maxZ = math.Min(minZ, v.Z), math.Max(maxZ, v.Z)
	}
	s.boxCx, s.boxCy, s.boxCz = 0.5*(minX+maxX), 0.5*(minY+maxY), 0.5*(minZ+maxZ)
	s.boxHx, s.boxHy, s.boxHz = 0.5*(maxX-minX), 0.5*(maxY-minY), 0.5*(maxZ-minZ)
	s.boxCached = true
	return s.boxHx, s.boxHy, s.boxHz, s.boxCx, s.boxCy, s.boxCz
}

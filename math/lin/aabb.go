// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// AABB is an axis aligned bounding box described by its smallest and
// largest corners. It is the bounding volume used by the broad phase
// tree and by collider world-space bounds. AABB is not a collision
// shape; Sphere and Convex are.
type AABB struct {
	Lower V3 // smallest corner: left, bottom, back.
	Upper V3 // largest corner: right, top, front.
}

// NewAABB returns a degenerate (inside-out) box suitable as the zero
// value for an accumulating Union loop.
func NewAABB() *AABB {
	return &AABB{
		Lower: V3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Upper: V3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// Set copies box a into box ab. The updated box ab is returned.
func (ab *AABB) Set(a *AABB) *AABB {
	ab.Lower.Set(&a.Lower)
	ab.Upper.Set(&a.Upper)
	return ab
}

// SetCenterExtent sets ab to be centered at c with half-extents e along
// each axis. The updated box ab is returned.
func (ab *AABB) SetCenterExtent(c *V3, e *V3) *AABB {
	ab.Lower.Sub(c, e)
	ab.Upper.Add(c, e)
	return ab
}

// Expand grows box ab by margin on every side. Margin may be negative
// to shrink the box; callers are responsible for not inverting it.
// The updated box ab is returned.
func (ab *AABB) Expand(margin float64) *AABB {
	ab.Lower.X, ab.Lower.Y, ab.Lower.Z = ab.Lower.X-margin, ab.Lower.Y-margin, ab.Lower.Z-margin
	ab.Upper.X, ab.Upper.Y, ab.Upper.Z = ab.Upper.X+margin, ab.Upper.Y+margin, ab.Upper.Z+margin
	return ab
}

// Union sets ab to be the smallest box containing both a and b.
// Box ab may be the same box as a or b. The updated box ab is returned.
func (ab *AABB) Union(a, b *AABB) *AABB {
	lx, ly, lz := math.Min(a.Lower.X, b.Lower.X), math.Min(a.Lower.Y, b.Lower.Y), math.Min(a.Lower.Z, b.Lower.Z)
	ux, uy, uz := math.Max(a.Upper.X, b.Upper.X), math.Max(a.Upper.Y, b.Upper.Y), math.Max(a.Upper.Z, b.Upper.Z)
	ab.Lower.X, ab.Lower.Y, ab.Lower.Z = lx, ly, lz
	ab.Upper.X, ab.Upper.Y, ab.Upper.Z = ux, uy, uz
	return ab
}

// Contains returns true if box b lies entirely within box ab, inclusive
// of touching boundaries.
func (ab *AABB) Contains(b *AABB) bool {
	return ab.Lower.X <= b.Lower.X && ab.Lower.Y <= b.Lower.Y && ab.Lower.Z <= b.Lower.Z &&
		ab.Upper.X >= b.Upper.X && ab.Upper.Y >= b.Upper.Y && ab.Upper.Z >= b.Upper.Z
}

// Overlaps returns true if box ab and b intersect. Boxes that only
// touch along a point, edge or face do not count as overlapping.
func (ab *AABB) Overlaps(b *AABB) bool {
	return ab.Upper.X > b.Lower.X && ab.Lower.X < b.Upper.X &&
		ab.Upper.Y > b.Lower.Y && ab.Lower.Y < b.Upper.Y &&
		ab.Upper.Z > b.Lower.Z && ab.Lower.Z < b.Upper.Z
}

// Area returns the BVH's surface-area-heuristic surrogate: twice the
// sum of the box's edge lengths rather than its true surface area.
// This keeps sibling selection and rotation cost comparisons cheap and
// matches the convention the tree was designed around.
func (ab *AABB) Area() float64 {
	ex := ab.Upper.X - ab.Lower.X
	ey := ab.Upper.Y - ab.Lower.Y
	ez := ab.Upper.Z - ab.Lower.Z
	return 2 * (ex + ey + ez)
}

// Center sets c to the midpoint of box ab. The updated vector c is
// returned.
func (ab *AABB) Center(c *V3) *V3 {
	c.X = 0.5 * (ab.Lower.X + ab.Upper.X)
	c.Y = 0.5 * (ab.Lower.Y + ab.Upper.Y)
	c.Z = 0.5 * (ab.Lower.Z + ab.Upper.Z)
	return c
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import "github.com/kelvinfold/rigid/math/lin"

// supportPoint returns the point of collider furthest along direction
// dir, in world space. For a sphere this is the surface point facing
// dir; for a convex hull it is the vertex maximizing the dot product.
func supportPoint(c *Collider, dir *lin.V3, out *lin.V3) *lin.V3 {
	if c.Shape.Kind == Sphere {
		var unit lin.V3
		unit.Set(dir).Unit()
		out.Scale(&unit, c.Radius()).Add(out, &c.Position)
		return out
	}
	best := 0
	bestDot := c.worldVertices[0].Dot(dir)
	for i := 1; i < len(c.worldVertices); i++ {
		d := c.worldVertices[i].Dot(dir)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	out.Set(&c.worldVertices[best])
	return out
}

// supportMinkowski returns the support point of the Minkowski
// difference a - b along direction dir: support_a(dir) - support_b(-dir).
func supportMinkowski(a, b *Collider, dir *lin.V3, out *lin.V3) *lin.V3 {
	var sa, sb, neg lin.V3
	supportPoint(a, dir, &sa)
	neg.Neg(dir)
	supportPoint(b, &neg, &sb)
	out.Sub(&sa, &sb)
	return out
}

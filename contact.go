// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import "github.com/kelvinfold/rigid/math/lin"

// ContactPoint is a single point of contact between two bodies.
// Normal points from body A toward body B. NormalImpulse,
// VelocityBias, NormalMass and Resting are solver-owned state that
// persists across frames for warm starting.
type ContactPoint struct {
	PointA, PointB lin.V3
	Normal         lin.V3
	Penetration    float64
	Restitution    float64

	NormalImpulse float64
	VelocityBias  float64
	NormalMass    float64
	Resting       bool
}

const contactMergeTolerance = 1e-3

// bitEqual reports whether the two contact points describe the exact
// same surface locations (the narrow phase reproduced identical
// feature points, not merely nearby ones).
func (c *ContactPoint) bitEqual(o *ContactPoint) bool {
	return c.PointA == o.PointA && c.PointB == o.PointB
}

func (c *ContactPoint) sameFeature(o *ContactPoint) bool {
	return c.PointA.Dist(&o.PointA) < contactMergeTolerance && c.PointB.Dist(&o.PointB) < contactMergeTolerance
}

// Manifold is the persistent, up-to-4-point contact cache for one
// ordered body pair. It outlives a single step so the solver can warm
// start from last frame's accumulated impulses.
type Manifold struct {
	A, B      BodyHandle
	Points    []ContactPoint
	Colliding bool
}

// merge folds freshly-detected contact points into the manifold
// following §4.5: matching points are kept (marked resting) and the
// new duplicate discarded; new features are appended while there is
// room; once full, the new point replaces whichever stored point has
// the smallest penetration.
func (m *Manifold) merge(fresh []ContactPoint) {
	m.Colliding = len(fresh) > 0
	for i := range fresh {
		np := &fresh[i]
		matched := false
		for j := range m.Points {
			old := &m.Points[j]
			if old.bitEqual(np) || old.sameFeature(np) {
				old.Resting = true
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if len(m.Points) < 4 {
			np.Resting = false
			m.Points = append(m.Points, *np)
			continue
		}
		shallowest := 0
		for j := 1; j < len(m.Points); j++ {
			if m.Points[j].Penetration < m.Points[shallowest].Penetration {
				shallowest = j
			}
		}
		np.Resting = false
		m.Points[shallowest] = *np
	}
}

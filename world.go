// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"fmt"
	"math"

	"github.com/kelvinfold/rigid/math/lin"
)

// Config holds the per-World tunables named in §3 and recovered from
// original_source/PhysicsEngine/Physics.h (velocity-solve iteration
// count and BVH fattening extent are authoring-time configuration, not
// hardcoded constants).
type Config struct {
	Gravity            lin.V3
	VelocityIterations int
	BiasFactor         float64
	FatExtent          float64
	UseGJKFallback     bool
}

// DefaultConfig returns the §3 World defaults: gravity (0,0,-9.8),
// 20 velocity iterations, bias factor 0.1, fat extent 0.2.
func DefaultConfig() Config {
	return Config{
		Gravity:            lin.V3{Z: -9.8},
		VelocityIterations: 20,
		BiasFactor:         0.1,
		FatExtent:          defaultFatExtent,
		UseGJKFallback:     true,
	}
}

// BodyView is the read-only snapshot World.Body returns: pose,
// velocity, and AABB, per §6.
type BodyView struct {
	Position        lin.V3
	Orientation     lin.Q
	LinearVelocity  lin.V3
	AngularVelocity lin.V3
	Box             lin.AABB
	Dynamic         bool
}

// World owns every body, the broad-phase tree and the persistent
// manifold store, and runs the per-tick pipeline of §2/§4.8. It is not
// safe for concurrent use: §5 requires step() to run to completion
// without interleaved caller mutation.
type World struct {
	config Config

	bodies map[BodyHandle]*RigidBody
	tree   *bvh

	manifolds map[pair]*Manifold

	gravityEnabled bool
}

// NewWorld constructs an empty World from config.
func NewWorld(config Config) *World {
	return &World{
		config:         config,
		bodies:         map[BodyHandle]*RigidBody{},
		tree:           newBVH(config.FatExtent),
		manifolds:      map[pair]*Manifold{},
		gravityEnabled: true,
	}
}

// AddBody validates spec per §7 and registers a new body, returning
// its stable handle.
func (w *World) AddBody(spec BodySpec) (BodyHandle, error) {
	if spec.Shape == nil {
		return BodyHandle{}, fmt.Errorf("%w: nil shape", ErrDegenerateShape)
	}
	if err := validateShape(spec.Shape); err != nil {
		return BodyHandle{}, err
	}
	if err := validatePose(&spec.Position, &spec.Orientation); err != nil {
		return BodyHandle{}, err
	}

	b := newRigidBody(spec)
	w.bodies[b.handle] = b
	b.leaf = w.tree.insert(b.handle, b.Collider.Box())
	return b.handle, nil
}

// RemoveBody unregisters a body, removing its BVH leaf and any
// manifolds that reference it.
func (w *World) RemoveBody(h BodyHandle) error {
	b, ok := w.bodies[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	if b.leaf != -1 {
		w.tree.remove(b.leaf)
	}
	delete(w.bodies, h)
	for key, m := range w.manifolds {
		if m.A == h || m.B == h {
			delete(w.manifolds, key)
		}
	}
	return nil
}

// RemoveAllDynamicBodies drops every dynamic body in one call,
// recovered from original_source/PhysicsEngine's scene-reset support
// (§5 SPEC_FULL addition). Static bodies are left untouched.
func (w *World) RemoveAllDynamicBodies() {
	for h, b := range w.bodies {
		if b.Dynamic {
			_ = w.RemoveBody(h)
		}
	}
}

// Body returns a read-only snapshot of the body identified by h.
func (w *World) Body(h BodyHandle) (BodyView, error) {
	b, ok := w.bodies[h]
	if !ok {
		return BodyView{}, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return BodyView{
		Position:        b.Collider.Position,
		Orientation:     b.Collider.Orientation,
		LinearVelocity:  b.LinearVelocity,
		AngularVelocity: b.AngularVelocity,
		Box:             *b.Collider.Box(),
		Dynamic:         b.Dynamic,
	}, nil
}

// SetVelocity directly sets a body's linear/angular velocity.
func (w *World) SetVelocity(h BodyHandle, linear, angular *lin.V3) error {
	if err := validateV3("linear velocity", linear); err != nil {
		return err
	}
	if err := validateV3("angular velocity", angular); err != nil {
		return err
	}
	b, ok := w.bodies[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	b.SetVelocity(linear, angular)
	return nil
}

// ApplyForce accumulates a force on a body for the next Step.
func (w *World) ApplyForce(h BodyHandle, f *lin.V3) error {
	if err := validateV3("force", f); err != nil {
		return err
	}
	b, ok := w.bodies[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	b.ApplyForce(f)
	return nil
}

// ApplyTorque accumulates a torque on a body for the next Step.
func (w *World) ApplyTorque(h BodyHandle, t *lin.V3) error {
	if err := validateV3("torque", t); err != nil {
		return err
	}
	b, ok := w.bodies[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	b.ApplyTorque(t)
	return nil
}

// SetGravityEnabled toggles whether Integrate applies the world's
// gravity vector to bodies with takes_gravity set.
func (w *World) SetGravityEnabled(enabled bool) { w.gravityEnabled = enabled }

// QueryAABB returns every body whose fat BVH box overlaps box, a
// read-only debug/observation query recovered from
// original_source/PhysicsEngine's BVH traversal helpers (§5 SPEC_FULL
// addition).
func (w *World) QueryAABB(box *lin.AABB) []BodyHandle {
	return w.tree.queryAABB(box)
}

// Contacts returns every currently-colliding manifold as (a, b,
// points) triples, for observation/debug per §6.
func (w *World) Contacts() []struct {
	A, B   BodyHandle
	Points []ContactPoint
} {
	out := make([]struct {
		A, B   BodyHandle
		Points []ContactPoint
	}, 0, len(w.manifolds))
	for _, m := range w.manifolds {
		if !m.Colliding {
			continue
		}
		out = append(out, struct {
			A, B   BodyHandle
			Points []ContactPoint
		}{A: m.A, B: m.B, Points: m.Points})
	}
	return out
}

// Step advances the simulation by dt following §2's pipeline:
// integrate, refit, broad phase, narrow phase, solve, cull.
func (w *World) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt", ErrNonFiniteInput)
	}

	for _, b := range w.bodies {
		integrate(b, &w.config.Gravity, w.gravityEnabled, dt)
	}

	w.tree.update(func(h BodyHandle) *lin.AABB {
		return w.bodies[h].Collider.Box()
	})

	// A pair the broad phase no longer reports is not merged below, so
	// clear every flag first; merge sets it again for pairs still in contact.
	for _, m := range w.manifolds {
		m.Colliding = false
	}
	for _, p := range w.tree.broadPhase() {
		a, b := w.bodies[p.a], w.bodies[p.b]
		points, colliding := narrowPhase(a, b, w.config.UseGJKFallback)

		m, ok := w.manifolds[p]
		if !ok {
			m = &Manifold{A: p.a, B: p.b}
			w.manifolds[p] = m
		}
		if colliding {
			for i := range points {
				points[i].Restitution = combinedRestitution(a, b)
			}
		}
		m.merge(points)
	}

	info := &solverInfo{
		timestep:           dt,
		velocityIterations: w.config.VelocityIterations,
		biasFactor:         w.config.BiasFactor,
		slop:               defaultSlop,
	}
	solveManifolds(w.bodies, w.manifolds, info)

	for key, m := range w.manifolds {
		if !m.Colliding {
			delete(w.manifolds, key)
		}
	}
	return nil
}

// combinedRestitution follows the common convention of taking the
// larger of the two bodies' restitution coefficients.
func combinedRestitution(a, b *RigidBody) float64 {
	if a.Restitution > b.Restitution {
		return a.Restitution
	}
	return b.Restitution
}

func validateShape(s *Shape) error {
	if s.Kind == Sphere && s.Radius <= 0 {
		return fmt.Errorf("%w: non-positive sphere radius", ErrDegenerateShape)
	}
	if s.Kind == Convex {
		if len(s.Vertices) == 0 || len(s.Faces) == 0 {
			return fmt.Errorf("%w: empty convex hull", ErrDegenerateShape)
		}
		if s.Volume() <= 0 {
			return fmt.Errorf("%w: zero-volume convex hull", ErrDegenerateShape)
		}
	}
	return nil
}

func validatePose(pos *lin.V3, orient *lin.Q) error {
	vals := []float64{pos.X, pos.Y, pos.Z, orient.X, orient.Y, orient.Z, orient.W}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: pose", ErrNonFiniteInput)
		}
	}
	return nil
}

func validateV3(tag string, v *lin.V3) error {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) ||
		math.IsNaN(v.Y) || math.IsInf(v.Y, 0) ||
		math.IsNaN(v.Z) || math.IsInf(v.Z, 0) {
		return fmt.Errorf("%w: %s", ErrNonFiniteInput, tag)
	}
	return nil
}

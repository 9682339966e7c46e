// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/kelvinfold/rigid/math/lin"
)

// BodyHandle is an opaque reference to a body registered with a World.
// It is stable across a body's lifetime and never reused: once a body
// is removed, its handle is permanently invalid. Callers must not
// infer anything from a handle's value beyond equality.
type BodyHandle struct {
	id uuid.UUID
}

func newBodyHandle() BodyHandle { return BodyHandle{id: uuid.New()} }

// String returns the handle's UUID text form, for logging/debug use.
func (h BodyHandle) String() string { return h.id.String() }

// BodySpec describes a body to add to a World. Shape is retained by
// reference; callers must not mutate it afterwards.
type BodySpec struct {
	Shape        *Shape
	Position     lin.V3
	Orientation  lin.Q // zero value is treated as identity.
	Scale        lin.V3
	Dynamic      bool
	Mass         float64 // ignored (treated as infinite) when !Dynamic.
	Restitution  float64 // defaults to 0.3 when left at the zero value.
	TakesGravity bool
	FatExtent    float64 // 0 => 0.2. Stored on the body only; the BVH fattens every leaf by World.Config.FatExtent.
}

// RigidBody is one simulated body: its mass/inertia properties,
// kinematic state, force accumulators and owned Collider. RigidBody
// fields are read through BodyView outside the package; World methods
// are the only supported way to mutate them, keeping the step
// invariant (§5) that a step is never concurrent with a caller
// mutation.
type RigidBody struct {
	handle  BodyHandle
	Dynamic bool

	InverseMass          float64
	InverseLocalInertia  lin.V3 // diagonal, local space, 0 for static.
	InertiaTensor        lin.M3 // world space, for BodyView/debug only.
	InverseInertiaTensor lin.M3 // world space, used by the solver.

	LinearVelocity  lin.V3
	AngularVelocity lin.V3

	NetForce     lin.V3
	NetTorque    lin.V3
	GravityForce lin.V3
	TakesGravity bool

	Restitution float64
	FatExtent   float64

	Collider *Collider

	leaf int // BVH leaf index; -1 if not yet inserted.
}

const defaultRestitution = 0.3
const defaultFatExtent = 0.2

// newRigidBody builds a RigidBody from spec. It does not validate the
// shape or register with any World; World.AddBody does both.
func newRigidBody(spec BodySpec) *RigidBody {
	orient := spec.Orientation
	if orient.X == 0 && orient.Y == 0 && orient.Z == 0 && orient.W == 0 {
		orient = *lin.NewQI()
	}
	scale := spec.Scale
	if scale.X == 0 && scale.Y == 0 && scale.Z == 0 {
		scale = lin.V3{X: 1, Y: 1, Z: 1}
	}
	restitution := spec.Restitution
	if restitution == 0 {
		restitution = defaultRestitution
	}
	fatExtent := spec.FatExtent
	if fatExtent == 0 {
		fatExtent = defaultFatExtent
	}

	b := &RigidBody{
		handle:       newBodyHandle(),
		Dynamic:      spec.Dynamic,
		Restitution:  restitution,
		FatExtent:    fatExtent,
		TakesGravity: spec.TakesGravity,
		Collider:     NewCollider(spec.Shape, spec.Position, orient, scale),
		leaf:         -1,
	}

	if spec.Dynamic {
		mass := spec.Mass
		if mass <= 0 {
			mass = 1
		}
		b.InverseMass = 1 / mass
		var localInertia lin.V3
		spec.Shape.LocalInertia(mass, &localInertia)
		b.InverseLocalInertia = lin.V3{
			X: safeInv(localInertia.X),
			Y: safeInv(localInertia.Y),
			Z: safeInv(localInertia.Z),
		}
		b.refreshInertiaWorld()
	}
	return b
}

func safeInv(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1 / x
}

// refreshInertiaWorld recomputes the world-space inertia tensor and
// its inverse from the body's current orientation: I_world = R *
// I_local * R^T, same for the inverse. Static bodies keep a zero
// tensor (§3 invariant).
func (b *RigidBody) refreshInertiaWorld() {
	if !b.Dynamic {
		return
	}
	r := lin.NewM3().SetQ(&b.Collider.Orientation)
	rt := lin.NewM3().Transpose(r)

	invLocal := lin.NewM3I().ScaleV(&b.InverseLocalInertia)
	b.InverseInertiaTensor.Mult(r.Mult(r, invLocal), rt)

	// InertiaTensor (non-inverted, for BodyView) only needs the same
	// treatment on 1/InverseLocalInertia; recomputing it here keeps it
	// in step with the inverse at negligible extra cost.
	localDiag := lin.V3{X: safeInv(b.InverseLocalInertia.X), Y: safeInv(b.InverseLocalInertia.Y), Z: safeInv(b.InverseLocalInertia.Z)}
	r2 := lin.NewM3().SetQ(&b.Collider.Orientation)
	rt2 := lin.NewM3().Transpose(r2)
	local := lin.NewM3I().ScaleV(&localDiag)
	b.InertiaTensor.Mult(r2.Mult(r2, local), rt2)
}

// Handle returns the body's stable identity.
func (b *RigidBody) Handle() BodyHandle { return b.handle }

// ApplyForce accumulates a force applied at the body's center of mass.
func (b *RigidBody) ApplyForce(f *lin.V3) {
	if !b.Dynamic {
		slog.Debug("ApplyForce on static body ignored")
		return
	}
	b.NetForce.Add(&b.NetForce, f)
}

// ApplyTorque accumulates a torque.
func (b *RigidBody) ApplyTorque(t *lin.V3) {
	if !b.Dynamic {
		slog.Debug("ApplyTorque on static body ignored")
		return
	}
	b.NetTorque.Add(&b.NetTorque, t)
}

// SetVelocity directly sets linear and angular velocity, bypassing
// force accumulation. Used by callers seeding a scenario or clamping
// runaway velocities.
func (b *RigidBody) SetVelocity(linear, angular *lin.V3) {
	b.LinearVelocity.Set(linear)
	b.AngularVelocity.Set(angular)
}

func (b *RigidBody) clearForces() {
	b.NetForce.SetS(0, 0, 0)
	b.NetTorque.SetS(0, 0, 0)
}

// velocityAtPoint returns the body's velocity of the material point at
// world-space position p: v + ω × (p - center).
func (b *RigidBody) velocityAtPoint(p *lin.V3, out *lin.V3) *lin.V3 {
	var arm, wxr lin.V3
	arm.Sub(p, &b.Collider.Position)
	wxr.Cross(&b.AngularVelocity, &arm)
	out.Add(&b.LinearVelocity, &wxr)
	return out
}

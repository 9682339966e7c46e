// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelvinfold/rigid/math/lin"
)

// TestFallingSphereSettlesOnFloor covers S1: a sphere dropped onto a
// static floor box settles near the expected resting height with low
// residual velocity.
func TestFallingSphereSettlesOnFloor(t *testing.T) {
	w := NewWorld(DefaultConfig())

	_, err := w.AddBody(BodySpec{
		Shape:    NewBoxShape(30, 30, 1),
		Position: lin.V3{Z: 0},
		Dynamic:  false,
	})
	require.NoError(t, err)

	sphere, err := w.AddBody(BodySpec{
		Shape:        NewSphereShape(1),
		Position:     lin.V3{Z: 2},
		Dynamic:      true,
		Mass:         1,
		TakesGravity: true,
	})
	require.NoError(t, err)

	dt := 1.0 / 60
	steps := int(2.0 / dt)
	for i := 0; i < steps; i++ {
		require.NoError(t, w.Step(dt))
	}

	view, err := w.Body(sphere)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, view.Position.Z, 0.1)
	assert.Less(t, view.LinearVelocity.Len(), 0.2)
}

// TestTwoSpheresHeadOnExchangeVelocity covers S2 at the World level:
// momentum is conserved and the spheres separate after the step in
// which they first overlap.
func TestTwoSpheresHeadOnExchangeVelocity(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg)
	w.SetGravityEnabled(false)

	a, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Position: lin.V3{X: -2}, Dynamic: true, Mass: 1, Restitution: 1})
	require.NoError(t, err)
	b, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Position: lin.V3{X: 2}, Dynamic: true, Mass: 1, Restitution: 1})
	require.NoError(t, err)

	require.NoError(t, w.SetVelocity(a, &lin.V3{X: 5}, &lin.V3{}))
	require.NoError(t, w.SetVelocity(b, &lin.V3{X: -5}, &lin.V3{}))

	dt := 1.0 / 60
	for i := 0; i < 60; i++ {
		require.NoError(t, w.Step(dt))
	}

	va, _ := w.Body(a)
	vb, _ := w.Body(b)
	assert.InDelta(t, 0, va.LinearVelocity.X+vb.LinearVelocity.X, 1e-2)
	assert.Greater(t, vb.LinearVelocity.X, va.LinearVelocity.X)
}

// TestBoxStackingBounded covers S3: two dynamic boxes stacked on a
// static floor settle to low velocity.
func TestBoxStackingBounded(t *testing.T) {
	w := NewWorld(DefaultConfig())

	_, err := w.AddBody(BodySpec{Shape: NewBoxShape(5, 5, 0.5), Position: lin.V3{Z: -0.5}, Dynamic: false})
	require.NoError(t, err)
	bottom, err := w.AddBody(BodySpec{Shape: NewBoxShape(1, 1, 1), Position: lin.V3{Z: 1}, Dynamic: true, Mass: 1, TakesGravity: true})
	require.NoError(t, err)
	top, err := w.AddBody(BodySpec{Shape: NewBoxShape(1, 1, 1), Position: lin.V3{Z: 3}, Dynamic: true, Mass: 1, TakesGravity: true})
	require.NoError(t, err)

	dt := 1.0 / 60
	for i := 0; i < int(3.0/dt); i++ {
		require.NoError(t, w.Step(dt))
	}

	vb, _ := w.Body(bottom)
	vt, _ := w.Body(top)
	assert.Less(t, vb.LinearVelocity.Len(), 0.5)
	assert.Less(t, vt.LinearVelocity.Len(), 0.5)
}

// TestManifoldPersistsThenCulledOnSeparation covers S5: a manifold
// stays present across sustained contact and is removed once the pair
// stops overlapping.
func TestManifoldPersistsThenCulledOnSeparation(t *testing.T) {
	w := NewWorld(DefaultConfig())
	w.SetGravityEnabled(false)

	a, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Position: lin.V3{X: -0.9}, Dynamic: true, Mass: 1})
	require.NoError(t, err)
	b, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Position: lin.V3{X: 0.9}, Dynamic: true, Mass: 1})
	require.NoError(t, err)

	require.NoError(t, w.Step(1.0/60))
	assert.Len(t, w.manifolds, 1)

	require.NoError(t, w.SetVelocity(a, &lin.V3{X: -20}, &lin.V3{}))
	require.NoError(t, w.SetVelocity(b, &lin.V3{X: 20}, &lin.V3{}))
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Step(1.0/60))
	}
	assert.Empty(t, w.manifolds)
}

func TestEnergySanityNoGravityNoInitialVelocity(t *testing.T) {
	w := NewWorld(DefaultConfig())
	w.SetGravityEnabled(false)

	h, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Position: lin.V3{X: 10, Y: 10, Z: 10}, Dynamic: true, Mass: 1})
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.NoError(t, w.Step(1.0/60))
	}

	view, err := w.Body(h)
	require.NoError(t, err)
	assert.Less(t, view.LinearVelocity.LenSqr()+view.AngularVelocity.LenSqr(), 1e-6)
}

func TestAddBodyRejectsDegenerateShape(t *testing.T) {
	w := NewWorld(DefaultConfig())
	_, err := w.AddBody(BodySpec{Shape: NewSphereShape(0), Dynamic: true})
	assert.ErrorIs(t, err, ErrDegenerateShape)
}

func TestAddBodyRejectsNonFinitePose(t *testing.T) {
	w := NewWorld(DefaultConfig())
	_, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Position: lin.V3{X: math.NaN()}, Dynamic: true})
	assert.ErrorIs(t, err, ErrNonFiniteInput)
}

func TestStepRejectsNonFiniteDt(t *testing.T) {
	w := NewWorld(DefaultConfig())
	err := w.Step(math.NaN())
	assert.ErrorIs(t, err, ErrNonFiniteInput)
}

func TestApplyForceTorqueVelocityRejectNonFinite(t *testing.T) {
	w := NewWorld(DefaultConfig())
	h, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Dynamic: true})
	require.NoError(t, err)

	err = w.ApplyForce(h, &lin.V3{X: math.Inf(1)})
	assert.ErrorIs(t, err, ErrNonFiniteInput)

	err = w.ApplyTorque(h, &lin.V3{Y: math.NaN()})
	assert.ErrorIs(t, err, ErrNonFiniteInput)

	err = w.SetVelocity(h, &lin.V3{Z: math.NaN()}, &lin.V3{})
	assert.ErrorIs(t, err, ErrNonFiniteInput)

	view, err := w.Body(h)
	require.NoError(t, err)
	assert.Less(t, view.LinearVelocity.LenSqr()+view.AngularVelocity.LenSqr(), 1e-12)
}

func TestRemoveBodyThenQueryFails(t *testing.T) {
	w := NewWorld(DefaultConfig())
	h, err := w.AddBody(BodySpec{Shape: NewSphereShape(1), Dynamic: true})
	require.NoError(t, err)
	require.NoError(t, w.RemoveBody(h))
	_, err = w.Body(h)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestRemoveAllDynamicBodiesKeepsStatic(t *testing.T) {
	w := NewWorld(DefaultConfig())
	static, err := w.AddBody(BodySpec{Shape: NewBoxShape(1, 1, 1), Dynamic: false})
	require.NoError(t, err)
	_, err = w.AddBody(BodySpec{Shape: NewSphereShape(1), Dynamic: true, Mass: 1})
	require.NoError(t, err)

	w.RemoveAllDynamicBodies()
	assert.Len(t, w.bodies, 1)
	_, err = w.Body(static)
	assert.NoError(t, err)
}

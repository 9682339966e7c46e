// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import "errors"

// Sentinel errors returned by World methods. Callers use errors.Is to
// check for a specific class; the wrapped detail (fmt.Errorf %w) gives
// the offending handle or value.
var (
	// ErrUnknownHandle is returned when a BodyHandle was never added to
	// the world, or has already been removed.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrDegenerateShape is returned when AddBody is given a sphere with
	// non-positive radius or a convex hull with zero volume.
	ErrDegenerateShape = errors.New("degenerate shape")

	// ErrNonFiniteInput is returned when a NaN or Inf value reaches Step,
	// ApplyForce, ApplyTorque, SetVelocity, or AddBody. The world refuses
	// to step rather than propagate non-finite state.
	ErrNonFiniteInput = errors.New("non-finite input")
)

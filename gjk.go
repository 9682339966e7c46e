// SPDX-FileCopyrightText: © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package rigid

import (
	"log/slog"

	"github.com/kelvinfold/rigid/math/lin"
)

// simplex is the set of up to 4 support points GJK has accumulated
// while searching the Minkowski difference for the origin.
type simplex struct {
	a, b, c, d lin.V3
	num        uint32
}

func addToSimplex(s *simplex, point lin.V3) {
	switch s.num {
	case 1:
		s.b = s.a
		s.a = point
	case 2:
		s.c = s.b
		s.b = s.a
		s.a = point
	case 3:
		s.d = s.c
		s.c = s.b
		s.b = s.a
		s.a = point
	default:
		slog.Error("addToSimplex: simplex already has 4 points")
	}
	s.num++
}

func tripleCross(a, b, c lin.V3) (tc lin.V3) {
	tc.Cross(&a, &b)
	tc.Cross(&tc, &c)
	return tc
}

func doSimplex2(s *simplex, direction *lin.V3) bool {
	a, b := s.a, s.b
	var ao, ab lin.V3
	ao.Neg(&a)
	ab.Sub(&b, &a)
	if ab.Dot(&ao) >= 0 {
		s.num = 2
		*direction = tripleCross(ab, ao, ab)
	} else {
		s.num = 1
		*direction = ao
	}
	return false
}

func doSimplex3(s *simplex, direction *lin.V3) bool {
	a, b, c := s.a, s.b, s.c
	var ao, ab, ac, abc lin.V3
	ao.Neg(&a)
	ab.Sub(&b, &a)
	ac.Sub(&c, &a)
	abc.Cross(&ab, &ac)

	var abcXac lin.V3
	abcXac.Cross(&abc, &ac)
	if abcXac.Dot(&ao) >= 0 {
		if ac.Dot(&ao) >= 0 {
			s.b, s.num = c, 2
			*direction = tripleCross(ac, ao, ac)
		} else if ab.Dot(&ao) >= 0 {
			s.num = 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.num = 1
			*direction = ao
		}
		return false
	}
	var abXabc lin.V3
	abXabc.Cross(&ab, &abc)
	if abXabc.Dot(&ao) >= 0 {
		if ab.Dot(&ao) >= 0 {
			s.num = 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.num = 1
			*direction = ao
		}
		return false
	}
	if abc.Dot(&ao) >= 0 {
		s.num = 3
		*direction = abc
	} else {
		s.b, s.c, s.num = c, b, 3
		direction.Neg(&abc)
	}
	return false
}

func doSimplex4(s *simplex, direction *lin.V3) bool {
	a, b, c, d := s.a, s.b, s.c, s.d
	var ao, ab, ac, ad, abc, acd, adb lin.V3
	ao.Neg(&a)
	ab.Sub(&b, &a)
	ac.Sub(&c, &a)
	ad.Sub(&d, &a)
	abc.Cross(&ab, &ac)
	acd.Cross(&ac, &ad)
	adb.Cross(&ad, &ab)

	info := 0
	if abc.Dot(&ao) >= 0 {
		info |= 0x1
	}
	if acd.Dot(&ao) >= 0 {
		info |= 0x2
	}
	if adb.Dot(&ao) >= 0 {
		info |= 0x4
	}

	switch info {
	case 0x0:
		return true // origin is inside the tetrahedron.
	case 0x1: // triangle ABC
		var x lin.V3
		x.Cross(&abc, &ac)
		if x.Dot(&ao) >= 0 {
			if ac.Dot(&ao) >= 0 {
				s.b, s.num = c, 2
				*direction = tripleCross(ac, ao, ac)
			} else if ab.Dot(&ao) >= 0 {
				s.num = 2
				*direction = tripleCross(ab, ao, ab)
			} else {
				s.num = 1
				*direction = ao
			}
			return false
		}
		x.Cross(&ab, &abc)
		if x.Dot(&ao) >= 0 {
			if ab.Dot(&ao) >= 0 {
				s.num = 2
				*direction = tripleCross(ab, ao, ab)
			} else {
				s.num = 1
				*direction = ao
			}
			return false
		}
		s.num = 3
		*direction = abc
	case 0x2: // triangle ACD
		var x lin.V3
		x.Cross(&acd, &ad)
		if x.Dot(&ao) >= 0 {
			if ad.Dot(&ao) >= 0 {
				s.b, s.num = d, 2
				*direction = tripleCross(ad, ao, ad)
			} else if ac.Dot(&ao) >= 0 {
				s.b, s.num = c, 2
				*direction = tripleCross(ab, ao, ab)
			} else {
				s.num = 1
				*direction = ao
			}
			return false
		}
		x.Cross(&ac, &acd)
		if x.Dot(&ao) >= 0 {
			if ac.Dot(&ao) >= 0 {
				s.b, s.num = c, 2
				*direction = tripleCross(ac, ao, ac)
			} else {
				s.num = 1
				*direction = ao
			}
			return false
		}
		s.b, s.c, s.num = c, d, 3
		*direction = acd
	case 0x3: // line AC
		if ac.Dot(&ao) >= 0 {
			s.b, s.num = c, 2
			*direction = tripleCross(ac, ao, ac)
		} else {
			s.num = 1
			*direction = ao
		}
	case 0x4: // triangle ADB
		var x lin.V3
		x.Cross(&adb, &ab)
		if x.Dot(&ao) >= 0 {
			if ab.Dot(&ao) >= 0 {
				s.num = 2
				*direction = tripleCross(ab, ao, ab)
			} else if ad.Dot(&ao) >= 0 {
				s.b, s.num = d, 2
				*direction = tripleCross(ad, ao, ad)
			} else {
				s.num = 1
				*direction = ao
			}
			return false
		}
		x.Cross(&ad, &adb)
		if x.Dot(&ao) >= 0 {
			if ad.Dot(&ao) >= 0 {
				s.b, s.num = d, 2
				*direction = tripleCross(ad, ao, ad)
			} else {
				s.num = 1
				*direction = ao
			}
			return false
		}
		s.b, s.c, s.num = d, b, 3
		*direction = adb
	case 0x5: // line AB
		if ab.Dot(&ao) >= 0 {
			s.num = 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.num = 1
			*direction = ao
		}
	case 0x6: // line AD
		if ad.Dot(&ao) >= 0 {
			s.b, s.num = d, 2
			*direction = tripleCross(ad, ao, ad)
		} else {
			s.num = 1
			*direction = ao
		}
	case 0x7: // point A
		s.num = 1
		*direction = ao
	}
	return false
}

func evolveSimplex(s *simplex, direction *lin.V3) bool {
	switch s.num {
	case 2:
		return doSimplex2(s, direction)
	case 3:
		return doSimplex3(s, direction)
	case 4:
		return doSimplex4(s, direction)
	}
	return false
}

// gjkMaxIterations bounds the simplex evolution loop; the spec only
// constrains EPA's iteration count, so this keeps GJK generously
// bounded without being unconstrained.
const gjkMaxIterations = 64

// gjkIntersects runs GJK over the Minkowski difference of a and b,
// returning the terminal simplex (a tetrahedron enclosing the origin)
// when they overlap.
func gjkIntersects(a, b *Collider) (*simplex, bool) {
	var s simplex
	supportMinkowski(a, b, &lin.V3{Z: 1}, &s.a)
	s.num = 1
	var direction lin.V3
	direction.Scale(&s.a, -1)

	for i := 0; i < gjkMaxIterations; i++ {
		var next lin.V3
		supportMinkowski(a, b, &direction, &next)
		if next.Dot(&direction) < 0 {
			return nil, false
		}
		addToSimplex(&s, next)
		if evolveSimplex(&s, &direction) {
			return &s, true
		}
	}
	slog.Debug("GJK did not converge")
	return nil, false
}

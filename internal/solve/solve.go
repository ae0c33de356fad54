// Package solve implements the quadratic and cubic polynomial root
// solvers shared by curve extrema, intersection, and flattening code.
// It lives apart from the root package so internal packages (like
// intersect) can depend on it without creating an import cycle back
// through the root package.
package solve

import "math"

// Quadratic finds real roots of ax^2 + bx + c = 0, sorted ascending.
// It is numerically robust: a zero or vanishing a falls back to the
// linear case, and a would-be-overflowing discriminant uses a
// reduced-precision fallback rather than producing Inf/NaN.
func Quadratic(a, b, c float64) []float64 {
	sc0 := c / a
	sc1 := b / a

	if !isFinite(sc0) || !isFinite(sc1) {
		return quadraticLinear(b, c)
	}
	return quadraticNormal(sc0, sc1)
}

func quadraticNormal(sc0, sc1 float64) []float64 {
	arg := sc1*sc1 - 4.0*sc0

	if !isFinite(arg) {
		return quadraticOverflow(sc0, sc1)
	}
	if arg < 0.0 {
		return nil
	}
	if arg == 0.0 {
		return []float64{-0.5 * sc1}
	}

	root1 := -0.5 * (sc1 + math.Copysign(math.Sqrt(arg), sc1))
	root2 := sc0 / root1

	if !isFinite(root2) {
		return []float64{root1}
	}
	if root1 > root2 {
		return []float64{root2, root1}
	}
	return []float64{root1, root2}
}

func quadraticOverflow(sc0, sc1 float64) []float64 {
	root1 := -sc1
	root2 := sc0 / root1

	if !isFinite(root2) {
		return []float64{root1}
	}
	if root1 > root2 {
		return []float64{root2, root1}
	}
	return []float64{root1, root2}
}

func quadraticLinear(b, c float64) []float64 {
	root := -c / b
	if isFinite(root) {
		return []float64{root}
	}
	if c == 0.0 && b == 0.0 {
		return []float64{0.0}
	}
	return nil
}

// Cubic finds real roots of ax^3 + bx^2 + cx + d = 0 (not necessarily
// sorted), using Jim Blinn's method as described at
// https://momentsingraphics.de/CubicRoots.html.
func Cubic(a, b, c, d float64) []float64 {
	aRecip := 1.0 / a
	const oneThird = 1.0 / 3.0

	scaledB := b * (oneThird * aRecip)
	scaledC := c * (oneThird * aRecip)
	scaledD := d * aRecip

	if !isFinite(scaledB) || !isFinite(scaledC) || !isFinite(scaledD) {
		return Quadratic(b, c, d)
	}

	c0, c1, c2 := scaledD, scaledC, scaledB

	d0 := (-c2)*c2 + c1
	d1 := (-c1)*c2 + c0
	d2 := c2*c0 - c1*c1

	disc := 4.0*d0*d2 - d1*d1
	de := (-2.0*c2)*d0 + d1

	if disc < 0.0 {
		sq := math.Sqrt(-0.25 * disc)
		r := -0.5 * de
		t1 := math.Cbrt(r+sq) + math.Cbrt(r-sq)
		return []float64{t1 - c2}
	} else if disc == 0.0 {
		t1 := math.Copysign(math.Sqrt(-d0), de)
		return []float64{t1 - c2, -2.0*t1 - c2}
	}

	th := math.Atan2(math.Sqrt(disc), -de) * oneThird
	thSin, thCos := math.Sincos(th)

	r0 := thCos
	ss3 := thSin * math.Sqrt(3.0)
	r1 := 0.5 * (-thCos + ss3)
	r2 := 0.5 * (-thCos - ss3)
	t := 2.0 * math.Sqrt(-d0)

	return []float64{
		t*r0 - c2,
		t*r1 - c2,
		t*r2 - c2,
	}
}

// QuadraticInUnitInterval returns roots of Quadratic that lie in [0, 1].
func QuadraticInUnitInterval(a, b, c float64) []float64 {
	return filterRootsToUnitInterval(Quadratic(a, b, c))
}

// CubicInUnitInterval returns roots of Cubic that lie in [0, 1].
func CubicInUnitInterval(a, b, c, d float64) []float64 {
	return filterRootsToUnitInterval(Cubic(a, b, c, d))
}

func filterRootsToUnitInterval(roots []float64) []float64 {
	if len(roots) == 0 {
		return nil
	}

	const eps = 1e-12
	result := make([]float64, 0, len(roots))
	for _, r := range roots {
		if r >= -eps && r <= 1.0+eps {
			if r < 0.0 {
				r = 0.0
			} else if r > 1.0 {
				r = 1.0
			}
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func isFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

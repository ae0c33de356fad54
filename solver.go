package gg

import (
	"math"

	"github.com/gogpu/vgraph/internal/solve"
)

// Polynomial root solvers for quadratic and cubic equations.
// These are used for curve operations like finding extrema and intersections.
//
// Based on algorithms from kurbo (https://github.com/linebender/kurbo)
// with adaptations for Go idioms. The actual solving lives in
// internal/solve so other internal packages (the intersection tester,
// in particular) can reuse it without importing this package.

// SolveQuadratic finds real roots of the quadratic equation ax^2 + bx + c = 0.
// Returns roots sorted in ascending order.
//
// The function is numerically robust:
// - If a is zero or nearly zero, treats as linear equation
// - If all coefficients are zero, returns a single 0.0
// - Handles edge cases with NaN and Inf gracefully
func SolveQuadratic(a, b, c float64) []float64 {
	return solve.Quadratic(a, b, c)
}

// SolveCubic finds real roots of the cubic equation ax^3 + bx^2 + cx + d = 0.
// Returns roots (not necessarily sorted).
//
// The implementation uses the method from:
// https://momentsingraphics.de/CubicRoots.html
// which is based on Jim Blinn's "How to Solve a Cubic Equation".
func SolveCubic(a, b, c, d float64) []float64 {
	return solve.Cubic(a, b, c, d)
}

// SolveQuadraticInUnitInterval returns roots of ax^2 + bx + c = 0 that lie in [0, 1].
// This is useful for finding parameter values on Bezier curves.
func SolveQuadraticInUnitInterval(a, b, c float64) []float64 {
	return solve.QuadraticInUnitInterval(a, b, c)
}

// SolveCubicInUnitInterval returns roots of ax^3 + bx^2 + cx + d = 0 that lie in [0, 1].
// This is useful for finding parameter values on Bezier curves.
func SolveCubicInUnitInterval(a, b, c, d float64) []float64 {
	return solve.CubicInUnitInterval(a, b, c, d)
}

// isFinite returns true if x is neither infinite nor NaN.
func isFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

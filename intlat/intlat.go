/*
 * intlat.go, part of goCE.
 *
 * Copyright 2023 The goCE developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package intlat implements exact integer lattice algebra: GCD/LCM reductions,
//rational approximation, vector integerization, complete enumeration of
//integer points on bounded hyperplanes, and norm-minimal null-space bases.
//Everything here is deterministic and exact; floating point only enters as
//the input of the rationalization routines and in rank checks.
package intlat

import (
	"fmt"
	"math"
)

//Default search parameters for rationalization, suited to mole-fraction
//vectors with small denominators.
const (
	DefaultMaxDenominator = 100
	DefaultTolerance      = 1e-5
)

// GCD returns the greatest common divisor of a and b by the Euclidean
// algorithm. GCD(0,0) is 0 and the result is never negative.
func GCD(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b. By convention LCM(0,0) is
// 0 and LCM(0,b) is |b|, so that LCM stays usable as a list reduction.
func LCM(a, b int) int {
	if a == 0 && b == 0 {
		return 0
	}
	if a == 0 {
		if b < 0 {
			return -b
		}
		return b
	}
	if b == 0 {
		if a < 0 {
			return -a
		}
		return a
	}
	r := a / GCD(a, b) * b
	if r < 0 {
		r = -r
	}
	return r
}

// GCDList reduces GCD over vs. The empty reduction is 0.
func GCDList(vs ...int) int {
	g := 0
	for _, v := range vs {
		g = GCD(g, v)
	}
	return g
}

// LCMList reduces LCM over vs. The empty reduction is 1.
func LCMList(vs ...int) int {
	l := 1
	for _, v := range vs {
		l = LCM(l, v)
	}
	return l
}

// Rationalize finds the rational num/den closest to x with den at most
// maxDen, searching denominators in increasing order and returning the first
// pair within tol. Values within tol of zero give (0, 1). If no pair exists
// within the search bound, the value is reported as unrepresentable.
func Rationalize(x float64, maxDen int, tol float64) (num, den int, err error) {
	if maxDen < 1 {
		return 0, 0, newBoundsError(fmt.Sprintf("Rationalize: max denominator %d below 1", maxDen))
	}
	if tol <= 0 {
		return 0, 0, newBoundsError("Rationalize: tolerance must be positive")
	}
	if math.Abs(x) < tol {
		return 0, 1, nil
	}
	for d := 1; d <= maxDen; d++ {
		n := int(math.Round(x * float64(d)))
		if math.Abs(float64(n)/float64(d)-x) < tol {
			return n, d, nil
		}
	}
	return 0, 0, newRationalError(fmt.Sprintf("Rationalize: %v has no rational form with denominator <= %d within %.2g", x, maxDen, tol))
}

// IntegerizeVector rationalizes every component of v, scales the vector by
// the LCM of the denominators and rounds. It returns the integer vector and
// the scale factor. Exactness is guaranteed for rational inputs with
// denominators within the search bound.
func IntegerizeVector(v []float64, maxDen int, tol float64) ([]int, int, error) {
	if len(v) == 0 {
		return nil, 0, newBoundsError("IntegerizeVector: empty vector")
	}
	dens := make([]int, len(v))
	for i, x := range v {
		_, d, err := Rationalize(x, maxDen, tol)
		if err != nil {
			return nil, 0, errDecorate(err, fmt.Sprintf("IntegerizeVector: component %d", i))
		}
		dens[i] = d
	}
	mul := LCMList(dens...)
	r := make([]int, len(v))
	for i, x := range v {
		r[i] = int(math.Round(x * float64(mul)))
	}
	return r, mul, nil
}

// IntegerizeRows integerizes a set of vectors with one shared scale factor,
// the LCM of every component's denominator.
func IntegerizeRows(rows [][]float64, maxDen int, tol float64) ([][]int, int, error) {
	if len(rows) == 0 {
		return nil, 0, newBoundsError("IntegerizeRows: no rows")
	}
	mul := 1
	for i, row := range rows {
		for j, x := range row {
			_, d, err := Rationalize(x, maxDen, tol)
			if err != nil {
				return nil, 0, errDecorate(err, fmt.Sprintf("IntegerizeRows: row %d component %d", i, j))
			}
			mul = LCM(mul, d)
		}
	}
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = make([]int, len(row))
		for j, x := range row {
			out[i][j] = int(math.Round(x * float64(mul)))
		}
	}
	return out, mul, nil
}

/*
 * cestat.go, part of goCE.
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

//Package cestat estimates statistical properties of Monte Carlo series:
//autocorrelation, decorrelation times, energy histograms and the lower
//convex hull of energy against composition.
package cestat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//AutoCorr returns the normalized autocorrelation of the series at lags
//0 to len(x)-1, estimated with the biased denominator. A series with no
//variance correlates perfectly with itself at lag 0 only.
func AutoCorr(x []float64) ([]float64, error) {
	n := len(x)
	if n < 2 {
		return nil, newConstraintError(fmt.Sprintf("cestat.AutoCorr: need at least 2 points, got %d", n))
	}
	mean := stat.Mean(x, nil)
	//pad to the next power of two past 2n so circular correlation
	//equals linear correlation at all lags below n
	m := 1
	for m < 2*n {
		m <<= 1
	}
	padded := make([]float64, m)
	for i, v := range x {
		padded[i] = v - mean
	}
	fft := fourier.NewFFT(m)
	coeff := fft.Coefficients(nil, padded)
	for i, c := range coeff {
		coeff[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	cov := fft.Sequence(nil, coeff)
	out := make([]float64, n)
	out[0] = 1
	if cov[0] <= 0 {
		return out, nil
	}
	for k := 1; k < n; k++ {
		out[k] = cov[k] / cov[0]
	}
	return out, nil
}

//DecorrelationTime returns the integrated autocorrelation time of the
//series, summing lags up to the first non-positive autocorrelation. A
//fully decorrelated series has a time of 1.
func DecorrelationTime(x []float64) (float64, error) {
	rho, err := AutoCorr(x)
	if err != nil {
		return 0, errDecorate(err, "DecorrelationTime")
	}
	tau := 1.0
	for k := 1; k < len(rho); k++ {
		if rho[k] <= 0 {
			break
		}
		tau += 2 * rho[k]
	}
	return tau, nil
}

//Histogram bins the series into nbins equal-width bins spanning its
//range. It returns the nbins+1 bin dividers and the count in each bin.
func Histogram(x []float64, nbins int) ([]float64, []float64, error) {
	if nbins < 1 {
		return nil, nil, newConstraintError(fmt.Sprintf("cestat.Histogram: need a positive bin count, got %d", nbins))
	}
	if len(x) == 0 {
		return nil, nil, newConstraintError("cestat.Histogram: empty series")
	}
	lo := floats.Min(x)
	//the top divider is nudged up so the maximum lands in the last bin
	hi := math.Nextafter(floats.Max(x), math.Inf(1))
	dividers := make([]float64, nbins+1)
	floats.Span(dividers, lo, hi)
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	counts := stat.Histogram(nil, dividers, sorted, nil)
	return dividers, counts, nil
}

//LowerHull returns the indices of the points on the lower convex hull
//of the set (x[i], y[i]), ordered by increasing x. Points interior to
//the hull and points on straight hull edges are left out.
func LowerHull(x, y []float64) ([]int, error) {
	if len(x) != len(y) {
		return nil, newConstraintError(fmt.Sprintf("cestat.LowerHull: %d abscissae against %d ordinates", len(x), len(y)))
	}
	if len(x) == 0 {
		return nil, newConstraintError("cestat.LowerHull: no points")
	}
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if x[ia] != x[ib] {
			return x[ia] < x[ib]
		}
		return y[ia] < y[ib]
	})
	hull := make([]int, 0, len(order))
	for _, i := range order {
		for len(hull) >= 2 {
			o, a := hull[len(hull)-2], hull[len(hull)-1]
			if cross(x[o], y[o], x[a], y[a], x[i], y[i]) > 0 {
				break
			}
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, i)
	}
	return hull, nil
}

//cross is the z component of (a-o) x (b-o). Positive means the turn at
//a is counterclockwise.
func cross(ox, oy, ax, ay, bx, by float64) float64 {
	return (ax-ox)*(by-oy) - (ay-oy)*(bx-ox)
}

//HullDistances returns, for every point, its energy above the lower
//hull: zero for hull vertices, positive elsewhere. The hull argument
//comes from LowerHull over the same points.
func HullDistances(x, y []float64, hull []int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, newConstraintError(fmt.Sprintf("cestat.HullDistances: %d abscissae against %d ordinates", len(x), len(y)))
	}
	if len(hull) == 0 {
		return nil, newConstraintError("cestat.HullDistances: empty hull")
	}
	dist := make([]float64, len(x))
	for i := range x {
		h, err := hullEnergy(x, y, hull, x[i])
		if err != nil {
			return nil, errDecorate(err, "HullDistances")
		}
		dist[i] = y[i] - h
	}
	return dist, nil
}

//hullEnergy interpolates the hull energy at abscissa xq.
func hullEnergy(x, y []float64, hull []int, xq float64) (float64, error) {
	first, last := hull[0], hull[len(hull)-1]
	if xq < x[first] || xq > x[last] {
		return 0, newConstraintError(fmt.Sprintf("cestat.hullEnergy: abscissa %g outside the hull range [%g, %g]", xq, x[first], x[last]))
	}
	for k := 1; k < len(hull); k++ {
		a, b := hull[k-1], hull[k]
		if xq > x[b] {
			continue
		}
		if x[b] == x[a] {
			return y[a], nil
		}
		t := (xq - x[a]) / (x[b] - x[a])
		return y[a] + t*(y[b]-y[a]), nil
	}
	return y[last], nil
}

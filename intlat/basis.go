/*
 * basis.go, part of goCE.
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

package intlat

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Dot returns the inner product of a and b, which must have equal length.
func Dot(a, b []int) int {
	s := 0
	for i, v := range a {
		s += v * b[i]
	}
	return s
}

// MaxAbs returns the largest absolute component of v, 0 for an empty vector.
func MaxAbs(v []int) int {
	m := 0
	for _, x := range v {
		if x < 0 {
			x = -x
		}
		if x > m {
			m = x
		}
	}
	return m
}

// FormulaNorm measures how many sites a null vector touches when read as a
// species exchange. Coordinates are partitioned into groups; within each
// group the implied balance on the remaining species is the negated
// component sum. The norm adds up the positive parts per group, so it counts
// the sites filled (equivalently, emptied) by applying the vector once.
func FormulaNorm(v []int, groups [][]int) int {
	norm := 0
	for _, g := range groups {
		sum, pos := 0, 0
		for _, k := range g {
			c := v[k]
			sum += c
			if c > 0 {
				pos += c
			}
		}
		if bal := -sum; bal > 0 {
			pos += bal
		}
		norm += pos
	}
	return norm
}

// MinimalBasis returns an integer basis of the null space of normal, with
// the vectors chosen greedily by increasing FormulaNorm under groups and,
// on ties, by increasing MaxAbs. Coordinates where normal vanishes
// contribute plain unit vectors. For a nonzero normal of dimension d the
// basis has d-1 vectors; for the zero normal it has d.
//
// The search runs in a standard form with the nonzero coefficients made
// positive and sorted ascending, inside the box spanned by the pairwise
// two-coordinate solutions (+lcm/ci at i, -lcm/cj at j for i < j). The
// enumeration order in that box breaks the remaining ties, so the result is
// deterministic.
//
// groups must partition the coordinate indices 0..d-1.
func MinimalBasis(normal []int, groups [][]int) ([][]int, error) {
	d := len(normal)
	if d == 0 {
		return nil, newBoundsError("MinimalBasis: empty normal")
	}
	if err := checkPartition(d, groups); err != nil {
		return nil, errDecorate(err, "MinimalBasis")
	}
	//Negative coordinates first, matching the sign convention used when
	//mapping solutions back below.
	var zeroIDs, liveIDs []int
	for i, n := range normal {
		if n == 0 {
			zeroIDs = append(zeroIDs, i)
		}
		if n < 0 {
			liveIDs = append(liveIDs, i)
		}
	}
	for i, n := range normal {
		if n > 0 {
			liveIDs = append(liveIDs, i)
		}
	}
	basis := make([][]int, 0, d)
	for _, i := range zeroIDs {
		basis = append(basis, unitVec(d, i))
	}
	if len(liveIDs) <= 1 {
		return basis, nil
	}

	g := 0
	for _, i := range liveIDs {
		g = GCD(g, normal[i])
	}
	type entry struct {
		orig int //original coordinate
		c    int //positive primitive coefficient
	}
	entries := make([]entry, len(liveIDs))
	for k, i := range liveIDs {
		c := normal[i] / g
		if c < 0 {
			c = -c
		}
		entries[k] = entry{orig: i, c: c}
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].c < entries[b].c })
	coefs := make([]int, len(entries))
	for p, e := range entries {
		coefs[p] = e.c
	}

	bounds := make([][2]int, len(coefs))
	for i := 0; i < len(coefs); i++ {
		for j := i + 1; j < len(coefs); j++ {
			l := LCM(coefs[i], coefs[j])
			if up := l / coefs[i]; up > bounds[i][1] {
				bounds[i][1] = up
			}
			if lo := -l / coefs[j]; lo < bounds[j][0] {
				bounds[j][0] = lo
			}
		}
	}
	pts, err := HyperplanePoints(coefs, 0, bounds)
	if err != nil {
		return nil, errDecorate(err, "MinimalBasis")
	}
	cands := make([][]int, 0, len(pts))
	for _, p := range pts {
		if MaxAbs(p) == 0 {
			continue
		}
		v := make([]int, d)
		for k, e := range entries {
			if normal[e.orig] < 0 {
				v[e.orig] = p[k]
			} else {
				v[e.orig] = -p[k]
			}
		}
		cands = append(cands, v)
	}
	sort.SliceStable(cands, func(a, b int) bool {
		na, nb := FormulaNorm(cands[a], groups), FormulaNorm(cands[b], groups)
		if na != nb {
			return na < nb
		}
		return MaxAbs(cands[a]) < MaxAbs(cands[b])
	})

	need := len(liveIDs) - 1
	chosen := make([][]int, 0, need)
	for _, c := range cands {
		if len(chosen) == need {
			break
		}
		trial := append(chosen[:len(chosen):len(chosen)], c)
		if intRank(trial) > len(chosen) {
			chosen = trial
		}
	}
	if len(chosen) < need {
		return nil, newRankError(fmt.Sprintf("MinimalBasis: found %d independent vectors, need %d", len(chosen), need))
	}
	return append(basis, chosen...), nil
}

func checkPartition(d int, groups [][]int) error {
	seen := make([]bool, d)
	total := 0
	for _, g := range groups {
		for _, k := range g {
			if k < 0 || k >= d {
				return newBoundsError(fmt.Sprintf("coordinate index %d outside 0..%d", k, d-1))
			}
			if seen[k] {
				return newBoundsError(fmt.Sprintf("coordinate index %d repeated across groups", k))
			}
			seen[k] = true
			total++
		}
	}
	if total != d {
		return newBoundsError(fmt.Sprintf("groups cover %d of %d coordinates", total, d))
	}
	return nil
}

func unitVec(d, i int) []int {
	v := make([]int, d)
	v[i] = 1
	return v
}

//intRank computes the rank of the row set by singular values.
func intRank(vecs [][]int) int {
	if len(vecs) == 0 {
		return 0
	}
	r, c := len(vecs), len(vecs[0])
	m := mat.NewDense(r, c, nil)
	for i, v := range vecs {
		for j, x := range v {
			m.Set(i, j, float64(x))
		}
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return 0
	}
	vals := svd.Values(nil)
	max := 0.0
	for _, s := range vals {
		if s > max {
			max = s
		}
	}
	if max == 0 {
		return 0
	}
	dim := r
	if c > dim {
		dim = c
	}
	tol := 1e-12 * max * float64(dim)
	rank := 0
	for _, s := range vals {
		if s > tol {
			rank++
		}
	}
	return rank
}

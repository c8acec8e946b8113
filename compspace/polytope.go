/*
 * polytope.go, part of goCE.
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

package compspace

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/tsaari/goce/intlat"
)

const (
	vertexTol = 1e-8
	dedupeTol = 1e-7
)

// UnitVertices returns the extreme points of the per-primitive-cell
// composition polytope in unconstrained coordinates: the intersection of the
// per-sublattice simplices with the charge constraint and any extra
// constraints. Vertices are found by activating every d-nEq subset of the
// inequality constraints against the equalities and keeping the feasible
// solutions of the square systems. The result is cached.
func (s *Space) UnitVertices() ([][]float64, error) {
	if s.unitVerts == nil {
		verts, err := s.enumerateVertices()
		if err != nil {
			return nil, err
		}
		s.unitVerts = verts
	}
	return copyRows(s.unitVerts), nil
}

//Vertices returns the polytope vertices scaled to the given supercell size.
func (s *Space) Vertices(scSize int) ([][]float64, error) {
	if scSize < 1 {
		return nil, newConstraintError(fmt.Sprintf("Vertices: supercell size %d below 1", scSize))
	}
	unit, err := s.UnitVertices()
	if err != nil {
		return nil, errDecorate(err, "Vertices")
	}
	for _, v := range unit {
		floats.Scale(float64(scSize), v)
	}
	return unit, nil
}

func (s *Space) enumerateVertices() ([][]float64, error) {
	d := s.UnconstrainedDim()
	if d == 0 {
		return [][]float64{}, nil
	}
	var eqRows [][]float64
	var eqRHS []float64
	if s.Charged() {
		row := make([]float64, d)
		for k, q := range s.charges {
			row[k] = float64(q)
		}
		eqRows = append(eqRows, row)
		eqRHS = append(eqRHS, float64(-s.bg))
	}
	var ineqRows [][]float64
	var ineqRHS []float64
	for k := 0; k < d; k++ {
		row := make([]float64, d)
		row[k] = -1
		ineqRows = append(ineqRows, row)
		ineqRHS = append(ineqRHS, 0)
	}
	for p, sub := range s.subs {
		if len(s.groups[p]) == 0 {
			continue
		}
		row := make([]float64, d)
		for _, k := range s.groups[p] {
			row[k] = 1
		}
		ineqRows = append(ineqRows, row)
		ineqRHS = append(ineqRHS, float64(sub.Sites()))
	}
	for _, c := range s.cons {
		row, rhs := s.unconstrainedRow(c)
		switch c.rel {
		case RelEq:
			eqRows = append(eqRows, row)
			eqRHS = append(eqRHS, rhs)
		case RelLeq:
			ineqRows = append(ineqRows, row)
			ineqRHS = append(ineqRHS, rhs)
		case RelGeq:
			neg := make([]float64, d)
			floats.AddScaled(neg, -1, row)
			ineqRows = append(ineqRows, neg)
			ineqRHS = append(ineqRHS, -rhs)
		}
	}
	nAct := d - len(eqRows)
	if nAct < 0 {
		return nil, newInfeasibleError("vertex enumeration: more equality constraints than dimensions")
	}
	var combos [][]int
	if nAct == 0 {
		combos = [][]int{{}}
	} else {
		combos = combin.Combinations(len(ineqRows), nAct)
	}
	a := mat.NewDense(d, d, nil)
	b := mat.NewVecDense(d, nil)
	var verts [][]float64
	for _, combo := range combos {
		for i, row := range eqRows {
			a.SetRow(i, row)
			b.SetVec(i, eqRHS[i])
		}
		for i, idx := range combo {
			a.SetRow(len(eqRows)+i, ineqRows[idx])
			b.SetVec(len(eqRows)+i, ineqRHS[idx])
		}
		var x mat.VecDense
		if err := x.SolveVec(a, b); err != nil {
			continue
		}
		cand := make([]float64, d)
		for k := range cand {
			cand[k] = x.AtVec(k)
		}
		if !feasible(cand, ineqRows, ineqRHS) {
			continue
		}
		dup := false
		for _, v := range verts {
			if floats.Distance(v, cand, 2) < dedupeTol {
				dup = true
				break
			}
		}
		if !dup {
			verts = append(verts, cand)
		}
	}
	if len(verts) == 0 {
		return nil, newInfeasibleError("vertex enumeration: composition polytope is empty")
	}
	sort.Slice(verts, func(i, j int) bool {
		for k := range verts[i] {
			if verts[i][k] != verts[j][k] {
				return verts[i][k] < verts[j][k]
			}
		}
		return false
	})
	return verts, nil
}

func feasible(x []float64, rows [][]float64, rhs []float64) bool {
	for i, row := range rows {
		if floats.Dot(row, x) > rhs[i]+vertexTol {
			return false
		}
	}
	return true
}

// Grid enumerates every valid integer composition at the given supercell
// size, in unconstrained coordinates: nonnegative integer vectors on the
// charge-balance hyperplane within the per-sublattice site totals, further
// filtered by the extra constraints. The result is cached per size. A
// supercell too small to admit any integer composition is reported as
// infeasible.
func (s *Space) Grid(scSize int) ([][]int, error) {
	if scSize < 1 {
		return nil, newConstraintError(fmt.Sprintf("Grid: supercell size %d below 1", scSize))
	}
	if g, ok := s.grids[scSize]; ok {
		return copyIntRows(g), nil
	}
	d := s.UnconstrainedDim()
	bounds := make([][2]int, d)
	for k := 0; k < d; k++ {
		bounds[k] = [2]int{0, s.sublatticeBound(k, scSize)}
	}
	pts, err := intlat.HyperplanePoints(s.charges, -s.bg*scSize, bounds)
	if err != nil {
		return nil, errDecorate(err, "Grid")
	}
	var grid [][]int
	for _, x := range pts {
		if !s.withinSimplex(x, scSize) || !s.meetsConstraints(x, scSize) {
			continue
		}
		grid = append(grid, x)
	}
	if len(grid) == 0 {
		return nil, newInfeasibleError(fmt.Sprintf("Grid: no integer composition at supercell size %d", scSize))
	}
	s.grids[scSize] = grid
	return copyIntRows(grid), nil
}

func (s *Space) withinSimplex(x []int, scSize int) bool {
	for p, sub := range s.subs {
		sum := 0
		for _, k := range s.groups[p] {
			sum += x[k]
		}
		if sum > sub.Sites()*scSize {
			return false
		}
	}
	return true
}

func (s *Space) meetsConstraints(x []int, scSize int) bool {
	if len(s.cons) == 0 {
		return true
	}
	xf := make([]float64, len(x))
	for k, v := range x {
		xf[k] = float64(v)
	}
	for _, c := range s.cons {
		row, rhs := s.unconstrainedRow(c)
		v := floats.Dot(row, xf)
		want := rhs * float64(scSize)
		switch c.rel {
		case RelEq:
			if v < want-vertexTol || v > want+vertexTol {
				return false
			}
		case RelLeq:
			if v > want+vertexTol {
				return false
			}
		case RelGeq:
			if v < want-vertexTol {
				return false
			}
		}
	}
	return true
}

// IntVertices returns the grid points that are extreme points of the grid's
// convex hull at the given supercell size. A point is extreme exactly when
// no convex combination of the other grid points reproduces it, which is
// decided by linear-programming feasibility. LP failures other than a clean
// infeasibility keep the point, which can only enlarge the reported hull.
func (s *Space) IntVertices(scSize int) ([][]int, error) {
	if v, ok := s.intVerts[scSize]; ok {
		return copyIntRows(v), nil
	}
	grid, err := s.Grid(scSize)
	if err != nil {
		return nil, errDecorate(err, "IntVertices")
	}
	d := s.UnconstrainedDim()
	var verts [][]int
	for i, p := range grid {
		if len(grid) == 1 {
			verts = append(verts, p)
			break
		}
		a := mat.NewDense(d+1, len(grid)-1, nil)
		b := make([]float64, d+1)
		col := 0
		for j, q := range grid {
			if j == i {
				continue
			}
			for k := 0; k < d; k++ {
				a.Set(k, col, float64(q[k]))
			}
			a.Set(d, col, 1)
			col++
		}
		for k := 0; k < d; k++ {
			b[k] = float64(p[k])
		}
		b[d] = 1
		c := make([]float64, len(grid)-1)
		//a nil error means p is a convex combination of the others
		_, _, lpErr := lp.Simplex(c, a, b, 1e-10, nil)
		if lpErr == nil {
			continue
		}
		verts = append(verts, p)
	}
	s.intVerts[scSize] = verts
	return copyIntRows(verts), nil
}

//Centroid returns the grid point closest to the average of all grid points
//at the given supercell size, a deterministic interior starting composition.
func (s *Space) Centroid(scSize int) ([]int, error) {
	grid, err := s.Grid(scSize)
	if err != nil {
		return nil, errDecorate(err, "Centroid")
	}
	d := s.UnconstrainedDim()
	mean := make([]float64, d)
	for _, p := range grid {
		for k, v := range p {
			mean[k] += float64(v)
		}
	}
	floats.Scale(1/float64(len(grid)), mean)
	best, bestDist := 0, 0.0
	for i, p := range grid {
		dist := 0.0
		for k, v := range p {
			diff := float64(v) - mean[k]
			dist += diff * diff
		}
		if i == 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return grid[best], nil
}

//RandomPoint returns a grid point drawn uniformly at the given supercell
//size.
func (s *Space) RandomPoint(scSize int, rng *rand.Rand) ([]int, error) {
	if rng == nil {
		return nil, newConstraintError("RandomPoint: nil random source")
	}
	grid, err := s.Grid(scSize)
	if err != nil {
		return nil, errDecorate(err, "RandomPoint")
	}
	return grid[rng.Intn(len(grid))], nil
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

func copyIntRows(rows [][]int) [][]int {
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = append([]int(nil), r...)
	}
	return out
}

/*
 * polytope_test.go, part of goCE.
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
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsaari/goce/intlat"
)

func sortIntPoints(pts [][]int) {
	sort.Slice(pts, func(a, b int) bool {
		for k := range pts[a] {
			if pts[a][k] != pts[b][k] {
				return pts[a][k] < pts[b][k]
			}
		}
		return false
	})
}

func TestUnitVertices(Te *testing.T) {
	s := lmtpoSpace(Te)
	verts, err := s.UnitVertices()
	require.NoError(Te, err)
	want := [][]float64{
		{0, 1, 1},
		{1.0 / 3.0, 0, 1},
		{0.5, 0.5, 0},
		{2.0 / 3.0, 0, 0},
	}
	require.Len(Te, verts, len(want))
	for i, v := range verts {
		assert.InDeltaSlice(Te, want[i], v, 1e-9, "vertex %d", i)
	}

	scaled, err := s.Vertices(6)
	require.NoError(Te, err)
	for i, v := range scaled {
		for k := range v {
			assert.InDelta(Te, want[i][k]*6, v[k], 1e-9)
		}
	}
}

func TestGrid(Te *testing.T) {
	s := lmtpoSpace(Te)
	grid6, err := s.Grid(6)
	require.NoError(Te, err)
	assert.Len(Te, grid6, 14)
	grid5, err := s.Grid(5)
	require.NoError(Te, err)
	assert.Len(Te, grid5, 10)

	//every point balances the background charge and respects site totals
	for _, x := range grid6 {
		assert.Equal(Te, -s.BackgroundCharge()*6, intlat.Dot(s.ExcitationCharges(), x))
		assert.LessOrEqual(Te, x[0]+x[1], 6)
		assert.LessOrEqual(Te, x[2], 6)
	}
	assert.Contains(Te, grid6, []int{3, 1, 2})
	assert.Contains(Te, grid6, []int{0, 6, 6})

	//grids are cached and the caller cannot poison the cache
	first := append([]int(nil), grid6[0]...)
	grid6[0][0] = -999
	again, err := s.Grid(6)
	require.NoError(Te, err)
	assert.Contains(Te, again, first)
	assert.NotContains(Te, again, grid6[0])
}

func TestIntVertices(Te *testing.T) {
	s := lmtpoSpace(Te)
	verts, err := s.IntVertices(6)
	require.NoError(Te, err)
	sortIntPoints(verts)
	assert.Equal(Te, [][]int{{0, 6, 6}, {2, 0, 6}, {3, 3, 0}, {4, 0, 0}}, verts)

	//interior grid points are not extreme
	flat := make(map[[3]int]bool)
	for _, v := range verts {
		flat[[3]int{v[0], v[1], v[2]}] = true
	}
	assert.False(Te, flat[[3]int{3, 1, 2}])
	assert.False(Te, flat[[3]int{2, 3, 3}])
}

func TestGridWithConstraints(Te *testing.T) {
	subs := lmtpoSpace(Te).Sublattices()

	//at least 40% lithium per primitive cell
	c, err := ConstraintFromMap(subs, map[string]float64{"Li+": 1}, 0.4, RelGeq)
	require.NoError(Te, err)
	s := lmtpoSpace(Te, c)
	grid, err := s.Grid(6)
	require.NoError(Te, err)
	assert.Len(Te, grid, 5)
	for _, x := range grid {
		assert.GreaterOrEqual(Te, x[0], 3)
	}

	//lithium fraction capped at one half
	bounds, err := ConcentrationBounds(subs, 0, "Li+", 0, 0.5)
	require.NoError(Te, err)
	s = lmtpoSpace(Te, bounds...)
	grid, err = s.Grid(6)
	require.NoError(Te, err)
	assert.Len(Te, grid, 13)
	for _, x := range grid {
		assert.LessOrEqual(Te, x[0], 3)
	}

	//contradictory bounds empty the polytope
	impossible, err := ConstraintFromMap(subs, map[string]float64{"Li+": 1}, 0.9, RelGeq)
	require.NoError(Te, err)
	s = lmtpoSpace(Te, impossible)
	_, err = s.Grid(6)
	assert.Error(Te, err)

	_, err = ConstraintFromMap(subs, map[string]float64{"Na+": 1}, 0.5, RelLeq)
	assert.Error(Te, err)
	_, err = ConcentrationBounds(subs, 0, "Na+", 0, 1)
	assert.Error(Te, err)
	_, err = ConcentrationBounds(subs, 5, "Li+", 0, 1)
	assert.Error(Te, err)
}

func TestCentroidAndRandomPoint(Te *testing.T) {
	s := lmtpoSpace(Te)
	center, err := s.Centroid(6)
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 3, 3}, center)

	rng := rand.New(rand.NewSource(7))
	grid, err := s.Grid(6)
	require.NoError(Te, err)
	for i := 0; i < 20; i++ {
		p, err := s.RandomPoint(6, rng)
		require.NoError(Te, err)
		assert.Contains(Te, grid, p)
	}
	_, err = s.RandomPoint(6, nil)
	assert.Error(Te, err)
}

/*
 * grid.go, part of goCE.
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

import "fmt"

//MaxEnumerationVolume caps the number of bounding-box cells HyperplanePoints
//will visit. Boxes above the cap are rejected instead of searched.
const MaxEnumerationVolume = 1 << 22

// HyperplanePoints enumerates every integer point x with normal . x == rhs
// inside the box bounds, where bounds[i] is the inclusive [low, high] range
// of coordinate i. Zero normal components are free coordinates and are
// enumerated over their full range. The bounds are validated before any
// search: inverted ranges and boxes whose volume exceeds
// MaxEnumerationVolume are rejected.
//
// The returned points are in deterministic order, with later coordinates
// varying slowest. An empty result with a nil error means the plane simply
// misses the box.
func HyperplanePoints(normal []int, rhs int, bounds [][2]int) ([][]int, error) {
	if len(normal) == 0 {
		return nil, newBoundsError("HyperplanePoints: empty normal")
	}
	if len(bounds) != len(normal) {
		return nil, newBoundsError(fmt.Sprintf("HyperplanePoints: %d bounds for %d coordinates", len(bounds), len(normal)))
	}
	volume := 1
	for i, b := range bounds {
		if b[0] > b[1] {
			return nil, newBoundsError(fmt.Sprintf("HyperplanePoints: inverted bounds [%d, %d] on coordinate %d", b[0], b[1], i))
		}
		width := b[1] - b[0] + 1
		if volume > MaxEnumerationVolume/width {
			return nil, newBoundsError(fmt.Sprintf("HyperplanePoints: box volume exceeds %d cells", MaxEnumerationVolume))
		}
		volume *= width
	}
	var points [][]int
	buf := make([]int, len(normal))
	hyperplaneRecurse(normal, rhs, bounds, len(normal), buf, &points)
	return points, nil
}

//hyperplaneRecurse fixes coordinate d-1 and recurses on the remaining prefix
//with the residual right-hand side.
func hyperplaneRecurse(normal []int, rhs int, bounds [][2]int, d int, buf []int, points *[][]int) {
	lo, hi := bounds[d-1][0], bounds[d-1][1]
	a := normal[d-1]
	if d == 1 {
		if a == 0 {
			if rhs != 0 {
				return
			}
			for x := lo; x <= hi; x++ {
				buf[0] = x
				*points = append(*points, append([]int(nil), buf...))
			}
			return
		}
		if rhs%a != 0 {
			return
		}
		x := rhs / a
		if x < lo || x > hi {
			return
		}
		buf[0] = x
		*points = append(*points, append([]int(nil), buf...))
		return
	}
	for x := lo; x <= hi; x++ {
		buf[d-1] = x
		hyperplaneRecurse(normal, rhs-a*x, bounds, d-1, buf, points)
	}
}

/*
 * supercell.go, part of goCE.
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

package ce

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

//Default screening thresholds for supercell matrices.
const (
	DefaultMaxCond  = 8.0  //maximum condition number of the supercell lattice
	DefaultMinAngle = 30.0 //minimum angle between supercell vectors, degrees
)

// Det3 returns the determinant of an integer 3x3 matrix.
func Det3(m [3][3]int) int {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

//adj3 returns the adjugate, so that m times adj3(m) equals Det3(m) times the
//identity. Exact integer arithmetic.
func adj3(m [3][3]int) [3][3]int {
	var a [3][3]int
	a[0][0] = m[1][1]*m[2][2] - m[1][2]*m[2][1]
	a[0][1] = -(m[0][1]*m[2][2] - m[0][2]*m[2][1])
	a[0][2] = m[0][1]*m[1][2] - m[0][2]*m[1][1]
	a[1][0] = -(m[1][0]*m[2][2] - m[1][2]*m[2][0])
	a[1][1] = m[0][0]*m[2][2] - m[0][2]*m[2][0]
	a[1][2] = -(m[0][0]*m[1][2] - m[0][2]*m[1][0])
	a[2][0] = m[1][0]*m[2][1] - m[1][1]*m[2][0]
	a[2][1] = -(m[0][0]*m[2][1] - m[0][1]*m[2][0])
	a[2][2] = m[0][0]*m[1][1] - m[0][1]*m[1][0]
	return a
}

//latticeTranslations enumerates the Det3(sc) primitive-lattice translations
//that fall inside the supercell spanned by sc, in lexicographic order. The
//membership test is exact: t is inside iff 0 <= (t adj)(k) < det for every k.
func latticeTranslations(sc [3][3]int) ([][3]int, error) {
	det := Det3(sc)
	if det <= 0 {
		return nil, newConstraintError("latticeTranslations: supercell matrix must have a positive determinant")
	}
	adj := adj3(sc)
	lo := [3]int{0, 0, 0}
	hi := [3]int{0, 0, 0}
	for b0 := 0; b0 <= 1; b0++ {
		for b1 := 0; b1 <= 1; b1++ {
			for b2 := 0; b2 <= 1; b2++ {
				for k := 0; k < 3; k++ {
					c := b0*sc[0][k] + b1*sc[1][k] + b2*sc[2][k]
					if c < lo[k] {
						lo[k] = c
					}
					if c > hi[k] {
						hi[k] = c
					}
				}
			}
		}
	}
	var out [][3]int
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				t := [3]int{x, y, z}
				inside := true
				for k := 0; k < 3; k++ {
					v := t[0]*adj[0][k] + t[1]*adj[1][k] + t[2]*adj[2][k]
					if v < 0 || v >= det {
						inside = false
						break
					}
				}
				if inside {
					out = append(out, t)
				}
			}
		}
	}
	if len(out) != det {
		return nil, newConstraintError(fmt.Sprintf("latticeTranslations: found %d translations, want %d", len(out), det))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][2] < out[j][2]
	})
	return out, nil
}

// SupercellDecoder is the default Decoder: it expands a primitive cell by an
// integer supercell matrix and turns occupancies into structures. Primitive
// sites are listed sublattice by sublattice; the supercell images of
// primitive site p occupy the contiguous occupancy range
// [p*size, (p+1)*size), size being the supercell determinant.
type SupercellDecoder struct {
	lattice *mat.Dense
	frac    *mat.Dense
	subs    []*Sublattice
	sc      [3][3]int
	det     int
	trans   [][3]int
	scLat   *mat.Dense
	scInv   *mat.Dense
}

// NewSupercellDecoder builds a decoder from the primitive lattice (rows are
// cell vectors), the primitive site fractional coordinates ordered by
// sublattice, the sublattices themselves and an integer supercell matrix
// with positive determinant.
func NewSupercellDecoder(lattice, frac *mat.Dense, subs []*Sublattice, sc [3][3]int) (*SupercellDecoder, error) {
	if lattice == nil || frac == nil {
		return nil, newConstraintError("NewSupercellDecoder: nil lattice or coordinates")
	}
	lr, lc := lattice.Dims()
	if lr != 3 || lc != 3 {
		return nil, newConstraintError("NewSupercellDecoder: lattice must be 3x3")
	}
	n, fc := frac.Dims()
	if fc != 3 {
		return nil, newConstraintError("NewSupercellDecoder: coordinates must have 3 columns")
	}
	if len(subs) == 0 {
		return nil, newConstraintError("NewSupercellDecoder: no sublattices")
	}
	if n != TotalSites(subs) {
		return nil, newConstraintError(fmt.Sprintf("NewSupercellDecoder: %d primitive sites given, sublattices declare %d", n, TotalSites(subs)))
	}
	trans, err := latticeTranslations(sc)
	if err != nil {
		return nil, errDecorate(err, "NewSupercellDecoder")
	}
	matS := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			matS.Set(i, j, float64(sc[i][j]))
		}
	}
	scLat := mat.NewDense(3, 3, nil)
	scLat.Mul(matS, lattice)
	scInv := mat.NewDense(3, 3, nil)
	if err := scInv.Inverse(matS); err != nil {
		return nil, newConstraintError("NewSupercellDecoder: supercell matrix is singular")
	}
	return &SupercellDecoder{
		lattice: mat.DenseCopyOf(lattice),
		frac:    mat.DenseCopyOf(frac),
		subs:    subs,
		sc:      sc,
		det:     len(trans),
		trans:   trans,
		scLat:   scLat,
		scInv:   scInv,
	}, nil
}

// Size returns the supercell size (the determinant of the supercell matrix).
func (D *SupercellDecoder) Size() int {
	return D.det
}

// NSites returns the occupancy length the decoder expects.
func (D *SupercellDecoder) NSites() int {
	nprim, _ := D.frac.Dims()
	return nprim * D.det
}

// Sublattices returns the sublattices, in order.
func (D *SupercellDecoder) Sublattices() []*Sublattice {
	r := make([]*Sublattice, len(D.subs))
	copy(r, D.subs)
	return r
}

// SupercellLattice returns a copy of the supercell lattice matrix.
func (D *SupercellDecoder) SupercellLattice() *mat.Dense {
	return mat.DenseCopyOf(D.scLat)
}

// SublatticeSites returns the supercell site indices belonging to sublattice
// sl, in occupancy order.
func (D *SupercellDecoder) SublatticeSites(sl int) []int {
	start := 0
	for i := 0; i < sl; i++ {
		start += D.subs[i].Sites()
	}
	var sites []int
	for p := start; p < start+D.subs[sl].Sites(); p++ {
		for k := 0; k < D.det; k++ {
			sites = append(sites, p*D.det+k)
		}
	}
	return sites
}

// SiteSublattice returns the sublattice index a supercell site belongs to.
func (D *SupercellDecoder) SiteSublattice(site int) int {
	p := site / D.det
	acc := 0
	for i, sl := range D.subs {
		acc += sl.Sites()
		if p < acc {
			return i
		}
	}
	return -1
}

// Decode builds the structure encoded by occ. Vacant sites are omitted from
// the result.
func (D *SupercellDecoder) Decode(occ []int) (*Structure, error) {
	if len(occ) != D.NSites() {
		return nil, newConstraintError(fmt.Sprintf("Decode: occupancy has %d entries, decoder expects %d", len(occ), D.NSites()))
	}
	nprim, _ := D.frac.Dims()
	var coords []float64
	var species []Species
	for p := 0; p < nprim; p++ {
		sl := D.subs[D.SiteSublattice(p*D.det)]
		for k, t := range D.trans {
			idx := occ[p*D.det+k]
			if idx < 0 || idx >= sl.NSpecies() {
				return nil, newConstraintError(fmt.Sprintf("Decode: species index %d out of range at site %d", idx, p*D.det+k))
			}
			sp := sl.Species(idx)
			if sp.Vacant {
				continue
			}
			for c := 0; c < 3; c++ {
				v := 0.0
				for m := 0; m < 3; m++ {
					v += (D.frac.At(p, m) + float64(t[m])) * D.scInv.At(m, c)
				}
				coords = append(coords, v)
			}
			species = append(species, sp)
		}
	}
	if len(species) == 0 {
		return nil, newConstraintError("Decode: occupancy contains only vacancies")
	}
	frac := mat.NewDense(len(species), 3, coords)
	return NewStructure(D.scLat, frac, species), nil
}

// DiagonalSupercells enumerates all diagonal integer supercell matrices with
// determinant n, in lexicographic factor order.
func DiagonalSupercells(n int) [][3][3]int {
	var out [][3][3]int
	for a := 1; a <= n; a++ {
		if n%a != 0 {
			continue
		}
		rem := n / a
		for b := 1; b <= rem; b++ {
			if rem%b != 0 {
				continue
			}
			c := rem / b
			out = append(out, [3][3]int{{a, 0, 0}, {0, b, 0}, {0, 0, c}})
		}
	}
	return out
}

// IsProperSupercell reports whether the supercell spanned by sc over the
// given lattice is well conditioned: positive determinant, condition number
// of the supercell lattice at most maxCond, and every angle between cell
// vectors within [minAngleDeg, 180-minAngleDeg].
func IsProperSupercell(lattice *mat.Dense, sc [3][3]int, maxCond, minAngleDeg float64) bool {
	if Det3(sc) <= 0 {
		return false
	}
	matS := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			matS.Set(i, j, float64(sc[i][j]))
		}
	}
	scLat := mat.NewDense(3, 3, nil)
	scLat.Mul(matS, lattice)
	if mat.Cond(scLat, 2) > maxCond {
		return false
	}
	rows := make([][]float64, 3)
	for i := 0; i < 3; i++ {
		rows[i] = []float64{scLat.At(i, 0), scLat.At(i, 1), scLat.At(i, 2)}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			dot := 0.0
			ni := 0.0
			nj := 0.0
			for k := 0; k < 3; k++ {
				dot += rows[i][k] * rows[j][k]
				ni += rows[i][k] * rows[i][k]
				nj += rows[j][k] * rows[j][k]
			}
			angle := math.Acos(dot/math.Sqrt(ni*nj)) * 180 / math.Pi
			if angle < minAngleDeg || angle > 180-minAngleDeg {
				return false
			}
		}
	}
	return true
}

// ProperSupercells enumerates the diagonal supercell matrices of determinant
// n that pass IsProperSupercell over the given lattice.
func ProperSupercells(lattice *mat.Dense, n int, maxCond, minAngleDeg float64) [][3][3]int {
	var out [][3][3]int
	for _, sc := range DiagonalSupercells(n) {
		if IsProperSupercell(lattice, sc, maxCond, minAngleDeg) {
			out = append(out, sc)
		}
	}
	return out
}

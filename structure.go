/*
 * structure.go, part of goCE.
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

	"gonum.org/v1/gonum/mat"
)

// Structure is a periodic atomic arrangement: a lattice (rows are the cell
// vectors, in Angstrom), fractional coordinates (one row per site) and one
// species per site. Fractional coordinates are wrapped into [0,1) at
// construction. Structures are treated as immutable; methods return copies.
type Structure struct {
	lattice *mat.Dense
	frac    *mat.Dense
	species []Species
}

// NewStructure builds a structure. This is a fundamental function: it panics
// with ErrNilMatrix, ErrNot3x3, ErrNotNx3 or ErrSpeciesList on impossible
// arguments instead of returning an error.
func NewStructure(lattice, frac *mat.Dense, species []Species) *Structure {
	if lattice == nil || frac == nil {
		panic(ErrNilMatrix)
	}
	lr, lc := lattice.Dims()
	if lr != 3 || lc != 3 {
		panic(ErrNot3x3)
	}
	n, fc := frac.Dims()
	if fc != 3 {
		panic(ErrNotNx3)
	}
	if len(species) != n {
		panic(ErrSpeciesList)
	}
	wrapped := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			wrapped.Set(i, k, wrapFrac(frac.At(i, k)))
		}
	}
	sp := make([]Species, n)
	copy(sp, species)
	return &Structure{
		lattice: mat.DenseCopyOf(lattice),
		frac:    wrapped,
		species: sp,
	}
}

//wrapFrac maps a fractional coordinate into [0,1).
func wrapFrac(x float64) float64 {
	w := x - math.Floor(x)
	if w >= 1 { //guards the x = -1e-17 case
		w = 0
	}
	return w
}

// Len returns the number of sites.
func (S *Structure) Len() int {
	return len(S.species)
}

// Lattice returns a copy of the 3x3 lattice matrix.
func (S *Structure) Lattice() *mat.Dense {
	return mat.DenseCopyOf(S.lattice)
}

// Frac returns the fractional coordinates of site i.
func (S *Structure) Frac(i int) []float64 {
	return []float64{S.frac.At(i, 0), S.frac.At(i, 1), S.frac.At(i, 2)}
}

// Cart returns the Cartesian coordinates of site i, in Angstrom.
func (S *Structure) Cart(i int) []float64 {
	r := make([]float64, 3)
	for k := 0; k < 3; k++ {
		for m := 0; m < 3; m++ {
			r[k] += S.frac.At(i, m) * S.lattice.At(m, k)
		}
	}
	return r
}

// Species returns the species occupying site i.
func (S *Structure) Species(i int) Species {
	return S.species[i]
}

// SpeciesList returns a copy of the per-site species list.
func (S *Structure) SpeciesList() []Species {
	r := make([]Species, len(S.species))
	copy(r, S.species)
	return r
}

// Composition returns the species counts of the structure. With byElement
// true, species are keyed by element symbol, ignoring oxidation states.
func (S *Structure) Composition(byElement bool) map[string]int {
	r := make(map[string]int)
	for _, sp := range S.species {
		key := sp.String()
		if byElement {
			key = sp.Symbol
		}
		r[key]++
	}
	return r
}

// NetCharge returns the total formal charge of the structure.
func (S *Structure) NetCharge() int {
	q := 0
	for _, sp := range S.species {
		q += sp.Charge()
	}
	return q
}

// Volume returns the cell volume, in Angstrom^3.
func (S *Structure) Volume() float64 {
	return math.Abs(mat.Det(S.lattice))
}

// MinImageDistance returns the minimum-image distance between sites i and j,
// in Angstrom.
func (S *Structure) MinImageDistance(i, j int) float64 {
	d := make([]float64, 3)
	for k := 0; k < 3; k++ {
		delta := S.frac.At(i, k) - S.frac.At(j, k)
		d[k] = delta - math.Round(delta)
	}
	sum := 0.0
	for k := 0; k < 3; k++ {
		cart := 0.0
		for m := 0; m < 3; m++ {
			cart += d[m] * S.lattice.At(m, k)
		}
		sum += cart * cart
	}
	return math.Sqrt(sum)
}

// Translated returns a copy of the structure rigidly shifted by the given
// fractional vector, wrapped back into the cell. Panics with ErrShape if the
// shift is not length 3.
func (S *Structure) Translated(shift []float64) *Structure {
	if len(shift) != 3 {
		panic(ErrShape)
	}
	n := S.Len()
	frac := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			frac.Set(i, k, wrapFrac(S.frac.At(i, k)+shift[k]))
		}
	}
	return NewStructure(S.lattice, frac, S.species)
}

// Copy returns a deep copy of the structure.
func (S *Structure) Copy() *Structure {
	return NewStructure(S.lattice, S.frac, S.species)
}

func (S *Structure) String() string {
	return fmt.Sprintf("goCE Structure: %d sites, %.3f A^3, net charge %d", S.Len(), S.Volume(), S.NetCharge())
}

/*
 * space.go, part of goCE.
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

//Package compspace models the composition space of a multi-sublattice solid
//solution as a constrained integer polytope. A Space derives, from the
//sublattice specification alone, the charge-balance constraint, the minimal
//table of charge-conserving flip operations, the polytope vertices and the
//per-supercell-size grids of valid integer compositions, and translates
//compositions between the counts, compstat, unconstrained, constrained and
//composition formats.
//
//Compositions are parameterized by "unconstrained" coordinates: one
//component per non-last species of each sublattice, counting how many sites
//that species occupies instead of the sublattice's last species. All
//coordinate formats share the species order fixed by the sublattices.
//
//A Space is immutable after construction except for its lazily filled
//per-supercell caches, which makes it read-safe only for sequential use.
package compspace

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/intlat"
)

//excite identifies one unconstrained coordinate: species sp on sublattice sl
//substituting the sublattice's last species.
type excite struct {
	sl int
	sp int
}

//Space is the composition space of an ordered set of sublattices under
//charge balance and optional extra linear constraints.
type Space struct {
	subs    []*ce.Sublattice
	exc     []excite
	groups  [][]int //excitation indices per sublattice
	charges []int   //charge carried by each unit excitation
	bg      int     //background charge of a primitive cell, all-last occupation
	basis   [][]int
	flips   []FlipOp
	origin  []float64 //particular per-prim solution of the charge constraint
	cons    []Constraint

	unitVerts [][]float64
	minSC     int
	grids     map[int][][]int
	intVerts  map[int][][]int
}

// New builds the composition space of subs, deriving the unit excitations,
// their charges, the background charge and the minimal flip basis. Extra
// linear constraints over species counts may be supplied; they restrict the
// grids and vertices but not the flip table. New fails when the sublattices
// carry a background charge that no excitation can compensate, since no
// neutral composition exists in that space at any supercell size.
func New(subs []*ce.Sublattice, cons ...Constraint) (*Space, error) {
	if len(subs) == 0 {
		return nil, newConstraintError("New: no sublattices")
	}
	s := &Space{
		subs:     subs,
		groups:   make([][]int, len(subs)),
		grids:    make(map[int][][]int),
		intVerts: make(map[int][][]int),
	}
	for p, sub := range subs {
		if sub == nil {
			return nil, newConstraintError(fmt.Sprintf("New: sublattice %d is nil", p))
		}
		last := sub.Last()
		for i := 0; i < sub.NSpecies()-1; i++ {
			s.groups[p] = append(s.groups[p], len(s.exc))
			s.exc = append(s.exc, excite{sl: p, sp: i})
			s.charges = append(s.charges, sub.Species(i).Charge()-last.Charge())
		}
		s.bg += last.Charge() * sub.Sites()
	}
	if !s.Charged() && s.bg != 0 {
		return nil, newInfeasibleError(fmt.Sprintf("New: background charge %d cannot be compensated by any species exchange", s.bg))
	}
	basis, err := intlat.MinimalBasis(s.charges, s.groups)
	if err != nil {
		return nil, errDecorate(err, "compspace.New")
	}
	s.basis = basis
	for _, v := range basis {
		s.flips = append(s.flips, s.opFromVector(v))
	}
	s.origin = make([]float64, len(s.exc))
	if s.Charged() {
		for k, q := range s.charges {
			if q != 0 {
				s.origin[k] = float64(-s.bg) / float64(q)
				break
			}
		}
	}
	for i, c := range cons {
		if len(c.coefs) != s.NondiscDim() {
			return nil, newConstraintError(fmt.Sprintf("New: constraint %d has %d coefficients, want %d", i, len(c.coefs), s.NondiscDim()))
		}
		s.cons = append(s.cons, c.clone())
	}
	return s, nil
}

//NSublattices returns the number of sublattices.
func (s *Space) NSublattices() int { return len(s.subs) }

//Sublattice returns the i-th sublattice.
func (s *Space) Sublattice(i int) *ce.Sublattice { return s.subs[i] }

//Sublattices returns the sublattices in order.
func (s *Space) Sublattices() []*ce.Sublattice {
	return append([]*ce.Sublattice(nil), s.subs...)
}

//UnconstrainedDim returns the number of unit excitations, the dimension of
//the unconstrained coordinates.
func (s *Space) UnconstrainedDim() int { return len(s.exc) }

//Dim returns the dimension of the constrained coordinates: one less than the
//unconstrained dimension when the charge constraint is active, equal to it
//otherwise.
func (s *Space) Dim() int { return len(s.basis) }

//NondiscDim returns the total species count over all sublattices, the length
//of the flat counts format.
func (s *Space) NondiscDim() int {
	n := 0
	for _, sub := range s.subs {
		n += sub.NSpecies()
	}
	return n
}

//Charged reports whether the charge-balance constraint is active, that is,
//whether any unit excitation changes the net charge.
func (s *Space) Charged() bool {
	for _, q := range s.charges {
		if q != 0 {
			return true
		}
	}
	return false
}

//ExcitationCharges returns the charge carried by each unit excitation.
func (s *Space) ExcitationCharges() []int {
	return append([]int(nil), s.charges...)
}

//BackgroundCharge returns the net charge of a primitive cell with every
//sublattice fully occupied by its last species.
func (s *Space) BackgroundCharge() int { return s.bg }

//Excitation returns the sublattice and species index of unconstrained
//coordinate k.
func (s *Space) Excitation(k int) (sl, sp int) {
	return s.exc[k].sl, s.exc[k].sp
}

//Basis returns the minimal integer basis of charge-conserving moves, one row
//per flip operation.
func (s *Space) Basis() [][]int {
	out := make([][]int, len(s.basis))
	for i, v := range s.basis {
		out[i] = append([]int(nil), v...)
	}
	return out
}

//Constraints returns the extra linear constraints of the space.
func (s *Space) Constraints() []Constraint {
	out := make([]Constraint, len(s.cons))
	for i, c := range s.cons {
		out[i] = c.clone()
	}
	return out
}

//FlipTable returns the minimal set of charge-conserving flip operations
//spanning the space. Every conserving move decomposes into table operations
//and their reverses.
func (s *Space) FlipTable() []FlipOp {
	out := make([]FlipOp, len(s.flips))
	for i, op := range s.flips {
		out[i] = op.clone()
	}
	return out
}

//TransformOrigin returns a particular per-primitive-cell solution of the
//charge constraint, the origin of the constrained coordinates. It is the
//zero vector for neutral spaces.
func (s *Space) TransformOrigin() []float64 {
	return append([]float64(nil), s.origin...)
}

//TransformMatrix returns the square transform between unconstrained and
//constrained coordinates: the basis vectors as rows, followed by the charge
//normal when the constraint is active.
func (s *Space) TransformMatrix() *mat.Dense {
	d := s.UnconstrainedDim()
	r := mat.NewDense(d, d, nil)
	for i, v := range s.basis {
		for j, x := range v {
			r.Set(i, j, float64(x))
		}
	}
	if s.Charged() {
		for j, q := range s.charges {
			r.Set(d-1, j, float64(q))
		}
	}
	return r
}

// MinSupercellSize returns the smallest supercell size at which every vertex
// of the composition polytope becomes an integer composition, the LCM of the
// vertex coordinate denominators.
func (s *Space) MinSupercellSize() (int, error) {
	if s.minSC > 0 {
		return s.minSC, nil
	}
	verts, err := s.UnitVertices()
	if err != nil {
		return 0, errDecorate(err, "MinSupercellSize")
	}
	if len(verts) == 0 {
		return 0, newInfeasibleError("MinSupercellSize: composition polytope is empty")
	}
	_, mul, err := intlat.IntegerizeRows(verts, intlat.DefaultMaxDenominator, intlat.DefaultTolerance)
	if err != nil {
		return 0, errDecorate(err, "MinSupercellSize")
	}
	s.minSC = mul
	return mul, nil
}

//sublatticeBound returns the site total of the sublattice of excitation k at
//the given supercell size.
func (s *Space) sublatticeBound(k, scSize int) int {
	return s.subs[s.exc[k].sl].Sites() * scSize
}

//flatIndex returns the position of species sp of sublattice sl in the flat
//counts format.
func (s *Space) flatIndex(sl, sp int) int {
	idx := 0
	for p := 0; p < sl; p++ {
		idx += s.subs[p].NSpecies()
	}
	return idx + sp
}

//Nest reshapes flat counts into per-sublattice slices sharing no memory with
//the input.
func (s *Space) Nest(counts []int) [][]int {
	out := make([][]int, len(s.subs))
	pos := 0
	for p, sub := range s.subs {
		out[p] = append([]int(nil), counts[pos:pos+sub.NSpecies()]...)
		pos += sub.NSpecies()
	}
	return out
}

//Flatten joins per-sublattice counts into the flat counts format.
func (s *Space) Flatten(nested [][]int) ([]int, error) {
	if len(nested) != len(s.subs) {
		return nil, newFormatError(fmt.Sprintf("Flatten: %d sublattices in value, space has %d", len(nested), len(s.subs)))
	}
	var out []int
	for p, sub := range s.subs {
		if len(nested[p]) != sub.NSpecies() {
			return nil, newFormatError(fmt.Sprintf("Flatten: sublattice %d has %d species counts, want %d", p, len(nested[p]), sub.NSpecies()))
		}
		out = append(out, nested[p]...)
	}
	return out, nil
}

/*
 * coords.go, part of goCE.
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
	"math"

	"gonum.org/v1/gonum/mat"
)

//intTol is how far a real coordinate may sit from the integer lattice and
//still convert to an integer format.
const intTol = 1e-6

//Format names a composition coordinate representation.
type Format int

const (
	//FormatCounts is the flat per-species integer site counts at supercell
	//scale.
	FormatCounts Format = iota
	//FormatCompStat is the counts format nested per sublattice.
	FormatCompStat
	//FormatUnconstrained is the real vector of non-last species counts.
	FormatUnconstrained
	//FormatConstrained is the unconstrained vector with the charge direction
	//projected out.
	FormatConstrained
	//FormatComposition is the per-sublattice species site-fraction maps.
	FormatComposition
)

func (f Format) String() string {
	switch f {
	case FormatCounts:
		return "counts"
	case FormatCompStat:
		return "compstat"
	case FormatUnconstrained:
		return "unconstrained"
	case FormatConstrained:
		return "constrained"
	case FormatComposition:
		return "composition"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

//ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range []Format{FormatCounts, FormatCompStat, FormatUnconstrained, FormatConstrained, FormatComposition} {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, newFormatError(fmt.Sprintf("ParseFormat: unknown coordinate format %q", name))
}

// CheckCounts validates a flat counts vector at the given supercell size:
// correct length, nonnegative entries, per-sublattice totals equal to
// sublattice sites times supercell size, zero net charge when the space is
// charge-constrained, and any extra constraints of the space.
func (s *Space) CheckCounts(counts []int, scSize int) error {
	if len(counts) != s.NondiscDim() {
		return newFormatError(fmt.Sprintf("CheckCounts: %d counts, want %d", len(counts), s.NondiscDim()))
	}
	if scSize < 1 {
		return newConstraintError(fmt.Sprintf("CheckCounts: supercell size %d below 1", scSize))
	}
	pos := 0
	netCharge := 0
	for p, sub := range s.subs {
		sum := 0
		for i := 0; i < sub.NSpecies(); i++ {
			n := counts[pos]
			if n < 0 {
				return newConstraintError(fmt.Sprintf("CheckCounts: negative count %d for %v on sublattice %d", n, sub.Species(i), p))
			}
			sum += n
			netCharge += n * sub.Species(i).Charge()
			pos++
		}
		if want := sub.Sites() * scSize; sum != want {
			return newConstraintError(fmt.Sprintf("CheckCounts: sublattice %d holds %d sites, want %d", p, sum, want))
		}
	}
	if s.Charged() && netCharge != 0 {
		return newConstraintError(fmt.Sprintf("CheckCounts: net charge %+d, want 0", netCharge))
	}
	xi := make([]int, s.UnconstrainedDim())
	for k, e := range s.exc {
		xi[k] = counts[s.flatIndex(e.sl, e.sp)]
	}
	if !s.meetsConstraints(xi, scSize) {
		return newConstraintError("CheckCounts: extra linear constraints violated")
	}
	return nil
}

//CountsToUnconstrained validates counts and projects them onto the
//unconstrained coordinates.
func (s *Space) CountsToUnconstrained(counts []int, scSize int) ([]float64, error) {
	if err := s.CheckCounts(counts, scSize); err != nil {
		return nil, errDecorate(err, "CountsToUnconstrained")
	}
	x := make([]float64, s.UnconstrainedDim())
	for k, e := range s.exc {
		x[k] = float64(counts[s.flatIndex(e.sl, e.sp)])
	}
	return x, nil
}

// UnconstrainedToCounts reconstructs the full counts from unconstrained
// coordinates, filling each sublattice's last species with the remaining
// sites. Coordinates off the integer lattice by more than the conversion
// tolerance are unrepresentable; the result is validated like CheckCounts.
func (s *Space) UnconstrainedToCounts(x []float64, scSize int) ([]int, error) {
	if len(x) != s.UnconstrainedDim() {
		return nil, newFormatError(fmt.Sprintf("UnconstrainedToCounts: %d coordinates, want %d", len(x), s.UnconstrainedDim()))
	}
	counts := make([]int, s.NondiscDim())
	for k, v := range x {
		n := math.Round(v)
		if math.Abs(v-n) > intTol {
			return nil, newUnrepresentableError(fmt.Sprintf("UnconstrainedToCounts: coordinate %d = %v is not an integer", k, v))
		}
		counts[s.flatIndex(s.exc[k].sl, s.exc[k].sp)] = int(n)
	}
	for p, sub := range s.subs {
		used := 0
		for _, k := range s.groups[p] {
			used += counts[s.flatIndex(p, s.exc[k].sp)]
		}
		counts[s.flatIndex(p, sub.NSpecies()-1)] = sub.Sites()*scSize - used
	}
	if err := s.CheckCounts(counts, scSize); err != nil {
		return nil, errDecorate(err, "UnconstrainedToCounts")
	}
	return counts, nil
}

// ConstrainedCoords projects unconstrained coordinates onto the constrained
// basis: the flip-basis expansion of the offset from the charge-constraint
// origin. Coordinates off the constraint plane are rejected. For neutral
// spaces the projection is the identity.
func (s *Space) ConstrainedCoords(x []float64, scSize int) ([]float64, error) {
	if len(x) != s.UnconstrainedDim() {
		return nil, newFormatError(fmt.Sprintf("ConstrainedCoords: %d coordinates, want %d", len(x), s.UnconstrainedDim()))
	}
	if !s.Charged() {
		return append([]float64(nil), x...), nil
	}
	d := s.UnconstrainedDim()
	dim := s.Dim()
	bt := mat.NewDense(d, dim, nil)
	for j, v := range s.basis {
		for i, c := range v {
			bt.Set(i, j, float64(c))
		}
	}
	rhs := mat.NewVecDense(d, nil)
	for k := 0; k < d; k++ {
		rhs.SetVec(k, x[k]-s.origin[k]*float64(scSize))
	}
	var y mat.VecDense
	if err := y.SolveVec(bt, rhs); err != nil {
		return nil, newConstraintError(fmt.Sprintf("ConstrainedCoords: projection failed: %v", err))
	}
	var back mat.VecDense
	back.MulVec(bt, &y)
	for k := 0; k < d; k++ {
		if math.Abs(back.AtVec(k)-rhs.AtVec(k)) > intTol {
			return nil, newConstraintError(fmt.Sprintf("ConstrainedCoords: %v is off the charge-balance plane", x))
		}
	}
	out := make([]float64, dim)
	for i := range out {
		out[i] = y.AtVec(i)
	}
	return out, nil
}

//UnconstrainedCoords expands constrained coordinates back to the
//unconstrained form at the given supercell size.
func (s *Space) UnconstrainedCoords(y []float64, scSize int) ([]float64, error) {
	if len(y) != s.Dim() {
		return nil, newFormatError(fmt.Sprintf("UnconstrainedCoords: %d coordinates, want %d", len(y), s.Dim()))
	}
	if !s.Charged() {
		return append([]float64(nil), y...), nil
	}
	d := s.UnconstrainedDim()
	x := make([]float64, d)
	for k := 0; k < d; k++ {
		x[k] = s.origin[k] * float64(scSize)
		for i, v := range s.basis {
			x[k] += y[i] * float64(v[k])
		}
	}
	return x, nil
}

//CompositionMaps expresses unconstrained coordinates as per-sublattice
//species site fractions, every allowed species included.
func (s *Space) CompositionMaps(x []float64, scSize int) ([]map[string]float64, error) {
	if len(x) != s.UnconstrainedDim() {
		return nil, newFormatError(fmt.Sprintf("CompositionMaps: %d coordinates, want %d", len(x), s.UnconstrainedDim()))
	}
	out := make([]map[string]float64, len(s.subs))
	for p, sub := range s.subs {
		sites := float64(sub.Sites() * scSize)
		m := make(map[string]float64, sub.NSpecies())
		rest := 1.0
		for _, k := range s.groups[p] {
			f := x[k] / sites
			m[sub.Species(s.exc[k].sp).String()] = f
			rest -= f
		}
		m[sub.Last().String()] = rest
		out[p] = m
	}
	return out, nil
}

//CompositionCoords converts per-sublattice species fraction maps to
//unconstrained coordinates. Missing species count as fraction zero; unknown
//species and fraction totals away from one are rejected.
func (s *Space) CompositionCoords(maps []map[string]float64, scSize int) ([]float64, error) {
	if len(maps) != len(s.subs) {
		return nil, newFormatError(fmt.Sprintf("CompositionCoords: %d sublattice maps, want %d", len(maps), len(s.subs)))
	}
	x := make([]float64, s.UnconstrainedDim())
	for p, sub := range s.subs {
		known := make(map[string]int, sub.NSpecies())
		for i := 0; i < sub.NSpecies(); i++ {
			known[sub.Species(i).String()] = i
		}
		total := 0.0
		for name, f := range maps[p] {
			if _, ok := known[name]; !ok {
				return nil, newConstraintError(fmt.Sprintf("CompositionCoords: species %q not allowed on sublattice %d", name, p))
			}
			total += f
		}
		if math.Abs(total-1) > intTol {
			return nil, newConstraintError(fmt.Sprintf("CompositionCoords: sublattice %d fractions sum to %v, want 1", p, total))
		}
		sites := float64(sub.Sites() * scSize)
		for _, k := range s.groups[p] {
			x[k] = maps[p][sub.Species(s.exc[k].sp).String()] * sites
		}
	}
	return x, nil
}

// Translate converts a composition between coordinate formats at the given
// supercell size. The value's dynamic type must match the source format:
// []int for counts, [][]int for compstat, []float64 for unconstrained and
// constrained, []map[string]float64 for composition. Unknown formats and
// mismatched values fail with a format error; conversions into counts or
// compstat from off-lattice real coordinates fail as unrepresentable.
func (s *Space) Translate(v interface{}, from, to Format, scSize int) (interface{}, error) {
	x, err := s.toUnconstrained(v, from, scSize)
	if err != nil {
		return nil, errDecorate(err, "Translate")
	}
	out, err := s.fromUnconstrained(x, to, scSize)
	if err != nil {
		return nil, errDecorate(err, "Translate")
	}
	return out, nil
}

func (s *Space) toUnconstrained(v interface{}, from Format, scSize int) ([]float64, error) {
	switch from {
	case FormatCounts:
		counts, ok := v.([]int)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("counts value has type %T, want []int", v))
		}
		return s.CountsToUnconstrained(counts, scSize)
	case FormatCompStat:
		nested, ok := v.([][]int)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("compstat value has type %T, want [][]int", v))
		}
		counts, err := s.Flatten(nested)
		if err != nil {
			return nil, err
		}
		return s.CountsToUnconstrained(counts, scSize)
	case FormatUnconstrained:
		x, ok := v.([]float64)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("unconstrained value has type %T, want []float64", v))
		}
		if len(x) != s.UnconstrainedDim() {
			return nil, newFormatError(fmt.Sprintf("unconstrained value has %d coordinates, want %d", len(x), s.UnconstrainedDim()))
		}
		return append([]float64(nil), x...), nil
	case FormatConstrained:
		y, ok := v.([]float64)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("constrained value has type %T, want []float64", v))
		}
		return s.UnconstrainedCoords(y, scSize)
	case FormatComposition:
		maps, ok := v.([]map[string]float64)
		if !ok {
			return nil, newFormatError(fmt.Sprintf("composition value has type %T, want []map[string]float64", v))
		}
		return s.CompositionCoords(maps, scSize)
	}
	return nil, newFormatError(fmt.Sprintf("unsupported source format %v", from))
}

func (s *Space) fromUnconstrained(x []float64, to Format, scSize int) (interface{}, error) {
	switch to {
	case FormatCounts:
		return s.UnconstrainedToCounts(x, scSize)
	case FormatCompStat:
		counts, err := s.UnconstrainedToCounts(x, scSize)
		if err != nil {
			return nil, err
		}
		return s.Nest(counts), nil
	case FormatUnconstrained:
		return x, nil
	case FormatConstrained:
		return s.ConstrainedCoords(x, scSize)
	case FormatComposition:
		return s.CompositionMaps(x, scSize)
	}
	return nil, newFormatError(fmt.Sprintf("unsupported target format %v", to))
}

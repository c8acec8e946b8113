/*
 * matcher.go, part of goCE.
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
	"math"

	"gonum.org/v1/gonum/mat"
)

// TranslationMatcher is the default Matcher. It detects equivalence under
// pure lattice translations plus site reordering, which is what Monte Carlo
// sampling on a fixed supercell produces. It does not search rotations or
// space-group operations; inject a full symmetry matcher for that.
type TranslationMatcher struct {
	tol float64
}

// NewTranslationMatcher returns a matcher with the given fractional
// coordinate tolerance. Nonpositive tolerances fall back to 1e-5.
func NewTranslationMatcher(tol float64) *TranslationMatcher {
	if tol <= 0 {
		tol = 1e-5
	}
	return &TranslationMatcher{tol: tol}
}

// Match reports whether b is a translated copy of a. With ignoreDecorations,
// species are compared by element only.
func (M *TranslationMatcher) Match(a, b *Structure, ignoreDecorations bool) (bool, error) {
	if a == nil || b == nil {
		return false, newConstraintError("Match: nil structure")
	}
	if a.Len() != b.Len() {
		return false, nil
	}
	if !mat.EqualApprox(a.lattice, b.lattice, 1e-6) {
		return false, nil
	}
	ca := a.Composition(ignoreDecorations)
	cb := b.Composition(ignoreDecorations)
	if len(ca) != len(cb) {
		return false, nil
	}
	for k, v := range ca {
		if cb[k] != v {
			return false, nil
		}
	}
	if a.Len() == 0 {
		return true, nil
	}
	//Try every candidate translation that maps site 0 of a onto a
	//species-compatible site of b.
	for j := 0; j < b.Len(); j++ {
		if !M.compatible(a.Species(0), b.Species(j), ignoreDecorations) {
			continue
		}
		shift := make([]float64, 3)
		fa := a.Frac(0)
		fb := b.Frac(j)
		for k := 0; k < 3; k++ {
			shift[k] = fb[k] - fa[k]
		}
		if M.mapsOnto(a, b, shift, ignoreDecorations) {
			return true, nil
		}
	}
	return false, nil
}

func (M *TranslationMatcher) compatible(x, y Species, ignoreDecorations bool) bool {
	if ignoreDecorations {
		return x.SameElement(y)
	}
	return x == y
}

//mapsOnto checks that translating every site of a by shift lands on a
//distinct, species-compatible site of b, within tolerance and modulo the
//lattice.
func (M *TranslationMatcher) mapsOnto(a, b *Structure, shift []float64, ignoreDecorations bool) bool {
	used := make([]bool, b.Len())
	for i := 0; i < a.Len(); i++ {
		fa := a.Frac(i)
		target := []float64{fa[0] + shift[0], fa[1] + shift[1], fa[2] + shift[2]}
		found := false
		for j := 0; j < b.Len(); j++ {
			if used[j] || !M.compatible(a.Species(i), b.Species(j), ignoreDecorations) {
				continue
			}
			if M.sameFrac(target, b.Frac(j)) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (M *TranslationMatcher) sameFrac(x, y []float64) bool {
	for k := 0; k < 3; k++ {
		d := x[k] - y[k]
		d -= math.Round(d)
		if math.Abs(d) > M.tol {
			return false
		}
	}
	return true
}

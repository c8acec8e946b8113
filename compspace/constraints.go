/*
 * constraints.go, part of goCE.
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

	ce "github.com/tsaari/goce"
)

//Relation is the sense of a linear constraint.
type Relation int

const (
	RelEq Relation = iota
	RelLeq
	RelGeq
)

func (r Relation) String() string {
	switch r {
	case RelEq:
		return "=="
	case RelLeq:
		return "<="
	case RelGeq:
		return ">="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

//Constraint is a linear condition over the flat species counts, with the
//right-hand side expressed per primitive cell so it scales with the
//supercell size. The canonical row follows the sublattice and species order
//of the space.
type Constraint struct {
	coefs []float64
	rhs   float64
	rel   Relation
}

//NewConstraint builds a constraint from a coefficient row over the flat
//counts format, a per-primitive-cell right-hand side and a relation.
func NewConstraint(coefs []float64, rhs float64, rel Relation) Constraint {
	return Constraint{coefs: append([]float64(nil), coefs...), rhs: rhs, rel: rel}
}

func (c Constraint) clone() Constraint {
	return Constraint{coefs: append([]float64(nil), c.coefs...), rhs: c.rhs, rel: c.rel}
}

//Coefs returns the coefficient row of the constraint.
func (c Constraint) Coefs() []float64 { return append([]float64(nil), c.coefs...) }

//RHS returns the per-primitive-cell right-hand side.
func (c Constraint) RHS() float64 { return c.rhs }

//Rel returns the sense of the constraint.
func (c Constraint) Rel() Relation { return c.rel }

func (c Constraint) String() string {
	return fmt.Sprintf("%v %v %v", c.coefs, c.rel, c.rhs)
}

// ConstraintFromMap builds a constraint from per-species coefficients keyed
// by species string. A coefficient applies to every sublattice allowing the
// species. Unknown species are rejected. The right-hand side is per
// primitive cell, as in NewConstraint.
func ConstraintFromMap(subs []*ce.Sublattice, m map[string]float64, rhs float64, rel Relation) (Constraint, error) {
	coefs := make([]float64, ce.TotalSpecies(subs))
	matched := make(map[string]bool, len(m))
	pos := 0
	for _, sub := range subs {
		for i := 0; i < sub.NSpecies(); i++ {
			name := sub.Species(i).String()
			if coef, ok := m[name]; ok {
				coefs[pos] = coef
				matched[name] = true
			}
			pos++
		}
	}
	for name := range m {
		if !matched[name] {
			return Constraint{}, newConstraintError(fmt.Sprintf("ConstraintFromMap: species %q not allowed on any sublattice", name))
		}
	}
	return Constraint{coefs: coefs, rhs: rhs, rel: rel}, nil
}

// ConcentrationBounds builds the pair of constraints keeping the site
// fraction of one species of one sublattice within [lo, hi].
func ConcentrationBounds(subs []*ce.Sublattice, sublattice int, species string, lo, hi float64) ([]Constraint, error) {
	if sublattice < 0 || sublattice >= len(subs) {
		return nil, newConstraintError(fmt.Sprintf("ConcentrationBounds: sublattice %d out of range", sublattice))
	}
	if lo < 0 || hi > 1 || lo > hi {
		return nil, newConstraintError(fmt.Sprintf("ConcentrationBounds: bad fraction range [%v, %v]", lo, hi))
	}
	sub := subs[sublattice]
	sp := -1
	for i := 0; i < sub.NSpecies(); i++ {
		if sub.Species(i).String() == species {
			sp = i
			break
		}
	}
	if sp < 0 {
		return nil, newConstraintError(fmt.Sprintf("ConcentrationBounds: species %q not on sublattice %d", species, sublattice))
	}
	pos := 0
	for p := 0; p < sublattice; p++ {
		pos += subs[p].NSpecies()
	}
	coefs := make([]float64, ce.TotalSpecies(subs))
	coefs[pos+sp] = 1
	sites := float64(sub.Sites())
	return []Constraint{
		{coefs: append([]float64(nil), coefs...), rhs: lo * sites, rel: RelGeq},
		{coefs: coefs, rhs: hi * sites, rel: RelLeq},
	}, nil
}

//unconstrainedRow rewrites a counts-basis constraint over the unconstrained
//coordinates, folding the dependent last-species counts into the right-hand
//side.
func (s *Space) unconstrainedRow(c Constraint) ([]float64, float64) {
	row := make([]float64, len(s.exc))
	rhs := c.rhs
	for k, e := range s.exc {
		lastCoef := c.coefs[s.flatIndex(e.sl, s.subs[e.sl].NSpecies()-1)]
		row[k] = c.coefs[s.flatIndex(e.sl, e.sp)] - lastCoef
	}
	for p, sub := range s.subs {
		lastCoef := c.coefs[s.flatIndex(p, sub.NSpecies()-1)]
		rhs -= lastCoef * float64(sub.Sites())
	}
	return row, rhs
}

/*
 * model.go, part of goCE.
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

package mc

import (
	"fmt"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
)

//SemigrandEvaluator shifts a base enthalpy model by per-species chemical
//potentials, turning canonical enthalpies into the semigrand potential
//H - sum over sites of mu(species at site). Sampling it with table-flip
//moves realizes the semigrand-canonical ensemble.
type SemigrandEvaluator struct {
	base ce.Evaluator
	subs []int
	mu   [][]float64
}

//NewSemigrandEvaluator wraps base for a supercell of scSize primitive
//cells of space. mu holds one chemical potential per species, in the
//nested per-sublattice layout of the space, in eV.
func NewSemigrandEvaluator(base ce.Evaluator, space *compspace.Space, scSize int, mu [][]float64) (*SemigrandEvaluator, error) {
	if base == nil {
		return nil, newConstraintError("mc.NewSemigrandEvaluator: nil base evaluator")
	}
	if space == nil {
		return nil, newConstraintError("mc.NewSemigrandEvaluator: nil space")
	}
	if scSize < 1 {
		return nil, newConstraintError(fmt.Sprintf("mc.NewSemigrandEvaluator: supercell size %d is not positive", scSize))
	}
	if err := checkNested(space, mu, "mc.NewSemigrandEvaluator: chemical potentials"); err != nil {
		return nil, err
	}
	subs, _ := siteLayout(space, scSize)
	cp := make([][]float64, len(mu))
	for i, per := range mu {
		cp[i] = append([]float64(nil), per...)
	}
	return &SemigrandEvaluator{base: base, subs: subs, mu: cp}, nil
}

//Enthalpy returns the semigrand potential of the occupancy, in eV.
func (m *SemigrandEvaluator) Enthalpy(occ []int) float64 {
	h := m.base.Enthalpy(occ)
	for site, sp := range occ {
		h -= m.mu[m.subs[site]][sp]
	}
	return h
}

//PairModel is a small analytic enthalpy model, mostly for tests and
//examples: a per-species site term plus a coupling paid by every pair of
//index-adjacent sites on the same sublattice holding the same species.
type PairModel struct {
	subs []int
	site [][]float64
	j    float64
}

//NewPairModel builds a pair model for a supercell of scSize primitive
//cells of space. site holds one on-site enthalpy per species, in the
//nested per-sublattice layout of the space, in eV.
func NewPairModel(space *compspace.Space, scSize int, site [][]float64, coupling float64) (*PairModel, error) {
	if space == nil {
		return nil, newConstraintError("mc.NewPairModel: nil space")
	}
	if scSize < 1 {
		return nil, newConstraintError(fmt.Sprintf("mc.NewPairModel: supercell size %d is not positive", scSize))
	}
	if err := checkNested(space, site, "mc.NewPairModel: site enthalpies"); err != nil {
		return nil, err
	}
	subs, _ := siteLayout(space, scSize)
	cp := make([][]float64, len(site))
	for i, per := range site {
		cp[i] = append([]float64(nil), per...)
	}
	return &PairModel{subs: subs, site: cp, j: coupling}, nil
}

//Enthalpy returns the model enthalpy of the occupancy, in eV.
func (m *PairModel) Enthalpy(occ []int) float64 {
	h := 0.0
	for site, sp := range occ {
		h += m.site[m.subs[site]][sp]
	}
	for site := 1; site < len(occ); site++ {
		if m.subs[site] == m.subs[site-1] && occ[site] == occ[site-1] {
			h += m.j
		}
	}
	return h
}

//checkNested verifies that vals has one row per sublattice of space and
//one entry per species in each row.
func checkNested(space *compspace.Space, vals [][]float64, what string) error {
	if len(vals) != space.NSublattices() {
		return newConstraintError(fmt.Sprintf("%s: %d rows for %d sublattices", what, len(vals), space.NSublattices()))
	}
	for i, per := range vals {
		if len(per) != space.Sublattice(i).NSpecies() {
			return newConstraintError(fmt.Sprintf("%s: row %d has %d entries for %d species", what, i, len(per), space.Sublattice(i).NSpecies()))
		}
	}
	return nil
}

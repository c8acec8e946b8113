/*
 * mc.go, part of goCE.
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

//Package mc implements Metropolis Monte Carlo over lattice occupancies.
//An Ensemble binds a composition space, a supercell size and an enthalpy
//model to a concrete site layout; a Kernel proposes and accepts single
//moves; a Sampler drives the kernel through annealing ladders and fixed
//temperature runs, recording thinned snapshots into a Chain.
//
//Occupancies are flat []int slices, one entry per site. Sites of the
//first sublattice come first, then those of the second, and so on, each
//block of length sites*scSize. The value at a site is the index of the
//species in its sublattice, in the sublattice's species order.
package mc

import (
	"fmt"
	"math/rand"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
)

//Boltzmann is the Boltzmann constant in eV/K, the unit convention used
//for enthalpies and temperatures throughout the package.
const Boltzmann = 8.617333262e-5

//StepKind selects the move class a Kernel proposes.
type StepKind int

const (
	//StepSwap exchanges the species of two sites on the same sublattice,
	//keeping the composition fixed.
	StepSwap StepKind = iota
	//StepTableFlip applies one direction of a minimal charge-conserving
	//flip from the space's flip table, changing the composition while
	//keeping the occupancy neutral.
	StepTableFlip
)

func (k StepKind) String() string {
	switch k {
	case StepSwap:
		return "swap"
	case StepTableFlip:
		return "table-flip"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

//Ensemble binds a composition space and an enthalpy model to the site
//layout of a supercell with scSize primitive cells.
type Ensemble struct {
	space    *compspace.Space
	scSize   int
	eval     ce.Evaluator
	siteSubs []int //site index -> sublattice index
	offsets  []int //sublattice index -> first site index
}

//NewEnsemble builds an ensemble over space scaled by scSize, with eval
//supplying enthalpies. It fails if scSize is not positive or eval is nil.
func NewEnsemble(space *compspace.Space, scSize int, eval ce.Evaluator) (*Ensemble, error) {
	if space == nil {
		return nil, newConstraintError("mc.NewEnsemble: nil space")
	}
	if scSize < 1 {
		return nil, newConstraintError(fmt.Sprintf("mc.NewEnsemble: supercell size %d is not positive", scSize))
	}
	if eval == nil {
		return nil, newConstraintError("mc.NewEnsemble: nil evaluator")
	}
	ens := &Ensemble{space: space, scSize: scSize, eval: eval}
	ens.siteSubs, ens.offsets = siteLayout(space, scSize)
	return ens, nil
}

//siteLayout returns the site-to-sublattice map and the first site index
//of each sublattice for a supercell with scSize primitive cells.
func siteLayout(space *compspace.Space, scSize int) (siteSubs, offsets []int) {
	offsets = make([]int, space.NSublattices())
	for i, sub := range space.Sublattices() {
		offsets[i] = len(siteSubs)
		for j := 0; j < sub.Sites()*scSize; j++ {
			siteSubs = append(siteSubs, i)
		}
	}
	return siteSubs, offsets
}

//Space returns the composition space of the ensemble.
func (ens *Ensemble) Space() *compspace.Space { return ens.space }

//SupercellSize returns the number of primitive cells in the supercell.
func (ens *Ensemble) SupercellSize() int { return ens.scSize }

//NSites returns the total number of sites in the supercell.
func (ens *Ensemble) NSites() int { return len(ens.siteSubs) }

//SublatticeOf returns the sublattice index of the given site.
func (ens *Ensemble) SublatticeOf(site int) int { return ens.siteSubs[site] }

//SublatticeSites returns the half-open site index range [lo,hi) occupied
//by sublattice p.
func (ens *Ensemble) SublatticeSites(p int) (lo, hi int) {
	lo = ens.offsets[p]
	hi = lo + ens.space.Sublattice(p).Sites()*ens.scSize
	return lo, hi
}

//Enthalpy returns the enthalpy of the occupancy, in eV.
func (ens *Ensemble) Enthalpy(occ []int) float64 { return ens.eval.Enthalpy(occ) }

//CheckOccupancy verifies that occ has one entry per site and that every
//entry indexes a species of the site's sublattice.
func (ens *Ensemble) CheckOccupancy(occ []int) error {
	if len(occ) != len(ens.siteSubs) {
		return newConstraintError(fmt.Sprintf("mc.CheckOccupancy: occupancy has %d sites, ensemble has %d", len(occ), len(ens.siteSubs)))
	}
	for site, sp := range occ {
		nsp := ens.space.Sublattice(ens.siteSubs[site]).NSpecies()
		if sp < 0 || sp >= nsp {
			return newConstraintError(fmt.Sprintf("mc.CheckOccupancy: site %d holds species index %d, sublattice %d has %d species", site, sp, ens.siteSubs[site], nsp))
		}
	}
	return nil
}

//SpeciesCounts tallies the occupancy into per-sublattice species counts,
//in the nested layout used by the composition space.
func (ens *Ensemble) SpeciesCounts(occ []int) [][]int {
	counts := make([][]int, ens.space.NSublattices())
	for i, sub := range ens.space.Sublattices() {
		counts[i] = make([]int, sub.NSpecies())
	}
	for site, sp := range occ {
		counts[ens.siteSubs[site]][sp]++
	}
	return counts
}

//OccupancyFromCounts draws a uniformly random occupancy realizing the
//given per-sublattice species counts. The counts are validated against
//the space, including charge neutrality and any extra constraints.
func (ens *Ensemble) OccupancyFromCounts(counts [][]int, rng *rand.Rand) ([]int, error) {
	if rng == nil {
		return nil, newConstraintError("mc.OccupancyFromCounts: nil random source")
	}
	flat, err := ens.space.Flatten(counts)
	if err != nil {
		return nil, errDecorate(err, "mc.OccupancyFromCounts")
	}
	if err := ens.space.CheckCounts(flat, ens.scSize); err != nil {
		return nil, errDecorate(err, "mc.OccupancyFromCounts")
	}
	occ := make([]int, 0, len(ens.siteSubs))
	for p, per := range counts {
		block := make([]int, 0, ens.space.Sublattice(p).Sites()*ens.scSize)
		for sp, n := range per {
			for j := 0; j < n; j++ {
				block = append(block, sp)
			}
		}
		rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
		occ = append(occ, block...)
	}
	return occ, nil
}

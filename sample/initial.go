/*
 * initial.go, part of goCE.
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

package sample

import (
	"math"

	ce "github.com/tsaari/goce"
)

//randomOccupancy realizes the target counts with a uniformly random
//species arrangement on each sublattice.
func (g *Generator) randomOccupancy() []int {
	occ := make([]int, 0, g.ens.NSites())
	for p, row := range g.target {
		block := make([]int, 0, g.space.Sublattice(p).Sites()*g.scSize)
		for sp, n := range row {
			for j := 0; j < n; j++ {
				block = append(block, sp)
			}
		}
		g.rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
		occ = append(occ, block...)
	}
	return occ
}

//initialOccupancy draws the configured number of random occupancies at
//the target composition and keeps the one whose decoded structure has the
//lowest point-charge Coulomb energy, a cheap physical tie-break that
//starts the annealing from a less frustrated arrangement.
func (g *Generator) initialOccupancy() ([]int, error) {
	var best []int
	bestScore := math.Inf(1)
	for t := 0; t < g.o.initTrials; t++ {
		occ := g.randomOccupancy()
		st, err := g.dec.Decode(occ)
		if err != nil {
			return nil, errDecorate(err, "sample.initialOccupancy")
		}
		if score := ce.CoulombEnergy(st); score < bestScore {
			bestScore = score
			best = occ
		}
	}
	g.log.WithField("coulomb", bestScore).Debug("initial occupancy chosen")
	return best, nil
}

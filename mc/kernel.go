/*
 * kernel.go, part of goCE.
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
	"math"
	"math/rand"
	"sort"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
)

//Kernel proposes and accepts single Metropolis moves over an occupancy it
//owns. Swap moves keep the composition fixed; table-flip moves walk the
//charge-neutral composition grid, with the acceptance corrected by the
//number of concrete site choices realizing each flip so detailed balance
//holds on the grid.
type Kernel struct {
	ens      *Ensemble
	kind     StepKind
	rng      *rand.Rand
	dirs     []compspace.FlipOp //flip table plus the reverse of each entry
	temp     float64
	beta     float64
	occ      []int
	counts   [][]int
	curH     float64
	steps    int
	accepted int
}

//NewKernel builds a kernel over ens proposing moves of the given kind,
//drawing randomness from rng. For StepTableFlip the space must have a
//non-empty flip table.
func NewKernel(ens *Ensemble, kind StepKind, rng *rand.Rand) (*Kernel, error) {
	if ens == nil {
		return nil, newConstraintError("mc.NewKernel: nil ensemble")
	}
	if rng == nil {
		return nil, newConstraintError("mc.NewKernel: nil random source")
	}
	k := &Kernel{ens: ens, kind: kind, rng: rng}
	switch kind {
	case StepSwap:
	case StepTableFlip:
		table := ens.Space().FlipTable()
		if len(table) == 0 {
			return nil, newConstraintError("mc.NewKernel: space has an empty flip table, no table-flip moves exist")
		}
		for _, op := range table {
			k.dirs = append(k.dirs, op, op.Reverse())
		}
	default:
		return nil, newConstraintError(fmt.Sprintf("mc.NewKernel: unknown step kind %d", int(kind)))
	}
	return k, nil
}

//Kind returns the move class the kernel proposes.
func (k *Kernel) Kind() StepKind { return k.kind }

//Ensemble returns the ensemble the kernel samples.
func (k *Kernel) Ensemble() *Ensemble { return k.ens }

//SetTemperature sets the sampling temperature, in K. It fails if T is not
//positive.
func (k *Kernel) SetTemperature(T float64) error {
	if T <= 0 {
		return newConstraintError(fmt.Sprintf("mc.SetTemperature: temperature %v is not positive", T))
	}
	k.temp = T
	k.beta = 1 / (Boltzmann * T)
	return nil
}

//Temperature returns the current sampling temperature, in K.
func (k *Kernel) Temperature() float64 { return k.temp }

//SetOccupancy copies occ into the kernel as the current state and
//evaluates its enthalpy.
func (k *Kernel) SetOccupancy(occ []int) error {
	if err := k.ens.CheckOccupancy(occ); err != nil {
		return errDecorate(err, "mc.SetOccupancy")
	}
	k.occ = append(k.occ[:0], occ...)
	k.counts = k.ens.SpeciesCounts(k.occ)
	k.curH = k.ens.Enthalpy(k.occ)
	return nil
}

//Occupancy returns a copy of the current occupancy.
func (k *Kernel) Occupancy() []int {
	if k.occ == nil {
		return nil
	}
	return append([]int(nil), k.occ...)
}

//Counts returns a copy of the per-sublattice species counts of the
//current occupancy.
func (k *Kernel) Counts() [][]int {
	counts := make([][]int, len(k.counts))
	for i, per := range k.counts {
		counts[i] = append([]int(nil), per...)
	}
	return counts
}

//CurrentEnthalpy returns the enthalpy of the current occupancy, in eV.
func (k *Kernel) CurrentEnthalpy() float64 { return k.curH }

//Steps returns the number of moves proposed since construction.
func (k *Kernel) Steps() int { return k.steps }

//Accepted returns the number of moves accepted since construction.
func (k *Kernel) Accepted() int { return k.accepted }

//Step proposes one move, accepts or rejects it, and reports whether the
//occupancy changed. It panics if the occupancy or the temperature has not
//been set.
func (k *Kernel) Step() bool {
	if k.occ == nil {
		panic(ce.PanicMsg("goCE: mc.Step called with no occupancy set"))
	}
	if k.temp <= 0 {
		panic(ce.PanicMsg("goCE: mc.Step called with no temperature set"))
	}
	k.steps++
	var ok bool
	switch k.kind {
	case StepSwap:
		ok = k.swapStep()
	case StepTableFlip:
		ok = k.flipStep()
	}
	if ok {
		k.accepted++
	}
	return ok
}

//accept runs the Metropolis test for an enthalpy change dH with a
//proposal-asymmetry factor bias.
func (k *Kernel) accept(dH, bias float64) bool {
	p := bias * math.Exp(-k.beta*dH)
	return p >= 1 || k.rng.Float64() < p
}

//swapStep exchanges the species of two differently occupied sites on one
//sublattice. The proposal is symmetric, so no bias enters the test.
func (k *Kernel) swapStep() bool {
	i := k.rng.Intn(len(k.occ))
	lo, hi := k.ens.SublatticeSites(k.ens.SublatticeOf(i))
	cands := make([]int, 0, hi-lo)
	for j := lo; j < hi; j++ {
		if k.occ[j] != k.occ[i] {
			cands = append(cands, j)
		}
	}
	if len(cands) == 0 {
		return false
	}
	j := cands[k.rng.Intn(len(cands))]
	oi, oj := k.occ[i], k.occ[j]
	k.occ[i], k.occ[j] = oj, oi
	newH := k.ens.Enthalpy(k.occ)
	if k.accept(newH-k.curH, 1) {
		k.curH = newH
		return true
	}
	k.occ[i], k.occ[j] = oi, oj
	return false
}

//siteChange records the previous species of a rewritten site so a
//rejected flip can be undone.
type siteChange struct {
	site int
	old  int
}

//flipStep applies one direction of a random flip-table entry to randomly
//chosen sites. The acceptance is weighted by the ratio of forward to
//backward site-choice counts.
func (k *Kernel) flipStep() bool {
	op := k.dirs[k.rng.Intn(len(k.dirs))]
	fwd := op.Links(k.counts)
	if fwd == 0 {
		return false
	}
	changed := k.applyFlip(op)
	after := deltaCounts(k.counts, op)
	rev := op.Reverse().Links(after)
	newH := k.ens.Enthalpy(k.occ)
	if rev > 0 && k.accept(newH-k.curH, float64(fwd)/float64(rev)) {
		k.counts = after
		k.curH = newH
		return true
	}
	for _, ch := range changed {
		k.occ[ch.site] = ch.old
	}
	return false
}

//applyFlip rewrites randomly chosen sites to realize op on the current
//occupancy, drawing uniformly among the realizations counted by Links.
//The caller guarantees op is applicable.
func (k *Kernel) applyFlip(op compspace.FlipOp) []siteChange {
	var changed []siteChange
	from := op.From()
	to := op.To()
	for p := range from {
		if len(from[p]) == 0 && len(to[p]) == 0 {
			continue
		}
		lo, hi := k.ens.SublatticeSites(p)
		freed := make([]int, 0)
		for _, sp := range sortedKeys(from[p]) {
			take := from[p][sp]
			cands := make([]int, 0, hi-lo)
			for site := lo; site < hi; site++ {
				if k.occ[site] == sp {
					cands = append(cands, site)
				}
			}
			for t := 0; t < take; t++ {
				r := t + k.rng.Intn(len(cands)-t)
				cands[t], cands[r] = cands[r], cands[t]
				freed = append(freed, cands[t])
			}
		}
		k.rng.Shuffle(len(freed), func(i, j int) { freed[i], freed[j] = freed[j], freed[i] })
		i := 0
		for _, sp := range sortedKeys(to[p]) {
			for n := to[p][sp]; n > 0; n-- {
				site := freed[i]
				i++
				changed = append(changed, siteChange{site: site, old: k.occ[site]})
				k.occ[site] = sp
			}
		}
	}
	return changed
}

//deltaCounts returns the per-sublattice species counts after applying op
//to counts.
func deltaCounts(counts [][]int, op compspace.FlipOp) [][]int {
	after := make([][]int, len(counts))
	for p := range counts {
		after[p] = append([]int(nil), counts[p]...)
	}
	for p, m := range op.From() {
		for sp, n := range m {
			after[p][sp] -= n
		}
	}
	for p, m := range op.To() {
		for sp, n := range m {
			after[p][sp] += n
		}
	}
	return after
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

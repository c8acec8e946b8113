/*
 * sample.go, part of goCE.
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

//Package sample generates training structures for a cluster expansion by
//constrained Monte Carlo: simulated annealing toward a ground state,
//followed by an "unfreezing" heating ladder that harvests diverse,
//decorrelated, deduplicated occupancies.
//
//A Generator is built in one of two variants. The canonical variant keeps
//an exact target composition and samples with swap moves; the semigrand
//variant starts from the centroid of the valid composition polytope,
//shifts the enthalpy by chemical potentials, and lets the composition
//fluctuate, using charge-conserving table-flip moves whenever any species
//carries a nonzero formal charge.
//
//A Generator is not safe for concurrent use: annealing and sampling
//mutate its cached state. Independent generators are fully independent.
package sample

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mitchellh/hashstructure"
	"github.com/sirupsen/logrus"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
	"github.com/tsaari/goce/mc"
)

//Sample is one accepted training structure together with its source
//occupancy and the temperature and production step at which it was
//captured.
type Sample struct {
	Structure   *ce.Structure
	Occupancy   []int
	Enthalpy    float64
	Temperature float64
	Step        int
}

//Generator owns the Monte Carlo capability bundle for one supercell and
//one target composition or chemical-potential set. The ground-state
//occupancy found by the first annealing run is cached for the life of the
//generator and never reset.
type Generator struct {
	eval    ce.Evaluator //the evaluator sampled; semigrand-shifted in that variant
	dec     ce.Decoder
	space   *compspace.Space
	scSize  int
	target  [][]int
	kind    mc.StepKind
	ens     *mc.Ensemble
	kernel  *mc.Kernel
	sampler *mc.Sampler
	rng     *rand.Rand
	o       *Options
	log     *logrus.Logger
	ground  []int
	groundH float64
}

//NewCanonical builds a fixed-composition generator. counts is the exact
//per-sublattice species count target at the decoder's supercell size, in
//the nested layout of the space; it is validated against the site-count
//totals and any declared composition constraints before any sampling can
//start. Moves are species swaps, so the composition never drifts.
func NewCanonical(eval ce.Evaluator, dec ce.Decoder, space *compspace.Space, counts [][]int, o *Options) (*Generator, error) {
	if space == nil {
		return nil, newConstraintError("sample.NewCanonical: nil space")
	}
	if dec == nil {
		return nil, newConstraintError("sample.NewCanonical: nil decoder")
	}
	scSize, err := supercellSize(space, dec)
	if err != nil {
		return nil, errDecorate(err, "sample.NewCanonical")
	}
	if err := checkTarget(space, counts, scSize); err != nil {
		return nil, errDecorate(err, "sample.NewCanonical")
	}
	g, err := newGenerator(eval, dec, space, scSize, counts, mc.StepSwap, o)
	if err != nil {
		return nil, errDecorate(err, "sample.NewCanonical")
	}
	return g, nil
}

//NewSemigrand builds a fixed-chemical-potential generator. mu holds one
//chemical potential per species in the nested layout of the space, in eV.
//The initial composition is the centroid of the valid polytope at the
//decoder's supercell size; sampling uses table-flip moves when any
//species carries a nonzero charge and swap moves otherwise.
func NewSemigrand(eval ce.Evaluator, dec ce.Decoder, space *compspace.Space, mu [][]float64, o *Options) (*Generator, error) {
	if space == nil {
		return nil, newConstraintError("sample.NewSemigrand: nil space")
	}
	if dec == nil {
		return nil, newConstraintError("sample.NewSemigrand: nil decoder")
	}
	scSize, err := supercellSize(space, dec)
	if err != nil {
		return nil, errDecorate(err, "sample.NewSemigrand")
	}
	shifted, err := mc.NewSemigrandEvaluator(eval, space, scSize, mu)
	if err != nil {
		return nil, errDecorate(err, "sample.NewSemigrand")
	}
	target, err := centroidCounts(space, scSize)
	if err != nil {
		return nil, errDecorate(err, "sample.NewSemigrand")
	}
	kind := mc.StepSwap
	if space.Charged() {
		kind = mc.StepTableFlip
	}
	g, err := newGenerator(shifted, dec, space, scSize, target, kind, o)
	if err != nil {
		return nil, errDecorate(err, "sample.NewSemigrand")
	}
	return g, nil
}

//newGenerator wires the shared capability bundle: ensemble, kernel,
//sampler, random source and logger.
func newGenerator(eval ce.Evaluator, dec ce.Decoder, space *compspace.Space, scSize int, target [][]int, kind mc.StepKind, o *Options) (*Generator, error) {
	o = o.fill()
	if err := o.check(); err != nil {
		return nil, err
	}
	ens, err := mc.NewEnsemble(space, scSize, eval)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(o.seed))
	kernel, err := mc.NewKernel(ens, kind, rng)
	if err != nil {
		return nil, err
	}
	sampler, err := mc.NewSampler(kernel, 1)
	if err != nil {
		return nil, err
	}
	cp := make([][]int, len(target))
	for i, row := range target {
		cp[i] = append([]int(nil), row...)
	}
	return &Generator{
		eval:    eval,
		dec:     dec,
		space:   space,
		scSize:  scSize,
		target:  cp,
		kind:    kind,
		ens:     ens,
		kernel:  kernel,
		sampler: sampler,
		rng:     rng,
		o:       o,
		log:     o.logger,
	}, nil
}

//Space returns the composition space of the generator.
func (g *Generator) Space() *compspace.Space { return g.space }

//SupercellSize returns the number of primitive cells in the supercell,
//derived from the decoder's site count.
func (g *Generator) SupercellSize() int { return g.scSize }

//StepKind returns the move class the generator samples with.
func (g *Generator) StepKind() mc.StepKind { return g.kind }

//Target returns the per-sublattice species count target of the initial
//occupancy: the exact composition for canonical generators, the polytope
//centroid for semigrand ones.
func (g *Generator) Target() [][]int {
	cp := make([][]int, len(g.target))
	for i, row := range g.target {
		cp[i] = append([]int(nil), row...)
	}
	return cp
}

//GroundState returns the minimum-enthalpy occupancy found by simulated
//annealing through the configured ladder, starting from the best of the
//electrostatically scored random initial occupancies. The result is
//cached: later calls return it without re-annealing.
func (g *Generator) GroundState() ([]int, error) {
	if g.ground != nil {
		return append([]int(nil), g.ground...), nil
	}
	occ0, err := g.initialOccupancy()
	if err != nil {
		return nil, errDecorate(err, "sample.GroundState")
	}
	if err := g.kernel.SetOccupancy(occ0); err != nil {
		return nil, errDecorate(err, "sample.GroundState")
	}
	g.log.WithFields(logrus.Fields{
		"phase":     "anneal",
		"rungs":     len(g.o.annealLadder),
		"steps":     g.o.annealSteps,
		"supercell": g.scSize,
	}).Info("annealing toward the ground state")
	best, bestH, err := g.sampler.Anneal(g.o.annealLadder, g.o.annealSteps)
	if err != nil {
		return nil, errDecorate(err, "sample.GroundState")
	}
	g.ground = best
	g.groundH = bestH
	g.sampler.Reset()
	g.log.WithFields(logrus.Fields{"phase": "anneal", "enthalpy": bestH}).Info("ground state found")
	return append([]int(nil), g.ground...), nil
}

//GroundEnthalpy returns the enthalpy of the cached ground state, running
//the annealing first if needed.
func (g *Generator) GroundEnthalpy() (float64, error) {
	if _, err := g.GroundState(); err != nil {
		return 0, errDecorate(err, "sample.GroundEnthalpy")
	}
	return g.groundH, nil
}

//Unfrozen heats the system up from the ground state through the
//configured non-decreasing ladder and harvests up to maxSamples unique
//structures. At each temperature one equilibration pass runs unrecorded,
//then a production pass twice as long, of which only the second half is
//retained at a thinning interval sized so the candidate pool is roughly
//ten times maxSamples. Candidates are deduplicated in capture order
//against the ground state, the caller-supplied previous structures and
//the samples accepted so far. If the pool runs out first, the partial
//list is returned together with a non-critical DegenerateError.
func (g *Generator) Unfrozen(previous []*ce.Structure, maxSamples int) ([]Sample, error) {
	if maxSamples < 1 {
		return nil, newConstraintError(fmt.Sprintf("sample.Unfrozen: requested %d samples", maxSamples))
	}
	gs, err := g.GroundState()
	if err != nil {
		return nil, errDecorate(err, "sample.Unfrozen")
	}
	gsStruct, err := g.dec.Decode(gs)
	if err != nil {
		return nil, errDecorate(err, "sample.Unfrozen")
	}
	thin := len(g.o.heatLadder) * g.o.heatSteps / (10 * maxSamples)
	if thin < 1 {
		thin = 1
	}
	if err := g.sampler.SetThinBy(thin); err != nil {
		return nil, errDecorate(err, "sample.Unfrozen")
	}
	g.sampler.Reset()
	if err := g.kernel.SetOccupancy(gs); err != nil {
		return nil, errDecorate(err, "sample.Unfrozen")
	}
	chain := g.sampler.Chain()
	candidates := make([]mc.Record, 0)
	for _, T := range g.o.heatLadder {
		g.log.WithFields(logrus.Fields{
			"phase":       "unfreeze",
			"temperature": T,
			"steps":       g.o.heatSteps,
			"thin":        thin,
		}).Info("equilibrating")
		if err := g.kernel.SetTemperature(T); err != nil {
			return nil, errDecorate(err, "sample.Unfrozen")
		}
		for n := 0; n < g.o.heatSteps; n++ {
			g.kernel.Step()
		}
		before := chain.Len()
		if err := g.sampler.Run(T, 2*g.o.heatSteps); err != nil {
			return nil, errDecorate(err, "sample.Unfrozen")
		}
		candidates = append(candidates, chain.Records(before+(chain.Len()-before)/2)...)
	}
	g.sampler.Reset()

	accepted, err := g.dedupe(gsStruct, previous, candidates, maxSamples)
	if err != nil {
		return nil, errDecorate(err, "sample.Unfrozen")
	}
	g.log.WithFields(logrus.Fields{
		"phase":      "unfreeze",
		"candidates": len(candidates),
		"accepted":   len(accepted),
		"requested":  maxSamples,
	}).Info("sampling finished")
	if len(accepted) < maxSamples {
		return accepted, newDegenerateError(fmt.Sprintf("sample.Unfrozen: candidate pool exhausted at %d of %d requested samples", len(accepted), maxSamples))
	}
	return accepted, nil
}

//dedupe walks the candidates in capture order and keeps the first
//maxSamples structures not matching the ground state, any previous
//structure, or an already accepted one. An occupancy fingerprint filters
//exact repeats before the structural comparison runs.
func (g *Generator) dedupe(gsStruct *ce.Structure, previous []*ce.Structure, candidates []mc.Record, maxSamples int) ([]Sample, error) {
	seen := make([]*ce.Structure, 0, len(previous)+1)
	seen = append(seen, gsStruct)
	seen = append(seen, previous...)
	fingerprints := make(map[uint64]bool)
	if fp, err := hashstructure.Hash(g.ground, nil); err == nil {
		fingerprints[fp] = true
	}
	accepted := make([]Sample, 0, maxSamples)
	for _, rec := range candidates {
		if len(accepted) == maxSamples {
			break
		}
		fp, fpErr := hashstructure.Hash(rec.Occupancy, nil)
		if fpErr == nil && fingerprints[fp] {
			continue
		}
		st, err := g.dec.Decode(rec.Occupancy)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, other := range seen {
			m, err := g.o.matcher.Match(st, other, g.o.ignoreDecor)
			if err != nil {
				return nil, err
			}
			if m {
				dup = true
				break
			}
		}
		if fpErr == nil {
			fingerprints[fp] = true
		}
		if dup {
			continue
		}
		seen = append(seen, st)
		accepted = append(accepted, Sample{
			Structure:   st,
			Occupancy:   rec.Occupancy,
			Enthalpy:    rec.Enthalpy,
			Temperature: rec.Temperature,
			Step:        rec.Step,
		})
	}
	return accepted, nil
}

//supercellSize derives the supercell size from the decoder's site count
//and the primitive site total of the space.
func supercellSize(space *compspace.Space, dec ce.Decoder) (int, error) {
	prim := 0
	for _, sub := range space.Sublattices() {
		prim += sub.Sites()
	}
	n := dec.NSites()
	if prim == 0 || n < prim || n%prim != 0 {
		return 0, newConstraintError(fmt.Sprintf("sample: decoder has %d sites, not a multiple of the %d primitive sites", n, prim))
	}
	return n / prim, nil
}

//checkTarget validates a canonical composition target: full nested
//layout, non-negative entries, exact per-sublattice site totals, and any
//declared composition constraints. Charge balance is not required here;
//swap moves conserve whatever composition is supplied.
func checkTarget(space *compspace.Space, counts [][]int, scSize int) error {
	if len(counts) != space.NSublattices() {
		return newConstraintError(fmt.Sprintf("sample: target has %d sublattices, space has %d", len(counts), space.NSublattices()))
	}
	flat := make([]int, 0)
	for i, row := range counts {
		sub := space.Sublattice(i)
		if len(row) != sub.NSpecies() {
			return newConstraintError(fmt.Sprintf("sample: target row %d has %d entries for %d species", i, len(row), sub.NSpecies()))
		}
		sum := 0
		for _, n := range row {
			if n < 0 {
				return newConstraintError(fmt.Sprintf("sample: negative species count in target row %d", i))
			}
			sum += n
		}
		if sum != sub.Sites()*scSize {
			return newConstraintError(fmt.Sprintf("sample: target row %d sums to %d, sublattice has %d sites", i, sum, sub.Sites()*scSize))
		}
		flat = append(flat, row...)
	}
	const tol = 1e-8
	for _, c := range space.Constraints() {
		lhs := 0.0
		for k, coef := range c.Coefs() {
			lhs += coef * float64(flat[k])
		}
		rhs := c.RHS() * float64(scSize)
		ok := true
		switch c.Rel() {
		case compspace.RelEq:
			ok = math.Abs(lhs-rhs) <= tol
		case compspace.RelLeq:
			ok = lhs <= rhs+tol
		case compspace.RelGeq:
			ok = lhs >= rhs-tol
		}
		if !ok {
			return newConstraintError(fmt.Sprintf("sample: target violates the constraint %v", c))
		}
	}
	return nil
}

//centroidCounts translates the integer centroid of the valid polytope
//into nested per-sublattice species counts.
func centroidCounts(space *compspace.Space, scSize int) ([][]int, error) {
	x, err := space.Centroid(scSize)
	if err != nil {
		return nil, err
	}
	xf := make([]float64, len(x))
	for i, v := range x {
		xf[i] = float64(v)
	}
	flat, err := space.UnconstrainedToCounts(xf, scSize)
	if err != nil {
		return nil, err
	}
	return space.Nest(flat), nil
}

/*
 * sample_test.go, part of goCE.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
	"github.com/tsaari/goce/mc"
)

//countingEval wraps an evaluator and counts the calls, so tests can tell
//whether a cached result re-ran the sampling.
type countingEval struct {
	base  ce.Evaluator
	calls int
}

func (c *countingEval) Enthalpy(occ []int) float64 {
	c.calls++
	return c.base.Enthalpy(occ)
}

//cubicDecoder builds a supercell decoder over a 4 A cube stretched to
//det cells along x.
func cubicDecoder(Te *testing.T, subs []*ce.Sublattice, frac []float64, det int) *ce.SupercellDecoder {
	Te.Helper()
	lattice := mat.NewDense(3, 3, []float64{4, 0, 0, 0, 4, 0, 0, 0, 4})
	fm := mat.NewDense(len(frac)/3, 3, frac)
	sc := [3][3]int{{det, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	dec, err := ce.NewSupercellDecoder(lattice, fm, subs, sc)
	require.NoError(Te, err)
	return dec
}

//scenarioSystem builds the Li+/Mn2+/Mn3+/Vac cation, O2-/F- anion test
//system: two cation sites and one anion site per primitive cell.
func scenarioSystem(Te *testing.T, det int) (*compspace.Space, *ce.SupercellDecoder, ce.Evaluator) {
	Te.Helper()
	cat, err := ce.ParseSublattice([]string{"Li+", "Mn2+", "Mn3+", "Vac"}, 2)
	require.NoError(Te, err)
	an, err := ce.ParseSublattice([]string{"O2-", "F-"}, 1)
	require.NoError(Te, err)
	space, err := compspace.New([]*ce.Sublattice{cat, an})
	require.NoError(Te, err)
	dec := cubicDecoder(Te, []*ce.Sublattice{cat, an}, []float64{
		0, 0, 0,
		0.5, 0.5, 0,
		0.5, 0.5, 0.5,
	}, det)
	eval, err := mc.NewPairModel(space, det, [][]float64{{0.1, 0.3, 0.2, 0}, {0, 0.1}}, 0.15)
	require.NoError(Te, err)
	return space, dec, eval
}

//lmtpoSystem builds the Li+/Mn3+/Ti4+ cation, P3-/O2- anion test system,
//one site each.
func lmtpoSystem(Te *testing.T, det int) (*compspace.Space, *ce.SupercellDecoder, ce.Evaluator) {
	Te.Helper()
	cat, err := ce.ParseSublattice([]string{"Li+", "Mn3+", "Ti4+"}, 1)
	require.NoError(Te, err)
	an, err := ce.ParseSublattice([]string{"P3-", "O2-"}, 1)
	require.NoError(Te, err)
	space, err := compspace.New([]*ce.Sublattice{cat, an})
	require.NoError(Te, err)
	dec := cubicDecoder(Te, []*ce.Sublattice{cat, an}, []float64{
		0, 0, 0,
		0.5, 0.5, 0.5,
	}, det)
	eval, err := mc.NewPairModel(space, det, [][]float64{{0, 0.4, 0.1}, {0.3, 0}}, 0.1)
	require.NoError(Te, err)
	return space, dec, eval
}

func quickOptions() *Options {
	return DefaultOptions().
		AnnealLadder(800, 400, 200).
		AnnealSteps(400).
		HeatLadder(300, 600).
		HeatSteps(400).
		Seed(23)
}

func TestCanonicalScenario(Te *testing.T) {
	space, dec, base := scenarioSystem(Te, 6)
	eval := &countingEval{base: base}
	target := [][]int{{3, 1, 2, 6}, {4, 2}}
	g, err := NewCanonical(eval, dec, space, target, quickOptions())
	require.NoError(Te, err)
	assert.Equal(Te, 6, g.SupercellSize())
	assert.Equal(Te, mc.StepSwap, g.StepKind())
	assert.Equal(Te, target, g.Target())

	gs, err := g.GroundState()
	require.NoError(Te, err)
	require.Len(Te, gs, 18)
	ens, err := mc.NewEnsemble(space, 6, eval)
	require.NoError(Te, err)
	assert.Equal(Te, target, ens.SpeciesCounts(gs), "the ground state must realize the target exactly")

	//idempotent: the second call returns the cache without re-annealing
	callsAfter := eval.calls
	gs2, err := g.GroundState()
	require.NoError(Te, err)
	assert.Equal(Te, gs, gs2)
	assert.Equal(Te, callsAfter, eval.calls)

	samples, err := g.Unfrozen(nil, 20)
	if err != nil {
		require.True(Te, ce.IsDegenerate(err), "pool exhaustion is the only acceptable error")
		var serr ce.SamplingError
		require.ErrorAs(Te, err, &serr)
		assert.False(Te, serr.Critical())
	}
	assert.LessOrEqual(Te, len(samples), 20)
	matcher := ce.NewTranslationMatcher(1e-5)
	gsStruct, err := dec.Decode(gs)
	require.NoError(Te, err)
	for i, s := range samples {
		require.NotNil(Te, s.Structure)
		require.Len(Te, s.Occupancy, 18)
		assert.Equal(Te, target, ens.SpeciesCounts(s.Occupancy), "swap sampling must conserve the composition")
		assert.Greater(Te, s.Step, 0)
		assert.Contains(Te, []float64{300, 600}, s.Temperature)
		same, err := matcher.Match(s.Structure, gsStruct, false)
		require.NoError(Te, err)
		assert.False(Te, same, "the ground state is excluded from the unfrozen set")
		for j := i + 1; j < len(samples); j++ {
			same, err := matcher.Match(s.Structure, samples[j].Structure, false)
			require.NoError(Te, err)
			assert.False(Te, same, "unfrozen samples %d and %d duplicate each other", i, j)
		}
	}
}

func TestCanonicalTargetValidation(Te *testing.T) {
	space, dec, eval := scenarioSystem(Te, 6)

	//row sums must hit the sublattice site totals exactly
	_, err := NewCanonical(eval, dec, space, [][]int{{3, 1, 2, 5}, {4, 2}}, quickOptions())
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	//every species needs an explicit count
	_, err = NewCanonical(eval, dec, space, [][]int{{3, 1, 2}, {4, 2}}, quickOptions())
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = NewCanonical(eval, dec, space, [][]int{{3, 1, 2, 6}, {-1, 7}}, quickOptions())
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = NewCanonical(eval, dec, space, [][]int{{3, 1, 2, 6}}, quickOptions())
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestCanonicalConstraintBounds(Te *testing.T) {
	cat, err := ce.ParseSublattice([]string{"Li+", "Mn3+", "Ti4+"}, 1)
	require.NoError(Te, err)
	an, err := ce.ParseSublattice([]string{"P3-", "O2-"}, 1)
	require.NoError(Te, err)
	bounds, err := compspace.ConcentrationBounds([]*ce.Sublattice{cat, an}, 0, "Li+", 0.4, 1)
	require.NoError(Te, err)
	space, err := compspace.New([]*ce.Sublattice{cat, an}, bounds...)
	require.NoError(Te, err)
	dec := cubicDecoder(Te, []*ce.Sublattice{cat, an}, []float64{
		0, 0, 0,
		0.5, 0.5, 0.5,
	}, 6)
	eval, err := mc.NewPairModel(space, 6, [][]float64{{0, 0, 0}, {0, 0}}, 0.1)
	require.NoError(Te, err)

	//Li fraction 1/2 >= 0.4 passes
	_, err = NewCanonical(eval, dec, space, [][]int{{3, 1, 2}, {2, 4}}, quickOptions())
	require.NoError(Te, err)

	//Li fraction 1/3 violates the declared bound
	_, err = NewCanonical(eval, dec, space, [][]int{{2, 2, 2}, {4, 2}}, quickOptions())
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestSemigrandVariant(Te *testing.T) {
	space, dec, base := lmtpoSystem(Te, 6)
	eval := &countingEval{base: base}
	mu := [][]float64{{0.2, 0, -0.1}, {0, 0.05}}
	g, err := NewSemigrand(eval, dec, space, mu, quickOptions())
	require.NoError(Te, err)
	assert.Equal(Te, mc.StepTableFlip, g.StepKind(), "a charged space needs neutrality-conserving moves")
	assert.Equal(Te, [][]int{{2, 3, 1}, {3, 3}}, g.Target(), "the initial target is the polytope centroid")

	gs, err := g.GroundState()
	require.NoError(Te, err)
	require.Len(Te, gs, 12)
	callsAfter := eval.calls
	_, err = g.GroundState()
	require.NoError(Te, err)
	assert.Equal(Te, callsAfter, eval.calls)

	ens, err := mc.NewEnsemble(space, 6, eval)
	require.NoError(Te, err)
	samples, err := g.Unfrozen(nil, 8)
	if err != nil {
		require.True(Te, ce.IsDegenerate(err))
	}
	assert.LessOrEqual(Te, len(samples), 8)
	for _, s := range samples {
		counts := ens.SpeciesCounts(s.Occupancy)
		flat, err := space.Flatten(counts)
		require.NoError(Te, err)
		require.NoError(Te, space.CheckCounts(flat, 6), "semigrand samples must stay charge-neutral")
	}

	//a neutral space gets plain swap moves
	au, err := ce.ParseSublattice([]string{"Au", "Ag"}, 1)
	require.NoError(Te, err)
	cu, err := ce.ParseSublattice([]string{"Cu", "Vac"}, 2)
	require.NoError(Te, err)
	nspace, err := compspace.New([]*ce.Sublattice{au, cu})
	require.NoError(Te, err)
	ndec := cubicDecoder(Te, []*ce.Sublattice{au, cu}, []float64{
		0, 0, 0,
		0.5, 0.5, 0,
		0.5, 0.5, 0.5,
	}, 4)
	neval, err := mc.NewPairModel(nspace, 4, [][]float64{{0, 0.2}, {0.1, 0}}, 0.1)
	require.NoError(Te, err)
	ng, err := NewSemigrand(neval, ndec, nspace, [][]float64{{0.1, 0}, {0, 0.05}}, quickOptions())
	require.NoError(Te, err)
	assert.Equal(Te, mc.StepSwap, ng.StepKind())
}

func TestUnfrozenDeduplicatesTranslations(Te *testing.T) {
	//One Au/Ag site stretched to two cells: the only two occupancies at
	//composition (1,1) are pure translations of each other, so nothing
	//beyond the ground state can ever be accepted.
	sub, err := ce.ParseSublattice([]string{"Au", "Ag"}, 1)
	require.NoError(Te, err)
	space, err := compspace.New([]*ce.Sublattice{sub})
	require.NoError(Te, err)
	dec := cubicDecoder(Te, []*ce.Sublattice{sub}, []float64{0, 0, 0}, 2)
	eval, err := mc.NewPairModel(space, 2, [][]float64{{0, 0.1}}, 0.3)
	require.NoError(Te, err)

	g, err := NewCanonical(eval, dec, space, [][]int{{1, 1}}, quickOptions())
	require.NoError(Te, err)
	samples, err := g.Unfrozen(nil, 5)
	require.Error(Te, err)
	assert.True(Te, ce.IsDegenerate(err))
	var serr ce.SamplingError
	require.ErrorAs(Te, err, &serr)
	assert.False(Te, serr.Critical())
	assert.Empty(Te, samples)
}

func TestUnfrozenPreviousStructures(Te *testing.T) {
	//Declaring every structure of the two-cell Au/Ag system as already
	//seen leaves nothing to accept even before the ground-state check.
	sub, err := ce.ParseSublattice([]string{"Au", "Ag"}, 1)
	require.NoError(Te, err)
	space, err := compspace.New([]*ce.Sublattice{sub})
	require.NoError(Te, err)
	dec := cubicDecoder(Te, []*ce.Sublattice{sub}, []float64{0, 0, 0}, 2)
	eval, err := mc.NewPairModel(space, 2, [][]float64{{0, 0.1}}, 0.3)
	require.NoError(Te, err)
	prev, err := dec.Decode([]int{0, 1})
	require.NoError(Te, err)

	g, err := NewCanonical(eval, dec, space, [][]int{{1, 1}}, quickOptions())
	require.NoError(Te, err)
	samples, err := g.Unfrozen([]*ce.Structure{prev}, 5)
	require.Error(Te, err)
	assert.True(Te, ce.IsDegenerate(err))
	assert.Empty(Te, samples)

	_, err = g.Unfrozen(nil, 0)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestOptionValidation(Te *testing.T) {
	space, dec, eval := lmtpoSystem(Te, 6)
	target := [][]int{{3, 1, 2}, {2, 4}}

	_, err := NewCanonical(eval, dec, space, target, quickOptions().AnnealLadder(200, 400))
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = NewCanonical(eval, dec, space, target, quickOptions().HeatLadder(600, 300))
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = NewCanonical(eval, dec, space, target, quickOptions().AnnealSteps(-5))
	require.Error(Te, err)

	_, err = NewCanonical(eval, dec, space, target, quickOptions().InitialTrials(-1))
	require.Error(Te, err)

	//nil options mean defaults
	g, err := NewCanonical(eval, dec, space, target, nil)
	require.NoError(Te, err)
	assert.Equal(Te, mc.StepSwap, g.StepKind())
}

func TestDecoderMismatch(Te *testing.T) {
	//a 15-site decoder cannot tile a two-site primitive cell
	space, _, eval := lmtpoSystem(Te, 6)
	_, scenarioDec, _ := scenarioSystem(Te, 5)
	_, err := NewCanonical(eval, scenarioDec, space, [][]int{{3, 1, 2}, {2, 4}}, quickOptions())
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestErrorContract(Te *testing.T) {
	var err ce.Error = newConstraintError("empty ladder")
	assert.NotEmpty(Te, err.Error())
	assert.Equal(Te, []string{"TestErrorContract"}, err.Decorate("TestErrorContract"))
	assert.True(Te, ce.IsConstraint(err))
	var serr ce.SamplingError = newDegenerateError("pool exhausted")
	assert.False(Te, serr.Critical())
	assert.True(Te, ce.IsDegenerate(serr))
}

func TestIgnoreDecorations(Te *testing.T) {
	o := DefaultOptions()
	assert.False(Te, o.fill().ignoreDecor)
	assert.Same(Te, o, o.IgnoreDecorations(true))
	assert.True(Te, o.fill().ignoreDecor)
}

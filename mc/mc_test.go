/*
 * mc_test.go, part of goCE.
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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
)

//lmtpoSpace builds the rock-salt-like test system with a Li+/Mn3+/Ti4+
//cation sublattice and a P3-/O2- anion sublattice, one site each.
func lmtpoSpace(Te *testing.T) *compspace.Space {
	Te.Helper()
	cat, err := ce.NewSublattice([]ce.Species{
		ce.MustParseSpecies("Li+"),
		ce.MustParseSpecies("Mn3+"),
		ce.MustParseSpecies("Ti4+"),
	}, 1)
	require.NoError(Te, err)
	an, err := ce.NewSublattice([]ce.Species{
		ce.MustParseSpecies("P3-"),
		ce.MustParseSpecies("O2-"),
	}, 1)
	require.NoError(Te, err)
	s, err := compspace.New([]*ce.Sublattice{cat, an})
	require.NoError(Te, err)
	return s
}

//lmtpoEnsemble builds a supercell-6 ensemble over the test system with a
//pair model carrying the given site terms and coupling.
func lmtpoEnsemble(Te *testing.T, site [][]float64, coupling float64) *Ensemble {
	Te.Helper()
	s := lmtpoSpace(Te)
	model, err := NewPairModel(s, 6, site, coupling)
	require.NoError(Te, err)
	ens, err := NewEnsemble(s, 6, model)
	require.NoError(Te, err)
	return ens
}

func flatSite() [][]float64 {
	return [][]float64{{0, 0, 0}, {0, 0}}
}

func TestEnsembleLayout(Te *testing.T) {
	ens := lmtpoEnsemble(Te, flatSite(), 0)
	assert.Equal(Te, 12, ens.NSites())
	assert.Equal(Te, 6, ens.SupercellSize())
	lo, hi := ens.SublatticeSites(0)
	assert.Equal(Te, 0, lo)
	assert.Equal(Te, 6, hi)
	lo, hi = ens.SublatticeSites(1)
	assert.Equal(Te, 6, lo)
	assert.Equal(Te, 12, hi)
	assert.Equal(Te, 0, ens.SublatticeOf(5))
	assert.Equal(Te, 1, ens.SublatticeOf(6))

	occ := []int{0, 0, 0, 1, 2, 2, 0, 0, 1, 1, 1, 1}
	require.NoError(Te, ens.CheckOccupancy(occ))
	assert.Equal(Te, [][]int{{3, 1, 2}, {2, 4}}, ens.SpeciesCounts(occ))

	err := ens.CheckOccupancy(occ[:11])
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
	bad := append([]int(nil), occ...)
	bad[7] = 2 //the anion sublattice only has two species
	err = ens.CheckOccupancy(bad)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestOccupancyFromCounts(Te *testing.T) {
	ens := lmtpoEnsemble(Te, flatSite(), 0)
	rng := rand.New(rand.NewSource(7))

	counts := [][]int{{3, 1, 2}, {2, 4}}
	occ, err := ens.OccupancyFromCounts(counts, rng)
	require.NoError(Te, err)
	require.NoError(Te, ens.CheckOccupancy(occ))
	assert.Equal(Te, counts, ens.SpeciesCounts(occ))

	//net charge +1, off the neutral grid
	_, err = ens.OccupancyFromCounts([][]int{{4, 1, 1}, {2, 4}}, rng)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = ens.OccupancyFromCounts(counts, nil)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestKernelConstruction(Te *testing.T) {
	ens := lmtpoEnsemble(Te, flatSite(), 0)
	rng := rand.New(rand.NewSource(1))

	_, err := NewKernel(nil, StepSwap, rng)
	require.Error(Te, err)
	_, err = NewKernel(ens, StepSwap, nil)
	require.Error(Te, err)
	_, err = NewKernel(ens, StepKind(99), rng)
	require.Error(Te, err)

	k, err := NewKernel(ens, StepTableFlip, rng)
	require.NoError(Te, err)
	assert.Equal(Te, StepTableFlip, k.Kind())

	err = k.SetTemperature(-10)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	//a single-species system has nothing to flip
	au, err := ce.NewSublattice([]ce.Species{ce.MustParseSpecies("Au")}, 1)
	require.NoError(Te, err)
	s, err := compspace.New([]*ce.Sublattice{au})
	require.NoError(Te, err)
	model, err := NewPairModel(s, 2, [][]float64{{0}}, 0)
	require.NoError(Te, err)
	ens1, err := NewEnsemble(s, 2, model)
	require.NoError(Te, err)
	_, err = NewKernel(ens1, StepTableFlip, rng)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestKernelSwap(Te *testing.T) {
	ens := lmtpoEnsemble(Te, flatSite(), 0.2)
	rng := rand.New(rand.NewSource(11))
	k, err := NewKernel(ens, StepSwap, rng)
	require.NoError(Te, err)

	counts := [][]int{{3, 1, 2}, {2, 4}}
	occ, err := ens.OccupancyFromCounts(counts, rng)
	require.NoError(Te, err)
	require.NoError(Te, k.SetOccupancy(occ))
	require.NoError(Te, k.SetTemperature(2000))

	for n := 0; n < 400; n++ {
		k.Step()
	}
	assert.Equal(Te, 400, k.Steps())
	assert.Greater(Te, k.Accepted(), 0)

	cur := k.Occupancy()
	require.NoError(Te, ens.CheckOccupancy(cur))
	assert.Equal(Te, counts, ens.SpeciesCounts(cur), "swap moves must conserve the composition")
	assert.Equal(Te, counts, k.Counts())
	assert.InDelta(Te, ens.Enthalpy(cur), k.CurrentEnthalpy(), 1e-12)
}

func TestKernelTableFlip(Te *testing.T) {
	ens := lmtpoEnsemble(Te, flatSite(), 0.1)
	rng := rand.New(rand.NewSource(13))
	k, err := NewKernel(ens, StepTableFlip, rng)
	require.NoError(Te, err)

	occ, err := ens.OccupancyFromCounts([][]int{{3, 1, 2}, {2, 4}}, rng)
	require.NoError(Te, err)
	require.NoError(Te, k.SetOccupancy(occ))
	require.NoError(Te, k.SetTemperature(5000))

	moved := false
	for n := 0; n < 600; n++ {
		k.Step()
		cur := k.Occupancy()
		counts := ens.SpeciesCounts(cur)
		assert.Equal(Te, counts, k.Counts(), "the incremental counts must track the occupancy")
		flat, err := ens.Space().Flatten(counts)
		require.NoError(Te, err)
		require.NoError(Te, ens.Space().CheckCounts(flat, 6), "flips must stay on the neutral grid")
		if counts[0][0] != 3 {
			moved = true
		}
	}
	assert.True(Te, moved, "at 5000 K some flips should be accepted")
	assert.InDelta(Te, ens.Enthalpy(k.Occupancy()), k.CurrentEnthalpy(), 1e-12)
}

func TestAnneal(Te *testing.T) {
	//Mn3+ is penalized on cations, P3- on anions, so annealing should
	//drift away from both where the flip table allows it.
	ens := lmtpoEnsemble(Te, [][]float64{{0, 0.8, 0}, {0.6, 0}}, 0.05)
	rng := rand.New(rand.NewSource(17))
	k, err := NewKernel(ens, StepTableFlip, rng)
	require.NoError(Te, err)
	s, err := NewSampler(k, 1)
	require.NoError(Te, err)

	_, _, err = s.Anneal([]float64{1000, 500}, 10)
	require.Error(Te, err, "annealing without an occupancy must fail")

	occ, err := ens.OccupancyFromCounts([][]int{{3, 1, 2}, {2, 4}}, rng)
	require.NoError(Te, err)
	require.NoError(Te, k.SetOccupancy(occ))
	startH := k.CurrentEnthalpy()

	_, _, err = s.Anneal(nil, 10)
	require.Error(Te, err)
	_, _, err = s.Anneal([]float64{500, 1000}, 10)
	require.Error(Te, err)
	_, _, err = s.Anneal([]float64{1000, -2}, 10)
	require.Error(Te, err)
	_, _, err = s.Anneal([]float64{1000, 500}, 0)
	require.Error(Te, err)

	best, bestH, err := s.Anneal([]float64{3000, 1500, 800, 400, 200}, 300)
	require.NoError(Te, err)
	require.NoError(Te, ens.CheckOccupancy(best))
	assert.LessOrEqual(Te, bestH, startH)
	assert.InDelta(Te, ens.Enthalpy(best), bestH, 1e-12)
	assert.Equal(Te, 0, s.Chain().Len(), "annealing must not record into the chain")
}

func TestRunAndChain(Te *testing.T) {
	ens := lmtpoEnsemble(Te, flatSite(), 0.2)
	rng := rand.New(rand.NewSource(19))
	k, err := NewKernel(ens, StepSwap, rng)
	require.NoError(Te, err)
	s, err := NewSampler(k, 10)
	require.NoError(Te, err)

	err = s.Run(1000, 100)
	require.Error(Te, err, "running without an occupancy must fail")

	occ, err := ens.OccupancyFromCounts([][]int{{3, 1, 2}, {2, 4}}, rng)
	require.NoError(Te, err)
	require.NoError(Te, k.SetOccupancy(occ))

	require.NoError(Te, s.Run(1000, 500))
	chain := s.Chain()
	require.Equal(Te, 50, chain.Len())
	assert.Equal(Te, 500, s.Steps())

	for i := 0; i < chain.Len(); i++ {
		r := chain.Record(i)
		assert.Equal(Te, (i+1)*10, r.Step)
		assert.InDelta(Te, 1000.0, r.Temperature, 1e-12)
		assert.InDelta(Te, ens.Enthalpy(r.Occupancy), r.Enthalpy, 1e-12)
	}

	//a second run continues the step count
	require.NoError(Te, s.Run(800, 100))
	require.Equal(Te, 60, chain.Len())
	assert.Equal(Te, 600, chain.Record(59).Step)
	assert.InDelta(Te, 800.0, chain.Record(59).Temperature, 1e-12)

	assert.Len(Te, chain.Occupancies(50), 10)
	assert.Len(Te, chain.Enthalpies(55), 5)
	assert.Len(Te, chain.Records(0), 60)

	min, err := chain.MinEnthalpy()
	require.NoError(Te, err)
	for _, h := range chain.Enthalpies(0) {
		assert.LessOrEqual(Te, min.Enthalpy, h)
	}

	//records own their occupancies
	r0 := chain.Record(0)
	r0.Occupancy[0] = -99
	assert.NotEqual(Te, -99, chain.Record(0).Occupancy[0])

	s.Reset()
	assert.Equal(Te, 0, chain.Len())
	assert.Equal(Te, 0, s.Steps())
	_, err = chain.MinEnthalpy()
	require.Error(Te, err)
}

func TestPairModel(Te *testing.T) {
	s := lmtpoSpace(Te)
	model, err := NewPairModel(s, 6, [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5}}, 1.0)
	require.NoError(Te, err)

	//cations: Li Li Mn Ti Ti Ti, anions: P O O O O O
	occ := []int{0, 0, 1, 2, 2, 2, 0, 1, 1, 1, 1, 1}
	//site terms: 2*0.1 + 0.2 + 3*0.3 + 0.4 + 5*0.5
	//adjacent equal pairs: (0,1), (3,4), (4,5) on cations, four O-O pairs
	want := 2*0.1 + 0.2 + 3*0.3 + 0.4 + 5*0.5 + 7*1.0
	assert.InDelta(Te, want, model.Enthalpy(occ), 1e-12)

	_, err = NewPairModel(s, 6, [][]float64{{0, 0}, {0, 0}}, 0)
	require.Error(Te, err)
	_, err = NewPairModel(s, 0, flatSite(), 0)
	require.Error(Te, err)
}

func TestSemigrandEvaluator(Te *testing.T) {
	s := lmtpoSpace(Te)
	base, err := NewPairModel(s, 6, flatSite(), 0)
	require.NoError(Te, err)
	mu := [][]float64{{0.5, 0.1, 0}, {0.2, 0}}
	sge, err := NewSemigrandEvaluator(base, s, 6, mu)
	require.NoError(Te, err)

	//cations: Li Li Li Mn Ti Ti, anions: P P O O O O
	occ := []int{0, 0, 0, 1, 2, 2, 0, 0, 1, 1, 1, 1}
	want := -(3*0.5 + 0.1 + 2*0.2)
	assert.InDelta(Te, want, sge.Enthalpy(occ), 1e-12)

	_, err = NewSemigrandEvaluator(nil, s, 6, mu)
	require.Error(Te, err)
	_, err = NewSemigrandEvaluator(base, s, 6, [][]float64{{0, 0, 0}})
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
}

func TestErrorContract(Te *testing.T) {
	var err ce.Error = newConstraintError("ensemble mismatch")
	assert.NotEmpty(Te, err.Error())
	assert.Equal(Te, []string{"TestErrorContract"}, err.Decorate("TestErrorContract"))
	assert.True(Te, ce.IsConstraint(err))
}

/*
 * sampler.go, part of goCE.
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

import "fmt"

//Sampler drives a kernel through annealing ladders and fixed-temperature
//production runs, recording every thinBy-th production step into a chain.
type Sampler struct {
	k      *Kernel
	chain  *Chain
	thinBy int
	total  int //production steps taken so far
}

//NewSampler wraps k with an empty chain. Every thinBy-th production step
//is recorded; thinBy must be at least 1.
func NewSampler(k *Kernel, thinBy int) (*Sampler, error) {
	if k == nil {
		return nil, newConstraintError("mc.NewSampler: nil kernel")
	}
	if thinBy < 1 {
		return nil, newConstraintError(fmt.Sprintf("mc.NewSampler: thinning interval %d is not positive", thinBy))
	}
	return &Sampler{k: k, chain: NewChain(), thinBy: thinBy}, nil
}

//Kernel returns the wrapped kernel.
func (s *Sampler) Kernel() *Kernel { return s.k }

//Chain returns the chain holding the recorded production snapshots.
func (s *Sampler) Chain() *Chain { return s.chain }

//ThinBy returns the thinning interval.
func (s *Sampler) ThinBy() int { return s.thinBy }

//SetThinBy changes the thinning interval for subsequent Run calls.
func (s *Sampler) SetThinBy(n int) error {
	if n < 1 {
		return newConstraintError(fmt.Sprintf("mc.SetThinBy: thinning interval %d is not positive", n))
	}
	s.thinBy = n
	return nil
}

//Steps returns the number of production steps taken through Run.
func (s *Sampler) Steps() int { return s.total }

//Anneal walks the kernel down a strictly decreasing temperature ladder,
//taking stepsPerT moves at each rung, and returns a copy of the
//lowest-enthalpy occupancy visited together with its enthalpy. Nothing is
//recorded into the chain.
func (s *Sampler) Anneal(ladder []float64, stepsPerT int) ([]int, float64, error) {
	if s.k.Occupancy() == nil {
		return nil, 0, newConstraintError("mc.Anneal: kernel has no occupancy set")
	}
	if len(ladder) == 0 {
		return nil, 0, newConstraintError("mc.Anneal: empty temperature ladder")
	}
	if stepsPerT < 1 {
		return nil, 0, newConstraintError(fmt.Sprintf("mc.Anneal: %d steps per temperature is not positive", stepsPerT))
	}
	for i, T := range ladder {
		if T <= 0 {
			return nil, 0, newConstraintError(fmt.Sprintf("mc.Anneal: ladder temperature %v is not positive", T))
		}
		if i > 0 && T >= ladder[i-1] {
			return nil, 0, newConstraintError(fmt.Sprintf("mc.Anneal: ladder is not strictly decreasing at rung %d (%v >= %v)", i, T, ladder[i-1]))
		}
	}
	best := s.k.Occupancy()
	bestH := s.k.CurrentEnthalpy()
	for _, T := range ladder {
		if err := s.k.SetTemperature(T); err != nil {
			return nil, 0, errDecorate(err, "mc.Anneal")
		}
		for n := 0; n < stepsPerT; n++ {
			s.k.Step()
			if h := s.k.CurrentEnthalpy(); h < bestH {
				bestH = h
				best = s.k.Occupancy()
			}
		}
	}
	return best, bestH, nil
}

//Run takes nSteps production moves at temperature T, recording every
//thinBy-th step into the chain together with its enthalpy, temperature
//and cumulative production step index.
func (s *Sampler) Run(T float64, nSteps int) error {
	if s.k.Occupancy() == nil {
		return newConstraintError("mc.Run: kernel has no occupancy set")
	}
	if nSteps < 1 {
		return newConstraintError(fmt.Sprintf("mc.Run: %d steps is not positive", nSteps))
	}
	if err := s.k.SetTemperature(T); err != nil {
		return errDecorate(err, "mc.Run")
	}
	for n := 0; n < nSteps; n++ {
		s.k.Step()
		s.total++
		if s.total%s.thinBy == 0 {
			s.chain.Append(s.k.Occupancy(), s.k.CurrentEnthalpy(), T, s.total)
		}
	}
	return nil
}

//Reset clears the chain and the production step counter. The kernel's
//occupancy and statistics are left untouched.
func (s *Sampler) Reset() {
	s.chain.Clear()
	s.total = 0
}

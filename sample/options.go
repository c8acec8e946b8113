/*
 * options.go, part of goCE.
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
	"time"

	"github.com/sirupsen/logrus"

	ce "github.com/tsaari/goce"
)

//Options configures a Generator. All knobs have defaults, so a nil
//Options is valid everywhere one is accepted. The setters return the
//object to allow chaining.
type Options struct {
	annealLadder []float64
	heatLadder   []float64
	annealSteps  int
	heatSteps    int
	initTrials   int
	seed         int64
	seedSet      bool
	matcher      ce.Matcher
	ignoreDecor  bool
	logger       *logrus.Logger
}

//DefaultOptions returns the default configuration: the standard annealing
//ladder from 5000 K down to 100 K, the 500/1500/5000 K heating ladder,
//50000 annealing and 100000 heating steps per temperature, 50 initial
//occupancy trials, a time-derived seed, translation-only structure
//matching with decorations compared, and a quiet logger.
func DefaultOptions() *Options {
	return &Options{
		annealLadder: []float64{5000, 3200, 1600, 1000, 800, 600, 400, 200, 100},
		heatLadder:   []float64{500, 1500, 5000},
		annealSteps:  50000,
		heatSteps:    100000,
		initTrials:   50,
	}
}

//AnnealLadder sets the annealing temperature ladder, in K. It must be
//strictly decreasing.
func (o *Options) AnnealLadder(T ...float64) *Options {
	o.annealLadder = append([]float64(nil), T...)
	return o
}

//HeatLadder sets the heating temperature ladder used by Unfrozen, in K.
//It must be non-decreasing.
func (o *Options) HeatLadder(T ...float64) *Options {
	o.heatLadder = append([]float64(nil), T...)
	return o
}

//AnnealSteps sets the number of Monte Carlo steps per annealing
//temperature.
func (o *Options) AnnealSteps(n int) *Options {
	o.annealSteps = n
	return o
}

//HeatSteps sets the number of equilibration steps per heating
//temperature. Production runs twice as long.
func (o *Options) HeatSteps(n int) *Options {
	o.heatSteps = n
	return o
}

//InitialTrials sets how many random occupancies are drawn and scored
//electrostatically when building the initial state.
func (o *Options) InitialTrials(n int) *Options {
	o.initTrials = n
	return o
}

//Seed fixes the random seed, making runs reproducible.
func (o *Options) Seed(seed int64) *Options {
	o.seed = seed
	o.seedSet = true
	return o
}

//Matcher sets the structure comparator used for deduplication.
func (o *Options) Matcher(m ce.Matcher) *Options {
	o.matcher = m
	return o
}

//IgnoreDecorations makes deduplication compare species by element only,
//so differently decorated versions of one arrangement count as
//duplicates.
func (o *Options) IgnoreDecorations(ignore bool) *Options {
	o.ignoreDecor = ignore
	return o
}

//Logger sets the logger used for phase-transition reporting.
func (o *Options) Logger(l *logrus.Logger) *Options {
	o.logger = l
	return o
}

//fill returns a copy of o with every unset knob at its default. A nil
//receiver yields the full default configuration.
func (o *Options) fill() *Options {
	def := DefaultOptions()
	if o == nil {
		o = def
	}
	cp := &Options{
		annealLadder: append([]float64(nil), o.annealLadder...),
		heatLadder:   append([]float64(nil), o.heatLadder...),
		annealSteps:  o.annealSteps,
		heatSteps:    o.heatSteps,
		initTrials:   o.initTrials,
		seed:         o.seed,
		seedSet:      o.seedSet,
		matcher:      o.matcher,
		ignoreDecor:  o.ignoreDecor,
		logger:       o.logger,
	}
	if cp.annealLadder == nil {
		cp.annealLadder = def.annealLadder
	}
	if cp.heatLadder == nil {
		cp.heatLadder = def.heatLadder
	}
	if cp.annealSteps == 0 {
		cp.annealSteps = def.annealSteps
	}
	if cp.heatSteps == 0 {
		cp.heatSteps = def.heatSteps
	}
	if cp.initTrials == 0 {
		cp.initTrials = def.initTrials
	}
	if !cp.seedSet {
		cp.seed = time.Now().UnixNano()
	}
	if cp.matcher == nil {
		cp.matcher = ce.NewTranslationMatcher(1e-5)
	}
	if cp.logger == nil {
		cp.logger = logrus.New()
		cp.logger.SetLevel(logrus.WarnLevel)
	}
	return cp
}

//check validates the filled configuration.
func (o *Options) check() error {
	if len(o.annealLadder) == 0 {
		return newConstraintError("sample: empty annealing ladder")
	}
	for i, T := range o.annealLadder {
		if T <= 0 {
			return newConstraintError("sample: annealing ladder temperatures must be positive")
		}
		if i > 0 && T >= o.annealLadder[i-1] {
			return newConstraintError("sample: annealing ladder must be strictly decreasing")
		}
	}
	if len(o.heatLadder) == 0 {
		return newConstraintError("sample: empty heating ladder")
	}
	for i, T := range o.heatLadder {
		if T <= 0 {
			return newConstraintError("sample: heating ladder temperatures must be positive")
		}
		if i > 0 && T < o.heatLadder[i-1] {
			return newConstraintError("sample: heating ladder must be non-decreasing")
		}
	}
	if o.annealSteps < 1 || o.heatSteps < 1 {
		return newConstraintError("sample: step counts must be positive")
	}
	if o.initTrials < 1 {
		return newConstraintError("sample: initial occupancy trials must be positive")
	}
	return nil
}

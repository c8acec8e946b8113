/*
 * config.go, part of goCE.
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

package main

import (
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v2"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
	"github.com/tsaari/goce/mc"
	"github.com/tsaari/goce/sample"
)

//config is the YAML system file. The system section is enough for the
//space subcommand; sample additionally reads model and sample.
type config struct {
	System systemConfig `yaml:"system"`
	Model  modelConfig  `yaml:"model"`
	Sample sampleConfig `yaml:"sample"`
}

type systemConfig struct {
	Sublattices []sublatticeConfig `yaml:"sublattices"`
	Supercell   int                `yaml:"supercell"`
	Bounds      []boundConfig      `yaml:"bounds"`
	Lattice     float64            `yaml:"lattice"`
	Frac        [][]float64        `yaml:"frac"`
}

type sublatticeConfig struct {
	Species []string `yaml:"species"`
	Sites   int      `yaml:"sites"`
}

type boundConfig struct {
	Sublattice int     `yaml:"sublattice"`
	Species    string  `yaml:"species"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
}

type modelConfig struct {
	Site     [][]float64 `yaml:"site"`
	Coupling float64     `yaml:"coupling"`
}

type sampleConfig struct {
	Counts      [][]int     `yaml:"counts"`
	Mu          [][]float64 `yaml:"mu"`
	Anneal      []float64   `yaml:"anneal"`
	AnnealSteps int         `yaml:"annealsteps"`
	Heat        []float64   `yaml:"heat"`
	HeatSteps   int         `yaml:"heatsteps"`
	Samples     int         `yaml:"samples"`
	Seed        int64       `yaml:"seed"`
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading the system file '%s' failed", path)
	}
	cfg := new(config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing the system file '%s' failed", path)
	}
	if len(cfg.System.Sublattices) == 0 {
		return nil, errors.Errorf("the system file '%s' declares no sublattices", path)
	}
	if cfg.System.Supercell < 1 {
		return nil, errors.Errorf("the system file '%s' needs a positive supercell size", path)
	}
	return cfg, nil
}

func buildSublattices(cfg *config) ([]*ce.Sublattice, error) {
	subs := make([]*ce.Sublattice, len(cfg.System.Sublattices))
	for i, sc := range cfg.System.Sublattices {
		sub, err := ce.ParseSublattice(sc.Species, sc.Sites)
		if err != nil {
			return nil, errors.Wrapf(err, "sublattice %d is malformed", i)
		}
		subs[i] = sub
	}
	return subs, nil
}

func buildSpace(cfg *config, subs []*ce.Sublattice) (*compspace.Space, error) {
	var cons []compspace.Constraint
	for i, b := range cfg.System.Bounds {
		bc, err := compspace.ConcentrationBounds(subs, b.Sublattice, b.Species, b.Min, b.Max)
		if err != nil {
			return nil, errors.Wrapf(err, "bound %d is malformed", i)
		}
		cons = append(cons, bc...)
	}
	space, err := compspace.New(subs, cons...)
	if err != nil {
		return nil, errors.Wrap(err, "building the composition space failed")
	}
	return space, nil
}

//buildDecoder lays the primitive sites of the system on a cubic cell and
//stretches it along x by the supercell size.
func buildDecoder(cfg *config, subs []*ce.Sublattice) (*ce.SupercellDecoder, error) {
	a := cfg.System.Lattice
	if a == 0 {
		a = 4.0
	}
	if a < 0 {
		return nil, errors.Errorf("lattice parameter %g is negative", a)
	}
	lattice := mat.NewDense(3, 3, []float64{a, 0, 0, 0, a, 0, 0, 0, a})
	nprim := 0
	for _, sub := range subs {
		nprim += sub.Sites()
	}
	frac := cfg.System.Frac
	if len(frac) == 0 {
		//spread the sites along the body diagonal
		for k := 0; k < nprim; k++ {
			t := float64(k) / float64(nprim)
			frac = append(frac, []float64{t, t, t})
		}
	}
	if len(frac) != nprim {
		return nil, errors.Errorf("the system file gives %d fractional sites, the sublattices need %d", len(frac), nprim)
	}
	coords := mat.NewDense(nprim, 3, nil)
	for k, row := range frac {
		if len(row) != 3 {
			return nil, errors.Errorf("fractional site %d has %d coordinates", k, len(row))
		}
		coords.SetRow(k, row)
	}
	sc := [3][3]int{{cfg.System.Supercell, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	dec, err := ce.NewSupercellDecoder(lattice, coords, subs, sc)
	if err != nil {
		return nil, errors.Wrap(err, "building the supercell decoder failed")
	}
	return dec, nil
}

func buildEvaluator(cfg *config, space *compspace.Space, subs []*ce.Sublattice) (*mc.PairModel, error) {
	site := cfg.Model.Site
	if len(site) == 0 {
		site = make([][]float64, len(subs))
		for i, sub := range subs {
			site[i] = make([]float64, sub.NSpecies())
		}
	}
	eval, err := mc.NewPairModel(space, cfg.System.Supercell, site, cfg.Model.Coupling)
	if err != nil {
		return nil, errors.Wrap(err, "building the pair model failed")
	}
	return eval, nil
}

func buildOptions(cfg *config) *sample.Options {
	o := sample.DefaultOptions()
	s := cfg.Sample
	if len(s.Anneal) > 0 {
		o.AnnealLadder(s.Anneal...)
	}
	if s.AnnealSteps > 0 {
		o.AnnealSteps(s.AnnealSteps)
	}
	if len(s.Heat) > 0 {
		o.HeatLadder(s.Heat...)
	}
	if s.HeatSteps > 0 {
		o.HeatSteps(s.HeatSteps)
	}
	if s.Seed != 0 {
		o.Seed(s.Seed)
	}
	return o
}

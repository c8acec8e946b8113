/*
 * config_test.go, part of goCE.
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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsaari/goce/mc"
	"github.com/tsaari/goce/sample"
)

const lmtpoYAML = `system:
  sublattices:
    - species: [Li+, Mn3+, Ti4+]
      sites: 1
    - species: [P3-, O2-]
      sites: 1
  supercell: 6
  lattice: 4.0
model:
  site:
    - [0, 0.4, 0.1]
    - [0.3, 0]
  coupling: 0.1
sample:
  counts:
    - [3, 1, 2]
    - [2, 4]
  anneal: [800, 400, 200]
  annealsteps: 400
  heat: [300, 600]
  heatsteps: 400
  samples: 5
  seed: 23
`

func writeConfig(Te *testing.T, text string) string {
	Te.Helper()
	path := filepath.Join(Te.TempDir(), "system.yaml")
	require.NoError(Te, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadConfig(Te *testing.T) {
	cfg, err := loadConfig(writeConfig(Te, lmtpoYAML))
	require.NoError(Te, err)
	assert.Equal(Te, 6, cfg.System.Supercell)
	require.Len(Te, cfg.System.Sublattices, 2)
	assert.Equal(Te, []string{"Li+", "Mn3+", "Ti4+"}, cfg.System.Sublattices[0].Species)
	assert.Equal(Te, [][]int{{3, 1, 2}, {2, 4}}, cfg.Sample.Counts)
	assert.Equal(Te, int64(23), cfg.Sample.Seed)

	_, err = loadConfig(filepath.Join(Te.TempDir(), "missing.yaml"))
	require.Error(Te, err)
	_, err = loadConfig(writeConfig(Te, "system:\n  supercell: 6\n"))
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "no sublattices")
	_, err = loadConfig(writeConfig(Te, "system:\n  sublattices:\n    - species: [Au]\n      sites: 1\n"))
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "supercell")
}

func TestBuilders(Te *testing.T) {
	cfg, err := loadConfig(writeConfig(Te, lmtpoYAML))
	require.NoError(Te, err)
	subs, err := buildSublattices(cfg)
	require.NoError(Te, err)
	require.Len(Te, subs, 2)
	assert.Equal(Te, 3, subs[0].NSpecies())

	space, err := buildSpace(cfg, subs)
	require.NoError(Te, err)
	assert.Equal(Te, 2, space.Dim())
	assert.Equal(Te, 3, space.UnconstrainedDim())

	dec, err := buildDecoder(cfg, subs)
	require.NoError(Te, err)
	assert.Equal(Te, 12, dec.NSites())

	eval, err := buildEvaluator(cfg, space, subs)
	require.NoError(Te, err)
	gen, err := sample.NewCanonical(eval, dec, space, cfg.Sample.Counts, buildOptions(cfg))
	require.NoError(Te, err)
	assert.Equal(Te, mc.StepSwap, gen.StepKind())
	assert.Equal(Te, 6, gen.SupercellSize())
}

func TestBuildDecoderValidation(Te *testing.T) {
	cfg, err := loadConfig(writeConfig(Te, lmtpoYAML))
	require.NoError(Te, err)
	subs, err := buildSublattices(cfg)
	require.NoError(Te, err)

	cfg.System.Frac = [][]float64{{0, 0, 0}}
	_, err = buildDecoder(cfg, subs)
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "fractional sites")

	cfg.System.Frac = [][]float64{{0, 0}, {0.5, 0.5, 0.5}}
	_, err = buildDecoder(cfg, subs)
	require.Error(Te, err)

	cfg.System.Frac = nil
	cfg.System.Lattice = -1
	_, err = buildDecoder(cfg, subs)
	require.Error(Te, err)
}

func TestBuildEvaluatorDefaults(Te *testing.T) {
	cfg, err := loadConfig(writeConfig(Te, lmtpoYAML))
	require.NoError(Te, err)
	subs, err := buildSublattices(cfg)
	require.NoError(Te, err)
	space, err := buildSpace(cfg, subs)
	require.NoError(Te, err)
	//a missing model section still yields a flat evaluator
	cfg.Model.Site = nil
	cfg.Model.Coupling = 0
	eval, err := buildEvaluator(cfg, space, subs)
	require.NoError(Te, err)
	assert.InDelta(Te, 0.0, eval.Enthalpy(make([]int, 12)), 1e-12)
}

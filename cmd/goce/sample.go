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

package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/ceplot"
	"github.com/tsaari/goce/cetrace"
	"github.com/tsaari/goce/mc"
	"github.com/tsaari/goce/sample"
)

var (
	sampleConfigArg string
	sampleCountArg  int
	sampleTraceArg  string
	samplePlotArg   string
)

func newSampleCmd() *cobra.Command {
	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Run toy pair-model sampling over a system file",
		Long: `The sample subcommand anneals the pair model of the system
file to its ground state and unfreezes it into distinct samples. With
counts in the sample section the run is canonical; with mu it is
semigrand. The samples can be dumped as a compressed trace and drawn
as an enthalpy-over-steps figure.`,
		RunE: sampleFunc,
	}
	sampleCmd.Flags().StringVarP(&sampleConfigArg, "config", "c", "", "YAML system file")
	if err := sampleCmd.MarkFlagRequired("config"); err != nil {
		log.Fatalf("Failed to mark `config` flag for `sample` subcommand as required")
	}
	sampleCmd.Flags().IntVarP(&sampleCountArg, "samples", "n", 0, "how many samples to request, overriding the system file")
	sampleCmd.Flags().StringVarP(&sampleTraceArg, "trace", "t", "", "write the samples to this trace file (suffix picks the compression)")
	sampleCmd.Flags().StringVarP(&samplePlotArg, "plot", "p", "", "save an enthalpy trace figure under this name")
	return sampleCmd
}

func sampleFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(sampleConfigArg)
	if err != nil {
		return err
	}
	subs, err := buildSublattices(cfg)
	if err != nil {
		return err
	}
	space, err := buildSpace(cfg, subs)
	if err != nil {
		return err
	}
	dec, err := buildDecoder(cfg, subs)
	if err != nil {
		return err
	}
	eval, err := buildEvaluator(cfg, space, subs)
	if err != nil {
		return err
	}
	opts := buildOptions(cfg).Logger(log.StandardLogger())

	var gen *sample.Generator
	switch {
	case len(cfg.Sample.Counts) > 0:
		gen, err = sample.NewCanonical(eval, dec, space, cfg.Sample.Counts, opts)
	case len(cfg.Sample.Mu) > 0:
		gen, err = sample.NewSemigrand(eval, dec, space, cfg.Sample.Mu, opts)
	default:
		return errors.New("the sample section needs either counts or mu")
	}
	if err != nil {
		return errors.Wrap(err, "building the generator failed")
	}
	fmt.Printf("generator: supercell %d, %s moves, target %v\n", gen.SupercellSize(), gen.StepKind(), gen.Target())

	gs, err := gen.GroundState()
	if err != nil {
		return errors.Wrap(err, "annealing to the ground state failed")
	}
	gH, err := gen.GroundEnthalpy()
	if err != nil {
		return errors.Wrap(err, "annealing to the ground state failed")
	}
	fmt.Printf("ground state: enthalpy %.6f eV over %d sites\n", gH, len(gs))

	want := cfg.Sample.Samples
	if sampleCountArg > 0 {
		want = sampleCountArg
	}
	if want < 1 {
		want = 10
	}
	samples, err := gen.Unfrozen(nil, want)
	if err != nil {
		if !ce.IsDegenerate(err) {
			return errors.Wrap(err, "unfreezing failed")
		}
		log.Warnf("pool exhausted: %v", err)
	}
	fmt.Printf("samples: %d of %d requested\n", len(samples), want)
	for i, s := range samples {
		fmt.Printf("  %2d: step %6d  T %6g K  H %.6f eV\n", i, s.Step, s.Temperature, s.Enthalpy)
	}

	recs := make([]mc.Record, len(samples))
	for i, s := range samples {
		recs[i] = mc.Record{Occupancy: s.Occupancy, Enthalpy: s.Enthalpy, Temperature: s.Temperature, Step: s.Step}
	}
	if sampleTraceArg != "" {
		if err := writeTrace(sampleTraceArg, gs, gH, recs, gen.SupercellSize()); err != nil {
			return err
		}
		fmt.Printf("trace written to %s\n", sampleTraceArg)
	}
	if samplePlotArg != "" {
		if len(recs) == 0 {
			log.Warn("nothing to plot")
		} else {
			if err := ceplot.EnergyTrace(recs, "unfreezing run", samplePlotArg); err != nil {
				return errors.Wrap(err, "drawing the enthalpy trace failed")
			}
			fmt.Printf("figure written to %s.png\n", samplePlotArg)
		}
	}
	return nil
}

//writeTrace dumps the ground state and the samples as one trace.
func writeTrace(path string, gs []int, gH float64, recs []mc.Record, scSize int) error {
	header := map[string]string{"supercell": strconv.Itoa(scSize)}
	W, err := cetrace.NewWriter(path, len(gs), header)
	if err != nil {
		return errors.Wrap(err, "opening the trace failed")
	}
	defer W.Close()
	if err := W.WNext(mc.Record{Occupancy: gs, Enthalpy: gH}); err != nil {
		return errors.Wrap(err, "writing the trace failed")
	}
	for _, r := range recs {
		if err := W.WNext(r); err != nil {
			return errors.Wrap(err, "writing the trace failed")
		}
	}
	return nil
}

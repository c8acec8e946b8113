/*
 * space.go, part of goCE.
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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/compspace"
)

var (
	spaceConfigArg    string
	spaceSupercellArg int
)

func newSpaceCmd() *cobra.Command {
	spaceCmd := &cobra.Command{
		Use:   "space",
		Short: "Print the composition space of a system file",
		Long: `The space subcommand builds the composition space of the
system file and prints its basis, flip table and, for the chosen
supercell size, the composition grid, its integer vertices and the
centroid. Without --supercell it uses the size from the system file.`,
		RunE: spaceFunc,
	}
	spaceCmd.Flags().StringVarP(&spaceConfigArg, "config", "c", "", "YAML system file")
	if err := spaceCmd.MarkFlagRequired("config"); err != nil {
		log.Fatalf("Failed to mark `config` flag for `space` subcommand as required")
	}
	spaceCmd.Flags().IntVarP(&spaceSupercellArg, "supercell", "s", 0, "supercell size overriding the system file")
	return spaceCmd
}

func spaceFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(spaceConfigArg)
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
	sc := cfg.System.Supercell
	if spaceSupercellArg > 0 {
		sc = spaceSupercellArg
	}

	fmt.Printf("system: %d sublattices, background charge %+d\n", space.NSublattices(), space.BackgroundCharge())
	for i, sub := range space.Sublattices() {
		fmt.Printf("  %d: %s\n", i, sub)
	}
	fmt.Printf("charged coupling: %t\n", space.Charged())
	fmt.Printf("dimensions: %d constrained, %d unconstrained\n", space.Dim(), space.UnconstrainedDim())
	fmt.Println("basis rows:")
	for _, row := range space.Basis() {
		fmt.Printf("  %v\n", row)
	}
	flips := space.FlipTable()
	fmt.Printf("flip table (%d directions):\n", len(flips))
	for _, op := range flips {
		fmt.Printf("  %s\n", op)
	}
	minSC, err := space.MinSupercellSize()
	switch {
	case err == nil:
		fmt.Printf("minimum supercell size: %d\n", minSC)
	case ce.IsInfeasible(err):
		fmt.Println("minimum supercell size: none up to the search bound")
	default:
		return errors.Wrap(err, "sizing the space failed")
	}

	grid, err := space.Grid(sc)
	if err != nil {
		if ce.IsInfeasible(err) {
			fmt.Printf("supercell %d: no integer compositions\n", sc)
			return nil
		}
		return errors.Wrapf(err, "enumerating the grid at supercell %d failed", sc)
	}
	fmt.Printf("supercell %d: %d grid points\n", sc, len(grid))
	verts, err := space.IntVertices(sc)
	if err != nil {
		return errors.Wrapf(err, "enumerating the vertices at supercell %d failed", sc)
	}
	fmt.Printf("integer vertices (%d):\n", len(verts))
	for _, v := range verts {
		counts, err := countsOf(space, v, sc)
		if err != nil {
			return err
		}
		fmt.Printf("  x=%v counts=%v\n", v, counts)
	}
	centroid, err := space.Centroid(sc)
	if err != nil {
		return errors.Wrapf(err, "the centroid at supercell %d failed", sc)
	}
	counts, err := countsOf(space, centroid, sc)
	if err != nil {
		return err
	}
	fmt.Printf("centroid: x=%v counts=%v\n", centroid, counts)
	return nil
}

//countsOf renders an unconstrained grid point as nested species counts.
func countsOf(space *compspace.Space, x []int, sc int) ([][]int, error) {
	xf := make([]float64, len(x))
	for i, v := range x {
		xf[i] = float64(v)
	}
	flat, err := space.UnconstrainedToCounts(xf, sc)
	if err != nil {
		return nil, errors.Wrap(err, "translating a grid point failed")
	}
	return space.Nest(flat), nil
}

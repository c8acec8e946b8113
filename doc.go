/*
 * doc.go, part of goCE.
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

/*Package ce is the main package of the goCE library. It provides the species,
sublattice and structure types shared by the whole library, plus the contracts
(interfaces) through which external capabilities are injected.


	**goCE Capabilities**

    Represents multi-sublattice, multi-species solid solutions, with or
	without a global charge-neutrality constraint, as integer lattice
	problems (package compspace).

    Enumerates composition-space vertices, per-supercell-size integer
	grids, and the minimal table of charge-conserving "flip" operations
	(packages intlat and compspace).

    Translates compositions between counts, per-primitive-cell statistics,
	unconstrained/constrained coordinates, and fractional composition maps.

    Runs Metropolis Monte Carlo with canonical swaps or charge-conserving
	table flips (package mc), simulated annealing to a ground state and
	temperature-ladder "unfreezing" to harvest decorrelated, deduplicated
	training structures (package sample).

    Records occupancy traces in a compressed format (package cetrace),
	computes sampling statistics (package cestat) and renders energy
	traces and hulls (package ceplot).

    Watches external calculation queues with timeout and retry
	(package calcmon) and tracks iteration status (package track).

The ab-initio side of a cluster-expansion workflow (job physics, structure
decoration from computed properties, ECI regression) is deliberately outside
goCE; those capabilities enter through the Evaluator, Decoder, Matcher and
Regressor interfaces defined here.

goCE uses the gonum libraries for numerics. As in gonum, some fundamental
functions in this package panic on impossible shapes instead of returning an
error; such panics are documented and use the PanicMsg type.

All distances are in Angstrom, energies in eV and temperatures in K unless
stated otherwise.
*/
package ce

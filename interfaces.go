/*
 * interfaces.go, part of goCE.
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

package ce

import "gonum.org/v1/gonum/mat"

/*The capabilities below are the seams between goCE and the rest of a
 * cluster-expansion workflow. goCE ships working defaults where a stand-alone
 * run needs one (mc.PairModel, SupercellDecoder, TranslationMatcher) but any
 * production pipeline is expected to inject its own implementations.*/

// Evaluator computes the scalar "enthalpy" of an occupancy: the cluster
// expansion energy, or energy minus chemical-potential-weighted composition
// in semigrand ensembles. Implementations must treat the occupancy slice as
// read-only and must be deterministic for a given occupancy.
type Evaluator interface {

	//Enthalpy returns the enthalpy of the given occupancy, in eV.
	Enthalpy(occ []int) float64
}

// Decoder turns an occupancy into a fully specified atomic structure.
// Vacancies are omitted from the decoded structure.
type Decoder interface {

	//Decode builds the structure encoded by occ.
	Decode(occ []int) (*Structure, error)

	//NSites returns the occupancy length the decoder expects.
	NSites() int
}

// Matcher is a symmetry-aware structure equality judgment. When
// ignoreDecorations is true, species are compared by element only, so e.g.
// Mn2+ and Mn3+ decorations of the same arrangement are equivalent.
type Matcher interface {
	Match(a, b *Structure, ignoreDecorations bool) (bool, error)
}

// Regressor fits effective cluster interactions from a feature matrix and an
// energy vector. Model selection and statistics belong to the implementation;
// goCE only consumes the coefficients.
type Regressor interface {
	Fit(x *mat.Dense, y []float64) ([]float64, error)
}

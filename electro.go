/*
 * electro.go, part of goCE.
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

// CoulombConstant converts q1*q2/r with charges in elementary charges and r
// in Angstrom to an energy in eV.
const CoulombConstant = 14.399645

// CoulombEnergy returns the minimum-image point-charge energy of a structure,
// in eV. It is not a converged Ewald sum: image interactions beyond the
// nearest are ignored. goCE only uses it to rank candidate occupancies of the
// same composition, where the shared long-range tail cancels; don't read
// physics into its absolute value.
func CoulombEnergy(st *Structure) float64 {
	n := st.Len()
	e := 0.0
	for i := 0; i < n; i++ {
		qi := st.Species(i).Charge()
		if qi == 0 {
			continue
		}
		for j := i + 1; j < n; j++ {
			qj := st.Species(j).Charge()
			if qj == 0 {
				continue
			}
			e += float64(qi*qj) / st.MinImageDistance(i, j)
		}
	}
	return CoulombConstant * e
}

/*
 * speciesdata.go, part of goCE.
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

//A map of common formal oxidation states per element, most common first.
//Values follow the usual inorganic-chemistry tables (e.g. Greenwood &
//Earnshaw). Only elements that show up in solid-solution work are present;
//unknown elements are simply not validated against the table.
var symbolOxiStates = map[string][]int{
	"H":  {1, -1},
	"Li": {1},
	"Na": {1},
	"K":  {1},
	"Rb": {1},
	"Cs": {1},
	"Be": {2},
	"Mg": {2},
	"Ca": {2},
	"Sr": {2},
	"Ba": {2},
	"Sc": {3},
	"Y":  {3},
	"La": {3},
	"Ti": {4, 3, 2},
	"Zr": {4},
	"Hf": {4},
	"V":  {5, 4, 3, 2},
	"Nb": {5, 4},
	"Ta": {5},
	"Cr": {3, 6, 2},
	"Mo": {6, 4},
	"W":  {6, 4},
	"Mn": {2, 3, 4, 7},
	"Fe": {3, 2},
	"Ru": {4, 3},
	"Co": {2, 3},
	"Rh": {3},
	"Ni": {2, 3},
	"Pd": {2, 4},
	"Pt": {2, 4},
	"Cu": {2, 1},
	"Ag": {1},
	"Au": {3, 1},
	"Zn": {2},
	"Cd": {2},
	"B":  {3},
	"Al": {3},
	"Ga": {3},
	"In": {3, 1},
	"C":  {4, -4, 2},
	"Si": {4, -4},
	"Ge": {4, 2},
	"Sn": {4, 2},
	"Pb": {2, 4},
	"N":  {-3, 3, 5},
	"P":  {-3, 5, 3},
	"As": {-3, 5, 3},
	"Sb": {3, 5, -3},
	"Bi": {3, 5},
	"O":  {-2},
	"S":  {-2, 6, 4},
	"Se": {-2, 6, 4},
	"Te": {-2, 6, 4},
	"F":  {-1},
	"Cl": {-1, 7},
	"Br": {-1},
	"I":  {-1, 7},
}

// CommonOxiStates returns the common formal oxidation states of an element,
// most common first, or nil if the element is not in the table.
func CommonOxiStates(symbol string) []int {
	states, ok := symbolOxiStates[symbol]
	if !ok {
		return nil
	}
	r := make([]int, len(states))
	copy(r, states)
	return r
}

// KnownElement returns whether the element is present in the oxidation-state
// table.
func KnownElement(symbol string) bool {
	_, ok := symbolOxiStates[symbol]
	return ok
}

// PlausibleOxiState returns whether the species' oxidation state is listed as
// common for its element. Vacancies and elements absent from the table are
// always plausible. Advisory only: nothing in the library refuses to work
// with exotic states.
func PlausibleOxiState(sp Species) bool {
	if sp.Vacant || sp.OxiState == 0 {
		return true
	}
	states, ok := symbolOxiStates[sp.Symbol]
	if !ok {
		return true
	}
	for _, s := range states {
		if s == sp.OxiState {
			return true
		}
	}
	return false
}

// DefaultOxiState returns the most common oxidation state for an element, or
// 0 if unknown. Decorators use it as a starting guess.
func DefaultOxiState(symbol string) int {
	states, ok := symbolOxiStates[symbol]
	if !ok || len(states) == 0 {
		return 0
	}
	return states[0]
}

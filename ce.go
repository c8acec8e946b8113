/*
 * ce.go, part of goCE.
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

import (
	"fmt"
	"strconv"
	"strings"
)

//The occupancy convention used across goCE: an occupancy is a []int with one
//entry per site, where each entry is the index of the occupying species in
//the species list of the site's own sublattice. Sites of a primitive
//sublattice site appear contiguously in supercells (see SupercellDecoder).

// Species represents one chemical species allowed on a sublattice: an element
// symbol plus a formal oxidation state, or an explicit vacancy. Species are
// small value objects and are compared by value.
type Species struct {
	Symbol   string //element symbol, empty for a vacancy
	OxiState int    //formal oxidation state, always 0 for a vacancy
	Vacant   bool
}

// NewSpecies returns a species with the given symbol and oxidation state.
func NewSpecies(symbol string, oxiState int) Species {
	return Species{Symbol: symbol, OxiState: oxiState}
}

// Vacancy returns the vacancy species. Vacancies carry no charge and are
// omitted when an occupancy is decoded into a structure.
func Vacancy() Species {
	return Species{Vacant: true}
}

// ParseSpecies parses a species string of the forms "Li", "Li+", "Mn3+",
// "O2-" or "Vac"/"Vacancy". The magnitude before the sign defaults to 1.
func ParseSpecies(s string) (Species, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return Species{}, newParseError("ParseSpecies: empty species string")
	}
	if strings.EqualFold(t, "Vac") || strings.EqualFold(t, "Vacancy") {
		return Vacancy(), nil
	}
	sign := 0
	switch t[len(t)-1] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	}
	if sign == 0 {
		if !isAlpha(t) {
			return Species{}, newParseError("ParseSpecies: bad species string: " + s)
		}
		return Species{Symbol: t}, nil
	}
	body := t[:len(t)-1]
	digits := 0
	for digits < len(body) && body[len(body)-1-digits] >= '0' && body[len(body)-1-digits] <= '9' {
		digits++
	}
	symbol := body[:len(body)-digits]
	if symbol == "" || !isAlpha(symbol) {
		return Species{}, newParseError("ParseSpecies: bad species string: " + s)
	}
	mag := 1
	if digits > 0 {
		var err error
		mag, err = strconv.Atoi(body[len(body)-digits:])
		if err != nil || mag == 0 {
			return Species{}, newParseError("ParseSpecies: bad oxidation state in: " + s)
		}
	}
	return Species{Symbol: symbol, OxiState: sign * mag}, nil
}

// MustParseSpecies is like ParseSpecies but panics on a bad string. Meant for
// literals in tests and examples.
func MustParseSpecies(s string) Species {
	sp, err := ParseSpecies(s)
	if err != nil {
		panic(PanicMsg(err.Error()))
	}
	return sp
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Charge returns the formal charge of the species, 0 for vacancies.
func (S Species) Charge() int {
	if S.Vacant {
		return 0
	}
	return S.OxiState
}

// Decorated returns whether the species carries a nonzero formal charge.
// Vacancies and neutral elements are not decorated.
func (S Species) Decorated() bool {
	return !S.Vacant && S.OxiState != 0
}

// SameElement returns whether two species are the same ignoring their
// oxidation states. A vacancy only matches another vacancy.
func (S Species) SameElement(other Species) bool {
	return S.Vacant == other.Vacant && S.Symbol == other.Symbol
}

func (S Species) String() string {
	if S.Vacant {
		return "Vac"
	}
	if S.OxiState == 0 {
		return S.Symbol
	}
	sign := "+"
	mag := S.OxiState
	if mag < 0 {
		sign = "-"
		mag = -mag
	}
	if mag == 1 {
		return S.Symbol + sign
	}
	return fmt.Sprintf("%s%d%s", S.Symbol, mag, sign)
}

// Sublattice groups crystallographic sites that share one ordered list of
// allowed species. The species order is a global contract: every coordinate
// representation in goCE (counts, compstat, unconstrained coordinates, flip
// operations, occupancies) indexes species in this order. Sublattices are
// immutable after construction.
type Sublattice struct {
	species []Species
	sites   int
}

// NewSublattice builds a sublattice from an ordered species list and the
// number of sites it occupies in the primitive cell.
func NewSublattice(species []Species, sites int) (*Sublattice, error) {
	if len(species) < 1 {
		return nil, newConstraintError("NewSublattice: a sublattice needs at least one allowed species")
	}
	if sites < 1 {
		return nil, newConstraintError("NewSublattice: a sublattice needs at least one site per primitive cell")
	}
	for i := 0; i < len(species); i++ {
		for j := i + 1; j < len(species); j++ {
			if species[i] == species[j] {
				return nil, newConstraintError("NewSublattice: duplicated species " + species[i].String())
			}
		}
	}
	sl := &Sublattice{species: make([]Species, len(species)), sites: sites}
	copy(sl.species, species)
	return sl, nil
}

// ParseSublattice builds a sublattice from species strings, in order.
func ParseSublattice(species []string, sites int) (*Sublattice, error) {
	list := make([]Species, 0, len(species))
	for _, s := range species {
		sp, err := ParseSpecies(s)
		if err != nil {
			return nil, errDecorate(err, "ParseSublattice")
		}
		list = append(list, sp)
	}
	return NewSublattice(list, sites)
}

// NSpecies returns the number of allowed species.
func (S *Sublattice) NSpecies() int {
	return len(S.species)
}

// Species returns the i-th allowed species. It panics if i is out of range.
func (S *Sublattice) Species(i int) Species {
	return S.species[i]
}

// SpeciesList returns a copy of the ordered species list.
func (S *Sublattice) SpeciesList() []Species {
	r := make([]Species, len(S.species))
	copy(r, S.species)
	return r
}

// Last returns the last allowed species, the one whose count is implied by
// the others in unconstrained coordinates.
func (S *Sublattice) Last() Species {
	return S.species[len(S.species)-1]
}

// Sites returns the number of sites this sublattice occupies in the
// primitive cell.
func (S *Sublattice) Sites() int {
	return S.sites
}

// Index returns the index of sp in the species list, or -1 if absent.
func (S *Sublattice) Index(sp Species) int {
	for i, v := range S.species {
		if v == sp {
			return i
		}
	}
	return -1
}

// Charges returns the formal charges of the allowed species, in order.
func (S *Sublattice) Charges() []int {
	r := make([]int, len(S.species))
	for i, v := range S.species {
		r[i] = v.Charge()
	}
	return r
}

func (S *Sublattice) String() string {
	names := make([]string, len(S.species))
	for i, v := range S.species {
		names[i] = v.String()
	}
	return fmt.Sprintf("[%s]x%d", strings.Join(names, " "), S.sites)
}

// TotalSites returns the number of primitive-cell sites over all sublattices.
func TotalSites(subs []*Sublattice) int {
	n := 0
	for _, sl := range subs {
		n += sl.Sites()
	}
	return n
}

// TotalSpecies returns the number of species over all sublattices, counting a
// species once per sublattice that allows it.
func TotalSpecies(subs []*Sublattice) int {
	n := 0
	for _, sl := range subs {
		n += sl.NSpecies()
	}
	return n
}

// ChargeDecorated returns whether any allowed species carries a nonzero
// formal charge. It decides between plain swaps and charge-conserving table
// flips in semigrand sampling.
func ChargeDecorated(subs []*Sublattice) bool {
	for _, sl := range subs {
		for _, sp := range sl.SpeciesList() {
			if sp.Decorated() {
				return true
			}
		}
	}
	return false
}

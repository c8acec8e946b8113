/*
 * json.go, part of goCE.
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

import "encoding/json"

//JSON forms are what the surrounding workflow persists between iterations, so
//they are part of the library contract: species serialize to their string
//form, sublattices to an object with the species list and the site count.

// MarshalJSON serializes the species as its canonical string, e.g. "Mn3+".
func (S Species) MarshalJSON() ([]byte, error) {
	return json.Marshal(S.String())
}

// UnmarshalJSON parses a species from its canonical string form.
func (S *Species) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	sp, err := ParseSpecies(s)
	if err != nil {
		return err
	}
	*S = sp
	return nil
}

// MarshalJSON serializes the sublattice with its ordered species list and
// primitive-cell site count.
func (S *Sublattice) MarshalJSON() ([]byte, error) {
	j, err := json.Marshal(struct {
		Species []Species `json:"species"`
		Sites   int       `json:"sites"`
	}{
		Species: S.species,
		Sites:   S.sites,
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// UnmarshalJSON rebuilds a sublattice, revalidating it.
func (S *Sublattice) UnmarshalJSON(b []byte) error {
	var a struct {
		Species []Species `json:"species"`
		Sites   int       `json:"sites"`
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	ns, err := NewSublattice(a.Species, a.Sites)
	if err != nil {
		return err
	}
	*S = *ns
	return nil
}

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

package compspace

import (
	"encoding/json"
	"fmt"

	ce "github.com/tsaari/goce"
)

//MarshalJSON encodes the relation as its comparison operator.
func (r Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

//UnmarshalJSON decodes a comparison operator.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "==":
		*r = RelEq
	case "<=":
		*r = RelLeq
	case ">=":
		*r = RelGeq
	default:
		return newFormatError(fmt.Sprintf("unknown relation %q", name))
	}
	return nil
}

//MarshalJSON encodes the constraint row, bound and relation.
func (c Constraint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Coefs []float64 `json:"coefs"`
		RHS   float64   `json:"rhs"`
		Rel   Relation  `json:"rel"`
	}{Coefs: c.coefs, RHS: c.rhs, Rel: c.rel})
}

//UnmarshalJSON decodes a constraint encoded by MarshalJSON.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Coefs []float64 `json:"coefs"`
		RHS   float64   `json:"rhs"`
		Rel   Relation  `json:"rel"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Constraint{coefs: raw.Coefs, rhs: raw.RHS, rel: raw.Rel}
	return nil
}

//MarshalJSON encodes the defining specification of the space: sublattices
//and extra constraints. Derived quantities are rebuilt on decoding.
func (s *Space) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Sublattices []*ce.Sublattice `json:"sublattices"`
		Constraints []Constraint     `json:"constraints,omitempty"`
	}{Sublattices: s.subs, Constraints: s.cons})
}

//UnmarshalJSON rebuilds the space through New, revalidating the
//specification.
func (s *Space) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sublattices []*ce.Sublattice `json:"sublattices"`
		Constraints []Constraint     `json:"constraints"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rebuilt, err := New(raw.Sublattices, raw.Constraints...)
	if err != nil {
		return errDecorate(err, "Space.UnmarshalJSON")
	}
	*s = *rebuilt
	return nil
}

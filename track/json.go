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

package track

import (
	"encoding/json"
	"time"
)

//MarshalJSON encodes the module as its short name.
func (m Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

//UnmarshalJSON decodes a short module name.
func (m *Module) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseModule(name)
	if err != nil {
		return errDecorate(err, "Module.UnmarshalJSON")
	}
	*m = parsed
	return nil
}

//MarshalJSON encodes the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

//UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return errDecorate(err, "Status.UnmarshalJSON")
	}
	*s = parsed
	return nil
}

//MarshalJSON encodes the fact list.
func (h *History) MarshalJSON() ([]byte, error) {
	facts := make([]struct {
		Iteration int       `json:"iteration"`
		Module    Module    `json:"module"`
		Status    Status    `json:"status"`
		When      time.Time `json:"when"`
	}, len(h.facts))
	for i, f := range h.facts {
		facts[i].Iteration = f.Iteration
		facts[i].Module = f.Module
		facts[i].Status = f.Status
		facts[i].When = f.When
	}
	return json.Marshal(facts)
}

//UnmarshalJSON decodes a fact list and revalidates it through Check, so
//a hand-edited or garbled history file cannot load.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw []struct {
		Iteration int       `json:"iteration"`
		Module    Module    `json:"module"`
		Status    Status    `json:"status"`
		When      time.Time `json:"when"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rebuilt := new(History)
	for _, f := range raw {
		rebuilt.facts = append(rebuilt.facts, Fact{Iteration: f.Iteration, Module: f.Module, Status: f.Status, When: f.When})
	}
	if err := rebuilt.Check(); err != nil {
		return errDecorate(err, "History.UnmarshalJSON")
	}
	*h = *rebuilt
	return nil
}

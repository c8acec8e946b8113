/*
 * track.go, part of goCE.
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

//Package track records the position of a cluster-expansion workflow in
//its iteration cycle. Each iteration walks the modules ground states,
//enumeration, writing, calculation, featurization and fit, in that
//order; a module must end, well or badly, before the next may begin, a
//failed module restarts, and a finished fit opens the next iteration.
//The history of facts is the durable record the workflow resumes from.
package track

import (
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure"
)

//Module enumerates the stations of one workflow iteration.
type Module int

const (
	GroundStates Module = iota
	Enumeration
	Writing
	Calculation
	Featurization
	Fit
)

var moduleNames = []string{"gs", "enum", "write", "calc", "feat", "fit"}

func (m Module) String() string {
	if m < GroundStates || m > Fit {
		return fmt.Sprintf("module(%d)", int(m))
	}
	return moduleNames[m]
}

//ParseModule is the inverse of Module.String.
func ParseModule(s string) (Module, error) {
	for i, name := range moduleNames {
		if s == name {
			return Module(i), nil
		}
	}
	return 0, newTransitionError("track: unknown module name '" + s + "'")
}

//next returns the module that legally follows m within an iteration,
//wrapping from Fit back to GroundStates.
func (m Module) next() Module {
	return (m + 1) % Module(len(moduleNames))
}

//Status enumerates what a fact says about its module.
type Status int

const (
	Started Status = iota
	Done
	Failed
)

var statusNames = []string{"started", "done", "failed"}

func (s Status) String() string {
	if s < Started || s > Failed {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

//ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if s == name {
			return Status(i), nil
		}
	}
	return 0, newTransitionError("track: unknown status name '" + s + "'")
}

//Fact is one event in the workflow history.
type Fact struct {
	Iteration int
	Module    Module
	Status    Status
	When      time.Time
}

func (f Fact) String() string {
	return fmt.Sprintf("iteration %d: %s %s", f.Iteration, f.Module, f.Status)
}

//History is the ordered fact record of a workflow. The zero value is
//ready to use and positioned before the first iteration.
type History struct {
	facts []Fact
}

//NewHistory returns an empty history.
func NewHistory() *History { return new(History) }

//Len returns the number of recorded facts.
func (h *History) Len() int { return len(h.facts) }

//Facts returns a copy of the record.
func (h *History) Facts() []Fact {
	return append([]Fact(nil), h.facts...)
}

//Position returns the last recorded fact. The second value is false on
//an empty history.
func (h *History) Position() (Fact, bool) {
	if len(h.facts) == 0 {
		return Fact{}, false
	}
	return h.facts[len(h.facts)-1], true
}

//Running reports whether a module is currently started and not ended.
func (h *History) Running() bool {
	last, ok := h.Position()
	return ok && last.Status == Started
}

//Next returns the iteration and module a Begin call would accept. The
//third value is false while a module is still running.
func (h *History) Next() (int, Module, bool) {
	last, ok := h.Position()
	if !ok {
		return 1, GroundStates, true
	}
	switch last.Status {
	case Started:
		return 0, 0, false
	case Failed:
		return last.Iteration, last.Module, true
	}
	if last.Module == Fit {
		return last.Iteration + 1, GroundStates, true
	}
	return last.Iteration, last.Module.next(), true
}

//Begin records that module m starts now. It fails when another module
//is still running or when m is not the next station of the cycle.
func (h *History) Begin(m Module) (Fact, error) {
	if m < GroundStates || m > Fit {
		return Fact{}, newTransitionError(fmt.Sprintf("track: %v is not a workflow module", m))
	}
	iter, want, ready := h.Next()
	if !ready {
		last, _ := h.Position()
		return Fact{}, newTransitionError(fmt.Sprintf("track: %s is still running", last.Module))
	}
	if m != want {
		return Fact{}, newTransitionError(fmt.Sprintf("track: cannot start %s, the cycle expects %s of iteration %d", m, want, iter))
	}
	f := Fact{Iteration: iter, Module: m, Status: Started, When: time.Now()}
	h.facts = append(h.facts, f)
	return f, nil
}

//End closes the running module with Done or, when ok is false, with
//Failed. A failed module is what the next Begin must retry.
func (h *History) End(ok bool) (Fact, error) {
	last, have := h.Position()
	if !have || last.Status != Started {
		return Fact{}, newTransitionError("track: no module is running")
	}
	status := Done
	if !ok {
		status = Failed
	}
	f := Fact{Iteration: last.Iteration, Module: last.Module, Status: status, When: time.Now()}
	h.facts = append(h.facts, f)
	return f, nil
}

//Check walks the whole record and verifies it could have been produced
//by Begin and End calls: legal transitions, matched start/end pairs,
//non-decreasing timestamps.
func (h *History) Check() error {
	replay := new(History)
	var prev time.Time
	for i, f := range h.facts {
		if f.When.Before(prev) {
			return newTransitionError(fmt.Sprintf("track: fact %d (%s) is older than its predecessor", i, f))
		}
		prev = f.When
		var err error
		var got Fact
		switch f.Status {
		case Started:
			got, err = replay.Begin(f.Module)
		case Done:
			got, err = replay.End(true)
		case Failed:
			got, err = replay.End(false)
		default:
			return newTransitionError(fmt.Sprintf("track: fact %d has unknown status %v", i, f.Status))
		}
		if err != nil {
			return errDecorate(err, fmt.Sprintf("Check: fact %d", i))
		}
		if got.Iteration != f.Iteration || got.Module != f.Module {
			return newTransitionError(fmt.Sprintf("track: fact %d records %s, the cycle expects iteration %d of %s", i, f, got.Iteration, got.Module))
		}
	}
	return nil
}

//Fingerprint hashes the record, timestamps included, so two workflow
//copies can cheaply agree they share a history.
func (h *History) Fingerprint() (uint64, error) {
	flat := make([]struct {
		Iteration int
		Module    int
		Status    int
		UnixNano  int64
	}, len(h.facts))
	for i, f := range h.facts {
		flat[i].Iteration = f.Iteration
		flat[i].Module = int(f.Module)
		flat[i].Status = int(f.Status)
		flat[i].UnixNano = f.When.UnixNano()
	}
	fp, err := hashstructure.Hash(flat, nil)
	if err != nil {
		return 0, &baseError{message: "track.Fingerprint: " + err.Error()}
	}
	return fp, nil
}

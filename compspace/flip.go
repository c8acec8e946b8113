/*
 * flip.go, part of goCE.
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
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/combin"

	ce "github.com/tsaari/goce"
)

//FlipOp is a minimal charge-conserving species exchange. It removes From
//counts and adds To counts on each sublattice, with equal totals removed and
//added per sublattice. Applying a FlipOp shifts the unconstrained coordinates
//by Delta.
type FlipOp struct {
	subs  []*ce.Sublattice
	delta []int
	from  []map[int]int //per sublattice: species index -> count removed
	to    []map[int]int //per sublattice: species index -> count added
}

//opFromVector splits a basis vector into removed and added species counts,
//balancing each sublattice on its last species.
func (s *Space) opFromVector(v []int) FlipOp {
	op := FlipOp{
		subs:  s.subs,
		delta: append([]int(nil), v...),
		from:  make([]map[int]int, len(s.subs)),
		to:    make([]map[int]int, len(s.subs)),
	}
	for p, sub := range s.subs {
		op.from[p] = make(map[int]int)
		op.to[p] = make(map[int]int)
		sum := 0
		for _, k := range s.groups[p] {
			c := v[k]
			sum += c
			if c > 0 {
				op.to[p][s.exc[k].sp] = c
			}
			if c < 0 {
				op.from[p][s.exc[k].sp] = -c
			}
		}
		last := sub.NSpecies() - 1
		if bal := -sum; bal > 0 {
			op.to[p][last] = bal
		} else if bal < 0 {
			op.from[p][last] = -bal
		}
	}
	return op
}

func (op FlipOp) clone() FlipOp {
	c := FlipOp{
		subs:  op.subs,
		delta: append([]int(nil), op.delta...),
		from:  make([]map[int]int, len(op.from)),
		to:    make([]map[int]int, len(op.to)),
	}
	for p := range op.from {
		c.from[p] = copyCounts(op.from[p])
		c.to[p] = copyCounts(op.to[p])
	}
	return c
}

func copyCounts(m map[int]int) map[int]int {
	c := make(map[int]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

//Delta returns the shift the operation applies to the unconstrained
//coordinates.
func (op FlipOp) Delta() []int { return append([]int(nil), op.delta...) }

//From returns the per-sublattice counts removed by the operation.
func (op FlipOp) From() []map[int]int {
	out := make([]map[int]int, len(op.from))
	for p := range op.from {
		out[p] = copyCounts(op.from[p])
	}
	return out
}

//To returns the per-sublattice counts added by the operation.
func (op FlipOp) To() []map[int]int {
	out := make([]map[int]int, len(op.to))
	for p := range op.to {
		out[p] = copyCounts(op.to[p])
	}
	return out
}

//Reverse returns the operation with removed and added species swapped.
func (op FlipOp) Reverse() FlipOp {
	r := op.clone()
	r.from, r.to = r.to, r.from
	for i := range r.delta {
		r.delta[i] = -r.delta[i]
	}
	return r
}

//Equal reports whether two operations exchange the same species counts, in
//either direction. An operation always equals its own reverse.
func (op FlipOp) Equal(other FlipOp) bool {
	if len(op.from) != len(other.from) {
		return false
	}
	direct := countsEqual(op.from, other.from) && countsEqual(op.to, other.to)
	swapped := countsEqual(op.from, other.to) && countsEqual(op.to, other.from)
	return direct || swapped
}

func countsEqual(a, b []map[int]int) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if len(a[p]) != len(b[p]) {
			return false
		}
		for k, v := range a[p] {
			if b[p][k] != v {
				return false
			}
		}
	}
	return true
}

//String renders the operation as a reaction, species tagged with their
//sublattice index, for example
//"1 Li+(0) + 1 Ti4+(0) + 1 O2-(1) -> 2 Mn3+(0) + 1 P3-(1)".
func (op FlipOp) String() string {
	return op.side(op.from) + " -> " + op.side(op.to)
}

func (op FlipOp) side(counts []map[int]int) string {
	var terms []string
	for p, m := range counts {
		var sps []int
		for sp := range m {
			sps = append(sps, sp)
		}
		sort.Ints(sps)
		for _, sp := range sps {
			terms = append(terms, fmt.Sprintf("%d %s(%d)", m[sp], op.subs[p].Species(sp).String(), p))
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}

// Links counts the distinct ways the operation can act on a configuration
// with the given per-sublattice species counts: the number of choices of
// removed sites times the number of assignments of added species to the
// freed sites. A zero result means the operation cannot act on the
// configuration. The ratio of forward to backward link counts corrects the
// proposal bias of table-flip Monte Carlo moves.
func (op FlipOp) Links(counts [][]int) int {
	links := 1
	for p := range op.from {
		freed := 0
		for sp, take := range op.from[p] {
			have := counts[p][sp]
			if take > have {
				return 0
			}
			links *= combin.Binomial(have, take)
			freed += take
		}
		var sps []int
		for sp := range op.to[p] {
			sps = append(sps, sp)
		}
		sort.Ints(sps)
		for _, sp := range sps {
			give := op.to[p][sp]
			if give > freed {
				return 0
			}
			links *= combin.Binomial(freed, give)
			freed -= give
		}
	}
	return links
}

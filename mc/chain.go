/*
 * chain.go, part of goCE.
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

package mc

//Record is one thinned snapshot of a sampling run: the occupancy, its
//enthalpy, and the temperature and production step at which it was taken.
type Record struct {
	Occupancy   []int
	Enthalpy    float64
	Temperature float64
	Step        int
}

//clone returns a Record owning its own occupancy slice.
func (r Record) clone() Record {
	r.Occupancy = append([]int(nil), r.Occupancy...)
	return r
}

//Chain accumulates the records of one or more sampling runs in capture
//order.
type Chain struct {
	recs []Record
}

//NewChain returns an empty chain.
func NewChain() *Chain { return &Chain{} }

//Len returns the number of records in the chain.
func (c *Chain) Len() int { return len(c.recs) }

//Append adds a record to the chain, copying occ.
func (c *Chain) Append(occ []int, enthalpy, temperature float64, step int) {
	c.recs = append(c.recs, Record{
		Occupancy:   append([]int(nil), occ...),
		Enthalpy:    enthalpy,
		Temperature: temperature,
		Step:        step,
	})
}

//Record returns a copy of the i-th record.
func (c *Chain) Record(i int) Record { return c.recs[i].clone() }

//Records returns copies of the records from index discard on. A discard
//at or past the end yields an empty slice.
func (c *Chain) Records(discard int) []Record {
	if discard < 0 {
		discard = 0
	}
	out := make([]Record, 0, len(c.recs))
	for i := discard; i < len(c.recs); i++ {
		out = append(out, c.recs[i].clone())
	}
	return out
}

//Occupancies returns copies of the recorded occupancies from index
//discard on.
func (c *Chain) Occupancies(discard int) [][]int {
	if discard < 0 {
		discard = 0
	}
	out := make([][]int, 0, len(c.recs))
	for i := discard; i < len(c.recs); i++ {
		out = append(out, append([]int(nil), c.recs[i].Occupancy...))
	}
	return out
}

//Enthalpies returns the recorded enthalpies from index discard on.
func (c *Chain) Enthalpies(discard int) []float64 {
	if discard < 0 {
		discard = 0
	}
	out := make([]float64, 0, len(c.recs))
	for i := discard; i < len(c.recs); i++ {
		out = append(out, c.recs[i].Enthalpy)
	}
	return out
}

//MinEnthalpy returns a copy of the lowest-enthalpy record in the chain.
//It fails if the chain is empty.
func (c *Chain) MinEnthalpy() (Record, error) {
	if len(c.recs) == 0 {
		return Record{}, newConstraintError("mc.MinEnthalpy: empty chain")
	}
	best := 0
	for i, r := range c.recs {
		if r.Enthalpy < c.recs[best].Enthalpy {
			best = i
		}
	}
	return c.recs[best].clone(), nil
}

//Clear drops all records.
func (c *Chain) Clear() { c.recs = c.recs[:0] }

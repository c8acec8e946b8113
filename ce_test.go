/*
 * ce_test.go, part of goCE.
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
	"encoding/json"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSpeciesParsing(Te *testing.T) {
	cases := map[string]Species{
		"Li":  {Symbol: "Li"},
		"Li+": {Symbol: "Li", OxiState: 1},
		"Mn3+": {Symbol: "Mn", OxiState: 3},
		"O2-": {Symbol: "O", OxiState: -2},
		"F-":  {Symbol: "F", OxiState: -1},
		"Vac": {Vacant: true},
	}
	for s, want := range cases {
		got, err := ParseSpecies(s)
		if err != nil {
			Te.Error(err)
		}
		if got != want {
			Te.Errorf("ParseSpecies(%q) = %v, want %v", s, got, want)
		}
		if !got.Vacant && got.String() != s {
			Te.Errorf("String() = %q, want %q", got.String(), s)
		}
	}
	for _, bad := range []string{"", "3+Mn", "Mn3*", "Mn0+"} {
		if _, err := ParseSpecies(bad); err == nil {
			Te.Errorf("ParseSpecies(%q) should fail", bad)
		}
	}
	if !MustParseSpecies("Mn2+").Decorated() {
		Te.Error("Mn2+ should be charge-decorated")
	}
	if MustParseSpecies("Li").Decorated() || Vacancy().Decorated() {
		Te.Error("neutral species should not be charge-decorated")
	}
	if !MustParseSpecies("Mn2+").SameElement(MustParseSpecies("Mn3+")) {
		Te.Error("Mn2+ and Mn3+ are the same element")
	}
}

func TestSublattice(Te *testing.T) {
	sl, err := ParseSublattice([]string{"Li+", "Mn3+", "Ti4+"}, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if sl.NSpecies() != 3 || sl.Sites() != 1 {
		Te.Error("wrong sublattice dimensions")
	}
	if sl.Last() != MustParseSpecies("Ti4+") {
		Te.Error("wrong last species")
	}
	q := sl.Charges()
	if q[0] != 1 || q[1] != 3 || q[2] != 4 {
		Te.Error("wrong charges", q)
	}
	if sl.Index(MustParseSpecies("Mn3+")) != 1 {
		Te.Error("wrong species index")
	}
	_, err = ParseSublattice([]string{"Li+", "Li+"}, 1)
	if err == nil {
		Te.Error("duplicated species should be rejected")
	}
	if !IsConstraint(err) {
		Te.Error("duplicated species should give a constraint error")
	}
	_, err = ParseSublattice([]string{}, 1)
	if err == nil {
		Te.Error("empty species list should be rejected")
	}
}

func TestSublatticeJSON(Te *testing.T) {
	sl, err := ParseSublattice([]string{"Li+", "Mn3+", "Vac"}, 2)
	if err != nil {
		Te.Fatal(err)
	}
	b, err := json.Marshal(sl)
	if err != nil {
		Te.Fatal(err)
	}
	var back Sublattice
	if err := json.Unmarshal(b, &back); err != nil {
		Te.Fatal(err)
	}
	if back.NSpecies() != 3 || back.Sites() != 2 || back.Species(2) != Vacancy() {
		Te.Error("JSON round trip lost information:", string(b))
	}
}

func TestDet3AndTranslations(Te *testing.T) {
	if Det3([3][3]int{{2, 0, 0}, {0, 1, 0}, {0, 0, 1}}) != 2 {
		Te.Error("wrong determinant for diag(2,1,1)")
	}
	shear := [3][3]int{{1, 1, 0}, {0, 1, 1}, {1, 0, 1}}
	if Det3(shear) != 2 {
		Te.Error("wrong determinant for the shear matrix")
	}
	trans, err := latticeTranslations(shear)
	if err != nil {
		Te.Fatal(err)
	}
	if len(trans) != 2 {
		Te.Error("wrong number of translations", trans)
	}
	if _, err := latticeTranslations([3][3]int{{-1, 0, 0}, {0, 1, 0}, {0, 0, 1}}); err == nil {
		Te.Error("negative determinant should be rejected")
	}
}

func TestDiagonalSupercells(Te *testing.T) {
	got := DiagonalSupercells(6)
	if len(got) != 9 {
		Te.Error("expected 9 diagonal factorizations of 6, got", len(got))
	}
	lat := mat.NewDense(3, 3, []float64{3, 0, 0, 0, 3, 0, 0, 0, 3})
	if !IsProperSupercell(lat, [3][3]int{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}}, DefaultMaxCond, DefaultMinAngle) {
		Te.Error("diag(1,2,3) on a cubic lattice should be proper")
	}
	if IsProperSupercell(lat, [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 6}}, 4, DefaultMinAngle) {
		Te.Error("diag(1,1,6) should fail a condition-number cap of 4")
	}
	if len(ProperSupercells(lat, 6, DefaultMaxCond, DefaultMinAngle)) == 0 {
		Te.Error("no proper supercell found at size 6")
	}
}

func testDecoder(Te *testing.T) *SupercellDecoder {
	lat := mat.NewDense(3, 3, []float64{4, 0, 0, 0, 4, 0, 0, 0, 4})
	frac := mat.NewDense(2, 3, []float64{0, 0, 0, 0.5, 0.5, 0.5})
	cat, err := ParseSublattice([]string{"Li+", "Vac"}, 1)
	if err != nil {
		Te.Fatal(err)
	}
	an, err := ParseSublattice([]string{"O2-", "F-"}, 1)
	if err != nil {
		Te.Fatal(err)
	}
	dec, err := NewSupercellDecoder(lat, frac, []*Sublattice{cat, an}, [3][3]int{{2, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	if err != nil {
		Te.Fatal(err)
	}
	return dec
}

func TestSupercellDecoder(Te *testing.T) {
	dec := testDecoder(Te)
	if dec.Size() != 2 || dec.NSites() != 4 {
		Te.Fatal("wrong decoder dimensions")
	}
	catSites := dec.SublatticeSites(0)
	anSites := dec.SublatticeSites(1)
	if len(catSites) != 2 || len(anSites) != 2 || catSites[0] != 0 || anSites[0] != 2 {
		Te.Error("wrong site layout", catSites, anSites)
	}
	if dec.SiteSublattice(1) != 0 || dec.SiteSublattice(3) != 1 {
		Te.Error("wrong site to sublattice assignment")
	}
	st, err := dec.Decode([]int{0, 1, 0, 1})
	if err != nil {
		Te.Fatal(err)
	}
	if st.Len() != 3 { //the vacancy is dropped
		Te.Error("expected 3 decoded sites, got", st.Len())
	}
	if st.NetCharge() != 1-2-1 {
		Te.Error("wrong net charge", st.NetCharge())
	}
	if _, err := dec.Decode([]int{0, 1}); err == nil || !IsConstraint(err) {
		Te.Error("short occupancy should give a constraint error")
	}
	if _, err := dec.Decode([]int{0, 5, 0, 0}); err == nil {
		Te.Error("out of range species index should fail")
	}
	if _, err := dec.Decode([]int{1, 1, 0, 0}); err != nil {
		Te.Error("all-vacant cation sublattice should still decode:", err)
	}
}

func TestTranslationMatcher(Te *testing.T) {
	lat := mat.NewDense(3, 3, []float64{3, 0, 0, 0, 3, 0, 0, 0, 3})
	frac := mat.NewDense(2, 3, []float64{0, 0, 0, 0.5, 0.5, 0.5})
	a := NewStructure(lat, frac, []Species{MustParseSpecies("Li+"), MustParseSpecies("O2-")})
	b := a.Translated([]float64{0.5, 0, 0})
	m := NewTranslationMatcher(1e-5)
	eq, err := m.Match(a, b, false)
	if err != nil {
		Te.Fatal(err)
	}
	if !eq {
		Te.Error("a pure translation should match")
	}
	c := NewStructure(lat, frac, []Species{MustParseSpecies("Li+"), MustParseSpecies("F-")})
	eq, err = m.Match(a, c, false)
	if err != nil {
		Te.Fatal(err)
	}
	if eq {
		Te.Error("different species should not match")
	}
	mn2 := NewStructure(lat, frac, []Species{MustParseSpecies("Mn2+"), MustParseSpecies("O2-")})
	mn3 := NewStructure(lat, frac, []Species{MustParseSpecies("Mn3+"), MustParseSpecies("O2-")})
	eq, _ = m.Match(mn2, mn3, false)
	if eq {
		Te.Error("different decorations should not match when decorations count")
	}
	eq, _ = m.Match(mn2, mn3, true)
	if !eq {
		Te.Error("different decorations should match when ignored")
	}
}

func TestCoulombEnergy(Te *testing.T) {
	lat := mat.NewDense(3, 3, []float64{4, 0, 0, 0, 4, 0, 0, 0, 4})
	frac := mat.NewDense(2, 3, []float64{0, 0, 0, 0.5, 0.5, 0.5})
	st := NewStructure(lat, frac, []Species{MustParseSpecies("Li+"), MustParseSpecies("F-")})
	e := CoulombEnergy(st)
	want := -CoulombConstant / (4 * math.Sqrt(3) / 2)
	if math.Abs(e-want) > 1e-9 {
		Te.Error("wrong Coulomb energy", e, "want", want)
	}
	neutral := NewStructure(lat, frac, []Species{MustParseSpecies("Li"), MustParseSpecies("Na")})
	if CoulombEnergy(neutral) != 0 {
		Te.Error("neutral structure should have zero point-charge energy")
	}
}

func TestStructureBasics(Te *testing.T) {
	lat := mat.NewDense(3, 3, []float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	frac := mat.NewDense(2, 3, []float64{0.25, 0.25, 0.25, -0.25, 0.75, 1.75})
	st := NewStructure(lat, frac, []Species{MustParseSpecies("Li+"), MustParseSpecies("O2-")})
	f := st.Frac(1)
	if math.Abs(f[0]-0.75) > 1e-12 || math.Abs(f[2]-0.75) > 1e-12 {
		Te.Error("fractional coordinates not wrapped:", f)
	}
	if math.Abs(st.Volume()-8) > 1e-12 {
		Te.Error("wrong volume", st.Volume())
	}
	c := st.Cart(0)
	if math.Abs(c[0]-0.5) > 1e-12 {
		Te.Error("wrong cartesian coordinate", c)
	}
	comp := st.Composition(false)
	if comp["Li+"] != 1 || comp["O2-"] != 1 {
		Te.Error("wrong composition", comp)
	}
	defer func() {
		if recover() == nil {
			Te.Error("shape mismatch should panic")
		}
	}()
	NewStructure(lat, frac, []Species{MustParseSpecies("Li+")})
}

/*
 * track_test.go, part of goCE.
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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ce "github.com/tsaari/goce"
)

//runModule begins and ends one module, asserting legality.
func runModule(Te *testing.T, h *History, m Module, ok bool) {
	Te.Helper()
	_, err := h.Begin(m)
	require.NoError(Te, err)
	f, err := h.End(ok)
	require.NoError(Te, err)
	assert.Equal(Te, m, f.Module)
}

func TestCycleWalk(Te *testing.T) {
	h := NewHistory()
	iter, m, ready := h.Next()
	require.True(Te, ready)
	assert.Equal(Te, 1, iter)
	assert.Equal(Te, GroundStates, m)

	for _, m := range []Module{GroundStates, Enumeration, Writing, Calculation, Featurization, Fit} {
		runModule(Te, h, m, true)
	}
	//a finished fit opens the next iteration
	iter, m, ready = h.Next()
	require.True(Te, ready)
	assert.Equal(Te, 2, iter)
	assert.Equal(Te, GroundStates, m)

	f, err := h.Begin(GroundStates)
	require.NoError(Te, err)
	assert.Equal(Te, 2, f.Iteration)
	assert.True(Te, h.Running())
	last, ok := h.Position()
	require.True(Te, ok)
	assert.Equal(Te, Started, last.Status)
	assert.Equal(Te, 14, h.Len())
	require.NoError(Te, h.Check())
}

func TestIllegalTransitions(Te *testing.T) {
	h := NewHistory()
	//the cycle starts at ground states
	_, err := h.Begin(Calculation)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = h.End(true)
	require.Error(Te, err)

	_, err = h.Begin(GroundStates)
	require.NoError(Te, err)
	//no double starts
	_, err = h.Begin(Enumeration)
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "still running")

	_, err = h.End(true)
	require.NoError(Te, err)
	//no skipping stations
	_, err = h.Begin(Writing)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	_, err = h.Begin(Module(17))
	require.Error(Te, err)
}

func TestFailureRetries(Te *testing.T) {
	h := NewHistory()
	runModule(Te, h, GroundStates, true)
	runModule(Te, h, Enumeration, false)
	//after a failure the same module runs again
	_, err := h.Begin(Writing)
	require.Error(Te, err)
	iter, m, ready := h.Next()
	require.True(Te, ready)
	assert.Equal(Te, 1, iter)
	assert.Equal(Te, Enumeration, m)
	runModule(Te, h, Enumeration, true)
	_, err = h.Begin(Writing)
	require.NoError(Te, err)
	require.NoError(Te, h.Check())
}

func TestNames(Te *testing.T) {
	assert.Equal(Te, "gs", GroundStates.String())
	assert.Equal(Te, "fit", Fit.String())
	assert.Equal(Te, "failed", Failed.String())
	m, err := ParseModule("calc")
	require.NoError(Te, err)
	assert.Equal(Te, Calculation, m)
	_, err = ParseModule("calcs")
	require.Error(Te, err)
	s, err := ParseStatus("done")
	require.NoError(Te, err)
	assert.Equal(Te, Done, s)
	_, err = ParseStatus("ok")
	require.Error(Te, err)
	assert.Equal(Te, GroundStates, Fit.next())
}

func TestFingerprint(Te *testing.T) {
	h := NewHistory()
	runModule(Te, h, GroundStates, true)
	fp1, err := h.Fingerprint()
	require.NoError(Te, err)
	fp2, err := h.Fingerprint()
	require.NoError(Te, err)
	assert.Equal(Te, fp1, fp2)
	_, err = h.Begin(Enumeration)
	require.NoError(Te, err)
	fp3, err := h.Fingerprint()
	require.NoError(Te, err)
	assert.NotEqual(Te, fp1, fp3)
}

func TestJSONRoundTrip(Te *testing.T) {
	h := NewHistory()
	runModule(Te, h, GroundStates, true)
	runModule(Te, h, Enumeration, false)
	runModule(Te, h, Enumeration, true)
	data, err := json.Marshal(h)
	require.NoError(Te, err)

	loaded := NewHistory()
	require.NoError(Te, json.Unmarshal(data, loaded))
	require.Equal(Te, h.Len(), loaded.Len())
	//the decoded timestamps carry a different location
	for i, f := range h.Facts() {
		g := loaded.Facts()[i]
		assert.Equal(Te, f.Iteration, g.Iteration)
		assert.Equal(Te, f.Module, g.Module)
		assert.Equal(Te, f.Status, g.Status)
		assert.True(Te, f.When.Equal(g.When))
	}
	fp1, err := h.Fingerprint()
	require.NoError(Te, err)
	fp2, err := loaded.Fingerprint()
	require.NoError(Te, err)
	assert.Equal(Te, fp1, fp2)

	//a garbled history must not load
	bad := []byte(`[{"iteration":1,"module":"calc","status":"started","when":"2023-04-01T10:00:00Z"}]`)
	err = json.Unmarshal(bad, loaded)
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))
	badName := []byte(`[{"iteration":1,"module":"nope","status":"started","when":"2023-04-01T10:00:00Z"}]`)
	err = json.Unmarshal(badName, loaded)
	require.Error(Te, err)
}

func TestCheckCatchesTampering(Te *testing.T) {
	h := NewHistory()
	runModule(Te, h, GroundStates, true)
	facts := h.Facts()
	facts[1].Iteration = 5
	tampered := &History{facts: facts}
	err := tampered.Check()
	require.Error(Te, err)
	assert.True(Te, ce.IsConstraint(err))

	//timestamps must not run backwards
	facts = h.Facts()
	facts[1].When = facts[0].When.Add(-time.Hour)
	tampered = &History{facts: facts}
	require.Error(Te, tampered.Check())
}

func TestErrorContract(Te *testing.T) {
	var err ce.Error = newTransitionError("track: out-of-cycle module")
	assert.NotEmpty(Te, err.Error())
	assert.Equal(Te, []string{"TestErrorContract"}, err.Decorate("TestErrorContract"))
	assert.True(Te, ce.IsConstraint(newTransitionError("x")))
}

/*
 * cetrace_test.go, part of goCE.
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

package cetrace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ce "github.com/tsaari/goce"
	"github.com/tsaari/goce/mc"
)

func testRecords() []mc.Record {
	return []mc.Record{
		{Occupancy: []int{0, 0, 0, 1, 2, 2, 0, 0, 1, 1, 1, 1}, Enthalpy: -3.25, Temperature: 800, Step: 10},
		{Occupancy: []int{0, 0, 1, 1, 2, 2, 0, 1, 0, 1, 1, 1}, Enthalpy: -3.5, Temperature: 800, Step: 20},
		{Occupancy: []int{2, 0, 1, 1, 2, 0, 1, 0, 0, 1, 1, 1}, Enthalpy: -2.75, Temperature: 400, Step: 30},
	}
}

func TestRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	recs := testRecords()
	for _, name := range []string{"trace.trc", "trace.trc.zst", "trace.trc.zstd", "trace.trc.gz", "trace.trc.fla"} {
		path := filepath.Join(dir, name)
		W, err := NewWriter(path, 12, map[string]string{"system": "LMTPO", "supercell": "6"})
		require.NoError(Te, err, name)
		assert.Equal(Te, 12, W.Len())
		for _, r := range recs {
			require.NoError(Te, W.WNext(r), name)
		}
		W.Close()
		//writing after Close must fail loudly
		err = W.WNext(recs[0])
		require.Error(Te, err)
		var terr Error
		require.ErrorAs(Te, err, &terr)
		assert.True(Te, terr.Critical())
		assert.Equal(Te, path, terr.FileName())

		R, meta, err := NewReader(path)
		require.NoError(Te, err, name)
		assert.Equal(Te, 12, R.Len())
		assert.Equal(Te, map[string]string{"system": "LMTPO", "supercell": "6"}, meta)
		for i := 0; ; i++ {
			rec, err := R.Next()
			if err != nil {
				require.True(Te, IsLastFrame(err), "%s frame %d: %v", name, i, err)
				assert.Equal(Te, len(recs), i, name)
				break
			}
			assert.Equal(Te, recs[i], rec, name)
		}
		assert.False(Te, R.Readable())
	}
}

func TestReadAll(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "trace.trc.zst")
	recs := testRecords()
	W, err := NewWriter(path, 12, nil, 9)
	require.NoError(Te, err)
	for _, r := range recs {
		require.NoError(Te, W.WNext(r))
	}
	W.Close()
	R, meta, err := NewReader(path)
	require.NoError(Te, err)
	assert.Nil(Te, meta)
	got, err := R.ReadAll()
	require.NoError(Te, err)
	assert.Equal(Te, recs, got)
	//the handle closed itself on the last frame
	_, err = R.Next()
	require.Error(Te, err)
	assert.False(Te, IsLastFrame(err))
}

func TestWriterValidation(Te *testing.T) {
	dir := Te.TempDir()
	_, err := NewWriter(filepath.Join(dir, "bad.trc"), 0, nil)
	require.Error(Te, err)
	W, err := NewWriter(filepath.Join(dir, "ok.trc"), 4, nil)
	require.NoError(Te, err)
	defer W.Close()
	err = W.WNext(mc.Record{Occupancy: []int{0, 1}, Temperature: 300, Step: 1})
	require.Error(Te, err)
	var terr Error
	require.ErrorAs(Te, err, &terr)
	assert.Contains(Te, terr.Error(), "expected")
	assert.Equal(Te, "trc", terr.Format())
}

func TestReaderErrors(Te *testing.T) {
	_, _, err := NewReader(filepath.Join(Te.TempDir(), "missing.trc"))
	require.Error(Te, err)
	assert.False(Te, IsLastFrame(err))
	var terr Error
	require.ErrorAs(Te, err, &terr)
	assert.True(Te, terr.Critical())
}

func TestTraceEndError(Te *testing.T) {
	err := newLastFrameError("trace.trc", "Next")
	assert.True(Te, IsLastFrame(err))
	assert.False(Te, err.Critical())
	assert.Equal(Te, "trace.trc", err.FileName())
	var root ce.Error = err
	assert.NotEmpty(Te, root.Error())
	assert.Equal(Te, []string{"Next", "TestTraceEndError"}, root.Decorate("TestTraceEndError"))
}

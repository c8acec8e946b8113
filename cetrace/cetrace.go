/*
 * cetrace.go, part of goCE.
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

//Package cetrace persists Monte Carlo occupancy traces as line-oriented,
//optionally compressed files. A trace starts with "key=value" metadata
//lines followed by a "** nsites" marker; each frame is a "> temperature
//step enthalpy" line followed by one line of space-separated species
//indices. The compression is chosen from the filename extension: .zst or
//.zstd for zstd, .gz for gzip, .fla for flate, anything else is written
//plain.
package cetrace

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/tsaari/goce/mc"
)

//Writer appends occupancy snapshots to a trace file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	nsites    int
	filename  string
	writeable bool
}

//NewWriter creates a trace at name for occupancies of nsites sites, with
//the optional metadata written into the header. The compression level
//applies to the flate and gzip backends; zstd uses its best mode for
//levels of 9 and up and its default otherwise.
func NewWriter(name string, nsites int, header map[string]string, compressionLevel ...int) (*Writer, error) {
	if nsites < 1 {
		return nil, Error{message: fmt.Sprintf("%d sites per frame is not positive", nsites), filename: name, critical: true}
	}
	level := flate.DefaultCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{message: err.Error(), filename: name, critical: true}
	}
	W.h, err = newCompressor(W.f, name, level)
	if err != nil {
		W.f.Close()
		return nil, Error{message: "can't open the compressor: " + err.Error(), filename: name, critical: true}
	}
	W.nsites = nsites
	W.filename = name
	W.writeable = true
	for k, v := range header {
		if _, err := fmt.Fprintf(W.h, "%s=%s\n", k, v); err != nil {
			return nil, Error{message: err.Error(), filename: name, critical: true}
		}
	}
	if _, err := fmt.Fprintf(W.h, "** %d\n", nsites); err != nil {
		return nil, Error{message: err.Error(), filename: name, critical: true}
	}
	return W, nil
}

//WNext appends one snapshot to the trace.
func (W *Writer) WNext(r mc.Record) error {
	if !W.writeable {
		return Error{message: trajUnInitWrite, filename: W.filename, deco: []string{"WNext"}, critical: true}
	}
	if len(r.Occupancy) != W.nsites {
		return Error{message: fmt.Sprintf("%d sites given, but %d expected", len(r.Occupancy), W.nsites), filename: W.filename, deco: []string{"WNext"}, critical: true}
	}
	if _, err := fmt.Fprintf(W.h, "> %g %d %g\n", r.Temperature, r.Step, r.Enthalpy); err != nil {
		return Error{message: err.Error(), filename: W.filename, deco: []string{"WNext"}, critical: true}
	}
	sb := make([]string, len(r.Occupancy))
	for i, sp := range r.Occupancy {
		sb[i] = strconv.Itoa(sp)
	}
	if _, err := fmt.Fprintln(W.h, strings.Join(sb, " ")); err != nil {
		return Error{message: err.Error(), filename: W.filename, deco: []string{"WNext"}, critical: true}
	}
	return nil
}

//Len returns the number of sites in each frame.
func (W *Writer) Len() int { return W.nsites }

//Close flushes and closes the trace. The writer cannot be used after
//this call.
func (W *Writer) Close() {
	if W == nil || !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

//Reader walks a trace file frame by frame.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	nsites   int
	filename string
	readable bool
}

//NewReader opens a trace for reading and returns the handle and the
//header metadata, or nil when the header carries none.
func NewReader(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.nsites = -1
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{message: err.Error(), filename: name, critical: true}
	}
	R.z, err = newDecompressor(bufio.NewReader(R.f), name)
	if err != nil {
		R.f.Close()
		return nil, nil, Error{message: "can't open the decompressor: " + err.Error(), filename: name, critical: true}
	}
	R.h = bufio.NewReader(R.z)
	var meta map[string]string
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{message: "can't read the header: " + err.Error(), filename: name, deco: []string{"NewReader"}, critical: true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, nil, Error{message: "can't read the site count from '" + str + "'", filename: name, deco: []string{"NewReader"}, critical: true}
			}
			R.nsites, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, nil, Error{message: "can't read the site count: " + err.Error(), filename: name, deco: []string{"NewReader"}, critical: true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{message: "malformed header line '" + str + "'", filename: name, deco: []string{"NewReader"}, critical: true}
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[kv[0]] = kv[1]
	}
	R.readable = true
	return R, meta, nil
}

//Readable returns whether Next can still be called on the handle.
func (R *Reader) Readable() bool { return R.readable }

//Len returns the number of sites in each frame.
func (R *Reader) Len() int { return R.nsites }

//Next returns the next snapshot. At the end of the trace it closes the
//handle and returns a non-critical error marking normal termination,
//which IsLastFrame recognizes.
func (R *Reader) Next() (mc.Record, error) {
	var rec mc.Record
	if !R.readable {
		return rec, Error{message: trajUnInitRead, filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	meta, err := R.h.ReadString('\n')
	if err != nil {
		//the trace simply ended
		if err == io.EOF && meta == "" {
			R.Close()
			return rec, newLastFrameError(R.filename, "Next")
		}
		return rec, Error{message: err.Error(), filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	fields := strings.Fields(strings.TrimSuffix(meta, "\n"))
	if len(fields) != 4 || fields[0] != ">" {
		return rec, Error{message: "malformed frame line '" + meta + "'", filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	if rec.Temperature, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return rec, Error{message: "can't parse the temperature: " + err.Error(), filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	if rec.Step, err = strconv.Atoi(fields[2]); err != nil {
		return rec, Error{message: "can't parse the step: " + err.Error(), filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	if rec.Enthalpy, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return rec, Error{message: "can't parse the enthalpy: " + err.Error(), filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	line, err := R.h.ReadString('\n')
	if err != nil && err != io.EOF {
		return rec, Error{message: err.Error(), filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	sites := strings.Fields(strings.TrimSuffix(line, "\n"))
	if len(sites) != R.nsites {
		return rec, Error{message: fmt.Sprintf("frame has %d sites, trace declares %d", len(sites), R.nsites), filename: R.filename, deco: []string{"Next"}, critical: true}
	}
	rec.Occupancy = make([]int, R.nsites)
	for i, s := range sites {
		if rec.Occupancy[i], err = strconv.Atoi(s); err != nil {
			return rec, Error{message: "can't parse site " + strconv.Itoa(i) + ": " + err.Error(), filename: R.filename, deco: []string{"Next"}, critical: true}
		}
	}
	return rec, nil
}

//ReadAll drains the remaining frames of the trace.
func (R *Reader) ReadAll() ([]mc.Record, error) {
	var out []mc.Record
	for {
		rec, err := R.Next()
		if err != nil {
			if IsLastFrame(err) {
				return out, nil
			}
			return out, errDecorate(err, "ReadAll")
		}
		out = append(out, rec)
	}
}

//Close closes the handle and marks it unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.z.Close()
	R.f.Close()
	R.readable = false
}

//newCompressor picks the compression backend from the filename
//extension.
func newCompressor(f io.Writer, name string, level int) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		enc := zstd.SpeedDefault
		if level >= 9 {
			enc = zstd.SpeedBestCompression
		}
		return zstd.NewWriter(f, zstd.WithEncoderLevel(enc))
	case ".gz":
		return gzip.NewWriterLevel(f, level)
	case ".fla":
		return flate.NewWriter(f, level)
	}
	return flushCloser{bufio.NewWriter(f)}, nil
}

//newDecompressor mirrors newCompressor for reading.
func newDecompressor(f io.Reader, name string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		r, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		//zstd.Decoder has Close() without an error, so it misses
		//io.ReadCloser by a signature
		return zstdCloser{closeql: r.Close, Decoder: r}, nil
	case ".gz":
		return gzip.NewReader(f)
	case ".fla":
		return flate.NewReader(f), nil
	}
	return io.NopCloser(f), nil
}

type flushCloser struct {
	*bufio.Writer
}

func (fc flushCloser) Close() error { return fc.Flush() }

type zstdCloser struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.closeql()
	return nil
}

/*
 * errors.go, part of goCE.
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
	"errors"
	"strings"
)

const (
	trajUnInitRead  = "Traj object uninitialized to read"
	trajUnInitWrite = "Traj object uninitialized to write"
)

//Error is the error type of the package. It carries the filename of the
//trace it refers to and whether recovery is possible.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return "goCE/cetrace error in " + err.filename + ": " + err.message
}

//Decorate adds the given string to the decoration slice and returns the
//resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the name of the trace the error refers to.
func (err Error) FileName() string { return err.filename }

//Format returns the format of the trace, taken from the filename
//extension.
func (err Error) Format() string {
	i := strings.LastIndex(err.filename, ".")
	if i < 0 || i == len(err.filename)-1 {
		return "plain"
	}
	return err.filename[i+1:]
}

//Critical returns whether the error is critical. The end of a trace is
//the one non-critical condition.
func (err Error) Critical() bool { return err.critical }

//lastFrameError signals that a trace ended normally.
type lastFrameError struct {
	filename string
	deco     []string
}

//NormalLastFrameTermination marks the error as a regular end of trace.
func (err *lastFrameError) NormalLastFrameTermination() {}

func (err *lastFrameError) Error() string { return "reached the end of the trace" }

//Decorate adds the given string to the decoration slice and returns the
//resulting slice.
func (err *lastFrameError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the name of the trace the error refers to.
func (err *lastFrameError) FileName() string { return err.filename }

//Critical returns false: the end of a trace is a normal condition.
func (err *lastFrameError) Critical() bool { return false }

func newLastFrameError(filename, dec string) *lastFrameError {
	return &lastFrameError{filename: filename, deco: []string{dec}}
}

//IsLastFrame returns whether err marks the regular end of a trace
//rather than a failure.
func IsLastFrame(err error) bool {
	var last *lastFrameError
	return errors.As(err, &last)
}

func errDecorate(err error, dec string) error {
	d, ok := err.(interface {
		Decorate(string) []string
	})
	if !ok {
		return err
	}
	d.Decorate(dec)
	return err
}

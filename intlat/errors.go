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

package intlat

//baseError carries the message and the trace of the calls that decorated
//the error on the way up. The exported error types embed it, so all of
//them satisfy the root Error interface.
type baseError struct {
	message string
	deco    []string
}

func (err *baseError) Error() string { return err.message }

//Decorate adds dec to the decoration trace of the error and returns the
//current trace.
func (err *baseError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//RationalError reports a value for which no rational approximation exists
//within the requested denominator bound.
type RationalError struct {
	*baseError
}

//Unrepresentable marks the error as a failed exact representation.
func (err *RationalError) Unrepresentable() {}

//BoundsError reports enumeration or search bounds that are empty, inverted
//or too wide to search exhaustively.
type BoundsError struct {
	*baseError
}

//Constraint marks the error as a violated precondition.
func (err *BoundsError) Constraint() {}

//RankError reports that a basis could not be completed to full rank.
type RankError struct {
	*baseError
}

//RankDeficient marks the error as a rank failure.
func (err *RankError) RankDeficient() {}

func newRationalError(message string) *RationalError {
	return &RationalError{&baseError{message: message}}
}

func newBoundsError(message string) *BoundsError {
	return &BoundsError{&baseError{message: message}}
}

func newRankError(message string) *RankError {
	return &RankError{&baseError{message: message}}
}

//errDecorate decorates err with the name of the caller and returns it.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(interface{ Decorate(string) []string }); ok {
		err2.Decorate(caller)
	}
	return err
}

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

package ce

import "errors"

// Error is the interface implemented by the errors of every goCE package.
// The Decorate method adds information to the error as it travels up the
// calling stack, without changing its type or wrapping it. Each Decorate call
// returns the resulting decoration slice; an empty string only retrieves the
// current value. Decorations should name the function in the calling stack,
// optionally followed by extra info: "FunctionName: extra info".
type Error interface {
	Error() string
	Decorate(string) []string
}

// SamplingError covers errors produced by long sampling or enumeration runs,
// which may be non-critical. A non-critical error leaves usable partial
// results behind; callers can filter on Critical.
type SamplingError interface {
	Error
	Critical() bool
}

//The error categories of the library are marker interfaces, so a package can
//flag its own error types without depending on this one. Test with the Is*
//functions below, which see through wrapping.

// ConstraintError marks errors where a supplied composition or specification
// violates site-count totals or declared bounds. Raised before any sampling
// starts and never silently clamped.
type ConstraintError interface {
	Error
	Constraint()
}

// InfeasibleError marks enumeration requests with no integer solution, e.g. a
// supercell too small to realize any valid composition. Callers may retry
// with a larger supercell.
type InfeasibleError interface {
	Error
	Infeasible()
}

// UnrepresentableError marks real values that cannot be approximated by a
// rational number with a small enough denominator within tolerance.
type UnrepresentableError interface {
	Error
	Unrepresentable()
}

// DegenerateError marks a sampling run that exhausted its candidate pool
// before reaching the requested sample count. It is never critical: the
// partial result is valid and the caller decides whether it suffices.
type DegenerateError interface {
	SamplingError
	Degenerate()
}

// RankError marks a failed minimal-basis selection (fewer independent
// vectors than the required dimensionality). It signals a bug in the
// enumeration, not bad input, and is not user-recoverable.
type RankError interface {
	Error
	RankDeficient()
}

// FormatError marks an unsupported coordinate-format name in a translation
// request.
type FormatError interface {
	Error
	BadFormat()
}

// IsConstraint returns whether err is, or wraps, a ConstraintError.
func IsConstraint(err error) bool {
	var t ConstraintError
	return errors.As(err, &t)
}

// IsInfeasible returns whether err is, or wraps, an InfeasibleError.
func IsInfeasible(err error) bool {
	var t InfeasibleError
	return errors.As(err, &t)
}

// IsUnrepresentable returns whether err is, or wraps, an UnrepresentableError.
func IsUnrepresentable(err error) bool {
	var t UnrepresentableError
	return errors.As(err, &t)
}

// IsDegenerate returns whether err is, or wraps, a DegenerateError.
func IsDegenerate(err error) bool {
	var t DegenerateError
	return errors.As(err, &t)
}

// IsRankDeficient returns whether err is, or wraps, a RankError.
func IsRankDeficient(err error) bool {
	var t RankError
	return errors.As(err, &t)
}

// IsBadFormat returns whether err is, or wraps, a FormatError.
func IsBadFormat(err error) bool {
	var t FormatError
	return errors.As(err, &t)
}

//Concrete errors of this package. Subpackages define their own types
//implementing the Error interface and whatever markers apply.

type parseError struct {
	message string
	deco    []string
}

func newParseError(message string) *parseError {
	return &parseError{message: message}
}

func (err *parseError) Error() string { return err.message }

func (err *parseError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

type constraintError struct {
	message string
	deco    []string
}

func newConstraintError(message string) *constraintError {
	return &constraintError{message: message}
}

func (err *constraintError) Error() string { return err.message }

func (err *constraintError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *constraintError) Constraint() {}

//errDecorate asserts that err implements Error, decorates it with the
//caller's name and returns it. Calling it on anything else is a bug and
//panics.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

// PanicMsg is the type used for the documented panics of fundamental
// functions. It satisfies the error interface so recovered panics can travel
// as errors; for ordinary failures use Error instead.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNot3x3      = PanicMsg("goCE: lattice matrix must be 3x3")
	ErrNotNx3      = PanicMsg("goCE: coordinate matrix must have 3 columns")
	ErrNilMatrix   = PanicMsg("goCE: nil matrix given to a fundamental function")
	ErrShape       = PanicMsg("goCE: dimension mismatch")
	ErrSingular    = PanicMsg("goCE: singular lattice or supercell matrix")
	ErrSpeciesList = PanicMsg("goCE: species list and coordinate rows mismatch")
)

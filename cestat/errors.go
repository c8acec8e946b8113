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

package cestat

//baseError carries the message and the decoration trace. The exported
//error types embed it, so all of them satisfy the root Error interface.
type baseError struct {
	message string
	deco    []string
}

func (err *baseError) Error() string { return err.message }

//Decorate adds the given string to the decoration slice and returns the
//resulting slice.
func (err *baseError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//ConstraintError signals input that the estimators cannot digest, such
//as mismatched series lengths or a non-positive bin count.
type ConstraintError struct {
	*baseError
}

//Constraint marks the error as a constraint violation.
func (err *ConstraintError) Constraint() {}

func newConstraintError(message string) *ConstraintError {
	return &ConstraintError{baseError: &baseError{message: message}}
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

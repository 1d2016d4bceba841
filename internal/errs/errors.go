/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errs holds the sentinel errors returned across the package
// boundary, so callers can compare with errors.Is instead of matching
// strings.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterInfeasible is returned when (N, d) and the requested
	// flags admit no (ell, m, p, kappa) satisfying the correctness bound.
	ErrParameterInfeasible = errors.New("parameters: no feasible (ell, m, p, kappa) for the given N, d and flags")

	// ErrProofInvalid names a rejected preprocessing proof. PreprocVerify
	// reports a rejection by returning false; no function in this module
	// returns this error.
	ErrProofInvalid = errors.New("preprocessing: proof is invalid")

	// ErrVerificationFailed names a rejected online answer. PreVerify
	// reports a rejection by returning false; no function in this module
	// returns this error.
	ErrVerificationFailed = errors.New("online: answer failed verification")

	// ErrDecryptionOutOfRange names a decrypted coordinate that is neither
	// in [0, p) nor exactly p (the only wraparound case, which is clamped
	// to zero). The decryption functions leave such a value in their output
	// unchanged; no function in this module returns this error.
	ErrDecryptionOutOfRange = errors.New("decryption: recovered value out of range")

	// ErrReservedParameter is returned when a constructor is given a
	// non-default value for a parameter that is reserved for future use.
	ErrReservedParameter = errors.New("parameters: non-default value for a reserved parameter")
)

// InvalidShape panics; dimension mismatches in arithmetic are programmer
// errors, never recoverable (spec: "InvalidShape is never recoverable").
func InvalidShape(format string, args ...interface{}) {
	panic(&ShapeError{msg: fmt.Sprintf(format, args...)})
}

// ShapeError is the concrete panic value raised by InvalidShape.
type ShapeError struct {
	msg string
}

func (e *ShapeError) Error() string { return "invalid shape: " + e.msg }

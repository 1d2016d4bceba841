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

// Package params derives feasible VeriSimplePIR parameters (n, logq, p,
// ell, m, sigma, kappa) from a database shape (N, d) and feature flags, by
// an iterative bound-tightening search (spec §4.6), the same shape of
// search gofe's fullysec.NewLWE performs for its own (q, m, sigma).
package params

import (
	"math"

	"github.com/pkg/errors"
	"github.com/xlab-si/verisimplepir/internal/errs"
)

// StatSecParam is the default statistical security parameter (spec §3:
// "STAT_SEC_PARAM = 40").
const StatSecParam = 40

// DefaultN is the default LWE secret dimension (spec §4.6).
const DefaultN = 1408

// DefaultSigma is the default error standard deviation (spec §4.6).
const DefaultSigma = 6.4

// Options carries the feature flags that shape the search (spec §6
// constructor surface, §9 honest-hint / reserved-parameter notes).
type Options struct {
	AllowTrivial bool
	Preproc      bool
	SimplePIR    bool
	HonestHint   bool
}

// DBParams is the result of a feasible search: every quantity the LHE,
// DB, and protocol packages need to operate on a database of N records of
// d bits each.
type DBParams struct {
	N       int    // LWE secret dimension
	LogQ    int    // log2(q); always 32 in this implementation (q = 2^32)
	P       uint32 // plaintext modulus
	Ell     int    // plaintext matrix rows
	M       int    // plaintext matrix columns
	Sigma   float64
	Kappa   uint32 // auxiliary preproc modulus (0 if Preproc is false)
	RecordN int64  // N, carried through for Sizes()
	RecordD int    // d, carried through for Sizes()
}

// maxErrorBound returns a conservative (Sigma * 8) envelope, the same
// "a handful of standard deviations" heuristic gofe's NewLWE uses when
// picking a rejection bound for its error sampler.
func maxErrorBound(sigma float64) uint64 {
	return uint64(math.Ceil(sigma * 8))
}

// Compute searches for a feasible DBParams given N records of d bits each
// (spec §4.6). It fixes n and sigma at their defaults, computes the
// largest p the correctness bound allows, then searches (ell, m)
// minimizing ell subject to the capacity constraint ell*m*floor(log2 p) >=
// N*d and m >= n.
func Compute(n int64, d int, opt Options) (*DBParams, error) {
	if n <= 0 || d <= 0 {
		return nil, errors.Wrapf(errs.ErrParameterInfeasible, "N=%d d=%d must be positive", n, d)
	}

	secretDim := DefaultN
	sigma := DefaultSigma
	errBound := maxErrorBound(sigma)

	p, err := maxPlaintextModulus(errBound)
	if err != nil {
		return nil, err
	}
	bitsPerCoeff := log2Floor(p)
	if bitsPerCoeff == 0 {
		return nil, errors.Wrap(errs.ErrParameterInfeasible, "plaintext modulus too small to carry any bits")
	}

	totalBits := n * int64(d)
	m, ell, err := searchEllM(totalBits, int64(bitsPerCoeff), secretDim)
	if err != nil {
		return nil, err
	}

	var kappa uint32
	if opt.Preproc {
		kappa = computeKappa(ell, m)
		if err := checkPreprocOverflow(p, kappa); err != nil {
			return nil, err
		}
	}

	dp := &DBParams{
		N:       secretDim,
		LogQ:    32,
		P:       p,
		Ell:     ell,
		M:       m,
		Sigma:   sigma,
		Kappa:   kappa,
		RecordN: n,
		RecordD: d,
	}

	if !opt.AllowTrivial {
		hintBits := int64(dp.Ell) * int64(secretDim) * 32
		if hintBits > totalBits {
			return nil, errors.Wrapf(errs.ErrParameterInfeasible,
				"hint size %d bits exceeds database size %d bits and allow_trivial is false", hintBits, totalBits)
		}
	}

	return dp, nil
}

// maxPlaintextModulus returns the largest power-of-two p such that the
// Regev rounding bound |error| < Delta/2 holds for q = 2^32, i.e. the
// largest p with Delta = q/p strictly greater than 2*errBound. The bound
// Delta*(p-1) + errBound < q/2 (spec §3 invariant 1) is not used: with
// Delta = q/p it reduces to Delta > q/2 + errBound, which no p >= 2
// satisfies.
func maxPlaintextModulus(errBound uint64) (uint32, error) {
	const q = uint64(1) << 32
	for logP := uint(31); logP >= 1; logP-- {
		p := uint64(1) << logP
		delta := q / p
		if delta > 2*errBound {
			return uint32(p), nil
		}
	}
	return 0, errors.Wrap(errs.ErrParameterInfeasible, "no plaintext modulus satisfies the correctness bound")
}

// searchEllM finds the smallest ell (and corresponding m) such that
// ell*m*bitsPerCoeff >= totalBits, scanning m from minM up to 4*minM+1
// (or totalCoeffs, if smaller) and keeping the first m that reaches the
// smallest ell; larger m are not considered (spec §4.6 "search (ell, m)
// minimizing ell ... m >= n").
func searchEllM(totalBits, bitsPerCoeff int64, minM int) (m, ell int, err error) {
	if bitsPerCoeff <= 0 {
		return 0, 0, errors.Wrap(errs.ErrParameterInfeasible, "bitsPerCoeff must be positive")
	}
	totalCoeffs := (totalBits + bitsPerCoeff - 1) / bitsPerCoeff
	if totalCoeffs <= 0 {
		return 0, 0, errors.Wrap(errs.ErrParameterInfeasible, "empty database")
	}

	m = minM
	ell = int((totalCoeffs + int64(m) - 1) / int64(m))
	if ell < 1 {
		ell = 1
	}

	// Grow m beyond minM only when it shrinks ell, trading
	// upload size for download size as spec §4.3 prescribes ("minimize
	// ell ... while keeping upload (m) reasonable").
	for candidateM := int64(m); candidateM <= totalCoeffs; candidateM++ {
		candidateEll := (totalCoeffs + candidateM - 1) / candidateM
		if candidateEll < int64(ell) {
			ell = int(candidateEll)
			m = int(candidateM)
		}
		if candidateM > int64(minM)*4 {
			break
		}
	}
	return m, ell, nil
}

// computeKappa sets kappa = ell * ceil(sqrt(ell/m)) (spec §4.6), the
// extra message space needed to encrypt C*D without overflow. kappa is
// nudged odd: the preproc multi-limb representation (arith.MultiLimbMatrix)
// recombines its q-limb and kappa-limb via CRT, which requires kappa
// coprime with q = 2^32 — any odd kappa satisfies that regardless of its
// other factors.
func computeKappa(ell, m int) uint32 {
	ratio := float64(ell) / float64(m)
	if ratio < 0 {
		ratio = 0
	}
	k := int64(ell) * int64(math.Ceil(math.Sqrt(ratio)))
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	return uint32(k)
}

// checkPreprocOverflow rejects (p, kappa) pairs whose preproc message
// space p*kappa is zero or exceeds 2^32, so that every preproc plaintext
// (a value below p*kappa) fits in a uint32. It does not check
// p*m*kappa < q*kappa (spec §3 MultiLimbMatrix).
func checkPreprocOverflow(p uint32, kappa uint32) error {
	pPrime := uint64(p) * uint64(kappa)
	if pPrime == 0 || pPrime > (uint64(1)<<32) {
		return errors.Wrapf(errs.ErrParameterInfeasible, "p*kappa=%d overflows the preproc message space", pPrime)
	}
	return nil
}

func log2Floor(p uint32) int {
	n := 0
	for v := p; v > 1; v >>= 1 {
		n++
	}
	return n
}

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

// Package lhe implements Regev-style LWE linearly homomorphic encryption,
// parameterized rather than subclassed: the online (single-limb, modulus
// q) and preproc (multi-limb, modulus q*kappa) instances are the same
// algorithm over two different parameter bundles (spec §9 "Variants over
// inheritance").
package lhe

import (
	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/internal/errs"
)

// Params bundles everything one LHE instance needs: its LWE dimension n,
// the number of rows m of the public matrix A, the plaintext modulus p,
// the scaling factor Delta = q/p, and the error distribution.
type Params struct {
	N     int
	M     int
	P     uint32
	Delta uint64
	Sigma *arith.GaussianSampler
}

// NewParams builds a Params bundle for the online (single-limb) instance,
// with Delta = 2^32 / p computed for the caller.
func NewParams(n, m int, p uint32, sigma float64, errBound uint64) *Params {
	if n <= 0 || m <= 0 || p < 2 {
		errs.InvalidShape("lhe.NewParams: n=%d m=%d p=%d", n, m, p)
	}
	delta := (uint64(1) << 32) / uint64(p)
	return &Params{N: n, M: m, P: p, Delta: delta, Sigma: arith.NewGaussianSampler(sigma, errBound)}
}

// GenPublicA deterministically derives the public A : m x n matrix from
// seed (spec §4.2 gen_public_A).
func (lp *Params) GenPublicA(seed arith.Seed) *arith.Matrix {
	return arith.Expand(seed, lp.M, lp.N)
}

// SampleSK draws a fresh secret key sk : n x 1, uniform over Z_q (spec
// §4.2 sample_sk).
func (lp *Params) SampleSK() (*arith.Matrix, error) {
	return arith.RandMatrix(lp.N, 1, 0)
}

// Encrypt computes ct = A*sk + e + Delta*pt mod q, sampling a fresh error
// e (spec §4.2 encrypt). pt must have M rows with entries < P.
func (lp *Params) Encrypt(a, sk, pt *arith.Matrix) *arith.Matrix {
	if !pt.CheckDims(lp.M, 1) {
		errs.InvalidShape("lhe.Encrypt: pt must be %dx1, got %dx%d", lp.M, pt.Rows, pt.Cols)
	}
	as := arith.MatMulVec(a, sk)
	return lp.EncryptGivenAs(as, pt)
}

// EncryptGivenAs computes ct = As + e + Delta*pt mod q, given a
// precomputed As = A*sk (spec §4.2 encrypt_given_As: the client caches As
// once per session so the per-query critical path skips the matmul).
func (lp *Params) EncryptGivenAs(as, pt *arith.Matrix) *arith.Matrix {
	if !as.DimsMatch(pt) {
		errs.InvalidShape("lhe.EncryptGivenAs: As %dx%d vs pt %dx%d", as.Rows, as.Cols, pt.Rows, pt.Cols)
	}
	e := lp.Sigma.SampleMatrix(as.Rows, as.Cols)
	ct := as.Copy()
	ct.AddInPlace(e)
	ct.AddInPlace(pt.MulScalar(uint32(lp.Delta)))
	return ct
}

// Decrypt computes pt = round((ct - H*sk)/Delta) mod p (spec §4.2
// decrypt). A recovered value exactly equal to P is clamped to 0 (modular
// wrap, spec §7).
func (lp *Params) Decrypt(h, sk, ct *arith.Matrix) *arith.Matrix {
	hs := arith.MatMulVec(h, sk)
	return lp.DecryptGivenHs(hs, ct)
}

// DecryptGivenHs computes pt = round((ct - Hs)/Delta) mod p, given a
// precomputed Hs = H*sk (spec §4.2 decrypt_given_Hs). The rounding step
// performs no modular reduction of its own, so the one legitimate
// wraparound case — a correctly-decrypted value that rounds up to exactly
// P — is clamped to zero here, on the raw rounded value, instead of being
// silently folded back into range by an internal mod p first (spec §7).
func (lp *Params) DecryptGivenHs(hs, ct *arith.Matrix) *arith.Matrix {
	if !hs.DimsMatch(ct) {
		errs.InvalidShape("lhe.DecryptGivenHs: Hs %dx%d vs ct %dx%d", hs.Rows, hs.Cols, ct.Rows, ct.Cols)
	}
	diff := arith.MatSub(ct, hs)
	pt := diff.DivScalarRound(lp.Delta, 0)
	return pt.Apply(func(v uint32) uint32 {
		if v == lp.P {
			return 0
		}
		return v
	})
}

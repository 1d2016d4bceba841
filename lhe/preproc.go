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

package lhe

import (
	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/internal/errs"
)

// PreprocParams is the multi-limb analogue of Params: LHE_preproc(n, q,
// kappa, p*kappa, sigma') from spec §4.2. PPrime is p*kappa, the enlarged
// preproc message space; Delta' = (q*kappa)/PPrime is the scaling factor
// in the combined modulus q*kappa that arith.MultiLimbMatrix's CRT pair
// actually represents (not q alone — see
// arith.MultiLimbMatrix.DivScalarRoundCombined).
type PreprocParams struct {
	N      int
	M      int
	Kappa  uint32
	PPrime uint64
	Delta  uint64
	Sigma  *arith.GaussianSampler
}

// NewPreprocParams builds a Params bundle for the preproc (multi-limb)
// instance.
func NewPreprocParams(n, m int, p uint32, kappa uint32, sigma float64, errBound uint64) *PreprocParams {
	if n <= 0 || m <= 0 || p < 2 || kappa < 2 {
		errs.InvalidShape("lhe.NewPreprocParams: n=%d m=%d p=%d kappa=%d", n, m, p, kappa)
	}
	pPrime := uint64(p) * uint64(kappa)
	qPrime := (uint64(1) << 32) * uint64(kappa)
	delta := qPrime / pPrime
	return &PreprocParams{N: n, M: m, Kappa: kappa, PPrime: pPrime, Delta: delta, Sigma: arith.NewGaussianSampler(sigma, errBound)}
}

// GenPublicA deterministically derives the multi-limb public matrix A2 :
// m x n from seed (spec §4.4 "client and server both deterministically
// derive the public matrix A2").
func (pp *PreprocParams) GenPublicA(seed arith.Seed) *arith.MultiLimbMatrix {
	return arith.ExpandMultiLimb(seed, pp.M, pp.N, pp.Kappa)
}

// SampleSK draws a fresh secret key sk : n x 1, uniform over Z_q (the
// preproc instance's secret key lives in the q-limb only; it is
// multiplied against both limbs of A2 during encryption).
func (pp *PreprocParams) SampleSK() (*arith.Matrix, error) {
	return arith.RandMatrix(pp.N, 1, 0)
}

// Encrypt computes ct = A2*sk + e + Delta'*pt mod q*kappa (spec §4.4 step
// 1: "encrypt it under LHE_preproc against A2").
func (pp *PreprocParams) Encrypt(a2 *arith.MultiLimbMatrix, sk, pt *arith.Matrix) *arith.MultiLimbMatrix {
	if !pt.CheckDims(pp.M, 1) {
		errs.InvalidShape("lhe.PreprocEncrypt: pt must be %dx1, got %dx%d", pp.M, pt.Rows, pt.Cols)
	}
	as := arith.MatMulVecMultiLimbBoth(a2, &arith.MultiLimbMatrix{QData: sk, KappaData: sk.Mod(pp.Kappa)}, pp.Kappa)
	return pp.EncryptGivenAs(as, pt)
}

// EncryptGivenAs computes ct = As + e + Delta'*pt mod q*kappa given a
// precomputed As. The error and the scaled message are folded into both
// limbs of the multi-limb ciphertext, not just the q-limb, so ct stays a
// CRT-consistent representation of a single value mod q*kappa.
func (pp *PreprocParams) EncryptGivenAs(as *arith.MultiLimbMatrix, pt *arith.Matrix) *arith.MultiLimbMatrix {
	e := pp.Sigma.SampleMultiLimb(as.Rows(), as.Cols(), pp.Kappa)
	scaled := arith.ScaleMultiLimb(pt, pp.Delta, pp.Kappa)
	out := &arith.MultiLimbMatrix{QData: as.QData.Copy(), KappaData: as.KappaData.Copy()}
	out.AddInPlace(e, pp.Kappa)
	out.AddInPlace(scaled, pp.Kappa)
	return out
}

// Decrypt computes pt = round((ct - H2*sk)/Delta') mod p*kappa (spec §4.4
// step 4 "recover Z_row_j = decrypt(H2, sk_j, ansts_j) over Z_{p*kappa}").
func (pp *PreprocParams) Decrypt(h2 *arith.MultiLimbMatrix, sk *arith.Matrix, ct *arith.MultiLimbMatrix) *arith.Matrix {
	hs := arith.MatMulVecMultiLimbBoth(h2, &arith.MultiLimbMatrix{QData: sk, KappaData: sk.Mod(pp.Kappa)}, pp.Kappa)
	return pp.DecryptGivenHs(hs, ct)
}

// DecryptGivenHs computes pt = round((ct - Hs)/Delta') mod p*kappa, given
// a precomputed Hs = H2*sk. The rounding step recombines both limbs via
// CRT before dividing (arith.MultiLimbMatrix.DivScalarRoundCombined); it
// performs no modular reduction of its own, so the one legitimate
// wraparound case — a correctly-decrypted value that rounds up to exactly
// PPrime — is clamped to zero here, while any other out-of-range value is
// left visible to the caller instead of being silently folded back into
// range (spec §7).
func (pp *PreprocParams) DecryptGivenHs(hs, ct *arith.MultiLimbMatrix) *arith.Matrix {
	diff := arith.SubMultiLimb(ct, hs, pp.Kappa)
	pt := diff.DivScalarRoundCombined(pp.Delta, pp.Kappa)
	return pt.Apply(func(v uint32) uint32 {
		if uint64(v) == pp.PPrime {
			return 0
		}
		return v
	})
}

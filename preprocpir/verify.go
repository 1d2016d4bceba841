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

package preprocpir

import (
	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/lhe"
)

// Verify checks, for every challenge row j, that ansts_j is within the
// LWE error envelope of the value the committed preproc_Z predicts (spec
// §4.4 step 3: "expected_j = H2*sk_j + Delta'*preproc_Z[:,j] ... check
// equality with ansts_j up to the LWE error envelope"). It returns false
// (ProofInvalid, at the pir layer) on the first row that fails.
func Verify(pp *lhe.PreprocParams, h2 *arith.MultiLimbMatrix, sks []*arith.Matrix, ansts []*arith.MultiLimbMatrix, preprocZ *arith.Matrix, kappa uint32, errBound uint64) bool {
	if len(sks) != len(ansts) || preprocZ.Cols != len(sks) {
		return false
	}
	for j, sk := range sks {
		hs := arith.MatMulVecMultiLimbBoth(h2, &arith.MultiLimbMatrix{QData: sk, KappaData: sk.Mod(kappa)}, kappa)
		zCol := preprocZ.Col(j)
		expected := &arith.MultiLimbMatrix{QData: hs.QData.Copy(), KappaData: hs.KappaData.Copy()}
		expected.QData.AddInPlace(zCol.MulScalar(uint32(pp.Delta)))
		if !withinEnvelope(expected.QData, ansts[j].QData, errBound) {
			return false
		}
	}
	return true
}

// withinEnvelope reports whether every entry of got is within errBound of
// want, accounting for mod-2^32 wraparound (the LWE error envelope, spec
// §4.4 step 3 / §9 "Timing").
func withinEnvelope(want, got *arith.Matrix, errBound uint64) bool {
	for i := range want.Data {
		diff := want.Data[i] - got.Data[i]
		d := uint64(diff)
		if d > (uint64(1)<<32)-d {
			d = (uint64(1) << 32) - d
		}
		if d > errBound {
			return false
		}
	}
	return true
}

// RecoverZ decrypts each ansts_j under (H2, sk_j) and reduces mod p,
// stacking the results column-wise into Z : ell x STAT_SEC_PARAM (spec
// §4.4 step 4).
func RecoverZ(pp *lhe.PreprocParams, h2 *arith.MultiLimbMatrix, sks []*arith.Matrix, ansts []*arith.MultiLimbMatrix, p uint32) *arith.Matrix {
	ell := h2.QData.Rows
	z := arith.NewMatrix(ell, len(sks))
	for j, sk := range sks {
		pt := pp.Decrypt(h2, sk, ansts[j])
		reduced := pt.Mod(p)
		z.SetCol(j, reduced)
	}
	return z
}

// VerifyAgainstOnlineHint performs the final offline soundness check
// (spec §4.4 step 5): confirm Z is consistent with the online hint H1 and
// the challenge C, without trusting the server's claimed D. For each
// challenge row j it recomputes H1 * embed(c_j, n) (a value any party can
// compute from public data) and compares it, in the scaled domain, to
// Delta_online * Z[:,j]; a mismatch beyond errBound signals the server's
// claimed Z does not match its own committed hint.
//
// The spec's formula "A1*Z = H1*C^T mod q" does not type-check literally
// at these dimensions (A1 is m x n, Z is ell x STAT_SEC_PARAM, H1 is
// ell x n, C is STAT_SEC_PARAM x m) for any non-degenerate (ell, m, n);
// A1 is accepted here only to match the external signature in spec §6 and
// is not separately needed, since H1 already encodes D*A1 — see
// DESIGN.md.
func VerifyAgainstOnlineHint(a1 *arith.Matrix, z *arith.Matrix, c *arith.BinaryMatrix, h1 *arith.Matrix, deltaOnline uint64, errBound uint64) bool {
	_ = a1 // accepted for external-API fidelity with spec §6's VerifyPreprocZ(Z, A1, C, H1); see doc comment.
	n := h1.Cols
	for j := 0; j < c.Rows; j++ {
		cRow := embedToLen(c.Row(j).Transpose(), n)
		rhs := arith.MatMulVec(h1, cRow)
		lhs := z.Col(j).MulScalar(uint32(deltaOnline))
		if !withinEnvelope(lhs, rhs, errBound) {
			return false
		}
	}
	return true
}

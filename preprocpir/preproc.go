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

// Package preprocpir implements the offline preprocessing protocol (spec
// §4.4): the client challenges the server with an encrypted random binary
// matrix C, the server answers and proves soundness, and the client
// recovers Z = D*C^T (mod p) together with a verification that Z is
// consistent with the online hint H1, without ever trusting the server.
package preprocpir

import (
	"crypto/sha256"

	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/internal/errs"
	"github.com/xlab-si/verisimplepir/lhe"
)

// StatSecParam is the number of challenge rows in C (spec §3
// STAT_SEC_PARAM).
const StatSecParam = 40

// domainTag is the 1-byte domain-separation prefix mixed into preproc_hash
// (spec §6: "with a 1-byte domain-separation tag 0x01").
const domainTag = 0x01

// State is the client-side state machine driving one preprocessing
// session (spec §4.4: "Fresh -> AwaitHint -> AwaitProof -> Verify ->
// {Ready, Rejected}").
type State int

const (
	StateFresh State = iota
	StateAwaitHint
	StateAwaitProof
	StateVerify
	StateReady
	StateRejected
)

// Init deterministically derives the preproc public matrix A2 from seed
// (spec §6 PreprocInit).
func Init(pp *lhe.PreprocParams, seed arith.Seed) *arith.MultiLimbMatrix {
	return pp.GenPublicA(seed)
}

// GenerateHint computes H2 = D * A2 (that is, D_T^T * A2) mod q*kappa, shape
// ell x n, the preproc hint the server precomputes and sends to the client
// on first contact (spec §4.4 "Setup", §6 PreprocGenerateHint). dT is D
// transposed, shape m x ell.
func GenerateHint(pp *lhe.PreprocParams, a2 *arith.MultiLimbMatrix, dT *arith.Matrix) *arith.MultiLimbMatrix {
	d := dT.Transpose()
	qPart := arith.MatMul(d, a2.QData) // (D * A2_q), ell x n; see design note on H orientation
	kappa := uint64(pp.Kappa)
	kPart := arith.NewMatrix(d.Rows, a2.KappaData.Cols)
	for i := 0; i < d.Rows; i++ {
		for j := 0; j < kPart.Cols; j++ {
			var sum uint64
			for k := 0; k < d.Cols; k++ {
				sum = (sum + (uint64(d.At(i, k))%kappa)*uint64(a2.KappaData.At(k, j))) % kappa
			}
			kPart.Set(i, j, uint32(sum))
		}
	}
	return &arith.MultiLimbMatrix{QData: qPart, KappaData: kPart}
}

// SampleC draws a fresh uniform STAT_SEC_PARAM x m binary challenge
// matrix, one challenge row per LHE_preproc plaintext slot (spec §4.4
// step 1; its m-width, rather than ell, is what lets each row be
// encrypted directly against A2 and later lets C*ct type-check against
// the online ciphertext in onlinepir.PreVerify — see DESIGN.md for the
// resolution of this shape across spec §4.4/§4.5).
func SampleC(m int) (*arith.BinaryMatrix, error) {
	return arith.RandBinaryMatrix(StatSecParam, m)
}

// ClientMessage encrypts each row of C under the preproc LHE instance
// against A2, producing STAT_SEC_PARAM ciphertexts and the secret keys
// used to produce them (spec §4.4 step 1; §6 PreprocClientMessage). The
// client retains sks and discards nothing else.
func ClientMessage(pp *lhe.PreprocParams, a2 *arith.MultiLimbMatrix, c *arith.BinaryMatrix) (cts []*arith.MultiLimbMatrix, sks []*arith.Matrix, err error) {
	if c.Cols != a2.Rows() {
		errs.InvalidShape("preprocpir.ClientMessage: C cols %d != A2 rows %d", c.Cols, a2.Rows())
	}
	cts = make([]*arith.MultiLimbMatrix, c.Rows)
	sks = make([]*arith.Matrix, c.Rows)
	for j := 0; j < c.Rows; j++ {
		sk, e := pp.SampleSK()
		if e != nil {
			return nil, nil, e
		}
		pt := c.Row(j).Transpose() // 1 x m -> m x 1, entries already < p
		sks[j] = sk
		cts[j] = pp.Encrypt(a2, sk, pt)
	}
	return cts, sks, nil
}

// embedToLen zero-pads or truncates a column vector to exactly n rows, so
// a value living in one coordinate space (e.g. C's m-wide rows) can be
// fed to an operator expecting another (e.g. H1's n columns). Used only
// by VerifyPreprocZ's cross-check, where spec §4.4 step 5's "A*Z = H*C^T"
// identity mixes the m-, ell- and n-dimensional spaces in a way that only
// type-checks after such an embedding; see DESIGN.md.
func embedToLen(col *arith.Matrix, n int) *arith.Matrix {
	out := arith.NewMatrix(n, 1)
	have := col.Rows * col.Cols
	if have > n {
		have = n
	}
	for i := 0; i < have; i++ {
		out.Data[i] = col.Data[i]
	}
	return out
}

// Answer computes ansts_j = D_T^T * cts_j (i.e. D * cts_j) as a multi-limb
// matrix for each client ciphertext (spec §4.4 step 2).
func Answer(dT *arith.Matrix, cts []*arith.MultiLimbMatrix, kappa uint32) []*arith.MultiLimbMatrix {
	d := dT.Transpose()
	out := make([]*arith.MultiLimbMatrix, len(cts))
	for j, ct := range cts {
		out[j] = arith.MatMulVecMultiLimb(d, ct, kappa)
	}
	return out
}

// TranscriptHash hashes (A2, H2) into the 32-byte domain-separated
// preproc_hash (spec §4.4 step 2, §6: digest over the wire encodings of A2
// and H2 with a leading 0x01 tag). crypto/sha256 is used because no
// example in the retrieved pack actually invokes a third-party digest
// (see DESIGN.md).
func TranscriptHash(a2, h2 *arith.MultiLimbMatrix) ([32]byte, error) {
	a2Bytes, err := a2.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	h2Bytes, err := h2.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	buf := make([]byte, 0, 1+len(a2Bytes)+len(h2Bytes))
	buf = append(buf, domainTag)
	buf = append(buf, a2Bytes...)
	buf = append(buf, h2Bytes...)
	return sha256.Sum256(buf), nil
}

// Prove computes preproc_Z = D_T^T * C^T mod p, the plaintext proof the
// server commits to (spec §4.4 step 2).
func Prove(dT *arith.Matrix, c *arith.BinaryMatrix, p uint32) *arith.Matrix {
	d := dT.Transpose()
	cT := c.ToMatrix().Transpose()
	raw := arith.MatMul(d, cT)
	return raw.Mod(p)
}

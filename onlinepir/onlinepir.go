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

// Package onlinepir implements the per-query online protocol (spec
// §4.5): the client encrypts a one-hot vector for the requested index,
// the server answers with one matrix-vector product, and the client
// verifies the answer against the offline-established proof Z before
// decrypting. D is always the logically unpacked ell x m plaintext
// matrix here; packing/unpacking for storage and wire efficiency is the
// concern of package db, one layer up.
package onlinepir

import (
	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/internal/errs"
	"github.com/xlab-si/verisimplepir/lhe"
)

// OneHot builds u_i in Z_p^m, a 1 at position col with every other entry
// 0 (spec §4.5 Query: "the one-hot vector u_i ... with 1 at position
// col(i)").
func OneHot(m, col int) *arith.Matrix {
	if col < 0 || col >= m {
		errs.InvalidShape("onlinepir.OneHot: col %d out of range for m=%d", col, m)
	}
	out := arith.NewMatrix(m, 1)
	out.Data[col] = 1
	return out
}

// QueryGivenAs encrypts the one-hot vector for col under the online LHE
// instance, given a precomputed As = A*sk (spec §4.5 Query step 1, §6
// QueryGivenAs).
func QueryGivenAs(lp *lhe.Params, as *arith.Matrix, col int) *arith.Matrix {
	u := OneHot(lp.M, col)
	return lp.EncryptGivenAs(as, u)
}

// Answer computes ans = D * ct mod q, the server's single matrix-vector
// product per query (spec §4.5 Answer).
func Answer(d *arith.Matrix, ct *arith.Matrix) *arith.Matrix {
	return arith.MatMulVec(d, ct)
}

// PreVerify checks that ans is consistent with ct and the
// offline-established proof Z (spec §4.5 Verify). It computes
// v = Z * (C * ct mod q) mod q and accepts only if v is within the LWE
// error envelope of ans, exploiting that A*Z = H*C^T was established
// offline so that C*ct and ans should agree up to scaling and noise.
func PreVerify(z *arith.Matrix, c *arith.BinaryMatrix, ct, ans *arith.Matrix, deltaOnline uint64, errBound uint64) bool {
	cCt := arith.MatMulVec(c.ToMatrix(), ct)
	v := arith.MatMulVec(z, cCt)
	scaled := v.MulScalar(uint32(deltaOnline))
	return withinEnvelope(scaled, ans, errBound)
}

func withinEnvelope(want, got *arith.Matrix, errBound uint64) bool {
	if !want.DimsMatch(got) {
		return false
	}
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

// RecoverGivenHs decrypts ans under a precomputed Hs = H*sk and returns
// the decrypted coefficient at row (spec §4.5 Recover). The whole
// coefficient is returned; the bits of an individual record inside it are
// not extracted.
func RecoverGivenHs(lp *lhe.Params, hs, ans *arith.Matrix, row int) uint32 {
	pt := lp.DecryptGivenHs(hs, ans)
	if row < 0 || row >= pt.Rows {
		errs.InvalidShape("onlinepir.RecoverGivenHs: row %d out of range for %d", row, pt.Rows)
	}
	return pt.At(row, 0)
}

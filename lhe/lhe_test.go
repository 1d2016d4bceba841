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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlab-si/verisimplepir/arith"
)

func testParams(t *testing.T) (*Params, *arith.Matrix) {
	t.Helper()
	lp := NewParams(8, 32, 16, 3.2, 1<<16)
	seed, err := arith.NewSeed()
	require.NoError(t, err)
	a := lp.GenPublicA(seed)
	return lp, a
}

// Encryption round-trip (spec §8 property 1): decrypt(H, sk,
// encrypt(A, sk, pt)) == pt for pt with entries < p.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	lp, a := testParams(t)
	sk, err := lp.SampleSK()
	require.NoError(t, err)

	// H = D*A with D the m x m identity, so H = A and decrypting ct
	// against H*sk recovers pt directly.
	h := a

	pt := arith.NewMatrix(lp.M, 1)
	for i := range pt.Data {
		pt.Data[i] = uint32(i) % lp.P
	}

	ct := lp.Encrypt(a, sk, pt)
	hs := arith.MatMulVec(h, sk)
	assert.Equal(t, pt.Data, lp.DecryptGivenHs(hs, ct).Data)

	// Directly validate descaling alone (H*sk cancels nothing here, so
	// use a trivial one-row scheme: m=1).
	lp1 := NewParams(4, 1, 16, 3.2, 1<<16)
	a1 := arith.NewMatrix(1, 4)
	sk1 := arith.NewMatrix(4, 1)
	for i := range sk1.Data {
		sk1.Data[i] = uint32(i + 1)
	}
	pt1 := arith.NewMatrix(1, 1)
	pt1.Data[0] = 9
	ct1 := lp1.Encrypt(a1, sk1, pt1)
	h1 := a1 // H = A when D is identity-like (1x1 database)
	got := lp1.Decrypt(h1, sk1, ct1)
	assert.Equal(t, pt1.Data[0], got.Data[0])
}

// Hint equation (spec §8 property 2), in the H = D * A orientation:
// (D * A) * sk == D * (A * sk) mod q. This is the identity that lets the server's H*sk work move
// offline.
func TestHintEquation(t *testing.T) {
	const n, m, ell = 3, 5, 2
	a, err := arith.RandMatrix(m, n, 0)
	require.NoError(t, err)
	d, err := arith.RandMatrix(ell, m, 0)
	require.NoError(t, err)
	sk, err := arith.RandMatrix(n, 1, 0)
	require.NoError(t, err)

	h := arith.MatMul(d, a) // H = D * A, shape ell x n
	lhs := arith.MatMulVec(h, sk)

	as := arith.MatMulVec(a, sk) // A*sk, shape m x 1
	rhs := arith.MatMulVec(d, as)

	assert.Equal(t, lhs.Data, rhs.Data)
}

func TestEncryptFreshErrorEachCall(t *testing.T) {
	lp, a := testParams(t)
	sk, err := lp.SampleSK()
	require.NoError(t, err)
	pt := arith.NewMatrix(lp.M, 1)

	ct1 := lp.Encrypt(a, sk, pt)
	ct2 := lp.Encrypt(a, sk, pt)
	assert.NotEqual(t, ct1.Data, ct2.Data, "two encryptions of the same plaintext must not be identical (fresh error each call)")
}

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

package arith

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/salsa20"
)

// Seed is 32 bytes of entropy that deterministically expands into a
// matrix via a keystream, keeping the expansion byte-exact across runs
// and implementations (spec: "Seed ... deterministically expands to a
// matrix of given shape via a stream cipher keyed by the seed").
type Seed [32]byte

// NewSeed draws a fresh, uniformly random seed.
func NewSeed() (Seed, error) {
	var s Seed
	_, err := rand.Read(s[:])
	return s, err
}

// Expand deterministically derives a rows x cols matrix with entries
// uniform in [0, 2^32) from seed. Because q is exactly 2^32, every 4-byte
// keystream block already lands in range, so (unlike a sampler built for
// an arbitrary bound) no rejection loop is needed: the keystream is
// consumed once, linearly.
func Expand(seed Seed, rows, cols int) *Matrix {
	out := NewMatrix(rows, cols)
	n := rows * cols
	in := make([]byte, 4*n)
	out8 := make([]byte, 4*n)
	nonce := make([]byte, 8) // zero nonce: the seed alone is the key material
	key := [32]byte(seed)
	salsa20.XORKeyStream(out8, in, nonce, &key)
	for i := 0; i < n; i++ {
		out.Data[i] = binary.LittleEndian.Uint32(out8[4*i : 4*i+4])
	}
	return out
}

// ExpandMultiLimb derives the (q, kappa) pair for a multi-limb public
// matrix, by expanding twice from domain-separated seeds (so the two
// limbs are independent streams rather than reinterpretations of the same
// bytes).
func ExpandMultiLimb(seed Seed, rows, cols int, kappa uint32) *MultiLimbMatrix {
	qSeed, kSeed := deriveTwo(seed)
	q := Expand(qSeed, rows, cols)
	k := Expand(kSeed, rows, cols).Mod(kappa)
	return &MultiLimbMatrix{QData: q, KappaData: k}
}

// deriveTwo splits one seed into two domain-separated sub-seeds by XOR-ing
// a distinct one-byte tag (0x01, 0x02) into the first byte of the key, so
// the two streams Expand derives from them differ.
func deriveTwo(seed Seed) (Seed, Seed) {
	var a, b Seed
	var keyA, keyB [32]byte = [32]byte(seed), [32]byte(seed)
	keyA[0] ^= 0x01
	keyB[0] ^= 0x02
	copy(a[:], keyA[:])
	copy(b[:], keyB[:])
	return a, b
}

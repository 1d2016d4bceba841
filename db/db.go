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

// Package db packs a flat bit-string database into a PackedMatrix plaintext
// grid and back, and derives the one-hot coordinate of a given record
// index (spec §4.3).
package db

import (
	"math/bits"

	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/internal/errs"
)

// bitsPerCoeff returns floor(log2(p)), the number of plaintext bits
// carried by one coefficient.
func bitsPerCoeff(p uint32) int {
	if p < 2 {
		errs.InvalidShape("db: p must be >= 2, got %d", p)
	}
	return bits.Len32(p) - 1
}

// Pack partitions the N*d-bit stream bitstring into floor(log2 p)-bit
// coefficients and places them column-major into an ell x m grid packed
// into 32-bit cells (spec §4.3 pack). Bits are addressed LSB-first within
// each byte; ell and m must already satisfy
// ell*m*bitsPerCoeff(p) >= len(bitstring)*8, typically computed by package
// params.
func Pack(bitstring []byte, ell, m int, p uint32) *arith.PackedMatrix {
	bpc := bitsPerCoeff(p)
	out := arith.NewPackedMatrix(ell, m, p)
	totalBits := len(bitstring) * 8
	totalCoeffs := (totalBits + bpc - 1) / bpc
	capacity := ell * m * out.CoeffsPerCell
	if totalCoeffs > capacity {
		errs.InvalidShape("db.Pack: %d coefficients do not fit in %dx%d grid with %d per cell", totalCoeffs, ell, m, out.CoeffsPerCell)
	}
	for coeffIdx := 0; coeffIdx < totalCoeffs; coeffIdx++ {
		v := extractBits(bitstring, coeffIdx*bpc, bpc)
		r, c, k := coeffCoord(coeffIdx, ell, out.CoeffsPerCell)
		out.SetCoeff(r, c, k, v)
	}
	return out
}

// Unpack reverses Pack, reconstructing the original bit length nBits from
// a packed matrix (the caller must supply the exact original bit length,
// since the grid may be zero-padded past it).
func Unpack(pm *arith.PackedMatrix, nBits int, p uint32) []byte {
	bpc := bitsPerCoeff(p)
	out := make([]byte, (nBits+7)/8)
	totalCoeffs := (nBits + bpc - 1) / bpc
	for coeffIdx := 0; coeffIdx < totalCoeffs; coeffIdx++ {
		r, c, k := coeffCoord(coeffIdx, pm.Rows, pm.CoeffsPerCell)
		v := pm.GetCoeff(r, c, k)
		bitOffset := coeffIdx * bpc
		bitsLeft := nBits - bitOffset
		writeBits(out, bitOffset, v, min(bpc, bitsLeft))
	}
	return out
}

// coeffCoord maps a linear coefficient index to (row, col, within-cell
// index), filling the grid of cells column-major: within a column the
// cell-coefficient varies fastest, then row, then column (spec §4.3: "places
// coefficients column-major into an ell x m grid").
func coeffCoord(coeffIdx, ell, coeffsPerCell int) (row, col, k int) {
	perColumn := ell * coeffsPerCell
	col = coeffIdx / perColumn
	rem := coeffIdx % perColumn
	row = rem / coeffsPerCell
	k = rem % coeffsPerCell
	return
}

// RowForIndex returns the deterministic (row, col) coordinate of record i
// within an ell x m grid holding records of recordBits bits each, packed
// bpc bits per coefficient and coeffsPerCell coefficients per cell (spec
// §4.3 row_for_index). It returns the coordinate of the coefficient
// holding the start of record i; callers needing the full record walk
// forward from there.
func RowForIndex(i, recordBits, ell, coeffsPerCell, bpc int) (row, col int) {
	if recordBits <= 0 {
		errs.InvalidShape("db.RowForIndex: recordBits must be positive, got %d", recordBits)
	}
	startBit := i * recordBits
	coeffIdx := startBit / bpc
	row, col, _ = coeffCoord(coeffIdx, ell, coeffsPerCell)
	return
}

func extractBits(data []byte, bitOffset, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		var b byte
		if byteIdx < len(data) {
			b = data[byteIdx]
		}
		bitVal := (b >> uint(bit%8)) & 1
		v |= uint32(bitVal) << uint(i)
	}
	return v
}

func writeBits(out []byte, bitOffset int, v uint32, n int) {
	for i := 0; i < n; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		if byteIdx >= len(out) {
			return
		}
		bitVal := (v >> uint(i)) & 1
		if bitVal == 1 {
			out[byteIdx] |= 1 << uint(bit%8)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

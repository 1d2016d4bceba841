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

import "github.com/xlab-si/verisimplepir/internal/errs"

// PackedMatrix holds the same logical rows x cols grid as a Matrix, but
// each cell packs CoeffsPerCell plaintext coefficients (each < P) into a
// single uint32 cell, base-P. CoeffsPerCell = floor(log2(q) / log2(p))
// (spec §3).
type PackedMatrix struct {
	Rows          int
	Cols          int
	P             uint32
	CoeffsPerCell int
	Data          []uint32
}

// NewPackedMatrix allocates a zero-valued packed matrix for plaintext
// modulus p.
func NewPackedMatrix(rows, cols int, p uint32) *PackedMatrix {
	return &PackedMatrix{
		Rows:          rows,
		Cols:          cols,
		P:             p,
		CoeffsPerCell: coeffsPerCell(p),
		Data:          make([]uint32, rows*cols),
	}
}

func coeffsPerCell(p uint32) int {
	if p < 2 {
		errs.InvalidShape("packed matrix: p must be >= 2, got %d", p)
	}
	// Largest k with p^k <= 2^32, i.e. floor(32 / log2 p).
	k := 0
	for v := uint64(p); v <= uint64(1)<<32; v *= uint64(p) {
		k++
	}
	return k
}

// GetCoeff returns the k-th coefficient (0 <= k < CoeffsPerCell) stored in
// cell (r, c).
func (pm *PackedMatrix) GetCoeff(r, c, k int) uint32 {
	cell := pm.Data[r*pm.Cols+c]
	for i := 0; i < k; i++ {
		cell /= pm.P
	}
	return cell % pm.P
}

// SetCoeff writes the k-th coefficient of cell (r, c), leaving the other
// coefficients of that cell untouched.
func (pm *PackedMatrix) SetCoeff(r, c, k int, v uint32) {
	idx := r*pm.Cols + c
	cell := pm.Data[idx]

	// Decompose into coefficients, replace the k-th, recompose.
	coeffs := make([]uint32, pm.CoeffsPerCell)
	for i := range coeffs {
		coeffs[i] = cell % pm.P
		cell /= pm.P
	}
	coeffs[k] = v % pm.P

	var rebuilt uint32
	for i := pm.CoeffsPerCell - 1; i >= 0; i-- {
		rebuilt = rebuilt*pm.P + coeffs[i]
	}
	pm.Data[idx] = rebuilt
}

// Unpacked expands every coefficient of pm back into a dense Matrix of
// shape (Rows, Cols*CoeffsPerCell), coefficient k of cell (r,c) landing at
// column c*CoeffsPerCell+k.
func (pm *PackedMatrix) Unpacked() *Matrix {
	out := NewMatrix(pm.Rows, pm.Cols*pm.CoeffsPerCell)
	for r := 0; r < pm.Rows; r++ {
		for c := 0; c < pm.Cols; c++ {
			for k := 0; k < pm.CoeffsPerCell; k++ {
				out.Set(r, c*pm.CoeffsPerCell+k, pm.GetCoeff(r, c, k))
			}
		}
	}
	return out
}

// MatMulPacked multiplies a (single-limb) matrix a by a packed plaintext
// matrix d, unpacking cells on the fly rather than materializing the
// dense form (spec: matmul_packed).
func MatMulPacked(a *Matrix, d *PackedMatrix) *Matrix {
	if a.Cols != d.Rows {
		errs.InvalidShape("MatMulPacked: %dx%d * %dx%d(packed)", a.Rows, a.Cols, d.Rows, d.Cols)
	}
	outCols := d.Cols * d.CoeffsPerCell
	out := NewMatrix(a.Rows, outCols)
	for i := 0; i < a.Rows; i++ {
		arow := a.Data[i*a.Cols : (i+1)*a.Cols]
		for c := 0; c < d.Cols; c++ {
			for k := 0; k < d.CoeffsPerCell; k++ {
				var sum uint32
				for rIdx, av := range arow {
					sum += av * d.GetCoeff(rIdx, c, k)
				}
				out.Set(i, c*d.CoeffsPerCell+k, sum)
			}
		}
	}
	return out
}

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

// Package arith implements modular matrix and vector arithmetic over
// uint32/uint64, deterministic seed-keyed matrix expansion, and discrete
// Gaussian error sampling. Entries wrap naturally modulo q = 2^32 unless a
// smaller modulus is given explicitly by the caller (e.g. the plaintext
// modulus p).
package arith

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/xlab-si/verisimplepir/internal/errs"
)

// Matrix is a rectangular array of uint32 entries stored in row-major
// order.
type Matrix struct {
	Rows int
	Cols int
	Data []uint32
}

// NewMatrix returns a zero-valued rows*cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		errs.InvalidShape("negative dimension: %d x %d", rows, cols)
	}
	return &Matrix{Rows: rows, Cols: cols, Data: make([]uint32, rows*cols)}
}

// At returns the entry at (r, c).
func (m *Matrix) At(r, c int) uint32 {
	return m.Data[r*m.Cols+c]
}

// Set assigns the entry at (r, c).
func (m *Matrix) Set(r, c int, v uint32) {
	m.Data[r*m.Cols+c] = v
}

// CheckDims reports whether m has exactly the given dimensions.
func (m *Matrix) CheckDims(rows, cols int) bool {
	return m.Rows == rows && m.Cols == cols
}

// DimsMatch reports whether m and other have identical dimensions.
func (m *Matrix) DimsMatch(other *Matrix) bool {
	return m.Rows == other.Rows && m.Cols == other.Cols
}

// Copy returns a deep copy of m.
func (m *Matrix) Copy() *Matrix {
	out := &Matrix{Rows: m.Rows, Cols: m.Cols, Data: make([]uint32, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Col returns column i of m as a length-Rows Matrix (Cols == 1).
func (m *Matrix) Col(i int) *Matrix {
	if i < 0 || i >= m.Cols {
		errs.InvalidShape("column index %d out of bounds for %d columns", i, m.Cols)
	}
	out := NewMatrix(m.Rows, 1)
	for r := 0; r < m.Rows; r++ {
		out.Data[r] = m.At(r, i)
	}
	return out
}

// SetCol overwrites column i of m with the entries of v (a Cols==1 matrix).
func (m *Matrix) SetCol(i int, v *Matrix) {
	if i < 0 || i >= m.Cols {
		errs.InvalidShape("column index %d out of bounds for %d columns", i, m.Cols)
	}
	if v.Rows != m.Rows || v.Cols != 1 {
		errs.InvalidShape("SetCol: expected %d x 1, got %d x %d", m.Rows, v.Rows, v.Cols)
	}
	for r := 0; r < m.Rows; r++ {
		m.Set(r, i, v.Data[r])
	}
}

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.Cols, m.Rows)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			out.Set(c, r, m.At(r, c))
		}
	}
	return out
}

// AddInPlace adds other into m elementwise, with natural uint32 wraparound
// (spec: mat_add_in_place).
func (m *Matrix) AddInPlace(other *Matrix) {
	if !m.DimsMatch(other) {
		errs.InvalidShape("AddInPlace: %dx%d vs %dx%d", m.Rows, m.Cols, other.Rows, other.Cols)
	}
	for i := range m.Data {
		m.Data[i] += other.Data[i]
	}
}

// MatSub returns a - b elementwise, with natural uint32 wraparound (spec:
// mat_sub).
func MatSub(a, b *Matrix) *Matrix {
	if !a.DimsMatch(b) {
		errs.InvalidShape("MatSub: %dx%d vs %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	out := NewMatrix(a.Rows, a.Cols)
	for i := range out.Data {
		out.Data[i] = a.Data[i] - b.Data[i]
	}
	return out
}

// MulScalar returns m with every entry multiplied by x, mod 2^32 (spec:
// mat_mul_scalar).
func (m *Matrix) MulScalar(x uint32) *Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.Data[i] = v * x
	}
	return out
}

// DivScalarRound divides every entry of m by x, rounding to the nearest
// integer, and reduces the result mod mod (spec: mat_div_scalar "rounds to
// nearest"). mod == 0 means "no further reduction".
func (m *Matrix) DivScalarRound(x uint64, mod uint64) *Matrix {
	if x == 0 {
		errs.InvalidShape("DivScalarRound: division by zero")
	}
	out := NewMatrix(m.Rows, m.Cols)
	half := x / 2
	for i, v := range m.Data {
		q := (uint64(v) + half) / x
		if mod != 0 {
			q %= mod
		}
		out.Data[i] = uint32(q)
	}
	return out
}

// Mod reduces every entry of m modulo mod (mod must be <= 2^32).
func (m *Matrix) Mod(mod uint32) *Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.Data[i] = v % mod
	}
	return out
}

// Apply returns a new matrix with f applied to every entry.
func (m *Matrix) Apply(f func(uint32) uint32) *Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.Data[i] = f(v)
	}
	return out
}

// MatMul multiplies a (rows x k) by b (k x cols), modulo 2^32. The inner
// loop walks b column-major via a transposed copy so that both operands
// are scanned row-major, avoiding the cache-hostile column stride of a
// naive triple loop.
func MatMul(a, b *Matrix) *Matrix {
	if a.Cols != b.Rows {
		errs.InvalidShape("MatMul: %dx%d * %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	bT := b.Transpose()
	out := NewMatrix(a.Rows, b.Cols)
	for i := 0; i < a.Rows; i++ {
		arow := a.Data[i*a.Cols : (i+1)*a.Cols]
		for j := 0; j < b.Cols; j++ {
			bcol := bT.Data[j*bT.Cols : (j+1)*bT.Cols]
			var sum uint32
			for k := 0; k < a.Cols; k++ {
				sum += arow[k] * bcol[k]
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// MatMulVec multiplies matrix a (rows x cols) by column vector x (cols x
// 1), modulo 2^32 (spec: matmul_vec).
func MatMulVec(a, x *Matrix) *Matrix {
	if x.Cols != 1 {
		errs.InvalidShape("MatMulVec: x must be a column vector, got %dx%d", x.Rows, x.Cols)
	}
	if a.Cols != x.Rows {
		errs.InvalidShape("MatMulVec: %dx%d * %dx1", a.Rows, a.Cols, x.Rows)
	}
	out := NewMatrix(a.Rows, 1)
	for i := 0; i < a.Rows; i++ {
		row := a.Data[i*a.Cols : (i+1)*a.Cols]
		var sum uint32
		for k, v := range row {
			sum += v * x.Data[k]
		}
		out.Data[i] = sum
	}
	return out
}

// RandMatrix samples a rows x cols matrix with entries uniform in [0, mod).
// mod == 0 means "uniform over the full 32-bit range".
func RandMatrix(rows, cols int, mod uint64) (*Matrix, error) {
	out := NewMatrix(rows, cols)
	if mod == 0 || mod == 1<<32 {
		buf := make([]byte, 4*rows*cols)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		for i := range out.Data {
			out.Data[i] = binary.LittleEndian.Uint32(buf[4*i : 4*i+4])
		}
		return out, nil
	}
	for i := range out.Data {
		v, err := randUint64Below(mod)
		if err != nil {
			return nil, err
		}
		out.Data[i] = uint32(v)
	}
	return out, nil
}

// randUint64Below samples a cryptographically uniform value in [0, bound)
// via rejection sampling on the smallest power-of-two-aligned byte width
// covering bound.
func randUint64Below(bound uint64) (uint64, error) {
	if bound == 0 {
		errs.InvalidShape("randUint64Below: zero bound")
	}
	bits := 0
	for b := bound - 1; b != 0; b >>= 1 {
		bits++
	}
	nbytes := (bits + 7) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	mask := uint64(1)<<uint(bits) - 1
	buf := make([]byte, 8)
	for {
		if _, err := rand.Read(buf[:nbytes]); err != nil {
			return 0, err
		}
		var v uint64
		for i := 0; i < nbytes; i++ {
			v |= uint64(buf[i]) << (8 * uint(i))
		}
		v &= mask
		if v < bound {
			return v, nil
		}
	}
}

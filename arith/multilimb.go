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

// MultiLimbMatrix represents entries modulo q*kappa via a CRT-like split:
// QData holds each entry's residue family modulo q (a full uint32, wrapping
// naturally), KappaData holds the small auxiliary residue modulo kappa.
// Add, Sub and Mul operate on each limb independently, with no carry
// between limbs; the two limbs are combined (via CRT) only in
// DivScalarRoundCombined.
type MultiLimbMatrix struct {
	QData     *Matrix
	KappaData *Matrix
}

// NewMultiLimbMatrix allocates a zero-valued rows x cols multi-limb
// matrix.
func NewMultiLimbMatrix(rows, cols int) *MultiLimbMatrix {
	return &MultiLimbMatrix{QData: NewMatrix(rows, cols), KappaData: NewMatrix(rows, cols)}
}

func (m *MultiLimbMatrix) checkDims(other *MultiLimbMatrix) {
	if !m.QData.DimsMatch(other.QData) {
		errs.InvalidShape("MultiLimbMatrix: %dx%d vs %dx%d", m.QData.Rows, m.QData.Cols, other.QData.Rows, other.QData.Cols)
	}
}

// Rows returns the row count (shared by both limbs).
func (m *MultiLimbMatrix) Rows() int { return m.QData.Rows }

// Cols returns the column count (shared by both limbs).
func (m *MultiLimbMatrix) Cols() int { return m.QData.Cols }

// AddInPlace adds other into m limbwise: QData wraps mod 2^32, KappaData
// is reduced mod kappa.
func (m *MultiLimbMatrix) AddInPlace(other *MultiLimbMatrix, kappa uint32) {
	m.checkDims(other)
	m.QData.AddInPlace(other.QData)
	for i := range m.KappaData.Data {
		m.KappaData.Data[i] = (m.KappaData.Data[i] + other.KappaData.Data[i]) % kappa
	}
}

// MulScalarMultiLimb multiplies every limb of m by the (q, kappa) residues
// of scalar x.
func (m *MultiLimbMatrix) MulScalarMultiLimb(xQ uint32, xKappa uint32, kappa uint32) *MultiLimbMatrix {
	out := NewMultiLimbMatrix(m.Rows(), m.Cols())
	out.QData = m.QData.MulScalar(xQ)
	for i, v := range m.KappaData.Data {
		out.KappaData.Data[i] = (v * xKappa) % kappa
	}
	return out
}

// MatMulVecMultiLimb multiplies a single-limb matrix a by a multi-limb
// column vector x, producing a multi-limb result: the q-limb is computed
// by ordinary wraparound matmul, the kappa-limb by matmul reduced mod
// kappa.
func MatMulVecMultiLimb(a *Matrix, x *MultiLimbMatrix, kappa uint32) *MultiLimbMatrix {
	if x.Cols() != 1 {
		errs.InvalidShape("MatMulVecMultiLimb: x must be a column vector")
	}
	qOut := MatMulVec(a, x.QData)
	kOut := NewMatrix(a.Rows, 1)
	for i := 0; i < a.Rows; i++ {
		row := a.Data[i*a.Cols : (i+1)*a.Cols]
		var sum uint64
		for k, v := range row {
			sum += uint64(v) * uint64(x.KappaData.Data[k])
		}
		kOut.Data[i] = uint32(sum % uint64(kappa))
	}
	return &MultiLimbMatrix{QData: qOut, KappaData: kOut}
}

// MatMulVecMultiLimbBoth multiplies a multi-limb matrix a by a multi-limb
// column vector x, using each of a's own limbs for the matching output
// limb: the q-limb comes from a.QData*x.QData (ordinary wraparound
// matmul), the kappa-limb from a.KappaData*x.KappaData (matmul reduced
// mod kappa). Unlike MatMulVecMultiLimb, this does not stand in a single
// matrix for both limbs — use it when a (e.g. the public matrix A2 or the
// hint H2) was itself sampled as an independent (q, kappa) pair, so its
// kappa-limb must drive the kappa-limb output rather than a's q-limb
// reduced after the fact.
func MatMulVecMultiLimbBoth(a, x *MultiLimbMatrix, kappa uint32) *MultiLimbMatrix {
	if x.Cols() != 1 {
		errs.InvalidShape("MatMulVecMultiLimbBoth: x must be a column vector")
	}
	if a.Cols() != x.Rows() {
		errs.InvalidShape("MatMulVecMultiLimbBoth: %dx%d * %dx1", a.Rows(), a.Cols(), x.Rows())
	}
	qOut := MatMulVec(a.QData, x.QData)
	kOut := NewMatrix(a.Rows(), 1)
	for i := 0; i < a.Rows(); i++ {
		row := a.KappaData.Data[i*a.Cols() : (i+1)*a.Cols()]
		var sum uint64
		for k, v := range row {
			sum += uint64(v) * uint64(x.KappaData.Data[k])
		}
		kOut.Data[i] = uint32(sum % uint64(kappa))
	}
	return &MultiLimbMatrix{QData: qOut, KappaData: kOut}
}

// SubMultiLimb subtracts b from a limbwise (q wraps, kappa reduces mod
// kappa).
func SubMultiLimb(a, b *MultiLimbMatrix, kappa uint32) *MultiLimbMatrix {
	a.checkDims(b)
	out := &MultiLimbMatrix{QData: MatSub(a.QData, b.QData), KappaData: NewMatrix(a.Rows(), a.Cols())}
	for i := range out.KappaData.Data {
		out.KappaData.Data[i] = (a.KappaData.Data[i] + kappa - b.KappaData.Data[i]%kappa) % kappa
	}
	return out
}

// Col returns column i as a multi-limb column vector.
func (m *MultiLimbMatrix) Col(i int) *MultiLimbMatrix {
	return &MultiLimbMatrix{QData: m.QData.Col(i), KappaData: m.KappaData.Col(i)}
}

// ScaleMultiLimb scales a single-limb plaintext column by delta into both
// limbs of the combined modulus q*kappa: for each entry it computes the
// full integer product delta*pt[i] once and takes that same value's
// residue mod q (QData) and mod kappa (KappaData), so the two limbs stay
// CRT-consistent with each other (spec §4.2 encrypt: "Delta*pt").
func ScaleMultiLimb(pt *Matrix, delta uint64, kappa uint32) *MultiLimbMatrix {
	q := NewMatrix(pt.Rows, pt.Cols)
	k := NewMatrix(pt.Rows, pt.Cols)
	for i, v := range pt.Data {
		full := delta * uint64(v)
		q.Data[i] = uint32(full)
		k.Data[i] = uint32(full % uint64(kappa))
	}
	return &MultiLimbMatrix{QData: q, KappaData: k}
}

// crtRecombine reconstructs the unique integer v in [0, q*kappa), with
// q = 2^32, satisfying v ≡ vq (mod q) and v ≡ vk (mod kappa), via the
// standard two-modulus CRT formula. kappa must be odd (coprime with
// q = 2^32); package params enforces this when it derives kappa.
func crtRecombine(vq uint32, vk uint32, kappa uint32) uint64 {
	const q = uint64(1) << 32
	qModKappa := int64(q % uint64(kappa))
	inv := modInverse(qModKappa, int64(kappa))
	diff := (int64(vk) - int64(uint64(vq)%uint64(kappa))) % int64(kappa)
	if diff < 0 {
		diff += int64(kappa)
	}
	t := (diff * inv) % int64(kappa)
	return uint64(vq) + q*uint64(t)
}

// modInverse returns the inverse of a modulo m via the extended Euclidean
// algorithm. Panics (InvalidShape) if a and m are not coprime.
func modInverse(a, m int64) int64 {
	g, x, _ := extendedGCD(a%m, m)
	if g != 1 && g != -1 {
		errs.InvalidShape("modInverse: %d has no inverse mod %d", a, m)
	}
	return ((x % m) + m) % m
}

// extendedGCD returns g = gcd(a, b) and Bezout coefficients x, y such that
// a*x + b*y = g.
func extendedGCD(a, b int64) (g, x, y int64) {
	if a == 0 {
		return b, 0, 1
	}
	g, x1, y1 := extendedGCD(b%a, a)
	return g, y1 - (b/a)*x1, x1
}

// DivScalarRoundCombined recombines the two limbs into the single integer
// they jointly represent modulo q*kappa (via CRT, since QData and
// KappaData are genuinely independent residues of that one value rather
// than a copy-and-ignore pair — spec §3 MultiLimbMatrix, §9 "represent
// Z_{q*kappa} explicitly as a pair"), then divides by delta and rounds to
// the nearest integer, the multi-limb analogue of Matrix.DivScalarRound.
// It does not reduce the result modulo the message space: the caller
// clamps the one legitimate wraparound case (a result exactly equal to
// the message modulus) to zero, per spec §7.
func (m *MultiLimbMatrix) DivScalarRoundCombined(delta uint64, kappa uint32) *Matrix {
	out := NewMatrix(m.Rows(), m.Cols())
	half := delta / 2
	for i := range out.Data {
		v := crtRecombine(m.QData.Data[i], m.KappaData.Data[i], kappa)
		out.Data[i] = uint32((v + half) / delta)
	}
	return out
}

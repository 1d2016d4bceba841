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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatMulVecMultiLimbMatchesPerLimb(t *testing.T) {
	const kappa = 17
	a, err := RandMatrix(4, 3, 0)
	require.NoError(t, err)

	x := NewMultiLimbMatrix(3, 1)
	qv, err := RandMatrix(3, 1, 0)
	require.NoError(t, err)
	kv, err := RandMatrix(3, 1, kappa)
	require.NoError(t, err)
	x.QData = qv
	x.KappaData = kv

	got := MatMulVecMultiLimb(a, x, kappa)
	wantQ := MatMulVec(a, x.QData)
	assert.Equal(t, wantQ.Data, got.QData.Data)
	for _, v := range got.KappaData.Data {
		assert.Less(t, v, uint32(kappa))
	}
}

func TestSubMultiLimbInverseOfAdd(t *testing.T) {
	const kappa = 11
	a := NewMultiLimbMatrix(3, 3)
	b := NewMultiLimbMatrix(3, 3)
	for i := range a.QData.Data {
		a.QData.Data[i] = uint32(i + 1)
		a.KappaData.Data[i] = uint32(i+1) % kappa
		b.QData.Data[i] = uint32(2 * i)
		b.KappaData.Data[i] = uint32(2*i) % kappa
	}

	sum := &MultiLimbMatrix{QData: a.QData.Copy(), KappaData: a.KappaData.Copy()}
	sum.AddInPlace(b, kappa)
	back := SubMultiLimb(sum, b, kappa)
	assert.Equal(t, a.QData.Data, back.QData.Data)
	assert.Equal(t, a.KappaData.Data, back.KappaData.Data)
}

func TestColMultiLimb(t *testing.T) {
	m := NewMultiLimbMatrix(3, 4)
	for i := range m.QData.Data {
		m.QData.Data[i] = uint32(i)
	}
	col := m.Col(2)
	assert.Equal(t, 3, col.Rows())
	assert.Equal(t, 1, col.Cols())
}

func TestDivScalarRoundCombinedRoundTrip(t *testing.T) {
	const kappa = 17
	const pPrime = 64
	const qPrime = (uint64(1) << 32) * uint64(kappa)
	const delta = qPrime / pPrime

	m := NewMultiLimbMatrix(1, 3)
	for i, pt := range []uint32{0, 5, 63} {
		full := delta * uint64(pt)
		m.QData.Data[i] = uint32(full)
		m.KappaData.Data[i] = uint32(full % kappa)
	}
	got := m.DivScalarRoundCombined(delta, kappa)
	assert.Equal(t, []uint32{0, 5, 63}, got.Data)
}

func TestCrtRecombineInverseOfSplit(t *testing.T) {
	const kappa = 17
	const q = uint64(1) << 32
	for _, v := range []uint64{0, 1, q - 1, q, q + 5, 3 * q, (q * kappa) - 1} {
		vq := uint32(v)
		vk := uint32(v % kappa)
		got := crtRecombine(vq, vk, kappa)
		assert.Equal(t, v, got)
	}
}

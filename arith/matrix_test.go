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

func TestMatMulVecShape(t *testing.T) {
	a, err := RandMatrix(4, 3, 0)
	require.NoError(t, err)
	x, err := RandMatrix(3, 1, 0)
	require.NoError(t, err)
	got := MatMulVec(a, x)
	assert.Equal(t, 4, got.Rows)
	assert.Equal(t, 1, got.Cols)
}

func TestMatMulMatchesMatMulVecColumnwise(t *testing.T) {
	a, err := RandMatrix(3, 2, 0)
	require.NoError(t, err)
	b, err := RandMatrix(2, 2, 0)
	require.NoError(t, err)

	full := MatMul(a, b)
	for j := 0; j < b.Cols; j++ {
		col := MatMulVec(a, b.Col(j))
		assert.Equal(t, full.Col(j).Data, col.Data)
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	a, err := RandMatrix(5, 5, 0)
	require.NoError(t, err)
	b, err := RandMatrix(5, 5, 0)
	require.NoError(t, err)

	sum := a.Copy()
	sum.AddInPlace(b)
	back := MatSub(sum, b)
	assert.Equal(t, a.Data, back.Data)
}

func TestDivScalarRoundNearest(t *testing.T) {
	m := NewMatrix(1, 4)
	m.Data = []uint32{0, 4, 5, 9}
	got := m.DivScalarRound(10, 0)
	assert.Equal(t, []uint32{0, 0, 1, 1}, got.Data)
}

func TestTransposeInvolution(t *testing.T) {
	a, err := RandMatrix(3, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, a.Data, a.Transpose().Transpose().Data)
}

func TestInvalidShapePanics(t *testing.T) {
	assert.Panics(t, func() {
		a := NewMatrix(2, 3)
		b := NewMatrix(4, 3)
		MatMul(a, b)
	})
}

func TestRandMatrixRespectsModulus(t *testing.T) {
	const mod = 16
	m, err := RandMatrix(10, 10, mod)
	require.NoError(t, err)
	for _, v := range m.Data {
		assert.Less(t, v, uint32(mod))
	}
}

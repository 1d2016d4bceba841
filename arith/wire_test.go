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

func TestMatrixWireRoundTrip(t *testing.T) {
	m, err := RandMatrix(4, 6, 0)
	require.NoError(t, err)

	buf, err := m.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, buf, MatrixWireSize(4, 6))

	back, err := UnmarshalMatrix(buf)
	require.NoError(t, err)
	assert.Equal(t, m.Rows, back.Rows)
	assert.Equal(t, m.Cols, back.Cols)
	assert.Equal(t, m.Data, back.Data)
}

func TestUnmarshalMatrixRejectsTruncatedBuffer(t *testing.T) {
	m, err := RandMatrix(3, 3, 0)
	require.NoError(t, err)
	buf, err := m.MarshalBinary()
	require.NoError(t, err)

	_, err = UnmarshalMatrix(buf[:len(buf)-1])
	assert.Error(t, err)

	_, err = UnmarshalMatrix(buf[:10])
	assert.Error(t, err)
}

func TestMultiLimbMatrixWireRoundTrip(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)
	m := ExpandMultiLimb(seed, 5, 4, 251)

	buf, err := m.MarshalBinary()
	require.NoError(t, err)

	back, err := UnmarshalMultiLimbMatrix(buf)
	require.NoError(t, err)
	assert.Equal(t, m.QData.Data, back.QData.Data)
	assert.Equal(t, m.KappaData.Data, back.KappaData.Data)
}

func TestBinaryMatrixWireRoundTrip(t *testing.T) {
	b, err := RandBinaryMatrix(7, 19)
	require.NoError(t, err)

	buf, err := b.MarshalBinary()
	require.NoError(t, err)

	back, err := UnmarshalBinaryMatrix(buf)
	require.NoError(t, err)
	assert.Equal(t, b.Rows, back.Rows)
	assert.Equal(t, b.Cols, back.Cols)
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			assert.Equal(t, b.Get(r, c), back.Get(r, c))
		}
	}
}

func TestUnmarshalBinaryMatrixRejectsTruncatedBody(t *testing.T) {
	b, err := RandBinaryMatrix(4, 20)
	require.NoError(t, err)
	buf, err := b.MarshalBinary()
	require.NoError(t, err)

	_, err = UnmarshalBinaryMatrix(buf[:len(buf)-1])
	assert.Error(t, err)
}

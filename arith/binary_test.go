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

func TestBinaryMatrixSetGet(t *testing.T) {
	b := NewBinaryMatrix(3, 13)
	b.Set(0, 0, 1)
	b.Set(1, 7, 1)
	b.Set(2, 12, 1)

	assert.Equal(t, uint32(1), b.Get(0, 0))
	assert.Equal(t, uint32(1), b.Get(1, 7))
	assert.Equal(t, uint32(1), b.Get(2, 12))
	assert.Equal(t, uint32(0), b.Get(0, 1))
	assert.Equal(t, uint32(0), b.Get(2, 11))
}

func TestRandBinaryMatrixPaddingBitsCleared(t *testing.T) {
	b, err := RandBinaryMatrix(4, 13)
	require.NoError(t, err)
	// The last byte of each row must only have its valid low bits set.
	validBits := 13 % 8
	mask := byte(1<<uint(validBits)) - 1
	rb := rowBytes(13)
	for r := 0; r < 4; r++ {
		last := b.data[r*rb+rb-1]
		assert.Equal(t, byte(0), last&^mask, "padding bits must be zero")
	}
}

func TestRowAndToMatrixAgree(t *testing.T) {
	b := NewBinaryMatrix(2, 5)
	b.Set(1, 0, 1)
	b.Set(1, 2, 1)
	b.Set(1, 4, 1)

	row := b.Row(1)
	assert.Equal(t, []uint32{1, 0, 1, 0, 1}, row.Data)

	full := b.ToMatrix()
	for c := 0; c < 5; c++ {
		assert.Equal(t, b.Get(1, c), full.At(1, c))
	}
}

func TestBinaryMatrixCheckDims(t *testing.T) {
	b := NewBinaryMatrix(4, 9)
	assert.True(t, b.CheckDims(4, 9))
	assert.False(t, b.CheckDims(9, 4))
}

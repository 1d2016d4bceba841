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
)

func TestGaussianSampleWithinBound(t *testing.T) {
	g := NewGaussianSampler(6.4, 64)
	for i := 0; i < 500; i++ {
		v := g.Sample()
		signed := int64(v)
		if signed > 1<<31 {
			signed -= 1 << 32
		}
		assert.LessOrEqual(t, signed, int64(g.Bound))
		assert.GreaterOrEqual(t, signed, -int64(g.Bound))
	}
}

func TestGaussianSampleMatrixShape(t *testing.T) {
	g := NewGaussianSampler(3.2, 32)
	m := g.SampleMatrix(5, 9)
	assert.Equal(t, 5, m.Rows)
	assert.Equal(t, 9, m.Cols)
	assert.Len(t, m.Data, 45)
}

func TestGaussianSampleNotAllZero(t *testing.T) {
	g := NewGaussianSampler(6.4, 64)
	nonzero := false
	for i := 0; i < 50; i++ {
		if g.Sample() != 0 {
			nonzero = true
			break
		}
	}
	assert.True(t, nonzero, "a wide-enough Gaussian should not sample all zeros")
}

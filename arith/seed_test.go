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

// Scenario S6 (spec §8): same seed expanded twice produces byte-identical
// matrices, independent of process.
func TestExpandDeterministic(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)

	a := Expand(seed, 12, 7)
	b := Expand(seed, 12, 7)
	assert.Equal(t, a.Data, b.Data)
}

func TestExpandDiffersAcrossSeeds(t *testing.T) {
	s1, err := NewSeed()
	require.NoError(t, err)
	s2, err := NewSeed()
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)

	a := Expand(s1, 8, 8)
	b := Expand(s2, 8, 8)
	assert.NotEqual(t, a.Data, b.Data)
}

func TestExpandMultiLimbLimbsAreIndependent(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)

	m := ExpandMultiLimb(seed, 6, 6, 251)
	assert.NotEqual(t, m.QData.Data, m.KappaData.Data)
	for _, v := range m.KappaData.Data {
		assert.Less(t, v, uint32(251))
	}
}

func TestNewSeedIsRandom(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

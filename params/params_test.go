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

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario S5 (spec §8): params for (N=2^34, d=8, preproc=true) must
// satisfy ell*m*floor(log2 p) >= N*d, m >= n, and no overflow in kappa*q.
func TestComputeScenarioS5(t *testing.T) {
	dp, err := Compute(1<<34, 8, Options{AllowTrivial: true, Preproc: true})
	require.NoError(t, err)

	bitsPerCoeff := log2Floor(dp.P)
	capacity := int64(dp.Ell) * int64(dp.M) * int64(bitsPerCoeff)
	assert.GreaterOrEqual(t, capacity, int64(1<<34)*8)
	assert.GreaterOrEqual(t, dp.M, dp.N)
	assert.Greater(t, dp.Kappa, uint32(1))

	pPrime := uint64(dp.P) * uint64(dp.Kappa)
	assert.LessOrEqual(t, pPrime, uint64(1)<<32, "p*kappa must not overflow the preproc message space")
}

func TestComputeRejectsNonTrivialWhenHintTooBig(t *testing.T) {
	_, err := Compute(8, 1, Options{AllowTrivial: false})
	assert.Error(t, err)
}

func TestComputeSmallDatabaseFeasible(t *testing.T) {
	dp, err := Compute(1<<16, 8, Options{AllowTrivial: true})
	require.NoError(t, err)
	assert.Positive(t, dp.Ell)
	assert.Positive(t, dp.M)
}

func TestSizesMonotonicInN(t *testing.T) {
	small, err := Compute(1<<16, 8, Options{AllowTrivial: true})
	require.NoError(t, err)
	large, err := Compute(1<<24, 8, Options{AllowTrivial: true})
	require.NoError(t, err)

	assert.Less(t, small.Sizes().HintBits, large.Sizes().HintBits+1)
}

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
	"crypto/rand"
	"encoding/binary"
	"math"
)

// GaussianSampler draws discrete Gaussian noise centered on 0 with
// standard deviation Sigma, rejecting (and resampling from scratch, never
// clamping) any draw whose absolute value exceeds Bound. The per-trial
// work does not branch on the sampled magnitude until the final
// accept/reject test, so no single trial leaks how close to the bound it
// landed (spec §4.1 "error", §9 "Timing").
type GaussianSampler struct {
	Sigma float64
	Bound uint64
}

// NewGaussianSampler returns a sampler for the given standard deviation
// and rejection bound.
func NewGaussianSampler(sigma float64, bound uint64) *GaussianSampler {
	return &GaussianSampler{Sigma: sigma, Bound: bound}
}

// Sample draws one error term, reduced into [0, 2^32) so it can be added
// directly to a ciphertext matrix with ordinary wraparound.
func (g *GaussianSampler) Sample() uint32 {
	for {
		mag, sign, ok := g.trial()
		if !ok {
			continue
		}
		// Fold the signed value into an unsigned residue without a
		// branch on sign: sign == 1 selects mag, sign == 0 selects
		// 2^32 - mag, via a bitmask rather than an if. This mirrors the
		// encoding used by lattice libraries that add signed Gaussian
		// noise to an unsigned ring element (e.g. tuneinsight/lattigo's
		// ring.GaussianSampler), for the same reason: the accept/reject
		// test above is the only branch that depends on magnitude.
		signMask := uint32(0) - uint32(sign)
		return (mag & signMask) | ((-mag) & ^signMask)
	}
}

// trial draws one candidate magnitude and sign via Box-Muller from two
// uniform(0,1) draws, and reports whether it falls within Bound. The
// float64 work is performed unconditionally so that only the final
// comparison depends on the magnitude.
func (g *GaussianSampler) trial() (mag uint32, sign uint32, ok bool) {
	u1, u2 := g.twoUniforms()
	// Avoid log(0).
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	val := z * g.Sigma
	rounded := math.Round(val)
	abs := math.Abs(rounded)

	s := uint32(1)
	if rounded < 0 {
		s = 0
	}
	m := uint32(abs)
	within := abs <= float64(g.Bound)
	return m, s, within
}

// twoUniforms draws two independent uniform(0,1) floats from
// crypto/rand, each built from 53 bits of entropy (the full float64
// mantissa).
func (g *GaussianSampler) twoUniforms() (float64, float64) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	const mantissaBits = 53
	r1 := binary.LittleEndian.Uint64(buf[0:8]) >> (64 - mantissaBits)
	r2 := binary.LittleEndian.Uint64(buf[8:16]) >> (64 - mantissaBits)
	denom := float64(uint64(1) << mantissaBits)
	return float64(r1) / denom, float64(r2) / denom
}

// SampleMatrix fills a rows x cols matrix with independent error samples
// (spec: error(shape, sigma) -> Matrix).
func (g *GaussianSampler) SampleMatrix(rows, cols int) *Matrix {
	out := NewMatrix(rows, cols)
	for i := range out.Data {
		out.Data[i] = g.Sample()
	}
	return out
}

// SampleMultiLimb draws one error term per cell and folds it into both
// limbs of a multi-limb matrix consistently: the same signed magnitude is
// reduced into the q residue and the kappa residue, so the two limbs
// remain a genuine CRT pair rather than independently-rounded values.
// Mirrors Sample's no-branch-on-magnitude fold for both limbs at once.
func (g *GaussianSampler) SampleMultiLimb(rows, cols int, kappa uint32) *MultiLimbMatrix {
	qOut := NewMatrix(rows, cols)
	kOut := NewMatrix(rows, cols)
	for i := range qOut.Data {
		for {
			mag, sign, ok := g.trial()
			if !ok {
				continue
			}
			signMask := uint32(0) - sign
			qOut.Data[i] = (mag & signMask) | ((-mag) & ^signMask)
			kMag := mag % kappa
			kNeg := (kappa - kMag) % kappa
			kOut.Data[i] = (kMag & signMask) | (kNeg & ^signMask)
			break
		}
	}
	return &MultiLimbMatrix{QData: qOut, KappaData: kOut}
}

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

// Sizes bundles the bit-counts a caller needs to reason about
// feasibility before committing to a parameter set, supplementing the
// distilled spec with the size-accounting the original benchmark script
// computes from (ell, m, p, kappa, n, logq).
type Sizes struct {
	HintBits            int64
	OfflineUploadBits   int64
	OfflineDownloadBits int64
	OnlineUploadBits    int64
	OnlineDownloadBits  int64
}

// Sizes computes the hint and per-protocol-phase message sizes implied by
// dp, in bits.
func (dp *DBParams) Sizes() Sizes {
	logQ := int64(dp.LogQ)
	ellI, mI, nI := int64(dp.Ell), int64(dp.M), int64(dp.N)

	hintBits := ellI * nI * logQ

	offlineUpload := int64(StatSecParam) * mI * logQ
	if dp.Kappa > 0 {
		// Preproc ciphertexts are multi-limb: one q-sized limb plus one
		// kappa-sized limb per entry.
		offlineUpload = int64(StatSecParam) * mI * (logQ + log2Ceil(dp.Kappa))
	}
	offlineDownload := int64(StatSecParam) * ellI * logQ
	if dp.Kappa > 0 {
		offlineDownload = int64(StatSecParam) * ellI * (logQ + log2Ceil(dp.Kappa))
	}

	onlineUpload := mI * logQ
	onlineDownload := ellI * logQ

	return Sizes{
		HintBits:            hintBits,
		OfflineUploadBits:   offlineUpload,
		OfflineDownloadBits: offlineDownload,
		OnlineUploadBits:    onlineUpload,
		OnlineDownloadBits:  onlineDownload,
	}
}

func log2Ceil(v uint32) int64 {
	n := int64(0)
	for x := uint64(1); x < uint64(v); x <<= 1 {
		n++
	}
	return n
}

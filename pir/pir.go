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

// Package pir is the external interface of VeriSimplePIR (spec.md §6): a
// constructor and the exact method set a client and server drive a
// preprocessing-then-online verifiable PIR session through. It is glue
// over arith, lhe, db, params, preprocpir and onlinepir.
package pir

import (
	"log"

	"github.com/pkg/errors"
	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/db"
	"github.com/xlab-si/verisimplepir/internal/errs"
	"github.com/xlab-si/verisimplepir/lhe"
	"github.com/xlab-si/verisimplepir/onlinepir"
	"github.com/xlab-si/verisimplepir/params"
	"github.com/xlab-si/verisimplepir/preprocpir"
)

// PIR holds everything a client or server needs across one database
// version: the derived parameters, both LHE instances, and the
// accumulated offline state (sks, Z) once preprocessing completes.
type PIR struct {
	dbParams params.DBParams

	allowTrivial bool
	verbose      bool
	simplePIR    bool
	preproc      bool
	honestHint   bool

	online  *lhe.Params
	offline *lhe.PreprocParams

	seed arith.Seed

	// accumulated preprocessing state
	preSks []*arith.Matrix
	z      *arith.Matrix
}

// errorBoundMultiplier scales sigma into the fixed LWE error envelope
// width used by every
// soundness/consistency check; it follows directly from the Gaussian
// parameter sigma chosen by package params (spec §9 "Timing": the
// envelope itself, unlike per-sample magnitude, is public and fixed).
const errorBoundMultiplier = 8

// New constructs a PIR session for a database of N records of d bits
// each, matching the constructor surface in spec.md §6 exactly.
// random_data and batch_size are reserved (spec §9 Open Questions): any
// non-default value is rejected with ErrReservedParameter.
func New(n int64, d int, allowTrivial, verbose, simplePIR, randomData bool, batchSize int, preproc, honestHint bool) (*PIR, error) {
	if randomData {
		return nil, errors.Wrap(errs.ErrReservedParameter, "random_data must be false")
	}
	if batchSize != 1 {
		return nil, errors.Wrap(errs.ErrReservedParameter, "batch_size must be 1")
	}

	dp, err := params.Compute(n, d, params.Options{
		AllowTrivial: allowTrivial,
		Preproc:      preproc,
		SimplePIR:    simplePIR,
		HonestHint:   honestHint,
	})
	if err != nil {
		return nil, err
	}

	seed, err := arith.NewSeed()
	if err != nil {
		return nil, err
	}

	errBound := uint64(dp.Sigma * errorBoundMultiplier)
	online := lhe.NewParams(dp.N, dp.M, dp.P, dp.Sigma, errBound)

	p := &PIR{
		dbParams:     *dp,
		allowTrivial: allowTrivial,
		verbose:      verbose,
		simplePIR:    simplePIR,
		preproc:      preproc,
		honestHint:   honestHint,
		online:       online,
		seed:         seed,
	}
	if preproc {
		p.offline = lhe.NewPreprocParams(dp.N, dp.M, dp.P, dp.Kappa, dp.Sigma, errBound)
	}
	if verbose {
		log.Printf("pir: N=%d d=%d ell=%d m=%d p=%d n=%d kappa=%d", n, d, dp.Ell, dp.M, dp.P, dp.N, dp.Kappa)
	}
	return p, nil
}

// DBParams returns the derived parameters for this session.
func (p *PIR) DBParams() params.DBParams { return p.dbParams }

// Init deterministically derives the online public matrix A1 from the
// session seed (spec §6 PIR.Init).
func (p *PIR) Init() *arith.Matrix {
	return p.online.GenPublicA(p.seed)
}

// PreprocInit deterministically derives the preproc public matrix A2
// from the session seed (spec §6 PIR.PreprocInit). Panics if preproc was
// not requested at construction.
func (p *PIR) PreprocInit() *arith.MultiLimbMatrix {
	p.requirePreproc()
	return preprocpir.Init(p.offline, p.seed)
}

func (p *PIR) requirePreproc() {
	if !p.preproc {
		errs.InvalidShape("pir: preprocessing was not enabled for this session")
	}
}

// GenerateHint computes H1 = D * A1 mod q, the server-side online hint
// (spec §6 PIR.GenerateHint). dPacked is the server's packed database.
func (p *PIR) GenerateHint(a1 *arith.Matrix, dPacked *arith.PackedMatrix) *arith.Matrix {
	dUnpacked := dPacked.Unpacked()
	return arith.MatMul(dUnpacked, a1)
}

// PreprocGenerateHint computes H2 = D * A2 mod q*kappa, the server-side
// preproc hint (spec §6 PIR.PreprocGenerateHint). dT is the transposed
// unpacked database (m x ell).
func (p *PIR) PreprocGenerateHint(a2 *arith.MultiLimbMatrix, dT *arith.Matrix) *arith.MultiLimbMatrix {
	p.requirePreproc()
	return preprocpir.GenerateHint(p.offline, a2, dT)
}

// PreprocSampleC draws the client's fresh binary challenge matrix (spec
// §6 PIR.PreprocSampleC).
func (p *PIR) PreprocSampleC() (*arith.BinaryMatrix, error) {
	p.requirePreproc()
	return preprocpir.SampleC(p.dbParams.M)
}

// PreprocClientMessage encrypts each row of C under A2, retaining the
// secret keys on p for later use by PreprocVerify/PreprocRecoverZ (spec
// §6 PIR.PreprocClientMessage).
func (p *PIR) PreprocClientMessage(a2 *arith.MultiLimbMatrix, c *arith.BinaryMatrix) ([]*arith.MultiLimbMatrix, error) {
	p.requirePreproc()
	cts, sks, err := preprocpir.ClientMessage(p.offline, a2, c)
	if err != nil {
		return nil, err
	}
	p.preSks = sks
	return cts, nil
}

// PreprocAnswer computes D * cts_j for every client ciphertext (spec §6
// PIR.PreprocAnswer). dT is the transposed unpacked database.
func (p *PIR) PreprocAnswer(cts []*arith.MultiLimbMatrix, dT *arith.Matrix) []*arith.MultiLimbMatrix {
	p.requirePreproc()
	return preprocpir.Answer(dT, cts, p.dbParams.Kappa)
}

// PreprocProve computes preproc_Z = D * C^T mod p, the plaintext proof
// the server commits to (spec §6 PIR.PreprocProve). hash is accepted to
// match the external signature exactly (spec §6); the transcript digest
// is otherwise only consumed implicitly by both parties having derived it
// identically via TranscriptHash over the wire encodings of (A2, H2).
func (p *PIR) PreprocProve(hash [32]byte, c *arith.BinaryMatrix, dT *arith.Matrix) *arith.Matrix {
	p.requirePreproc()
	_ = hash
	return preprocpir.Prove(dT, c, p.dbParams.P)
}

// PreprocVerify checks every server answer against the committed
// preproc_Z within the LWE error envelope (spec §6 PIR.PreprocVerify).
// The client's per-row secret keys are taken from the state left by
// PreprocClientMessage, not re-passed by the caller, narrowing spec §6's
// free-function signature to a stateful method (see DESIGN.md).
func (p *PIR) PreprocVerify(h2 *arith.MultiLimbMatrix, hash [32]byte, ansts []*arith.MultiLimbMatrix, preprocZ *arith.Matrix) bool {
	p.requirePreproc()
	_ = hash
	errBound := uint64(p.dbParams.Sigma * errorBoundMultiplier)
	return preprocpir.Verify(p.offline, h2, p.preSks, ansts, preprocZ, p.dbParams.Kappa, errBound)
}

// PreprocRecoverZ decrypts every preproc answer and stacks the results
// into Z : ell x STAT_SEC_PARAM (spec §6 PIR.PreprocRecoverZ).
func (p *PIR) PreprocRecoverZ(h2 *arith.MultiLimbMatrix, ansts []*arith.MultiLimbMatrix) *arith.Matrix {
	p.requirePreproc()
	z := preprocpir.RecoverZ(p.offline, h2, p.preSks, ansts, p.dbParams.P)
	p.z = z
	return z
}

// VerifyPreprocZ performs the final offline soundness check: Z must be
// consistent with the online hint H1 and challenge C (spec §6
// PIR.VerifyPreprocZ, spec §4.4 step 5). h1 is always the value this
// check compares against; HonestHint only changes how the caller obtains
// it before invoking this method — the default (soundness) caller treats
// the server-sent H1 as untrusted input and never recomputes it (the
// client never holds D to do so, spec §5); an HonestHint caller with
// access to D may call GenerateHint itself and pass its own recomputed
// h1 through for microbenchmarking (spec §4.4: "the client trusts that
// the served H matches D ... used for microbenchmarks only"). Either way
// VerifyPreprocZ itself always performs the full Regev-invariant check
// below; it never skips it.
func (p *PIR) VerifyPreprocZ(z, a1 *arith.Matrix, c *arith.BinaryMatrix, h1 *arith.Matrix) bool {
	p.requirePreproc()
	deltaOnline := p.online.Delta
	errBound := uint64(p.dbParams.Sigma * errorBoundMultiplier)
	return preprocpir.VerifyAgainstOnlineHint(a1, z, c, h1, deltaOnline, errBound)
}

// GetSk draws a fresh online secret key (spec §6 PIR.GetSk).
func (p *PIR) GetSk() (*arith.Matrix, error) {
	return p.online.SampleSK()
}

// QueryGivenAs encrypts the one-hot vector for index, given a
// precomputed As = A1*sk (spec §6 PIR.QueryGivenAs).
func (p *PIR) QueryGivenAs(as *arith.Matrix, index int64) *arith.Matrix {
	_, col := db.RowForIndex(int(index), p.dbParams.RecordD, p.dbParams.Ell, 1, log2FloorLocal(p.dbParams.P))
	return onlinepir.QueryGivenAs(p.online, as, col)
}

// Answer computes ans = D * ct mod q (spec §6 PIR.Answer). dPacked is the
// server's packed database.
func (p *PIR) Answer(ct *arith.Matrix, dPacked *arith.PackedMatrix) *arith.Matrix {
	dUnpacked := dPacked.Unpacked()
	return onlinepir.Answer(dUnpacked, ct)
}

// PreVerify checks the server's ans against ct and the recovered proof Z
// (spec §6 PIR.PreVerify).
func (p *PIR) PreVerify(ct, ans *arith.Matrix, z *arith.Matrix, c *arith.BinaryMatrix) bool {
	errBound := uint64(p.dbParams.Sigma * errorBoundMultiplier)
	return onlinepir.PreVerify(z, c, ct, ans, p.online.Delta, errBound)
}

// RecoverGivenHs decrypts ans and returns the decrypted coefficient in the
// row holding the start of record index (spec §6 PIR.RecoverGivenHs). The
// whole coefficient is returned; the record's own d bits are not
// extracted from it.
func (p *PIR) RecoverGivenHs(hs, ans *arith.Matrix, index int64) uint32 {
	row, _ := db.RowForIndex(int(index), p.dbParams.RecordD, p.dbParams.Ell, 1, log2FloorLocal(p.dbParams.P))
	return onlinepir.RecoverGivenHs(p.online, hs, ans, row)
}

func log2FloorLocal(p uint32) int {
	n := 0
	for v := p; v > 1; v >>= 1 {
		n++
	}
	return n
}

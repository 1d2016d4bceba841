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

// Command verisimplepir-demo runs one end-to-end query against a
// synthetic in-memory database, printing the decrypted coefficient that
// holds the requested record (the record's own bits are not extracted
// from it). It exists
// only so the module has a runnable entry point; the CLI itself is out of
// scope for the core library (spec.md §1).
package main

import (
	"flag"
	"log"

	"github.com/xlab-si/verisimplepir/arith"
	"github.com/xlab-si/verisimplepir/db"
	"github.com/xlab-si/verisimplepir/pir"
)

func main() {
	logN := flag.Int("logn", 16, "log2 of the number of records")
	d := flag.Int("d", 8, "bits per record")
	index := flag.Int64("index", 0, "record index to query")
	flag.Parse()

	n := int64(1) << uint(*logN)

	p, err := pir.New(n, *d, true, true, false, false, 1, false, false)
	if err != nil {
		log.Fatalf("pir.New: %v", err)
	}

	dp := p.DBParams()
	bitsPerCoeff := 0
	for v := dp.P; v > 1; v >>= 1 {
		bitsPerCoeff++
	}
	raw := make([]byte, (dp.Ell*dp.M*bitsPerCoeff)/8)
	for i := range raw {
		raw[i] = byte(i)
	}
	packed := db.Pack(raw, dp.Ell, dp.M, dp.P)

	a1 := p.Init()
	sk, err := p.GetSk()
	if err != nil {
		log.Fatalf("GetSk: %v", err)
	}
	as := arith.MatMulVec(a1, sk)

	ct := p.QueryGivenAs(as, *index)
	ans := p.Answer(ct, packed)

	h1 := p.GenerateHint(a1, packed)
	hs := arith.MatMulVec(h1, sk)

	got := p.RecoverGivenHs(hs, ans, *index)
	log.Printf("record %d = %d (ell=%d m=%d p=%d n=%d)", *index, got, dp.Ell, dp.M, dp.P, dp.N)
}

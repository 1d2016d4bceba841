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
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Wire layout (spec §6):
//   Matrix          := rows(8 LE) || cols(8 LE) || entry(4 LE)*rows*cols
//   MultiLimbMatrix := Matrix(QData) || Matrix(KappaData)
//   BinaryMatrix    := rows(8 LE) || cols(8 LE) || rowBytes(cols)*rows packed bytes

// MarshalBinary encodes m per the Matrix wire format.
func (m *Matrix) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16+4*len(m.Data))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.Rows))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.Cols))
	for i, v := range m.Data {
		binary.LittleEndian.PutUint32(buf[16+4*i:20+4*i], v)
	}
	return buf, nil
}

// UnmarshalMatrix decodes a Matrix encoded by MarshalBinary.
func UnmarshalMatrix(buf []byte) (*Matrix, error) {
	if len(buf) < 16 {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "matrix: truncated header")
	}
	rows := int(binary.LittleEndian.Uint64(buf[0:8]))
	cols := int(binary.LittleEndian.Uint64(buf[8:16]))
	if rows < 0 || cols < 0 {
		return nil, errors.New("matrix: negative dimension in wire header")
	}
	want := 16 + 4*rows*cols
	if len(buf) < want {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "matrix: want %d bytes, have %d", want, len(buf))
	}
	out := NewMatrix(rows, cols)
	for i := 0; i < rows*cols; i++ {
		out.Data[i] = binary.LittleEndian.Uint32(buf[16+4*i : 20+4*i])
	}
	return out, nil
}

// MatrixWireSize returns the exact number of bytes MarshalBinary produces
// for a rows x cols matrix, without allocating.
func MatrixWireSize(rows, cols int) int { return 16 + 4*rows*cols }

// MarshalBinary encodes m as the back-to-back concatenation of its two
// limbs' Matrix encodings.
func (m *MultiLimbMatrix) MarshalBinary() ([]byte, error) {
	qBuf, err := m.QData.MarshalBinary()
	if err != nil {
		return nil, err
	}
	kBuf, err := m.KappaData.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(qBuf, kBuf...), nil
}

// UnmarshalMultiLimbMatrix decodes a MultiLimbMatrix encoded by
// MarshalBinary.
func UnmarshalMultiLimbMatrix(buf []byte) (*MultiLimbMatrix, error) {
	q, err := UnmarshalMatrix(buf)
	if err != nil {
		return nil, errors.Wrap(err, "multilimb: q-limb")
	}
	qSize := MatrixWireSize(q.Rows, q.Cols)
	if len(buf) < qSize {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "multilimb: truncated before kappa-limb")
	}
	k, err := UnmarshalMatrix(buf[qSize:])
	if err != nil {
		return nil, errors.Wrap(err, "multilimb: kappa-limb")
	}
	return &MultiLimbMatrix{QData: q, KappaData: k}, nil
}

// MarshalBinary encodes b as a header followed by its bit-packed body.
func (b *BinaryMatrix) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16+len(b.data))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(b.Rows))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(b.Cols))
	copy(buf[16:], b.data)
	return buf, nil
}

// UnmarshalBinaryMatrix decodes a BinaryMatrix encoded by MarshalBinary.
func UnmarshalBinaryMatrix(buf []byte) (*BinaryMatrix, error) {
	if len(buf) < 16 {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "binary matrix: truncated header")
	}
	rows := int(binary.LittleEndian.Uint64(buf[0:8]))
	cols := int(binary.LittleEndian.Uint64(buf[8:16]))
	if rows < 0 || cols < 0 {
		return nil, errors.New("binary matrix: negative dimension in wire header")
	}
	want := rows * rowBytes(cols)
	if len(buf) < 16+want {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "binary matrix: want %d body bytes, have %d", want, len(buf)-16)
	}
	out := &BinaryMatrix{Rows: rows, Cols: cols, data: make([]byte, want)}
	copy(out.data, buf[16:16+want])
	return out, nil
}

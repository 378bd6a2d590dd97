// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
)

// MaxVarIntPayload is the maximum payload size for a variable length integer.
const MaxVarIntPayload = binary.MaxVarintLen64

// AppendVarInt appends the base-128 encoding of val to dst.
func AppendVarInt(dst []byte, val uint64) []byte {
	return binary.AppendUvarint(dst, val)
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	var buf [MaxVarIntPayload]byte
	n := binary.PutUvarint(buf[:], val)
	_, err := w.Write(buf[:n])
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	size := 1
	for val >= 0x80 {
		val >>= 7
		size++
	}
	return size
}

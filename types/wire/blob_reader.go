// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrTruncated is returned by every BlobReader operation that would have to
// read past the end of the buffer or that meets a malformed varint.
var ErrTruncated = errors.New("blob is truncated")

// BlobReader is a forward-only cursor over a borrowed byte slice.
// It never copies the buffer and never advances on a failed read.
type BlobReader struct {
	buf   []byte
	index int
}

// NewBlobReader returns a reader positioned at the first byte of buf.
func NewBlobReader(buf []byte) *BlobReader {
	return &BlobReader{buf: buf}
}

// Index returns the offset of the next unread byte.
func (r *BlobReader) Index() int { return r.index }

// Len returns the number of unread bytes.
func (r *BlobReader) Len() int { return len(r.buf) - r.index }

func (r *BlobReader) need(op string, n uint64) error {
	if n > uint64(r.Len()) {
		return errors.Wrapf(ErrTruncated, "%s: need %d bytes at offset %d, have %d",
			op, n, r.index, r.Len())
	}
	return nil
}

func (r *BlobReader) ReadUint8() (uint8, error) {
	if err := r.need("ReadUint8", 1); err != nil {
		return 0, err
	}
	v := r.buf[r.index]
	r.index++
	return v, nil
}

func (r *BlobReader) ReadUint16() (uint16, error) {
	if err := r.need("ReadUint16", 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.index:])
	r.index += 2
	return v, nil
}

func (r *BlobReader) ReadUint32() (uint32, error) {
	if err := r.need("ReadUint32", 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.index:])
	r.index += 4
	return v, nil
}

func (r *BlobReader) ReadUint64() (uint64, error) {
	if err := r.need("ReadUint64", 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.index:])
	r.index += 8
	return v, nil
}

// ReadVarInt reads a base-128 varint: seven payload bits per byte, least
// significant group first, high bit set on every byte but the last.
func (r *BlobReader) ReadVarInt() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.index:])
	switch {
	case n == 0:
		return 0, errors.Wrapf(ErrTruncated, "ReadVarInt: unterminated varint at offset %d", r.index)
	case n < 0:
		return 0, errors.Wrapf(ErrTruncated, "ReadVarInt: varint overflows 64 bits at offset %d", r.index)
	}

	r.index += n
	return v, nil
}

// ReadSpan returns a view of the next n bytes. The view aliases the
// underlying buffer; its capacity is clipped so appending to it can not
// overwrite the bytes that follow.
func (r *BlobReader) ReadSpan(n uint64) ([]byte, error) {
	if err := r.need("ReadSpan", n); err != nil {
		return nil, err
	}
	end := r.index + int(n)
	span := r.buf[r.index:end:end]
	r.index = end
	return span, nil
}

// ReadBytes copies len(dst) bytes into dst.
func (r *BlobReader) ReadBytes(dst []byte) error {
	if err := r.need("ReadBytes", uint64(len(dst))); err != nil {
		return err
	}
	r.index += copy(dst, r.buf[r.index:])
	return nil
}

// Skip advances the cursor by n bytes.
func (r *BlobReader) Skip(n uint64) error {
	if err := r.need("Skip", n); err != nil {
		return err
	}
	r.index += int(n)
	return nil
}

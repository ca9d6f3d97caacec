// Package codec implements the varbyte and delta integer encodings used
// throughout the on-disk index (internal/format) — the bit-level
// primitives that every posting list is built from.
//
// ═══════════════════════════════════════════════════════════════════════════════
// VARBYTE ENCODING
// ═══════════════════════════════════════════════════════════════════════════════
// Varbyte stores a non-negative integer as a little-endian sequence of
// 7-bit groups, one group per byte. The high bit of each byte is a
// continuation flag: 1 means "more bytes follow", 0 means "this is the
// last byte".
//
// EXAMPLE: encoding 300 (binary 100101100)
// ------------------------------------------
//
//	300 split into 7-bit groups, least significant first:
//	  group0 = 0101100 (44)
//	  group1 = 0000010 (2)
//
//	Byte 0: 1_0101100  (continuation bit set, more follows)
//	Byte 1: 0_0000010  (continuation bit clear, last byte)
//
// Zero is a special case: it still needs one byte, 0x00.
//
// ═══════════════════════════════════════════════════════════════════════════════
package codec

import (
	"errors"
	"io"
)

// ErrTruncatedStream is returned when a varbyte sequence ends before a
// terminating byte (high bit clear) is found.
var ErrTruncatedStream = errors.New("codec: truncated varbyte stream")

// PutUvarint appends the varbyte encoding of x to dst and returns the
// extended slice.
//
// Uses ⌈bits(x)/7⌉ bytes, 1 byte for x == 0.
func PutUvarint(dst []byte, x uint64) []byte {
	for x >= 0x80 {
		dst = append(dst, byte(x)|0x80)
		x >>= 7
	}
	return append(dst, byte(x))
}

// Uvarint decodes a single varbyte-encoded integer starting at buf[0]
// and returns the value and the number of bytes consumed.
//
// Returns ErrTruncatedStream if buf ends before a terminating byte (high
// bit clear) is seen.
func Uvarint(buf []byte) (uint64, int, error) {
	var x uint64
	var shift uint
	for i, b := range buf {
		x |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncatedStream
}

// ReadUvarint decodes a single varbyte-encoded integer one byte at a
// time from r, mirroring the standard library's
// encoding/binary.ReadUvarint shape but for this package's 7-bit
// continuation-bit layout rather than binary's own varint scheme. Used
// where a byte slice isn't already buffered in memory, e.g. streaming a
// spilled SPIMI block off disk.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && shift != 0 {
				return 0, ErrTruncatedStream
			}
			return 0, err
		}
		x |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, nil
		}
		shift += 7
	}
}

// EncodeDeltas writes an ascending (or first-value-then-gaps) sequence
// of non-negative integers to dst using delta coding: the first value is
// stored raw, each subsequent value is stored as the gap from its
// predecessor.
//
// EXAMPLE:
//
//	xs = [5, 9, 20, 21]  →  deltas = [5, 4, 11, 1]
func EncodeDeltas(dst []byte, xs []int) []byte {
	prev := 0
	for _, x := range xs {
		dst = PutUvarint(dst, uint64(x-prev))
		prev = x
	}
	return dst
}

// DecodeDelta decodes a single delta-coded value given the running
// total accumulated so far, returning the restored value, the updated
// running total, and the number of bytes consumed.
func DecodeDelta(buf []byte, running int) (value int, newRunning int, n int, err error) {
	gap, n, err := Uvarint(buf)
	if err != nil {
		return 0, running, 0, err
	}
	value = running + int(gap)
	return value, value, n, nil
}

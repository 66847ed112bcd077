// util/compress.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

// Byte-wise delta coding for successive world snapshots. Consecutive
// snapshots of a slowly changing world differ in few bytes, so deltas
// are mostly zeros and compress far better than the snapshots do.

// DeltaEncodeBytes returns next encoded against ref: byte differences
// where the slices overlap, raw bytes beyond ref's length.
func DeltaEncodeBytes(ref, next []byte) []byte {
	if len(next) == 0 {
		return nil
	}

	delta := make([]byte, len(next))
	for i := range next {
		if i < len(ref) {
			delta[i] = next[i] - ref[i]
		} else {
			delta[i] = next[i]
		}
	}
	return delta
}

// DeltaDecodeBytes inverts DeltaEncodeBytes given the same ref.
func DeltaDecodeBytes(ref, delta []byte) []byte {
	if len(delta) == 0 {
		return nil
	}

	r := make([]byte, len(delta))
	for i := range delta {
		if i < len(ref) {
			r[i] = ref[i] + delta[i]
		} else {
			r[i] = delta[i]
		}
	}
	return r
}

// DeltaDecodeBytesSlice decodes a recorded stream: the first element is
// stored raw and each later element is delta-encoded against its
// decoded predecessor.
func DeltaDecodeBytesSlice(encoded [][]byte) [][]byte {
	if len(encoded) == 0 {
		return nil
	}

	r := make([][]byte, len(encoded))
	r[0] = append([]byte(nil), encoded[0]...)
	for i := 1; i < len(encoded); i++ {
		r[i] = DeltaDecodeBytes(r[i-1], encoded[i])
	}
	return r
}

// util/compress_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"slices"
	"testing"
)

func TestDeltaEncodeDecodeBytes(t *testing.T) {
	tests := []struct {
		name      string
		reference []byte
		next      []byte
	}{
		{
			name:      "empty next",
			reference: []byte("hello"),
			next:      []byte{},
		},
		{
			name:      "identical",
			reference: []byte("hello"),
			next:      []byte("hello"),
		},
		{
			name:      "one byte difference",
			reference: []byte("hello"),
			next:      []byte("hallo"),
		},
		{
			name:      "next longer",
			reference: []byte("hello"),
			next:      []byte("hello world"),
		},
		{
			name:      "next shorter",
			reference: []byte("hello world"),
			next:      []byte("hello"),
		},
		{
			name:      "empty reference",
			reference: []byte{},
			next:      []byte("hello"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := DeltaEncodeBytes(tt.reference, tt.next)
			decoded := DeltaDecodeBytes(tt.reference, delta)

			if !slices.Equal(decoded, tt.next) {
				t.Errorf("decode(encode(%q)) = %q, want %q", tt.next, decoded, tt.next)
			}

			// Unchanged bytes must encode to zero or the compression
			// argument for deltas falls apart.
			for i := 0; i < len(delta) && i < len(tt.reference); i++ {
				if tt.reference[i] == tt.next[i] && delta[i] != 0 {
					t.Errorf("delta[%d] = %d, want 0 for matching bytes", i, delta[i])
				}
			}
		})
	}
}

// TestDeltaDecodeBytesSlice encodes a stream the way the replay
// recorder does, first frame raw and each next frame against its
// predecessor, and checks the slice decode recovers every frame.
func TestDeltaDecodeBytesSlice(t *testing.T) {
	frames := [][]byte{
		[]byte("tick 1: all quiet"),
		[]byte("tick 2: all quiet"),
		[]byte("tick 2: all quiet"),
		{},
		[]byte("tick 5: two aircraft off"),
		[]byte("tick 6"),
	}

	encoded := make([][]byte, len(frames))
	encoded[0] = append([]byte(nil), frames[0]...)
	for i := 1; i < len(frames); i++ {
		encoded[i] = DeltaEncodeBytes(frames[i-1], frames[i])
	}

	decoded := DeltaDecodeBytesSlice(encoded)
	if len(decoded) != len(frames) {
		t.Fatalf("decoded %d frames, want %d", len(decoded), len(frames))
	}
	for i := range frames {
		if !slices.Equal(decoded[i], frames[i]) {
			t.Errorf("frame %d = %q, want %q", i, decoded[i], frames[i])
		}
	}

	if DeltaDecodeBytesSlice(nil) != nil {
		t.Errorf("decoding an empty stream should return nil")
	}
}

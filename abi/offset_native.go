//go:build !wasip1

package abi

import "sync/atomic"

// Native builds have no 32-bit linear memory, so offsets are synthetic
// tokens minted from a counter. The protocol logic above is identical on
// both targets, which keeps the whole package testable with plain go test.
var nextOffset atomic.Uint32

func init() {
	nextOffset.Store(1 << 16)
}

func bufferOffset(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	// Reserve the buffer's full footprint so tokens never collide.
	span := (uint32(len(buf)) + 7) &^ 7
	return nextOffset.Add(span) - span
}

//go:build wasip1

package abi

import "unsafe"

// bufferOffset returns the linear-memory address of the slice's first byte.
// Pointers fit in uint32 on wasm32; this address is what the host reads
// through the module's exported memory. The Go wasm GC does not move
// objects, and the manager keeps the slice pinned until it is freed.
func bufferOffset(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	//nolint:gosec // G103: required to expose linear-memory addresses to the host
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

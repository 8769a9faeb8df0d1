//go:build wasip1

package abi

// The host manages guest memory through exactly these two exports. All
// other functions in this package are internal helpers the contract itself
// calls around host function invocations.

//go:wasmexport allocate
func wasmAllocate(size uint32) uint32 {
	return Allocate(size)
}

//go:wasmexport deallocate
func wasmDeallocate(regionPtr uint32) {
	Deallocate(regionPtr)
}

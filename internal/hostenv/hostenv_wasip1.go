//go:build wasip1

// Package hostenv declares the functions the host runtime provides to the
// guest under the "env" import module. Implementations are entirely opaque;
// only the call contract is specified here.
package hostenv

//go:wasmimport env log
//nolint:revive // snake-free name mandated by the host ABI
func envLog(regionPtr uint32)

//go:wasmimport env canonicalize_address
//nolint:revive // intentional snake_case to match the WASM import convention
func envCanonicalizeAddress(inputPtr, outputPtr uint32) int32

// Log hands a Region pointer to a UTF-8 buffer to the host's logger. The
// host does not take ownership; the caller still frees the buffer.
func Log(regionPtr uint32) {
	envLog(regionPtr)
}

// CanonicalizeAddress asks the host to canonicalize the address described
// by inputPtr into the preallocated output Region. Zero or positive return
// codes signal success, negative codes failure.
func CanonicalizeAddress(inputPtr, outputPtr uint32) int32 {
	return envCanonicalizeAddress(inputPtr, outputPtr)
}

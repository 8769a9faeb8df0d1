//go:build !wasip1

// Package hostenv declares the functions the host runtime provides to the
// guest under the "env" import module. Implementations are entirely opaque;
// only the call contract is specified here.
package hostenv

// Native builds have no host runtime, so the bindings are variables that
// tests swap for stubs. The real imports live in hostenv_wasip1.go.

// Log hands a Region pointer to a UTF-8 buffer to the host's logger.
var Log = func(regionPtr uint32) {
	panic("hostenv: env.log is not available in native builds, install a stub")
}

// CanonicalizeAddress asks the host to canonicalize the address described
// by inputPtr into the preallocated output Region.
var CanonicalizeAddress = func(inputPtr, outputPtr uint32) int32 {
	panic("hostenv: env.canonicalize_address is not available in native builds, install a stub")
}

// Package address exposes the host's address canonicalization to the guest.
package address

import (
	"github.com/contractkit/wasm-sdk/abi"
	sdkerrors "github.com/contractkit/wasm-sdk/errors"
	"github.com/contractkit/wasm-sdk/internal/hostenv"
)

// CanonicalOutputSize is the output buffer the guest preallocates for
// env.canonicalize_address. The host guarantees it never writes more than
// this; changing the value is a boundary change that must be coordinated
// with the host side.
const CanonicalOutputSize = 50

// Canonicalize converts a human-readable address into its canonical binary
// form by calling the host. The input crosses the boundary as a non-owning
// view; the output Region is allocated here, filled by the host, and freed
// before returning. A negative host return code yields an
// AddressCanonicalizationError carrying that code.
func Canonicalize(human string) ([]byte, error) {
	inputPtr := abi.KeepOwnership([]byte(human))
	defer abi.DiscardRegion(inputPtr)

	outputPtr := abi.Allocate(CanonicalOutputSize)
	if code := hostenv.CanonicalizeAddress(inputPtr, outputPtr); code < 0 {
		abi.Deallocate(outputPtr)
		return nil, &sdkerrors.AddressCanonicalizationError{Code: code}
	}
	return abi.TakeOwnership(outputPtr), nil
}

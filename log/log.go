// Package log routes guest log output to the host runtime over the Region
// protocol.
package log

import (
	"github.com/contractkit/wasm-sdk/abi"
	"github.com/contractkit/wasm-sdk/internal/hostenv"
)

// Log sends text to the host's logger. The UTF-8 buffer crosses the
// boundary as a non-owning view: the host must not retain it past the call,
// and the guest frees it once the call returns.
func Log(text string) {
	regionPtr := abi.KeepOwnership([]byte(text))
	defer abi.DiscardRegion(regionPtr)
	hostenv.Log(regionPtr)
}

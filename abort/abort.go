// Package abort implements the guest's fail-fast termination path: the
// designated handler for invariant violations that must not be recovered
// from.
package abort

import (
	"fmt"
	"os"

	"github.com/contractkit/wasm-sdk/log"
)

// unset stands in for optional diagnostic fields the caller did not provide.
const unset = "unset"

// terminate ends the module. On wasip1, os.Exit maps to proc_exit, which
// the host runtime treats as an unrecoverable trap. Tests swap this hook.
var terminate = func() {
	os.Exit(1)
}

// Abort logs a formatted diagnostic through the host and terminates the
// module. It never returns: a guest in an inconsistent state must not keep
// executing. Empty message or fileName are reported as "unset".
func Abort(message, fileName string, line, column uint32) {
	if message == "" {
		message = unset
	}
	if fileName == "" {
		fileName = unset
	}
	log.Log(fmt.Sprintf("Aborted with message '%s' (in '%s', line %d, column %d)",
		message, fileName, line, column))
	terminate()
	panic("abort: terminate hook returned")
}

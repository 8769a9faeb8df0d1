//go:build !wasip1

package abort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractkit/wasm-sdk/abi"
	"github.com/contractkit/wasm-sdk/internal/hostenv"
)

type terminated struct{}

// trapTerminate replaces process exit with a panic the tests can observe,
// and captures the diagnostic line sent to the host.
func trapTerminate(t *testing.T) *string {
	t.Helper()
	abi.FreeAllTracked()

	var line string
	previousLog := hostenv.Log
	hostenv.Log = func(regionPtr uint32) {
		line = string(abi.ReadRegion(regionPtr))
	}
	previousTerminate := terminate
	terminate = func() { panic(terminated{}) }
	t.Cleanup(func() {
		hostenv.Log = previousLog
		terminate = previousTerminate
	})
	return &line
}

func TestAbort_LogsExactDiagnostic(t *testing.T) {
	line := trapTerminate(t)

	assert.PanicsWithValue(t, terminated{}, func() {
		Abort("boom", "file.ts", 10, 3)
	}, "abort must not return control to its caller")

	require.Equal(t, "Aborted with message 'boom' (in 'file.ts', line 10, column 3)", *line)
}

func TestAbort_SubstitutesUnset(t *testing.T) {
	line := trapTerminate(t)

	assert.PanicsWithValue(t, terminated{}, func() {
		Abort("", "", 0, 0)
	})

	require.Equal(t, "Aborted with message 'unset' (in 'unset', line 0, column 0)", *line)
}

func TestAbort_NeverReturnsEvenIfHookDoes(t *testing.T) {
	line := trapTerminate(t)
	terminate = func() {}

	assert.Panics(t, func() {
		Abort("boom", "file.ts", 1, 1)
	})
	require.NotEmpty(t, *line)
}

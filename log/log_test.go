//go:build !wasip1

package log

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractkit/wasm-sdk/abi"
	"github.com/contractkit/wasm-sdk/internal/hostenv"
)

// captureHostLog swaps the env.log stub and records every line the guest
// sends, reading it through the Region protocol the way a real host would.
func captureHostLog(t *testing.T) *[]string {
	t.Helper()
	abi.FreeAllTracked()

	var lines []string
	previous := hostenv.Log
	hostenv.Log = func(regionPtr uint32) {
		lines = append(lines, string(abi.ReadRegion(regionPtr)))
	}
	t.Cleanup(func() { hostenv.Log = previous })
	return &lines
}

func TestLog_SendsTextAndFreesRecord(t *testing.T) {
	lines := captureHostLog(t)

	Log("contract instantiated")

	require.Equal(t, []string{"contract instantiated"}, *lines)

	allocations, totalBytes := abi.Stats()
	assert.Zero(t, allocations, "the view's record must be discarded after the call")
	assert.Zero(t, totalBytes)
}

func TestHandler_FormatsRecord(t *testing.T) {
	lines := captureHostLog(t)

	logger := slog.New(NewHandler())
	logger.Info("executing", "sender", "cosmos1abc", "funds", 42)

	require.Len(t, *lines, 1)
	assert.Equal(t, "INFO executing sender=cosmos1abc funds=42", (*lines)[0])
}

func TestHandler_LevelFilter(t *testing.T) {
	lines := captureHostLog(t)

	logger := slog.New(NewHandler())
	logger.Debug("noisy detail")
	require.Empty(t, *lines)

	logger = slog.New(NewHandler(WithLevel(slog.LevelDebug)))
	logger.Debug("noisy detail")
	require.Len(t, *lines, 1)
	assert.Equal(t, "DEBUG noisy detail", (*lines)[0])
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	lines := captureHostLog(t)

	logger := slog.New(NewHandler()).WithGroup("tx").With("hash", "deadbeef")
	logger.Warn("dry run", "gas", 1234)

	require.Len(t, *lines, 1)
	assert.Equal(t, "WARN dry run tx.hash=deadbeef tx.gas=1234", (*lines)[0])
}

func TestHandler_WithSource(t *testing.T) {
	lines := captureHostLog(t)

	logger := slog.New(NewHandler(WithSource(true)))
	logger.Info("located")

	require.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], "source=")
	assert.Contains(t, (*lines)[0], "log_test.go:")
}

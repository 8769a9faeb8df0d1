package abi

import (
	stdErrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/contractkit/wasm-sdk/errors"
)

// resetMemoryManager clears all tracked allocations for test isolation.
func resetMemoryManager() {
	FreeAllTracked()
	Configure(WithMaxTotalAllocations(DefaultMaxTotalAllocations))
}

func TestAllocateDeallocate(t *testing.T) {
	resetMemoryManager()

	regionPtr := Allocate(1024)
	require.NotZero(t, regionPtr, "allocate returned 0")

	// One buffer plus one record, freed by exactly one Deallocate.
	allocations, totalBytes := Stats()
	assert.Equal(t, 2, allocations)
	assert.Equal(t, 1024+RegionSize, totalBytes)

	Deallocate(regionPtr)

	allocations, totalBytes = Stats()
	assert.Equal(t, 0, allocations, "expected 0 tracked allocations after deallocate")
	assert.Equal(t, 0, totalBytes)
}

func TestAllocate_ZeroSize(t *testing.T) {
	resetMemoryManager()

	regionPtr := Allocate(0)
	require.NotZero(t, regionPtr)
	assert.Empty(t, ReadRegion(regionPtr))

	Deallocate(regionPtr)
	allocations, totalBytes := Stats()
	assert.Equal(t, 0, allocations)
	assert.Equal(t, 0, totalBytes)
}

func TestDeallocate_UnknownPointerPanics(t *testing.T) {
	resetMemoryManager()

	assert.Panics(t, func() {
		Deallocate(0xdeadbeef)
	})
}

func TestKeepOwnership_ReadRegionRoundTrip(t *testing.T) {
	resetMemoryManager()

	data := []byte("hello world")
	regionPtr := KeepOwnership(data)

	view := ReadRegion(regionPtr)
	assert.Equal(t, data, view, "view must equal the original buffer")

	// Only the record is owned; the buffer stays with the caller.
	allocations, totalBytes := Stats()
	assert.Equal(t, 1, allocations)
	assert.Equal(t, RegionSize, totalBytes)

	DiscardRegion(regionPtr)
	allocations, totalBytes = Stats()
	assert.Equal(t, 0, allocations)
	assert.Equal(t, 0, totalBytes)
}

func TestDiscardRegion_Idempotent(t *testing.T) {
	resetMemoryManager()

	regionPtr := KeepOwnership([]byte("x"))
	DiscardRegion(regionPtr)
	DiscardRegion(regionPtr)

	allocations, _ := Stats()
	assert.Equal(t, 0, allocations)
}

func TestReleaseOwnership_TakeOwnershipRoundTrip(t *testing.T) {
	resetMemoryManager()

	data := []byte{0xaa, 0xbb, 0x64}
	regionPtr := ReleaseOwnership(data)

	allocations, totalBytes := Stats()
	require.Equal(t, 2, allocations)
	require.Equal(t, len(data)+RegionSize, totalBytes)

	got := TakeOwnership(regionPtr)
	assert.Equal(t, data, got)

	allocations, totalBytes = Stats()
	assert.Equal(t, 0, allocations, "take must free buffer and record")
	assert.Equal(t, 0, totalBytes)

	// The pointer is invalid after the transfer completes.
	assert.Panics(t, func() {
		ReadRegion(regionPtr)
	})
	assert.Panics(t, func() {
		Deallocate(regionPtr)
	})
}

func TestTakeOwnership_ReturnsIndependentCopy(t *testing.T) {
	resetMemoryManager()

	data := []byte("immutable after transfer")
	regionPtr := ReleaseOwnership(data)

	got := TakeOwnership(regionPtr)
	data[0] = 'X'
	assert.Equal(t, byte('i'), got[0], "returned bytes must not alias the source")
}

func TestWriteRegion_UpdatesLength(t *testing.T) {
	resetMemoryManager()

	regionPtr := Allocate(50)
	require.NoError(t, WriteRegion(regionPtr, []byte("abc")))

	view := ReadRegion(regionPtr)
	assert.Equal(t, []byte("abc"), view, "read must honor the rewritten length")

	Deallocate(regionPtr)
}

func TestWriteRegion_RejectsOverflow(t *testing.T) {
	resetMemoryManager()

	regionPtr := Allocate(50)
	defer Deallocate(regionPtr)

	err := WriteRegion(regionPtr, make([]byte, 51))
	var regionErr *sdkerrors.RegionError
	require.True(t, stdErrors.As(err, &regionErr))
}

func TestWriteRegion_UnknownPointer(t *testing.T) {
	resetMemoryManager()

	err := WriteRegion(0xdeadbeef, []byte("x"))
	var regionErr *sdkerrors.RegionError
	require.True(t, stdErrors.As(err, &regionErr))
}

func TestAllocationLimit(t *testing.T) {
	resetMemoryManager()
	defer resetMemoryManager()

	Configure(WithMaxTotalAllocations(128))

	regionPtr := Allocate(64)
	Deallocate(regionPtr)

	assert.Panics(t, func() {
		Allocate(2048)
	}, "expected panic when exceeding allocation limit")
}

func TestConfigure_InvalidLimitIgnored(t *testing.T) {
	resetMemoryManager()

	Configure(WithMaxTotalAllocations(0))
	Configure(WithMaxTotalAllocations(-100))

	regionPtr := Allocate(1024)
	require.NotZero(t, regionPtr)
	Deallocate(regionPtr)
}

func TestFreeAllTracked(t *testing.T) {
	resetMemoryManager()

	Allocate(100)
	Allocate(200)

	allocations, _ := Stats()
	require.Equal(t, 4, allocations)

	FreeAllTracked()

	allocations, totalBytes := Stats()
	assert.Equal(t, 0, allocations)
	assert.Equal(t, 0, totalBytes)
}

func TestConcurrentTransfers(t *testing.T) {
	resetMemoryManager()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			regionPtr := ReleaseOwnership([]byte("concurrent transfer"))
			_ = TakeOwnership(regionPtr)
		}()
	}
	wg.Wait()

	allocations, totalBytes := Stats()
	assert.Equal(t, 0, allocations)
	assert.Equal(t, 0, totalBytes)
}

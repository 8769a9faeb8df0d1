// Package abi implements the guest side of the Region memory protocol: a
// guest-owned allocator, the Region record describing a buffer's location
// and length in linear memory, and the ownership-transfer functions that
// decide whether guest or host frees a buffer after a boundary crossing.
//
// Every buffer that crosses the boundary is pinned here so the Go GC cannot
// collect it while the host holds a pointer. At any point in time exactly
// one side is responsible for freeing a given buffer and its record:
//
//   - Allocate / Deallocate: guest-owned pair, the only two entry points
//     the host calls directly (exported on wasip1 builds).
//   - ReleaseOwnership: the guest hands a buffer to the host; the receiver
//     must free it exactly once (Deallocate or TakeOwnership).
//   - KeepOwnership / DiscardRegion: a non-owning view for the duration of
//     a synchronous host call; the guest stays responsible for the buffer.
//   - TakeOwnership: the receiving side claims the bytes and destroys the
//     Region and its buffer in one step.
//
// Preconditions on Region validity are documented, not checked: passing a
// pointer that was never produced by this package panics or corrupts the
// protocol.
package abi

import (
	"fmt"
	"sync"

	sdkerrors "github.com/contractkit/wasm-sdk/errors"
)

// DefaultMaxTotalAllocations is the default ceiling on memory pinned by the
// guest. It prevents unbounded growth of the wasm linear memory.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// memoryManager tracks every allocation that flows through the protocol.
// Keeping the slices referenced pins them until they are explicitly freed.
var memoryManager = struct {
	sync.Mutex
	buffers        map[uint32][]byte // owned data buffers, freed by Deallocate
	borrowed       map[uint32][]byte // non-owning views pinned for a host call
	regions        map[uint32][]byte // live Region records keyed by record pointer
	totalAllocated int               // bytes currently pinned as owned
	maxTotal       int
}{
	buffers:  make(map[uint32][]byte),
	borrowed: make(map[uint32][]byte),
	regions:  make(map[uint32][]byte),
	maxTotal: DefaultMaxTotalAllocations,
}

// Option adjusts allocator behavior.
type Option func(*allocatorConfig)

type allocatorConfig struct {
	maxTotal int
}

// WithMaxTotalAllocations sets the ceiling on total pinned bytes.
// Zero or negative limits are ignored.
func WithMaxTotalAllocations(limit int) Option {
	return func(c *allocatorConfig) {
		if limit > 0 {
			c.maxTotal = limit
		}
	}
}

// Configure applies allocator options.
func Configure(opts ...Option) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	cfg := allocatorConfig{maxTotal: memoryManager.maxTotal}
	for _, opt := range opts {
		opt(&cfg)
	}
	memoryManager.maxTotal = cfg.maxTotal
}

// Allocate reserves size bytes of guest memory, builds a Region record
// describing them and returns a pointer to that record. The buffer content
// is unspecified; callers must not assume it is zeroed. The live-allocation
// set grows by two objects (buffer and record) that must later be matched
// by exactly one Deallocate.
func Allocate(size uint32) uint32 {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	offset := pinOwnedLocked(make([]byte, size))
	return newRecordLocked(Region{Offset: offset, Length: size})
}

// Deallocate releases both the buffer a Region describes and the record
// itself. The pointer must have been produced by Allocate or
// ReleaseOwnership and must not be used again afterwards.
func Deallocate(regionPtr uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	deallocateLocked(regionPtr)
}

// ReadRegion returns a view of the first Length bytes of the buffer a
// Region describes. No copy is made and ownership does not change. The
// record is decoded on every call, so a length the host rewrote is
// observed. The view's capacity may exceed its length.
func ReadRegion(regionPtr uint32) []byte {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return readRegionLocked(regionPtr)
}

// WriteRegion copies data into the buffer a Region describes and rewrites
// the record's length field. This is the receiving side of the protocol:
// the host harness mirrors it over linear memory, and guest tests use it to
// stand in for the host.
func WriteRegion(regionPtr uint32, data []byte) error {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	record, ok := memoryManager.regions[regionPtr]
	if !ok {
		return &sdkerrors.RegionError{Offset: regionPtr, Reason: "unknown region pointer"}
	}
	r := DecodeRegion(record)
	buf := bufferAtLocked(r.Offset)
	if buf == nil {
		return &sdkerrors.RegionError{Offset: r.Offset, Length: r.Length, Reason: "region references unmanaged memory"}
	}
	if len(data) > len(buf) {
		return &sdkerrors.RegionError{
			Offset: r.Offset,
			Length: uint32(len(data)),
			Reason: fmt.Sprintf("write exceeds region capacity %d", len(buf)),
		}
	}
	copy(buf, data)
	copy(record, EncodeRegion(Region{Offset: r.Offset, Length: uint32(len(data))}))
	return nil
}

// ReleaseOwnership hands a guest-owned buffer to the other party. The
// buffer and a fresh record are pinned; whoever receives the returned
// pointer must free the pair exactly once, via Deallocate or TakeOwnership.
func ReleaseOwnership(data []byte) uint32 {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	offset := pinOwnedLocked(data)
	return newRecordLocked(Region{Offset: offset, Length: uint32(len(data))})
}

// KeepOwnership builds a non-owning Region over a buffer the guest keeps
// responsibility for. The view is only valid for the duration of a
// synchronous host call; drop the record with DiscardRegion once the call
// returns.
func KeepOwnership(data []byte) uint32 {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	offset := uint32(0)
	if len(data) > 0 {
		offset = bufferOffset(data)
		memoryManager.borrowed[offset] = data
	}
	return newRecordLocked(Region{Offset: offset, Length: uint32(len(data))})
}

// DiscardRegion drops a record created by KeepOwnership after the host call
// returns. The underlying buffer is untouched: the guest still owns it.
// Discarding an already-dropped record is a no-op.
func DiscardRegion(regionPtr uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	record, ok := memoryManager.regions[regionPtr]
	if !ok {
		return
	}
	r := DecodeRegion(record)
	delete(memoryManager.borrowed, r.Offset)
	delete(memoryManager.regions, regionPtr)
	memoryManager.totalAllocated -= RegionSize
}

// TakeOwnership claims the bytes a Region describes from the receiving
// side: it reads them, destroys the Region and its buffer, and returns an
// independently-owned copy. The original pointer is invalid afterwards and
// must never be read or freed again.
func TakeOwnership(regionPtr uint32) []byte {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	view := readRegionLocked(regionPtr)
	out := make([]byte, len(view))
	copy(out, view)
	deallocateLocked(regionPtr)
	return out
}

// FreeAllTracked drops every pinned buffer and record. This is typically
// called during panic recovery or module teardown to prevent leaks.
func FreeAllTracked() {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	clear(memoryManager.buffers)
	clear(memoryManager.borrowed)
	clear(memoryManager.regions)
	memoryManager.totalAllocated = 0
}

// Stats reports the number of owned objects (buffers plus records) and the
// total owned bytes currently pinned. Borrowed views are not counted; the
// guest owns those buffers through its own references.
func Stats() (allocations int, totalBytes int) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return len(memoryManager.buffers) + len(memoryManager.regions), memoryManager.totalAllocated
}

// pinOwnedLocked pins data as an owned buffer and returns its offset.
// Empty buffers are represented by offset 0 and never pinned.
func pinOwnedLocked(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	if memoryManager.totalAllocated+len(data) > memoryManager.maxTotal {
		panic(&sdkerrors.MemoryError{
			Requested: len(data),
			Current:   memoryManager.totalAllocated,
			Limit:     memoryManager.maxTotal,
		})
	}
	offset := bufferOffset(data)
	memoryManager.buffers[offset] = data
	memoryManager.totalAllocated += len(data)
	return offset
}

// newRecordLocked pins an encoded record and returns its pointer.
func newRecordLocked(r Region) uint32 {
	record := EncodeRegion(r)
	regionPtr := bufferOffset(record)
	memoryManager.regions[regionPtr] = record
	memoryManager.totalAllocated += RegionSize
	return regionPtr
}

// bufferAtLocked resolves an offset to its pinned buffer, owned or borrowed.
func bufferAtLocked(offset uint32) []byte {
	if buf, ok := memoryManager.buffers[offset]; ok {
		return buf
	}
	return memoryManager.borrowed[offset]
}

func readRegionLocked(regionPtr uint32) []byte {
	record, ok := memoryManager.regions[regionPtr]
	if !ok {
		panic(fmt.Sprintf("abi: read of unknown region pointer 0x%x", regionPtr))
	}
	r := DecodeRegion(record)
	if r.Length == 0 {
		return []byte{}
	}
	buf := bufferAtLocked(r.Offset)
	if buf == nil {
		panic(fmt.Sprintf("abi: region 0x%x references unmanaged memory at offset 0x%x", regionPtr, r.Offset))
	}
	if int(r.Length) > len(buf) {
		panic(fmt.Sprintf("abi: region length %d exceeds buffer size %d", r.Length, len(buf)))
	}
	return buf[:r.Length]
}

func deallocateLocked(regionPtr uint32) {
	record, ok := memoryManager.regions[regionPtr]
	if !ok {
		panic(fmt.Sprintf("abi: deallocate of unknown region pointer 0x%x", regionPtr))
	}
	r := DecodeRegion(record)
	if buf, owned := memoryManager.buffers[r.Offset]; owned {
		delete(memoryManager.buffers, r.Offset)
		memoryManager.totalAllocated -= len(buf)
	} else {
		delete(memoryManager.borrowed, r.Offset)
	}
	delete(memoryManager.regions, regionPtr)
	memoryManager.totalAllocated -= RegionSize
}

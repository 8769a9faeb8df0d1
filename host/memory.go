package host

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/contractkit/wasm-sdk/abi"
	sdkerrors "github.com/contractkit/wasm-sdk/errors"
)

// Memory is the slice of the wazero api.Memory surface the manager needs.
// Declaring it locally keeps the manager testable with a plain in-memory
// fake.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
	Size() uint32
}

// MemoryManager drives a contract instance's memory through its exported
// allocate/deallocate functions and the shared Region record layout.
type MemoryManager struct {
	Memory     Memory
	Allocate   func(ctx context.Context, size uint32) (uint32, error)
	Deallocate func(ctx context.Context, regionPtr uint32) error
}

// NewMemoryManager wires a manager to a loaded module's exports.
func NewMemoryManager(mod api.Module) (*MemoryManager, error) {
	allocFn := mod.ExportedFunction("allocate")
	deallocFn := mod.ExportedFunction("deallocate")
	mem := mod.Memory()
	if allocFn == nil || deallocFn == nil || mem == nil {
		return nil, fmt.Errorf("module %q is missing required exports: allocate, deallocate, or memory", mod.Name())
	}

	return &MemoryManager{
		Memory: mem,
		Allocate: func(ctx context.Context, size uint32) (uint32, error) {
			results, err := allocFn.Call(ctx, uint64(size))
			if err != nil {
				return 0, err
			}
			if len(results) == 0 {
				return 0, fmt.Errorf("allocate returned no results")
			}
			return uint32(results[0]), nil
		},
		Deallocate: func(ctx context.Context, regionPtr uint32) error {
			_, err := deallocFn.Call(ctx, uint64(regionPtr))
			return err
		},
	}, nil
}

// readRecord loads and bounds-checks a Region record.
func (m *MemoryManager) readRecord(regionPtr uint32) (abi.Region, error) {
	raw, ok := m.Memory.Read(regionPtr, abi.RegionSize)
	if !ok {
		return abi.Region{}, &sdkerrors.RegionError{
			Offset: regionPtr,
			Length: abi.RegionSize,
			Reason: "record outside linear memory",
		}
	}
	r := abi.DecodeRegion(raw)
	if uint64(r.Offset)+uint64(r.Length) > uint64(m.Memory.Size()) {
		return abi.Region{}, &sdkerrors.RegionError{
			Offset: r.Offset,
			Length: r.Length,
			Reason: "region outside linear memory",
		}
	}
	return r, nil
}

// ReadRegion returns a copy of the bytes a guest Region describes. The copy
// matters: wazero hands out views into live linear memory.
func (m *MemoryManager) ReadRegion(regionPtr uint32) ([]byte, error) {
	r, err := m.readRecord(regionPtr)
	if err != nil {
		return nil, err
	}
	view, ok := m.Memory.Read(r.Offset, r.Length)
	if !ok {
		return nil, &sdkerrors.RegionError{Offset: r.Offset, Length: r.Length, Reason: "failed to read region bytes"}
	}
	data := make([]byte, len(view))
	copy(data, view)
	return data, nil
}

// WriteRegion copies data into a guest-allocated Region and rewrites the
// record's length field, the way a real host fills an output buffer.
func (m *MemoryManager) WriteRegion(regionPtr uint32, data []byte) error {
	r, err := m.readRecord(regionPtr)
	if err != nil {
		return err
	}
	if uint32(len(data)) > r.Length {
		return &sdkerrors.RegionError{
			Offset: r.Offset,
			Length: uint32(len(data)),
			Reason: fmt.Sprintf("write exceeds region capacity %d", r.Length),
		}
	}
	if !m.Memory.Write(r.Offset, data) {
		return &sdkerrors.RegionError{Offset: r.Offset, Length: uint32(len(data)), Reason: "failed to write region bytes"}
	}

	length := make([]byte, 4)
	binary.LittleEndian.PutUint32(length, uint32(len(data)))
	if !m.Memory.Write(regionPtr+4, length) {
		return &sdkerrors.RegionError{Offset: regionPtr, Length: abi.RegionSize, Reason: "failed to update region length"}
	}
	return nil
}

// CreateRegion allocates a guest Region and fills it with data. The guest
// owns the result until it is handed to a contract entry point or freed
// with FreeRegion.
func (m *MemoryManager) CreateRegion(ctx context.Context, data []byte) (uint32, error) {
	regionPtr, err := m.Allocate(ctx, uint32(len(data)))
	if err != nil {
		return 0, fmt.Errorf("guest allocate failed: %w", err)
	}
	if err := m.WriteRegion(regionPtr, data); err != nil {
		_ = m.Deallocate(ctx, regionPtr)
		return 0, err
	}
	return regionPtr, nil
}

// FreeRegion releases a guest Region through the deallocate export.
func (m *MemoryManager) FreeRegion(ctx context.Context, regionPtr uint32) error {
	return m.Deallocate(ctx, regionPtr)
}

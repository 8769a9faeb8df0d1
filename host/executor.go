package host

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	sdkerrors "github.com/contractkit/wasm-sdk/errors"
)

// Return codes for env.canonicalize_address. Zero or positive is success;
// the guest surfaces negative codes as AddressCanonicalizationError.
const (
	codeCanonicalizeFailed int32 = -1
	codeInvalidInput       int32 = -2
	codeOutputTooSmall     int32 = -3
)

// Canonicalizer converts a human-readable address into its canonical binary
// form. Returned errors map onto the negative return codes of
// env.canonicalize_address.
type Canonicalizer func(human string) ([]byte, error)

// Executor owns a wazero runtime with the "env" host module contract guests
// import.
type Executor struct {
	runtime wazero.Runtime
	cfg     Config
}

// NewExecutor creates an executor, validates its configuration and
// registers the env host module with the runtime.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	e := &Executor{runtime: rt, cfg: cfg}
	if err := e.registerEnv(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host module %q: %w", cfg.ModuleName, err)
	}
	return e, nil
}

// Close releases the runtime and every module instantiated with it.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// registerEnv builds the env host module: log and canonicalize_address.
func (e *Executor) registerEnv(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(e.cfg.ModuleName)

	// log(region_ptr) - no result, no ownership transfer.
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			e.handleLog(ctx, mod, uint32(stack[0]))
		}), []api.ValueType{api.ValueTypeI32}, nil).
		Export("log")

	// canonicalize_address(input_ptr, output_ptr) -> i32
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			code := e.handleCanonicalize(ctx, mod, uint32(stack[0]), uint32(stack[1]))
			stack[0] = uint64(uint32(code))
		}), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		Export("canonicalize_address")

	_, err := builder.Instantiate(ctx)
	return err
}

func (e *Executor) handleLog(ctx context.Context, mod api.Module, regionPtr uint32) {
	mm := &MemoryManager{Memory: mod.Memory()}
	data, err := mm.ReadRegion(regionPtr)
	if err != nil {
		e.cfg.Logger.ErrorContext(ctx, "guest log call with invalid region", "module", mod.Name(), "error", err)
		return
	}
	if uint32(len(data)) > e.cfg.MaxRegionSize {
		e.cfg.Logger.WarnContext(ctx, "guest log message dropped, region too large",
			"module", mod.Name(), "size", len(data), "limit", e.cfg.MaxRegionSize)
		return
	}
	e.cfg.Logger.InfoContext(ctx, string(data), "module", mod.Name())
}

func (e *Executor) handleCanonicalize(ctx context.Context, mod api.Module, inputPtr, outputPtr uint32) int32 {
	mm := &MemoryManager{Memory: mod.Memory()}

	human, err := mm.ReadRegion(inputPtr)
	if err != nil || uint32(len(human)) > e.cfg.MaxRegionSize {
		e.cfg.Logger.ErrorContext(ctx, "canonicalize_address with invalid input region",
			"module", mod.Name(), "error", err)
		return codeInvalidInput
	}

	canonical, err := e.cfg.Canonicalizer(string(human))
	if err != nil {
		return canonicalizeCode(err)
	}

	if err := mm.WriteRegion(outputPtr, canonical); err != nil {
		e.cfg.Logger.ErrorContext(ctx, "canonicalize_address output does not fit",
			"module", mod.Name(), "error", err)
		return codeOutputTooSmall
	}
	return 0
}

// canonicalizeCode maps a canonicalizer error to its wire return code.
func canonicalizeCode(err error) int32 {
	var canonErr *sdkerrors.AddressCanonicalizationError
	if stdErrors.As(err, &canonErr) && canonErr.Code < 0 {
		return canonErr.Code
	}
	return codeCanonicalizeFailed
}

// Contract is an instantiated guest module.
type Contract struct {
	module api.Module

	// Mem manages the instance's linear memory over its exports.
	Mem *MemoryManager
}

// LoadContract compiles and instantiates a contract module against this
// executor's runtime and env module.
func (e *Executor) LoadContract(ctx context.Context, wasmBytes []byte) (*Contract, error) {
	mod, err := e.runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}
	mm, err := NewMemoryManager(mod)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	return &Contract{module: mod, Mem: mm}, nil
}

// Call invokes an exported contract function. Parameters and results are
// raw stack values; Region pointers travel as plain uint64s.
func (c *Contract) Call(ctx context.Context, export string, params ...uint64) ([]uint64, error) {
	fn := c.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("contract has no export %q", export)
	}
	return fn.Call(ctx, params...)
}

// Close releases the instance.
func (c *Contract) Close(ctx context.Context) error {
	return c.module.Close(ctx)
}

// Package errors provides the SDK's typed failure values.
// All error types support unwrapping via errors.As() and errors.Is().
//
// The fatal channel (abort.Abort) deliberately has no error type here:
// it terminates the module and never returns.
package errors

import "fmt"

// AddressCanonicalizationError reports a negative return code from the
// host's canonicalize_address function.
type AddressCanonicalizationError struct {
	Code int32
}

func (e *AddressCanonicalizationError) Error() string {
	return fmt.Sprintf("address canonicalization failed: host returned code %d", e.Code)
}

// MemoryError represents an allocation that would exceed the guest's
// configured allocation ceiling.
type MemoryError struct {
	Requested int // Requested allocation size
	Current   int // Current total allocated
	Limit     int // Maximum allowed
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

// RegionError reports a Region record that does not fit the memory it
// claims to describe. The host side of the protocol checks for these;
// the guest side documents them as undefined behavior instead.
type RegionError struct {
	Err    error
	Reason string
	Offset uint32
	Length uint32
}

func (e *RegionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid region [offset=%d length=%d]: %s: %v", e.Offset, e.Length, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid region [offset=%d length=%d]: %s", e.Offset, e.Length, e.Reason)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}

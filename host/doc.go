// Package host is the runtime side of the Region protocol.
//
// It abstracts the underlying WASM engine (wazero), loads contract guest
// modules, manages their linear memory through the guest's
// allocate/deallocate exports, and provides the "env" host module the
// guests import (log, canonicalize_address). Unlike the guest side, every
// Region that arrives from a module is bounds-checked here: the host is the
// untrusting party.
package host

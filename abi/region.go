package abi

import "encoding/binary"

// RegionSize is the wire size of a Region record: two little-endian uint32
// fields, offset then length. This layout is the entire boundary contract
// and must match what the host runtime expects.
const RegionSize = 8

// Region describes a byte buffer in linear memory. It is passed across the
// host-guest boundary as a single pointer to its 8-byte record. A Region
// carries no ownership of its own; ownership lives with the pinned buffer
// it points at.
type Region struct {
	Offset uint32
	Length uint32
}

// EncodeRegion renders a record in wire layout.
func EncodeRegion(r Region) []byte {
	buf := make([]byte, RegionSize)
	binary.LittleEndian.PutUint32(buf[0:4], r.Offset)
	binary.LittleEndian.PutUint32(buf[4:8], r.Length)
	return buf
}

// DecodeRegion parses a wire-layout record.
func DecodeRegion(buf []byte) Region {
	return Region{
		Offset: binary.LittleEndian.Uint32(buf[0:4]),
		Length: binary.LittleEndian.Uint32(buf[4:8]),
	}
}

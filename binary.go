package appticket

import (
	"encoding/binary"

	"golang.org/x/crypto/cryptobyte"
)

// Ticket integers are little-endian, while cryptobyte only decodes big-endian ones.

func readUint16(s *cryptobyte.String, out *uint16) bool {
	var b []byte
	if !s.ReadBytes(&b, 2) {
		return false
	}
	*out = binary.LittleEndian.Uint16(b)
	return true
}

func readUint32(s *cryptobyte.String, out *uint32) bool {
	var b []byte
	if !s.ReadBytes(&b, 4) {
		return false
	}
	*out = binary.LittleEndian.Uint32(b)
	return true
}

func readUint64(s *cryptobyte.String, out *uint64) bool {
	var b []byte
	if !s.ReadBytes(&b, 8) {
		return false
	}
	*out = binary.LittleEndian.Uint64(b)
	return true
}

// readUint32List reads a uint16 count followed by that many uint32 values. The
// count is checked against the remaining bytes before anything is allocated.
func readUint32List(s *cryptobyte.String, out *[]uint32) bool {
	var count uint16
	if !readUint16(s, &count) {
		return false
	}
	var b []byte
	if !s.ReadBytes(&b, 4*int(count)) {
		return false
	}
	list := make([]uint32, count)
	for i := range list {
		list[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	*out = list
	return true
}

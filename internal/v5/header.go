package v5

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// headerSize is the fixed-length preamble every v5 MAT-file begins with.
const headerSize = 128

// descriptionSize is the width of the free-text description field.
const descriptionSize = 116

// Header represents a MAT-file header (the 128-byte file preamble).
type Header struct {
	Description     string           // File description
	SubsystemOffset string           // Bytes 116-123, unused subsystem-specific offset
	Version         uint16           // MAT-file version word, 0x0100 for level 5
	EndianIndicator string           // Endian indicator ("MI" or "IM")
	Order           binary.ByteOrder // Byte order derived from EndianIndicator
}

// VersionString renders Version as "<major>.<minor>", matching the
// "__version__" metadata field MATLAB loaders commonly expose.
func (h *Header) VersionString() string {
	major := h.Version >> 8
	minor := h.Version & 0xFF
	return strconv.Itoa(int(major)) + "." + strconv.Itoa(int(minor))
}

// parseHeader parses the 128-byte MAT-file header.
func parseHeader(data []byte) (*Header, error) {
	hdr := &Header{
		Description:     strings.TrimRight(string(data[:descriptionSize]), "\x00"),
		SubsystemOffset: string(data[116:124]),
		EndianIndicator: string(data[126:128]),
	}

	switch hdr.EndianIndicator {
	case "IM":
		hdr.Order = binary.LittleEndian
	case "MI":
		hdr.Order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: invalid endian indicator %q", ErrCorruptFile, hdr.EndianIndicator)
	}

	hdr.Version = hdr.Order.Uint16(data[124:126])
	if hdr.Version>>8 != 1 {
		return nil, fmt.Errorf("%w: only level 5 is supported", ErrUnsupportedVersion)
	}
	return hdr, nil
}

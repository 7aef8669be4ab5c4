package v5

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxReasonableSize defines the maximum allowed tag size (2GB).
// This prevents memory exhaustion attacks from malicious MAT-files
// with extremely large size values.
const maxReasonableSize = 2 * 1024 * 1024 * 1024 // 2GB

// sdeMaxPayload is the largest payload that fits inline in a tag word.
const sdeMaxPayload = 4

// DataTag represents a data element tag.
type DataTag struct {
	DataType uint32  // Data type identifier
	Size     uint32  // Data size in bytes
	IsSmall  bool    // True for small data elements
	Inline   [4]byte // Payload bytes when IsSmall; unused otherwise
}

// readTag reads a data tag from the stream.
//
// MAT-file v5 uses two tag formats:
//   - Small format (8 bytes total): Upper 16 bits of first word = size (1-4),
//     lower 16 bits = type, bytes 4-7 = packed data.
//   - Regular format (8 bytes tag + N bytes data): bytes 0-3 = type, bytes 4-7 = size.
func (p *Parser) readTag() (*DataTag, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading tag: %v", ErrCorruptFile, err)
	}
	p.pos += 8

	firstWord := p.Header.Order.Uint32(buf[0:4])

	// Check for small format: upper 16 bits contain size (1-4)
	// Lower 16 bits contain data type
	size := firstWord >> 16
	if size > 0 && size <= sdeMaxPayload {
		dataType := firstWord & 0xFFFF
		tag := &DataTag{
			DataType: dataType,
			Size:     size,
			IsSmall:  true,
		}
		copy(tag.Inline[:], buf[4:8])
		return tag, nil
	}

	// Regular format: entire first word is type, second word is size
	dataType := firstWord
	size = p.Header.Order.Uint32(buf[4:8])

	// Validate size to prevent memory exhaustion attacks
	if size > maxReasonableSize {
		return nil, fmt.Errorf("%w: tag size too large: %d bytes (max %d)", ErrCorruptFile, size, maxReasonableSize)
	}

	return &DataTag{
		DataType: dataType,
		Size:     size,
		IsSmall:  false,
	}, nil
}

// encodeTag packs one data element (tag + payload) into a freestanding
// byte slice: small-data-element form when the payload fits in 4 bytes,
// regular form with trailing zero padding otherwise. Used to assemble
// nested matrix sub-elements before their enclosing length is known.
func encodeTag(order binary.ByteOrder, dataType uint32, data []byte) []byte {
	if len(data) <= sdeMaxPayload {
		buf := make([]byte, 8)
		firstWord := (uint32(len(data)) << 16) | (dataType & 0xFFFF)
		order.PutUint32(buf[0:4], firstWord)
		copy(buf[4:4+len(data)], data)
		return buf
	}

	//nolint:gosec // G115: data length bounded by actual payload size
	size := uint32(len(data))
	padding := (8 - size%8) % 8
	buf := make([]byte, 8+int(size)+int(padding))
	order.PutUint32(buf[0:4], dataType)
	order.PutUint32(buf[4:8], size)
	copy(buf[8:8+size], data)
	return buf
}

// writeTag writes one data element directly to the stream, per spec.md's
// SDE boundary rule (payload <= 4 bytes always uses the small form).
func (w *Writer) writeTag(dataType uint32, data []byte) error {
	buf := encodeTag(w.header.Order, dataType, data)
	n, err := w.w.Write(buf)
	w.pos += int64(n)
	return err
}

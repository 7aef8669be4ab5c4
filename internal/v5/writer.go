package v5

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gomatlab/matfile/value"
)

// Writer handles writing v5 MAT-files.
//
// The writer creates MAT-files in the v5 binary format (compatible with
// MATLAB versions v5.0 through v7.2). Files are written with a 128-byte
// header followed by data elements in Tag-Length-Value (TLV) format.
//
// Data elements inside a matrix are padded to 8-byte boundaries; the
// top-level miCOMPRESSED elements are written without trailing padding,
// matching how the parser reads them. The writer supports both little-endian ("IM")
// and big-endian ("MI") byte ordering.
type Writer struct {
	w      io.Writer
	header *Header
	pos    int64
}

// NewWriter creates a new v5 writer.
//
// The header is written immediately upon creation. All subsequent
// variable writes are appended to the file in the order written.
//
// Example:
//
//	f, _ := os.Create("output.mat")
//	defer f.Close()
//	writer, err := NewWriter(f, "created by matlab", "IM")
func NewWriter(w io.Writer, description, endian string) (*Writer, error) {
	var order binary.ByteOrder
	switch endian {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("invalid endian indicator: %q (must be IM or MI)", endian)
	}

	writer := &Writer{
		w: w,
		header: &Header{
			Description:     description,
			Version:         0x0100,
			EndianIndicator: endian,
			Order:           order,
		},
	}

	if err := writer.writeHeader(); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return writer, nil
}

// writeHeader writes the 128-byte MAT-file header.
//
// Header structure:
// - Bytes 0-115: Description text (null-terminated/padded)
// - Bytes 116-123: Subsystem data offset (zeros for standard files)
// - Bytes 124-125: Version (0x0100)
// - Bytes 126-127: Endian indicator ("MI" or "IM").
func (w *Writer) writeHeader() error {
	header := make([]byte, headerSize)

	desc := w.header.Description
	if len(desc) > descriptionSize {
		desc = desc[:descriptionSize]
	}
	copy(header, desc)

	w.header.Order.PutUint16(header[124:126], w.header.Version)
	copy(header[126:128], w.header.EndianIndicator)

	n, err := w.w.Write(header)
	if err != nil {
		return err
	}
	if n != headerSize {
		return fmt.Errorf("wrote %d bytes, expected %d", n, headerSize)
	}

	w.pos += int64(n)
	return nil
}

// WriteVariable writes one top-level variable: its matrix element is
// built in memory, then always wrapped in a miCOMPRESSED element, per
// spec.md §4.6's "top-level variables are always emitted as compressed
// matrix elements" rule.
func (w *Writer) WriteVariable(name string, v value.Value, isGlobal bool) error {
	if len(name) > 31 {
		return fmt.Errorf("%w: variable name %q exceeds 31 bytes", ErrNameTooLong, name)
	}

	matrixElement, err := encodeMatrixElement(w.header.Order, name, v, isGlobal)
	if err != nil {
		return err
	}

	compressed, err := compress(matrixElement)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionError, err)
	}

	// The miCOMPRESSED element carries no trailing padding: the parser
	// advances by exactly the declared compressed length.
	tag := make([]byte, 8)
	w.header.Order.PutUint32(tag[0:4], miCOMPRESSED)
	//nolint:gosec // G115: length bounded by the in-memory compressed buffer
	w.header.Order.PutUint32(tag[4:8], uint32(len(compressed)))
	n, err := w.w.Write(append(tag, compressed...))
	w.pos += int64(n)
	return err
}

// encodeMatrixElement builds one complete miMATRIX data element (tag +
// content, padded) for name/v.
func encodeMatrixElement(order binary.ByteOrder, name string, v value.Value, isGlobal bool) ([]byte, error) {
	content, err := encodeMatrixContent(order, name, v, isGlobal)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", name, err)
	}
	return encodeTag(order, miMATRIX, content), nil
}

// encodeNumericArray packs ints or floats (never both) into a byte
// buffer of dataType's wire representation.
func encodeNumericArray(order binary.ByteOrder, dataType uint32, floats []float64, ints []int64) []byte {
	if floats != nil {
		switch dataType {
		case miDOUBLE:
			buf := make([]byte, len(floats)*8)
			for i, f := range floats {
				order.PutUint64(buf[i*8:(i+1)*8], math.Float64bits(f))
			}
			return buf
		case miSINGLE:
			buf := make([]byte, len(floats)*4)
			for i, f := range floats {
				order.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(float32(f)))
			}
			return buf
		}
	}

	switch dataType {
	case miINT32:
		buf := make([]byte, len(ints)*4)
		for i, v := range ints {
			//nolint:gosec // G115: caller has already range-checked via guessHeader
			order.PutUint32(buf[i*4:(i+1)*4], uint32(int32(v)))
		}
		return buf
	case miINT64:
		buf := make([]byte, len(ints)*8)
		for i, v := range ints {
			order.PutUint64(buf[i*8:(i+1)*8], uint64(v))
		}
		return buf
	default:
		return nil
	}
}


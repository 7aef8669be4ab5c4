package v5

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gomatlab/matfile/value"
)

// Parser handles parsing of v5 MAT-files.
type Parser struct {
	r      io.Reader
	Header *Header
	pos    int64
}

// DecodedVariable is one top-level entry of a parsed MAT-file.
type DecodedVariable struct {
	Name     string
	IsGlobal bool
	Value    value.Value
}

// NewParser creates a new v5 parser and immediately parses the 128-byte
// file header.
func NewParser(r io.Reader) (*Parser, error) {
	p := &Parser{r: r}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) parseHeader() error {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(p.r, header); err != nil {
		return fmt.Errorf("%w: reading file header: %v", ErrCorruptFile, err)
	}
	p.pos += headerSize

	hdr, err := parseHeader(header)
	if err != nil {
		return err
	}
	p.Header = hdr
	return nil
}

// Parse reads every top-level data element until EOF, decoding each
// miMATRIX (optionally wrapped in exactly one miCOMPRESSED) into a
// DecodedVariable.
func (p *Parser) Parse() ([]DecodedVariable, error) {
	var out []DecodedVariable

	for {
		tag, err := p.readTag()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tag.DataType {
		case miMATRIX:
			dv, err := p.parseTopLevelMatrix(tag)
			if err != nil {
				return nil, err
			}
			out = append(out, dv)
		case miCOMPRESSED:
			dv, err := p.parseCompressedMatrix(tag)
			if err != nil {
				return nil, err
			}
			out = append(out, dv)
		default:
			return nil, fmt.Errorf("%w: top-level element type %d", ErrUnexpectedType, tag.DataType)
		}
	}

	return out, nil
}

func (p *Parser) parseTopLevelMatrix(tag *DataTag) (DecodedVariable, error) {
	data, err := p.readPayload(tag)
	if err != nil {
		return DecodedVariable{}, err
	}
	return decodeMatrixContent(p.Header, data)
}

func (p *Parser) parseCompressedMatrix(tag *DataTag) (DecodedVariable, error) {
	inflated, err := decompress(p.r, tag.Size)
	if err != nil {
		return DecodedVariable{}, fmt.Errorf("%w: %v", ErrCompressionError, err)
	}
	p.pos += int64(tag.Size)

	sub := &Parser{r: bytes.NewReader(inflated), Header: p.Header}
	innerTag, err := sub.readTag()
	if err != nil {
		return DecodedVariable{}, fmt.Errorf("%w: reading compressed matrix tag: %v", ErrCorruptFile, err)
	}
	if innerTag.DataType != miMATRIX {
		return DecodedVariable{}, fmt.Errorf("%w: compressed element type %d, want miMATRIX", ErrUnexpectedType, innerTag.DataType)
	}
	data, err := sub.readPayload(innerTag)
	if err != nil {
		return DecodedVariable{}, err
	}

	// Invariant: a compressed element contains exactly one Matrix and no
	// trailing bytes.
	if _, err := sub.readTag(); !errors.Is(err, io.EOF) {
		return DecodedVariable{}, fmt.Errorf("%w: non-empty residue after compressed matrix", ErrCompressionError)
	}

	return decodeMatrixContent(p.Header, data)
}

// readPayload reads the payload of tag, transparently handling the SDE
// inline form and the regular form's trailing padding.
func (p *Parser) readPayload(tag *DataTag) ([]byte, error) {
	if tag.IsSmall {
		data := make([]byte, tag.Size)
		copy(data, tag.Inline[:tag.Size])
		return data, nil
	}

	data := make([]byte, tag.Size)
	if _, err := io.ReadFull(p.r, data); err != nil {
		return nil, fmt.Errorf("%w: reading %d byte payload: %v", ErrCorruptFile, tag.Size, err)
	}
	p.pos += int64(tag.Size)

	padding := (8 - tag.Size%8) % 8
	if padding > 0 {
		if _, err := io.CopyN(io.Discard, p.r, int64(padding)); err != nil {
			return nil, fmt.Errorf("%w: reading padding: %v", ErrCorruptFile, err)
		}
		p.pos += int64(padding)
	}

	return data, nil
}

// decodeMatrixContent parses the body of a miMATRIX element (flags,
// dims, name, and class-dispatched payload) from an in-memory buffer.
func decodeMatrixContent(header *Header, data []byte) (DecodedVariable, error) {
	sub := &Parser{r: bytes.NewReader(data), Header: header}
	return sub.parseMatrixContent()
}

func (p *Parser) parseMatrixContent() (DecodedVariable, error) {
	flagsTag, err := p.readTag()
	if err != nil {
		return DecodedVariable{}, fmt.Errorf("%w: reading array flags tag: %v", ErrCorruptFile, err)
	}
	flagsData, err := p.readPayload(flagsTag)
	if err != nil {
		return DecodedVariable{}, err
	}
	if len(flagsData) != 8 {
		return DecodedVariable{}, fmt.Errorf("%w: array flags must be 8 bytes, got %d", ErrCorruptFile, len(flagsData))
	}

	// The first miUINT32 packs the class into its low byte and the
	// logical/global/complex flags into bits 9-11; the second is nzmax
	// (unused here). Treating the second word as the class was wrong.
	word0 := p.Header.Order.Uint32(flagsData[0:4])
	class := word0 & 0xFF
	isComplex := word0&arrayFlagsComplex != 0
	isGlobal := word0&arrayFlagsGlobal != 0

	dimsTag, err := p.readTag()
	if err != nil {
		return DecodedVariable{}, fmt.Errorf("%w: reading dimensions tag: %v", ErrCorruptFile, err)
	}
	dimsData, err := p.readPayload(dimsTag)
	if err != nil {
		return DecodedVariable{}, err
	}
	if len(dimsData)%4 != 0 || len(dimsData)/4 != 2 {
		return DecodedVariable{}, fmt.Errorf("%w: expected 2 dimensions, got %d", ErrCorruptFile, len(dimsData)/4)
	}
	rows := int(p.Header.Order.Uint32(dimsData[0:4]))
	cols := int(p.Header.Order.Uint32(dimsData[4:8]))

	nameTag, err := p.readTag()
	if err != nil {
		return DecodedVariable{}, fmt.Errorf("%w: reading name tag: %v", ErrCorruptFile, err)
	}
	nameData, err := p.readPayload(nameTag)
	if err != nil {
		return DecodedVariable{}, err
	}
	name := string(nameData)

	if isComplex {
		return DecodedVariable{}, fmt.Errorf("%w: complex arrays are not supported", ErrUnsupportedFeature)
	}

	var val value.Value
	switch class {
	case mxCELL_CLASS:
		val, err = p.readCellBody(rows, cols)
	case mxSTRUCT_CLASS:
		val, err = p.readStructBody(rows, cols)
	case mxCHAR_CLASS:
		val, err = p.readCharBody(rows, cols)
	case mxSPARSE_CLASS, mxOBJECT_CLASS:
		err = fmt.Errorf("%w: class %d", ErrUnsupportedFeature, class)
	default:
		if !isNumericClass(class) {
			err = fmt.Errorf("%w: class %d", ErrUnsupportedFeature, class)
			break
		}
		val, err = p.readNumericBody(rows, cols)
	}
	if err != nil {
		return DecodedVariable{}, err
	}

	return DecodedVariable{Name: name, IsGlobal: isGlobal, Value: val}, nil
}

// readNumericBody reads the single real-part data element of a numeric
// matrix, tolerating any of the "compressed numeric" type substitutions
// regardless of the matrix's declared class.
func (p *Parser) readNumericBody(rows, cols int) (value.Value, error) {
	tag, err := p.readTag()
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: reading numeric data tag: %v", ErrCorruptFile, err)
	}
	data, err := p.readPayload(tag)
	if err != nil {
		return value.Value{}, err
	}
	return decodeNumericGrid(p.Header.Order, tag.DataType, data, rows, cols)
}

// readCharBody reads and reindexes a character matrix's payload.
func (p *Parser) readCharBody(rows, cols int) (value.Value, error) {
	tag, err := p.readTag()
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: reading char data tag: %v", ErrCorruptFile, err)
	}
	data, err := p.readPayload(tag)
	if err != nil {
		return value.Value{}, err
	}
	return decodeCharGrid(data, rows, cols)
}

// readCellBody reads rows*cols child matrices in row-major emission
// order (row outer, col inner) and squeezes the result.
func (p *Parser) readCellBody(rows, cols int) (value.Value, error) {
	n := rows * cols
	items := make([]value.Value, n)
	for i := 0; i < n; i++ {
		child, err := p.readChildMatrix()
		if err != nil {
			return value.Value{}, err
		}
		items[i] = child.Value
	}
	return squeezeGrid(items, rows, cols), nil
}

// readStructBody reads the field-name-stride, field names, then
// rows*cols*fields child matrices in (row, col, field) order with field
// innermost, assembling a Record keyed by field name.
func (p *Parser) readStructBody(rows, cols int) (value.Value, error) {
	strideTag, err := p.readTag()
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: reading field name stride tag: %v", ErrCorruptFile, err)
	}
	strideData, err := p.readPayload(strideTag)
	if err != nil {
		return value.Value{}, err
	}
	if len(strideData) != 4 {
		return value.Value{}, fmt.Errorf("%w: field name stride must be 4 bytes", ErrCorruptFile)
	}
	stride := int(p.Header.Order.Uint32(strideData))
	if stride > 32 {
		return value.Value{}, fmt.Errorf("%w: struct field name stride %d exceeds 32", ErrNameTooLong, stride)
	}

	namesTag, err := p.readTag()
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: reading field names tag: %v", ErrCorruptFile, err)
	}
	namesData, err := p.readPayload(namesTag)
	if err != nil {
		return value.Value{}, err
	}
	if stride == 0 || len(namesData)%stride != 0 {
		return value.Value{}, fmt.Errorf("%w: field names block not a multiple of stride %d", ErrCorruptFile, stride)
	}
	numFields := len(namesData) / stride
	fields := make([]string, numFields)
	for i := 0; i < numFields; i++ {
		raw := namesData[i*stride : (i+1)*stride]
		fields[i] = trimNUL(raw)
	}

	perField := make([][]value.Value, numFields)
	for f := range perField {
		perField[f] = make([]value.Value, rows*cols)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for f := 0; f < numFields; f++ {
				child, err := p.readChildMatrix()
				if err != nil {
					return value.Value{}, err
				}
				perField[f][r*cols+c] = child.Value
			}
		}
	}

	rec := value.NewRecord()
	for f, name := range fields {
		rec.Set(name, squeezeGrid(perField[f], rows, cols))
	}
	return value.Rec(rec), nil
}

// readChildMatrix reads one nested, never-compressed miMATRIX element.
func (p *Parser) readChildMatrix() (DecodedVariable, error) {
	tag, err := p.readTag()
	if err != nil {
		return DecodedVariable{}, fmt.Errorf("%w: reading child matrix tag: %v", ErrCorruptFile, err)
	}
	if tag.DataType != miMATRIX {
		return DecodedVariable{}, fmt.Errorf("%w: child element type %d, want miMATRIX", ErrUnexpectedType, tag.DataType)
	}
	data, err := p.readPayload(tag)
	if err != nil {
		return DecodedVariable{}, err
	}
	return decodeMatrixContent(p.Header, data)
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// squeeze collapses a length-1 list into its sole element, recursively,
// so that e.g. a 1x1 matrix decodes to a scalar.
func squeeze(v value.Value) value.Value {
	for {
		items, ok := v.ListItems()
		if !ok || len(items) != 1 {
			return v
		}
		v = items[0]
	}
}

// squeezeGrid arranges a row-major flat slice of rows*cols values as a
// nested row-major list and applies squeeze.
func squeezeGrid(flat []value.Value, rows, cols int) value.Value {
	rowVals := make([]value.Value, rows)
	for r := 0; r < rows; r++ {
		rowItems := make([]value.Value, cols)
		copy(rowItems, flat[r*cols:(r+1)*cols])
		rowVals[r] = value.List(rowItems)
	}
	return squeeze(value.List(rowVals))
}

// decodeNumericGrid decodes a column-major payload of the declared wire
// type into a row-major, squeezed Value tree.
func decodeNumericGrid(order binary.ByteOrder, dataType uint32, data []byte, rows, cols int) (value.Value, error) {
	n := rows * cols
	floats, ints, err := decodeNumericElements(order, dataType, data, n)
	if err != nil {
		return value.Value{}, err
	}

	flat := make([]value.Value, n)
	if floats != nil {
		for i, f := range floats {
			flat[i] = value.Float(f)
		}
	} else {
		for i, iv := range ints {
			flat[i] = value.Int(iv)
		}
	}

	// flat is column-major: element (r, c) lives at c*rows + r. Reindex
	// to row-major before squeezing.
	rowMajor := make([]value.Value, n)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			rowMajor[r*cols+c] = flat[c*rows+r]
		}
	}
	return squeezeGrid(rowMajor, rows, cols), nil
}

// decodeNumericElements decodes n elements of dataType from data into
// either a float64 or an int64 slice (never both).
func decodeNumericElements(order binary.ByteOrder, dataType uint32, data []byte, n int) ([]float64, []int64, error) {
	if isFloatingDataType(dataType) {
		floats := make([]float64, n)
		switch dataType {
		case miDOUBLE:
			if len(data) < n*8 {
				return nil, nil, fmt.Errorf("%w: double array truncated", ErrCorruptFile)
			}
			for i := 0; i < n; i++ {
				bits := order.Uint64(data[i*8 : i*8+8])
				floats[i] = math.Float64frombits(bits)
			}
		case miSINGLE:
			if len(data) < n*4 {
				return nil, nil, fmt.Errorf("%w: single array truncated", ErrCorruptFile)
			}
			for i := 0; i < n; i++ {
				bits := order.Uint32(data[i*4 : i*4+4])
				floats[i] = float64(math.Float32frombits(bits))
			}
		}
		return floats, nil, nil
	}

	width, signed, err := integerWidth(dataType)
	if err != nil {
		return nil, nil, err
	}
	if len(data) < n*width {
		return nil, nil, fmt.Errorf("%w: integer array truncated", ErrCorruptFile)
	}
	ints := make([]int64, n)
	for i := 0; i < n; i++ {
		chunk := data[i*width : i*width+width]
		ints[i] = decodeInteger(order, chunk, signed)
	}
	return nil, ints, nil
}

func integerWidth(dataType uint32) (width int, signed bool, err error) {
	switch dataType {
	case miINT8:
		return 1, true, nil
	case miUINT8, miUTF8:
		return 1, false, nil
	case miINT16:
		return 2, true, nil
	case miUINT16:
		return 2, false, nil
	case miINT32:
		return 4, true, nil
	case miUINT32:
		return 4, false, nil
	case miINT64:
		return 8, true, nil
	case miUINT64:
		return 8, false, nil
	default:
		return 0, false, fmt.Errorf("%w: data type %d", ErrUnexpectedType, dataType)
	}
}

func decodeInteger(order binary.ByteOrder, chunk []byte, signed bool) int64 {
	switch len(chunk) {
	case 1:
		if signed {
			return int64(int8(chunk[0]))
		}
		return int64(chunk[0])
	case 2:
		u := order.Uint16(chunk)
		if signed {
			return int64(int16(u))
		}
		return int64(u)
	case 4:
		u := order.Uint32(chunk)
		if signed {
			return int64(int32(u))
		}
		return int64(u)
	default:
		// uint64 values beyond math.MaxInt64 fall outside the Integer
		// range this decoder represents.
		return int64(order.Uint64(chunk))
	}
}

// decodeCharGrid decodes a character matrix, treating the payload as one
// byte per element (ASCII/UTF-8 only).
func decodeCharGrid(data []byte, rows, cols int) (value.Value, error) {
	n := rows * cols
	if len(data) < n {
		return value.Value{}, fmt.Errorf("%w: char array truncated", ErrCorruptFile)
	}

	if rows <= 1 {
		return value.String(string(data[:cols])), nil
	}

	rowsOut := make([]value.Value, rows)
	for r := 0; r < rows; r++ {
		buf := make([]byte, cols)
		for c := 0; c < cols; c++ {
			buf[c] = data[c*rows+r]
		}
		rowsOut[r] = value.String(string(buf))
	}
	return value.List(rowsOut), nil
}

package v5

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gomatlab/matfile/value"
)

// planKind distinguishes the four matrix body shapes the encoder emits.
type planKind int

const (
	kindNumeric planKind = iota
	kindChar
	kindCell
	kindStruct
)

// encodePlan is the result of guessHeader: enough information to write
// one matrix's flags/dims/name preamble and dispatch to the right body
// writer.
type encodePlan struct {
	class uint32
	rows  int
	cols  int
	kind  planKind

	// kindNumeric: row-major flat of length rows*cols, exactly one of
	// numFloats/numInts populated.
	numDataType uint32
	numFloats   []float64
	numInts     []int64

	// kindChar: one string per row (length 0 for the empty string).
	charRows []string

	// kindCell: row-major flat of length rows*cols.
	cellItems []value.Value

	// kindStruct: rows is always 1. structGrid[f] has length cols,
	// structFields[f] is its name.
	structFields []string
	structGrid   [][]value.Value
}

// guessHeader classifies v into a mclass/element-type/dims plan per the
// disjoint ladder: string, empty list, record, integer scalar, float
// scalar, 1-D numeric list, mixed-number list, unequal-length list of
// lists, list of equal-length strings, equal-length list of lists
// (2-D numeric), heterogeneous list, anything else.
func guessHeader(v value.Value) (encodePlan, error) {
	v = squeeze(v)

	switch v.Kind() {
	case value.KindString:
		return classifyString(v), nil
	case value.KindRecord:
		return classifyStruct(v)
	case value.KindInteger:
		return classifyIntScalar(v), nil
	case value.KindFloat:
		f, _ := v.Float()
		return encodePlan{class: mxDOUBLE_CLASS, rows: 1, cols: 1, kind: kindNumeric,
			numDataType: miDOUBLE, numFloats: []float64{f}}, nil
	case value.KindList:
		items, _ := v.ListItems()
		return classifyList(items)
	default:
		return encodePlan{}, fmt.Errorf("%w: value kind %v", ErrUnrepresentable, v.Kind())
	}
}

func classifyString(v value.Value) encodePlan {
	s, _ := v.Str()
	rows := 1
	if s == "" {
		rows = 0
	}
	plan := encodePlan{class: mxCHAR_CLASS, rows: rows, cols: len(s), kind: kindChar}
	if rows == 1 {
		plan.charRows = []string{s}
	}
	return plan
}

func classifyIntScalar(v value.Value) encodePlan {
	i, _ := v.Int()
	class, dt := uint32(mxINT32_CLASS), uint32(miINT32)
	if i > math.MaxInt32 || i < math.MinInt32 {
		class, dt = mxINT64_CLASS, miINT64
	}
	return encodePlan{class: class, rows: 1, cols: 1, kind: kindNumeric,
		numDataType: dt, numInts: []int64{i}}
}

func classifyList(items []value.Value) (encodePlan, error) {
	if len(items) == 0 {
		return encodePlan{class: mxINT32_CLASS, rows: 0, cols: 0, kind: kindNumeric, numDataType: miINT32}, nil
	}

	if allScalarNumbers(items) {
		if allIntegers(items) {
			ints := toInts(items)
			class, dt := uint32(mxINT32_CLASS), uint32(miINT32)
			if anyExceedsInt32(ints) {
				class, dt = mxINT64_CLASS, miINT64
			}
			return encodePlan{class: class, rows: 1, cols: len(items), kind: kindNumeric,
				numDataType: dt, numInts: ints}, nil
		}
		return encodePlan{class: mxDOUBLE_CLASS, rows: 1, cols: len(items), kind: kindNumeric,
			numDataType: miDOUBLE, numFloats: toFloatsWidened(items)}, nil
	}

	if allStrings(items) {
		if rows, ok := equalLengthStrings(items); ok {
			cols := 0
			if len(rows) > 0 {
				cols = len(rows[0])
			}
			return encodePlan{class: mxCHAR_CLASS, rows: len(rows), cols: cols, kind: kindChar, charRows: rows}, nil
		}
		return encodePlan{class: mxCELL_CLASS, rows: 1, cols: len(items), kind: kindCell, cellItems: items}, nil
	}

	if allLists(items) {
		if plan, ok := classify2DNumeric(items); ok {
			return plan, nil
		}
		return encodePlan{class: mxCELL_CLASS, rows: 1, cols: len(items), kind: kindCell, cellItems: items}, nil
	}

	return encodePlan{class: mxCELL_CLASS, rows: 1, cols: len(items), kind: kindCell, cellItems: items}, nil
}

func classifyStruct(v value.Value) (encodePlan, error) {
	rec, _ := v.Record()
	keys := rec.Keys()

	lengths := make([]int, len(keys))
	for i, k := range keys {
		fv, _ := rec.Get(k)
		if items, ok := fv.ListItems(); ok {
			lengths[i] = len(items)
		} else {
			lengths[i] = 1
		}
	}
	uniform := len(lengths) > 0
	for _, l := range lengths {
		if l != lengths[0] {
			uniform = false
			break
		}
	}

	cols := 1
	if uniform && len(lengths) > 0 {
		cols = lengths[0]
	}

	grid := make([][]value.Value, len(keys))
	for i, k := range keys {
		fv, _ := rec.Get(k)
		if uniform {
			if items, ok := fv.ListItems(); ok {
				grid[i] = items
				continue
			}
			grid[i] = []value.Value{fv}
			continue
		}
		grid[i] = []value.Value{fv}
	}

	for _, name := range keys {
		if len(name) > 31 {
			return encodePlan{}, fmt.Errorf("%w: struct field name %q exceeds 31 bytes", ErrNameTooLong, name)
		}
	}

	return encodePlan{class: mxSTRUCT_CLASS, rows: 1, cols: cols, kind: kindStruct,
		structFields: keys, structGrid: grid}, nil
}

// classify2DNumeric handles the 2-D list case: every item is itself a
// list of equal length, and every leaf is a scalar number.
func classify2DNumeric(items []value.Value) (encodePlan, bool) {
	rows := len(items)
	var cols int
	rowItems := make([][]value.Value, rows)
	for i, row := range items {
		ri, ok := row.ListItems()
		if !ok {
			return encodePlan{}, false
		}
		if i == 0 {
			cols = len(ri)
		} else if len(ri) != cols {
			return encodePlan{}, false
		}
		rowItems[i] = ri
	}

	flat := make([]value.Value, 0, rows*cols)
	for _, ri := range rowItems {
		flat = append(flat, ri...)
	}
	if !allScalarNumbers(flat) {
		return encodePlan{}, false
	}

	if allIntegers(flat) {
		ints := toInts(flat)
		class, dt := uint32(mxINT32_CLASS), uint32(miINT32)
		if anyExceedsInt32(ints) {
			class, dt = mxINT64_CLASS, miINT64
		}
		return encodePlan{class: class, rows: rows, cols: cols, kind: kindNumeric, numDataType: dt, numInts: ints}, true
	}
	return encodePlan{class: mxDOUBLE_CLASS, rows: rows, cols: cols, kind: kindNumeric,
		numDataType: miDOUBLE, numFloats: toFloatsWidened(flat)}, true
}

func allScalarNumbers(items []value.Value) bool {
	for _, it := range items {
		if it.Kind() != value.KindInteger && it.Kind() != value.KindFloat {
			return false
		}
	}
	return true
}

func allIntegers(items []value.Value) bool {
	for _, it := range items {
		if it.Kind() != value.KindInteger {
			return false
		}
	}
	return true
}

func allStrings(items []value.Value) bool {
	for _, it := range items {
		if it.Kind() != value.KindString {
			return false
		}
	}
	return true
}

func allLists(items []value.Value) bool {
	for _, it := range items {
		if it.Kind() != value.KindList {
			return false
		}
	}
	return true
}

func toInts(items []value.Value) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		n, _ := it.Int()
		out[i] = n
	}
	return out
}

func toFloatsWidened(items []value.Value) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.AsFloat64()
	}
	return out
}

func anyExceedsInt32(ints []int64) bool {
	for _, i := range ints {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return true
		}
	}
	return false
}

func equalLengthStrings(items []value.Value) ([]string, bool) {
	out := make([]string, len(items))
	for i, it := range items {
		s, _ := it.Str()
		out[i] = s
	}
	for i := 1; i < len(out); i++ {
		if len(out[i]) != len(out[0]) {
			return nil, false
		}
	}
	return out, true
}

// encodeMatrixContent encodes the flags/dims/name preamble and the
// class-dispatched body for one matrix (top-level or nested).
func encodeMatrixContent(order binary.ByteOrder, name string, v value.Value, isGlobal bool) ([]byte, error) {
	plan, err := guessHeader(v)
	if err != nil {
		return nil, err
	}

	flags := encodeArrayFlags(order, plan.class, isGlobal)
	dims := encodeDimensions(order, plan.rows, plan.cols)
	nameBytes := encodeTag(order, miINT8, []byte(name))

	var body []byte
	switch plan.kind {
	case kindNumeric:
		body = emitNumericBody(order, plan)
	case kindChar:
		body = emitCharBody(order, plan)
	case kindCell:
		body, err = emitCellBody(order, plan)
	case kindStruct:
		body, err = emitStructBody(order, plan)
	}
	if err != nil {
		return nil, err
	}

	content := make([]byte, 0, len(flags)+len(dims)+len(nameBytes)+len(body))
	content = append(content, flags...)
	content = append(content, dims...)
	content = append(content, nameBytes...)
	content = append(content, body...)
	return content, nil
}

func encodeArrayFlags(order binary.ByteOrder, class uint32, isGlobal bool) []byte {
	word0 := class & 0xFF
	if isGlobal {
		word0 |= arrayFlagsGlobal
	}
	data := make([]byte, 8)
	order.PutUint32(data[0:4], word0)
	return encodeTag(order, miUINT32, data)
}

func encodeDimensions(order binary.ByteOrder, rows, cols int) []byte {
	data := make([]byte, 8)
	//nolint:gosec // G115: dims are small, validated counts
	order.PutUint32(data[0:4], uint32(rows))
	//nolint:gosec // G115: dims are small, validated counts
	order.PutUint32(data[4:8], uint32(cols))
	return encodeTag(order, miINT32, data)
}

// emitNumericBody transposes the plan's row-major values to column-major
// wire order and packs them as plan.numDataType.
func emitNumericBody(order binary.ByteOrder, plan encodePlan) []byte {
	rows, cols := plan.rows, plan.cols
	n := rows * cols

	if plan.numFloats != nil {
		colMajor := make([]float64, n)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				colMajor[c*rows+r] = plan.numFloats[r*cols+c]
			}
		}
		return encodeTag(order, plan.numDataType, encodeNumericArray(order, plan.numDataType, colMajor, nil))
	}

	colMajor := make([]int64, n)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			colMajor[c*rows+r] = plan.numInts[r*cols+c]
		}
	}
	return encodeTag(order, plan.numDataType, encodeNumericArray(order, plan.numDataType, nil, colMajor))
}

func emitCharBody(order binary.ByteOrder, plan encodePlan) []byte {
	rows, cols := plan.rows, plan.cols
	buf := make([]byte, rows*cols)
	for r := 0; r < rows; r++ {
		row := plan.charRows[r]
		for c := 0; c < cols; c++ {
			buf[c*rows+r] = row[c]
		}
	}
	return encodeTag(order, miUTF8, buf)
}

func emitCellBody(order binary.ByteOrder, plan encodePlan) ([]byte, error) {
	var buf []byte
	for _, item := range plan.cellItems {
		childContent, err := encodeMatrixContent(order, "", item, false)
		if err != nil {
			return nil, err
		}
		buf = append(buf, encodeTag(order, miMATRIX, childContent)...)
	}
	return buf, nil
}

// structFieldStride is the fixed field-name slot width used on write;
// real-world MAT-files produced by MATLAB itself use the same constant.
const structFieldStride = 32

func emitStructBody(order binary.ByteOrder, plan encodePlan) ([]byte, error) {
	strideData := make([]byte, 4)
	order.PutUint32(strideData, structFieldStride)
	strideTag := encodeTag(order, miINT32, strideData)

	namesBuf := make([]byte, structFieldStride*len(plan.structFields))
	for i, name := range plan.structFields {
		copy(namesBuf[i*structFieldStride:(i+1)*structFieldStride], name)
	}
	namesTag := encodeTag(order, miINT8, namesBuf)

	buf := make([]byte, 0, len(strideTag)+len(namesTag))
	buf = append(buf, strideTag...)
	buf = append(buf, namesTag...)

	for col := 0; col < plan.cols; col++ {
		for _, fieldVals := range plan.structGrid {
			childContent, err := encodeMatrixContent(order, "", fieldVals[col], false)
			if err != nil {
				return nil, err
			}
			buf = append(buf, encodeTag(order, miMATRIX, childContent)...)
		}
	}
	return buf, nil
}

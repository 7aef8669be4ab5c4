package v5

// MATLAB data type (element type) constants, as they appear in tags.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
)

// MATLAB array class constants, packed into the low byte of array flags.
//
//nolint:revive // MATLAB official naming convention from specification
const (
	mxCELL_CLASS   = 1
	mxSTRUCT_CLASS = 2
	mxOBJECT_CLASS = 3
	mxCHAR_CLASS   = 4
	mxSPARSE_CLASS = 5
	mxDOUBLE_CLASS = 6
	mxSINGLE_CLASS = 7
	mxINT8_CLASS   = 8
	mxUINT8_CLASS  = 9
	mxINT16_CLASS  = 10
	mxUINT16_CLASS = 11
	mxINT32_CLASS  = 12
	mxUINT32_CLASS = 13
	mxINT64_CLASS  = 14
	mxUINT64_CLASS = 15

	arrayFlagsComplex = 1 << 11
	arrayFlagsGlobal  = 1 << 10
	arrayFlagsLogical = 1 << 9
)

// isNumericClass reports whether class is one of the plain numeric
// (non-Char, non-Cell, non-Struct) array classes.
func isNumericClass(class uint32) bool {
	switch class {
	case mxDOUBLE_CLASS, mxSINGLE_CLASS,
		mxINT8_CLASS, mxUINT8_CLASS,
		mxINT16_CLASS, mxUINT16_CLASS,
		mxINT32_CLASS, mxUINT32_CLASS,
		mxINT64_CLASS, mxUINT64_CLASS:
		return true
	default:
		return false
	}
}

// isFloatingDataType reports whether a tag's declared element type
// decodes to float64 (as opposed to int64).
func isFloatingDataType(dataType uint32) bool {
	return dataType == miDOUBLE || dataType == miSINGLE
}

package v5

import "errors"

// Sentinel errors shared by the v5 decoder and encoder. The root package
// re-exports these directly so callers can errors.Is against one set of
// names regardless of which layer raised them.
var (
	ErrCorruptFile        = errors.New("corrupt MAT-file")
	ErrUnsupportedVersion = errors.New("unsupported MAT-file version")
	ErrUnsupportedFeature = errors.New("unsupported feature")
	ErrUnexpectedType     = errors.New("unexpected element type")
	ErrDuplicateName      = errors.New("duplicate variable name")
	ErrUnrepresentable    = errors.New("value not representable in a MAT-file")
	ErrNameTooLong        = errors.New("name too long")
	ErrCompressionError   = errors.New("compression error")
)

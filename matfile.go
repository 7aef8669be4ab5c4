// Package matlab decodes and encodes MATLAB Level-5 MAT-files into a
// neutral value tree (see the value package). It supports the v5-v7.2
// binary container format; v7.3+ (HDF5-based) files are out of scope.
package matlab

import (
	"fmt"
	"io"
	"os"

	"github.com/gomatlab/matfile/internal/v5"
	"github.com/gomatlab/matfile/value"
)

// Sentinel errors, re-exported from internal/v5 so callers can use
// errors.Is against the root package without reaching into internal/v5.
var (
	ErrCorruptFile        = v5.ErrCorruptFile
	ErrUnsupportedVersion = v5.ErrUnsupportedVersion
	ErrUnsupportedFeature = v5.ErrUnsupportedFeature
	ErrUnexpectedType     = v5.ErrUnexpectedType
	ErrDuplicateName      = v5.ErrDuplicateName
	ErrUnrepresentable    = v5.ErrUnrepresentable
	ErrNameTooLong        = v5.ErrNameTooLong
	ErrCompressionError   = v5.ErrCompressionError
)

// Decode reads a MAT-file from r and returns its variables as a Record
// keyed by variable name. Top-level variable names must be unique;
// a repeated name yields ErrDuplicateName.
//
// With WithMetadata, two reserved keys are added to the result:
// "__header__" (a Record with description/subsystem_offset/version/
// endian_test/__version__) and "__globals__" (a List of the names
// whose header carried the global flag).
func Decode(r io.Reader, opts ...DecodeOption) (*value.Record, error) {
	cfg := defaultDecodeConfig()
	applyDecodeOptions(cfg, opts)

	parser, err := v5.NewParser(r)
	if err != nil {
		return nil, err
	}

	vars, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	rec := value.NewRecord()
	var globals []value.Value
	for _, dv := range vars {
		if _, exists := rec.Get(dv.Name); exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, dv.Name)
		}
		rec.Set(dv.Name, dv.Value)
		if dv.IsGlobal {
			globals = append(globals, value.String(dv.Name))
		}
	}

	if cfg.includeMetadata {
		hdr := value.NewRecord()
		hdr.Set("description", value.String(parser.Header.Description))
		hdr.Set("subsystem_offset", value.String(parser.Header.SubsystemOffset))
		hdr.Set("version", value.Int(int64(parser.Header.Version)))
		hdr.Set("endian_test", value.String(parser.Header.EndianIndicator))
		hdr.Set("__version__", value.String(parser.Header.VersionString()))
		rec.Set("__header__", value.Rec(hdr))
		rec.Set("__globals__", value.List(globals))
	}

	return rec, nil
}

// DecodeFile opens path and decodes it, closing the file on every exit
// path including errors.
func DecodeFile(path string, opts ...DecodeOption) (*value.Record, error) {
	//nolint:gosec // G304: path is provided by the caller for MAT-file decoding, expected behavior
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle, nothing to flush

	return Decode(f, opts...)
}

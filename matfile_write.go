package matlab

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gomatlab/matfile/internal/v5"
	"github.com/gomatlab/matfile/value"
)

// metaHeaderKey and metaGlobalsKey mirror the reserved keys Decode adds
// under WithMetadata; Encode recognizes them on the way back out so a
// Record round-tripped through Decode(..., WithMetadata()) re-emits the
// same global flags instead of writing them as ordinary variables.
const (
	metaHeaderKey  = "__header__"
	metaGlobalsKey = "__globals__"
)

// Encode writes data to w as a MAT-file, one compressed matrix element
// per top-level key. data must be a Record; each value is classified
// independently by the type inference encoder (see internal/v5).
//
// The reserved "__header__" and "__globals__" keys, if present (as
// added by Decode's WithMetadata), are not written as variables;
// "__globals__" instead controls which variables are flagged global.
func Encode(w io.Writer, data *value.Record, opts ...EncodeOption) error {
	cfg := defaultEncodeConfig()
	applyEncodeOptions(cfg, opts)

	endian := "IM"
	if cfg.endianness == binary.BigEndian {
		endian = "MI"
	}

	writer, err := v5.NewWriter(w, cfg.description, endian)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	globals := globalNameSet(data)

	for _, name := range data.Keys() {
		if name == metaHeaderKey || name == metaGlobalsKey {
			continue
		}
		v, _ := data.Get(name)
		if err := writer.WriteVariable(name, v, globals[name]); err != nil {
			return fmt.Errorf("encoding %q: %w", name, err)
		}
	}

	return nil
}

// globalNameSet extracts the set of names listed under "__globals__",
// if present.
func globalNameSet(data *value.Record) map[string]bool {
	out := make(map[string]bool)
	gv, ok := data.Get(metaGlobalsKey)
	if !ok {
		return out
	}
	items, ok := gv.ListItems()
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.Str(); ok {
			out[s] = true
		}
	}
	return out
}

// EncodeFile creates (or truncates) path and encodes data into it,
// closing the file on every exit path including errors.
func EncodeFile(path string, data *value.Record, opts ...EncodeOption) error {
	//nolint:gosec // G304: path is provided by the caller for MAT-file creation, expected behavior
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // error surfaced below if Encode fails; best-effort otherwise

	if err := Encode(f, data, opts...); err != nil {
		return err
	}
	return f.Close()
}

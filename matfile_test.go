package matlab

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gomatlab/matfile/internal/v5"
	"github.com/gomatlab/matfile/value"
)

func TestDecode_SimpleVariables(t *testing.T) {
	var buf bytes.Buffer
	writer, err := v5.NewWriter(&buf, "Test file", "MI")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := writer.WriteVariable("x", value.Int(42), false); err != nil {
		t.Fatalf("WriteVariable() error = %v", err)
	}
	if err := writer.WriteVariable("s", value.String("hello"), false); err != nil {
		t.Fatalf("WriteVariable() error = %v", err)
	}

	rec, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	tests := []struct {
		name    string
		varName string
		want    value.Value
	}{
		{"integer scalar", "x", value.Int(42)},
		{"string", "s", value.String("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rec.Get(tt.varName)
			if !ok {
				t.Fatalf("Get(%q) missing", tt.varName)
			}
			if !value.Equal(got, tt.want) {
				t.Errorf("Get(%q) = %+v, want %+v", tt.varName, got, tt.want)
			}
		})
	}

	if _, ok := rec.Get("nonexistent"); ok {
		t.Errorf("Get(%q) found a value, want none", "nonexistent")
	}
}

func TestDecode_DuplicateName(t *testing.T) {
	var buf bytes.Buffer
	writer, err := v5.NewWriter(&buf, "Test file", "MI")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := writer.WriteVariable("x", value.Int(1), false); err != nil {
		t.Fatalf("WriteVariable() error = %v", err)
	}
	if err := writer.WriteVariable("x", value.Int(2), false); err != nil {
		t.Fatalf("WriteVariable() error = %v", err)
	}

	_, err = Decode(bytes.NewReader(buf.Bytes()))
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Decode() error = %v, want ErrDuplicateName", err)
	}
}

func TestDecode_WithMetadata(t *testing.T) {
	var buf bytes.Buffer
	writer, err := v5.NewWriter(&buf, "Test file", "MI")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := writer.WriteVariable("g", value.Int(1), true); err != nil {
		t.Fatalf("WriteVariable() error = %v", err)
	}

	rec, err := Decode(bytes.NewReader(buf.Bytes()), WithMetadata())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	hdrVal, ok := rec.Get("__header__")
	if !ok {
		t.Fatal("missing __header__")
	}
	hdr, ok := hdrVal.Record()
	if !ok {
		t.Fatal("__header__ is not a Record")
	}
	if desc, _ := hdr.Get("description"); !value.Equal(desc, value.String("Test file")) {
		t.Errorf("description = %+v, want %+v", desc, value.String("Test file"))
	}

	globalsVal, ok := rec.Get("__globals__")
	if !ok {
		t.Fatal("missing __globals__")
	}
	items, ok := globalsVal.ListItems()
	if !ok || len(items) != 1 || !value.Equal(items[0], value.String("g")) {
		t.Errorf("__globals__ = %+v, want [g]", globalsVal)
	}
}

func TestDecode_CorruptFile(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a mat file")))
	if err == nil {
		t.Fatal("Decode() error = nil, want non-nil")
	}
}

func TestDecodeFile_MissingFile(t *testing.T) {
	_, err := DecodeFile("testdata/does-not-exist.mat")
	if err == nil {
		t.Fatal("DecodeFile() error = nil, want non-nil")
	}
}

package matlab

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomatlab/matfile/value"
)

func TestEncodeFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test_create.mat")

	data := value.NewRecord()
	data.Set("x", value.Int(1))

	if err := EncodeFile(tmpFile, data); err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}

	if _, err := os.Stat(tmpFile); os.IsNotExist(err) {
		t.Error("File was not created")
	}
}

func TestEncodeFile_InvalidPath(t *testing.T) {
	data := value.NewRecord()
	err := EncodeFile(filepath.Join("does", "not", "exist", "x.mat"), data)
	if err == nil {
		t.Error("EncodeFile() expected error for unwritable path, got nil")
	}
}

func TestEncode_NameTooLong(t *testing.T) {
	data := value.NewRecord()
	data.Set(strings.Repeat("a", 32), value.Int(1))

	var buf bytes.Buffer
	err := Encode(&buf, data)
	if !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("Encode() error = %v, want ErrNameTooLong", err)
	}
}

// TestEncode_AllScenarios exercises the six example variables named in
// spec.md §8: an int scalar, a 2x2 double matrix, a string, a struct of
// two ints, a mixed cell array, and an int64-sized scalar.
func TestEncode_AllScenarios(t *testing.T) {
	floatRow := func(a, b float64) value.Value {
		return value.List([]value.Value{value.Float(a), value.Float(b)})
	}
	rec := value.NewRecord()
	rec.Set("a", value.Int(1))
	rec.Set("b", value.Int(2))

	structRec := value.NewRecord()
	structRec.Set("a", value.Int(1))
	structRec.Set("b", value.Int(2))

	data := value.NewRecord()
	data.Set("x", value.Int(42))
	data.Set("m", value.List([]value.Value{floatRow(1.0, 2.0), floatRow(3.0, 4.0)}))
	data.Set("s", value.String("hello"))
	data.Set("r", value.Rec(structRec))
	data.Set("c", value.List([]value.Value{
		value.Int(1),
		value.String("two"),
		value.List([]value.Value{value.Int(3), value.Int(4)}),
	}))
	data.Set("big", value.Int(3000000000))

	var buf bytes.Buffer
	if err := Encode(&buf, data); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, name := range data.Keys() {
		want, _ := data.Get(name)
		gotVal, ok := got.Get(name)
		if !ok {
			t.Fatalf("decoded record missing %q", name)
		}
		if !value.Equal(gotVal, want) {
			t.Errorf("%s = %+v, want %+v", name, gotVal, want)
		}
	}
}

func TestEncode_Endianness(t *testing.T) {
	var buf bytes.Buffer
	data := value.NewRecord()
	data.Set("x", value.Float(3.5))

	if err := Encode(&buf, data); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()), WithMetadata())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	hdrVal, _ := got.Get("__header__")
	hdr, _ := hdrVal.Record()
	endian, _ := hdr.Get("endian_test")
	if !value.Equal(endian, value.String("IM")) {
		t.Errorf("default endian_test = %+v, want %+v", endian, value.String("IM"))
	}
}

// Command generate-testdata creates minimal v5 MAT-files under
// testdata/generated/ using the library's own Encode path (dogfooding).
//
// Usage: go run ./scripts/generate-testdata
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gomatlab/matfile"
	"github.com/gomatlab/matfile/value"
)

func main() {
	testdataDir := filepath.Join("testdata", "generated")
	if err := os.MkdirAll(testdataDir, 0o755); err != nil {
		log.Fatalf("creating testdata directory: %v", err)
	}

	tests := []struct {
		filename string
		data     *value.Record
		desc     string
	}{
		{
			filename: "simple_double.mat",
			data:     record("data", value.List(floats(1, 2, 3, 4, 5))),
			desc:     "simple 1D double array",
		},
		{
			filename: "simple_int32.mat",
			data:     record("values", value.List(ints(10, 20, 30, 40))),
			desc:     "simple 1D int array",
		},
		{
			filename: "scalar.mat",
			data:     record("x", value.Float(42.0)),
			desc:     "scalar value",
		},
		{
			filename: "matrix_2x3.mat",
			data: record("matrix", value.List([]value.Value{
				value.List(floats(1, 2, 3)),
				value.List(floats(4, 5, 6)),
			})),
			desc: "2x3 matrix",
		},
		{
			filename: "string_scalar.mat",
			data:     record("s", value.String("hello")),
			desc:     "character array",
		},
		{
			filename: "struct_scalar.mat",
			data: record("r", value.Rec(func() *value.Record {
				r := value.NewRecord()
				r.Set("a", value.Int(1))
				r.Set("b", value.Int(2))
				return r
			}())),
			desc: "scalar struct with two fields",
		},
		{
			filename: "cell_mixed.mat",
			data: record("c", value.List([]value.Value{
				value.Int(1),
				value.String("two"),
				value.List(ints(3, 4)),
			})),
			desc: "mixed cell array",
		},
	}

	for _, test := range tests {
		filename := filepath.Join(testdataDir, test.filename)
		if err := matlab.EncodeFile(filename, test.data); err != nil {
			log.Fatalf("encoding %s (%s): %v", test.filename, test.desc, err)
		}
		fmt.Printf("wrote %s: %s\n", filename, test.desc)
	}

	fmt.Printf("generated %d test files in %s\n", len(tests), testdataDir)
}

func record(name string, v value.Value) *value.Record {
	r := value.NewRecord()
	r.Set(name, v)
	return r
}

func floats(vals ...float64) []value.Value {
	out := make([]value.Value, len(vals))
	for i, v := range vals {
		out[i] = value.Float(v)
	}
	return out
}

func ints(vals ...int64) []value.Value {
	out := make([]value.Value, len(vals))
	for i, v := range vals {
		out[i] = value.Int(v)
	}
	return out
}

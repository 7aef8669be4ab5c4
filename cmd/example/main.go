// Package main provides an example of using the MAT-file codec library.
package main

import (
	"fmt"
	"log"

	"github.com/gomatlab/matfile"
)

func main() {
	rec, err := matlab.DecodeFile("data.mat", matlab.WithMetadata())
	if err != nil {
		log.Fatal(err)
	}

	if hdrVal, ok := rec.Get("__header__"); ok {
		if hdr, ok := hdrVal.Record(); ok {
			desc, _ := hdr.Get("description")
			version, _ := hdr.Get("__version__")
			fmt.Println("MAT-file version:", version)
			fmt.Println("Description:", desc)
		}
	}

	for i, name := range rec.Keys() {
		if name == "__header__" || name == "__globals__" {
			continue
		}
		v, _ := rec.Get(name)
		fmt.Printf("%d. %s: %s\n", i+1, name, v.Kind())
	}
}

// Command scale encodes, decodes and sizes values of SCALE type
// expressions.
//
//	scale encode --type "Vec<Compact<u32>>" --value "[1, 64]"
//	scale decode --type "Option<u8>" --hex 0x0105
//	scale bound --type "(u8, Compact<u32>)"
//	scale hash --hasher blake2_128_concat --hex 0x2a000000
//
// Named types are loaded with --registry types.yaml.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "scale: %s\n", err)
		os.Exit(1)
	}
}

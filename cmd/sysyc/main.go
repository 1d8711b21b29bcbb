// Command sysyc compiles a SysY source file to Koopa-style IR text or
// RISC-V32 assembly text.
package main

import (
	"fmt"
	"os"

	"github.com/amane-ame/sysy-compiler/internal/compiler"
)

func main() {
	var debug bool
	var rest []string
	for _, a := range os.Args[1:] {
		if a == "-debug" {
			debug = true
		} else {
			rest = append(rest, a)
		}
	}

	// Wrong arity is a fatal error with no diagnostics.
	if len(rest) != 4 || rest[2] != "-o" {
		os.Exit(1)
	}
	modeArg, input, output := rest[0], rest[1], rest[3]

	compiler.SetDebug(debug)

	var mode compiler.Mode
	switch modeArg {
	case "-koopa":
		mode = compiler.ModeKoopa
	case "-riscv":
		mode = compiler.ModeRISCV
	default:
		fmt.Fprintf(os.Stderr, "sysyc: unknown mode %q\n", modeArg)
		os.Exit(1)
	}

	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sysyc: %v\n", err)
		os.Exit(1)
	}

	out, err := compiler.Compile(src, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sysyc: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(out)
	if err := os.WriteFile(output, []byte(out), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "sysyc: %v\n", err)
		os.Exit(1)
	}
}

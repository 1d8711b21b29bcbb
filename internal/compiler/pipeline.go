package compiler

import (
	"github.com/pkg/errors"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

// Mode selects compile's output form.
type Mode int

const (
	ModeKoopa Mode = iota
	ModeRISCV
)

// Compile runs the full pipeline: parse source, lower to
// IR, then either render the IR's textual form directly (ModeKoopa) or
// round-trip it through EmitText/ParseText before handing it to Codegen
// (ModeRISCV) — the round-trip normalizes every operand back-reference the
// same way the external IR library's own re-parse would.
func Compile(source []byte, mode Mode) (string, error) {
	cu, err := parser.Parse(source)
	if err != nil {
		return "", errors.Wrap(err, "parse")
	}
	dbg.Printf("parsed %d top-level item(s)", len(cu.Items))

	prog, err := Lower(cu)
	if err != nil {
		return "", errors.Wrap(err, "lower")
	}

	text := EmitText(prog)
	if mode == ModeKoopa {
		return text, nil
	}

	rebuilt, err := ParseText(text)
	if err != nil {
		return "", errors.Wrap(err, "internal: IR text round-trip")
	}
	return Codegen(rebuilt), nil
}

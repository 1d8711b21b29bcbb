package compiler

import (
	"io"
	"log"
	"os"

	"github.com/mewkiz/pkg/term"
)

// warn and dbg are package-level diagnostic loggers, grounded on
// other_examples' mewmew/x disassembler (`dbg = log.New(os.Stderr,
// term.MagentaBold("x86:")+" ", 0)`). dbg is silenced unless SetDebug(true)
// is called; warn always prints.
var (
	warn = log.New(os.Stderr, term.RedBold("warning:")+" ", 0)
	dbg  = log.New(io.Discard, term.MagentaBold("sysyc:")+" ", 0)
)

// SetDebug toggles whether dbg actually writes to stderr, driven by the
// cmd/sysyc CLI's -debug flag.
func SetDebug(enabled bool) {
	if enabled {
		dbg.SetOutput(os.Stderr)
	} else {
		dbg.SetOutput(io.Discard)
	}
}

// internal/clibase/examples.go
package clibase

import (
	"errors"
	"fmt"
	"io"
)

// ErrPrintedAndExitOK is returned by ParseArgs for --examples; the app
// prints the examples and exits 0.
var ErrPrintedAndExitOK = errors.New("examples requested")

// Example is one quickstart entry; "%[1]s" in Cmd expands to the program name.
type Example struct {
	Desc string
	Cmd  string
}

// PrintExamples writes a quickstart block for name followed by a pointer
// to --help. A nil out is a no-op.
func PrintExamples(out io.Writer, name string, examples []Example) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "%s quickstart\n", name)
	for _, ex := range examples {
		_, _ = fmt.Fprintf(out, "\n  # %[2]s\n  "+ex.Cmd+"\n", name, ex.Desc)
	}
	_, _ = fmt.Fprintf(out, "\nTip: run %s --help for all flags.\n", name)
}

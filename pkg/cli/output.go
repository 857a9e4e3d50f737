package cli

import (
	"fmt"
	"io"
)

// Printer writes human-facing command output. Separate from the
// structured service logs so command output stays greppable.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Okf prints a success line prefixed with a check mark.
func (p *Printer) Okf(format string, args ...any) {
	fmt.Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Failf prints a failure line prefixed with a cross.
func (p *Printer) Failf(format string, args ...any) {
	fmt.Fprintf(p.out, "✗ "+format+"\n", args...)
}

// Printf prints a plain line.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

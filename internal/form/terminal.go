package form

import (
	"fmt"
	"io"
)

// TerminalSurface prints status lines to one writer and the generated reply
// to another, so the reply alone can be piped.
type TerminalSurface struct {
	status io.Writer
	out    io.Writer
}

func NewTerminalSurface(status, out io.Writer) *TerminalSurface {
	return &TerminalSurface{status: status, out: out}
}

func (t *TerminalSurface) SetStatus(msg string) {
	fmt.Fprintln(t.status, msg)
}

func (t *TerminalSurface) SetSubmitEnabled(bool) {}

func (t *TerminalSurface) ShowReply(text string) {
	fmt.Fprintln(t.out, text)
}

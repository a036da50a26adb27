package conversation

import (
	"fmt"
	"io"
	"strings"
)

// TerminalView prints turns as plain text blocks. A terminal scrolls on its
// own, so ScrollToLatest only records that it was asked.
type TerminalView struct {
	w        io.Writer
	scrolled bool
}

func NewTerminalView(w io.Writer) *TerminalView {
	return &TerminalView{w: w}
}

func (v *TerminalView) Clear() {
	v.scrolled = false
}

func (v *TerminalView) ShowEmpty(hint string) {
	fmt.Fprintln(v.w, hint)
}

func (v *TerminalView) ShowTurns(turns []Turn) {
	for i, t := range turns {
		if i > 0 {
			fmt.Fprintln(v.w)
		}
		fmt.Fprintf(v.w, "[%s]\n", t.Label)
		fmt.Fprintln(v.w, strings.TrimRight(t.Content, "\n"))
	}
}

func (v *TerminalView) ScrollToLatest() {
	v.scrolled = true
}

// Scrolled reports whether the last render ended at the latest turn.
func (v *TerminalView) Scrolled() bool {
	return v.scrolled
}

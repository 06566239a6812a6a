// Package shell is the thin line-oriented REPL loop: prompt `> `, one
// line in, one HandleLine dispatch out, stop on EOF or the bare
// "quit" line.
package shell

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tobix/bfprove/internal/runtime"
)

// Run reads lines from in and dispatches each to rt until EOF or
// "quit". prompt is printed to out before each read, matching a
// REPL's interactive feel; callers running non-interactively (e.g.
// `-e`) can pass a no-op writer for the prompt.
func Run(rt *runtime.Runtime, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		if rt.HandleLine(scanner.Text()) {
			return
		}
	}
}

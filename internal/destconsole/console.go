// Package destconsole implements the stdout/stderr destinations.
//
// The concrete console-handle setup (enabling ANSI processing on legacy
// Windows consoles, resolving the real OS file descriptor behind os.Stdout)
// is out of scope per spec section 1 ("console handle setup"); this package
// only specifies the boundary and delegates to mattn/go-isatty and
// mattn/go-colorable the way the teacher's tty_linux.go/tty_unix.go files
// delegate TTY detection to golang.org/x/sys/unix.
package destconsole

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Writer wraps one of the two stdio streams with the serialization needed
// so concurrent dispatch calls never tear a write, and with the
// colorable-aware handle colorMode rendering depends on.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	tty bool
}

var (
	stdout = &Writer{out: colorable.NewColorableStdout(), tty: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())}
	stderr = &Writer{out: colorable.NewColorableStderr(), tty: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())}
)

// Stdout returns the process-wide stdout destination writer.
func Stdout() *Writer { return stdout }

// Stderr returns the process-wide stderr destination writer.
func Stderr() *Writer { return stderr }

// IsTTY reports whether this destination is attached to a real terminal,
// used to pick a sane default for whether styling should be emitted at all.
func (w *Writer) IsTTY() bool { return w.tty }

// Write serializes writes the same way the teacher's syncWriter does for
// its single shared io.Writer.
func (w *Writer) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(b)
}

// Prime is called by the one-shot static-init latch (sir.staticInit). The
// stdout/stderr writers are package-level variables built when this package
// is initialized, so Prime itself has nothing left to set up.
func Prime() {
	_ = stdout
	_ = stderr
}

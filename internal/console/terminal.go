package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Terminal is the line-oriented stdin/stdout pair shared by the REPL and the
// confirmer. Commands run synchronously, so only one reader is active at a
// time.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer

	mu sync.Mutex
}

func NewTerminal() *Terminal {
	return NewTerminalWith(os.Stdin, os.Stdout)
}

func NewTerminalWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ReadLine returns the next line without its terminator. A final line without
// a newline is returned together with a nil error; io.EOF follows it.
func (t *Terminal) ReadLine() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) Println(args ...any) {
	fmt.Fprintln(t.out, args...)
}

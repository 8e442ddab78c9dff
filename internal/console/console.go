// Package console owns the process's standard input for the interactive tracker.
//
// A single goroutine pumps bytes from the input into a channel. In raw mode the watcher polls that
// channel for single keypresses without waiting for Enter; the settings menu suspends raw mode and
// reads whole lines from the same channel. When the input is not a terminal, raw mode is skipped
// and a key only becomes visible once its line is submitted.
package console

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const pumpBufferSize = 64

// Console multiplexes one input stream between key polling and line reading.
type Console struct {
	in  io.Reader
	fd  int
	tty bool

	mu    sync.Mutex
	state *term.State

	bytes chan byte
	once  sync.Once
}

// Open wraps f. If f is a terminal it is switched to raw mode immediately.
func Open(f *os.File) (*Console, error) {
	fd := int(f.Fd()) //nolint:gosec // file descriptors fit in int on supported platforms
	c := newConsole(f, fd, term.IsTerminal(fd))
	if err := c.Resume(); err != nil {
		return nil, err
	}
	return c, nil
}

// New wraps an arbitrary reader in line-buffered mode. Used for pipes and tests.
func New(r io.Reader) *Console {
	return newConsole(r, -1, false)
}

func newConsole(r io.Reader, fd int, tty bool) *Console {
	c := &Console{in: r, fd: fd, tty: tty, bytes: make(chan byte, pumpBufferSize)}
	go c.pump()
	return c
}

func (c *Console) pump() {
	defer close(c.bytes)
	buf := make([]byte, pumpBufferSize)
	for {
		n, err := c.in.Read(buf)
		for _, b := range buf[:n] {
			c.bytes <- b
		}
		if err != nil {
			if err != io.EOF {
				logrus.Debugf("console input closed: %v", err)
			}
			return
		}
	}
}

// IsTerminal reports whether key polling sees single keypresses.
func (c *Console) IsTerminal() bool { return c.tty }

// Raw reports whether the terminal is currently in raw mode.
func (c *Console) Raw() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != nil
}

// Poll returns the next pending input byte as a Key without blocking.
// Line terminators are skipped.
func (c *Console) Poll() (Key, bool) {
	for {
		select {
		case b, ok := <-c.bytes:
			if !ok {
				return 0, false
			}
			if b == '\r' || b == '\n' {
				continue
			}
			return Key(b), true
		default:
			return 0, false
		}
	}
}

// DiscardLine drops the rest of the current input line, up to and including its newline.
// Without a terminal a polled key arrives with the line it was typed on, and what remains of
// that line must not reach the next line reader. It is a no-op for terminals.
func (c *Console) DiscardLine() {
	if c.tty {
		return
	}
	for b := range c.bytes {
		if b == '\n' {
			return
		}
	}
}

// Suspend restores the terminal's original (cooked) mode so line input and echo work.
func (c *Console) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil
	}
	if err := term.Restore(c.fd, c.state); err != nil {
		return err
	}
	c.state = nil
	return nil
}

// Resume puts the terminal back into raw mode. It is a no-op for non-terminal input.
func (c *Console) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tty || c.state != nil {
		return nil
	}
	st, err := term.MakeRaw(c.fd)
	if err != nil {
		return err
	}
	c.state = st
	return nil
}

// Close restores the terminal. Safe to call more than once and from a signal handler.
func (c *Console) Close() error {
	var err error
	c.once.Do(func() { err = c.Suspend() })
	return err
}

// Reader returns a blocking reader over the shared input. It returns io.EOF once the input is
// exhausted.
func (c *Console) Reader() io.Reader { return reader{c: c} }

type reader struct{ c *Console }

func (r reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, ok := <-r.c.bytes
	if !ok {
		return 0, io.EOF
	}
	p[0] = b
	n := 1
	if b == '\n' {
		return n, nil
	}
	// Drain whatever is already buffered without blocking again.
	for n < len(p) {
		select {
		case b, ok := <-r.c.bytes:
			if !ok {
				return n, nil
			}
			p[n] = b
			n++
			if b == '\n' {
				return n, nil
			}
		default:
			return n, nil
		}
	}
	return n, nil
}

// Writer wraps w so that line feeds become CRLF while the terminal is in raw mode, where the
// terminal no longer post-processes output.
func (c *Console) Writer(w io.Writer) io.Writer { return &writer{c: c, w: w} }

type writer struct {
	c *Console
	w io.Writer
}

func (w *writer) Write(p []byte) (int, error) {
	if !w.c.Raw() {
		return w.w.Write(p)
	}
	out := crlf(p)
	if _, err := w.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func crlf(p []byte) []byte {
	out := make([]byte, 0, len(p)+len(p)/8)
	var prev byte
	for _, b := range p {
		if b == '\n' && prev != '\r' {
			out = append(out, '\r')
		}
		out = append(out, b)
		prev = b
	}
	return out
}

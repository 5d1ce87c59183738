package vm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Console is the pair of byte streams a machine owns for its lifetime. The
// engine only sees this interface, so an in-memory buffer can stand in for
// the terminal when testing the stepping logic. There is no retry or
// recovery: the first failed read or write is fatal to the run.
type Console interface {
	// ReadLine blocks until one newline-terminated line is available and
	// returns it without the terminator. End of stream with no pending
	// bytes is an error.
	ReadLine() (string, error)
	// ReadByte blocks until exactly one raw byte is available.
	ReadByte() (byte, error)
	WriteByte(b byte) error
	WriteString(s string) error
	// Flush pushes any buffered output to the underlying stream.
	Flush() error
}

// StreamConsole adapts a plain reader/writer pair to the Console interface.
// The reader is buffered; if in is already a *bufio.Reader it is used as-is,
// so a console can share a reader with the driver without either of them
// reading ahead of the other.
type StreamConsole struct {
	in  *bufio.Reader
	out io.Writer
}

var _ Console = (*StreamConsole)(nil)

func NewStreamConsole(in io.Reader, out io.Writer) *StreamConsole {
	return &StreamConsole{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (c *StreamConsole) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("console read line: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *StreamConsole) ReadByte() (byte, error) {
	b, err := c.in.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("console read byte: %w", err)
	}
	return b, nil
}

func (c *StreamConsole) WriteByte(b byte) error {
	_, err := c.out.Write([]byte{b})
	return err
}

func (c *StreamConsole) WriteString(s string) error {
	_, err := io.WriteString(c.out, s)
	return err
}

// Flush is a no-op: writes go straight to the underlying writer.
func (c *StreamConsole) Flush() error {
	return nil
}

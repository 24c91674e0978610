// Package console drives a terminal for the reader: it reads raw bytes from
// a tcell Tty, decodes them into key events and redraws the edited lines
// with plain ANSI sequences below the current output.
package console

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/qline/internal/keys"
	"github.com/kobzarvs/qline/internal/logger"
	"github.com/kobzarvs/qline/internal/reader"
)

// Console implements reader.Console on top of a tcell.Tty.
type Console struct {
	tty     tcell.Tty
	decoder *keys.Decoder
	caps    keys.Capabilities
	readBuf []byte
	started bool

	// layout of the last refresh, in physical rows
	rows      int
	cursorRow int
}

var _ reader.Console = (*Console)(nil)

func New(tty tcell.Tty, decoder *keys.Decoder, caps keys.Capabilities) *Console {
	return &Console{
		tty:     tty,
		decoder: decoder,
		caps:    caps,
		readBuf: make([]byte, 128),
	}
}

// Prepare puts the tty in raw mode and the keypad in application mode, so
// the keys send what terminfo describes.
func (c *Console) Prepare() error {
	if c.started {
		return nil
	}
	if err := c.tty.Start(); err != nil {
		return fmt.Errorf("start tty: %w", err)
	}
	c.started = true
	c.rows, c.cursorRow = 0, 0
	if c.caps.KeypadXmit != "" {
		c.write(c.caps.KeypadXmit)
	}
	return nil
}

func (c *Console) Restore() error {
	if !c.started {
		return nil
	}
	if c.caps.KeypadLocal != "" {
		c.write(c.caps.KeypadLocal)
	}
	c.started = false
	if err := c.tty.Stop(); err != nil {
		return fmt.Errorf("stop tty: %w", err)
	}
	return nil
}

// Close restores the tty and releases it.
func (c *Console) Close() error {
	err := c.Restore()
	return errors.Join(err, c.tty.Close())
}

// GetEvent blocks until the decoder has an event to hand out.
func (c *Console) GetEvent() (keys.Event, error) {
	for {
		if ev, ok := c.decoder.Get(); ok {
			logger.Debug("key event", "event", ev.String())
			return ev, nil
		}
		n, err := c.tty.Read(c.readBuf)
		if n > 0 {
			_, _ = c.decoder.Write(c.readBuf[:n])
		}
		if err != nil {
			if n > 0 && !c.decoder.Empty() {
				continue
			}
			if errors.Is(err, io.EOF) {
				return keys.Event{}, io.EOF
			}
			return keys.Event{}, fmt.Errorf("read tty: %w", err)
		}
	}
}

// GetPending drains everything read but not yet returned by GetEvent.
func (c *Console) GetPending() []byte {
	return c.decoder.Drain()
}

func (c *Console) width() int {
	ws, err := c.tty.WindowSize()
	if err != nil || ws.Width <= 0 {
		return 0
	}
	return ws.Width
}

// Refresh redraws the input area. It assumes the cursor is where the last
// refresh left it.
func (c *Console) Refresh(s reader.Screen) {
	width := c.width()
	var out bytes.Buffer

	if c.cursorRow > 0 {
		fmt.Fprintf(&out, "\x1b[%dA", c.cursorRow)
	}
	out.WriteString("\r\x1b[J")

	lines := append([]string(nil), s.Lines...)
	if s.Message != "" {
		lines = append(lines, strings.Split(s.Message, "\n")...)
	}

	rows, cursorRow, cursorCol := 0, 0, 0
	for i, line := range lines {
		if i > 0 {
			out.WriteString("\r\n")
		}
		out.WriteString(line)
		w := uniseg.StringWidth(line)
		if i == s.CursorRow {
			prefix := string([]rune(line)[:min(s.CursorCol, len([]rune(line)))])
			col := uniseg.StringWidth(prefix)
			cursorRow = rows + wrapRow(col, width)
			cursorCol = wrapCol(col, width)
		}
		rows += physicalRows(w, width)
	}

	// back from the end of the last line to the cursor
	lastRow := rows - 1
	if up := lastRow - cursorRow; up > 0 {
		fmt.Fprintf(&out, "\x1b[%dA", up)
	}
	out.WriteString("\r")
	if cursorCol > 0 {
		fmt.Fprintf(&out, "\x1b[%dC", cursorCol)
	}

	c.rows = rows
	c.cursorRow = cursorRow
	c.writeBytes(out.Bytes())
}

func physicalRows(w, width int) int {
	if width <= 0 || w == 0 {
		return 1
	}
	return (w + width - 1) / width
}

func wrapRow(col, width int) int {
	if width <= 0 {
		return 0
	}
	return col / width
}

func wrapCol(col, width int) int {
	if width <= 0 {
		return col
	}
	return col % width
}

func (c *Console) Clear() {
	seq := c.caps.Clear
	if seq == "" {
		seq = "\x1b[H\x1b[2J"
	}
	c.write(seq)
	c.rows, c.cursorRow = 0, 0
}

// RepaintPrep forgets the previous layout so the next refresh starts on the
// current line.
func (c *Console) RepaintPrep() {
	c.rows, c.cursorRow = 0, 0
}

// Finish moves below the input area so output continues after it.
func (c *Console) Finish() {
	var out bytes.Buffer
	if down := c.rows - 1 - c.cursorRow; down > 0 {
		fmt.Fprintf(&out, "\x1b[%dB", down)
	}
	out.WriteString("\r\n")
	c.writeBytes(out.Bytes())
	c.rows, c.cursorRow = 0, 0
}

func (c *Console) Beep() {
	c.write("\a")
}

// Suspend restores the terminal and stops the process until it is resumed.
func (c *Console) Suspend() error {
	if err := c.Restore(); err != nil {
		return err
	}
	return suspendProcess()
}

func (c *Console) write(s string) {
	c.writeBytes([]byte(s))
}

func (c *Console) writeBytes(p []byte) {
	if _, err := c.tty.Write(p); err != nil {
		logger.Warn("write tty", "error", err)
	}
}

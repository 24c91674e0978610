package keys

import (
	"errors"
	"fmt"

	"github.com/kobzarvs/qline/internal/logger"
)

const esc = 0x1b

// ErrDecoderDesync is the panic value (wrapped) raised when a keymap match
// starts at the root while unrelated bytes are still buffered.
var ErrDecoderDesync = errors.New("key decoder desync")

// Event is one logical key press: either a bound key name ("up", "f3",
// "backspace") or a piece of decoded text.
type Event struct {
	Name string
	Raw  []byte
}

func (e Event) String() string {
	return fmt.Sprintf("%q (raw %q)", e.Name, e.Raw)
}

// Decoder classifies a byte stream against a Trie. It keeps partial matches
// across calls to Push, so bytes may arrive one at a time.
type Decoder struct {
	trie   *Trie
	codec  Codec
	node   *node
	buf    []byte
	events []Event
}

// NewDecoder returns a decoder positioned at the trie root.
func NewDecoder(trie *Trie, codec Codec) *Decoder {
	if trie == nil {
		trie = &Trie{root: &node{next: map[byte]*node{}}}
	}
	if codec == nil {
		codec = utf8Codec{}
	}
	return &Decoder{trie: trie, codec: codec, node: trie.root}
}

// Get pops the next completed event.
func (d *Decoder) Get() (Event, bool) {
	if len(d.events) == 0 {
		return Event{}, false
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, true
}

// Empty reports whether no completed events are queued.
func (d *Decoder) Empty() bool {
	return len(d.events) == 0
}

// Pending returns a copy of the bytes consumed but not yet emitted.
func (d *Decoder) Pending() []byte {
	return append([]byte(nil), d.buf...)
}

// Drain returns the raw bytes of every queued event followed by the pending
// bytes, and resets the decoder to the root.
func (d *Decoder) Drain() []byte {
	var out []byte
	for _, ev := range d.events {
		out = append(out, ev.Raw...)
	}
	out = append(out, d.buf...)
	d.events = nil
	d.reset()
	return out
}

// Write pushes every byte of p. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		d.Push(b)
	}
	return len(p), nil
}

// Push feeds one byte to the decoder.
func (d *Decoder) Push(b byte) {
	d.buf = append(d.buf, b)

	if next, ok := d.node.next[b]; ok {
		if d.node == d.trie.root && len(d.buf) != 1 {
			logger.Error("key decoder desync", "buf", fmt.Sprintf("%q", d.buf), "byte", b)
			panic(fmt.Errorf("%w: %q buffered before keymap match", ErrDecoderDesync, d.buf[:len(d.buf)-1]))
		}
		if next.isLeaf() {
			d.emit(Event{Name: next.name, Raw: d.flush()})
			d.node = d.trie.root
			return
		}
		d.node = next
		return
	}

	if d.buf[0] == esc {
		logger.Debug("unrecognized escape sequence", "buf", fmt.Sprintf("%q", d.buf))
		d.node = d.trie.root
		d.emit(Event{Name: "\x1b", Raw: []byte{esc}})
		rest := d.flush()[1:]
		for _, c := range rest {
			d.Push(c)
		}
		return
	}

	text, status := d.codec.Decode(d.buf)
	switch status {
	case DecodeIncomplete:
		return
	case DecodeInvalid:
		logger.Debug("dropping undecodable input", "buf", fmt.Sprintf("%q", d.buf), "encoding", d.codec.Name())
		d.flush()
	default:
		d.emit(Event{Name: text, Raw: d.flush()})
	}
	d.node = d.trie.root
}

func (d *Decoder) emit(ev Event) {
	d.events = append(d.events, ev)
}

func (d *Decoder) flush() []byte {
	out := d.buf
	d.buf = nil
	return out
}

func (d *Decoder) reset() {
	d.buf = nil
	d.node = d.trie.root
}

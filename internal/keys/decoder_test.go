package keys

import (
	"bytes"
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func testTrie(t *testing.T) *Trie {
	t.Helper()
	trie, err := Compile(map[string]string{
		"\x1b[A":  "up",
		"\x1b[B":  "down",
		"\x1b[3~": "delete",
		"\x1bOP":  "f1",
		"\x7f":    "backspace",
	})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return trie
}

func drain(d *Decoder) []Event {
	var out []Event
	for {
		ev, ok := d.Get()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func pushAll(d *Decoder, s string) {
	for i := 0; i < len(s); i++ {
		d.Push(s[i])
	}
}

func TestDecoderMultibyteOneByteAtATime(t *testing.T) {
	d := NewDecoder(&Trie{root: &node{next: map[byte]*node{}}}, nil)
	want := "ሴ"
	raw := []byte(want)
	for i, b := range raw {
		d.Push(b)
		if i < len(raw)-1 && !d.Empty() {
			t.Fatalf("event emitted after %d of %d bytes", i+1, len(raw))
		}
	}
	ev, ok := d.Get()
	if !ok {
		t.Fatalf("no event emitted")
	}
	if _, more := d.Get(); more {
		t.Fatalf("more than one event emitted")
	}
	if ev.Name != want {
		t.Fatalf("Name = %q, want %q", ev.Name, want)
	}
	if !bytes.Equal(ev.Raw, raw) {
		t.Fatalf("Raw = %q, want %q", ev.Raw, raw)
	}
}

func TestDecoderKeySequences(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "a\x1b[A\x7f\x1b[3~b")
	got := drain(d)
	want := []Event{
		{Name: "a", Raw: []byte("a")},
		{Name: "up", Raw: []byte("\x1b[A")},
		{Name: "backspace", Raw: []byte("\x7f")},
		{Name: "delete", Raw: []byte("\x1b[3~")},
		{Name: "b", Raw: []byte("b")},
	}
	assertEvents(t, got, want)
}

func TestDecoderPartialMatchWaits(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "\x1b[")
	if !d.Empty() {
		t.Fatalf("partial match emitted %v", drain(d))
	}
	if got := d.Pending(); string(got) != "\x1b[" {
		t.Fatalf("Pending = %q, want %q", got, "\x1b[")
	}
	d.Push('B')
	assertEvents(t, drain(d), []Event{{Name: "down", Raw: []byte("\x1b[B")}})
	if len(d.Pending()) != 0 {
		t.Fatalf("Pending = %q after full match", d.Pending())
	}
}

func TestDecoderUnrecognizedEscape(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "\x1bz")
	assertEvents(t, drain(d), []Event{
		{Name: "\x1b", Raw: []byte("\x1b")},
		{Name: "z", Raw: []byte("z")},
	})
}

func TestDecoderUnrecognizedEscapeMidSequence(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "\x1b[Z")
	assertEvents(t, drain(d), []Event{
		{Name: "\x1b", Raw: []byte("\x1b")},
		{Name: "[", Raw: []byte("[")},
		{Name: "Z", Raw: []byte("Z")},
	})
}

func TestDecoderEscapeFollowedByTriePrefix(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	// ESC ESC [ A: the first escape is unrecognised, the second starts a
	// fresh match from the root.
	pushAll(d, "\x1b\x1b")
	assertEvents(t, drain(d), []Event{{Name: "\x1b", Raw: []byte("\x1b")}})
	if got := d.Pending(); string(got) != "\x1b" {
		t.Fatalf("Pending = %q, want the re-injected escape", got)
	}
	pushAll(d, "[A")
	assertEvents(t, drain(d), []Event{{Name: "up", Raw: []byte("\x1b[A")}})
}

func TestDecoderEscapeFollowedByBoundKey(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "\x1bO\x7f")
	assertEvents(t, drain(d), []Event{
		{Name: "\x1b", Raw: []byte("\x1b")},
		{Name: "O", Raw: []byte("O")},
		{Name: "backspace", Raw: []byte("\x7f")},
	})
}

func TestDecoderEscapeFollowedByMultibyte(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "\x1bé")
	assertEvents(t, drain(d), []Event{
		{Name: "\x1b", Raw: []byte("\x1b")},
		{Name: "é", Raw: []byte("é")},
	})
}

func TestDecoderInvalidBytesDropped(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "\xffa")
	assertEvents(t, drain(d), []Event{{Name: "a", Raw: []byte("a")}})
}

func TestDecoderDesyncPanics(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	d.Push(0xe1) // start of a three byte rune
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrDecoderDesync) {
			t.Fatalf("panic value = %v, want ErrDecoderDesync", r)
		}
	}()
	d.Push(0x7f)
}

func TestDecoderDrain(t *testing.T) {
	d := NewDecoder(testTrie(t), nil)
	pushAll(d, "ab\x1b[")
	if got := d.Drain(); string(got) != "ab\x1b[" {
		t.Fatalf("Drain = %q", got)
	}
	if !d.Empty() || len(d.Pending()) != 0 {
		t.Fatalf("decoder not reset after Drain")
	}
	pushAll(d, "\x1b[A")
	assertEvents(t, drain(d), []Event{{Name: "up", Raw: []byte("\x1b[A")}})
}

func TestDecoderLatin1(t *testing.T) {
	codec, err := NewCodec("latin1")
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	d := NewDecoder(testTrie(t), codec)
	d.Push(0xe9)
	assertEvents(t, drain(d), []Event{{Name: "é", Raw: []byte{0xe9}}})
}

// Every raw byte of valid input comes back out, either in an event or still
// pending at the end.
func TestDecoderRoundTripProperty(t *testing.T) {
	trie := testTrie(t)
	rapid.Check(t, func(t *rapid.T) {
		pieces := rapid.SliceOf(rapid.OneOf(
			rapid.SampledFrom([]string{"\x1b[A", "\x1b[B", "\x1b[3~", "\x1bOP", "\x7f", "\x1b", "\x1b[", "\x1bO"}),
			rapid.StringOfN(rapid.Rune(), 1, 4, -1),
		)).Draw(t, "pieces")
		var input []byte
		for _, p := range pieces {
			input = append(input, p...)
		}

		d := NewDecoder(trie, nil)
		var out []byte
		for _, b := range input {
			d.Push(b)
			for {
				ev, ok := d.Get()
				if !ok {
					break
				}
				if len(ev.Raw) == 0 {
					t.Fatalf("event %v has no raw bytes", ev)
				}
				out = append(out, ev.Raw...)
			}
		}
		out = append(out, d.Pending()...)
		if !bytes.Equal(out, input) {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q", out, input)
		}
	})
}

func assertEvents(t *testing.T, got, want []Event) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].Name != want[i].Name || !bytes.Equal(got[i].Raw, want[i].Raw) {
			t.Fatalf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

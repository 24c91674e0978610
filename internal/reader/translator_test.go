package reader

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kobzarvs/qline/internal/config"
	"github.com/kobzarvs/qline/internal/keys"
)

func TestParseKeySpec(t *testing.T) {
	cases := []struct {
		spec string
		want []string
	}{
		{"a", []string{"a"}},
		{"ctrl+a", []string{"\x01"}},
		{"CTRL+Z", []string{"\x1a"}},
		{"ctrl+?", []string{"\x7f"}},
		{"ctrl+space", []string{"\x00"}},
		{"alt+b", []string{"\x1b", "b"}},
		{"meta+b", []string{"\x1b", "b"}},
		{"alt+ctrl+?", []string{"\x1b", "\x7f"}},
		{"alt+enter", []string{"\x1b", "\r"}},
		{"alt+backspace", []string{"\x1b", "backspace"}},
		{"<up>", []string{"up"}},
		{"pgdn", []string{"page down"}},
		{"del", []string{"delete"}},
		{"f12", []string{"f12"}},
		{"ctrl+x ctrl+k", []string{"\x18", "\x0b"}},
		{"space", []string{" "}},
		{"ä", []string{"ä"}},
	}
	for _, tc := range cases {
		got, err := ParseKeySpec(tc.spec)
		if err != nil {
			t.Fatalf("ParseKeySpec(%q) error: %v", tc.spec, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseKeySpec(%q) = %q, want %q", tc.spec, got, tc.want)
		}
	}
}

func TestParseKeySpecInvalid(t *testing.T) {
	for _, spec := range []string{"", "f21", "ctrl+up", "hyper+a", "f1x"} {
		if _, err := ParseKeySpec(spec); !errors.Is(err, ErrInvalidKeySpec) {
			t.Fatalf("ParseKeySpec(%q) error = %v, want ErrInvalidKeySpec", spec, err)
		}
	}
}

func TestTranslatorSequences(t *testing.T) {
	tr, err := NewTranslator(map[string]string{
		"ctrl+a":        "beginning-of-line",
		"ctrl+x ctrl+k": "kill-line",
		"alt+b":         "backward-word",
	})
	if err != nil {
		t.Fatalf("NewTranslator error: %v", err)
	}

	cmd, seq, ok := tr.Push("\x01")
	if !ok || cmd != "beginning-of-line" || !reflect.DeepEqual(seq, []string{"\x01"}) {
		t.Fatalf("Push ctrl+a = %q %q %v", cmd, seq, ok)
	}

	if _, _, ok := tr.Push("\x18"); ok {
		t.Fatalf("ctrl+x alone should be pending")
	}
	cmd, seq, ok = tr.Push("\x0b")
	if !ok || cmd != "kill-line" || !reflect.DeepEqual(seq, []string{"\x18", "\x0b"}) {
		t.Fatalf("Push ctrl+x ctrl+k = %q %q %v", cmd, seq, ok)
	}

	cmd, _, ok = tr.Push("z")
	if !ok || cmd != "self-insert" {
		t.Fatalf("unbound character = %q %v, want self-insert", cmd, ok)
	}
	cmd, _, ok = tr.Push("f5")
	if !ok || cmd != "invalid-key" {
		t.Fatalf("unbound key = %q %v, want invalid-key", cmd, ok)
	}
	cmd, _, ok = tr.Push("\x07")
	if !ok || cmd != "invalid-key" {
		t.Fatalf("unbound control = %q %v, want invalid-key", cmd, ok)
	}

	tr.Push("\x1b")
	cmd, seq, ok = tr.Push("q")
	if !ok || cmd != "invalid-key" || !reflect.DeepEqual(seq, []string{"\x1b", "q"}) {
		t.Fatalf("unbound alt+q = %q %q %v", cmd, seq, ok)
	}
}

func TestTranslatorReset(t *testing.T) {
	tr, err := NewTranslator(map[string]string{"ctrl+x ctrl+k": "kill-line"})
	if err != nil {
		t.Fatalf("NewTranslator error: %v", err)
	}
	tr.Push("\x18")
	tr.Reset()
	cmd, _, ok := tr.Push("a")
	if !ok || cmd != "self-insert" {
		t.Fatalf("after Reset = %q %v", cmd, ok)
	}
}

func TestTranslatorConflicts(t *testing.T) {
	cases := []map[string]string{
		{"ctrl+x": "kill-line", "ctrl+x ctrl+k": "kill-word"},
		{"esc": "interrupt", "alt+b": "backward-word"},
		{"del": "delete", "delete": "backspace"},
	}
	for _, table := range cases {
		_, err := NewTranslator(table)
		var conflict *BindingConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("NewTranslator(%v) error = %v, want BindingConflictError", table, err)
		}
		if !errors.Is(err, keys.ErrAmbiguousKeyBinding) {
			t.Fatalf("conflict should match ErrAmbiguousKeyBinding")
		}
	}

	if _, err := NewTranslator(map[string]string{"del": "delete", "delete": "delete"}); err != nil {
		t.Fatalf("same command on the same keys should be allowed: %v", err)
	}
}

func TestDefaultKeymapCompiles(t *testing.T) {
	tr, err := NewTranslator(config.Default().Keymap)
	if err != nil {
		t.Fatalf("default keymap: %v", err)
	}
	reg := NewRegistry()
	for _, b := range tr.Bindings() {
		if _, ok := reg.Lookup(b.Command); !ok {
			t.Fatalf("binding %q names unknown command %q", b.Spec, b.Command)
		}
	}
}

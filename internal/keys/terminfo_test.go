package keys

import (
	"testing"

	xterminfo "github.com/xo/terminfo"
)

func TestTableFromTerminfo(t *testing.T) {
	ti := &xterminfo.Terminfo{Strings: map[int][]byte{
		xterminfo.KeyUp:   []byte("\x1bOA"),
		xterminfo.KeyDc:   []byte("\x1b[3~"),
		xterminfo.KeyHome: []byte("\x1bOH"),
		xterminfo.KeyEnd:  []byte("\x1bOF"),
		xterminfo.KeyF1:   []byte("\x1bOP"),
		xterminfo.KeyF20:  []byte("\x1b[19;2~"),
		xterminfo.KeyIc:   {},
	}}
	table := TableFromTerminfo(ti)
	want := map[string]string{
		"\x1bOA":     "up",
		"\x1b[3~":    "delete",
		"\x1bOH":     "home",
		"\x1bOF":     "end",
		"\x1bOP":     "f1",
		"\x1b[19;2~": "f20",
	}
	if len(table) != len(want) {
		t.Fatalf("table = %q, want %q", table, want)
	}
	for seq, name := range want {
		if table[seq] != name {
			t.Fatalf("table[%q] = %q, want %q", seq, table[seq], name)
		}
	}
}

func TestXtermTableCompiles(t *testing.T) {
	table := XtermTable()
	if _, err := Compile(table); err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	names := map[string]bool{}
	for _, name := range table {
		names[name] = true
	}
	for name := range keyCaps {
		if !names[name] {
			t.Fatalf("xterm table has no sequence for %q", name)
		}
	}
}

func TestLoadCapabilitiesXterm(t *testing.T) {
	caps, err := LoadCapabilities("xterm", -1)
	if err != nil {
		t.Fatalf("LoadCapabilities error: %v", err)
	}
	required := map[string]string{
		"\x1bOA":     "up",
		"\x1b[3~":    "delete",
		"\x1bOP":     "f1",
		"\x1b[19;2~": "f20",
		"\x1bOH":     "home",
		"\x1bOF":     "end",
	}
	for seq, name := range required {
		if got := caps.Table[seq]; got != name {
			t.Fatalf("table[%q] = %q, want %q", seq, got, name)
		}
	}
	if caps.KeypadXmit == "" || caps.KeypadLocal == "" {
		t.Fatalf("xterm keypad strings missing: %q %q", caps.KeypadXmit, caps.KeypadLocal)
	}
	if _, err := Compile(caps.Table); err != nil {
		t.Fatalf("Compile error: %v", err)
	}
}

func TestLoadCapabilitiesUnknownTerm(t *testing.T) {
	caps, err := LoadCapabilities("qline-no-such-terminal", -1)
	if err != nil {
		t.Fatalf("LoadCapabilities error: %v", err)
	}
	if caps.Table["\x1b[A"] != "up" || caps.Table["\x1b[3~"] != "delete" {
		t.Fatalf("unknown terminal should fall back to xterm keys, got %q", caps.Table)
	}
	if caps.KeypadXmit != "" {
		t.Fatalf("unknown terminal has keypad string %q", caps.KeypadXmit)
	}
}

func TestEraseCharNotATerminal(t *testing.T) {
	if _, ok := EraseChar(-1); ok {
		t.Fatalf("EraseChar(-1) reported an erase character")
	}
}

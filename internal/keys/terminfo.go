package keys

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2/terminfo"
	_ "github.com/gdamore/tcell/v2/terminfo/extended"
	xterminfo "github.com/xo/terminfo"

	"github.com/kobzarvs/qline/internal/logger"
)

// Capabilities is what the host learns about the terminal at startup: the
// raw key table used to compile the Trie, plus a few output strings the
// console needs.
type Capabilities struct {
	Term        string
	Table       map[string]string // raw sequence -> key name
	KeypadXmit  string
	KeypadLocal string
	Clear       string
}

// Merge adds name -> raw sequence overrides (as read from config) to the
// table. An override replaces any sequence previously bound to the same name.
func (c *Capabilities) Merge(overrides map[string]string) {
	if c.Table == nil {
		c.Table = map[string]string{}
	}
	for name, seq := range overrides {
		if seq == "" {
			continue
		}
		for old, oldName := range c.Table {
			if oldName == name {
				delete(c.Table, old)
			}
		}
		c.Table[seq] = name
	}
}

// keyCaps are the terminfo string capabilities read for each key name.
var keyCaps = map[string]int{
	"delete":    xterminfo.KeyDc,
	"down":      xterminfo.KeyDown,
	"end":       xterminfo.KeyEnd,
	"home":      xterminfo.KeyHome,
	"insert":    xterminfo.KeyIc,
	"left":      xterminfo.KeyLeft,
	"page down": xterminfo.KeyNpage,
	"page up":   xterminfo.KeyPpage,
	"right":     xterminfo.KeyRight,
	"up":        xterminfo.KeyUp,
	"f1":        xterminfo.KeyF1,
	"f2":        xterminfo.KeyF2,
	"f3":        xterminfo.KeyF3,
	"f4":        xterminfo.KeyF4,
	"f5":        xterminfo.KeyF5,
	"f6":        xterminfo.KeyF6,
	"f7":        xterminfo.KeyF7,
	"f8":        xterminfo.KeyF8,
	"f9":        xterminfo.KeyF9,
	"f10":       xterminfo.KeyF10,
	"f11":       xterminfo.KeyF11,
	"f12":       xterminfo.KeyF12,
	"f13":       xterminfo.KeyF13,
	"f14":       xterminfo.KeyF14,
	"f15":       xterminfo.KeyF15,
	"f16":       xterminfo.KeyF16,
	"f17":       xterminfo.KeyF17,
	"f18":       xterminfo.KeyF18,
	"f19":       xterminfo.KeyF19,
	"f20":       xterminfo.KeyF20,
}

// XtermTable is used when the terminal has no terminfo entry. It carries
// both the cursor-mode and the keypad-mode forms of the cursor and editing
// keys, since whether keypad mode is on depends on the output caps found.
func XtermTable() map[string]string {
	return map[string]string{
		"\x1b[A": "up", "\x1bOA": "up",
		"\x1b[B": "down", "\x1bOB": "down",
		"\x1b[C": "right", "\x1bOC": "right",
		"\x1b[D": "left", "\x1bOD": "left",
		"\x1b[H": "home", "\x1bOH": "home", "\x1b[1~": "home",
		"\x1b[F": "end", "\x1bOF": "end", "\x1b[4~": "end",
		"\x1b[2~":    "insert",
		"\x1b[3~":    "delete",
		"\x1b[5~":    "page up",
		"\x1b[6~":    "page down",
		"\x1bOP":     "f1",
		"\x1bOQ":     "f2",
		"\x1bOR":     "f3",
		"\x1bOS":     "f4",
		"\x1b[15~":   "f5",
		"\x1b[17~":   "f6",
		"\x1b[18~":   "f7",
		"\x1b[19~":   "f8",
		"\x1b[20~":   "f9",
		"\x1b[21~":   "f10",
		"\x1b[23~":   "f11",
		"\x1b[24~":   "f12",
		"\x1b[1;2P":  "f13",
		"\x1b[1;2Q":  "f14",
		"\x1b[1;2R":  "f15",
		"\x1b[1;2S":  "f16",
		"\x1b[15;2~": "f17",
		"\x1b[17;2~": "f18",
		"\x1b[18;2~": "f19",
		"\x1b[19;2~": "f20",
	}
}

// LoadCapabilities looks up term (or $TERM) in the system terminfo database
// for the key sequences, and in tcell's database for the keypad and clear
// strings. A terminal without a terminfo entry gets XtermTable. The erase
// character of the tty on fd, when it is one, is bound to "backspace".
func LoadCapabilities(term string, fd int) (Capabilities, error) {
	if term == "" {
		term = os.Getenv("TERM")
	}
	caps := Capabilities{Term: term}
	if term != "" {
		if ti, err := xterminfo.Load(term); err != nil {
			logger.Warn("terminfo key lookup failed, using xterm keys", "term", term, "err", err)
		} else {
			caps.Table = TableFromTerminfo(ti)
		}
		if ti, err := terminfo.LookupTerminfo(term); err != nil {
			logger.Warn("terminfo lookup failed", "term", term, "err", err)
		} else {
			caps.KeypadXmit = ti.EnterKeypad
			caps.KeypadLocal = ti.ExitKeypad
			caps.Clear = ti.Clear
		}
	}
	if len(caps.Table) == 0 {
		caps.Table = XtermTable()
	}
	if erase, ok := EraseChar(fd); ok {
		seq := string([]byte{erase})
		if prev, taken := caps.Table[seq]; taken && prev != "backspace" {
			return caps, fmt.Errorf("erase character %q already bound to %q", seq, prev)
		}
		caps.Table[seq] = "backspace"
	}
	logger.Debug("terminal capabilities loaded", "term", term, "keys", len(caps.Table))
	return caps, nil
}

// TableFromTerminfo returns raw sequence -> key name for the editing and
// function keys of ti. Capabilities the terminal lacks are left out.
func TableFromTerminfo(ti *xterminfo.Terminfo) map[string]string {
	table := make(map[string]string, len(keyCaps))
	for name, capIndex := range keyCaps {
		if seq := ti.Strings[capIndex]; len(seq) > 0 {
			table[string(seq)] = name
		}
	}
	return table
}

package reader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kobzarvs/qline/internal/keys"
)

var ErrInvalidKeySpec = errors.New("invalid key spec")

// BindingConflictError reports two key specs that cannot both be bound,
// either because they produce the same keys for different commands or
// because one is a prefix of the other.
type BindingConflictError struct {
	Spec  string
	Other string
}

func (e *BindingConflictError) Error() string {
	return fmt.Sprintf("key binding %q conflicts with %q", e.Spec, e.Other)
}

func (e *BindingConflictError) Unwrap() error {
	return keys.ErrAmbiguousKeyBinding
}

var namedKeys = map[string]string{
	"enter":     "\r",
	"return":    "\r",
	"tab":       "\t",
	"esc":       "\x1b",
	"escape":    "\x1b",
	"space":     " ",
	"del":       "delete",
	"delete":    "delete",
	"backspace": "backspace",
	"insert":    "insert",
	"home":      "home",
	"end":       "end",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"pgup":      "page up",
	"pgdn":      "page down",
	"pageup":    "page up",
	"pagedown":  "page down",
}

// ParseKeySpec turns a key spec such as "ctrl+a", "alt+b", "<up>" or
// "ctrl+x ctrl+k" into the event names the decoder emits for it.
func ParseKeySpec(spec string) ([]string, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		// a lone space is a valid single-key spec
		if spec == " " {
			return []string{" "}, nil
		}
		return nil, fmt.Errorf("%w: empty", ErrInvalidKeySpec)
	}
	var out []string
	for _, f := range fields {
		names, err := parseKey(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, spec)
		}
		out = append(out, names...)
	}
	return out, nil
}

func parseKey(key string) ([]string, error) {
	var prefix []string
	ctrl := false
	for {
		lower := strings.ToLower(key)
		switch {
		case len(key) > 4 && strings.HasPrefix(lower, "alt+"):
			prefix = append(prefix, "\x1b")
			key = key[4:]
			continue
		case len(key) > 5 && strings.HasPrefix(lower, "meta+"):
			prefix = append(prefix, "\x1b")
			key = key[5:]
			continue
		case len(key) > 5 && strings.HasPrefix(lower, "ctrl+"):
			ctrl = true
			key = key[5:]
			continue
		}
		break
	}
	if len(key) > 2 && key[0] == '<' && key[len(key)-1] == '>' {
		key = key[1 : len(key)-1]
	}

	name, err := baseKey(key)
	if err != nil {
		return nil, err
	}
	if ctrl {
		if name, err = controlOf(name); err != nil {
			return nil, err
		}
	}
	return append(prefix, name), nil
}

func baseKey(key string) (string, error) {
	if utf8.RuneCountInString(key) == 1 {
		return key, nil
	}
	lower := strings.ToLower(key)
	if name, ok := namedKeys[lower]; ok {
		return name, nil
	}
	var n int
	if _, err := fmt.Sscanf(lower, "f%d", &n); err == nil && n >= 1 && n <= 20 && lower == fmt.Sprintf("f%d", n) {
		return lower, nil
	}
	return "", fmt.Errorf("%w: unknown key %q", ErrInvalidKeySpec, key)
}

func controlOf(name string) (string, error) {
	if utf8.RuneCountInString(name) != 1 {
		return "", fmt.Errorf("%w: ctrl+%s", ErrInvalidKeySpec, name)
	}
	r, _ := utf8.DecodeRuneInString(name)
	switch {
	case r == '?':
		return "\x7f", nil
	case r == ' ' || r == '@':
		return "\x00", nil
	case r >= '@' && r <= '_', r >= 'a' && r <= 'z':
		return string(unicode.ToUpper(r) & 0x1f), nil
	}
	return "", fmt.Errorf("%w: ctrl+%c", ErrInvalidKeySpec, r)
}

type bindingNode struct {
	cmd  string
	spec string
	next map[string]*bindingNode
}

// Binding is one key spec and the command it runs.
type Binding struct {
	Spec    string
	Command string
}

// Translator maps sequences of event names to command names.
type Translator struct {
	root     *bindingNode
	cur      *bindingNode
	pending  []string
	bindings []Binding
}

// NewTranslator compiles a spec -> command table.
func NewTranslator(table map[string]string) (*Translator, error) {
	specs := make([]string, 0, len(table))
	for spec := range table {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	t := &Translator{root: &bindingNode{next: map[string]*bindingNode{}}}
	for _, spec := range specs {
		cmd := table[spec]
		if cmd == "" {
			continue
		}
		names, err := ParseKeySpec(spec)
		if err != nil {
			return nil, err
		}
		if err := t.root.add(spec, names, cmd); err != nil {
			return nil, err
		}
		t.bindings = append(t.bindings, Binding{Spec: spec, Command: cmd})
	}
	t.cur = t.root
	return t, nil
}

func (n *bindingNode) add(spec string, names []string, cmd string) error {
	cur := n
	for i, name := range names {
		child, ok := cur.next[name]
		if i == len(names)-1 {
			if !ok {
				cur.next[name] = &bindingNode{cmd: cmd, spec: spec}
				return nil
			}
			if child.next == nil && child.cmd == cmd {
				return nil
			}
			return &BindingConflictError{Spec: spec, Other: child.anySpec()}
		}
		if !ok {
			child = &bindingNode{next: map[string]*bindingNode{}}
			cur.next[name] = child
		} else if child.next == nil {
			return &BindingConflictError{Spec: spec, Other: child.spec}
		}
		cur = child
	}
	return nil
}

func (n *bindingNode) anySpec() string {
	for n.next != nil {
		var next *bindingNode
		for _, child := range n.next {
			next = child
			break
		}
		if next == nil {
			return ""
		}
		n = next
	}
	return n.spec
}

// Push feeds one event name. It reports ok once a command is decided, with
// the event names that selected it; mid-sequence it returns ok == false.
func (t *Translator) Push(name string) (cmd string, seq []string, ok bool) {
	t.pending = append(t.pending, name)
	child, found := t.cur.next[name]
	switch {
	case found && child.next != nil:
		t.cur = child
		return "", nil, false
	case found:
		cmd = child.cmd
	case len(t.pending) == 1 && isCharacter(name):
		cmd = "self-insert"
	default:
		cmd = "invalid-key"
	}
	seq = t.pending
	t.Reset()
	return cmd, seq, true
}

// Reset drops a partially typed sequence.
func (t *Translator) Reset() {
	t.cur = t.root
	t.pending = nil
}

// Bindings lists the compiled bindings sorted by spec.
func (t *Translator) Bindings() []Binding {
	return append([]Binding(nil), t.bindings...)
}

func isCharacter(name string) bool {
	if utf8.RuneCountInString(name) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.Is(unicode.C, r)
}

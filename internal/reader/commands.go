package reader

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/kobzarvs/qline/internal/compiler"
	"github.com/kobzarvs/qline/internal/keys"
	"github.com/kobzarvs/qline/internal/logger"
)

// Category groups commands whose interaction matters: consecutive kills
// coalesce and only a yank may be popped.
type Category int

const (
	CategoryOther Category = iota
	CategoryKill
	CategoryYank
	CategoryMotion
	CategoryEdit
	CategoryFinish
)

func (c Category) String() string {
	switch c {
	case CategoryKill:
		return "kill"
	case CategoryYank:
		return "yank"
	case CategoryMotion:
		return "motion"
	case CategoryEdit:
		return "edit"
	case CategoryFinish:
		return "finish"
	}
	return "other"
}

// Command is one invocation. Handlers may set Finish to end the read.
type Command struct {
	Name          string
	Keys          []string
	Category      Category
	Finish        bool
	KillsDigitArg bool
}

// Text joins the event names that triggered the command.
func (c *Command) Text() string {
	return strings.Join(c.Keys, "")
}

type HandlerFunc func(r *Reader, c *Command) error

// Definition is a registered command.
type Definition struct {
	Name          string
	Category      Category
	Finish        bool
	KillsDigitArg bool
	Handler       HandlerFunc
}

type Registry struct {
	defs map[string]Definition
}

// NewRegistry returns a registry holding every built-in command.
func NewRegistry() *Registry {
	reg := &Registry{defs: make(map[string]Definition)}
	for _, def := range builtinCommands() {
		reg.Register(def)
	}
	return reg
}

func (g *Registry) Register(def Definition) {
	g.defs[def.Name] = def
}

func (g *Registry) Lookup(name string) (Definition, bool) {
	def, ok := g.defs[name]
	return def, ok
}

// Names lists registered command names, sorted.
func (g *Registry) Names() []string {
	names := make([]string, 0, len(g.defs))
	for name := range g.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func define(name string, cat Category, h HandlerFunc) Definition {
	return Definition{
		Name:          name,
		Category:      cat,
		Finish:        cat == CategoryFinish,
		KillsDigitArg: true,
		Handler:       h,
	}
}

func keepArg(def Definition) Definition {
	def.KillsDigitArg = false
	return def
}

func builtinCommands() []Definition {
	return []Definition{
		keepArg(define("digit-arg", CategoryOther, cmdDigitArg)),
		define("clear-screen", CategoryOther, cmdClearScreen),
		define("refresh", CategoryOther, cmdRefresh),
		define("repaint", CategoryOther, cmdRepaint),
		define("suspend", CategoryOther, cmdSuspend),
		define("help", CategoryOther, cmdHelp),
		define("invalid-key", CategoryOther, cmdInvalidKey),
		define("invalid-command", CategoryOther, cmdInvalidCommand),
		define("quoted-insert-char", CategoryOther, cmdQuotedInsertChar),
		keepArg(define("quoted-insert", CategoryOther, cmdQuotedInsert)),
		define("maybe-accept", CategoryOther, cmdMaybeAccept),

		define("kill-line", CategoryKill, cmdKillLine),
		define("unix-line-discard", CategoryKill, cmdUnixLineDiscard),
		define("unix-word-rubout", CategoryKill, cmdBackwardKillWord),
		define("kill-word", CategoryKill, cmdKillWord),
		define("backward-kill-word", CategoryKill, cmdBackwardKillWord),

		define("yank", CategoryYank, cmdYank),
		define("yank-pop", CategoryYank, cmdYankPop),

		define("up", CategoryMotion, cmdUp),
		define("down", CategoryMotion, cmdDown),
		define("left", CategoryMotion, cmdLeft),
		define("right", CategoryMotion, cmdRight),
		define("beginning-of-line", CategoryMotion, cmdBeginningOfLine),
		define("end-of-line", CategoryMotion, cmdEndOfLine),
		define("home", CategoryMotion, cmdHome),
		define("end", CategoryMotion, cmdEnd),
		define("forward-word", CategoryMotion, cmdForwardWord),
		define("backward-word", CategoryMotion, cmdBackwardWord),
		define("previous-history", CategoryMotion, cmdPreviousHistory),
		define("next-history", CategoryMotion, cmdNextHistory),
		define("beginning-of-history", CategoryMotion, cmdBeginningOfHistory),
		define("end-of-history", CategoryMotion, cmdEndOfHistory),

		define("self-insert", CategoryEdit, cmdSelfInsert),
		define("insert-nl", CategoryEdit, cmdInsertNL),
		define("transpose-characters", CategoryEdit, cmdTransposeCharacters),
		define("backspace", CategoryEdit, cmdBackspace),
		define("delete", CategoryEdit, cmdDelete),

		define("accept", CategoryFinish, cmdAccept),
		define("interrupt", CategoryFinish, cmdInterrupt),
	}
}

func lastRune(s string) rune {
	rs := []rune(s)
	if len(rs) == 0 {
		return 0
	}
	return rs[len(rs)-1]
}

// repeat returns text repeated n times; n <= 0 gives nothing.
func repeat(text string, n int) []rune {
	if n <= 0 {
		return nil
	}
	return []rune(strings.Repeat(text, n))
}

// MaxArg bounds the numeric argument in both directions.
const MaxArg = 1_000_000

// cmdDigitArg accumulates a signed count. A leading "-" leaves only a sign,
// so "-" "1" "2" yields -12. The count stops growing at MaxArg.
func cmdDigitArg(r *Reader, c *Command) error {
	ch := lastRune(c.Text())
	if ch == '-' {
		if !r.hasArg {
			r.arg = -1
			r.hasArg = true
			r.signOnly = true
		} else {
			r.arg = -r.arg
		}
		r.dirty = true
		return nil
	}
	if ch < '0' || ch > '9' {
		r.Error(fmt.Sprintf("%q is not a digit", ch))
		return nil
	}
	d := int(ch - '0')
	switch {
	case !r.hasArg:
		r.arg = d
		r.hasArg = true
	case r.signOnly:
		if r.arg < 0 {
			r.arg = -d
		} else {
			r.arg = d
		}
		r.signOnly = false
	case r.arg < 0:
		r.arg = max(10*r.arg-d, -MaxArg)
	default:
		r.arg = min(10*r.arg+d, MaxArg)
	}
	r.dirty = true
	return nil
}

func cmdClearScreen(r *Reader, c *Command) error {
	r.console.Clear()
	r.dirty = true
	return nil
}

func cmdRefresh(r *Reader, c *Command) error {
	r.dirty = true
	return nil
}

func cmdRepaint(r *Reader, c *Command) error {
	r.dirty = true
	r.console.RepaintPrep()
	return nil
}

func cmdSuspend(r *Reader, c *Command) error {
	p := r.pos
	r.console.Finish()
	if err := r.console.Suspend(); err != nil {
		logger.Warn("suspend failed", "error", err)
		r.Error("cannot suspend")
	}
	if err := r.console.Prepare(); err != nil {
		return fmt.Errorf("prepare console after suspend: %w", err)
	}
	r.pos = p
	r.dirty = true
	return nil
}

func cmdHelp(r *Reader, c *Command) error {
	r.msg = r.HelpText()
	r.dirty = true
	return nil
}

func cmdInvalidKey(r *Reader, c *Command) error {
	s := c.Text() + string(r.console.GetPending())
	r.Error(fmt.Sprintf("%q not bound", s))
	return nil
}

func cmdInvalidCommand(r *Reader, c *Command) error {
	logger.Warn("unknown command", "name", c.Name, "keys", c.Keys)
	r.Error(fmt.Sprintf("command %q not known", c.Name))
	return nil
}

func cmdQuotedInsertChar(r *Reader, c *Command) error {
	text := c.Text() + string(r.console.GetPending())
	r.Insert(repeat(text, r.GetArg(1)))
	return nil
}

func cmdQuotedInsert(r *Reader, c *Command) error {
	r.PushTransformer(quotedInsert{})
	return nil
}

// quotedInsert hands the next raw event to quoted-insert-char and pops itself.
type quotedInsert struct{}

func (quotedInsert) Handle(ev keys.Event) (string, []string, bool) {
	return "quoted-insert-char", []string{string(ev.Raw)}, true
}

// cmdMaybeAccept finishes when the input is complete or cannot be completed
// and otherwise continues it on a new line.
func cmdMaybeAccept(r *Reader, c *Command) error {
	if r.compiler == nil {
		c.Finish = true
		return nil
	}
	status := r.compiler.Compile(string(r.buffer))
	logger.Debug("maybe-accept", "status", status.String())
	if status == compiler.Incomplete {
		r.Insert([]rune{'\n'})
		return nil
	}
	c.Finish = true
	return nil
}

// cmdKillLine kills to the end of the line, or through the newline when only
// whitespace is left on it.
func cmdKillLine(r *Reader, c *Command) error {
	eol := r.EOL(-1)
	for _, ch := range r.buffer[r.pos:eol] {
		if !unicode.IsSpace(ch) {
			r.killRange(r.pos, eol)
			return nil
		}
	}
	r.killRange(r.pos, min(eol+1, len(r.buffer)))
	return nil
}

func cmdUnixLineDiscard(r *Reader, c *Command) error {
	r.killRange(r.BOL(-1), r.pos)
	return nil
}

func cmdKillWord(r *Reader, c *Command) error {
	for i := 0; i < r.GetArg(1) && r.pos < len(r.buffer); i++ {
		r.killRange(r.pos, r.EOW(-1))
	}
	return nil
}

func cmdBackwardKillWord(r *Reader, c *Command) error {
	for i := 0; i < r.GetArg(1) && r.pos > 0; i++ {
		r.killRange(r.BOW(-1), r.pos)
	}
	return nil
}

func cmdYank(r *Reader, c *Command) error {
	if r.killRing.Len() == 0 {
		r.Error("nothing to yank")
		return nil
	}
	r.Insert(r.killRing.Last())
	return nil
}

func cmdYankPop(r *Reader, c *Command) error {
	switch {
	case r.killRing.Len() == 0:
		r.Error("nothing to yank")
		return nil
	case r.lastCommand != CategoryYank:
		r.Error("previous command was not a yank")
		return nil
	}
	repl := len(r.killRing.Last())
	start := max(r.pos-repl, 0)
	r.killRing.rotate()
	t := r.killRing.Last()

	buf := make([]rune, 0, len(r.buffer)-(r.pos-start)+len(t))
	buf = append(buf, r.buffer[:start]...)
	buf = append(buf, t...)
	buf = append(buf, r.buffer[r.pos:]...)
	r.buffer = buf
	r.pos = start + len(t)
	r.dirty = true
	return nil
}

// moveBy moves the cursor n runes, stopping at either end of the buffer.
func (r *Reader) moveBy(n int) {
	switch {
	case n < 0 && -n > r.pos:
		r.pos = 0
		r.Error("start of buffer")
	case n > 0 && n > len(r.buffer)-r.pos:
		r.pos = len(r.buffer)
		r.Error("end of buffer")
	default:
		r.pos += n
	}
}

func cmdLeft(r *Reader, c *Command) error {
	r.moveBy(-r.GetArg(1))
	return nil
}

func cmdRight(r *Reader, c *Command) error {
	r.moveBy(r.GetArg(1))
	return nil
}

func cmdBeginningOfLine(r *Reader, c *Command) error {
	r.pos = r.BOL(-1)
	return nil
}

func cmdEndOfLine(r *Reader, c *Command) error {
	r.pos = r.EOL(-1)
	return nil
}

func cmdHome(r *Reader, c *Command) error {
	r.pos = 0
	return nil
}

func cmdEnd(r *Reader, c *Command) error {
	r.pos = len(r.buffer)
	return nil
}

func cmdForwardWord(r *Reader, c *Command) error {
	for i := 0; i < r.GetArg(1) && r.pos < len(r.buffer); i++ {
		r.pos = r.EOW(-1)
	}
	return nil
}

func cmdBackwardWord(r *Reader, c *Command) error {
	for i := 0; i < r.GetArg(1) && r.pos > 0; i++ {
		r.pos = r.BOW(-1)
	}
	return nil
}

func cmdSelfInsert(r *Reader, c *Command) error {
	r.Insert(repeat(c.Text(), r.GetArg(1)))
	return nil
}

func cmdInsertNL(r *Reader, c *Command) error {
	r.Insert(repeat("\n", r.GetArg(1)))
	return nil
}

// cmdTransposeCharacters drags the rune before the cursor forward by the
// argument. At the end of the buffer it swaps the last two runes.
func cmdTransposeCharacters(r *Reader, c *Command) error {
	s := r.pos - 1
	if s < 0 {
		r.Error("cannot transpose at start of buffer")
		return nil
	}
	if r.pos == len(r.buffer) {
		if len(r.buffer) < 2 {
			r.Error("cannot transpose at start of buffer")
			return nil
		}
		s = len(r.buffer) - 2
	}
	t := min(s+r.GetArg(1), len(r.buffer)-1)
	t = max(t, 0)
	ch := r.buffer[s]
	r.deleteRange(s, s+1)
	r.buffer = append(r.buffer[:t], append([]rune{ch}, r.buffer[t:]...)...)
	r.pos = min(t+1, len(r.buffer))
	r.dirty = true
	return nil
}

func cmdBackspace(r *Reader, c *Command) error {
	for i := 0; i < r.GetArg(1); i++ {
		if r.pos == 0 {
			r.Error("can't backspace at start")
			return nil
		}
		r.pos--
		r.deleteRange(r.pos, r.pos+1)
		r.dirty = true
	}
	return nil
}

// cmdDelete deletes forward. Ctrl-D on an empty buffer ends input.
func cmdDelete(r *Reader, c *Command) error {
	if r.pos == 0 && len(r.buffer) == 0 && lastRune(c.Text()) == '\x04' {
		r.refresh()
		r.console.Finish()
		return io.EOF
	}
	for i := 0; i < r.GetArg(1); i++ {
		if r.pos == len(r.buffer) {
			r.Error("end of buffer")
			return nil
		}
		r.deleteRange(r.pos, r.pos+1)
		r.dirty = true
	}
	return nil
}

func cmdAccept(r *Reader, c *Command) error {
	return nil
}

func cmdInterrupt(r *Reader, c *Command) error {
	r.console.Finish()
	return ErrInterrupted
}

// Package reader is the line editing engine: a rune buffer with a cursor,
// a kill ring, a numeric argument register and history navigation, driven
// by named commands that key events are translated into.
package reader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kobzarvs/qline/internal/compiler"
	"github.com/kobzarvs/qline/internal/config"
	"github.com/kobzarvs/qline/internal/keys"
	"github.com/kobzarvs/qline/internal/logger"
)

// ErrInterrupted is returned by Readline when the interrupt command runs.
var ErrInterrupted = errors.New("interrupted")

// Screen is what the reader wants shown: prompt-prefixed lines, the cursor
// as a rune offset into one of them, and an optional message below.
type Screen struct {
	Lines     []string
	CursorRow int
	CursorCol int
	Message   string
}

// Console is the terminal as the reader sees it.
type Console interface {
	Prepare() error
	Restore() error
	// GetEvent blocks until the next key event is decoded.
	GetEvent() (keys.Event, error)
	// GetPending drains raw bytes read but not yet handed out as events.
	GetPending() []byte
	Refresh(s Screen)
	Clear()
	RepaintPrep()
	Finish()
	Beep()
	Suspend() error
}

// Compiler decides whether the buffer is a complete unit of input.
type Compiler interface {
	Compile(text string) compiler.Status
}

// InputTransformer takes over key events while it is on the stack. It names
// the command to run and reports whether it should be popped.
type InputTransformer interface {
	Handle(ev keys.Event) (cmd string, seq []string, pop bool)
}

type Reader struct {
	console    Console
	compiler   Compiler
	registry   *Registry
	translator *Translator
	syntax     SyntaxTable

	buffer   []rune
	pos      int
	arg      int
	hasArg   bool
	signOnly bool
	dirty    bool
	msg      string

	killRing *KillRing
	// killed is set once the running command has killed text, so repeated
	// kills within one command extend the same entry.
	killed      bool
	lastCommand Category
	lastName    string

	transformers []InputTransformer

	history     []string
	historyi    int
	historySize int
	transient   map[int]string
	stickyY     int

	prompt     string
	contPrompt string
}

// New builds a reader over con using the keymap and options from cfg.
func New(con Console, cfg config.Config) (*Reader, error) {
	tr, err := NewTranslator(cfg.Keymap)
	if err != nil {
		return nil, fmt.Errorf("compile keymap: %w", err)
	}
	historySize := cfg.Reader.HistorySize
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	r := &Reader{
		console:     con,
		registry:    NewRegistry(),
		translator:  tr,
		syntax:      NewSyntaxTable(cfg.Reader.WordChars),
		killRing:    NewKillRing(cfg.Reader.KillRingSize),
		historySize: historySize,
		transient:   make(map[int]string),
		stickyY:     -1,
		prompt:      cfg.Reader.Prompt,
		contPrompt:  cfg.Reader.ContinuationPrompt,
	}
	r.reset()
	return r, nil
}

// SetCompiler installs the completeness check used by maybe-accept. With
// none, maybe-accept behaves like accept.
func (r *Reader) SetCompiler(c Compiler) {
	r.compiler = c
}

// SetPrompt changes the first-line and continuation prompts.
func (r *Reader) SetPrompt(prompt, cont string) {
	r.prompt = prompt
	r.contPrompt = cont
}

// Registry exposes the command table so hosts can add commands.
func (r *Reader) Registry() *Registry {
	return r.registry
}

func (r *Reader) Buffer() string {
	return string(r.buffer)
}

func (r *Reader) Pos() int {
	return r.pos
}

// Message returns the message waiting to be shown, if any.
func (r *Reader) Message() string {
	return r.msg
}

func (r *Reader) KillRing() *KillRing {
	return r.killRing
}

func (r *Reader) LastCommand() Category {
	return r.lastCommand
}

func (r *Reader) PushTransformer(t InputTransformer) {
	r.transformers = append(r.transformers, t)
}

func (r *Reader) PopTransformer() {
	if n := len(r.transformers); n > 0 {
		r.transformers = r.transformers[:n-1]
	}
}

// reset prepares for a fresh line. The kill ring and history survive.
func (r *Reader) reset() {
	r.buffer = nil
	r.pos = 0
	r.clearArg()
	r.msg = ""
	r.killed = false
	r.lastCommand = CategoryOther
	r.lastName = ""
	r.transformers = nil
	r.historyi = len(r.history)
	r.transient = make(map[int]string)
	r.stickyY = -1
	r.translator.Reset()
	r.dirty = true
}

// Readline reads one line of input. It returns io.EOF when input ends on an
// empty buffer and ErrInterrupted when the interrupt command runs.
func (r *Reader) Readline() (string, error) {
	if err := r.console.Prepare(); err != nil {
		return "", fmt.Errorf("prepare console: %w", err)
	}
	defer func() {
		if err := r.console.Restore(); err != nil {
			logger.Warn("restore console", "error", err)
		}
	}()

	r.reset()
	r.refresh()
	for {
		ev, err := r.console.GetEvent()
		if err != nil {
			return "", err
		}
		finished, err := r.Handle(ev)
		if err != nil {
			return "", err
		}
		if finished {
			break
		}
	}

	text := string(r.buffer)
	r.commitHistory(text)
	return text, nil
}

// Handle runs the command selected by one key event. It reports whether the
// command finished the line.
func (r *Reader) Handle(ev keys.Event) (bool, error) {
	if r.msg != "" {
		r.msg = ""
		r.dirty = true
	}

	var (
		name string
		seq  []string
	)
	if n := len(r.transformers); n > 0 {
		var pop bool
		name, seq, pop = r.transformers[n-1].Handle(ev)
		if pop {
			r.PopTransformer()
		}
	} else {
		var ok bool
		name, seq, ok = r.translator.Push(ev.Name)
		if !ok {
			return false, nil
		}
	}

	finished, err := r.Do(name, seq)
	if err != nil {
		return false, err
	}
	r.refresh()
	if finished {
		r.console.Finish()
	}
	return finished, nil
}

// Do runs the named command as if seq had been typed.
func (r *Reader) Do(name string, seq []string) (bool, error) {
	def, ok := r.registry.Lookup(name)
	if !ok {
		logger.Debug("command not registered", "name", name)
		def, _ = r.registry.Lookup("invalid-command")
	}
	c := &Command{
		Name:          name,
		Keys:          seq,
		Category:      def.Category,
		Finish:        def.Finish,
		KillsDigitArg: def.KillsDigitArg,
	}

	r.killed = false
	err := def.Handler(r, c)
	if c.KillsDigitArg {
		r.clearArg()
	}
	if def.Name != "digit-arg" {
		r.lastCommand = c.Category
		r.lastName = def.Name
	}
	r.clampPos()
	if err != nil {
		return false, err
	}
	return c.Finish, nil
}

func (r *Reader) clampPos() {
	r.pos = min(max(r.pos, 0), len(r.buffer))
}

// HelpText lists every key binding.
func (r *Reader) HelpText() string {
	var sb strings.Builder
	for i, b := range r.translator.Bindings() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%-18s %s", b.Spec, b.Command)
	}
	return sb.String()
}

// Screen lays out the buffer for display.
func (r *Reader) Screen() Screen {
	var s Screen
	lines := strings.Split(string(r.buffer), "\n")
	cursorLine := strings.Count(string(r.buffer[:r.pos]), "\n")
	cursorCol := r.pos - r.BOL(-1)
	for i, line := range lines {
		prompt := r.contPrompt
		if i == 0 {
			prompt = r.prompt
			if arg, ok := r.Arg(); ok {
				prompt = fmt.Sprintf("(arg: %d) ", arg)
			}
		}
		text, col := displayLine([]rune(line), cursorCol)
		s.Lines = append(s.Lines, prompt+text)
		if i == cursorLine {
			s.CursorRow = i
			s.CursorCol = len([]rune(prompt)) + col
		}
	}
	s.Message = r.msg
	return s
}

func (r *Reader) refresh() {
	if !r.dirty {
		return
	}
	r.console.Refresh(r.Screen())
	r.dirty = false
}

// displayLine renders control runes as ^X and maps rune offset col into the
// rendered text.
func displayLine(line []rune, col int) (string, int) {
	var sb strings.Builder
	n, out := 0, -1
	for i, ch := range line {
		if i == col {
			out = n
		}
		switch {
		case ch == 0x7f:
			sb.WriteString("^?")
			n += 2
		case ch < 0x20:
			sb.WriteByte('^')
			sb.WriteRune(ch + '@')
			n += 2
		default:
			sb.WriteRune(ch)
			n++
		}
	}
	if out < 0 {
		out = n
	}
	return sb.String(), out
}

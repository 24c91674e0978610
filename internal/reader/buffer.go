package reader

import (
	"unicode"

	"github.com/kobzarvs/qline/internal/logger"
)

// Syntax classifies a rune for word motion.
type Syntax int

const (
	SyntaxWhitespace Syntax = iota
	SyntaxWord
	SyntaxSymbol
)

// SyntaxTable decides which runes are word constituents. Letters and digits
// always are; extra runes can be promoted with NewSyntaxTable.
type SyntaxTable struct {
	extra map[rune]Syntax
}

func NewSyntaxTable(wordChars string) SyntaxTable {
	st := SyntaxTable{extra: make(map[rune]Syntax)}
	for _, r := range wordChars {
		st.extra[r] = SyntaxWord
	}
	return st
}

func (st SyntaxTable) Class(r rune) Syntax {
	if s, ok := st.extra[r]; ok {
		return s
	}
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return SyntaxWord
	case unicode.IsSpace(r):
		return SyntaxWhitespace
	case r < 256:
		return SyntaxSymbol
	}
	return SyntaxWord
}

func (r *Reader) isWord(p int) bool {
	return r.syntax.Class(r.buffer[p]) == SyntaxWord
}

func (r *Reader) at(p int) int {
	if p < 0 {
		return r.pos
	}
	return p
}

// BOL returns the start of the line containing p. Pass -1 for the cursor.
func (r *Reader) BOL(p int) int {
	p = r.at(p) - 1
	for p >= 0 && r.buffer[p] != '\n' {
		p--
	}
	return p + 1
}

// EOL returns the end of the line containing p. Pass -1 for the cursor.
func (r *Reader) EOL(p int) int {
	p = r.at(p)
	for p < len(r.buffer) && r.buffer[p] != '\n' {
		p++
	}
	return p
}

// BOW returns the start of the word before p. Pass -1 for the cursor.
func (r *Reader) BOW(p int) int {
	p = r.at(p) - 1
	for p >= 0 && !r.isWord(p) {
		p--
	}
	for p >= 0 && r.isWord(p) {
		p--
	}
	return p + 1
}

// EOW returns the end of the word after p. Pass -1 for the cursor.
func (r *Reader) EOW(p int) int {
	p = r.at(p)
	for p < len(r.buffer) && !r.isWord(p) {
		p++
	}
	for p < len(r.buffer) && r.isWord(p) {
		p++
	}
	return p
}

// Insert splices text in at the cursor and moves the cursor past it.
func (r *Reader) Insert(text []rune) {
	if len(text) == 0 {
		return
	}
	buf := make([]rune, 0, len(r.buffer)+len(text))
	buf = append(buf, r.buffer[:r.pos]...)
	buf = append(buf, text...)
	buf = append(buf, r.buffer[r.pos:]...)
	r.buffer = buf
	r.pos += len(text)
	r.dirty = true
}

// deleteRange removes buffer[start:end] and returns the removed runes.
func (r *Reader) deleteRange(start, end int) []rune {
	removed := append([]rune(nil), r.buffer[start:end]...)
	r.buffer = append(r.buffer[:start], r.buffer[end:]...)
	return removed
}

// GetArg returns the numeric argument, or def when none was given.
func (r *Reader) GetArg(def int) int {
	if !r.hasArg {
		return def
	}
	return r.arg
}

// Arg reports the pending numeric argument.
func (r *Reader) Arg() (int, bool) {
	return r.arg, r.hasArg
}

func (r *Reader) clearArg() {
	if r.hasArg {
		r.dirty = true
	}
	r.arg = 0
	r.hasArg = false
	r.signOnly = false
}

// Error records msg for the next refresh and rings the bell. Editing goes on.
func (r *Reader) Error(msg string) {
	logger.Debug("reader error", "msg", msg, "pos", r.pos)
	r.msg = msg
	r.dirty = true
	r.console.Beep()
}

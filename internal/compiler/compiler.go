// Package compiler decides whether a buffer holds a complete unit of input
// for a language, using tree-sitter grammars.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/qline/internal/logger"
)

var ErrUnknownGrammar = errors.New("unknown grammar")

type Status int

const (
	// Complete input can be accepted.
	Complete Status = iota
	// Incomplete input could still become valid with more lines.
	Incomplete
	// Invalid input is broken whatever follows; it is accepted so the
	// caller can report the error.
	Invalid
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func languageForName(name string) *sitter.Language {
	switch name {
	case "bash":
		return bash.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "go":
		return golang.GetLanguage()
	case "toml":
		return toml.GetLanguage()
	case "yaml":
		return yaml.GetLanguage()
	default:
		return nil
	}
}

// Grammars lists the grammar names New accepts.
func Grammars() []string {
	return []string{"bash", "go", "python", "toml", "yaml"}
}

type Compiler struct {
	grammar string
	parser  *sitter.Parser
	mu      sync.Mutex
}

func New(grammar string) (*Compiler, error) {
	lang := languageForName(grammar)
	if lang == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGrammar, grammar)
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Compiler{grammar: grammar, parser: p}, nil
}

func (c *Compiler) Grammar() string {
	return c.grammar
}

func (c *Compiler) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parser != nil {
		c.parser.Close()
		c.parser = nil
	}
}

// Compile classifies text. Empty input is complete.
func (c *Compiler) Compile(text string) Status {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if trimmed == "" {
		return Complete
	}
	if strings.HasSuffix(trimmed, "\\") {
		return Incomplete
	}
	if c.grammar == "python" && openBlock(text, trimmed) {
		return Incomplete
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parser == nil {
		return Complete
	}
	tree, err := c.parser.ParseCtx(context.Background(), nil, []byte(text))
	if err != nil {
		logger.Warn("parse input", "grammar", c.grammar, "error", err)
		return Invalid
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return Complete
	}
	end := uint32(len(trimmed))
	if missingAtEnd(root, end) {
		return Incomplete
	}
	if unfinished(trimmed) {
		return Incomplete
	}
	return Invalid
}

// openBlock reports a python compound statement that has not been closed by
// an empty line yet.
func openBlock(text, trimmed string) bool {
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	return strings.Contains(trimmed, ":\n") && !strings.HasSuffix(text, "\n")
}

func missingAtEnd(n *sitter.Node, end uint32) bool {
	if n.IsMissing() && n.EndByte() >= end {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if missingAtEnd(n.Child(i), end) {
			return true
		}
	}
	return false
}

// unfinished looks for an open bracket, an unterminated quote or a trailing
// operator that expects more input.
func unfinished(s string) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	if quote != 0 || depth > 0 {
		return true
	}
	for _, op := range []string{"|", "&&", "||", "=", ",", "+", "-", "*", "/"} {
		if strings.HasSuffix(s, op) {
			return depth == 0
		}
	}
	return false
}

// Package keys turns raw terminal input into logical key events.
//
// A Trie is compiled once from a table of raw byte sequences (as reported by
// the terminal's capabilities) to logical key names. A Decoder walks the trie
// one byte at a time and emits an Event for every recognised key sequence or
// decoded piece of text.
package keys

import (
	"errors"
	"fmt"
	"sort"
)

// ErrAmbiguousKeyBinding is matched by every *AmbiguousKeyBindingError.
var ErrAmbiguousKeyBinding = errors.New("ambiguous key binding")

// AmbiguousKeyBindingError reports two sequences that cannot both live in a
// trie because one is a prefix of the other.
type AmbiguousKeyBindingError struct {
	Seq   string
	Other string
}

func (e *AmbiguousKeyBindingError) Error() string {
	if e.Other == "" {
		return fmt.Sprintf("ambiguous key binding: %q", e.Seq)
	}
	return fmt.Sprintf("ambiguous key binding: %q conflicts with %q", e.Seq, e.Other)
}

func (e *AmbiguousKeyBindingError) Unwrap() error {
	return ErrAmbiguousKeyBinding
}

type node struct {
	name string // set on leaves
	seq  string // full sequence of a leaf, for error reports
	next map[byte]*node
}

func (n *node) isLeaf() bool {
	return n.next == nil
}

// Trie is a compiled keymap. It is immutable once built.
type Trie struct {
	root *node
}

// Compile builds a trie from a table of raw sequence -> key name.
func Compile(table map[string]string) (*Trie, error) {
	seqs := make([]string, 0, len(table))
	for seq := range table {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	root := &node{next: map[byte]*node{}}
	for _, seq := range seqs {
		if err := root.add(seq, table[seq]); err != nil {
			return nil, err
		}
	}
	return &Trie{root: root}, nil
}

func (n *node) add(seq, name string) error {
	if seq == "" {
		return &AmbiguousKeyBindingError{Seq: seq}
	}
	cur := n
	for i := 0; i < len(seq); i++ {
		b := seq[i]
		child, ok := cur.next[b]
		if i == len(seq)-1 {
			if ok {
				return &AmbiguousKeyBindingError{Seq: seq, Other: child.anySeq()}
			}
			cur.next[b] = &node{name: name, seq: seq}
			return nil
		}
		if !ok {
			child = &node{next: map[byte]*node{}}
			cur.next[b] = child
		} else if child.isLeaf() {
			return &AmbiguousKeyBindingError{Seq: seq, Other: child.seq}
		}
		cur = child
	}
	return nil
}

// anySeq returns the sequence of some leaf at or below n.
func (n *node) anySeq() string {
	for n != nil && !n.isLeaf() {
		var next *node
		for _, child := range n.next {
			next = child
			break
		}
		n = next
	}
	if n == nil {
		return ""
	}
	return n.seq
}

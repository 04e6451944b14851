// Package sexp is a small streaming S-expression reader for SDF timing files.
//
// Atoms are returned verbatim: numbers, value triples such as "1.5:2.0:2.5"
// and hierarchical names all arrive as Symbol. Quoted strings lose their
// quotes.
package sexp

import (
	"io"
	"strings"
)

// Sexp is either an atom (Symbol) or a *List.
type Sexp interface {
	IsLeaf() bool
	String() string
}

// Symbol is an atom.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// List is a parenthesized sequence of expressions.
type List struct {
	elements []Sexp
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.elements)
}

// Get returns the element at index, or nil when out of range.
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Items returns the elements of the list.
func (l *List) Items() []Sexp {
	return l.elements
}

// Keyword returns the leading symbol of the list, or "" if it has none.
func (l *List) Keyword() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString parses s.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

package sexp

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer tokenizes SDF text. It skips "//" line comments and "/* */" block
// comments, and keeps backslash-escaped characters inside symbols.
type Lexer struct {
	reader *bufio.Reader
	peeked []rune
	line   int
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NextToken reads the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		if err == io.EOF {
			return Token{Type: TokenEOF, Line: l.line}, nil
		}
		return Token{}, err
	}

	ch, err := l.peek()
	if err != nil {
		if err == io.EOF {
			return Token{Type: TokenEOF, Line: l.line}, nil
		}
		return Token{}, err
	}

	switch ch {
	case '(':
		l.read()
		return Token{Type: TokenLeftParen, Value: "(", Line: l.line}, nil
	case ')':
		l.read()
		return Token{Type: TokenRightParen, Value: ")", Line: l.line}, nil
	case '"':
		return l.readString()
	default:
		return l.readSymbol()
	}
}

func (l *Lexer) skipSpaceAndComments() error {
	for {
		ch, err := l.peek()
		if err != nil {
			return err
		}
		if unicode.IsSpace(ch) {
			l.read()
			continue
		}
		if ch != '/' {
			return nil
		}

		next, err := l.peekAt(1)
		if err != nil {
			// A lone '/' at EOF is a symbol.
			return nil
		}
		switch next {
		case '/':
			for {
				c, err := l.read()
				if err != nil {
					return err
				}
				if c == '\n' {
					break
				}
			}
		case '*':
			l.read()
			l.read()
			start := l.line
			var prev rune
			for {
				c, err := l.read()
				if err != nil {
					if err == io.EOF {
						return fmt.Errorf("line %d: unterminated block comment", start)
					}
					return err
				}
				if prev == '*' && c == '/' {
					break
				}
				prev = c
			}
		default:
			return nil
		}
	}
}

// peek looks at the next rune without consuming it
func (l *Lexer) peek() (rune, error) {
	return l.peekAt(0)
}

// peekAt looks n runes ahead without consuming anything.
func (l *Lexer) peekAt(n int) (rune, error) {
	for len(l.peeked) <= n {
		ch, _, err := l.reader.ReadRune()
		if err != nil {
			return 0, err
		}
		l.peeked = append(l.peeked, ch)
	}
	return l.peeked[n], nil
}

// read consumes and returns the next rune
func (l *Lexer) read() (rune, error) {
	var ch rune
	if len(l.peeked) > 0 {
		ch = l.peeked[0]
		l.peeked = l.peeked[1:]
	} else {
		var err error
		ch, _, err = l.reader.ReadRune()
		if err != nil {
			return 0, err
		}
	}
	if ch == '\n' {
		l.line++
	}
	return ch, nil
}

// readString reads a quoted string
func (l *Lexer) readString() (Token, error) {
	line := l.line
	l.read()

	var result []rune
	for {
		ch, err := l.read()
		if err != nil {
			if err == io.EOF {
				return Token{}, fmt.Errorf("line %d: unexpected EOF in string", line)
			}
			return Token{}, err
		}
		if ch == '"' {
			break
		}
		if ch == '\\' {
			next, err := l.read()
			if err != nil {
				return Token{}, fmt.Errorf("line %d: unexpected EOF after backslash", line)
			}
			result = append(result, next)
			continue
		}
		result = append(result, ch)
	}

	return Token{Type: TokenString, Value: string(result), Line: line}, nil
}

// readSymbol reads an unquoted atom. A backslash escapes the following
// character, so "a\(1\)" is a single symbol.
func (l *Lexer) readSymbol() (Token, error) {
	line := l.line
	var result []rune

	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Token{}, err
		}

		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}

		l.read()
		result = append(result, ch)
		if ch == '\\' {
			next, err := l.read()
			if err != nil {
				break
			}
			result = append(result, next)
		}
	}

	if len(result) == 0 {
		return Token{}, fmt.Errorf("line %d: empty symbol", line)
	}

	return Token{Type: TokenSymbol, Value: string(result), Line: line}, nil
}

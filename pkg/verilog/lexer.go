package verilog

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes structural Verilog. Comments, compiler directives and
// attribute instances are separate token types so the scanner can drop them.
// The final catch-all rule means lexing never fails on odd punctuation.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "Directive", Pattern: "`[A-Za-z_]\\w*[^\\n]*"},
	{Name: "Attribute", Pattern: `\(\*\s*[A-Za-z_][^)]*\*\)`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "EscapedIdent", Pattern: `\\\S+`},
	{Name: "Number", Pattern: `\d*'[sS]?[bBoOdDhH][0-9a-fA-F_xXzZ?]+|\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][\w$]*`},
	{Name: "Punct", Pattern: `\S`},
})

var (
	symbols     = Lexer.Symbols()
	tokIdent    = symbols["Ident"]
	tokEscaped  = symbols["EscapedIdent"]
	tokPunct    = symbols["Punct"]
	ignoredToks = map[lexer.TokenType]bool{
		symbols["Whitespace"]:   true,
		symbols["BlockComment"]: true,
		symbols["LineComment"]:  true,
		symbols["Directive"]:    true,
		symbols["Attribute"]:    true,
	}
)

// token is a significant lexeme. Escaped identifiers are stored without
// their leading backslash.
type token struct {
	kind  lexer.TokenType
	value string
	line  int
}

func (t token) isIdent() bool {
	return t.kind == tokIdent || t.kind == tokEscaped
}

func (t token) is(punct string) bool {
	return t.kind == tokPunct && t.value == punct
}

// tokenize lexes content and drops whitespace, comments and directives.
func tokenize(content string) ([]token, error) {
	lex, err := Lexer.LexString("", content)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	out := make([]token, 0, len(raw)/2)
	for _, t := range raw {
		if t.EOF() || ignoredToks[t.Type] {
			continue
		}
		v := t.Value
		if t.Type == tokEscaped {
			v = strings.TrimPrefix(v, `\`)
		}
		out = append(out, token{kind: t.Type, value: v, line: t.Pos.Line})
	}
	return out, nil
}

// StripComments returns content with every comment removed. Block comments
// become a single space so adjacent tokens stay apart.
func StripComments(content string) string {
	lex, err := Lexer.LexString("", content)
	if err != nil {
		return content
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, t := range raw {
		switch {
		case t.EOF():
		case t.Type == symbols["BlockComment"]:
			b.WriteByte(' ')
		case t.Type == symbols["LineComment"]:
		default:
			b.WriteString(t.Value)
		}
	}
	return b.String()
}

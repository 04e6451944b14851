package sdf

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Triple is a min:typ:max delay value. Set is false for an empty value
// list "()", which SDF uses for "no delay given".
type Triple struct {
	Min float64 `json:"min"`
	Typ float64 `json:"typ"`
	Max float64 `json:"max"`
	Set bool    `json:"-"`
}

// tripleLexer tokenizes the inside of an SDF value list.
var tripleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// tripleExpr is the grammar for "min:typ:max", "min:typ", "value" and forms
// with empty fields such as "::2.5".
type tripleExpr struct {
	Min *float64 `parser:"@Number?"`
	Typ *float64 `parser:"( Colon @Number?"`
	Max *float64 `parser:"  ( Colon @Number? )? )?"`
}

var tripleParser = participle.MustBuild[tripleExpr](
	participle.Lexer(tripleLexer),
	participle.Elide("Whitespace"),
)

// ParseTriple parses the text of one value list (without parentheses).
//
// A single value applies to all three fields. With two values the second is
// reused for max. Empty fields take the typical value when present, else the
// nearest given value.
func ParseTriple(s string) (Triple, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Triple{}, nil
	}

	expr, err := tripleParser.ParseString("", s)
	if err != nil {
		return Triple{}, fmt.Errorf("sdf: value %q: %w", s, err)
	}

	fields := []*float64{expr.Min, expr.Typ, expr.Max}
	var given []float64
	for _, f := range fields {
		if f != nil {
			given = append(given, *f)
		}
	}
	if len(given) == 0 {
		return Triple{}, nil
	}

	if !strings.Contains(s, ":") {
		v := given[0]
		return Triple{Min: v, Typ: v, Max: v, Set: true}, nil
	}
	if strings.Count(s, ":") == 1 && expr.Min != nil && expr.Typ != nil {
		return Triple{Min: *expr.Min, Typ: *expr.Typ, Max: *expr.Typ, Set: true}, nil
	}

	fallback := given[0]
	if expr.Typ != nil {
		fallback = *expr.Typ
	}
	pick := func(f *float64) float64 {
		if f != nil {
			return *f
		}
		return fallback
	}
	return Triple{Min: pick(expr.Min), Typ: pick(expr.Typ), Max: pick(expr.Max), Set: true}, nil
}

// Worst returns the larger of the two maxima.
func Worst(a, b Triple) float64 {
	if a.Max > b.Max {
		return a.Max
	}
	return b.Max
}

// Package catalog holds the fixed pattern data used to classify netlist and
// timing-annex text: the component keyword catalog and the delay pattern.
//
// Both are compiled once and never mutated afterwards, so a single value can
// be shared by every analysis pass and replaced wholesale in tests.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Built-in component labels.
const (
	LabelFlipFlop = "Flip-Flop"
	LabelLUT      = "LUT"
)

// ErrEmptyCatalog is returned when a catalog is built without any entries.
var ErrEmptyCatalog = errors.New("catalog: no component entries")

// Entry is one component label together with the patterns that detect it.
type Entry struct {
	Label    string
	Patterns []string
}

// Catalog maps component labels to compiled, case-insensitive patterns.
type Catalog struct {
	labels   []string
	patterns map[string][]*regexp.Regexp
	sources  map[string][]string
}

// New compiles the given entries. Entries sharing a label are merged.
func New(entries ...Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		patterns: make(map[string][]*regexp.Regexp),
		sources:  make(map[string][]string),
	}
	for _, e := range entries {
		if e.Label == "" {
			return nil, fmt.Errorf("catalog: entry without label")
		}
		if len(e.Patterns) == 0 {
			return nil, fmt.Errorf("catalog: %s: no patterns", e.Label)
		}
		if _, seen := c.patterns[e.Label]; !seen {
			c.labels = append(c.labels, e.Label)
		}
		for _, p := range e.Patterns {
			re, err := compileFold(p)
			if err != nil {
				return nil, fmt.Errorf("catalog: %s: %w", e.Label, err)
			}
			c.patterns[e.Label] = append(c.patterns[e.Label], re)
			c.sources[e.Label] = append(c.sources[e.Label], p)
		}
	}
	sort.Strings(c.labels)
	return c, nil
}

// MustNew is like New but panics on error. Intended for package-level data.
func MustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// FlipFlopPatterns are the keyword patterns that identify a flip-flop.
var FlipFlopPatterns = []string{
	`\bDFF\b`,                       // generic D flip-flop
	`\bFDRE\b`,                      // Xilinx FDRE
	`\balways\s*@\s*\(\s*posedge\b`, // clocked always block
	`\bQ\s*<=\s*D\b`,                // Q <= D;
}

// LUTPatterns identify a lookup table.
var LUTPatterns = []string{`\bLUT\b`}

// Default returns the built-in flip-flop / LUT catalog.
func Default() *Catalog {
	return MustNew(
		Entry{Label: LabelFlipFlop, Patterns: FlipFlopPatterns},
		Entry{Label: LabelLUT, Patterns: LUTPatterns},
	)
}

// Labels returns all labels in sorted order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Patterns returns the source patterns registered for label.
func (c *Catalog) Patterns(label string) []string {
	src := c.sources[label]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Matches reports whether any pattern of label matches content.
func (c *Catalog) Matches(label, content string) bool {
	for _, re := range c.patterns[label] {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// Len returns the number of labels.
func (c *Catalog) Len() int {
	return len(c.labels)
}

// compileFold compiles p so that it matches regardless of letter case.
func compileFold(p string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(p, "(?i)") {
		p = "(?i)" + p
	}
	return regexp.Compile(p)
}

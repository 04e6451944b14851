// Package extract scans netlist and timing-annex text for catalog keywords
// and delay values.
//
// Every function here works on whole-file content. Malformed input never
// produces an error, it only yields fewer matches.
package extract

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/catalog"
)

// LabelSet is an unordered set of catalog labels.
type LabelSet map[string]struct{}

// NewLabelSet builds a set from labels.
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether label is in the set.
func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Union returns a new set holding the labels of s and other.
func (s LabelSet) Union(other LabelSet) LabelSet {
	out := make(LabelSet, len(s)+len(other))
	for l := range s {
		out[l] = struct{}{}
	}
	for l := range other {
		out[l] = struct{}{}
	}
	return out
}

// Sorted returns the labels in lexical order.
func (s LabelSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// DetectLabels returns every catalog label whose pattern matches content.
func DetectLabels(content string, c *catalog.Catalog) LabelSet {
	found := make(LabelSet)
	for _, label := range c.Labels() {
		if c.Matches(label, content) {
			found[label] = struct{}{}
		}
	}
	return found
}

// ExtractDelays returns the value group of every non-overlapping match of p
// in content, in order of appearance. Captures that do not parse
// as a number are skipped. The result is never nil.
func ExtractDelays(content string, p *catalog.DelayPattern) []float64 {
	matches := p.Regexp().FindAllStringSubmatch(content, -1)
	delays := make([]float64, 0, len(matches))
	g := p.Group()
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[g], 64)
		if err != nil {
			continue
		}
		delays = append(delays, v)
	}
	return delays
}

// ReadFile reads the whole file at path as text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract: read %s: %w", path, err)
	}
	return string(data), nil
}

// ScanFile reads path and detects catalog labels in it.
func ScanFile(path string, c *catalog.Catalog) (LabelSet, error) {
	content, err := ReadFile(path)
	if err != nil {
		return LabelSet{}, err
	}
	return DetectLabels(content, c), nil
}

// DelaysFromFile reads path and extracts delays with p.
func DelaysFromFile(path string, p *catalog.DelayPattern) ([]float64, error) {
	content, err := ReadFile(path)
	if err != nil {
		return []float64{}, err
	}
	return ExtractDelays(content, p), nil
}

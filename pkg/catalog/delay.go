package catalog

import (
	"fmt"
	"regexp"
)

// Source patterns for the built-in delay extractors.
const (
	// FirstValueSource captures the first number of every IOPATH value list.
	FirstValueSource = `IOPATH\s+\S+\s+\S+\s+\(\s*([\d\.]+)`

	// TripleSource captures pins and the min:typ:max triple of an IOPATH.
	// The min field is the delay value.
	TripleSource = `\(IOPATH\s+(\w+)\s+(\w+)\s+\((?P<delay>[\d\.]+):([\d\.]+):([\d\.]+)\)`
)

// ValueGroupName names the capture group holding the delay in a custom
// pattern. Without it the first group is used.
const ValueGroupName = "delay"

// DelayPattern is a compiled timing pattern. One capture group holds the
// numeric delay value.
type DelayPattern struct {
	Name  string
	re    *regexp.Regexp
	group int
}

// NewDelayPattern compiles src. The pattern must have at least one capture
// group; a group named "delay" takes precedence over the first one.
func NewDelayPattern(name, src string) (*DelayPattern, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("catalog: delay pattern %s: %w", name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("catalog: delay pattern %s: no capture group", name)
	}
	group := 1
	if i := re.SubexpIndex(ValueGroupName); i > 0 {
		group = i
	}
	return &DelayPattern{Name: name, re: re, group: group}, nil
}

// Group is the index of the capture group holding the delay value.
func (p *DelayPattern) Group() int {
	return p.group
}

// Regexp exposes the compiled expression.
func (p *DelayPattern) Regexp() *regexp.Regexp {
	return p.re
}

// String returns the source expression.
func (p *DelayPattern) String() string {
	return p.re.String()
}

var (
	firstValue = mustDelay("first", FirstValueSource)
	triple     = mustDelay("triple", TripleSource)
)

// FirstValuePattern returns the pattern used by the schematic analysis.
func FirstValuePattern() *DelayPattern { return firstValue }

// TriplePattern returns the min/typ/max-aware IOPATH pattern.
func TriplePattern() *DelayPattern { return triple }

// LookupDelayPattern resolves a built-in name ("first", "triple") or compiles
// name as a custom expression.
func LookupDelayPattern(name string) (*DelayPattern, error) {
	switch name {
	case "", "first":
		return firstValue, nil
	case "triple":
		return triple, nil
	default:
		return NewDelayPattern("custom", name)
	}
}

func mustDelay(name, src string) *DelayPattern {
	p, err := NewDelayPattern(name, src)
	if err != nil {
		panic(err)
	}
	return p
}

// Package sdf reads the structure of Standard Delay Format timing annex files:
// the header, per-cell IOPATH delays with rise/fall triples, and timing checks.
//
// Unlike the keyword scanners in package extract, this parser needs
// well-formed input and reports an error otherwise.
package sdf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/sdf/sexp"
)

// File is a parsed DELAYFILE.
type File struct {
	Version   string `json:"sdf_version,omitempty"`
	Design    string `json:"design,omitempty"`
	Vendor    string `json:"vendor,omitempty"`
	Program   string `json:"program,omitempty"`
	Divider   string `json:"divider,omitempty"`
	Timescale string `json:"timescale,omitempty"`
	Cells     []Cell `json:"cells"`
}

// Cell is one CELL entry.
type Cell struct {
	Type     string      `json:"cell_type"`
	Instance string      `json:"instance"`
	IOPaths  []PathDelay `json:"iopaths,omitempty"`
	Checks   []Check     `json:"timing_checks,omitempty"`
}

// PathDelay is an IOPATH: the delay from an input pin to an output pin.
// Edge-qualified ports like "(posedge clock)" keep the edge in From.
type PathDelay struct {
	From        string  `json:"input_port"`
	To          string  `json:"output_port"`
	Rise        Triple  `json:"rise"`
	Fall        Triple  `json:"fall"`
	Incremental bool    `json:"incremental,omitempty"`
	Cond        string  `json:"cond,omitempty"`
	MaxDelay    float64 `json:"max_delay"`
}

// Check is a TIMINGCHECK entry such as SETUP or HOLD.
type Check struct {
	Kind  string `json:"type"`
	Port1 string `json:"port1"`
	Port2 string `json:"port2"`
	Value Triple `json:"value"`
	// Second holds the hold value of a SETUPHOLD / RECREM pair.
	Second *Triple `json:"second,omitempty"`
}

// Summary aggregates a file's timing data.
type Summary struct {
	TotalDelays          int     `json:"total_delays"`
	MaxDelay             float64 `json:"max_delay"`
	ComponentsWithTiming int     `json:"components_with_timing"`
}

// checkKinds are the TIMINGCHECK keywords that are read.
var checkKinds = map[string]bool{
	"SETUP":     true,
	"HOLD":      true,
	"SETUPHOLD": true,
	"RECOVERY":  true,
	"REMOVAL":   true,
	"RECREM":    true,
	"WIDTH":     true,
	"PERIOD":    true,
	"SKEW":      true,
	"NOCHANGE":  true,
}

// ParseFile parses the SDF file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sdf: open %s: %w", path, err)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("sdf: %s: %w", path, err)
	}
	return file, nil
}

// ParseString parses SDF text.
func ParseString(s string) (*File, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads one DELAYFILE from r.
func Parse(r io.Reader) (*File, error) {
	exprs, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("syntax: %w", err)
	}

	var root *sexp.List
	for _, e := range exprs {
		if l, ok := e.(*sexp.List); ok && strings.EqualFold(l.Keyword(), "DELAYFILE") {
			root = l
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("no DELAYFILE")
	}

	file := &File{Cells: []Cell{}}
	for _, item := range lists(root) {
		switch strings.ToUpper(item.Keyword()) {
		case "SDFVERSION":
			file.Version = argString(item, 1)
		case "DESIGN":
			file.Design = argString(item, 1)
		case "VENDOR":
			file.Vendor = argString(item, 1)
		case "PROGRAM":
			file.Program = argString(item, 1)
		case "DIVIDER":
			file.Divider = argString(item, 1)
		case "TIMESCALE":
			file.Timescale = joinArgs(item)
		case "CELL":
			cell, err := parseCell(item)
			if err != nil {
				return nil, err
			}
			file.Cells = append(file.Cells, cell)
		}
	}
	return file, nil
}

func parseCell(l *sexp.List) (Cell, error) {
	var cell Cell
	for _, item := range lists(l) {
		switch strings.ToUpper(item.Keyword()) {
		case "CELLTYPE":
			cell.Type = argString(item, 1)
		case "INSTANCE":
			cell.Instance = joinArgs(item)
		case "DELAY":
			for _, block := range lists(item) {
				kw := strings.ToUpper(block.Keyword())
				if kw != "ABSOLUTE" && kw != "INCREMENT" {
					continue
				}
				if err := collectIOPaths(block, kw == "INCREMENT", "", &cell); err != nil {
					return cell, fmt.Errorf("cell %s: %w", cell.Instance, err)
				}
			}
		case "TIMINGCHECK":
			for _, tc := range lists(item) {
				if !checkKinds[strings.ToUpper(tc.Keyword())] {
					continue
				}
				check, err := parseCheck(tc)
				if err != nil {
					return cell, fmt.Errorf("cell %s: %w", cell.Instance, err)
				}
				cell.Checks = append(cell.Checks, check)
			}
		}
	}
	return cell, nil
}

// collectIOPaths walks an ABSOLUTE/INCREMENT block, descending into COND.
func collectIOPaths(block *sexp.List, incremental bool, cond string, cell *Cell) error {
	for _, item := range lists(block) {
		switch strings.ToUpper(item.Keyword()) {
		case "IOPATH":
			pd, err := parseIOPath(item)
			if err != nil {
				return err
			}
			pd.Incremental = incremental
			pd.Cond = cond
			cell.IOPaths = append(cell.IOPaths, pd)
		case "COND":
			// (COND [name] expr (IOPATH ...)); the last element is the path.
			var parts []string
			for _, e := range item.Items()[1:] {
				if e.IsLeaf() {
					parts = append(parts, e.String())
				} else if sub, ok := e.(*sexp.List); ok && !strings.EqualFold(sub.Keyword(), "IOPATH") {
					parts = append(parts, sub.String())
				}
			}
			if err := collectIOPaths(item, incremental, strings.Join(parts, " "), cell); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseIOPath handles (IOPATH in out (rise) [(fall)]).
func parseIOPath(l *sexp.List) (PathDelay, error) {
	if l.Len() < 4 {
		return PathDelay{}, fmt.Errorf("IOPATH: too few fields: %s", l)
	}
	pd := PathDelay{
		From: portName(l.Get(1)),
		To:   portName(l.Get(2)),
	}

	values, err := valueLists(l, 3)
	if err != nil {
		return PathDelay{}, fmt.Errorf("IOPATH %s %s: %w", pd.From, pd.To, err)
	}
	pd.Rise = values[0]
	pd.Fall = values[0]
	if len(values) > 1 {
		pd.Fall = values[1]
	}
	pd.MaxDelay = Worst(pd.Rise, pd.Fall)
	return pd, nil
}

// parseCheck handles (KIND port1 port2 (value) [(value)]) and the
// single-port forms (WIDTH port (value)), (PERIOD port (value)).
func parseCheck(l *sexp.List) (Check, error) {
	check := Check{Kind: strings.ToLower(l.Keyword())}

	idx := 1
	var ports []string
	for ; idx < l.Len() && len(ports) < 2; idx++ {
		e := l.Get(idx)
		if isValueList(e) {
			break
		}
		ports = append(ports, portName(e))
	}
	if len(ports) > 0 {
		check.Port1 = ports[0]
	}
	if len(ports) > 1 {
		check.Port2 = ports[1]
	}

	values, err := valueLists(l, idx)
	if err != nil {
		return Check{}, fmt.Errorf("%s: %w", l.Keyword(), err)
	}
	check.Value = values[0]
	if len(values) > 1 {
		second := values[1]
		check.Second = &second
	}
	return check, nil
}

// valueLists parses every value list from index start onwards. At least one
// must be present.
func valueLists(l *sexp.List, start int) ([]Triple, error) {
	var out []Triple
	for i := start; i < l.Len(); i++ {
		e := l.Get(i)
		if !isValueList(e) {
			continue
		}
		sub := e.(*sexp.List)
		atoms := make([]string, sub.Len())
		for j := range atoms {
			atoms[j] = sub.Get(j).String()
		}
		t, err := ParseTriple(strings.Join(atoms, " "))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("missing delay value")
	}
	return out, nil
}

// isValueList reports whether e is "()" or "(number...)".
func isValueList(e sexp.Sexp) bool {
	l, ok := e.(*sexp.List)
	if !ok {
		return false
	}
	if l.Len() == 0 {
		return true
	}
	for i := 0; i < l.Len(); i++ {
		if !l.Get(i).IsLeaf() {
			return false
		}
	}
	s := l.Get(0).String()
	if s == "" {
		return false
	}
	c := s[0]
	return c == ':' || c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

// portName renders a port spec; edge specs become "posedge clock".
func portName(e sexp.Sexp) string {
	if e == nil {
		return ""
	}
	if e.IsLeaf() {
		return e.String()
	}
	l := e.(*sexp.List)
	parts := make([]string, 0, l.Len())
	for _, item := range l.Items() {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, " ")
}

// lists returns the list children of l, skipping atoms.
func lists(l *sexp.List) []*sexp.List {
	var out []*sexp.List
	for _, e := range l.Items() {
		if sub, ok := e.(*sexp.List); ok {
			out = append(out, sub)
		}
	}
	return out
}

func argString(l *sexp.List, index int) string {
	e := l.Get(index)
	if e == nil {
		return ""
	}
	return e.String()
}

// joinArgs joins every argument after the keyword, e.g. (TIMESCALE 1 ps).
func joinArgs(l *sexp.List) string {
	items := l.Items()
	if len(items) <= 1 {
		return ""
	}
	parts := make([]string, 0, len(items)-1)
	for _, e := range items[1:] {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " ")
}

// Summary counts IOPATHs and timing checks, the worst IOPATH delay, and the
// number of distinct instances that carry any timing entry.
func (f *File) Summary() Summary {
	var s Summary
	instances := make(map[string]struct{})
	first := true
	for _, c := range f.Cells {
		n := len(c.IOPaths) + len(c.Checks)
		s.TotalDelays += n
		if n > 0 {
			instances[c.Instance] = struct{}{}
		}
		for _, p := range c.IOPaths {
			if first || p.MaxDelay > s.MaxDelay {
				s.MaxDelay = p.MaxDelay
				first = false
			}
		}
	}
	s.ComponentsWithTiming = len(instances)
	return s
}

// Instances returns the distinct instance names in sorted order.
func (f *File) Instances() []string {
	seen := make(map[string]struct{})
	for _, c := range f.Cells {
		seen[c.Instance] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

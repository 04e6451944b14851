// Package verilog extracts the structure of a flat Verilog netlist: module
// name, ports, wires and cell instances with their pin connections.
//
// The scanner works on tokens, not on a full grammar. Constructs it does not
// recognise are skipped, so malformed input yields a sparser netlist rather
// than an error.
package verilog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// UnknownModule is reported when no module declaration is found.
const UnknownModule = "UnknownModule"

// Instance categories.
const (
	CategoryDFF          = "DFF"
	CategoryLUT          = "LUT"
	CategoryBRAM         = "BRAM"
	CategoryMUX          = "MUX"
	CategoryDSP          = "DSP"
	CategoryIOB          = "IOB"
	CategoryInterconnect = "Interconnect"
	CategoryUnknown      = "Unknown"
)

// InterconnectType is the cell type VPR uses for routing segments.
const InterconnectType = "fpga_interconnect"

var categories = []struct {
	name string
	re   *regexp.Regexp
}{
	{CategoryDFF, regexp.MustCompile(`(?i)^(DFF|FF|FLIPFLOP|SDFF|SDFFR|NX_DFF|QDFF|TDFF|SYNC_DFF|ASYNC_DFF|DFLIPFLOP|RISINGEDGE_DFLIPFLOP)$`)},
	{CategoryLUT, regexp.MustCompile(`(?i)^(LUT|LUT_K|FULLLUT|LOOKUP|O\d*)$`)},
	{CategoryBRAM, regexp.MustCompile(`(?i)^(BRAM|RAM|ROM|MEMORY|MEM)$`)},
	{CategoryMUX, regexp.MustCompile(`(?i)^(MUX|MULTIPLEXER)$`)},
	{CategoryDSP, regexp.MustCompile(`(?i)^(DSP|MULT|MULTIPLIER|ALU|ARITHMETIC)$`)},
	{CategoryIOB, regexp.MustCompile(`(?i)^(IOB|INBUF|OUTBUF|IOBUF|IO_BUFFER)$`)},
}

// keywords never start an instance statement.
var keywords = map[string]bool{
	"module": true, "endmodule": true, "input": true, "output": true,
	"inout": true, "wire": true, "reg": true, "logic": true, "tri": true,
	"assign": true, "always": true, "initial": true, "begin": true,
	"end": true, "if": true, "else": true, "case": true, "endcase": true,
	"parameter": true, "localparam": true, "defparam": true, "specify": true,
	"endspecify": true, "generate": true, "endgenerate": true, "genvar": true,
	"for": true, "function": true, "endfunction": true, "task": true,
	"endtask": true, "integer": true, "signed": true, "supply0": true,
	"supply1": true,
}

// Netlist is the extracted structure of one Verilog file.
type Netlist struct {
	Module        string         `json:"module"`
	Inputs        []string       `json:"inputs"`
	Outputs       []string       `json:"outputs"`
	Inouts        []string       `json:"inouts,omitempty"`
	Wires         []string       `json:"wires"`
	Instances     []Instance     `json:"instances"`
	Interconnects []Interconnect `json:"interconnects,omitempty"`
}

// Instance is a cell instantiation.
type Instance struct {
	Type     string            `json:"type"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Pins     map[string]string `json:"pins"`
	Line     int               `json:"line"`
}

// Interconnect is an fpga_interconnect routing segment.
type Interconnect struct {
	Name    string `json:"name"`
	DataIn  string `json:"datain"`
	DataOut string `json:"dataout"`
}

// Classify maps a cell type name to its category.
func Classify(cellType string) string {
	if cellType == InterconnectType {
		return CategoryInterconnect
	}
	for _, c := range categories {
		if c.re.MatchString(cellType) {
			return c.name
		}
	}
	return CategoryUnknown
}

// Extract scans Verilog source. It never fails; unlexable input produces an
// empty netlist named UnknownModule.
func Extract(content string) *Netlist {
	n := &Netlist{
		Module:    UnknownModule,
		Inputs:    []string{},
		Outputs:   []string{},
		Wires:     []string{},
		Instances: []Instance{},
	}
	toks, err := tokenize(content)
	if err != nil {
		return n
	}

	s := &scanner{toks: toks, n: n, seen: make(map[string]bool)}
	s.run()
	return n
}

// Summary counts instances per category.
func (n *Netlist) Summary() map[string]int {
	out := make(map[string]int)
	for _, inst := range n.Instances {
		out[inst.Category]++
	}
	return out
}

// InstancesOf returns the instances of one category, in file order.
func (n *Netlist) InstancesOf(category string) []Instance {
	var out []Instance
	for _, inst := range n.Instances {
		if inst.Category == category {
			out = append(out, inst)
		}
	}
	return out
}

// Categories returns the distinct instance categories, sorted.
func (n *Netlist) Categories() []string {
	counts := n.Summary()
	out := make([]string, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type scanner struct {
	toks      []token
	pos       int
	n         *Netlist
	gotModule bool
	seen      map[string]bool // "dir:name" of declared ports and wires
}

func (s *scanner) peek(off int) (token, bool) {
	i := s.pos + off
	if i < 0 || i >= len(s.toks) {
		return token{}, false
	}
	return s.toks[i], true
}

func (s *scanner) run() {
	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		if t.kind != tokIdent && t.kind != tokEscaped {
			s.pos++
			continue
		}

		switch t.value {
		case "module":
			s.pos++
			if name, ok := s.peek(0); ok && name.isIdent() {
				if !s.gotModule {
					s.n.Module = name.value
					s.gotModule = true
				}
				s.pos++
			}
		case "input":
			s.pos++
			s.declare(&s.n.Inputs, "input")
		case "output":
			s.pos++
			s.declare(&s.n.Outputs, "output")
		case "inout":
			s.pos++
			s.declare(&s.n.Inouts, "inout")
		case "wire":
			s.pos++
			s.declare(&s.n.Wires, "wire")
		case "assign", "defparam", "parameter", "localparam":
			s.skipStatement()
		default:
			if t.kind == tokIdent && keywords[t.value] {
				s.pos++
				continue
			}
			if !s.instance() {
				s.pos++
			}
		}
	}
}

// declare collects the names of a port or wire declaration. It stops at ";",
// at an unbalanced ")" (the end of an ANSI header) or at the next keyword.
func (s *scanner) declare(into *[]string, kind string) {
	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		switch {
		case t.is(";"), t.is(")"):
			return
		case t.is("["):
			s.skipBalanced("[", "]")
			continue
		case t.is("="):
			// wire x = expr; the initialiser is not a name
			s.skipTo(",", ";")
			continue
		case t.kind == tokIdent && keywords[t.value]:
			switch t.value {
			case "wire", "reg", "logic", "tri", "signed":
				s.pos++
				continue
			}
			return
		case t.isIdent():
			key := kind + ":" + t.value
			if !s.seen[key] {
				s.seen[key] = true
				*into = append(*into, t.value)
			}
		}
		s.pos++
	}
}

// instance tries to read "Type [#(...)] name ( connections ) ;" at the
// current position. It consumes nothing and returns false when the tokens do
// not have that shape.
func (s *scanner) instance() bool {
	start := s.pos
	typ := s.toks[s.pos]
	s.pos++

	if t, ok := s.peek(0); ok && t.is("#") {
		s.pos++
		if t, ok := s.peek(0); ok && t.is("(") {
			s.skipBalanced("(", ")")
		} else {
			s.pos++
		}
	}

	name, ok := s.peek(0)
	open, ok2 := s.peek(1)
	if !ok || !ok2 || !name.isIdent() || (name.kind == tokIdent && keywords[name.value]) || !open.is("(") {
		s.pos = start
		return false
	}
	s.pos += 2

	inst := Instance{
		Type:     typ.value,
		Name:     name.value,
		Category: Classify(typ.value),
		Pins:     make(map[string]string),
		Line:     typ.line,
	}
	s.connections(inst.Pins)

	if t, ok := s.peek(0); ok && t.is(";") {
		s.pos++
	}
	s.n.Instances = append(s.n.Instances, inst)

	if inst.Type == InterconnectType {
		s.n.Interconnects = append(s.n.Interconnects, Interconnect{
			Name:    inst.Name,
			DataIn:  inst.Pins["datain"],
			DataOut: inst.Pins["dataout"],
		})
	}
	return true
}

// connections reads a port connection list up to and including its closing
// parenthesis. Named connections ".port(net)" are keyed by port; positional
// ones by their index.
func (s *scanner) connections(pins map[string]string) {
	index := 0
	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		switch {
		case t.is(")"):
			s.pos++
			return
		case t.is(","):
			s.pos++
		case t.is("."):
			port, ok := s.peek(1)
			open, ok2 := s.peek(2)
			if !ok || !ok2 || !open.is("(") {
				s.pos++
				continue
			}
			s.pos += 2
			pins[port.value] = s.expression(")")
			s.pos++ // ")"
			index++
		default:
			pins[strconv.Itoa(index)] = s.expression(",", ")")
			index++
		}
	}
}

// expression joins tokens up to one of the stop punctuations at depth zero,
// or up to a closing bracket that belongs to an enclosing group such as a
// "#(parameter ...)" header. The stop token is not consumed.
func (s *scanner) expression(stops ...string) string {
	var b strings.Builder
	depth := 0
	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		if depth == 0 {
			for _, stop := range stops {
				if t.is(stop) {
					return b.String()
				}
			}
		}
		switch {
		case t.is("("), t.is("{"), t.is("["):
			depth++
		case t.is(")"), t.is("}"), t.is("]"):
			if depth == 0 {
				return b.String()
			}
			depth--
		}
		b.WriteString(t.value)
		s.pos++
	}
	return b.String()
}

func (s *scanner) skipBalanced(open, closing string) {
	depth := 0
	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++
		switch {
		case t.is(open):
			depth++
		case t.is(closing):
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

// skipTo advances to the next stop punctuation at depth zero without
// consuming it.
func (s *scanner) skipTo(stops ...string) {
	s.expression(stops...)
}

// skipStatement skips to the end of a statement, consuming its ";". Inside a
// parenthesised header it stops before the closing bracket instead.
func (s *scanner) skipStatement() {
	s.skipTo(";")
	if t, ok := s.peek(0); ok && t.is(";") {
		s.pos++
	}
}

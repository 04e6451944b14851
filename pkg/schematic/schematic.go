// Package schematic prints the textual signal-path diagram for one analyzed
// netlist/annex pair.
package schematic

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/extract"
)

// Unknown is printed for any delay slot the annex did not provide.
const Unknown = "Unknown"

// Main component labels.
const (
	MainFlipFlop    = "FLIP-FLOP"
	MainLUT         = "LUT"
	MainPassThrough = "PASS-THROUGH"
)

// StageOutput is the data path stage between the main component and Q.
const StageOutput = "OUTPUT"

// Positional delay slots. The index is the position in the extracted delay
// list; nothing ties a value to the pins it was measured on.
const (
	SlotInput  = 0 // input to main component
	SlotClock  = 1
	SlotReset  = 2 // async reset
	SlotOutput = 3 // main component to output
)

// connectorColumn is where vertical connectors sit in unaligned output.
const connectorColumn = 28

// Diagram is everything needed to draw one pair.
type Diagram struct {
	Base       string
	Delays     []float64
	Components extract.LabelSet
}

// MainComponent picks the label shown in the signal path: a flip-flop wins
// over a lookup table, and with neither the path is a plain pass-through.
func MainComponent(components extract.LabelSet) string {
	switch {
	case components.Has(catalog.LabelFlipFlop):
		return MainFlipFlop
	case components.Has(catalog.LabelLUT):
		return MainLUT
	default:
		return MainPassThrough
	}
}

// Slot returns the formatted delay at index i, or Unknown.
func Slot(delays []float64, i int) string {
	if i < 0 || i >= len(delays) {
		return Unknown
	}
	return FormatDelay(delays[i])
}

// FormatDelay prints v the way the console report always has: shortest
// representation, integral values keep a trailing ".0", very small or very
// large magnitudes switch to exponent form.
func FormatDelay(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Lines builds the diagram body. The shape is fixed: only the data path
// carries the main component, while clock and async reset always drive the
// flip-flop. In aligned mode every line is padded to the same width,
// connectors sit under the main component, and a caret marks the input delay
// arrow head.
func Lines(d Diagram, aligned bool) []string {
	main := MainComponent(d.Components)

	input := fmt.Sprintf("D --(%s ps)--> %s --(internal processing)--> %s --(%s ps)--> Q (END)",
		Slot(d.Delays, SlotInput), main, StageOutput, Slot(d.Delays, SlotOutput))
	clock := fmt.Sprintf("clk --(%s ps)--> %s --(output delay)--> Q (END)",
		Slot(d.Delays, SlotClock), MainFlipFlop)
	reset := fmt.Sprintf("async_reset --(%s ps)--> %s (Resets Q)",
		Slot(d.Delays, SlotReset), MainFlipFlop)

	if !aligned {
		bar := strings.Repeat(" ", connectorColumn) + "|"
		return []string{input, bar, bar, clock, bar, bar, reset}
	}

	col := strings.Index(input, "--> "+main) + len("--> ")
	caret := strings.Index(input, "-->") + 2
	bar := strings.Repeat(" ", col) + "|"

	lines := []string{
		input,
		strings.Repeat(" ", caret) + "^",
		bar, bar,
		clock,
		bar, bar,
		reset,
	}
	return padLines(lines)
}

// padLines right-pads every line with spaces to the longest line's width.
func padLines(lines []string) []string {
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + strings.Repeat(" ", width-len(l))
	}
	return out
}

// Renderer writes diagrams to an output stream.
type Renderer struct {
	w       io.Writer
	aligned bool

	title lipgloss.Style
	label lipgloss.Style
}

// NewRenderer returns a Renderer for w. Styling is chosen from w's terminal
// capabilities and disappears entirely when w is not a terminal.
func NewRenderer(w io.Writer, aligned bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:       w,
		aligned: aligned,
		title:   lr.NewStyle().Bold(true),
		label:   lr.NewStyle().Foreground(lipgloss.Color("81")),
	}
}

// Render prints the header, the diagram and the detected component listing.
func (r *Renderer) Render(d Diagram) error {
	header := fmt.Sprintf(" Schematic Representation of %s.v & %s.sdf", d.Base, d.Base)
	if _, err := fmt.Fprintf(r.w, "\n%s\n\n", r.title.Render(header)); err != nil {
		return err
	}
	for _, line := range Lines(d, r.aligned) {
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}

	listing := "none"
	if len(d.Components) > 0 {
		listing = strings.Join(d.Components.Sorted(), ", ")
	}
	_, err := fmt.Fprintf(r.w, "\nDetected components: %s\n", r.label.Render(listing))
	return err
}

// RenderIOPaths prints each IOPATH with the pins it was measured between, so
// the positional slots above can be checked against their sources.
func (r *Renderer) RenderIOPaths(paths []extract.IOPath) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(r.w, "IOPATH delays: %d\n", len(paths)); err != nil {
		return err
	}
	for i, p := range paths {
		if _, err := fmt.Fprintf(r.w, "  [%d] %-12s -> %-12s %s:%s:%s ps\n", i, p.From, p.To,
			FormatDelay(p.Min), FormatDelay(p.Typ), FormatDelay(p.Max)); err != nil {
			return err
		}
	}
	return nil
}

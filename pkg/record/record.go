// Package record builds the structured export of one netlist/annex pair:
// ports, wires, instances and IOPATH delay records, serialized as JSON for
// downstream tools.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/extract"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/sdf"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/verilog"
)

// DefaultOutput is the file name used when no output path is given.
const DefaultOutput = "board_design.json"

// Record is the exported description of one design.
type Record struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	NetlistFile string    `json:"netlist_file"`
	AnnexFile   string    `json:"annex_file"`

	Module  string   `json:"module"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Inouts  []string `json:"inouts,omitempty"`
	Wires   []string `json:"wires"`

	// Delays always holds the regex-matched IOPATH triples.
	Delays []extract.IOPath `json:"delays"`

	Components    []verilog.Instance     `json:"components"`
	Interconnects []verilog.Interconnect `json:"interconnects,omitempty"`

	// Cells is present only when the annex parsed as a well-formed DELAYFILE.
	Timescale string     `json:"timescale,omitempty"`
	Cells     []sdf.Cell `json:"cells,omitempty"`

	Summary Summary `json:"summary"`
}

// Summary aggregates the record.
type Summary struct {
	ComponentCounts      map[string]int `json:"component_counts"`
	TotalDelays          int            `json:"total_delays"`
	MaxDelay             float64        `json:"max_delay"`
	ComponentsWithTiming int            `json:"components_with_timing"`
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures Build.
type Option func(*options)

// WithLogger sets the logger used for structured-parse diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Build reads both files and assembles their record. Read failures are
// returned; a structured annex parse failure only drops the Cells section.
func Build(netlistPath, annexPath string, opts ...Option) (*Record, error) {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	netlistText, err := extract.ReadFile(netlistPath)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	annexText, err := extract.ReadFile(annexPath)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}

	nl := verilog.Extract(netlistText)
	rec := &Record{
		ID:            o.newID(),
		GeneratedAt:   o.now().UTC(),
		NetlistFile:   netlistPath,
		AnnexFile:     annexPath,
		Module:        nl.Module,
		Inputs:        nl.Inputs,
		Outputs:       nl.Outputs,
		Inouts:        nl.Inouts,
		Wires:         nl.Wires,
		Delays:        extract.ExtractIOPaths(annexText),
		Components:    nl.Instances,
		Interconnects: nl.Interconnects,
	}
	rec.Summary.ComponentCounts = nl.Summary()

	timing, err := sdf.ParseString(annexText)
	if err != nil {
		o.logger.Warn("structured timing parse failed, omitting cells",
			"path", annexPath, "error", err)
		rec.Summary.TotalDelays = len(rec.Delays)
		rec.Summary.MaxDelay = maxDelay(rec.Delays)
		rec.Summary.ComponentsWithTiming = 0
		return rec, nil
	}

	rec.Timescale = timing.Timescale
	rec.Cells = timing.Cells
	s := timing.Summary()
	rec.Summary.TotalDelays = s.TotalDelays
	rec.Summary.MaxDelay = s.MaxDelay
	rec.Summary.ComponentsWithTiming = s.ComponentsWithTiming
	return rec, nil
}

func maxDelay(paths []extract.IOPath) float64 {
	var m float64
	for i, p := range paths {
		if i == 0 || p.Max > m {
			m = p.Max
		}
	}
	return m
}

// Encode writes rec as two-space indented JSON.
func Encode(w io.Writer, rec *Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("record: encode: %w", err)
	}
	return nil
}

// WriteJSON writes rec to path.
func WriteJSON(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("record: encode: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("record: write %s: %w", path, err)
	}
	return nil
}

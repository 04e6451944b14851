package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/record"
)

const adderNetlist = `module adder(input a, input b, input clk, output q);
  wire n1;
  LUT lut0 (.in({a, b}), .out(n1));
  DFF ff0 (.D(n1), .clock(clk), .Q(q));
endmodule
`

const adderAnnex = `(DELAYFILE
  (SDFVERSION "2.1")
  (TIMESCALE 1 ps)
  (CELL (CELLTYPE "LUT") (INSTANCE lut0)
    (DELAY (ABSOLUTE (IOPATH in out (1.5:2.0:2.5)))))
  (CELL (CELLTYPE "DFF") (INSTANCE ff0)
    (DELAY (ABSOLUTE
      (IOPATH clock Q (303:310:320))
      (IOPATH reset Q (50:55:60))
      (IOPATH D Q (10:11:12)))))
)
`

// testdataDir builds a folder with one complete pair and one netlist
// without an annex.
func testdataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"adder.v":   adderNetlist,
		"adder.sdf": adderAnnex,
		"mux.v":     "module mux(); endmodule\n",
		"notes.txt": "not a design file\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	return dir
}

// resetFlags prevents flag values leaking between test cases.
func resetFlags() {
	verbose = false
	catalogPath = ""
	delayPattern = ""
	excludes = nil
	aligned = false
	metricsPath = ""
	exportOutput = record.DefaultOutput
}

// run executes the root command with args and returns captured stdout.
func run(t *testing.T, args []string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Read in background to prevent pipe buffer from blocking on Windows
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	resetFlags()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

func TestAnalyzeE2E(t *testing.T) {
	dir := testdataDir(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
		wantAbsent  []string
	}{
		{
			name: "analyze folder",
			args: []string{dir},
			wantContain: []string{
				" Analyzing pair: adder.v & adder.sdf",
				" Schematic Representation of adder.v & adder.sdf",
				"D --(1.5 ps)--> FLIP-FLOP --(internal processing)--> OUTPUT --(10.0 ps)--> Q (END)",
				"clk --(303.0 ps)--> FLIP-FLOP --(output delay)--> Q (END)",
				"async_reset --(50.0 ps)--> FLIP-FLOP (Resets Q)",
				"Detected components: Flip-Flop, LUT",
			},
			wantAbsent: []string{"mux"},
		},
		{
			name:        "aligned",
			args:        []string{"--aligned", dir},
			wantContain: []string{"^", "D --(1.5 ps)--> FLIP-FLOP"},
		},
		{
			name: "verbose lists iopaths",
			args: []string{"-v", "--pattern", "triple", dir},
			wantContain: []string{
				"delay pattern: triple",
				"IOPATH delays: 4",
				"clock",
			},
		},
		{
			name:        "no argument prints usage",
			args:        []string{},
			wantContain: []string{"Usage: sdfscan <folder_path>"},
			wantAbsent:  []string{"Analyzing"},
		},
		{
			name:        "not a directory",
			args:        []string{filepath.Join(dir, "adder.v")},
			wantContain: []string{"Error: " + filepath.Join(dir, "adder.v") + " is not a valid directory."},
			wantAbsent:  []string{"Analyzing"},
		},
		{
			name:        "exclude everything",
			args:        []string{"--exclude", "adder.*", dir},
			wantContain: []string{"No matching .v and .sdf files found."},
		},
		{
			name:    "bad pattern",
			args:    []string{"--pattern", "(", dir},
			wantErr: true,
		},
		{
			name:    "missing catalog file",
			args:    []string{"--catalog", filepath.Join(dir, "missing.yaml"), dir},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(output, absent) {
					t.Errorf("Output contains unexpected string: %q\nGot:\n%s", absent, output)
				}
			}
		})
	}
}

func TestCustomCatalogE2E(t *testing.T) {
	dir := testdataDir(t)
	cat := filepath.Join(t.TempDir(), "catalog.yaml")
	yaml := "components:\n  - label: LUT\n    patterns: ['\\bLUT\\b']\n"
	if err := os.WriteFile(cat, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	output, err := run(t, []string{"--catalog", cat, dir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Without flip-flop patterns the LUT becomes the main component.
	if !strings.Contains(output, "D --(1.5 ps)--> LUT") {
		t.Errorf("expected LUT main component:\n%s", output)
	}
	if !strings.Contains(output, "Detected components: LUT\n") {
		t.Errorf("expected only LUT detected:\n%s", output)
	}
}

func TestMetricsE2E(t *testing.T) {
	dir := testdataDir(t)
	prom := filepath.Join(t.TempDir(), "sdfscan.prom")

	if _, err := run(t, []string{"--metrics", prom, dir}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), "sdfscan_pairs_analyzed_total 1") {
		t.Errorf("unexpected metrics:\n%s", data)
	}
}

func TestPairsE2E(t *testing.T) {
	dir := testdataDir(t)

	output, err := run(t, []string{"pairs", dir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "adder\n" {
		t.Errorf("pairs output = %q, want %q", output, "adder\n")
	}

	output, err = run(t, []string{"pairs", filepath.Join(dir, "missing")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "is not a valid directory.") {
		t.Errorf("unexpected output %q", output)
	}

	if _, err := run(t, []string{"pairs"}); err == nil {
		t.Error("expected error for missing argument")
	}
}

func TestExportE2E(t *testing.T) {
	dir := testdataDir(t)
	out := filepath.Join(t.TempDir(), "adder.json")

	output, err := run(t, []string{"export", "-o", out,
		filepath.Join(dir, "adder.v"), filepath.Join(dir, "adder.sdf")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "JSON file created: "+out) {
		t.Errorf("unexpected output %q", output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec.Module != "adder" || len(rec.Delays) != 4 || len(rec.Cells) != 2 {
		t.Errorf("unexpected record: module=%s delays=%d cells=%d", rec.Module, len(rec.Delays), len(rec.Cells))
	}
	if rec.Delays[0].From != "in" || rec.Delays[0].Max != 2.5 {
		t.Errorf("unexpected first delay %+v", rec.Delays[0])
	}

	if _, err := run(t, []string{"export", "-o", out, filepath.Join(dir, "adder.v"), filepath.Join(dir, "none.sdf")}); err == nil {
		t.Error("expected error for missing annex")
	}
}

func TestCatalogE2E(t *testing.T) {
	output, err := run(t, []string{"catalog"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"components:", "label: Flip-Flop", "label: LUT", "delay_pattern: first"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
		}
	}

	output, err = run(t, []string{"catalog", "--pattern", "triple"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "delay_pattern: triple") {
		t.Errorf("pattern flag ignored:\n%s", output)
	}
}

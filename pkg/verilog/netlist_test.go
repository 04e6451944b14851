package verilog

import (
	"reflect"
	"strings"
	"testing"
)

const dffNetlist = `// Generated by VPR
` + "`timescale 1ps/1ps" + `
module RisingEdge_DFlipFlop_AsyncResetHigh (
    input \D ,
    input \clock ,
    input \async_reset ,
    output \Q
);

    //Wires
    wire \D_output_0_0 ;
    wire \clock_output_0_0 ;
    wire \latch_Q_output_0_0 ;
    wire [1:0] bus;

    /* Interconnect
       between cells */
    fpga_interconnect \routing_segment_D_output_0_0_to_lut_Q_input_0_0 (
        .datain(\D_output_0_0 ),
        .dataout(\lut_Q_input_0_0 )
    );

    (* keep *)
    LUT_K #(
        .K(5),
        .LUT_MASK(32'b00000000000000000000000000000010)
    ) \lut_Q  (
        .in({
            1'b0,
            \lut_Q_input_0_0
         }),
        .out(\lut_Q_output_0_0 )
    );

    DFF #(
        .INITIAL_VALUE(1'b0)
    ) \latch_Q  (
        .D(\latch_Q_input_0_0 ),
        .Q(\latch_Q_output_0_0 ),
        .clock(\latch_Q_clock_0_0 )
    );

    assign \Q = \latch_Q_output_0_0 ;

endmodule
`

func TestExtractModuleAndPorts(t *testing.T) {
	n := Extract(dffNetlist)

	if n.Module != "RisingEdge_DFlipFlop_AsyncResetHigh" {
		t.Errorf("expected module name, got %q", n.Module)
	}
	if want := []string{"D", "clock", "async_reset"}; !reflect.DeepEqual(n.Inputs, want) {
		t.Errorf("inputs = %v, want %v", n.Inputs, want)
	}
	if want := []string{"Q"}; !reflect.DeepEqual(n.Outputs, want) {
		t.Errorf("outputs = %v, want %v", n.Outputs, want)
	}
	want := []string{"D_output_0_0", "clock_output_0_0", "latch_Q_output_0_0", "bus"}
	if !reflect.DeepEqual(n.Wires, want) {
		t.Errorf("wires = %v, want %v", n.Wires, want)
	}
}

func TestExtractInstances(t *testing.T) {
	n := Extract(dffNetlist)

	if len(n.Instances) != 3 {
		t.Fatalf("expected 3 instances, got %d: %+v", len(n.Instances), n.Instances)
	}

	ic := n.Instances[0]
	if ic.Category != CategoryInterconnect || ic.Name != "routing_segment_D_output_0_0_to_lut_Q_input_0_0" {
		t.Errorf("unexpected interconnect instance %+v", ic)
	}

	lut := n.Instances[1]
	if lut.Type != "LUT_K" || lut.Category != CategoryLUT || lut.Name != "lut_Q" {
		t.Errorf("unexpected LUT instance %+v", lut)
	}
	if lut.Pins["in"] != "{1'b0,lut_Q_input_0_0}" {
		t.Errorf("unexpected LUT input bundle %q", lut.Pins["in"])
	}
	if lut.Pins["out"] != "lut_Q_output_0_0" {
		t.Errorf("unexpected LUT output %q", lut.Pins["out"])
	}

	dff := n.Instances[2]
	if dff.Category != CategoryDFF || dff.Pins["clock"] != "latch_Q_clock_0_0" || dff.Pins["Q"] != "latch_Q_output_0_0" {
		t.Errorf("unexpected DFF instance %+v", dff)
	}
	if _, ok := dff.Pins["INITIAL_VALUE"]; ok {
		t.Error("parameter overrides must not be recorded as pins")
	}

	if len(n.Interconnects) != 1 {
		t.Fatalf("expected 1 interconnect, got %d", len(n.Interconnects))
	}
	if got := n.Interconnects[0]; got.DataIn != "D_output_0_0" || got.DataOut != "lut_Q_input_0_0" {
		t.Errorf("unexpected interconnect %+v", got)
	}
}

func TestSummary(t *testing.T) {
	n := Extract(dffNetlist)
	want := map[string]int{CategoryInterconnect: 1, CategoryLUT: 1, CategoryDFF: 1}
	if got := n.Summary(); !reflect.DeepEqual(got, want) {
		t.Errorf("Summary() = %v, want %v", got, want)
	}
	if got := n.Categories(); !reflect.DeepEqual(got, []string{"DFF", "Interconnect", "LUT"}) {
		t.Errorf("Categories() = %v", got)
	}
	if got := n.InstancesOf(CategoryDFF); len(got) != 1 || got[0].Name != "latch_Q" {
		t.Errorf("InstancesOf(DFF) = %+v", got)
	}
}

func TestExtractNonANSI(t *testing.T) {
	src := `
module adder(a, b, cin, sum, cout);
  input a, b;
  input cin;
  output sum, cout;
  wire w1, w2;
  XOR2 x0 (a, b, w1);
  MUX m0 (.S(cin), .A(w1), .B(w2), .Y(sum));
endmodule
`
	n := Extract(src)
	if n.Module != "adder" {
		t.Errorf("module = %q", n.Module)
	}
	if !reflect.DeepEqual(n.Inputs, []string{"a", "b", "cin"}) {
		t.Errorf("inputs = %v", n.Inputs)
	}
	if !reflect.DeepEqual(n.Outputs, []string{"sum", "cout"}) {
		t.Errorf("outputs = %v", n.Outputs)
	}
	if !reflect.DeepEqual(n.Wires, []string{"w1", "w2"}) {
		t.Errorf("wires = %v", n.Wires)
	}
	if len(n.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %+v", n.Instances)
	}
	xor := n.Instances[0]
	if xor.Category != CategoryUnknown || xor.Pins["0"] != "a" || xor.Pins["2"] != "w1" {
		t.Errorf("unexpected positional instance %+v", xor)
	}
	if n.Instances[1].Category != CategoryMUX || n.Instances[1].Pins["Y"] != "sum" {
		t.Errorf("unexpected mux %+v", n.Instances[1])
	}
}

func TestExtractBehavioral(t *testing.T) {
	src := `
module dff(input clk, input rst, input d, output reg q);
  always @(posedge clk or posedge rst) begin
    if (rst) q <= 1'b0;
    else q <= d;
  end
endmodule
`
	n := Extract(src)
	if n.Module != "dff" {
		t.Errorf("module = %q", n.Module)
	}
	if !reflect.DeepEqual(n.Inputs, []string{"clk", "rst", "d"}) {
		t.Errorf("inputs = %v", n.Inputs)
	}
	if !reflect.DeepEqual(n.Outputs, []string{"q"}) {
		t.Errorf("outputs = %v", n.Outputs)
	}
	if len(n.Instances) != 0 {
		t.Errorf("behavioral code must not produce instances, got %+v", n.Instances)
	}
}

func TestExtractParameterisedHeader(t *testing.T) {
	src := "module top #(parameter W = 8, parameter D = 2) (input a, output q);\n" +
		" wire n1;\n" +
		" LUT lut0 (.in(a), .out(n1));\n" +
		" DFF ff0 (.D(n1), .Q(q));\n" +
		"endmodule"
	n := Extract(src)
	if n.Module != "top" {
		t.Errorf("module = %q", n.Module)
	}
	if !reflect.DeepEqual(n.Inputs, []string{"a"}) {
		t.Errorf("inputs = %v", n.Inputs)
	}
	if !reflect.DeepEqual(n.Outputs, []string{"q"}) {
		t.Errorf("outputs = %v", n.Outputs)
	}
	if !reflect.DeepEqual(n.Wires, []string{"n1"}) {
		t.Errorf("wires = %v", n.Wires)
	}
	if len(n.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %+v", n.Instances)
	}
	lut := n.Instances[0]
	if lut.Name != "lut0" || lut.Category != CategoryLUT || lut.Pins["in"] != "a" || lut.Pins["out"] != "n1" {
		t.Errorf("unexpected lut %+v", lut)
	}
	ff := n.Instances[1]
	if ff.Name != "ff0" || ff.Category != CategoryDFF || ff.Pins["Q"] != "q" {
		t.Errorf("unexpected flip-flop %+v", ff)
	}
}

func TestExtractParameterStatement(t *testing.T) {
	src := `
module top(input a, output q);
  parameter W = (4 + 4);
  localparam D = W - 1;
  BUF b0 (.A(a), .Y(q));
endmodule
`
	n := Extract(src)
	if len(n.Instances) != 1 || n.Instances[0].Name != "b0" {
		t.Fatalf("expected one instance b0, got %+v", n.Instances)
	}
}

func TestExtractEmpty(t *testing.T) {
	n := Extract("this is not verilog at all ;;; )(")
	if n.Module != UnknownModule {
		t.Errorf("expected %s, got %q", UnknownModule, n.Module)
	}
	if n.Inputs == nil || n.Outputs == nil || n.Wires == nil || n.Instances == nil {
		t.Error("list fields must be non-nil")
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]string{
		"DFF":               CategoryDFF,
		"sdffr":             CategoryDFF,
		"LUT_K":             CategoryLUT,
		"O6":                CategoryLUT,
		"RAM":               CategoryBRAM,
		"multiplexer":       CategoryMUX,
		"MULT":              CategoryDSP,
		"IOBUF":             CategoryIOB,
		"fpga_interconnect": CategoryInterconnect,
		"adder":             CategoryUnknown,
	}
	for in, want := range tests {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripComments(t *testing.T) {
	src := "wire a; // trailing\n/* block\ncomment */wire b;"
	got := StripComments(src)
	if strings.Contains(got, "trailing") || strings.Contains(got, "block") {
		t.Errorf("comments survived: %q", got)
	}
	if got != "wire a; \n wire b;" {
		t.Errorf("StripComments() = %q", got)
	}
}

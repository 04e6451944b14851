package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/record"
)

var (
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <netlist.v> <annex.sdf>",
	Short: "Write the structured record of a netlist/annex pair as JSON",
	Long: `Extract the module name, ports, wires, cell instances and IOPATH
min:typ:max delays of a design and write them as JSON.

Examples:
  sdfscan export adder.v adder.sdf
  sdfscan export -o out/adder.json adder.v adder.sdf`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", record.DefaultOutput,
		"output JSON file")
}

func runExport(cmd *cobra.Command, args []string) error {
	netlistPath, annexPath := args[0], args[1]

	if verbose {
		fmt.Printf("Exporting %s & %s\n", netlistPath, annexPath)
	}

	rec, err := record.Build(netlistPath, annexPath, record.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to build record: %w", err)
	}
	if err := record.WriteJSON(exportOutput, rec); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Module %s: %d inputs, %d outputs, %d wires, %d components, %d delays\n",
			rec.Module, len(rec.Inputs), len(rec.Outputs), len(rec.Wires),
			len(rec.Components), len(rec.Delays))
	}
	fmt.Printf("JSON file created: %s\n", exportOutput)
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/analyzer"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/pair"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs <folder_path>",
	Short: "List base names that have both a .v and a .sdf file",
	Long: `List the base names in a folder that have both a netlist (.v) and a
timing annex (.sdf) file. Subfolders are not searched.

Examples:
  sdfscan pairs designs/
  sdfscan pairs --exclude 'tmp_*' -v designs/`,
	Args: cobra.ExactArgs(1),
	RunE: runPairs,
}

func init() {
	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, args []string) error {
	dir := args[0]

	pairs, err := pair.Locate(dir, pair.WithExclude(excludes...))
	if err != nil {
		if errors.Is(err, pair.ErrNotDirectory) {
			fmt.Printf("Error: %s is not a valid directory.\n", dir)
			return nil
		}
		return err
	}

	if len(pairs) == 0 {
		fmt.Println(analyzer.NoPairsMessage)
		return nil
	}
	for _, p := range pairs {
		if verbose {
			fmt.Printf("%-24s %s  %s\n", p.Base, p.NetlistPath, p.AnnexPath)
			continue
		}
		fmt.Println(p.Base)
	}
	return nil
}

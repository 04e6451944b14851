package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective keyword catalog and delay pattern",
	Long: `Print the keyword catalog and delay pattern the analysis would use, in
the YAML format accepted by --catalog. Use it as a starting point for a
custom catalog.

Examples:
  sdfscan catalog > my-catalog.yaml
  sdfscan catalog --catalog my-catalog.yaml --pattern triple`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return catalog.Encode(os.Stdout, cfg.Catalog(), cfg.Delay())
}

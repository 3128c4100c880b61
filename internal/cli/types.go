package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rcorre/lasr/internal/config"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the known file types",
	Long: `List every file type usable with --type and --type-not: the built-in
types plus those defined in the types section of the config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return printTypes(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

func printTypes(w io.Writer, cfg *config.Config) error {
	// Selections are irrelevant to the listing and may name unknown types
	listing := *cfg
	listing.Search.Types = nil
	listing.Search.TypesNot = nil

	types, err := listing.FileTypes()
	if err != nil {
		return err
	}
	newPrinter(w, !color.NoColor).types(types.List())
	return nil
}

// Package cli implements the lasr command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// flags shared by every command that searches
var (
	cfgFile    string
	logLevel   string
	colorMode  string
	ignoreCase bool
	multiLine  bool
	types      []string
	typesNot   []string
	threads    int
	hidden     bool
	noIgnore   bool
	typeList   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lasr [paths...]",
	Short: "Live find and replace",
	Long: `lasr searches files as you type a pattern and previews every
replacement as you type the substitution. Enter rewrites the files.

Patterns containing $METAVARIABLES (e.g. 'fmt.Println($ARG)') are matched
structurally with ast-grep. All other patterns are Go regular expressions;
regex replacements may reference groups as $1 or ${name}.

Paths default to the current directory. Arguments containing glob
metacharacters are expanded, so 'lasr "**/testdata"' searches every
testdata directory.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("error: ")+err.Error())
		cancel()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initColor)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/lasr/config.yaml and ./.lasr.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&colorMode, "color", "auto", "colorize output: auto, always, never")
	pf.BoolVarP(&ignoreCase, "ignore-case", "i", false, "case-insensitive regex matching")
	pf.BoolVarP(&multiLine, "multiline", "U", false, "allow regex matches to span lines")
	pf.StringSliceVarP(&types, "type", "t", nil, "only search files of this type (repeatable)")
	pf.StringSliceVarP(&typesNot, "type-not", "T", nil, "never search files of this type (repeatable)")
	pf.IntVarP(&threads, "threads", "j", 0, "search threads (0 = one per CPU)")
	pf.BoolVar(&hidden, "hidden", false, "search hidden files and directories")
	pf.BoolVar(&noIgnore, "no-ignore", false, "don't respect .gitignore and .ignore files")

	rootCmd.Flags().BoolVar(&typeList, "type-list", false, "list the known file types and exit")
}

// initColor applies --color over fatih/color's terminal detection.
func initColor() {
	switch colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldsheet",
	Short: "Fieldsheet - export Java field declarations to Excel",
	Long: `Fieldsheet reads Java source trees and writes every declared field
(name, type, default value, Javadoc description) into xlsx workbooks,
one sheet per source file.

Use "fieldsheet flat" to collect a whole tree into one workbook, or
"fieldsheet tree" to mirror the tree with one workbook per leaf directory.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.fieldsheet.yaml, then $HOME/.fieldsheet.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

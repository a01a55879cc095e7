package cli

import (
	"github.com/spf13/cobra"
)

var treeFlags runFlags

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Mirror a source tree with one workbook per leaf directory",
	Long: `Tree mirrors the directory structure of the input folder under the output
root. Every leaf directory (one without sub-directories) that holds Java files
gets a workbook named after the directory, with one sheet per file.

Directories are mirrored even when they produce no workbook.

Examples:
  # Mirror a source tree
  fieldsheet tree -i src/main/java -o docs/fields

  # Build leaf workbooks four at a time
  fieldsheet tree -i src/main/java -o docs/fields -j 4
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, modeTree, &treeFlags)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeFlags.register(treeCmd, "output-root", "Directory to mirror the tree into")
}

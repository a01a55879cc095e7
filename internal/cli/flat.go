package cli

import (
	"github.com/spf13/cobra"
)

var flatFlags runFlags

var flatCmd = &cobra.Command{
	Use:   "flat",
	Short: "Write every Java file under a directory into one workbook",
	Long: `Flat collects every Java file under the input folder, at any depth, into
a single workbook with one sheet per file. Sheets are named after the file
(without .java) and ordered by a lexical walk of the tree.

Files that fail to parse are skipped and recorded in the diagnostic log.

Examples:
  # Export a source tree
  fieldsheet flat -i src/main/java -o fields.xlsx

  # Keep the workbook up to date while editing
  fieldsheet flat -i src/main/java -o fields.xlsx --watch
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, modeFlat, &flatFlags)
	},
}

func init() {
	rootCmd.AddCommand(flatCmd)
	flatFlags.register(flatCmd, "output-file", "Workbook to write")
}

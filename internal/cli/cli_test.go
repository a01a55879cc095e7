package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Test Plan for CLI commands:
// - flat and tree reject a missing --input-folder or output flag
// - flat writes one workbook and prints the output, counts and log path
// - flat records parse failures in the diagnostic log and still exits cleanly
// - tree mirrors directories and prints the absolute output root
// - a missing input folder is a fatal error
// - --config and --jobs feed the run configuration
// - version prints build information
//
// Commands are package globals, so these tests run sequentially and reset
// every flag before each invocation.

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeJava(t *testing.T, path, class string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	src := "class " + class + " {\n    /** Identifier. */\n    private long id = 1L;\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
}

func TestCommands_RequireFlags(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		missing string
	}{
		{"flat without input", []string{"flat", "-o", filepath.Join(dir, "x.xlsx")}, "input-folder"},
		{"flat without output", []string{"flat", "-i", dir}, "output-file"},
		{"tree without input", []string{"tree", "-o", dir}, "input-folder"},
		{"tree without output", []string{"tree", "-i", dir}, "output-root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestFlatCommand_WritesWorkbookAndSummary(t *testing.T) {
	in := t.TempDir()
	writeJava(t, filepath.Join(in, "a", "User.java"), "User")
	writeJava(t, filepath.Join(in, "b", "c", "Order.java"), "Order")
	require.NoError(t, os.WriteFile(filepath.Join(in, "Bad.java"), []byte("class Bad { int x = ; }"), 0644))

	outDir := t.TempDir()
	outFile := filepath.Join(outDir, "fields.xlsx")
	logFile := filepath.Join(outDir, "errors.log")

	out, err := executeCommand(t, "flat", "-i", in, "-o", outFile, "--log-file", logFile, "-q")
	require.NoError(t, err)

	assert.Contains(t, out, "Excel file generated: "+outFile)
	assert.Contains(t, out, "Files processed: 2 succeeded, 1 failed")
	assert.Contains(t, out, "Error log saved to: "+logFile)

	f, err := excelize.OpenFile(outFile)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"User", "Order"}, f.GetSheetList())

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Bad.java")
}

func TestTreeCommand_MirrorsTree(t *testing.T) {
	in := filepath.Join(t.TempDir(), "root")
	writeJava(t, filepath.Join(in, "a", "b", "X.java"), "X")
	require.NoError(t, os.MkdirAll(filepath.Join(in, "a", "c"), 0755))

	outRoot := filepath.Join(t.TempDir(), "mirror")
	logFile := filepath.Join(t.TempDir(), "errors.log")

	out, err := executeCommand(t, "tree", "-i", in, "-o", outRoot, "--log-file", logFile, "--quiet", "--jobs", "2")
	require.NoError(t, err)

	assert.Equal(t, "All done. Check output under: "+outRoot+"\n", out)
	assert.FileExists(t, filepath.Join(outRoot, "a", "b", "b.xlsx"))
	assert.DirExists(t, filepath.Join(outRoot, "a", "c"))
	assert.NoFileExists(t, filepath.Join(outRoot, "a", "c", "c.xlsx"))
}

func TestCommands_MissingInputIsFatal(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	_, err := executeCommand(t, "tree", "-i", missing, "-o", filepath.Join(dir, "out"),
		"--log-file", filepath.Join(dir, "errors.log"), "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input root does not exist")
}

func TestCommands_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "src")
	writeJava(t, filepath.Join(in, "Keep.java"), "Keep")
	writeJava(t, filepath.Join(in, "generated", "Skip.java"), "Skip")

	cfgPath := filepath.Join(dir, "fieldsheet.yaml")
	cfg := strings.Join([]string{
		"source:",
		"  ignore: [\"generated/**\"]",
		"sheet:",
		"  headers: [\"Name\", \"Type\", \"Default\", \"Comment\"]",
		"output:",
		"  log_file: " + filepath.Join(dir, "errors.log"),
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	outFile := filepath.Join(dir, "out.xlsx")
	_, err := executeCommand(t, "--config", cfgPath, "flat", "-i", in, "-o", outFile, "-q")
	require.NoError(t, err)

	f, err := excelize.OpenFile(outFile)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Keep"}, f.GetSheetList())

	rows, err := f.GetRows("Keep")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Type", "Default", "Comment"}, rows[0])
	assert.FileExists(t, filepath.Join(dir, "errors.log"))
}

func TestCommands_InvalidJobs(t *testing.T) {
	dir := t.TempDir()
	_, err := executeCommand(t, "tree", "-i", dir, "-o", filepath.Join(dir, "out"), "--jobs", "0", "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Fieldsheet "+Version)
	assert.Contains(t, out, "Git commit: "+GitCommit)
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <path id="California" d="M0 0"/>
  <path id="Texas" d="M1 1"/>
  <path id="Oregon" d="M2 2"/>
</svg>`

// resetFlags puts every flag back to its default; cobra keeps flag state
// between Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

func fixtures(t *testing.T) (csvPath, svgPath string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "data.csv")
	svgPath = filepath.Join(home, "map.svg")
	require.NoError(t, os.WriteFile(csvPath, []byte("region,pop\nCalifornia,39\nTexas,29\nAtlantis,1\n"), 0o644))
	require.NoError(t, os.WriteFile(svgPath, []byte(testSVG), 0o644))
	return csvPath, svgPath
}

func TestCLI_Regions(t *testing.T) {
	_, svgPath := fixtures(t)
	out := mustRun(t, "regions", svgPath)
	assert.Contains(t, out, "- California")
	assert.Contains(t, out, "- Oregon")
	assert.Contains(t, out, "✓ 3 regions")

	out = mustRun(t, "regions", filepath.Join(t.TempDir(), "missing.svg"))
	assert.Contains(t, out, "(no regions)")

	_, err := runCmd(t, "regions", "--bounds", svgPath)
	assert.Error(t, err)
}

func TestCLI_Match(t *testing.T) {
	csvPath, svgPath := fixtures(t)
	out := mustRun(t, "match", csvPath, svgPath)
	assert.Contains(t, out, "✓ California → California (1.00, exact)")
	assert.Contains(t, out, "✗ Atlantis")
	assert.Contains(t, out, "Matched 2 of 3 regions against 3 candidates")

	_, err := runCmd(t, "match", "--region-col", "state", csvPath, svgPath)
	assert.Error(t, err)
}

func TestCLI_Classify(t *testing.T) {
	csvPath, _ := fixtures(t)
	out := mustRun(t, "classify", csvPath, "--method", "manual", "--breaks", "0,10,40")
	assert.Contains(t, out, "2 buckets over 3 values of pop")
	assert.Contains(t, out, "Breaks: [0 10 40]")

	_, err := runCmd(t, "classify", csvPath, "--method", "median")
	assert.Error(t, err)
	_, err = runCmd(t, "classify", csvPath, "--breaks", "1,x")
	assert.Error(t, err)
}

func TestCLI_Schemes(t *testing.T) {
	fixtures(t)
	out := mustRun(t, "schemes")
	assert.Contains(t, out, "- buenos-aries:")
	assert.Contains(t, out, "Methods:")

	out = mustRun(t, "schemes", "paris", "--buckets", "3")
	assert.Contains(t, out, "Scale: ")
	assert.Contains(t, out, "Gradient: linear-gradient(")

	_, err := runCmd(t, "schemes", "no-such-scheme")
	assert.Error(t, err)
}

func TestCLI_BindWritesAugmentedTable(t *testing.T) {
	csvPath, svgPath := fixtures(t)
	outPath := filepath.Join(t.TempDir(), "bound.csv")
	out := mustRun(t, "bind", csvPath, svgPath, "--buckets", "2", "-o", outPath)
	assert.Contains(t, out, "⚠ 1 regions could not be matched")
	assert.Contains(t, out, "Legend:")
	assert.Contains(t, out, "✓ Colored 2 regions")

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	tbl, res, err := table.Parse("bound.csv", b, table.DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.IsValid)
	matched, ok := tbl.Column("matched_region")
	require.True(t, ok)
	assert.Equal(t, "California", matched[0].Raw)
	assert.Equal(t, "Texas", matched[1].Raw)
	assert.Empty(t, matched[2].Raw)
	conf, _ := tbl.Column("match_confidence")
	assert.Equal(t, "1.00", conf[0].Raw)
}

func TestCLI_BindJSON(t *testing.T) {
	csvPath, svgPath := fixtures(t)
	out := mustRun(t, "bind", csvPath, svgPath, "--json", "--scheme", "paris")
	assert.Contains(t, out, `"colors"`)
	assert.Contains(t, out, `"California"`)

	_, err := runCmd(t, "bind", csvPath, svgPath, "--value-col", "gdp")
	assert.Error(t, err)
}

func TestCLI_UnsupportedDelimiter(t *testing.T) {
	csvPath, _ := fixtures(t)
	_, err := runCmd(t, "inspect", csvPath, "--delimiter", "#")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --delimiter: #")
}

func TestCLI_Inspect(t *testing.T) {
	csvPath, _ := fixtures(t)
	out := mustRun(t, "inspect", csvPath)
	assert.Contains(t, out, "[SCHEMA]")
	assert.Contains(t, out, `Suggested columns: region="region" value="pop"`)
	assert.Contains(t, out, "✓ 3 rows, 2 columns")
}

func TestCLI_ConfigSetShow(t *testing.T) {
	fixtures(t)
	mustRun(t, "config", "set", "default_scheme", "paris")
	mustRun(t, "config", "set", "match.threshold", "0.7")
	mustRun(t, "config", "set", "match.alias", "Cali=California")

	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "default_scheme: paris")
	assert.Contains(t, out, "match.threshold: 0.700")
	assert.Contains(t, out, "match.aliases: 1")

	_, err := runCmd(t, "config", "set", "default_scheme", "no-such-scheme")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "match.threshold", "2")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "nope", "1")
	assert.Error(t, err)
}

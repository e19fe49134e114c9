package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/config"
	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/report"
	"github.com/sells-group/bakeoff/internal/table"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Log:    config.LogConfig{Level: "info", Format: "json"},
		Models: model.DefaultModels,
		Inputs: config.InputsConfig{
			LeftSummary:  filepath.Join(dir, "egr.csv"),
			RightSummary: filepath.Join(dir, "lcdm.csv"),
			Bakeoff:      filepath.Join(dir, "bakeoff.csv"),
			WilsonsCSV:   filepath.Join(dir, "wilsons.csv"),
			WilsonsJSON:  filepath.Join(dir, "wilsons.json"),
		},
		Output: config.OutputConfig{
			Comparison: filepath.Join(dir, "bakeoff_dedup.csv"),
			Evidence:   filepath.Join(dir, "bakeoff_evidence_table.csv"),
			ReportDir:  filepath.Join(dir, "report"),
			Strata:     filepath.Join(dir, "report", "strata.csv"),
		},
		Bootstrap:  config.BootstrapConfig{Resamples: 200, Confidence: 0.95, Seed: 42},
		SignedRank: config.SignedRankConfig{MinN: 10, ExactMaxN: 50},
		Store:      config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "runs.db")},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run executes cmd's RunE with captured stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetContext(context.TODO())
	})
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	f := cmd.Flags().Lookup(name)
	require.NotNil(t, f)
	def := f.DefValue
	require.NoError(t, cmd.Flags().Set(name, value))
	t.Cleanup(func() {
		_ = cmd.Flags().Set(name, def)
		f.Changed = false
	})
}

func writeSummaries(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "egr.csv"), `ID,BIC,AICc,s_frac,rho_AR1,fit_status
G1,10,11,0.1,0.2,OK
G1,8,9,0.1,0.2,OK
G2,5,6,0.2,0.3,OK
G3,20,21,0.3,0.1,FAIL
`)
	writeFile(t, filepath.Join(dir, "lcdm.csv"), `ID,BIC,AICc,s_frac,rho_AR1,fit_status
G1,12,13,0.1,0.1,OK
G2,4,4,0.2,0.2,OK
G3,1,1,0.1,0.1,OK
`)
}

func TestCompareCmd(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeSummaries(t, dir)

	out, err := run(t, compareCmd)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`n galaxies:\s+2`), out)
	assert.Regexp(t, regexp.MustCompile(`EGR wins \(BIC\):\s+1/2`), out)
	assert.Regexp(t, regexp.MustCompile(`LCDM wins \(AICc\):\s+1/2`), out)
	assert.Contains(t, out, "Quartiles:")
	assert.Contains(t, out, "ΔBIC evidence bins:")
	assert.NotContains(t, out, "saved run")

	deltas, err := bakeoff.LoadDeltas(cfg.Output.Comparison)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, "G2", deltas[0].ID, "sorted by ΔBIC")
	assert.Equal(t, -1.0, deltas[0].BIC)
	assert.Equal(t, "G1", deltas[1].ID)
	assert.Equal(t, 4.0, deltas[1].BIC)
}

func TestCompareCmd_AllStatusFlag(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeSummaries(t, dir)
	setFlag(t, compareCmd, "all-status", "true")

	out, err := run(t, compareCmd)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`n galaxies:\s+3`), out)
}

func TestCompareCmd_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeSummaries(t, dir)
	writeFile(t, cfg.Inputs.RightSummary, "ID,BIC,fit_status\nG1,1,OK\n")

	_, err := run(t, compareCmd)
	require.Error(t, err)

	var mc *table.MissingColumnError
	assert.ErrorAs(t, err, &mc)
	_, statErr := os.Stat(cfg.Output.Comparison)
	assert.True(t, os.IsNotExist(statErr), "no output on schema error")
}

func TestCompareCmd_InvalidConfig(t *testing.T) {
	cfg = testConfig(t.TempDir())
	cfg.Models.Right = cfg.Models.Left

	_, err := run(t, compareCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestCompareCmd_StoreDriverCheckedOnlyOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	cfg.Store.Driver = "mysql"
	writeSummaries(t, dir)

	_, err := run(t, compareCmd)
	require.NoError(t, err, "archive settings do not matter without --save")

	require.NoError(t, os.Remove(cfg.Output.Comparison))
	setFlag(t, compareCmd, "save", "true")
	_, err = run(t, compareCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
	_, statErr := os.Stat(cfg.Output.Comparison)
	assert.True(t, os.IsNotExist(statErr), "rejected before any output is written")
}

func TestCompareSaveAndRuns(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeSummaries(t, dir)
	setFlag(t, compareCmd, "save", "true")

	out, err := run(t, compareCmd)
	require.NoError(t, err)

	m := regexp.MustCompile(`saved run: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	runID := m[1]

	out, err = run(t, runsListCmd)
	require.NoError(t, err)
	assert.Contains(t, out, truncateID(runID))
	assert.Contains(t, out, "EGR/LCDM")
	assert.Contains(t, out, "complete")

	out, err = run(t, runsShowCmd, runID)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+runID+`"`)
	assert.Contains(t, out, `"galaxies": 2`)

	exportPath := filepath.Join(dir, "export.csv")
	setFlag(t, runsExportCmd, "out", exportPath)
	out, err = run(t, runsExportCmd, runID)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 galaxies)")

	deltas, err := bakeoff.LoadDeltas(exportPath)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, "G2", deltas[0].ID)

	out, err = run(t, runsStatsCmd)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`Total runs:\s+1`), out)
	assert.Regexp(t, regexp.MustCompile(`Wins \(BIC\):\s+1:1`), out)
}

func TestRunsShow_NotFound(t *testing.T) {
	cfg = testConfig(t.TempDir())

	_, err := run(t, runsShowCmd, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runs show")
}

const bakeoffCSV = `ID,dBIC,dAICc
a,-12,-12
b,-8,-8
c,-4,-4
d,0,0
e,4,4
f,8,8
g,12,12
h,,1
`

func TestEvidenceCmd(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	cfg.Metrics.Textfile = filepath.Join(dir, "bakeoff.prom")
	writeFile(t, cfg.Inputs.Bakeoff, bakeoffCSV)

	out, err := run(t, evidenceCmd)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "dBIC", lines[0])
	assert.Regexp(t, regexp.MustCompile(`LCDM≫EGR \(≥10\)\s+1\s+\(12\.5%\)`), lines[1])
	assert.Contains(t, out, "Unbinned (NaN/±inf): 1  [NaN=1, ±inf=0]")
	assert.Contains(t, out, "EGR wins (BIC):   3/8  (37.5%)")
	assert.Contains(t, out, "EGR wins (AICc):  4/8  (50.0%)")
	assert.Contains(t, out, "Quartiles dBIC :  Q1=-6.00, Med=0.00, Q3=6.00")

	tbl, err := table.Load(cfg.Output.Evidence)
	require.NoError(t, err)
	require.Equal(t, 7, tbl.Len())
	assert.Equal(t, report.EvidenceHeader, tbl.Columns())
	assert.Equal(t, "~tie (±2)", tbl.String(3, "Bin"))
	assert.Equal(t, "12.5%", tbl.String(3, "Percent"))

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `bakeoff_galaxies_compared{command="evidence"} 8`)
	assert.Contains(t, string(prom), `bakeoff_delta_bic_unbinned{command="evidence",kind="nan"} 1`)
}

func TestEvidenceCmd_MissingKey(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeFile(t, cfg.Inputs.Bakeoff, "dBIC,dAICc\n1,2\n")

	_, err := run(t, evidenceCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "galaxy|ID")
}

func TestHLCmd(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeFile(t, cfg.Inputs.Bakeoff, "ID,dBIC,dAICc\na,-2,1\nb,-1,2\nc,0,3\nd,1,\ne,2,\n")
	setFlag(t, hlCmd, "resamples", "300")

	out, err := run(t, hlCmd)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Bootstrap.Resamples)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "dBIC: HL=0.000, 95% HL-CI≈["), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "n=4"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "dAICc: HL=2.000, 95% HL-CI≈["), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], "n=3"), lines[1])
}

func TestHLCmd_InvalidResamples(t *testing.T) {
	cfg = testConfig(t.TempDir())
	setFlag(t, hlCmd, "resamples", "0")

	_, err := run(t, hlCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap.resamples")
}

func writeWilsons(t *testing.T, c *config.Config) {
	t.Helper()
	writeFile(t, c.Inputs.Bakeoff, `galaxy,dBIC,dAICc
G1,1,1
G2,-1,-1
G3,2,2
G4,-2,-2
G5,3,3
G6,3,3
`)
	writeFile(t, c.Inputs.WilsonsCSV, `ID,cC2,alpha_Ric,B
G1,1,10,-1
G2,2,20,2
G3,3,30,-3
G4,4,40,4
G5,5,50,-5
G6,6,60,6
`)
	writeFile(t, c.Inputs.WilsonsJSON, `{
  "G1": {"status": "PASS", "n_outer": 1},
  "G2": {"status": "PASS", "n_outer": 2},
  "G3": {"status": "PASS", "n_outer": 3},
  "G4": {"status": "FAIL", "n_outer": 4},
  "G5": {"status": "PASS", "n_outer": 5},
  "G6": {"status": "PASS", "n_outer": 6},
  "_meta": "ignored"
}`)
}

func TestStratifyCmd(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeWilsons(t, cfg)

	out, err := run(t, stratifyCmd)
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.Strata, strings.TrimSpace(out))

	tbl, err := table.Load(cfg.Output.Strata)
	require.NoError(t, err)
	assert.Equal(t, report.StrataHeader, tbl.Columns())
	require.Equal(t, 3, tbl.Len(), "three n_outer terciles")
	for i, label := range []string{"Q1", "Q2", "Q3"} {
		assert.Equal(t, "n_outer", tbl.String(i, "covariate"))
		assert.Equal(t, label, tbl.String(i, "bin"))
		assert.Equal(t, "2", tbl.String(i, "n_BIC"))
	}
	assert.Equal(t, "2", tbl.String(2, "wins_BIC"))
	assert.Equal(t, "1", tbl.String(2, "wins_pct_BIC"))
}

func TestStratifyCmd_NoCovariates(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeWilsons(t, cfg)
	writeFile(t, cfg.Inputs.WilsonsJSON, `{"G1": {"status": "PASS"}}`)

	_, err := run(t, stratifyCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable covariates")
	_, statErr := os.Stat(cfg.Output.Strata)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReportCmd(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeWilsons(t, cfg)
	setFlag(t, reportCmd, "hl", "true")

	start := time.Now()
	out, err := run(t, reportCmd)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Minute)

	for _, name := range []string{
		report.EvidenceFile, report.CompactFile, report.MarkdownFile,
		report.LaTeXFile, report.HTMLFile, report.SummaryFile,
	} {
		p := filepath.Join(cfg.Output.ReportDir, name)
		assert.Contains(t, out, "wrote: "+p)
		assert.FileExists(t, p)
	}

	md, err := os.ReadFile(filepath.Join(cfg.Output.ReportDir, report.MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "- **EGR wins (BIC):** 4/6 (66.7%)")
	assert.Contains(t, string(md), "(n=5)", "only PASS galaxies enter the Wilsons summaries")
	assert.Contains(t, string(md), "Hodges")

	compact, err := table.Load(filepath.Join(cfg.Output.ReportDir, report.CompactFile))
	require.NoError(t, err)
	assert.Equal(t, "cC2", compact.String(0, "param"))
	assert.Equal(t, "5", compact.String(0, "n"))
	assert.Equal(t, "3", compact.String(0, "median"))
}

func TestReportCmd_MissingWilsonsColumn(t *testing.T) {
	dir := t.TempDir()
	cfg = testConfig(dir)
	writeWilsons(t, cfg)
	writeFile(t, cfg.Inputs.WilsonsCSV, "ID,cC2\nG1,1\n")

	_, err := run(t, reportCmd)
	require.Error(t, err)

	var mc *table.MissingColumnError
	assert.ErrorAs(t, err, &mc)
	_, statErr := os.Stat(cfg.Output.ReportDir)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestFlushMetrics_Disabled(t *testing.T) {
	cfg = testConfig(t.TempDir())
	assert.NoError(t, flushMetrics(nil))
}

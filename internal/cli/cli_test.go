package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hicluster/pkg/cache"
	hcio "github.com/matzehuels/hicluster/pkg/io"
	"github.com/matzehuels/hicluster/pkg/pipeline"
)

const testBin = 100_000

// writeDataset writes a 20-bin chr1 with a centromere at bins 10-11 and a
// sample with breakpoints on both arms. It returns the dataset flags.
func writeDataset(t *testing.T, dir string) []string {
	t.Helper()
	const n = 20

	var pixels strings.Builder
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			count := 1000/(j-i+1) + (i*j)%7 + 1
			fmt.Fprintf(&pixels, "chr1\t%d\t%d\tchr1\t%d\t%d\t%d\n",
				i*testBin, (i+1)*testBin, j*testBin, (j+1)*testBin, count)
		}
	}
	files := map[string]string{
		"pixels.tsv":      pixels.String(),
		"sizes.tsv":       fmt.Sprintf("chr1\t%d\n", n*testBin),
		"centromeres.tsv": "chrom\tstart\tend\nchr1\t1000000\t1100000\n",
		"svs.csv": "unique_id,chrom1,chrom2,start1,start2\n" +
			"P1,chr1,chr1,0,300000\n" +
			"P1,chr1,chr1,600000,850000\n" +
			"P1,chr1,chr1,1500000,1900000\n" +
			"P1,chr1,chr2,100000,200000\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return []string{
		"--pixels", filepath.Join(dir, "pixels.tsv"),
		"--chrom-sizes", filepath.Join(dir, "sizes.tsv"),
		"--centromeres", filepath.Join(dir, "centromeres.tsv"),
		"--resolution", fmt.Sprint(testBin),
		"--no-cache",
	}
}

// execute runs the root command with args in a fresh working directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestDetectWritesReport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	data := writeDataset(t, dir)
	report := filepath.Join(dir, "clusters.json")

	args := append([]string{"detect"}, data...)
	args = append(args, "--sv", filepath.Join(dir, "svs.csv"), "--chromosomes", "1", "-o", report)
	_, err := execute(t, args...)
	require.NoError(t, err)

	f, err := os.Open(report)
	require.NoError(t, err)
	defer f.Close()
	res, err := hcio.ReadReport(f, hcio.FormatJSON)
	require.NoError(t, err)

	require.NotEmpty(t, res.RunID)
	require.Equal(t, []string{"P1"}, res.Samples)
	require.Len(t, res.Records, 1)
	require.Equal(t, "chr1", res.Records[0].Chromosome)
	require.Contains(t, []string{pipeline.StatusOK, pipeline.StatusEmpty}, res.Records[0].Status)
}

func TestDetectRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	data := writeDataset(t, dir)

	args := append([]string{"detect"}, data...)
	args = append(args, "--sv", filepath.Join(dir, "svs.csv"), "--format", "xml")
	_, err := execute(t, args...)
	require.ErrorContains(t, err, "unsupported format")
}

func TestScorePrintsNaNForClosePairs(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	data := writeDataset(t, dir)

	args := append([]string{"score"}, data...)
	args = append(args, "--chrom", "1", "0", "50000", "0", "5000000")
	out, err := execute(t, args...)
	require.NoError(t, err)
	require.Equal(t, "0\t50000\tnan\n0\t5000000\tnan\n", out)
}

func TestScoreRequiresPairs(t *testing.T) {
	_, err := execute(t, "score", "--pixels", "p", "--centromeres", "c", "--chrom", "1", "100")
	require.ErrorContains(t, err, "position pairs")
}

func TestNormalizeWritesMatrix(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	data := writeDataset(t, dir)

	args := append([]string{"normalize"}, data...)
	args = append(args, "--chrom", "chr1")
	out, err := execute(t, args...)
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, rows, 20)
	for _, row := range rows {
		require.Len(t, strings.Split(row, "\t"), 20)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	in := filepath.Join(dir, "run.json")
	out := filepath.Join(dir, "run.csv")

	res := &pipeline.Result{
		RunID:       "r1",
		Samples:     []string{"P1"},
		Chromosomes: []string{"chr1"},
		Records: []pipeline.Record{
			{SampleID: "P1", Chromosome: "chr1", Positions: []int64{100, 900}, Status: pipeline.StatusOK},
		},
	}
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, hcio.WriteJSON(f, res))
	require.NoError(t, f.Close())

	_, err = execute(t, "convert", in, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "patient_id,1chr")
	require.Contains(t, string(data), `"[100, 900]"`)
}

func TestConfigShowAndInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "resolution = 400000")

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "hicluster.toml"))

	_, err = execute(t, "config", "init")
	require.ErrorContains(t, err, "already exists")
	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigFileIsValidated(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("hicluster.toml", []byte("resolutoin = 5\n"), 0o644))

	_, err := execute(t, "config", "show")
	require.ErrorContains(t, err, "unknown keys")
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cacheDir := filepath.Join(dir, "cache")
	cfg := fmt.Sprintf("[cache]\ndir = %q\n", cacheDir)
	require.NoError(t, os.WriteFile("hicluster.toml", []byte(cfg), 0o644))

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	require.Equal(t, cacheDir+"\n", out)

	fc, err := cache.NewFileCache(cacheDir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, fc.Set(ctx, "matrix:abc", []byte("x"), 0))

	_, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	_, ok, err := fc.Get(ctx, "matrix:abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPortOf(t *testing.T) {
	require.Equal(t, ":8080", portOf(":8080"))
	require.Equal(t, ":9000", portOf("0.0.0.0:9000"))
	require.Equal(t, "", portOf("localhost"))
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	require.Contains(t, out, "hicluster")

	_, err = execute(t, "completion", "tcsh")
	require.Error(t, err)
}

package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hicluster/pkg/errors"
)

const pixels = "chrom1\tstart1\tend1\tchrom2\tstart2\tend2\tcount\n" +
	"chr1\t0\t100\tchr1\t0\t100\t10\n" +
	"chr1\t0\t100\tchr1\t200\t300\t4\n" +
	"chr1\t200\t300\tchr1\t200\t250\t7\n" +
	"chr1\t0\t100\tchr2\t0\t100\t99\n" +
	"chrM\t0\t100\tchrM\t0\t100\t50\n" +
	"chr2\t100\t200\tchr2\t100\t200\t3\n"

func TestReadContactsInferredExtent(t *testing.T) {
	c, err := ReadContacts(strings.NewReader(pixels), 100, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"chr1", "chr2"}, c.Chromosomes())
	require.Equal(t, 3, c.Pixels("chr1"))

	m, err := c.Matrix(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, 3, m.Size())
	require.Equal(t, 10.0, m.At(0, 0))
	require.Equal(t, 4.0, m.At(0, 2))
	require.Equal(t, 4.0, m.At(2, 0), "upper-triangle pixels are mirrored")
	require.Equal(t, 7.0, m.At(2, 2))
	require.Zero(t, m.At(1, 1))

	m2, err := c.Matrix(context.Background(), "chr2")
	require.NoError(t, err)
	require.Equal(t, 2, m2.Size())

	_, err = c.Matrix(context.Background(), "chrM")
	require.True(t, errors.Is(err, errors.ErrCodeChromosomeNotFound))
}

func TestReadContactsWithSizes(t *testing.T) {
	sizes, err := ReadChromSizes(strings.NewReader("2\t450\nchr1\t300\nchrM\t16569\n"))
	require.NoError(t, err)
	require.Equal(t, ChromSize{Name: "chr2", Length: 450}, sizes[0])
	require.Equal(t, 5, sizes[0].Bins(100))

	c, err := ReadContacts(strings.NewReader(pixels), 100, sizes)
	require.NoError(t, err)
	require.Equal(t, []string{"chr2", "chr1"}, c.Chromosomes())
	m, err := c.Matrix(context.Background(), "chr2")
	require.NoError(t, err)
	require.Equal(t, 5, m.Size())
}

func TestReadContactsResolutionMismatch(t *testing.T) {
	_, err := ReadContacts(strings.NewReader(pixels), 50, nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidData))

	_, err = ReadContacts(strings.NewReader("chr1\t0\t100\n"), 100, nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestReadContactsOutsideSizes(t *testing.T) {
	sizes := []ChromSize{{Name: "chr1", Length: 150}}
	_, err := ReadContacts(strings.NewReader(pixels), 100, sizes)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidData))
}

func TestReadCentromeres(t *testing.T) {
	in := "chrom\tstart\tend\tname\n" +
		"chr1\t121700000\t125100000\tacen\n" +
		"chr1\t123400000\t120000000\tacen\n" +
		"2\t91800000\t96000000\tacen\n"
	table, err := ReadCentromeres(strings.NewReader(in))
	require.NoError(t, err)

	start, end, err := table.Span("1")
	require.NoError(t, err)
	require.Equal(t, int64(120_000_000), start)
	require.Equal(t, int64(125_100_000), end)

	start, _, err = table.Span("chr2")
	require.NoError(t, err)
	require.Equal(t, int64(91_800_000), start)

	_, err = ReadCentromeres(strings.NewReader(""))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidData))
}

func TestReadBreakpoints(t *testing.T) {
	in := "id,unique_id,chrom1,start1,chrom2,start2,svtype\n" +
		"0,P1,3,1000000,3,5000000,DEL\n" +
		"1,P1,3,2000000.0,4,100,TRA\n" +
		"2,P2,X,,X,300,INV\n" +
		"3,P2,X,700000,X,9000000,INV\n"
	table, skipped, err := ReadBreakpoints(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Equal(t, []string{"P1", "P2"}, table.Samples())
	require.Equal(t, []int64{1_000_000, 5_000_000}, table.Positions("P1", "chr3"))
	require.Equal(t, []int64{700_000, 9_000_000}, table.Positions("P2", "chrX"))
	require.Len(t, table.Rows(), 3)
}

func TestReadBreakpointsErrors(t *testing.T) {
	_, _, err := ReadBreakpoints(strings.NewReader("unique_id,chrom1,start1\nP1,1,5\n"))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, _, err = ReadBreakpoints(strings.NewReader("unique_id,chrom1,chrom2,start1,start2\nP1,1,1,5.5,9\n"))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidData))

	_, _, err = ReadBreakpoints(strings.NewReader("unique_id,chrom1,chrom2,start1,start2\nP1,1,1,-5,9\n"))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidData))
}

func TestParsePosition(t *testing.T) {
	v, err := parsePosition("1.2e6")
	require.NoError(t, err)
	require.Equal(t, int64(1_200_000), v)
	_, err = parsePosition(strings.Repeat("9", 400))
	require.Error(t, err)
	_, err = parsePosition("NaN")
	require.Error(t, err)
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(pixels))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	gz := filepath.Join(dir, "pixels.tsv.gz")
	require.NoError(t, os.WriteFile(gz, buf.Bytes(), 0o644))
	plain := filepath.Join(dir, "pixels.tsv")
	require.NoError(t, os.WriteFile(plain, []byte(pixels), 0o644))

	a, err := LoadContacts(gz, "", 100)
	require.NoError(t, err)
	b, err := LoadContacts(plain, "", 100)
	require.NoError(t, err)
	require.Equal(t, a.Chromosomes(), b.Chromosomes())
	require.Equal(t, a.Pixels("chr1"), b.Pixels("chr1"))

	_, err = LoadContacts(filepath.Join(dir, "missing.tsv"), "", 100)
	require.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestOpenZstd(t *testing.T) {
	dir := t.TempDir()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte(pixels), nil)
	require.NoError(t, enc.Close())
	path := filepath.Join(dir, "pixels.tsv.zst")
	require.NoError(t, os.WriteFile(path, compressed, 0o644))

	c, err := LoadContacts(path, "", 100)
	require.NoError(t, err)
	require.Equal(t, []string{"chr1", "chr2"}, c.Chromosomes())
}

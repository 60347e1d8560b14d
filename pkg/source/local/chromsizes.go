package local

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/source"
)

// ChromSize is one chromosome length in base pairs.
type ChromSize struct {
	Name   string
	Length int64
}

// Bins returns the number of bins of width binSize needed to cover the chromosome.
func (c ChromSize) Bins(binSize int64) int {
	return int((c.Length + binSize - 1) / binSize)
}

// ReadChromSizes parses a chromosome sizes table. Names are normalized and
// the order of the file is kept.
func ReadChromSizes(r io.Reader) ([]ChromSize, error) {
	var out []ChromSize
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "chrom sizes line %d: want 2 fields, got %d", line, len(fields))
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || n <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "chrom sizes line %d: bad length %q", line, fields[1])
		}
		out = append(out, ChromSize{Name: source.NormalizeChromName(fields[0]), Length: n})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package local

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/source"
)

var breakpointColumns = []string{"unique_id", "chrom1", "chrom2", "start1", "start2"}

// ReadBreakpoints parses a structural-variant CSV. Columns are located by
// header name; other columns are ignored. Rows with an empty position are
// skipped and counted in the returned int.
func ReadBreakpoints(r io.Reader) (*source.Breakpoints, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read SV header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cols := make([]int, len(breakpointColumns))
	for k, name := range breakpointColumns {
		i, ok := idx[name]
		if !ok {
			return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "SV table lacks column %q", name)
		}
		cols[k] = i
	}

	var rows []source.Breakpoint
	skipped := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "SV line %d", line)
		}
		field := func(k int) string {
			if cols[k] >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[cols[k]])
		}
		s1, s2 := field(3), field(4)
		if s1 == "" || s2 == "" {
			skipped++
			continue
		}
		start1, err := parsePosition(s1)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidData, err, "SV line %d start1", line)
		}
		start2, err := parsePosition(s2)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidData, err, "SV line %d start2", line)
		}
		rows = append(rows, source.Breakpoint{
			SampleID: field(0),
			Chrom1:   field(1),
			Chrom2:   field(2),
			Start1:   start1,
			Start2:   start2,
		})
	}
	return source.NewBreakpoints(rows), skipped, nil
}

// parsePosition accepts integers and integral floats such as "12345.0".
func parsePosition(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, errors.ValidatePosition(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeInvalidData, "bad position %q", s)
	}
	return int64(f), errors.ValidatePosition(int64(f))
}

// LoadBreakpoints reads the SV table at path.
func LoadBreakpoints(path string) (*source.Breakpoints, int, error) {
	f, err := Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return ReadBreakpoints(f)
}

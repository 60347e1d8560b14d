package local

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/source"
)

// ReadCentromeres parses a centromere table. A first row with non-numeric
// coordinates is taken as a header and skipped.
func ReadCentromeres(r io.Reader) (*source.Centromeres, error) {
	table := source.NewCentromeres()
	sc := bufio.NewScanner(r)
	line, header := 0, true
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			fields = strings.Fields(text)
		}
		if len(fields) < 3 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "centromeres line %d: want at least 3 fields", line)
		}
		start, err1 := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		end, err2 := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err1 != nil || err2 != nil {
			if header {
				header = false
				continue
			}
			return nil, errors.New(errors.ErrCodeInvalidFormat, "centromeres line %d: bad coordinates", line)
		}
		header = false
		table.Add(fields[0], start, end)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidData, "centromere table is empty")
	}
	return table, nil
}

// LoadCentromeres reads the centromere table at path.
func LoadCentromeres(path string) (*source.Centromeres, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCentromeres(f)
}

package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/hicluster/pkg/pipeline"
	"github.com/matzehuels/hicluster/pkg/source"
)

const sampleColumn = "patient_id"

// WriteCSV writes the wide report of res: one row per sample in res.Samples
// order and one column per chromosome in res.Chromosomes order. Units missing
// from res.Records are written as empty lists.
func WriteCSV(w io.Writer, res *pipeline.Result) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(res.Chromosomes)+2)
	header = append(header, "", sampleColumn)
	for _, c := range res.Chromosomes {
		header = append(header, source.ColumnLabel(c))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	clusters := make(map[[2]string][]int64, len(res.Records))
	for _, rec := range res.Records {
		clusters[[2]string{rec.SampleID, rec.Chromosome}] = rec.Positions
	}
	for i, sample := range res.Samples {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(i), sample)
		for _, c := range res.Chromosomes {
			row = append(row, FormatList(clusters[[2]string{sample, c}]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a wide report. Only samples, chromosomes and cluster
// positions are recovered.
func ReadCSV(r io.Reader) (*pipeline.Result, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	sampleCol := slices.Index(header, sampleColumn)
	if sampleCol < 0 {
		return nil, fmt.Errorf("csv report has no %s column", sampleColumn)
	}

	res := &pipeline.Result{}
	chromCols := make(map[int]string)
	for i, h := range header {
		if i == sampleCol || !strings.HasSuffix(h, "chr") {
			continue
		}
		chrom := source.NormalizeChromName(strings.TrimSuffix(h, "chr"))
		chromCols[i] = chrom
		res.Chromosomes = append(res.Chromosomes, chrom)
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		sample := row[sampleCol]
		res.Samples = append(res.Samples, sample)
		for i := range row {
			chrom, ok := chromCols[i]
			if !ok {
				continue
			}
			positions, err := ParseList(row[i])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, header[i], err)
			}
			status := pipeline.StatusOK
			if len(positions) == 0 {
				status = pipeline.StatusEmpty
			}
			res.Records = append(res.Records, pipeline.Record{
				SampleID:   sample,
				Chromosome: chrom,
				Positions:  positions,
				Status:     status,
			})
		}
	}
	res.Stats.Units = len(res.Records)
	for _, rec := range res.Records {
		if len(rec.Positions) > 0 {
			res.Stats.Clusters++
		}
	}
	return res, nil
}

// FormatList renders positions as "[a, b, c]".
func FormatList(positions []int64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range positions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(p, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseList parses the output of [FormatList].
func ParseList(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a bracketed list: %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	out := []int64{}
	if body == "" {
		return out, nil
	}
	for _, f := range strings.Split(body, ",") {
		p, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad position %q: %w", f, err)
		}
		out = append(out, p)
	}
	return out, nil
}

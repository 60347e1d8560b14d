package local

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/hicluster/pkg/contact"
	"github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/source"
)

type pixel struct {
	i, j  int
	count float64
}

// Contacts is a [source.ContactStore] over pixels held in memory. Dense
// matrices are materialized per call to Matrix.
type Contacts struct {
	binSize int64
	order   []string
	bins    map[string]int
	pixels  map[string][]pixel
}

// ReadContacts parses "cooler dump --join" pixels at resolution binSize.
// Inter-chromosomal and mitochondrial pixels are dropped. When sizes is
// empty the chromosome order and extents are inferred from the pixels.
func ReadContacts(r io.Reader, binSize int64, sizes []ChromSize) (*Contacts, error) {
	if err := errors.ValidateResolution(binSize); err != nil {
		return nil, err
	}
	c := &Contacts{
		binSize: binSize,
		bins:    make(map[string]int),
		pixels:  make(map[string][]pixel),
	}
	for _, s := range sizes {
		if source.IsMitochondrial(s.Name) {
			continue
		}
		c.order = append(c.order, s.Name)
		c.bins[s.Name] = s.Bins(binSize)
	}
	known := len(sizes) > 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 7 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "pixels line %d: want 7 fields, got %d", line, len(fields))
		}
		if line == 1 && fields[0] == "chrom1" {
			continue
		}
		chrom1, chrom2 := source.NormalizeChromName(fields[0]), source.NormalizeChromName(fields[3])
		if chrom1 != chrom2 || source.IsMitochondrial(chrom1) {
			continue
		}
		i, err := c.bin(fields[1], fields[2], line)
		if err != nil {
			return nil, err
		}
		j, err := c.bin(fields[4], fields[5], line)
		if err != nil {
			return nil, err
		}
		count, err := strconv.ParseFloat(fields[6], 64)
		if err != nil || count < 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "pixels line %d: bad count %q", line, fields[6])
		}

		if _, ok := c.bins[chrom1]; !ok {
			if known {
				return nil, errors.New(errors.ErrCodeInvalidData, "pixels line %d: %s missing from chrom sizes", line, chrom1)
			}
			c.order = append(c.order, chrom1)
		}
		if known && max(i, j) >= c.bins[chrom1] {
			return nil, errors.New(errors.ErrCodeInvalidData, "pixels line %d: bin %d beyond %s", line, max(i, j), chrom1)
		}
		if !known {
			c.bins[chrom1] = max(c.bins[chrom1], i+1, j+1)
		}
		c.pixels[chrom1] = append(c.pixels[chrom1], pixel{i: i, j: j, count: count})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// bin converts a pixel's start and end coordinates to a bin index, checking
// that the pixel width matches the store resolution.
func (c *Contacts) bin(startField, endField string, line int) (int, error) {
	start, err1 := strconv.ParseInt(startField, 10, 64)
	end, err2 := strconv.ParseInt(endField, 10, 64)
	if err1 != nil || err2 != nil || start < 0 || end <= start {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "pixels line %d: bad interval %s-%s", line, startField, endField)
	}
	if start%c.binSize != 0 || end-start > c.binSize {
		return 0, errors.New(errors.ErrCodeInvalidData,
			"pixels line %d: interval %d-%d does not match resolution %d", line, start, end, c.binSize)
	}
	return int(start / c.binSize), nil
}

// LoadContacts reads pixels and an optional chrom sizes file.
func LoadContacts(pixelsPath, sizesPath string, binSize int64) (*Contacts, error) {
	var sizes []ChromSize
	if sizesPath != "" {
		f, err := Open(sizesPath)
		if err != nil {
			return nil, err
		}
		sizes, err = ReadChromSizes(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidData, err, "read %s", sizesPath)
		}
	}
	f, err := Open(pixelsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := ReadContacts(f, binSize, sizes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidData, err, "read %s", pixelsPath)
	}
	return c, nil
}

// BinSize implements [source.ContactStore].
func (c *Contacts) BinSize() int64 { return c.binSize }

// Chromosomes implements [source.ContactStore].
func (c *Contacts) Chromosomes() []string { return append([]string(nil), c.order...) }

// Pixels returns the number of intra-chromosomal pixels read for chrom.
func (c *Contacts) Pixels(chrom string) int {
	return len(c.pixels[source.NormalizeChromName(chrom)])
}

// Matrix implements [source.ContactStore]. Pixels are mirrored so that an
// upper-triangle dump yields a symmetric matrix.
func (c *Contacts) Matrix(ctx context.Context, chrom string) (*contact.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chrom = source.NormalizeChromName(chrom)
	n, ok := c.bins[chrom]
	if !ok {
		return nil, errors.New(errors.ErrCodeChromosomeNotFound, "no contacts for %s", chrom)
	}
	m, err := contact.NewMatrix(n)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidData, err, "%s", chrom)
	}
	for _, p := range c.pixels[chrom] {
		m.SetSymmetric(p.i, p.j, p.count)
	}
	return m, nil
}

var _ source.ContactStore = (*Contacts)(nil)

package io

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/matzehuels/hicluster/pkg/contact"
)

// WriteMatrix writes m as tab-separated rows, one per bin. Undefined
// entries are written as "nan".
func WriteMatrix(w io.Writer, m *contact.Matrix) error {
	bw := bufio.NewWriter(w)
	n := m.Size()
	buf := make([]byte, 0, 32)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j > 0 {
				bw.WriteByte('\t')
			}
			v := m.At(i, j)
			if math.IsNaN(v) {
				bw.WriteString("nan")
				continue
			}
			buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
			bw.Write(buf)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

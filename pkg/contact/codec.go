package contact

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/golang/snappy"
	"gonum.org/v1/gonum/mat"
)

// codecVersion prefixes every encoded matrix so stale cache entries are rejected.
const codecVersion uint32 = 1

// ErrCorrupt is returned when encoded matrix data cannot be decoded.
var ErrCorrupt = errors.New("contact: corrupt matrix encoding")

// Marshal encodes m as a snappy-compressed little-endian float64 block.
// NaN entries survive the round trip.
func Marshal(m *Matrix) []byte {
	n := m.Size()
	buf := make([]byte, 8+8*n*n)
	binary.LittleEndian.PutUint32(buf[0:], codecVersion)
	binary.LittleEndian.PutUint32(buf[4:], uint32(n))
	for k, v := range m.dense.RawMatrix().Data {
		binary.LittleEndian.PutUint64(buf[8+8*k:], math.Float64bits(v))
	}
	return snappy.Encode(nil, buf)
}

// Unmarshal decodes data produced by [Marshal].
func Unmarshal(data []byte) (*Matrix, error) {
	buf, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(buf) < 8 || binary.LittleEndian.Uint32(buf[0:]) != codecVersion {
		return nil, ErrCorrupt
	}
	n := int(binary.LittleEndian.Uint32(buf[4:]))
	if n == 0 || len(buf) != 8+8*n*n {
		return nil, ErrCorrupt
	}
	data64 := make([]float64, n*n)
	for k := range data64 {
		data64[k] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8+8*k:]))
	}
	return &Matrix{dense: mat.NewDense(n, n, data64)}, nil
}

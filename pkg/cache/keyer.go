package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// MatrixKeyOpts are the normalization inputs besides the raw matrix.
type MatrixKeyOpts struct {
	BinSize       int64   `json:"bin_size"`
	ZeroThreshold float64 `json:"zero_threshold"`
	CentStart     int     `json:"cent_start"`
	CentEnd       int     `json:"cent_end"`
}

// UnitKeyOpts are the detection inputs of one (sample, chromosome) unit.
type UnitKeyOpts struct {
	SizeThreshold int     `json:"size_threshold"`
	MinDistance   int64   `json:"min_distance"`
	Positions     []int64 `json:"positions"`
}

// Keyer derives cache keys.
type Keyer interface {
	// MatrixKey addresses the normalized matrix of chrom whose raw counts
	// hash to rawHash.
	MatrixKey(chrom, rawHash string, opts MatrixKeyOpts) string

	// UnitKey addresses the cluster found in the normalized matrix
	// matrixKey for the given breakpoints.
	UnitKey(matrixKey string, opts UnitKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MatrixKey implements [Keyer].
func (DefaultKeyer) MatrixKey(chrom, rawHash string, opts MatrixKeyOpts) string {
	return hashKey("matrix", chrom, rawHash, opts)
}

// UnitKey implements [Keyer].
func (DefaultKeyer) UnitKey(matrixKey string, opts UnitKeyOpts) string {
	return hashKey("unit", matrixKey, opts)
}

// KeyType returns the prefix of key up to the first colon, ignoring any
// scope prefix added by [ScopedKeyer].
func KeyType(key string) string {
	for _, t := range []string{"matrix:", "unit:"} {
		if i := strings.Index(key, t); i >= 0 {
			return t[:len(t)-1]
		}
	}
	return "other"
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "kind:" followed by the hash of the JSON encoding of parts.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

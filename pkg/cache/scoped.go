package cache

// ScopedKeyer wraps a Keyer with a prefix so several datasets or tool
// versions can share one backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "hicluster:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MatrixKey generates a prefixed matrix key.
func (k *ScopedKeyer) MatrixKey(chrom, rawHash string, opts MatrixKeyOpts) string {
	return k.prefix + k.inner.MatrixKey(chrom, rawHash, opts)
}

// UnitKey generates a prefixed unit key.
func (k *ScopedKeyer) UnitKey(matrixKey string, opts UnitKeyOpts) string {
	return k.prefix + k.inner.UnitKey(matrixKey, opts)
}

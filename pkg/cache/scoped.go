package cache

// ScopedKeyer wraps a Keyer with a prefix so that several corpora or
// tenants can share one backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "corpus:kicad:")
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

// AdaptKey generates a prefixed adaptation key.
func (k *ScopedKeyer) AdaptKey(templateHash, targetHash string, opts AdaptKeyOpts) string {
	return k.prefix + k.inner.AdaptKey(templateHash, targetHash, opts)
}

// RankKey generates a prefixed ranking key.
func (k *ScopedKeyer) RankKey(corpusHash, targetHash string, opts RankKeyOpts) string {
	return k.prefix + k.inner.RankKey(corpusHash, targetHash, opts)
}

// DistanceKey generates a prefixed distance key.
func (k *ScopedKeyer) DistanceKey(aHash, bHash string, opts DistanceKeyOpts) string {
	return k.prefix + k.inner.DistanceKey(aHash, bHash, opts)
}

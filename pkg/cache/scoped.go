package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants or environments
// can share one Redis instance without colliding.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer uses the default key layout.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AnalysisKey returns the prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(imageURL string, width, height int) string {
	return k.prefix + k.inner.AnalysisKey(imageURL, width, height)
}

// CorrectionKey returns the prefixed correction key.
func (k *ScopedKeyer) CorrectionKey(draftHash string, opts CorrectionKeyOpts) string {
	return k.prefix + k.inner.CorrectionKey(draftHash, opts)
}

// HistoryKey returns the prefixed history key.
func (k *ScopedKeyer) HistoryKey(brand string) string {
	return k.prefix + k.inner.HistoryKey(brand)
}

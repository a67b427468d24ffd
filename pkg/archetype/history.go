package archetype

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/cache"
)

// Defaults for History.
const (
	DefaultHistoryLimit = 2
	DefaultHistoryTTL   = cache.TTLHistory
)

// History remembers the most recently used archetypes per brand so
// selection can avoid repeating them.
type History struct {
	cache  cache.Cache
	keyer  cache.Keyer
	limit  int
	ttl    time.Duration
	logger *log.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithLimit sets how many archetypes are remembered.
func WithLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithTTL sets how long a brand's history is kept after its last update.
func WithTTL(ttl time.Duration) HistoryOption {
	return func(h *History) { h.ttl = ttl }
}

// WithLogger sets the logger for cache failures.
func WithLogger(l *log.Logger) HistoryOption {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHistory creates a history backed by c. Nil arguments fall back to a
// null cache and the default keyer.
func NewHistory(c cache.Cache, keyer cache.Keyer, opts ...HistoryOption) *History {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	h := &History{
		cache:  c,
		keyer:  keyer,
		limit:  DefaultHistoryLimit,
		ttl:    DefaultHistoryTTL,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Recent returns the brand's recently used archetypes, most recent first.
// Cache failures yield an empty history.
func (h *History) Recent(ctx context.Context, brand string) []string {
	var names []string
	ok, err := cache.GetJSON(ctx, h.cache, h.keyer.HistoryKey(brand), &names)
	if err != nil {
		h.logger.Warn("read archetype history", "brand", brand, "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	return names
}

// Record moves name to the front of the brand's history, de-duplicating and
// trimming to the limit. It returns the updated history.
func (h *History) Record(ctx context.Context, brand, name string) ([]string, error) {
	names := slices.DeleteFunc(h.Recent(ctx, brand), func(n string) bool { return n == name })
	names = append([]string{name}, names...)
	if len(names) > h.limit {
		names = names[:h.limit]
	}
	if err := cache.SetJSON(ctx, h.cache, h.keyer.HistoryKey(brand), names, h.ttl); err != nil {
		return names, err
	}
	return names, nil
}

// Clear forgets the brand's history.
func (h *History) Clear(ctx context.Context, brand string) error {
	return h.cache.Delete(ctx, h.keyer.HistoryKey(brand))
}

// SelectFor picks an archetype for the brand using its history, then records
// the choice. A failed record is logged and does not affect the result.
func (h *History) SelectFor(ctx context.Context, c Catalog, brand string, focal Focal) string {
	name := c.Select(focal, h.Recent(ctx, brand))
	if _, err := h.Record(ctx, brand, name); err != nil {
		h.logger.Warn("record archetype history", "brand", brand, "archetype", name, "err", err)
	}
	return name
}

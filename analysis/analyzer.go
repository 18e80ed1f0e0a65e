package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shypn/topology/petri"
)

// Analyzer is the contract every analyzer in this package implements.
// Analyze is the only user-facing entry point: it never returns an error
// for expected input conditions (empty model, disconnected net, unreachable
// target) — those surface as Result.Success==true with a documented
// summary. The returned error is reserved for conditions that make even
// constructing a Result impossible (a cancelled context).
type Analyzer interface {
	Analyze(ctx context.Context, options Options) (*Result, error)
	Invalidate()
	ClearCache()
}

// cacheKey identifies a cached Result by the model's structural hash, the
// marking hash (only for analyzers whose result depends on the current
// marking), and the caller's effective, recognized options.
type cacheKey struct {
	structHash uint64
	markHash   uint64
	opts       string
}

type resultCache struct {
	mu    sync.RWMutex
	items map[cacheKey]*Result
}

func newResultCache() *resultCache {
	return &resultCache{items: make(map[cacheKey]*Result)}
}

func (c *resultCache) get(k cacheKey) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[k]
	return r, ok
}

func (c *resultCache) put(k cacheKey, r *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[k] = r
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cacheKey]*Result)
}

// base is embedded by every concrete analyzer. It owns the analyzer's
// private cache (never shared across analyzer instances) and the
// shared, read-only Model reference.
type base struct {
	model       *petri.Model
	cache       *resultCache
	usesMarking bool
}

func newBase(model *petri.Model, usesMarking bool) base {
	return base{model: model, cache: newResultCache(), usesMarking: usesMarking}
}

func (b *base) key(options Options, recognized []string) cacheKey {
	var mh uint64
	if b.usesMarking {
		mh = b.model.MarkingHash()
	}
	return cacheKey{
		structHash: b.model.StructuralHash(),
		markHash:   mh,
		opts:       optionsKey(options, recognized),
	}
}

func (b *base) cached(k cacheKey) (*Result, bool) { return b.cache.get(k) }
func (b *base) store(k cacheKey, r *Result)       { b.cache.put(k, r) }

// Invalidate drops this analyzer's cache. The model's own structural hash
// change has the same effect implicitly, via a cache-key miss.
func (b *base) Invalidate() { b.cache.clear() }

// ClearCache is a synonym for Invalidate, distinguishing the two
// conceptually (explicit clear vs model-driven invalidation) while
// giving them identical behavior here.
func (b *base) ClearCache() { b.cache.clear() }

// finalize stamps timing/parameter metadata onto a freshly computed
// Result. Every analyzer's Analyze calls this exactly once, right before
// returning (and before caching), so Metadata.AnalysisTime reflects the
// live computation even on a cache hit of a later, identical call.
func finalize(start time.Time, params map[string]any, itemCount int, r *Result) *Result {
	r.Metadata = Metadata{
		AnalysisTime: time.Since(start),
		Parameters:   params,
		ItemCount:    itemCount,
		RunID:        uuid.NewString(),
	}
	return r
}

// pollEvery bounds how often a search loop pays for a context check.
const pollEvery = 256

// ctxDone checks cancellation every pollEvery-th call (keyed by a counter
// the caller increments), so a long CPU-bound search both honors its
// caller-supplied limits (handled by the search itself) and an abandoned
// context, without paying syscall-adjacent overhead on every iteration.
func ctxDone(ctx context.Context, iter int) bool {
	if iter%pollEvery != 0 {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

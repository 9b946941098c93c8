package extract

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// Resolver answers product-catalog cross-reference queries. A nil result
// string means the catalog has no answer for that key.
type Resolver interface {
	BrandByUPC(upc string) string
	ModelByUPC(upc string) string
	ModelByASIN(asin string) string
}

const defaultXRefCacheSize = 4096

// CrossRef memoizes Resolver answers (including misses) in an LRU cache,
// since the same UPC/ASIN shows up across many listings of a batch. With
// a nil Resolver every lookup reports absent, which keeps the chain
// methods well-defined without an external catalog.
type CrossRef struct {
	resolver Resolver
	cache    *lru.Cache[string, string]
}

// NewCrossRef builds a memoized cross-reference front. size <= 0 picks a
// default cache size.
func NewCrossRef(resolver Resolver, size int) *CrossRef {
	if size <= 0 {
		size = defaultXRefCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		log.Warn().Err(err).Msg("Cross-reference cache disabled")
	}
	return &CrossRef{resolver: resolver, cache: cache}
}

// BrandByUPC resolves a brand from a UPC, or "" when unknown.
func (x *CrossRef) BrandByUPC(upc string) string {
	return x.lookup("brand:upc:"+upc, func() string { return x.resolver.BrandByUPC(upc) })
}

// ModelByUPC resolves a model from a UPC, or "" when unknown.
func (x *CrossRef) ModelByUPC(upc string) string {
	return x.lookup("model:upc:"+upc, func() string { return x.resolver.ModelByUPC(upc) })
}

// ModelByASIN resolves a model from an ASIN, or "" when unknown.
func (x *CrossRef) ModelByASIN(asin string) string {
	return x.lookup("model:asin:"+asin, func() string { return x.resolver.ModelByASIN(asin) })
}

func (x *CrossRef) lookup(key string, resolve func() string) string {
	if x == nil || x.resolver == nil {
		return ""
	}
	if x.cache != nil {
		if v, ok := x.cache.Get(key); ok {
			return v
		}
	}
	v := resolve()
	if x.cache != nil {
		x.cache.Add(key, v)
	}
	return v
}

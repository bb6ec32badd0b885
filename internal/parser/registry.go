package parser

import (
	"context"

	"golang.org/x/sync/singleflight"

	"sourcelens/internal/logging"
	"sourcelens/internal/types"
)

// Registry dispatches parse requests to the TreeSitterParser and serves
// cached results, collapsing concurrent requests for the same
// (ContentFp, Language) key via singleflight so a burst of identical
// content (common in monorepos with vendored copies) parses once.
type Registry struct {
	parser *TreeSitterParser
	cache  *Cache
	group  singleflight.Group
}

// NewRegistry creates a Registry with a parse cache of the given capacity.
func NewRegistry(cacheCapacity int) *Registry {
	return &Registry{
		parser: NewTreeSitterParser(),
		cache:  NewCache(cacheCapacity),
	}
}

// Supported reports whether lang has a registered grammar.
func (r *Registry) Supported(lang types.Language) bool {
	return grammarFor(lang) != nil
}

// Parse returns ParseFacts for content, serving from cache when
// (contentFp, lang) has already been parsed.
func (r *Registry) Parse(ctx context.Context, lang types.Language, contentFp uint64, content []byte) (*types.ParseFacts, error) {
	if cached, ok := r.cache.Get(contentFp, lang); ok {
		logging.ParseDebug("cache hit for fp=%x lang=%s", contentFp, lang)
		return cached, nil
	}

	sfKey := string(lang) + ":" + uitoa(contentFp)
	v, err, _ := r.group.Do(sfKey, func() (interface{}, error) {
		if cached, ok := r.cache.Get(contentFp, lang); ok {
			return cached, nil
		}
		timer := logging.StartTimer(logging.CategoryParse, "parse:"+string(lang))
		facts, err := r.parser.Parse(ctx, lang, contentFp, content)
		timer.Stop()
		if err != nil {
			return nil, err
		}
		r.cache.Put(contentFp, lang, facts)
		return facts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ParseFacts), nil
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

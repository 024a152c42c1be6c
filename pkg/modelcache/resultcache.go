package modelcache

import (
	"encoding/json"

	"github.com/vtcode/vtcode/pkg/tools"
)

// ResultCacheAdapter adapts a Cache to tools.ResultCache by marshaling
// dual-channel Results to/from the cache's json.RawMessage values, letting
// the executor's caching middleware and the model-catalog cache share one
// LRU+TTL+snapshot implementation rather than maintaining two.
type ResultCacheAdapter struct {
	Cache *Cache
}

func (a ResultCacheAdapter) Get(key string) (tools.Result, bool) {
	raw, ok := a.Cache.Get(key)
	if !ok {
		return tools.Result{}, false
	}
	var r tools.Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return tools.Result{}, false
	}
	return r, true
}

func (a ResultCacheAdapter) Put(key string, r tools.Result) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	a.Cache.Put(key, raw)
}

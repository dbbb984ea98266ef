package navigation

import (
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/lixenwraith/tileworld/grid"
)

// resultTTL bounds how long a solved route stays cached for an unchanged grid
const resultTTL = 30 * time.Second

// cachedResult is a solved request; found=false records an unreachable goal
type cachedResult struct {
	path  Path
	found bool
}

func newResultCache() *ristretto.Cache[string, *cachedResult] {
	cache, err := ristretto.NewCache[string, *cachedResult](&ristretto.Config[string, *cachedResult]{
		NumCounters: cacheCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
	return cache
}

// resultKey binds a request to the snapshot version it was solved against
func resultKey(version uint64, start, goal grid.Cell, q Query) string {
	return strconv.FormatUint(version, 10) + "|" + start.String() + ">" + goal.String() + "|" + q.fingerprint()
}

func (g *Grid) cachedPath(key string) (*cachedResult, bool) {
	return g.cache.Get(key)
}

func (g *Grid) storePath(key string, path Path, found bool) {
	cost := int64(len(path) + 1)
	g.cache.SetWithTTL(key, &cachedResult{path: path, found: found}, cost, resultTTL)
}

// FlushCache drops every cached route and waits for pending cache writes
func (g *Grid) FlushCache() {
	g.cache.Wait()
	g.cache.Clear()
}

// Close releases the result cache
func (g *Grid) Close() {
	g.cache.Close()
}

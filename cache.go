package nexus

import (
	"hash/fnv"

	"github.com/dgraph-io/ristretto"
)

// ProgramCache memoizes parsed programs by source text, so a REPL or host
// re-running the same snippet skips the lexer and parser. Keys are FNV-64a
// hashes of the source; costs are source byte lengths, bounding the cache
// by input size rather than entry count.
type ProgramCache struct {
	rc *ristretto.Cache
}

// NewProgramCache builds a cache admitting up to maxBytes of source text.
func NewProgramCache(maxBytes int64) (*ProgramCache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ProgramCache{rc: rc}, nil
}

func sourceKey(src string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(src))
	return h.Sum64()
}

// Get returns the cached program for src, if admitted.
func (c *ProgramCache) Get(src string) (*Program, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.rc.Get(sourceKey(src))
	if !ok {
		return nil, false
	}
	return v.(*Program), true
}

// Put offers the parsed program for src to the cache. Admission is
// asynchronous and may be declined; callers never depend on it.
func (c *ProgramCache) Put(src string, prog *Program) {
	if c == nil {
		return
	}
	c.rc.Set(sourceKey(src), prog, int64(len(src)))
}

// Wait blocks until pending admissions settle. Tests use it before
// asserting on Get.
func (c *ProgramCache) Wait() {
	if c == nil {
		return
	}
	c.rc.Wait()
}

// Close releases the cache's internal goroutines.
func (c *ProgramCache) Close() {
	if c == nil {
		return
	}
	c.rc.Close()
}

package nexus

import (
	"testing"
)

func Test_Cache_PutGet(t *testing.T) {
	c, err := NewProgramCache(1 << 20)
	if err != nil {
		t.Fatalf("NewProgramCache: %v", err)
	}
	defer c.Close()

	src := "var x = 1\nx + 1"
	prog := mustParse(t, src)

	if _, ok := c.Get(src); ok {
		t.Fatalf("empty cache should miss")
	}
	c.Put(src, prog)
	c.Wait()

	got, ok := c.Get(src)
	if !ok {
		t.Fatalf("expected hit after Put")
	}
	if got != prog {
		t.Fatalf("cache must return the same parsed tree")
	}
}

func Test_Cache_DistinctSources_DistinctEntries(t *testing.T) {
	c, err := NewProgramCache(1 << 20)
	if err != nil {
		t.Fatalf("NewProgramCache: %v", err)
	}
	defer c.Close()

	a := mustParse(t, "1 + 1")
	b := mustParse(t, "2 + 2")
	c.Put("1 + 1", a)
	c.Put("2 + 2", b)
	c.Wait()

	if got, ok := c.Get("1 + 1"); !ok || got != a {
		t.Fatalf("wrong entry for first source: %v %v", got, ok)
	}
	if got, ok := c.Get("2 + 2"); !ok || got != b {
		t.Fatalf("wrong entry for second source: %v %v", got, ok)
	}
}

func Test_Cache_NilIsDisabled(t *testing.T) {
	var c *ProgramCache
	if _, ok := c.Get("anything"); ok {
		t.Fatalf("nil cache should always miss")
	}
	// Put and Wait on nil must be no-ops, not panics.
	c.Put("anything", &Program{})
	c.Wait()
	c.Close()
}

func Test_Cache_Interpreter_ReusesParse(t *testing.T) {
	ip := NewInterpreter()
	cache, err := NewProgramCache(1 << 20)
	if err != nil {
		t.Fatalf("NewProgramCache: %v", err)
	}
	defer cache.Close()
	ip.Programs = cache

	src := "40 + 2"
	wantNum(t, mustEvalPersistent(t, ip, src), 42)
	cache.Wait()

	cached, ok := cache.Get(src)
	if !ok {
		t.Fatalf("evaluation should have populated the cache")
	}

	// Re-evaluating hits the cached tree (same pointer reused).
	prog, err2 := ip.parse(src)
	if err2 != nil {
		t.Fatalf("parse: %v", err2)
	}
	if prog != cached {
		t.Fatalf("expected the cached program to be reused")
	}
	wantNum(t, mustEvalPersistent(t, ip, src), 42)
}

func Test_Cache_InterpreterWithoutCache_StillWorks(t *testing.T) {
	ip := NewInterpreter()
	if ip.Programs != nil {
		t.Fatalf("caching should be opt-in")
	}
	wantNum(t, mustEvalPersistent(t, ip, "2 + 3"), 5)
}

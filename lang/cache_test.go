package lang

import (
	"sync"
	"testing"
)

func TestParseCache(t *testing.T) {
	ev := New(WithParseCache(true))

	first, err := ev.Parse(t.Context(), "1 + :a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	second, err := ev.Parse(t.Context(), "1 + :a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if first != second {
		t.Error("Parse() returned a new tree for cached source")
	}

	if _, err := ev.Parse(t.Context(), "1 +"); err == nil {
		t.Error("Parse() of invalid source succeeded")
	}

	if n := ev.cache.len(); n != 1 {
		t.Errorf("cache.len() = %d, want 1 (failures are not cached)", n)
	}
}

func TestParseCache_Collision(t *testing.T) {
	var c parseCache

	tree, err := parse("1")
	if err != nil {
		t.Fatal(err)
	}

	c.store(tree)

	// simulate a colliding entry by storing under another source's hash
	other, err := parse("2")
	if err != nil {
		t.Fatal(err)
	}

	other.Source = "1"
	c.store(other)
	other.Source = "2"

	if _, ok := c.load("1"); ok {
		t.Error("load() returned a tree whose source differs")
	}
}

func TestParseCache_Concurrent(t *testing.T) {
	ev := New(WithParseCache(true))
	env := Environment{"a": NumberFromInt(1)}

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			for range 100 {
				tree, err := ev.Parse(t.Context(), ":a * 2")
				if err != nil {
					t.Error(err)

					return
				}

				// evaluations only read env, so sharing it is safe here
				if _, err := ev.Eval(t.Context(), tree, env); err != nil {
					t.Error(err)

					return
				}
			}
		})
	}

	wg.Wait()
}

package lang

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// parseCache memoizes syntax trees by the xxh3 hash of their source text.
// Trees are immutable, so one tree may back any number of evaluations.
type parseCache struct {
	trees sync.Map // uint64 -> *Tree
}

func (c *parseCache) load(src string) (*Tree, bool) {
	v, ok := c.trees.Load(xxh3.HashString(src))
	if !ok {
		return nil, false
	}

	tree, _ := v.(*Tree)

	// Hash collisions fall through to a fresh parse.
	if tree == nil || tree.Source != src {
		return nil, false
	}

	return tree, true
}

func (c *parseCache) store(tree *Tree) {
	c.trees.Store(xxh3.HashString(tree.Source), tree)
}

// len reports the number of cached trees.
func (c *parseCache) len() int {
	n := 0

	c.trees.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

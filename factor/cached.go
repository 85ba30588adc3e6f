package factor

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ardnew/ecalc/lang"
)

// Cached returns a Source that remembers every successful lookup made
// through src. Failures, including not-found, are not remembered.
//
// The cache never expires, so it suits one session (a CLI run or a REPL)
// rather than a long-lived process.
func Cached(src Source) Source {
	return &cached{
		src:      src,
		gwp:      map[string]decimal.Decimal{},
		emission: map[string]decimal.Decimal{},
		values:   map[string]lang.Value{},
		formulas: map[string]string{},
	}
}

type cached struct {
	src Source

	mu       sync.Mutex
	gwp      map[string]decimal.Decimal
	emission map[string]decimal.Decimal
	values   map[string]lang.Value
	formulas map[string]string
}

func memo[V any](c *cached, m map[string]V, key string, fetch func() (V, error)) (V, error) {
	c.mu.Lock()
	v, ok := m[key]
	c.mu.Unlock()

	if ok {
		return v, nil
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	m[key] = v
	c.mu.Unlock()

	return v, nil
}

func (c *cached) GWP(ctx context.Context, key string) (decimal.Decimal, error) {
	return memo(c, c.gwp, key, func() (decimal.Decimal, error) { return c.src.GWP(ctx, key) })
}

func (c *cached) EmissionFactor(ctx context.Context, key string) (decimal.Decimal, error) {
	return memo(c, c.emission, key, func() (decimal.Decimal, error) {
		return c.src.EmissionFactor(ctx, key)
	})
}

func (c *cached) Value(ctx context.Context, key string) (lang.Value, error) {
	return memo(c, c.values, key, func() (lang.Value, error) { return c.src.Value(ctx, key) })
}

func (c *cached) Formula(ctx context.Context, key string) (string, error) {
	return memo(c, c.formulas, key, func() (string, error) { return c.src.Formula(ctx, key) })
}

package rediscounter

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Counter выдаёт монотонно растущие значения через атомарный Redis INCR.
// Никакого read-modify-write на стороне клиента: сериализацию конкурентных
// вызовов обеспечивает сам Redis.
type Counter struct {
	c *redis.Client
}

func New(addr string) *Counter {
	return &Counter{
		c: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

// Allocate performs a single INCR against the named counter key and returns
// the new value. A backend failure is always an error, never a zero value:
// the caller must be able to tell "allocated 0" from "allocated nothing".
func (c *Counter) Allocate(ctx context.Context, key string) (int64, error) {
	n, err := c.c.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis incr")
	}
	if n <= 0 {
		// INCR с дефолтного нуля всегда даёт >= 1; всё остальное значит,
		// что ключ кто-то испортил.
		return 0, errors.Errorf("counter %q returned non-positive value %d", key, n)
	}
	return n, nil
}

func (c *Counter) Close() error {
	return c.c.Close()
}

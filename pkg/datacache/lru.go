package datacache

import (
	"reflect"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

const defaultMaxEntries = 10000

// lru is a bounded ccache whose keys can be removed by prefix, so that a resource
// invalidates all of its entities at once.
type lru[T any] struct {
	ccache     *ccache.Cache[T]
	maxEntries int64
	closeOnce  *sync.Once
}

type lruOpt[T any] func(i *lru[T])

func withMaxEntries[T any](maxEntries int64) lruOpt[T] {
	return func(i *lru[T]) {
		i.maxEntries = maxEntries
	}
}

func newLRU[T any](opts ...lruOpt[T]) *lru[T] {
	t := &lru[T]{
		maxEntries: defaultMaxEntries,
		closeOnce:  &sync.Once{},
	}

	for _, opt := range opts {
		opt(t)
	}

	t.ccache = ccache.New(ccache.Configure[T]().MaxSize(t.maxEntries))
	return t
}

// Get returns the value stored under key, or the zero value if it is missing or expired.
func (i lru[T]) Get(key string) T {
	var zero T
	item := i.ccache.Get(key)
	if item == nil {
		return zero
	}

	if value, expired := item.Value(), item.Expired(); !reflect.ValueOf(&value).Elem().IsZero() && !expired {
		return value
	}

	return zero
}

func (i lru[T]) Set(key string, value T, ttl time.Duration) {
	i.ccache.Set(key, value, ttl)
}

// Delete reports whether key was present.
func (i lru[T]) Delete(key string) bool {
	return i.ccache.Delete(key)
}

// DeletePrefix removes every key starting with prefix and returns how many were removed.
func (i lru[T]) DeletePrefix(prefix string) int {
	return i.ccache.DeletePrefix(prefix)
}

func (i lru[T]) Clear() {
	i.ccache.Clear()
}

// Stop releases the background worker. The cache must not be used afterwards.
func (i lru[T]) Stop() {
	i.closeOnce.Do(func() {
		i.ccache.Stop()
	})
}

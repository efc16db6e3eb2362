// Package cache implements the explicit memoization map owned by the engine
// facades. Entries never expire; callers clear the cache after a ledger
// mutation. A Cache is not safe for concurrent use.
package cache

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/AlexyDarius/finarius/internal/metrics"
)

// Cache maps (operation, arguments) keys to computed results.
type Cache struct {
	facade  string
	entries map[string]any
}

// New creates an empty cache. facade labels the hit/miss counters.
func New(facade string) *Cache {
	return &Cache{facade: facade, entries: make(map[string]any)}
}

// Key builds a cache key from an operation name and its arguments.
// Dates render as YYYY-MM-DD and nil pointers as "none".
func Key(op string, args ...any) string {
	var b strings.Builder
	b.WriteString(op)
	for _, a := range args {
		b.WriteByte('_')
		b.WriteString(format(a))
	}
	return b.String()
}

func format(a any) string {
	switch v := a.(type) {
	case time.Time:
		return v.UTC().Format(time.DateOnly)
	case *time.Time:
		if v == nil {
			return "none"
		}
		return v.UTC().Format(time.DateOnly)
	case nil:
		return "none"
	default:
		return fmt.Sprint(v)
	}
}

// Get returns the entry for key and whether it was present.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	if ok {
		metrics.CacheRequestsTotal.WithLabelValues(c.facade, "hit").Inc()
	} else {
		metrics.CacheRequestsTotal.WithLabelValues(c.facade, "miss").Inc()
	}
	return v, ok
}

// Set stores value under key.
func (c *Cache) Set(key string, value any) {
	c.entries[key] = value
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Memo returns the cached value for key when useCache is set, otherwise (or
// on a miss) it computes, stores and returns a fresh value. Errors are never
// cached. A nil cache always computes. Maps, slices and pointers are copied
// on the way in and out, so callers may mutate what they get back.
func Memo[T any](c *Cache, useCache bool, key string, compute func() (T, error)) (T, error) {
	if useCache && c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return clone(typed), nil
			}
		}
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if useCache && c != nil {
		c.Set(key, clone(v))
	}
	return v, nil
}

func clone[T any](v T) T {
	return cloneValue(reflect.ValueOf(&v).Elem()).Interface().(T)
}

// cloneValue deep-copies maps, slices and pointers. Structs are copied by
// value; their reference-typed fields stay shared.
func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out
	default:
		return v
	}
}

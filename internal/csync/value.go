// Package csync provides small concurrency-safe containers.
package csync

import (
	"fmt"
	"reflect"
	"sync"
)

// Value holds a value behind a read/write mutex. Only value types are
// accepted so that callers cannot mutate the shared state through an alias.
type Value[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewValue returns a Value holding v. It panics when T is a pointer, slice
// or map.
func NewValue[T any](v T) *Value[T] {
	switch k := reflect.TypeOf(&v).Elem().Kind(); k {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		panic(fmt.Sprintf("csync: Value does not accept %s types", k))
	}
	return &Value[T]{v: v}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set replaces the current value.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = val
}

// Update replaces the current value with fn applied to it and returns the
// result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = fn(v.v)
	return v.v
}

package containers

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"golang.org/x/exp/constraints"
)

var (
	ErrEmptyKey     = errors.New("handle table: empty key")
	ErrDuplicateKey = errors.New("handle table: key already present")
	ErrNilItem      = errors.New("handle table: nil item")
)

// Clearable is anything a HandleTable can own. Clear releases whatever the
// item holds outside of Go memory (device objects, views).
type Clearable interface {
	Clear() error
}

type slot[T Clearable] struct {
	item T
	refs int
}

// HandleTable owns at most one item per key. The zero key is reserved as the
// "no resource" sentinel and is rejected everywhere.
type HandleTable[K constraints.Unsigned, T Clearable] struct {
	slots map[K]*slot[T]
}

func NewHandleTable[K constraints.Unsigned, T Clearable]() *HandleTable[K, T] {
	return &HandleTable[K, T]{
		slots: make(map[K]*slot[T]),
	}
}

// GetOrCreate returns the item stored under key, building it with factory
// when absent. A factory that errors or returns a nil item stores nothing, so
// a later call retries.
func (ht *HandleTable[K, T]) GetOrCreate(key K, factory func() (T, error)) (T, bool) {
	var zero T
	if key == 0 || factory == nil {
		return zero, false
	}
	if s, ok := ht.slots[key]; ok {
		return s.item, true
	}
	item, err := factory()
	if err != nil || isNil(item) {
		return zero, false
	}
	ht.slots[key] = &slot[T]{item: item}
	return item, true
}

// isNil reports whether item is a nil interface or a nil pointer-like value.
func isNil[T any](item T) bool {
	v := reflect.ValueOf(any(item))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Get is a lookup only.
func (ht *HandleTable[K, T]) Get(key K) (T, bool) {
	if s, ok := ht.slots[key]; ok {
		return s.item, true
	}
	var zero T
	return zero, false
}

// Insert stores item under key and fails if the key is taken.
func (ht *HandleTable[K, T]) Insert(key K, item T) error {
	if key == 0 {
		return ErrEmptyKey
	}
	if _, ok := ht.slots[key]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateKey, key)
	}
	if isNil(item) {
		return fmt.Errorf("%w: %d", ErrNilItem, key)
	}
	ht.slots[key] = &slot[T]{item: item}
	return nil
}

func (ht *HandleTable[K, T]) Has(key K) bool {
	_, ok := ht.slots[key]
	return ok
}

func (ht *HandleTable[K, T]) Len() int {
	return len(ht.slots)
}

// IDs returns the stored keys in ascending order.
func (ht *HandleTable[K, T]) IDs() []K {
	keys := make([]K, 0, len(ht.slots))
	for k := range ht.slots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Each visits every item in ascending key order.
func (ht *HandleTable[K, T]) Each(fn func(key K, item T)) {
	for _, k := range ht.IDs() {
		fn(k, ht.slots[k].item)
	}
}

// Retain records one more holder of key and returns the new count.
func (ht *HandleTable[K, T]) Retain(key K) int {
	s, ok := ht.slots[key]
	if !ok {
		return 0
	}
	s.refs++
	return s.refs
}

// Release drops one holder of key. Reaching zero does not destroy the item;
// only Clear does.
func (ht *HandleTable[K, T]) Release(key K) int {
	s, ok := ht.slots[key]
	if !ok {
		return 0
	}
	if s.refs > 0 {
		s.refs--
	}
	return s.refs
}

func (ht *HandleTable[K, T]) Refs(key K) int {
	if s, ok := ht.slots[key]; ok {
		return s.refs
	}
	return 0
}

// Clear tears down every item in key order and empties the table. The table
// is reusable afterwards even when some item failed to clear.
func (ht *HandleTable[K, T]) Clear() error {
	var errs []error
	for _, k := range ht.IDs() {
		if err := ht.slots[k].item.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("clear %d: %w", k, err))
		}
	}
	ht.slots = make(map[K]*slot[T])
	return errors.Join(errs...)
}

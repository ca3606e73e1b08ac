// Package memory implements the omap contract with plain in-memory maps.
//
// This is the reference backend: a map per locator with keys sorted at
// listing time. It is suitable wherever the store itself is ephemeral,
// which for an in-process object store is everywhere; the badger backend
// exists for workloads with large omaps where sorted scans dominate.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/radosmem/pkg/omap"
	"github.com/marmos91/radosmem/pkg/rados"
)

// object holds the omap state for one locator.
type object struct {
	data   map[string][]byte
	header []byte
}

// MemoryStore implements omap.Store with in-memory maps.
//
// Thread Safety:
// All operations are protected by a single read-write mutex. The engine
// holds its own per-object locks above this, so contention here is limited
// to cross-object concurrency.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[rados.Locator]*object
}

// NewMemoryStore creates an empty in-memory omap store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[rados.Locator]*object)}
}

var _ omap.Store = (*MemoryStore)(nil)

// get returns the object's state, or nil when the locator has none.
func (s *MemoryStore) get(loc rados.Locator) *object {
	return s.objects[loc]
}

// ensure returns the object's state, creating it when absent. Callers must
// hold the write lock.
func (s *MemoryStore) ensure(loc rados.Locator) *object {
	o := s.objects[loc]
	if o == nil {
		o = &object{data: make(map[string][]byte)}
		s.objects[loc] = o
	}
	return o
}

func (s *MemoryStore) List(loc rados.Locator, startAfter, prefix string, max uint64) ([]omap.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o := s.get(loc)
	if o == nil {
		return nil, false, nil
	}

	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		if k > startAfter {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var entries []omap.Entry
	i := 0
	for ; i < len(keys) && max > 0; i++ {
		if prefix == "" || strings.HasPrefix(keys[i], prefix) {
			entries = append(entries, omap.Entry{Key: keys[i], Value: cloneBytes(o.data[keys[i]])})
			max--
		}
	}
	return entries, i < len(keys), nil
}

func (s *MemoryStore) GetByKeys(loc rados.Locator, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte)
	o := s.get(loc)
	if o == nil {
		return out, nil
	}
	for _, k := range keys {
		if v, ok := o.data[k]; ok {
			out[k] = cloneBytes(v)
		}
	}
	return out, nil
}

func (s *MemoryStore) Set(loc rados.Locator, vals map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.ensure(loc)
	for k, v := range vals {
		o.data[k] = cloneBytes(v)
	}
	return nil
}

func (s *MemoryStore) RemoveKeys(loc rados.Locator, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.get(loc)
	if o == nil {
		return nil
	}
	for _, k := range keys {
		delete(o.data, k)
	}
	return nil
}

func (s *MemoryStore) RemoveRange(loc rados.Locator, begin, end string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.get(loc)
	if o == nil {
		return nil
	}
	for k := range o.data {
		if k >= begin && k < end {
			delete(o.data, k)
		}
	}
	return nil
}

func (s *MemoryStore) Clear(loc rados.Locator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o := s.get(loc); o != nil {
		o.data = make(map[string][]byte)
	}
	return nil
}

func (s *MemoryStore) Header(loc rados.Locator) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o := s.get(loc)
	if o == nil {
		return nil, nil
	}
	return cloneBytes(o.header), nil
}

func (s *MemoryStore) SetHeader(loc rados.Locator, header []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure(loc).header = cloneBytes(header)
	return nil
}

func (s *MemoryStore) Drop(loc rados.Locator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, loc)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

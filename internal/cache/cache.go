// Package cache memoizes provider responses under string keys with a TTL.
// Entries live in memory for the life of the process and, when a cache
// directory is configured, as JSON files that survive restarts.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Store is safe for concurrent use by the analyst stages.
type Store struct {
	dir     string
	enabled bool

	mu      sync.Mutex
	entries map[string]memEntry

	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

type memEntry struct {
	data     []byte
	storedAt time.Time
}

// New builds a Store rooted at dir. An empty dir keeps the cache purely in
// memory; enabled=false turns every lookup into a miss.
func New(dir string, enabled bool) *Store {
	return &Store{
		dir:     dir,
		enabled: enabled,
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// Key builds a stable cache key from a data source, a method name, and the
// call parameters. Params round-trip through JSON so equal calls collide.
func Key(source, method string, params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", params))
	}
	return fmt.Sprintf("%s/%s_%x", source, method, md5.Sum(raw))
}

// Fetch returns the cached value for key when younger than ttl, decoding it
// into result. On a miss it runs factory, stores the JSON encoding of its
// return value, and decodes that into result so both paths yield identical
// shapes.
func (s *Store) Fetch(ctx context.Context, key string, ttl time.Duration, result any, factory func(context.Context) (any, error)) error {
	if s.lookup(key, ttl, result) {
		s.hits.Add(1)
		return nil
	}
	s.misses.Add(1)

	v, err := factory(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	s.store(key, raw)
	return json.Unmarshal(raw, result)
}

// Hits reports how many Fetch calls were served from cache.
func (s *Store) Hits() int64 { return s.hits.Load() }

// Misses reports how many Fetch calls fell through to the factory.
func (s *Store) Misses() int64 { return s.misses.Load() }

// Clear drops every in-memory entry and removes the on-disk cache tree.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]memEntry)
	s.mu.Unlock()

	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clear cache dir: %w", err)
	}
	return os.MkdirAll(s.dir, 0755)
}

func (s *Store) lookup(key string, ttl time.Duration, result any) bool {
	if !s.enabled {
		return false
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && s.now().Sub(e.storedAt) >= ttl {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()
	if ok {
		return json.Unmarshal(e.data, result) == nil
	}

	if s.dir == "" {
		return false
	}
	path := s.filePath(key)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if s.now().Sub(info.ModTime()) >= ttl {
		os.Remove(path)
		return false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return false
	}
	// Promote the file hit so the next lookup skips the disk.
	s.mu.Lock()
	s.entries[key] = memEntry{data: raw, storedAt: info.ModTime()}
	s.mu.Unlock()
	return true
}

func (s *Store) store(key string, raw []byte) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	s.entries[key] = memEntry{data: raw, storedAt: s.now()}
	s.mu.Unlock()

	if s.dir == "" {
		return
	}
	path := s.filePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	// Best effort: a failed write only costs a future re-fetch.
	_ = os.WriteFile(path, raw, 0644)
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+".json")
}

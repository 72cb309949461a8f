// Package cache memoizes check results by content and options.
package cache

import (
	"crypto/sha256"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"prosecheck/internal/diag"
)

const DefaultEntries = 256

// Key identifies a check result: the SHA-256 of the text and the options.
type Key [32]byte

// KeyFor derives the key for text checked under options.
func KeyFor(text, options string) Key {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(options))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Store is an in-memory LRU in front of an optional DiskCache.
// Safe for concurrent use.
type Store struct {
	mem  *lru.Cache[Key, []diag.Diagnostic]
	disk *DiskCache
	log  *slog.Logger
}

// NewStore returns a store holding up to entries results in memory. disk may be nil.
func NewStore(entries int, disk *DiskCache, log *slog.Logger) (*Store, error) {
	if entries <= 0 {
		entries = DefaultEntries
	}
	mem, err := lru.New[Key, []diag.Diagnostic](entries)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{mem: mem, disk: disk, log: log}, nil
}

// Get returns a copy of the cached diagnostics for key.
func (s *Store) Get(key Key) ([]diag.Diagnostic, bool) {
	if s == nil {
		return nil, false
	}
	if v, ok := s.mem.Get(key); ok {
		return clone(v), true
	}
	var p Payload
	ok, err := s.disk.Get(key, &p)
	if err != nil {
		s.log.Warn("result cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	s.mem.Add(key, p.Diagnostics)
	return clone(p.Diagnostics), true
}

// Put stores diagnostics for key.
func (s *Store) Put(key Key, diags []diag.Diagnostic) {
	if s == nil {
		return
	}
	v := clone(diags)
	s.mem.Add(key, v)
	if err := s.disk.Put(key, &Payload{Diagnostics: v}); err != nil {
		s.log.Warn("result cache write failed", "err", err)
	}
}

// DropAll forgets every result, on disk too.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mem.Purge()
	return s.disk.DropAll()
}

// Len reports the number of in-memory entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.mem.Len()
}

func clone(in []diag.Diagnostic) []diag.Diagnostic {
	if in == nil {
		return nil
	}
	out := make([]diag.Diagnostic, len(in))
	for i, d := range in {
		d.Suggestions = append([]string(nil), d.Suggestions...)
		out[i] = d
	}
	return out
}

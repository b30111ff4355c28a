package cache

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Store checks memory first, then disk, promoting disk hits into memory.
type Store struct {
	memory *MemoryCache
	disk   *DiskCache
}

// Open creates a Store. The disk tier is skipped when DiskPath is empty or
// DiskCapacity is zero.
func Open(cfg Config) (*Store, error) {
	s := &Store{memory: NewMemoryCache(cfg.MemoryCapacity)}
	if cfg.DiskPath == "" || cfg.DiskCapacity <= 0 {
		return s, nil
	}

	disk, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}
	if cfg.MaxAge > 0 {
		if n := disk.Prune(cfg.MaxAge); n > 0 {
			log.Debug("Pruned expired cache entries", "count", n)
		}
	}
	s.disk = disk
	return s, nil
}

// Get returns the cached value and the tier that served it.
func (s *Store) Get(key string) ([]byte, Level, bool) {
	if v, ok := s.memory.Get(key); ok {
		return v, LevelMemory, true
	}
	if s.disk == nil {
		return nil, 0, false
	}
	v, ok := s.disk.Get(key)
	if !ok {
		return nil, 0, false
	}
	if err := s.memory.Put(key, v); err != nil && !errors.Is(err, ErrItemTooLarge) {
		log.Debug("Promoting cache entry", "err", err)
	}
	return v, LevelDisk, true
}

// Put writes value to every tier that can hold it. Only disk failures are
// reported.
func (s *Store) Put(key string, value []byte) error {
	_ = s.memory.Put(key, value)
	if s.disk == nil {
		return nil
	}
	return s.disk.Put(key, value)
}

// Invalidate drops key from memory, so the next Get reads disk.
func (s *Store) Invalidate(key string) {
	s.memory.Delete(key)
}

// Stats returns memory and disk counters. Disk stats are zero without a
// disk tier.
func (s *Store) Stats() (memory, disk Stats) {
	memory = s.memory.Stats()
	if s.disk != nil {
		disk = s.disk.Stats()
	}
	return memory, disk
}

// Close flushes the disk index.
func (s *Store) Close() error {
	if s.disk == nil {
		return nil
	}
	return s.disk.Close()
}

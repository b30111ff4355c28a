package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const indexFile = "cache.index"

// DiskCache keeps zstd compressed items in a directory, with a gob index
// recording sizes and access times for LRU eviction.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	index map[string]*diskEntry
	stats Stats
}

type diskEntry struct {
	File       string
	Size       int64
	Created    time.Time
	LastAccess time.Time
}

// NewDiskCache opens or creates a disk cache in dir.
func NewDiskCache(dir string, capacity int64, level int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		encoder:  enc,
		decoder:  dec,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}
	if err := dc.loadIndex(); err != nil {
		log.Warn("Discarding unreadable cache index", "dir", dir, "err", err)
		dc.index = make(map[string]*diskEntry)
	}
	for _, e := range dc.index {
		dc.size += e.Size
	}
	return dc, nil
}

// Get reads and decompresses the item for key.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(dc.dir, entry.File))
	if err == nil {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		log.Debug("Dropping unreadable cache entry", "file", entry.File, "err", err)
		dc.removeLocked(key)
		dc.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	dc.stats.Hits++
	return data, true
}

// Put compresses value and writes it to disk.
func (dc *DiskCache) Put(key string, value []byte) error {
	compressed := dc.encoder.EncodeAll(value, nil)
	n := int64(len(compressed))

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if n > dc.capacity {
		return ErrItemTooLarge
	}
	if _, ok := dc.index[key]; ok {
		dc.removeLocked(key)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	name := key + ".zst"
	if err := writeAtomic(filepath.Join(dc.dir, name), compressed); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	now := time.Now()
	dc.index[key] = &diskEntry{File: name, Size: n, Created: now, LastAccess: now}
	dc.size += n
	return nil
}

// Prune removes items created before now minus maxAge.
func (dc *DiskCache) Prune(maxAge time.Duration) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, e := range dc.index {
		if e.Created.Before(cutoff) {
			dc.removeLocked(key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.Items = len(dc.index)
	return s
}

// Close saves the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.decoder.Close()
	return errors.Join(dc.encoder.Close(), dc.saveIndex())
}

func (dc *DiskCache) evictOldest() {
	var oldest string
	var at time.Time
	for key, e := range dc.index {
		if oldest == "" || e.LastAccess.Before(at) {
			oldest, at = key, e.LastAccess
		}
	}
	if oldest != "" {
		dc.removeLocked(oldest)
		dc.stats.Evictions++
	}
}

func (dc *DiskCache) removeLocked(key string) {
	e := dc.index[key]
	_ = os.Remove(filepath.Join(dc.dir, e.File))
	dc.size -= e.Size
	delete(dc.index, key)
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// writeAtomic writes to a temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

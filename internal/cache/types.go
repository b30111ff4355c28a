package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when a stored item cannot be decoded.
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Level names the tier an item was served from.
type Level int

const (
	LevelMemory Level = iota
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds counters for one tier.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses).
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Config holds the sizes and location of a Store.
type Config struct {
	MemoryCapacity   int64         // bytes
	DiskCapacity     int64         // bytes, 0 disables the disk tier
	DiskPath         string        // directory for cache files
	CompressionLevel int           // zstd level, 1-22
	MaxAge           time.Duration // disk items older than this are pruned on open
}

// DefaultConfig returns the default cache sizes. DiskPath is left empty for
// the caller to fill in.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 << 20,
		DiskCapacity:     512 << 20,
		CompressionLevel: 3,
		MaxAge:           7 * 24 * time.Hour,
	}
}

// Key derives a cache key from the parts that determine synthesized audio.
func Key(engine, voice, text string) string {
	h := sha256.New()
	for _, part := range []string{engine, voice, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

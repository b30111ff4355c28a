package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}

	value := bytes.Repeat([]byte("speech "), 512)
	if err := dc.Put("k", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := dc.Get("k")
	if !ok || !bytes.Equal(got, value) {
		t.Fatal("round trip mismatch")
	}
	if s := dc.Stats(); s.Size >= int64(len(value)) {
		t.Errorf("expected compressed size below %d, got %d", len(value), s.Size)
	}
}

func TestDiskCache_Persists(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("k", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close() //nolint:errcheck

	got, ok := reopened.Get("k")
	if !ok || string(got) != "hello" {
		t.Errorf("Get after reopen = %q, %v", got, ok)
	}
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("k", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "k.zst"), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.Get("k"); ok {
		t.Error("expected corrupt entry to miss")
	}
	if s := dc.Stats(); s.Items != 0 {
		t.Errorf("corrupt entry should be dropped, %d items remain", s.Items)
	}
}

func TestDiskCache_Prune(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	_ = dc.Put("old", []byte("a"))
	dc.index["old"].Created = time.Now().Add(-48 * time.Hour)
	_ = dc.Put("new", []byte("b"))

	if n := dc.Prune(24 * time.Hour); n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	if _, ok := dc.Get("new"); !ok {
		t.Error("recent entry should survive pruning")
	}
}

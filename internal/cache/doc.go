// Package cache stores synthesized utterances so repeated text skips the
// engine. It pairs an in-memory LRU with a zstd compressed disk store.
package cache

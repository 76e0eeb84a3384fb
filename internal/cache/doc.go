// Package cache provides a generic in-memory cache with time-to-live expiry.
//
// Expired entries are never returned by [TTL.Get]. They are evicted by [TTL.Sweep], which a
// janitor goroutine started with [TTL.Start] runs on a fixed interval. When the cache is full the
// oldest entry is evicted to make room.
package cache

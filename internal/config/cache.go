package config

import "time"

// CacheConfig defines settings for the response cache in front of the
// public hotel listings.  Entries live in a small in-process cache and, when
// one is reachable, in Redis or Memcached shared by all instances.  TTL
// should stay short because room availability changes with every booking.
type CacheConfig struct {
	Enabled       bool
	Methods       map[string]bool
	TTL           time.Duration
	KeyStrategy   string // route, method_route, route_query, method_route_query
	Prefix        string
	MaxBodyBytes  int
	LocalMax      int           // entries kept in process; 0 disables the local tier
	LocalTTL      time.Duration // capped at TTL
	MemcachedAddr string        // shared tier when Redis is not available
}

// LoadCacheConfig reads CACHE_* variables.  Methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:       envBool("CACHE_ENABLED", true),
		Methods:       envSet("CACHE_METHODS", "GET"),
		TTL:           envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:   envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:        envStr("CACHE_PREFIX", "tb:cache"),
		MaxBodyBytes:  envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		LocalMax:      envInt("CACHE_LOCAL_MAX", 1000),
		LocalTTL:      envDur("CACHE_LOCAL_TTL", 5*time.Second),
		MemcachedAddr: envStr("MEMCACHED_ADDR", ""),
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.LocalTTL <= 0 || c.LocalTTL > c.TTL {
		c.LocalTTL = c.TTL
	}
	return c
}

package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
)

var errMiss = errors.New("cache miss")

// responseStore is one tier of the response cache.  Keys are already
// prefixed.
type responseStore interface {
	get(ctx context.Context, key string) ([]byte, error) // errMiss when absent
	set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	purge(ctx context.Context, prefix string) (int, error)
}

// localStore keeps entries in process.
type localStore struct {
	c   *ccache.Cache[[]byte]
	ttl time.Duration
}

func newLocalStore(max int, ttl time.Duration) *localStore {
	return &localStore{c: ccache.New(ccache.Configure[[]byte]().MaxSize(int64(max))), ttl: ttl}
}

func (s *localStore) get(_ context.Context, key string) ([]byte, error) {
	item := s.c.Get(key)
	if item == nil || item.Expired() {
		return nil, errMiss
	}
	return item.Value(), nil
}

func (s *localStore) set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl > s.ttl {
		ttl = s.ttl
	}
	s.c.Set(key, val, ttl)
	return nil
}

func (s *localStore) purge(_ context.Context, prefix string) (int, error) {
	return s.c.DeletePrefix(prefix + ":"), nil
}

type redisStore struct{ rdb *redis.Client }

func (s redisStore) get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errMiss
	}
	return b, err
}

func (s redisStore) set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, val, ttl).Err()
}

// purge scans in batches so it never blocks Redis with KEYS.
func (s redisStore) purge(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, prefix+":*", 200).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := s.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		if cursor = next; cursor == 0 {
			return removed, nil
		}
	}
}

// memcacheStore cannot enumerate keys, so every key embeds a generation
// number and purge bumps it.  Old entries age out on their TTL.
type memcacheStore struct{ mc *memcache.Client }

func (s memcacheStore) genKey(prefix string) string { return prefix + ":gen" }

func (s memcacheStore) generation(prefix string) (string, error) {
	it, err := s.mc.Get(s.genKey(prefix))
	if errors.Is(err, memcache.ErrCacheMiss) {
		err = s.mc.Add(&memcache.Item{Key: s.genKey(prefix), Value: []byte("0")})
		if err != nil && !errors.Is(err, memcache.ErrNotStored) {
			return "", err
		}
		return s.generation(prefix)
	}
	if err != nil {
		return "", err
	}
	return string(it.Value), nil
}

// versioned turns "<prefix>:<hash>" into "<prefix>:<gen>:<hash>".
func (s memcacheStore) versioned(key string) (string, error) {
	prefix, hash := splitKey(key)
	gen, err := s.generation(prefix)
	if err != nil {
		return "", err
	}
	return prefix + ":" + gen + ":" + hash, nil
}

func (s memcacheStore) get(_ context.Context, key string) ([]byte, error) {
	k, err := s.versioned(key)
	if err != nil {
		return nil, err
	}
	it, err := s.mc.Get(k)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, errMiss
	}
	if err != nil {
		return nil, err
	}
	return it.Value, nil
}

func (s memcacheStore) set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	k, err := s.versioned(key)
	if err != nil {
		return err
	}
	secs := int32(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return s.mc.Set(&memcache.Item{Key: k, Value: val, Expiration: secs})
}

func (s memcacheStore) purge(_ context.Context, prefix string) (int, error) {
	if _, err := s.mc.Increment(s.genKey(prefix), 1); err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			return 0, err
		}
		if err := s.mc.Set(&memcache.Item{Key: s.genKey(prefix), Value: []byte(strconv.Itoa(1))}); err != nil {
			return 0, err
		}
	}
	// the number of dropped entries is unknown
	return 0, nil
}

// splitKey cuts the hash off a "<prefix>:<hash>" key.
func splitKey(key string) (prefix, hash string) {
	i := strings.LastIndexByte(key, ':')
	return key[:max(i, 0)], key[i+1:]
}

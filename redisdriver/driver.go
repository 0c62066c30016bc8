// Package redisdriver implements webstore.Driver on top of go-redis.
package redisdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"code.byted.org/khicago/webstore"
)

// Driver stores webstore envelopes as Redis strings under Prefix+key.
// Clear and Keys only touch keys carrying the prefix; the database is
// never flushed.
type Driver struct {
	rdb       goredis.UniversalClient
	prefix    string
	scanCount int64
	owned     bool

	mu     sync.Mutex
	closed bool
}

// New connects to Redis using cfg.
func New(cfg Config) (*Driver, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}

	dialTimeout, _ := time.ParseDuration(cfg.DialTimeout)
	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.WriteTimeout)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	d := NewFromClient(rdb, cfg.Prefix)
	d.scanCount = cfg.ScanCount
	d.owned = true
	return d, nil
}

// NewFromClient wraps an existing client. Close does not close rdb.
func NewFromClient(rdb goredis.UniversalClient, prefix string) *Driver {
	return &Driver{rdb: rdb, prefix: prefix, scanCount: 100}
}

// Ping verifies the Redis connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := d.rdb.Get(ctx, d.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, webstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (d *Driver) Set(ctx context.Context, key string, value []byte) error {
	if err := d.rdb.Set(ctx, d.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (d *Driver) Delete(ctx context.Context, key string) error {
	if err := d.rdb.Del(ctx, d.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Keys returns every key under the prefix, with the prefix stripped.
// SCAN may yield a key more than once; each is reported once.
func (d *Driver) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})
	err := d.scan(ctx, func(batch []string) error {
		for _, k := range batch {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, strings.TrimPrefix(k, d.prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Clear deletes every key under the prefix.
func (d *Driver) Clear(ctx context.Context) error {
	return d.scan(ctx, func(batch []string) error {
		if len(batch) == 0 {
			return nil
		}
		if err := d.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
		return nil
	})
}

func (d *Driver) scan(ctx context.Context, fn func(batch []string) error) error {
	match := escapeGlob(d.prefix) + "*"
	var cursor uint64
	for {
		batch, next, err := d.rdb.Scan(ctx, cursor, match, d.scanCount).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if err := fn(batch); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the connection if New opened it. Safe to call multiple times.
func (d *Driver) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.owned {
		return nil
	}
	d.closed = true
	return d.rdb.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ webstore.Driver = (*Driver)(nil)

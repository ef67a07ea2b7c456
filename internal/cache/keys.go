package cache

import (
	"context"
	"fmt"
	"time"
)

// KeyType represents different categories of cached data.
type KeyType string

const (
	KeyTypeUpstream KeyType = "upstream"
	KeyTypeRoster   KeyType = "roster"
	KeyTypeRosterIx KeyType = "roster_idx"
)

// RosterKey builds the cache key for one roster version: the team's
// roster as it stood starting at valid_from (a unix timestamp).
// Format: {app}:{env}:{version}:roster:{team_id}:{valid_from}
func (c *Client) RosterKey(teamID string, validFrom int64) string {
	identifier := fmt.Sprintf("%s:%d", teamID, validFrom)
	return c.buildKey(string(KeyTypeRoster), identifier)
}

// RosterIndexKey builds the key of the Redis sorted set indexing every
// cached roster version for a team, score = valid_from. Querying it
// with ZREVRANGEBYSCORE bounded above by at_time finds the candidate
// version whose window might contain at_time in one round trip - the
// Redis-native equivalent of a BigEndian-keyed predecessor seek.
func (c *Client) RosterIndexKey(teamID string) string {
	return c.buildKey(string(KeyTypeRosterIx), teamID)
}

// UpstreamKey builds a cache key for a fetched feed page, keyed by the
// request that produced it so retries and concurrent workers share one
// cached response.
// Format: {app}:{env}:{version}:upstream:{method}:{host}:{hash}
func (c *Client) UpstreamKey(method, host, pathAndQuery string) string {
	hash := HashParams(map[string]string{"url": pathAndQuery})
	identifier := fmt.Sprintf("%s:%s:%s", method, host, hash)
	return c.buildKey(string(KeyTypeUpstream), identifier)
}

// ParsePattern extracts keys matching a glob pattern (e.g., "boxscore:prod:v1:roster:*")
// Returns matching keys for bulk operations. Use sparingly in production.
func (c *Client) ParsePattern(ctx context.Context, pattern string) ([]string, error) {
	if !c.config.Enabled || c.Redis == nil {
		return nil, nil
	}

	var keys []string
	iter := c.Redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}

	return keys, nil
}

// Stats returns cache statistics for a given key pattern.
type Stats struct {
	Keys  []string
	Count int
	TTLs  map[string]time.Duration // Key -> remaining TTL
}

// GetStats retrieves statistics for keys matching a pattern.
// Useful for cache inspection and debugging via CLI.
func (c *Client) GetStats(ctx context.Context, pattern string) (*Stats, error) {
	keys, err := c.ParsePattern(ctx, pattern)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Keys:  keys,
		Count: len(keys),
		TTLs:  make(map[string]time.Duration),
	}

	for _, key := range keys {
		ttl, err := c.Redis.TTL(ctx, key).Result()
		if err == nil {
			stats.TTLs[key] = ttl
		}
	}

	return stats, nil
}

// KeyPrefix returns the full prefix for a given key type and resource.
// Useful for building scan patterns.
func (c *Client) KeyPrefix(keyType KeyType, resource string) string {
	if resource == "" {
		return fmt.Sprintf("%s:%s:%s:%s", c.config.App, c.config.Env, c.config.Version, keyType)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", c.config.App, c.config.Env, c.config.Version, keyType, resource)
}

// InvalidateByPrefix deletes all keys matching a prefix pattern.
// Use with caution in production - prefer version bumping for bulk invalidation.
func (c *Client) InvalidateByPrefix(ctx context.Context, prefix string) (int, error) {
	if !c.config.Enabled || c.Redis == nil {
		return 0, nil
	}

	pattern := prefix + "*"
	keys, err := c.ParsePattern(ctx, pattern)
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := c.Redis.Del(ctx, keys...).Result()
	return int(deleted), err
}

package matching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// defaultCacheTTL bounds how stale a served match list can get.
const defaultCacheTTL = 5 * time.Minute

// Key identifies a cached match list: the seeker plus a canonical hash of
// the filter set. ForceRefresh is a read directive, not part of identity.
type Key struct {
	SeekerID   int64
	FilterHash string
}

// NewKey canonicalizes the filter set so equivalent requests share a
// cache entry regardless of how the caller spelled them.
func NewKey(seekerID int64, f FilterSet) Key {
	canonical := fmt.Sprintf("online=%t|new=%t|dist=%.1f|age=%d-%d|min=%t",
		f.OnlineOnly, f.NewUsersOnly, f.MaxDistanceKm, f.MinAge, f.MaxAge, f.ApplyMinScore)
	sum := sha256.Sum256([]byte(canonical))
	return Key{SeekerID: seekerID, FilterHash: hex.EncodeToString(sum[:8])}
}

func (k Key) String() string {
	return fmt.Sprintf("matches:%d:%s", k.SeekerID, k.FilterHash)
}

// Cache stores ordered match lists per key with a TTL. Implementations
// are best-effort: a miss or backend failure means recomputation, never
// an error surfaced to the caller.
type Cache interface {
	Get(ctx context.Context, key Key) ([]CandidateResult, bool)
	Set(ctx context.Context, key Key, results []CandidateResult)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key Key) ([]CandidateResult, bool) {
	payload, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("matching: cache get %s: %v", key, err)
		return nil, false
	}

	var results []CandidateResult
	if err := json.Unmarshal(payload, &results); err != nil {
		log.Printf("matching: cache decode %s: %v", key, err)
		return nil, false
	}
	return results, true
}

func (c *redisCache) Set(ctx context.Context, key Key, results []CandidateResult) {
	payload, err := json.Marshal(results)
	if err != nil {
		log.Printf("matching: cache encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key.String(), payload, c.ttl).Err(); err != nil {
		log.Printf("matching: cache set %s: %v", key, err)
	}
}

// noopCache keeps the engine functional when Redis is not configured;
// every lookup recomputes.
type noopCache struct{}

func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, Key) ([]CandidateResult, bool) { return nil, false }
func (noopCache) Set(context.Context, Key, []CandidateResult)        {}

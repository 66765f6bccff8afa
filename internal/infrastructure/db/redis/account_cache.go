package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	defaultViewTTL = 5 * time.Minute
	viewKeyPrefix  = "identity:view:"

	// removedMarker is never valid JSON, so it cannot collide with a view.
	removedMarker = "\x00removed"
)

// ViewCache caches account public views in Redis under
// identity:view:<username>. A removed username holds a marker for one TTL so
// that a fetch racing the removal cannot write the old view back.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ViewCache = (*ViewCache)(nil)

// NewViewCache wraps client. A non-positive ttl falls back to defaultViewTTL.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// Get returns the cached view. Misses and removal markers report ok=false.
func (c *ViewCache) Get(ctx context.Context, username string) (*domain.PublicView, bool, error) {
	raw, err := c.client.Get(ctx, viewKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("view cache get: %w", err)
	}
	if string(raw) == removedMarker {
		return nil, false, nil
	}

	var view domain.PublicView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false, fmt.Errorf("view cache decode: %w", err)
	}
	return &view, true, nil
}

// Add stores view with SET NX, so an existing view or removal marker wins.
func (c *ViewCache) Add(ctx context.Context, view domain.PublicView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("view cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, viewKey(view.Username), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("view cache add: %w", err)
	}
	return nil
}

// Tombstone overwrites any cached view for username with the removal marker.
func (c *ViewCache) Tombstone(ctx context.Context, username string) error {
	if err := c.client.Set(ctx, viewKey(username), removedMarker, c.ttl).Err(); err != nil {
		return fmt.Errorf("view cache tombstone: %w", err)
	}
	return nil
}

// Clear drops whatever is stored for username.
func (c *ViewCache) Clear(ctx context.Context, username string) error {
	if err := c.client.Del(ctx, viewKey(username)).Err(); err != nil {
		return fmt.Errorf("view cache clear: %w", err)
	}
	return nil
}

func (c *ViewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func viewKey(username string) string {
	return viewKeyPrefix + username
}

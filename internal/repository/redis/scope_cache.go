package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

const defaultScopePrefix = "logpf:scope"

// ScopeCacheRepository caches resolved access scopes so the permission table is
// not hit on every request. Misses return (nil, nil).
type ScopeCacheRepository struct {
	client *red.Client
	prefix string
}

// NewScopeCacheRepository constructs a scope cache helper.
func NewScopeCacheRepository(client *red.Client, keyPrefix string) *ScopeCacheRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultScopePrefix
	}

	return &ScopeCacheRepository{client: client, prefix: prefix}
}

type cachedScope struct {
	IsAdmin        bool    `json:"is_admin"`
	ApplicationIDs []int64 `json:"application_ids"`
}

// Get fetches a cached scope, returning nil on a miss.
func (r *ScopeCacheRepository) Get(ctx context.Context, userID int64) (*domain.AccessScope, error) {
	value, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get scope: %w", err)
	}

	var cached cachedScope
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		return nil, fmt.Errorf("decode cached scope: %w", err)
	}

	if cached.IsAdmin {
		scope := domain.AdminScope()
		return &scope, nil
	}
	scope := domain.UserScope(cached.ApplicationIDs)
	return &scope, nil
}

// Set stores the scope with the provided TTL.
func (r *ScopeCacheRepository) Set(ctx context.Context, userID int64, scope domain.AccessScope, ttl time.Duration) error {
	payload, err := json.Marshal(cachedScope{
		IsAdmin:        scope.IsAdmin,
		ApplicationIDs: scope.AllowedIDs(),
	})
	if err != nil {
		return fmt.Errorf("encode scope: %w", err)
	}

	if err := r.client.Set(ctx, r.key(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set scope: %w", err)
	}

	return nil
}

// Invalidate drops cached scopes for the given users.
func (r *ScopeCacheRepository) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = r.key(id)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete scopes: %w", err)
	}

	return nil
}

func (r *ScopeCacheRepository) key(userID int64) string {
	return fmt.Sprintf("%s:%d", r.prefix, userID)
}

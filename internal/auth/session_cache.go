package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/models"
)

const sessionCacheKeyPrefix = "auth:admin_session:"

var errSessionCacheMiss = errors.New("session cache miss")

// SessionCache keeps validated sessions close to the request path so every
// admin request does not hit the sessions table.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*models.AdminSession, error)
	Set(ctx context.Context, session *models.AdminSession, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// NewStoreSessionCache wraps a cache Store. A nil store yields a nil cache.
func NewStoreSessionCache(store cache.Store) SessionCache {
	if store == nil {
		return nil
	}
	return &sessionStoreCache{store: store}
}

type sessionStoreCache struct {
	store cache.Store
}

func (c *sessionStoreCache) Get(ctx context.Context, sessionID string) (*models.AdminSession, error) {
	key := sessionCacheKey(sessionID)
	if key == "" {
		return nil, errSessionCacheMiss
	}

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionCacheMiss
	}

	var session models.AdminSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("session cache: decode: %w", err)
	}
	return &session, nil
}

func (c *sessionStoreCache) Set(ctx context.Context, session *models.AdminSession, ttl time.Duration) error {
	if session == nil {
		return errors.New("session cache: session is nil")
	}
	key := sessionCacheKey(session.ID)
	if key == "" {
		return errors.New("session cache: session id missing")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session cache: marshal: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	return c.store.Set(ctx, key, payload, ttl)
}

func (c *sessionStoreCache) Delete(ctx context.Context, sessionID string) error {
	key := sessionCacheKey(sessionID)
	if key == "" {
		return nil
	}
	return c.store.Delete(ctx, key)
}

func sessionCacheKey(sessionID string) string {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ""
	}
	return sessionCacheKeyPrefix + id
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"atelier/atelier/sources/psql/models"
	"atelier/atelier/utils/logging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "session:"
	defaultTTL       = 5 * time.Minute
)

// SessionCache is a read-through cache in front of the session store.
// Postgres stays authoritative: a miss or a Redis error just means the
// caller goes to the database.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(addr string, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get returns (nil, nil) on a miss. Errors are logged and reported as
// misses so Redis trouble never surfaces to the request path.
func (c *SessionCache) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	val, err := c.client.Get(ctx, c.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		logging.ErrorLogger.Error("session cache get failed", zap.String("session_id", id.String()), zap.Error(err))
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		logging.ErrorLogger.Error("session cache decode failed", zap.String("session_id", id.String()), zap.Error(err))
		return nil, nil
	}
	return &session, nil
}

// Set stores the session blob with a sliding TTL. Best effort only.
func (c *SessionCache) Set(ctx context.Context, session *models.Session) {
	val, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(session.ID), val, c.ttl).Err(); err != nil {
		logging.ErrorLogger.Error("session cache set failed", zap.String("session_id", session.ID.String()), zap.Error(err))
	}
}

func (c *SessionCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		logging.ErrorLogger.Error("session cache invalidate failed", zap.String("session_id", id.String()), zap.Error(err))
	}
}

func (c *SessionCache) Close() error {
	return c.client.Close()
}

func (c *SessionCache) key(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

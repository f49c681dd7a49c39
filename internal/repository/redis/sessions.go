package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	redisx "github.com/showtix/showtix-go/internal/redis"
)

// SessionStore keeps live session IDs with the owning user. A session
// token is only honored while its ID is present here, so deleting the
// key revokes the session immediately.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) SaveSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	return s.rdb.Set(ctx, redisx.KeySession(sessionID), strconv.FormatInt(userID, 10), ttl).Err()
}

func (s *SessionStore) SessionUser(ctx context.Context, sessionID string) (int64, bool, error) {
	v, err := s.rdb.Get(ctx, redisx.KeySession(sessionID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, err
	}

	return userID, true, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, redisx.KeySession(sessionID)).Err()
}

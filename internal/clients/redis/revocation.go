package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

const (
	revokedKeyPrefix = "token:"
	revokedValue     = "blocked"
)

// RevocationStore is the logout denylist. Entries expire with the token they
// block, so the set never grows past the live token population.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type revocationStore struct {
	log *logger.Logger
	rdb goredis.Cmdable
	now func() time.Time
}

func NewRevocationStore(log *logger.Logger, rdb goredis.Cmdable) RevocationStore {
	return &revocationStore{
		log: log.With("service", "RevocationStore"),
		rdb: rdb,
		now: time.Now,
	}
}

func RevokedKey(token string) string {
	return revokedKeyPrefix + token
}

func (s *revocationStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if !expiresAt.After(s.now()) {
		// already expired; natural expiry rejects it
		return nil
	}
	key := RevokedKey(token)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, revokedValue, 0)
	pipe.ExpireAt(ctx, key, expiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Debug("Token revoked", "expires_at", expiresAt.UTC().Format(time.RFC3339))
	return nil
}

func (s *revocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, RevokedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revocationKeyPrefix = "auth:revoked:"

// RevocationStore records revoked token ids in Redis until their natural
// expiry, backing logout for otherwise stateless JWTs.
type RevocationStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRevocationStore builds the store. A nil client disables revocation.
func NewRevocationStore(client *redis.Client, logger *zap.Logger) *RevocationStore {
	return &RevocationStore{client: client, logger: logger}
}

// Revoke marks a token id revoked until expiresAt.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s == nil || s.client == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revocationKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked. Redis outages
// fail open with a warning; the token still carries a valid signature.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) bool {
	if s == nil || s.client == nil || tokenID == "" {
		return false
	}
	n, err := s.client.Exists(ctx, revocationKeyPrefix+tokenID).Result()
	if err != nil {
		s.logger.Warn("revocation check failed", zap.Error(err))
		return false
	}
	return n > 0
}

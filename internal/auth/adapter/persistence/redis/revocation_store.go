package redis

import (
	"context"
	"errors"
	"time"

	"codbank/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

var ErrEmptyTokenID = errors.New("token id cannot be empty")

// RevocationStore keeps logged-out token IDs in Redis until the token would have
// expired on its own.
type RevocationStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
	logger logger.Logger
}

// NewRevocationStore creates a Redis-backed revocation store
func NewRevocationStore(client redis.UniversalClient, prefix string, log logger.Logger) *RevocationStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RevocationStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
		logger: log.WithComponent("revocation_store"),
	}
}

// Revoke marks tokenID revoked until the given instant. Already expired tokens are skipped.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return ErrEmptyTokenID
	}

	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	// Round up so the key never disappears before the token does.
	ttl = ttl.Truncate(time.Second) + time.Second

	if err := s.client.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"token_id": tokenID,
		"ttl":      ttl.String(),
	}).Debug("Session token revoked")
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, ErrEmptyTokenID
	}

	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RevocationStore) key(tokenID string) string {
	return s.prefix + tokenID
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const deniedTokenKeyPrefix = "denied-token::"

// TokenDenylist holds tokens revoked by logout until they would have
// expired on their own. Backed by redis so revocation survives restarts
// and is shared across instances.
type TokenDenylist struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewTokenDenylist(ttl time.Duration, redisClient *redis.Client) *TokenDenylist {
	return &TokenDenylist{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (d *TokenDenylist) Deny(ctx context.Context, token string) error {
	return d.redisClient.Set(
		ctx,
		deniedTokenKeyPrefix+token,
		time.Now().Unix(),
		d.ttl,
	).Err()
}

func (d *TokenDenylist) IsDenied(ctx context.Context, token string) (bool, error) {
	cmd := d.redisClient.Get(ctx, deniedTokenKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

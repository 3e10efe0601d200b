package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisBlacklist struct {
	client *redis.Client
}

// NewRedisBlacklist consults the revocation keys written by the credential
// service (blacklist:<token> = "true").
func NewRedisBlacklist(client *redis.Client) Blacklist {
	return &redisBlacklist{client: client}
}

func (b *redisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	val, err := b.client.Get(ctx, "blacklist:"+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blacklist lookup failed: %w", err)
	}
	return val == "true", nil
}

package whitelist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const setKey = "whitelist:operators"

// RedisStore keeps the whitelist in a redis set so it survives restarts
// and is shared by any future second instance of the command surface.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Add(ctx context.Context, operatorID string) error {
	if operatorID == "" {
		return fmt.Errorf("whitelist: missing operator id")
	}

	added, err := r.client.SAdd(ctx, setKey, operatorID).Result()
	if err != nil {
		return err
	}
	if added == 0 {
		return ErrAlreadyListed
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, operatorID string) error {
	removed, err := r.client.SRem(ctx, setKey, operatorID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotListed
	}
	return nil
}

func (r *RedisStore) Contains(ctx context.Context, operatorID string) (bool, error) {
	return r.client.SIsMember(ctx, setKey, operatorID).Result()
}

func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	return ids, nil
}

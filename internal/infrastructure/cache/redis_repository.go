// Package cache implements the PriceCache port on Redis. The cache holds
// only the freshest sample per pair; it is written best-effort each cycle
// and read by the HTTP surface and the health check tool, never by the
// decision logic.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
)

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(addr, password string, db int) *RedisRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisRepository{client: client}
}

var _ repository.PriceCache = (*RedisRepository)(nil)

func priceKey(tokenIn, tokenOut string) string {
	return fmt.Sprintf("price:%s:%s", tokenIn, tokenOut)
}

func (r *RedisRepository) SaveLatestPrice(ctx context.Context, price model.PricePoint) error {
	data, err := json.Marshal(price)
	if err != nil {
		return fmt.Errorf("failed to marshal price: %w", err)
	}
	return r.client.Set(ctx, priceKey(price.TokenIn, price.TokenOut), data, 0).Err()
}

func (r *RedisRepository) GetLatestPrice(ctx context.Context, tokenIn, tokenOut string) (*model.PricePoint, error) {
	data, err := r.client.Get(ctx, priceKey(tokenIn, tokenOut)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // no sample recorded yet
		}
		return nil, err
	}

	var price model.PricePoint
	if err := json.Unmarshal([]byte(data), &price); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price: %w", err)
	}
	return &price, nil
}

func (r *RedisRepository) GetAllLatestPrices(ctx context.Context) ([]model.PricePoint, error) {
	keys, err := r.client.Keys(ctx, "price:*").Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []model.PricePoint{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, err
	}

	result := make([]model.PricePoint, 0, len(keys))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue // key expired or failed mid-pipeline
		}
		var price model.PricePoint
		if err := json.Unmarshal([]byte(data), &price); err != nil {
			continue
		}
		result = append(result, price)
	}
	return result, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/rajsanitation/orio-rewards/internal/config"
	"github.com/rajsanitation/orio-rewards/internal/domain"
)

const (
	rosterKey = "dealer:roster"
	rosterTTL = 5 * time.Minute
)

var ErrCacheMiss = errors.New("cache miss")

// RosterCache holds the dealer's plumber roster in redis. It is a read
// accelerator for the dashboard and the transfer search; every
// balance-affecting write invalidates it.
type RosterCache struct {
	client *redis.Client
}

func NewRosterCache(conf *config.RedisConfig) *RosterCache {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	return &RosterCache{
		client: client,
	}
}

func (c *RosterCache) GetRoster(ctx context.Context) ([]domain.Plumber, error) {
	val, err := c.client.Get(ctx, rosterKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var plumbers []domain.Plumber
	if err = json.Unmarshal([]byte(val), &plumbers); err != nil {
		return nil, err
	}

	return plumbers, nil
}

func (c *RosterCache) SetRoster(ctx context.Context, plumbers []domain.Plumber) error {
	val, err := json.Marshal(plumbers)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, rosterKey, val, rosterTTL).Err()
}

func (c *RosterCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rosterKey).Err()
}

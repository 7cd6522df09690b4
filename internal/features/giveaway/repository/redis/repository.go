package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"plug-market-bot/internal/features/giveaway/models"
	"plug-market-bot/internal/features/giveaway/repository"
)

const (
	keyPrefixGiveaway = "giveaway:"
	keyGiveawayIndex  = "giveaways:all"
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisGiveawayRepository(client *redis.Client) repository.GiveawayRepository {
	return &redisRepository{client: client}
}

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func (r *redisRepository) Save(ctx context.Context, g *models.Giveaway) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeGiveawayKey(g.ID), data, 0)
	pipe.SAdd(ctx, keyGiveawayIndex, g.ID)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	data, err := r.client.Get(ctx, makeGiveawayKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, err
	}

	var giveaway models.Giveaway
	if err := json.Unmarshal(data, &giveaway); err != nil {
		return nil, err
	}

	return &giveaway, nil
}

func (r *redisRepository) All(ctx context.Context) ([]*models.Giveaway, error) {
	ids, err := r.client.SMembers(ctx, keyGiveawayIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway ids: %w", err)
	}

	giveaways := make([]*models.Giveaway, 0, len(ids))
	for _, id := range ids {
		giveaway, err := r.GetByID(ctx, id)
		if err != nil {
			if err == repository.ErrGiveawayNotFound {
				// Stale index entry, drop it.
				r.client.SRem(ctx, keyGiveawayIndex, id)
				continue
			}
			return nil, fmt.Errorf("failed to get giveaway %s: %w", id, err)
		}
		giveaways = append(giveaways, giveaway)
	}

	return giveaways, nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	exists, err := r.client.Exists(ctx, makeGiveawayKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return repository.ErrGiveawayNotFound
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, makeGiveawayKey(id))
	pipe.SRem(ctx, keyGiveawayIndex, id)

	_, err = pipe.Exec(ctx)
	return err
}

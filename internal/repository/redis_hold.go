package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// retentionGrace keeps a hold record readable past its logical expiry so
// the sweep can still resolve the seats it must release. Records are only
// removed by commit, release, or the sweep; the Redis TTL is a backstop.
const retentionGrace = time.Hour

// RedisHoldRepository stores hold leases as JSON values with a TTL, plus a
// sorted set indexed by expiry that the sweep scans.
type RedisHoldRepository struct {
	client redis.UniversalClient
}

func NewRedisHoldRepository(client redis.UniversalClient) *RedisHoldRepository {
	return &RedisHoldRepository{
		client: client,
	}
}

func holdKey(token string) string {
	return fmt.Sprintf("hold:%s", token)
}

const holdExpiryIndexKey = "holds_by_expiry"

func (r *RedisHoldRepository) Create(ctx context.Context, hold *domain.Hold) error {
	holdBytes, err := json.Marshal(hold)
	if err != nil {
		return err
	}

	ttl := time.Until(hold.ExpiresAt) + retentionGrace

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, holdKey(hold.Token), holdBytes, ttl)
	pipe.ZAdd(ctx, holdExpiryIndexKey, redis.Z{
		Score:  float64(hold.ExpiresAt.Unix()),
		Member: hold.Token,
	})

	_, err = pipe.Exec(ctx)

	return err
}

func (r *RedisHoldRepository) GetByToken(ctx context.Context, token string) (*domain.Hold, error) {
	holdBytes, err := r.client.Get(ctx, holdKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrHoldNotFound
		}

		return nil, err
	}

	var hold domain.Hold
	err = json.Unmarshal(holdBytes, &hold)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal hold %s: %w", token, err)
	}

	return &hold, nil
}

func (r *RedisHoldRepository) UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	hold, err := r.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	hold.ExpiresAt = expiresAt

	holdBytes, err := json.Marshal(hold)
	if err != nil {
		return err
	}

	ttl := time.Until(expiresAt) + retentionGrace

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, holdKey(token), holdBytes, ttl)
	pipe.ZAdd(ctx, holdExpiryIndexKey, redis.Z{
		Score:  float64(expiresAt.Unix()),
		Member: token,
	})

	_, err = pipe.Exec(ctx)

	return err
}

// MarkPaymentPending drops the hold from the expiry index so the sweep
// never reclaims it while the charge outcome is unknown. The record keeps
// a TTL backstop sized to the resolution window.
func (r *RedisHoldRepository) MarkPaymentPending(ctx context.Context, token string, expiresAt time.Time) error {
	hold, err := r.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	hold.PaymentPending = true
	hold.ExpiresAt = expiresAt

	holdBytes, err := json.Marshal(hold)
	if err != nil {
		return err
	}

	ttl := time.Until(expiresAt) + retentionGrace

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, holdKey(token), holdBytes, ttl)
	pipe.ZRem(ctx, holdExpiryIndexKey, token)

	_, err = pipe.Exec(ctx)

	return err
}

func (r *RedisHoldRepository) Delete(ctx context.Context, token string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, holdKey(token))
	pipe.ZRem(ctx, holdExpiryIndexKey, token)

	_, err := pipe.Exec(ctx)

	return err
}

func (r *RedisHoldRepository) ExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Hold, error) {
	tokens, err := r.client.ZRangeByScore(ctx, holdExpiryIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", cutoff.Unix()),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	holds := make([]*domain.Hold, 0, len(tokens))

	for _, token := range tokens {
		hold, err := r.GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, domain.ErrHoldNotFound) {
				// Record evicted by the TTL backstop; drop the
				// dangling index entry.
				r.client.ZRem(ctx, holdExpiryIndexKey, token)
				continue
			}

			return nil, err
		}

		holds = append(holds, hold)
	}

	return holds, nil
}

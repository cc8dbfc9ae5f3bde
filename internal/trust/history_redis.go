package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHistory backs player history with a shared Redis list so multiple
// processes see the same movement trail. Same bounded-FIFO semantics as
// MemoryHistory; keys expire after the TTL so abandoned players age out.
type RedisHistory struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistory(client *redis.Client, ttl time.Duration) *RedisHistory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisHistory{client: client, ttl: ttl}
}

func historyKey(playerID string) string {
	return "geohunt:history:" + playerID
}

func (h *RedisHistory) Append(ctx context.Context, playerID string, sample LocationSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("encoding sample: %w", err)
	}

	key := historyKey(playerID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -historyCap, -1)
	pipe.Expire(ctx, key, h.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending history for %s: %w", playerID, err)
	}
	return nil
}

func (h *RedisHistory) Recent(ctx context.Context, playerID string, n int) ([]LocationSample, error) {
	vals, err := h.client.LRange(ctx, historyKey(playerID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", playerID, err)
	}

	samples := make([]LocationSample, 0, len(vals))
	for _, v := range vals {
		var s LocationSample
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return nil, fmt.Errorf("decoding history entry: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	ChannelStatsKeyPrefix = "channel:%d:stats"
)

const (
	UserTTL         = 5 * time.Minute
	ChannelStatsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ChannelStatsKey(userID uint) string {
	return fmt.Sprintf(ChannelStatsKeyPrefix, userID)
}

// Aside tries Redis first; on a miss it calls fetch, which must fill dest, and
// stores the result with ttl. Redis failures fall through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client != nil {
		if raw, err := client.Get(ctx, key).Bytes(); err == nil && json.Unmarshal(raw, dest) == nil {
			return nil
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if client != nil {
		if b, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, b, ttl)
		}
	}
	return nil
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateChannelStats(ctx context.Context, userID uint) {
	Invalidate(ctx, ChannelStatsKey(userID))
}

package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// UsageReserver atomically claims one quota slot for a caller, or reports that
// the window is exhausted.
type UsageReserver interface {
	Reserve(ctx context.Context, userID string, policy Policy, now time.Time) (allowed bool, used int64, err error)
}

// Compare-and-increment in one round trip, the same shape as the gateway's
// token-bucket limiter. The key expires with its quota period.
const reserveLuaScript = `
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if used >= limit then
    return {0, used}
end
used = redis.call('INCR', KEYS[1])
if used == 1 then
    redis.call('EXPIREAT', KEYS[1], tonumber(ARGV[2]))
end
return {1, used}
`

type RedisReserver struct {
	client *redis.Client
}

func NewRedisReserver(client *redis.Client) *RedisReserver {
	return &RedisReserver{client: client}
}

func (r *RedisReserver) Reserve(ctx context.Context, userID string, policy Policy, now time.Time) (bool, int64, error) {
	key := fmt.Sprintf("quota:%s:%s", userID, policy.PeriodKey(now))
	_, periodEnd := policy.PeriodBounds(now)

	result, err := r.client.Eval(ctx, reserveLuaScript, []string{key}, policy.Limit, periodEnd.Unix()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("quota reserve: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return false, 0, fmt.Errorf("quota reserve: unexpected reply %v", result)
	}
	allowed, _ := arr[0].(int64)
	used, _ := arr[1].(int64)
	return allowed == 1, used, nil
}

// RecountReserver is the degraded path when Redis is down: it recounts
// user-role messages straight from the store. Check and increment are not
// atomic here — the message row written later is the increment — so it only
// backs up the Redis reserver, it does not replace it.
type RecountReserver struct {
	messages domain.MessageRepository
}

func NewRecountReserver(messages domain.MessageRepository) *RecountReserver {
	return &RecountReserver{messages: messages}
}

func (r *RecountReserver) Reserve(ctx context.Context, userID string, policy Policy, now time.Time) (bool, int64, error) {
	from, to := policy.PeriodBounds(now)
	used, err := r.messages.CountUserMessagesBetween(ctx, userID, from, to)
	if err != nil {
		return false, 0, fmt.Errorf("quota recount: %w", err)
	}
	return policy.Allows(used), used, nil
}

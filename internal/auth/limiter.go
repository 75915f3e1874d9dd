package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptKeyPrefix = "login_attempts:"

// LoginLimiter はIP単位のログイン失敗回数をRedisに記録し、
// 一定回数を超えた試行をウィンドウ満了まで拒否します。
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter は LoginLimiter を作成します。
func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		rdb:         rdb,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow は追加の試行が許可されるかを返します。
func (l *LoginLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	count, err := l.rdb.Get(ctx, loginAttemptKey(ip)).Int64()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, err
	}
	return count < int64(l.maxAttempts), nil
}

// RecordFailure は失敗を1回分カウントします。
// 最初の失敗でウィンドウ満了のTTLを設定します。
func (l *LoginLimiter) RecordFailure(ctx context.Context, ip string) error {
	key := loginAttemptKey(ip)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.rdb.Expire(ctx, key, l.window).Err()
	}
	return nil
}

// Reset はログイン成功時に失敗カウンターを破棄します。
func (l *LoginLimiter) Reset(ctx context.Context, ip string) error {
	return l.rdb.Del(ctx, loginAttemptKey(ip)).Err()
}

func loginAttemptKey(ip string) string {
	return loginAttemptKeyPrefix + ip
}

// Package cache 封装登录会话相关的键值缓存访问。
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 会话缓存的键格式。登录服务和认证中间件共用同一组构造函数，
// 保证写入方和读取方的键永远一致。
const (
	captchaKeyFmt         = "admin:captcha:img:%s"
	tokenKeyFmt           = "admin:token:%d"
	permsKeyFmt           = "admin:perms:%d"
	passwordVersionKeyFmt = "admin:passwordVersion:%d"
)

// CaptchaKey 返回验证码明文的缓存键。
func CaptchaKey(id string) string {
	return fmt.Sprintf(captchaKeyFmt, id)
}

// TokenKey 返回用户访问令牌的缓存键。
func TokenKey(uid uint) string {
	return fmt.Sprintf(tokenKeyFmt, uid)
}

// PermsKey 返回用户权限快照的缓存键。
func PermsKey(uid uint) string {
	return fmt.Sprintf(permsKeyFmt, uid)
}

// PasswordVersionKey 返回用户密码版本号的缓存键。
func PasswordVersionKey(uid uint) string {
	return fmt.Sprintf(passwordVersionKeyFmt, uid)
}

// SessionCache 是会话缓存的最小契约：按键读写字符串，可选过期时间。
// Get 在键不存在时返回空串而不是错误，调用方据此区分“未命中”和“访问失败”。
type SessionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// redisSessionCache 是 SessionCache 的 Redis 实现。
type redisSessionCache struct {
	rdb *redis.Client
}

// NewRedisSessionCache 基于已建立的 Redis 连接创建 SessionCache。
func NewRedisSessionCache(rdb *redis.Client) SessionCache {
	return &redisSessionCache{rdb: rdb}
}

func (c *redisSessionCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (c *redisSessionCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	// ttl 为 0 表示不设置过期时间
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisSessionCache) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

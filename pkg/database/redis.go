package database

import (
	"context"

	"sys_admin_go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// InitRedis 建立 Redis 连接并做一次 Ping 探活。
// 返回 client 交由调用方注入到需要缓存的组件，避免业务层依赖包级单例。
func InitRedis(addr, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
	return rdb
}

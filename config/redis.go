package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisClient connects to redis when enabled. It returns nil when redis is
// disabled or unreachable; callers treat a nil client as cache-off.
func NewRedisClient(config RedisConfig) *redis.Client {
	if !config.Enabled {
		log.Println("Redis disabled, running without cache and events")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Printf("Failed to connect to Redis, continuing without cache: %v", err)
		return nil
	}
	log.Printf("Redis connected: %s", pong)

	return rdb
}

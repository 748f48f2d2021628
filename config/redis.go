package config

import (
	"log"
	"os"

	"qraccess/services/redis"
)

// Connect_redis connects to the Redis instance named by REDIS_URL. The
// resulting client backs the short-lived QR verification cache.
func Connect_redis() (*redis.RedisClient, error) {
	redisUri := os.Getenv("REDIS_URL")
	if redisUri == "" {
		redisUri = "localhost:6379"
	}
	redisClient, err := redis.InitRedis(redisUri, 0)
	if err != nil {
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}

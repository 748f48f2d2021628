package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	redis_utils "qraccess/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// VerificationTTL bounds how long a cached verification result may be served.
// Deactivating a user stops verification within this window even if the
// eager invalidation on the write path is missed.
const VerificationTTL = 5 * time.Second

// RedisClient handles Redis operations
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// SaveVerification caches the serialized verification response for a QR id.
// Key format: "qr:verify:{qrID}", TTL: VerificationTTL
func (rc *RedisClient) SaveVerification(qrID string, payload []byte) error {
	key := redis_utils.FormatVerificationKey(qrID)
	return rc.Client.Set(rc.Ctx, key, payload, VerificationTTL).Err()
}

// GetVerification retrieves a cached verification response for a QR id.
// Returns redis.Nil inside the error when the key is absent or expired.
func (rc *RedisClient) GetVerification(qrID string) ([]byte, error) {
	key := redis_utils.FormatVerificationKey(qrID)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting cached verification: %w", err)
	}
	return data, nil
}

// DeleteVerification eagerly invalidates the cached verification response
// for a QR id. Called when the owning user is deactivated or deleted.
func (rc *RedisClient) DeleteVerification(qrID string) error {
	key := redis_utils.FormatVerificationKey(qrID)
	if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate verification key %s: %v", key, err)
	}
	return nil
}

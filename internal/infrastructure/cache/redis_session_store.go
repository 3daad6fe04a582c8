package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const DefaultKeyPrefix = "cropsmart:session:"

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// RedisSessionStore keeps each session as a JSON value whose TTL is the
// session's remaining lifetime, so Redis does the expiry.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
	logger logger.Logger
}

func NewRedisSessionStore(cfg RedisConfig, log logger.Logger) (*RedisSessionStore, error) {
	log = logger.Component(log, "redis_session_store")

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Redis session store initialized successfully")
	return newRedisSessionStore(client, cfg.KeyPrefix, log), nil
}

func newRedisSessionStore(client *redis.Client, prefix string, log logger.Logger) *RedisSessionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSessionStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
		logger: log,
	}
}

func (r *RedisSessionStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisSessionStore) encode(session *entities.Session) ([]byte, time.Duration, error) {
	ttl := session.ExpiresAt.Sub(r.now())
	if session.ExpiresAt.IsZero() {
		ttl = 0
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, ttl, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, session *entities.Session) error {
	data, ttl, err := r.encode(session)
	if err != nil {
		return err
	}
	if ttl < 0 || (ttl == 0 && !session.ExpiresAt.IsZero()) {
		return r.Delete(ctx, session.Token)
	}

	if err := r.client.Set(ctx, r.key(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}
	return nil
}

// Update writes with SET XX so a session deleted by a concurrent logout is
// not recreated.
func (r *RedisSessionStore) Update(ctx context.Context, session *entities.Session) error {
	data, ttl, err := r.encode(session)
	if err != nil {
		return err
	}
	if ttl < 0 || (ttl == 0 && !session.ExpiresAt.IsZero()) {
		return r.Delete(ctx, session.Token)
	}

	updated, err := r.client.SetXX(ctx, r.key(session.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to update session in Redis: %w", err)
	}
	if !updated {
		return entities.ErrSessionNotFound
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	data, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

// CleanupExpired is a no-op: keys carry their own TTL.
func (r *RedisSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (r *RedisSessionStore) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}

package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"credhub/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "credhub:"

type CacheService interface {
	// Dashboard stats, keyed by scope (organization id or "all")
	GetDashboardStats(ctx context.Context, scope string) (*models.DashboardStats, error)
	SetDashboardStats(ctx context.Context, scope string, stats *models.DashboardStats, ttl time.Duration) error
	InvalidateDashboardStats(ctx context.Context) error

	// Session management
	SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCacheService accepts host:port or a redis:// URL.
func NewRedisCacheService(addr, password string, db int, logger *zap.Logger) CacheService {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(pingErr))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}

	return &redisCacheService{client: client, logger: logger}
}

func statsKey(scope string) string {
	return fmt.Sprintf("%sstats:%s", keyPrefix, scope)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("%ssession:%s", keyPrefix, sessionID)
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetDashboardStats(ctx context.Context, scope string) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	found, err := r.getJSON(ctx, statsKey(scope), &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetDashboardStats(ctx context.Context, scope string, stats *models.DashboardStats, ttl time.Duration) error {
	return r.setJSON(ctx, statsKey(scope), stats, ttl)
}

func (r *redisCacheService) InvalidateDashboardStats(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, statsKey("*")).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	return r.setJSON(ctx, sessionKey(session.SessionID), session, ttl)
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	found, err := r.getJSON(ctx, sessionKey(sessionID), &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%sratelimit:%s", keyPrefix, key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

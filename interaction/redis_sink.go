package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig 配置 Redis Stream 接收器。
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`

	// Stream 名称
	Stream string `yaml:"stream" json:"stream"`

	// Stream 近似保留条数，0 表示不修剪
	MaxLen int64 `yaml:"max_len" json:"max_len"`
}

// DefaultRedisConfig 返回默认 Redis 接收器配置。
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Stream: "omnirelay:interactions",
		MaxLen: 100000,
	}
}

// RedisSink 把交互记录 XADD 进 Redis Stream，供外部消费方读取。
type RedisSink struct {
	client *redis.Client
	cfg    RedisConfig
	logger *zap.Logger
}

// NewRedisSink 创建 Redis 接收器并验证连接。
func NewRedisSink(cfg RedisConfig, logger *zap.Logger) (*RedisSink, error) {
	if cfg.Stream == "" {
		cfg.Stream = "omnirelay:interactions"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSink{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "interaction_redis")),
	}, nil
}

// Log 写入一条记录。序列化或写入失败只记日志，不影响调用方。
func (s *RedisSink) Log(ctx context.Context, rec *Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("marshal interaction record failed", zap.Error(err))
		return
	}

	args := &redis.XAddArgs{
		Stream: s.cfg.Stream,
		Values: map[string]any{
			"api":      rec.API,
			"endpoint": rec.Endpoint,
			"record":   payload,
		},
	}
	if s.cfg.MaxLen > 0 {
		args.MaxLen = s.cfg.MaxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		s.logger.Warn("append interaction record failed",
			zap.String("stream", s.cfg.Stream), zap.Error(err))
	}
}

// Close 关闭 Redis 连接。
func (s *RedisSink) Close() error {
	return s.client.Close()
}

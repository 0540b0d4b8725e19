package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const opTimeout = 2 * time.Second

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)
	Publish(ctx context.Context, channel string, payload []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
	// TLSInsecure skips server certificate verification. Local development only.
	TLSInsecure bool
}

type client struct {
	redisClient *redis.Client
}

func (c Config) options() *redis.Options {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password: c.Password,
		DB:       c.DB,
	}
	if c.TLS {
		options.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ServerName:         c.Host,
			InsecureSkipVerify: c.TLSInsecure, // #nosec G402
		}
	}
	return options
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	if config.TLS && config.TLSInsecure {
		logger.WithField("host", config.Host).Warn("redis TLS certificate verification is disabled")
	}
	redisClient := redis.NewClient(config.options())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewFromRedis(redisClient), nil
}

// NewFromRedis wraps an existing connection without pinging it.
func NewFromRedis(redisClient *redis.Client) Client {
	return &client{redisClient: redisClient}
}

func (c *client) SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.redisClient.SetNX(ctx, key, value, expiration).Result()
}

func (c *client) Publish(ctx context.Context, channel string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.redisClient.Publish(ctx, channel, payload).Err()
}

func (c *client) Ping(ctx context.Context) error {
	return c.redisClient.Ping(ctx).Err()
}

func (c *client) Close() error {
	return c.redisClient.Close()
}

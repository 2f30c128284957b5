// Package lock holds the per-pipeline run lock in Redis so two operators
// cannot migrate the same pipeline at the same time.
package lock

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// The lock is a handful of small commands per run, so a small pool with
// short timeouts is enough and fails fast when Redis is gone.
func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

// Client is the Redis connection the locker runs its commands on. It does
// not dial until Ping.
type Client struct {
	rdb    *redis.Client
	addr   string
	logger ectologger.Logger
}

func NewClient(cfg Config, logger ectologger.Logger) *Client {
	return &Client{rdb: redis.NewClient(cfg.options()), addr: cfg.Addr(), logger: logger}
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", c.addr, err)
	}
	c.logger.WithContext(ctx).WithField("addr", c.addr).Debug("Redis reachable")
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

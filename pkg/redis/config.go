package redis

import (
	"time"

	"github.com/samber/lo"

	"github.com/Alijeyrad/clinicbook/config"
)

// Config holds Redis connection settings. The lock backend and the HTTP
// rate limiter share one client built from it.
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromCentralConfig fills unset values from DefaultConfig.
func FromCentralConfig(c config.RedisConfig) Config {
	def := DefaultConfig()
	seconds := func(n int, fallback time.Duration) time.Duration {
		if n <= 0 {
			return fallback
		}
		return time.Duration(n) * time.Second
	}

	return Config{
		Addr:         lo.CoalesceOrEmpty(c.Addr, def.Addr),
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     lo.Ternary(c.PoolSize > 0, c.PoolSize, def.PoolSize),
		MinIdleConns: lo.Ternary(c.MinIdleConns > 0, c.MinIdleConns, def.MinIdleConns),
		DialTimeout:  seconds(c.DialTimeoutSeconds, def.DialTimeout),
		ReadTimeout:  seconds(c.ReadTimeoutSeconds, def.ReadTimeout),
		WriteTimeout: seconds(c.WriteTimeoutSeconds, def.WriteTimeout),
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/clinicbook/config"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/internal/repo/memory"
	"github.com/Alijeyrad/clinicbook/internal/repo/postgres"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/database"
	"github.com/Alijeyrad/clinicbook/pkg/events"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
	"github.com/Alijeyrad/clinicbook/pkg/observability"
	redispkg "github.com/Alijeyrad/clinicbook/pkg/redis"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideLocker),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideBookingMetrics),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvidePublisher),
)

// ProvideLogger hands out the default logger, set up by the command before fx starts.
func ProvideLogger() *slog.Logger {
	return slog.Default()
}

// ProvideStore opens the configured backend. The memory store starts empty
// and is meant for development.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (repo.Store, error) {
	if cfg.Booking.Store == "memory" {
		slog.Warn("using in-memory booking store; data is lost on restart")
		store, _ := memory.NewStore()
		return store, nil
	}

	pool, err := ProvidePool(lc, cfg)
	if err != nil {
		return repo.Store{}, err
	}
	return postgres.NewStore(pool), nil
}

func ProvidePool(lc fx.Lifecycle, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(context.Background(), database.FromCentralConfig(cfg.Database))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

// ProvideRedis returns a nil client when redis.addr is empty; every consumer
// treats nil as "no Redis".
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideLocker(cfg *config.Config, rdb *redis.Client, metrics *observability.BookingMetrics) (lock.Locker, error) {
	lc := cfg.Booking.Lock
	switch lc.Backend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("booking.lock.backend is redis but redis.addr is empty")
		}
		return lock.NewRedisLocker(rdb, lc.TTL(), lc.WaitTimeout(), lc.RetryInterval(),
			lock.WithRedisObserver(metrics.ObserveLock)), nil
	default:
		return lock.NewMemoryLocker(lc.WaitTimeout(), lock.WithMemoryObserver(metrics.ObserveLock)), nil
	}
}

// ProvideAuthorization returns nil when authorization is disabled.
func ProvideAuthorization(cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	if !cfg.Authorization.Enabled {
		slog.Warn("authorization disabled; every authenticated caller may act on every record")
		return nil, nil
	}
	return authorize.NewAuthorizationFromConfig(context.Background(), authorize.FromCentralConfig(cfg.Authorization), logger)
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name("clinicbook"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

// ProvidePublisher selects the lifecycle event sink from events.sink.
func ProvidePublisher(lc fx.Lifecycle, cfg *config.Config, nc *nats.Conn) (events.Publisher, error) {
	switch cfg.Events.Sink {
	case "nats":
		if nc == nil {
			return nil, fmt.Errorf("events.sink is nats but nats.url is empty")
		}
		return events.NewNATSPublisher(nc), nil
	case "kafka":
		p := events.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				slog.Debug("closing Kafka writer")
				return p.Close()
			},
		})
		return p, nil
	default:
		return events.Nop{}, nil
	}
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideBookingMetrics depends on the provider so the instruments land on
// the Prometheus-backed meter provider. Nil when metrics are off.
func ProvideBookingMetrics(cfg *config.Config, provider *observability.Provider) (*observability.BookingMetrics, error) {
	if provider == nil || !cfg.Observability.Metrics.Enabled {
		return nil, nil
	}
	return observability.NewBookingMetrics()
}

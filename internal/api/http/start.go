package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/clinicbook/config"
	"github.com/Alijeyrad/clinicbook/internal/api/http/router"
	"github.com/Alijeyrad/clinicbook/internal/app"
)

// Start runs the HTTP API until the process receives a stop signal.
func Start(cfg *config.Config, timeout time.Duration, opts ...fx.Option) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer registers the listen hook; requesting the app builds it.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.Options(opts...),
	).Run()
}

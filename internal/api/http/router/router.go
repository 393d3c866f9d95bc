package router

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/clinicbook/config"
	"github.com/Alijeyrad/clinicbook/internal/api/http/handler"
	"github.com/Alijeyrad/clinicbook/internal/api/http/middleware"
	"github.com/Alijeyrad/clinicbook/internal/service/appointment"
	"github.com/Alijeyrad/clinicbook/internal/service/availability"
	"github.com/Alijeyrad/clinicbook/internal/service/scheduling"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/clinicbook/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client            `optional:"true"`
	Auth            authorize.IAuthorization `optional:"true"`
	AppointmentSvc  appointment.Service
	AvailabilitySvc availability.Service
	Detector        *scheduling.Detector
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	var sessions *redis.Client
	if r.p.Cfg.Authentication.SessionCheck {
		sessions = r.p.Redis
	}
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, sessions)

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	availabilityH := handler.NewAvailabilityHandler(
		r.p.AvailabilitySvc,
		r.p.Detector,
		time.Duration(r.p.Cfg.Booking.FreeTimes.StepMinutes)*time.Minute,
	)

	api := app.Group("/api/v1", authRequired)

	// 4. Delegate to sub-files
	r.registerAppointmentRoutes(api, appointmentH, requirePerm)
	r.registerAvailabilityRoutes(api, availabilityH, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

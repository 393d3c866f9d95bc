package app

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/clinicbook/config"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/internal/service/access"
	"github.com/Alijeyrad/clinicbook/internal/service/appointment"
	"github.com/Alijeyrad/clinicbook/internal/service/availability"
	"github.com/Alijeyrad/clinicbook/internal/service/scheduling"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/events"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
	"github.com/Alijeyrad/clinicbook/pkg/observability"
	pasetotoken "github.com/Alijeyrad/clinicbook/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideGuard,
		ProvideAvailabilityService,
		ProvideDetector,
		ProvideAppointmentService,
		ProvidePasetoManager,
	),
)

// ProvideGuard returns nil, which allows everything, when authorization is disabled.
func ProvideGuard(cfg *config.Config, authz authorize.IAuthorization, store repo.Store) *access.Guard {
	if !cfg.Authorization.Enabled {
		return nil
	}
	return access.NewGuard(authz, store.Directory)
}

func ProvideAvailabilityService(cfg *config.Config, store repo.Store, locker lock.Locker, guard *access.Guard, logger *slog.Logger) availability.Service {
	return availability.New(store.Availability, store.Directory, locker, cfg.Booking.Location(),
		availability.WithGuard(guard),
		availability.WithLogger(logger),
	)
}

func ProvideDetector(store repo.Store, avail availability.Service, guard *access.Guard) *scheduling.Detector {
	return scheduling.New(store.Appointments, store.Availability, avail, scheduling.WithGuard(guard))
}

func ProvideAppointmentService(
	cfg *config.Config,
	store repo.Store,
	detector *scheduling.Detector,
	locker lock.Locker,
	guard *access.Guard,
	publisher events.Publisher,
	metrics *observability.BookingMetrics,
	logger *slog.Logger,
) appointment.Service {
	return appointment.New(store.Appointments, store.Directory, detector, locker,
		appointment.WithGuard(guard),
		appointment.WithPublisher(publisher),
		appointment.WithListLimits(cfg.Booking.List.DefaultLimit, cfg.Booking.List.MaxLimit),
		appointment.WithMetrics(metrics),
		appointment.WithLogger(logger),
		appointment.WithClock(time.Now),
	)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/clinicbook/config"
	"github.com/Alijeyrad/clinicbook/pkg/events"
)

// WorkerModule registers the NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	NC     *nats.Conn `optional:"true"`
	Logger *slog.Logger
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil || !p.Cfg.Nats.AuditSubscriber {
		return
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = startAuditWorker(p.NC, p.Logger)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

// startAuditWorker logs every appointment lifecycle event published on NATS.
func startAuditWorker(nc *nats.Conn, logger *slog.Logger) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(events.SubjectPrefix+".>", auditHandler(logger))
	if err != nil {
		slog.Error("audit_worker: subscribe failed", "err", err)
		return nil, err
	}
	slog.Info("audit_worker: started", "subject", sub.Subject)
	return sub, nil
}

func auditHandler(logger *slog.Logger) nats.MsgHandler {
	return func(msg *nats.Msg) {
		e, err := events.Unmarshal(msg.Data)
		if err != nil {
			logger.Warn("audit_worker: undecodable event", "subject", msg.Subject, "err", err)
			return
		}
		logger.Info("appointment_event",
			"event_id", e.ID,
			"type", e.Type,
			"appointment_id", e.AppointmentID,
			"staff_id", e.StaffID,
			"customer_id", e.CustomerID,
			"status", e.Status,
			"start", e.Start,
			"end", e.End,
		)
	}
}

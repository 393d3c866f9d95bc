package authorize

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// policyLoadHealthy tracks whether the last policy load succeeded.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

// IsPolicyHealthy returns false if the last policy load attempt failed.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// NewEnforcer builds the enforcer. With a policy file the policies are loaded
// from (and saved to) that CSV; without one the enforcer starts empty and the
// caller seeds DefaultPolicies.
func NewEnforcer(cfg Config) (*casbin.DistributedEnforcer, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.CasbinModelPath != "" {
		m, err = model.NewModelFromFile(cfg.CasbinModelPath)
	} else {
		m, err = model.NewModelFromString(DefaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var e *casbin.DistributedEnforcer
	if cfg.PolicyPath != "" {
		e, err = casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		e, err = casbin.NewDistributedEnforcer(m)
	}
	if err != nil {
		policyLoadHealthy.Store(false)
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	policyLoadHealthy.Store(true)

	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e, nil
}

// NewAuthorizationFromConfig creates the enforcer, seeds the default policies
// when no policy file is configured, and wraps the result in the audit
// logger when enabled.
func NewAuthorizationFromConfig(ctx context.Context, cfg Config, logger *slog.Logger) (IAuthorization, error) {
	e, err := NewEnforcer(cfg)
	if err != nil {
		return nil, err
	}

	auth, err := NewAuthorization(e, WithSuperadminBypass(cfg.SuperadminBypass))
	if err != nil {
		return nil, err
	}

	if cfg.PolicyPath == "" {
		if err := SeedDefaultPolicies(ctx, auth); err != nil {
			return nil, err
		}
	}

	if cfg.EnableAudit {
		auth = NewAuditedAuthorization(auth, logger)
	}
	return auth, nil
}

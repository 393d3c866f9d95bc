package authorize

import "github.com/Alijeyrad/clinicbook/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath overrides DefaultModel when set.
	CasbinModelPath string

	// PolicyPath is a CSV policy file; empty means seeded defaults in memory.
	PolicyPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool

	// SuperadminBypass lets the platform admin skip policy evaluation.
	SuperadminBypass bool
}

func DefaultConfig() Config {
	return Config{
		EnableAudit:      true,
		SuperadminBypass: true,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath:  c.CasbinModelPath,
		PolicyPath:       c.PolicyPath,
		EnableAudit:      c.EnableAudit,
		SuperadminBypass: c.SuperadminBypass,
	}
}

package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to every environment override, e.g. BOOKING_DATABASE_HOST.
	EnvPrefix = "BOOKING"

	ServiceName = "clinicbook"
)

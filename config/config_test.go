package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestReadConfigDefaultsAndEnv(t *testing.T) {
	dir := writeConfig(t, `
database:
  host: db.internal
  port: 5432
booking:
  timezone: Asia/Tehran
  lock:
    wait_timeout_ms: 500
`)
	t.Setenv("BOOKING_DATABASE_HOST", "db.override")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Booking.Store)
	assert.Equal(t, "memory", cfg.Booking.Lock.Backend)
	assert.Equal(t, "none", cfg.Events.Sink)
	assert.Equal(t, 500*time.Millisecond, cfg.Booking.Lock.WaitTimeout())
	assert.Equal(t, 10*time.Second, cfg.Booking.Lock.TTL())
	assert.Equal(t, 100, cfg.Booking.List.DefaultLimit)
	assert.Equal(t, 15, cfg.Booking.FreeTimes.StepMinutes)
	assert.Equal(t, "Asia/Tehran", cfg.Booking.Location().String())
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)

	t.Setenv("BOOKING_DATABASE_HOST", "db")
	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Booking.Location().String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"zero config gets defaults", func(*Config) {}, true},
		{"unknown sink", func(c *Config) { c.Events.Sink = "sqs" }, false},
		{"kafka without brokers", func(c *Config) { c.Events.Sink = "kafka" }, false},
		{"kafka with brokers", func(c *Config) {
			c.Events.Sink = "kafka"
			c.Events.Kafka.Brokers = []string{"localhost:9092"}
		}, true},
		{"bad timezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }, false},
		{"unknown store", func(c *Config) { c.Booking.Store = "mongo" }, false},
		{"unknown lock backend", func(c *Config) { c.Booking.Lock.Backend = "etcd" }, false},
		{"default limit above max", func(c *Config) {
			c.Booking.List.DefaultLimit = 600
			c.Booking.List.MaxLimit = 500
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateFillsKafkaTopic(t *testing.T) {
	c := Config{Events: EventsConfig{Sink: "kafka", Kafka: KafkaConfig{Brokers: []string{"b:9092"}}}}
	require.NoError(t, c.Validate())
	assert.Equal(t, "booking.appointments", c.Events.Kafka.Topic)
}

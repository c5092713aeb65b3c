package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("NOTIFY_DRIVER", "")
	t.Setenv("POSTGRES_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "log", cfg.Notification.Driver)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("NOTIFY_DRIVER", "redis")
	t.Setenv("NOTIFY_POLL_SECONDS", "2")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "redis", cfg.Notification.Driver)
	assert.Equal(t, 2*time.Second, cfg.Notification.PollInterval())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoadRejectsUnknownNotifyDriver(t *testing.T) {
	t.Setenv("NOTIFY_DRIVER", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("NOTIFY_DRIVER", "")
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	assert.Error(t, err)
}

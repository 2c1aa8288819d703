package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "dormhub-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "stub", cfg.Storage.Provider)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
	assert.Equal(t, "0 1 * * *", cfg.Scheduler.SweepSchedule)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "no wildcard CORS fallback")
}

func TestValidate_PoolSettings(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = 50

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestValidate_ProductionRequiresDurableStorage(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "require"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.provider")

	cfg.Storage.Provider = "s3"
	require.NoError(t, cfg.validate())
}

func TestValidate_NotificationNeedsWebhook(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Notification.Enabled = true

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook_url")
}

func TestDSN_EscapesCredentials(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "dorm",
		Password: "p@ss/word",
		DBName:   "dormhub",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.AI.Enabled)
	assert.InDelta(t, 3.0, cfg.Planner.MatchedWeight, 0.001)
	assert.True(t, cfg.IsDevelopment())
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("GREENBITE_SERVER_PORT", "9090")
	t.Setenv("GREENBITE_DATABASE_DRIVER", "postgres")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("GREENBITE_DATABASE_DRIVER", "oracle")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("ai enabled requires api key", func(t *testing.T) {
		t.Setenv("GREENBITE_AI_ENABLED", "true")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, Username: "u", Password: "p",
		Database: "greenbite", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=greenbite sslmode=disable", d.DSN())
}

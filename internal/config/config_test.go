package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 20, cfg.LoginRatePerMinute)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "5")
	t.Setenv("ORG_CACHE_TTL", "bogus")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 5, cfg.LoginRatePerMinute)
	assert.Equal(t, 5*time.Minute, cfg.OrgCacheTTL)
}

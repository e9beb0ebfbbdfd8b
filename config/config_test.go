package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test")

	cfg := LoadEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.PlanLimitFree)
	assert.Equal(t, 50, cfg.PlanLimitBasic)
	assert.Equal(t, 500, cfg.PlanLimitPro)
	assert.Equal(t, 30*24*time.Hour, cfg.UsagePeriod)
	assert.Equal(t, 50, cfg.MaxComments)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("PLAN_LIMIT_FREE", "2")
	t.Setenv("USAGE_PERIOD", "168h")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")

	cfg := LoadEnv()

	assert.Equal(t, 2, cfg.PlanLimitFree)
	assert.Equal(t, 7*24*time.Hour, cfg.UsagePeriod)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{UsagePeriod: time.Hour, UpstreamTimeout: time.Second}
	require.NoError(t, cfg.Validate())

	cfg.UsagePeriod = 0
	assert.Error(t, cfg.Validate())

	cfg.UsagePeriod = time.Hour
	cfg.PlanLimitPro = -1
	assert.Error(t, cfg.Validate())
}

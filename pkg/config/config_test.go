package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(defaultViper())
	require.NotNil(t, cfg)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, int64(10*1024*1024), cfg.Achievements.MaxFileSizeBytes)
	assert.Equal(t, 30*time.Minute, cfg.Achievements.SignedURLTTL)
	assert.Equal(t, 2*time.Minute, cfg.Achievements.ReconcileGrace)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 2, cfg.Notifications.Workers)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestFromViperOverrides(t *testing.T) {
	v := defaultViper()
	v.Set("API_PREFIX", "api/v2/")
	v.Set("ACHIEVEMENTS_MAX_FILE_SIZE", 0)
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("NOTIFY_RETRY_DELAY", "-1s")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("SMTP_HOST", "smtp.example.org")
	v.Set("SMTP_FROM", "Achievements <no-reply@example.org>")

	cfg := fromViper(v)
	assert.Equal(t, "/api/v2", cfg.APIPrefix)
	assert.Equal(t, int64(10*1024*1024), cfg.Achievements.MaxFileSizeBytes)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Notifications.RetryDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestValidateRejectsDevSecretsInProduction(t *testing.T) {
	v := defaultViper()
	v.Set("ENV", "Production")
	cfg := fromViper(v)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ACHIEVEMENTS_SIGNED_URL_SECRET")

	cfg.JWT.Secret = "prod-jwt"
	cfg.Achievements.SignedURLSecret = "prod-download"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBrokenSettings(t *testing.T) {
	cfg := fromViper(defaultViper())
	cfg.Port = 0
	cfg.Notifications.Workers = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "NOTIFY_WORKERS")
}

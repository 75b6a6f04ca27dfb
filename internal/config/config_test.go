package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "STORE_BACKEND", "MONGO_URI", "DB_NAME", "QUEUE_BACKEND", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MIN"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, "mongo", cfg.StoreBackend)
	assert.Equal(t, "smart_info_kiosk", cfg.DBName)
	assert.Equal(t, "none", cfg.QueueBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 600, cfg.RateLimitPerMin)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://kiosk.example.ac.th, http://localhost:3000 ,")
	t.Setenv("RATE_LIMIT_PER_MIN", "abc")
	t.Setenv("BCRYPT_COST", "12")

	cfg := Load()
	assert.True(t, cfg.Production())
	assert.Equal(t, []string{"https://kiosk.example.ac.th", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 600, cfg.RateLimitPerMin)
	assert.Equal(t, 12, cfg.BcryptCost)
}

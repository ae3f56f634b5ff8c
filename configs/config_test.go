package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{"PORT", "DB_HOST", "DB_PORT", "REDIS_HOST", "REDIS_PORT", "JWT_SECRET", "SITE_URL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "http://localhost:3000", cfg.SiteURL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "10501")
	t.Setenv("DB_USER", "guardian")
	t.Setenv("DB_NAME", "taskguardian")
	t.Setenv("JWT_SECRET", "supersecret")
	t.Setenv("SITE_URL", "https://tasks.example.com")

	cfg := LoadConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 10501, cfg.DBPort)
	assert.Equal(t, "guardian", cfg.DBUser)
	assert.Equal(t, "taskguardian", cfg.DBName)
	assert.Equal(t, "supersecret", cfg.JWTSecret)
	assert.Equal(t, "https://tasks.example.com", cfg.SiteURL)
}

func TestLoadConfigBadPort(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 3000, cfg.Port)
}

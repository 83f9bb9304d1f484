package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"CERTIFAI_API_URL", "CERTIFAI_API_KEY", "CERTIFAI_ACCESS_TOKEN", "OFFLINE_MODE", "HTTP_TIMEOUT",
	"DB_TYPE", "DB_PATH", "DATABASE_URL", "STORAGE_DRIVER", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"TOPICS_SOURCE", "TOPICS_SHEET", "TOPICS_REVALIDATE_INTERVAL", "TIMEZONE",
	"TELEGRAM_BOT_TOKEN", "ALLOWED_CHAT_IDS", "REMINDER_HOUR", "REVIEW_LIMIT", "LOG_MODE",
}

// clearEnv blanks every key so a developer's .env or shell does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CERTIFAI_API_URL", "https://api.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "database", cfg.StorageDriver)
	assert.Equal(t, "remote", cfg.TopicsSource)
	assert.Equal(t, time.Hour, cfg.RevalidateInterval)
	assert.Equal(t, 20, cfg.ReminderHour)
	assert.Equal(t, 20, cfg.ReviewLimit)
	assert.Empty(t, cfg.AllowedChatIDs)
	assert.False(t, cfg.OfflineMode)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/certifai")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TOPICS_SOURCE", "data/topics.xlsx")
	t.Setenv("TOPICS_REVALIDATE_INTERVAL", "15m")
	t.Setenv("TIMEZONE", "America/Sao_Paulo")
	t.Setenv("ALLOWED_CHAT_IDS", "123, 456,,-789")
	t.Setenv("REMINDER_HOUR", "-1")
	t.Setenv("REVIEW_LIMIT", "10")
	t.Setenv("LOG_MODE", "prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.OfflineMode)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "redis", cfg.StorageDriver)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "data/topics.xlsx", cfg.TopicsSource)
	assert.Equal(t, 15*time.Minute, cfg.RevalidateInterval)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
	assert.Equal(t, []int64{123, 456, -789}, cfg.AllowedChatIDs)
	assert.Equal(t, -1, cfg.ReminderHour)
	assert.Equal(t, 10, cfg.ReviewLimit)
	assert.Equal(t, "prod", cfg.LogMode)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api url", map[string]string{}},
		{"bad timeout", map[string]string{"CERTIFAI_API_URL": "http://x", "HTTP_TIMEOUT": "soon"}},
		{"bad db type", map[string]string{"CERTIFAI_API_URL": "http://x", "DB_TYPE": "mysql"}},
		{"postgres without url", map[string]string{"CERTIFAI_API_URL": "http://x", "DB_TYPE": "postgres"}},
		{"redis without addr", map[string]string{"CERTIFAI_API_URL": "http://x", "STORAGE_DRIVER": "redis"}},
		{"bad storage driver", map[string]string{"CERTIFAI_API_URL": "http://x", "STORAGE_DRIVER": "s3"}},
		{"bad timezone", map[string]string{"CERTIFAI_API_URL": "http://x", "TIMEZONE": "Mars/Olympus"}},
		{"bad chat id", map[string]string{"CERTIFAI_API_URL": "http://x", "ALLOWED_CHAT_IDS": "12,abc"}},
		{"reminder hour out of range", map[string]string{"CERTIFAI_API_URL": "http://x", "REMINDER_HOUR": "24"}},
		{"zero review limit", map[string]string{"CERTIFAI_API_URL": "http://x", "REVIEW_LIMIT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

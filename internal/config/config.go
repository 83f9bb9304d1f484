package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting of the study companion
type Config struct {
	// Backend
	APIURL      string
	APIKey      string
	AccessToken string
	HTTPTimeout time.Duration

	// Work against the local database instead of the backend
	OfflineMode bool

	// Local persistence
	DBType        string // sqlite or postgres
	DBPath        string
	DatabaseURL   string
	StorageDriver string // database or redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Topic cache
	TopicsSource       string // "remote" or a path to an .xlsx/.csv file
	TopicsSheet        string
	RevalidateInterval time.Duration

	// Calendar
	Location *time.Location

	// Bot
	TelegramToken  string
	AllowedChatIDs []int64
	ReminderHour   int // -1 disables the streak reminder
	ReviewLimit    int

	LogMode string
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout:        15 * time.Second,
		DBType:             "sqlite",
		DBPath:             "data/certifai.db",
		StorageDriver:      "database",
		TopicsSource:       "remote",
		TopicsSheet:        "Sheet1",
		RevalidateInterval: time.Hour,
		Location:           time.Local,
		ReminderHour:       20,
		ReviewLimit:        20,
		LogMode:            "dev",
	}
}

// Load reads .env (if present) and the process environment on top of DefaultConfig.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(os.Getenv("CERTIFAI_API_URL")), "/")
	cfg.APIKey = strings.TrimSpace(os.Getenv("CERTIFAI_API_KEY"))
	cfg.AccessToken = strings.TrimSpace(os.Getenv("CERTIFAI_ACCESS_TOKEN"))
	cfg.OfflineMode = os.Getenv("OFFLINE_MODE") == "true"

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = d
	}

	if v := os.Getenv("DB_TYPE"); v != "" {
		cfg.DBType = strings.ToLower(v)
	}
	if cfg.DBType != "sqlite" && cfg.DBType != "postgres" {
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
	}

	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = strings.ToLower(v)
	}
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = n
	}
	switch cfg.StorageDriver {
	case "database":
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when STORAGE_DRIVER=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if v := os.Getenv("TOPICS_SOURCE"); v != "" {
		cfg.TopicsSource = v
	}
	if v := os.Getenv("TOPICS_SHEET"); v != "" {
		cfg.TopicsSheet = v
	}
	if v := os.Getenv("TOPICS_REVALIDATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOPICS_REVALIDATE_INTERVAL %q: %w", v, err)
		}
		cfg.RevalidateInterval = d
	}

	if v := os.Getenv("TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", v, err)
		}
		cfg.Location = loc
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	ids, err := parseChatIDs(os.Getenv("ALLOWED_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AllowedChatIDs = ids

	if v := os.Getenv("REMINDER_HOUR"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h < -1 || h > 23 {
			return nil, fmt.Errorf("invalid REMINDER_HOUR %q", v)
		}
		cfg.ReminderHour = h
	}
	if v := os.Getenv("REVIEW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid REVIEW_LIMIT %q", v)
		}
		cfg.ReviewLimit = n
	}

	if v := os.Getenv("LOG_MODE"); v != "" {
		cfg.LogMode = v
	}

	if !cfg.OfflineMode && cfg.APIURL == "" {
		return nil, fmt.Errorf("CERTIFAI_API_URL environment variable is not set")
	}

	return cfg, nil
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	if strings.TrimSpace(raw) == "" {
		return ids, nil
	}
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat ID %q in ALLOWED_CHAT_IDS", idStr)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

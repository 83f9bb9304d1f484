package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/certifai/internal/config"
	"github.com/example/certifai/internal/database"
	"github.com/example/certifai/internal/excel"
	"github.com/example/certifai/internal/history"
	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/internal/progress"
	"github.com/example/certifai/internal/remote"
	"github.com/example/certifai/internal/storage"
	"github.com/example/certifai/internal/topics"
)

// app holds the wired services shared by every command
type app struct {
	cfg *config.Config
	log *logger.Logger

	db       *sqlx.DB
	redis    *storage.RedisStore
	client   *remote.Client
	clock    progress.Clock
	metadata progress.MetadataStore
	topics   *topics.Cache
	progress *progress.Recorder
	history  *history.Recorder
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		cfg:   cfg,
		log:   log,
		clock: progress.NewSystemClock(cfg.Location),
	}

	db, err := database.Connect(database.Options{
		Type:        cfg.DBType,
		Path:        cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db

	var store storage.Store = database.NewKVRepository(db)
	if cfg.StorageDriver == "redis" {
		rs, err := storage.NewRedisStore(storage.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: "certifai:",
		})
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = rs
		store = rs
	}

	if !cfg.OfflineMode {
		client, err := remote.New(remote.Options{
			BaseURL:     cfg.APIURL,
			APIKey:      cfg.APIKey,
			AccessToken: cfg.AccessToken,
			Timeout:     cfg.HTTPTimeout,
		}, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.client = client
	}

	var source topics.Source
	switch {
	case isSpreadsheet(cfg.TopicsSource):
		importCfg := excel.DefaultImportConfig()
		importCfg.FilePath = cfg.TopicsSource
		importCfg.SheetName = cfg.TopicsSheet
		source = excel.NewSource(importCfg)
	case a.client != nil:
		source = a.client
	default:
		a.close()
		return nil, fmt.Errorf("TOPICS_SOURCE must be a spreadsheet path in offline mode")
	}
	a.topics = topics.New(store, source, log)

	if a.client != nil {
		a.metadata = a.client
		a.history = history.NewRecorder(a.client, log)
	} else {
		a.metadata = database.NewUserMetadataRepository(db, database.LocalUserID)
		a.history = history.NewRecorder(database.NewStudySessionRepository(db, database.LocalUserID), log)
	}
	a.progress = progress.NewRecorder(a.metadata, a.clock, log)

	return a, nil
}

// loadTopics starts the topic session once there is a user to load it for
func (a *app) loadTopics(ctx context.Context) error {
	if a.client != nil && !a.client.Authenticated() {
		a.log.Warn("no access token, topics stay unloaded")
		return nil
	}
	return a.topics.Load(ctx)
}

func (a *app) close() {
	if a.topics != nil {
		a.topics.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("failed to close database", "error", err)
		}
	}
}

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

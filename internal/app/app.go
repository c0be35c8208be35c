package app

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/printorder/internal/adapters/asset"
	"github.com/phenrril/printorder/internal/adapters/httpserver"
	pgrepo "github.com/phenrril/printorder/internal/adapters/repo/postgres"
	"github.com/phenrril/printorder/internal/adapters/store/memory"
	"github.com/phenrril/printorder/internal/adapters/store/redisstore"
	"github.com/phenrril/printorder/internal/config"
	"github.com/phenrril/printorder/internal/domain"
	"github.com/phenrril/printorder/internal/views"
)

type App struct {
	Cfg     *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	KV      domain.KVStore
	Encoder domain.ImageEncoder
	Tmpl    *template.Template
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Cfg: cfg}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		app.Redis = client
		app.KV = redisstore.New(client, cfg.StoreTTL)
	case config.BackendPostgres:
		gcfg := &gorm.Config{}
		if !cfg.IsDev() {
			gcfg.Logger = logger.Default.LogMode(logger.Warn)
		}
		db, err := gorm.Open(postgres.Open(cfg.Database.ConnString()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.DB = db
		app.KV = pgrepo.NewKVRepo(db)
	default:
		app.KV = memory.New()
	}

	app.Encoder = asset.NewDataURLEncoder(cfg.MaxUploadMB << 20)

	tmpl, err := views.Load(cfg.IsDev())
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Tmpl = tmpl

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Tmpl, a.KV, a.Encoder, httpserver.Options{
		SessionKey:   []byte(a.Cfg.SessionKey),
		MaxUpload:    a.Cfg.MaxUploadMB << 20,
		SecureCookie: a.Cfg.IsProduction(),
	})
}

// Migrate prepares the postgres store and drops sessions idle for longer
// than the store TTL. Other backends need nothing.
func (a *App) Migrate(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.WithContext(ctx).AutoMigrate(&domain.StoreEntry{}); err != nil {
		return err
	}
	n, err := pgrepo.NewKVRepo(a.DB).PurgeStale(ctx, time.Now().Add(-a.Cfg.StoreTTL))
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int64("rows", n).Msg("purged stale store entries")
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

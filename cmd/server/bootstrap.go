package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/api"
	"github.com/ichwanardi/portfolio/internal/app"
	"github.com/ichwanardi/portfolio/internal/app/maintenance"
	iauth "github.com/ichwanardi/portfolio/internal/auth"
	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/database"
	"github.com/ichwanardi/portfolio/internal/middleware"
	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Store      cache.Store
	Accessor   *cache.Accessor
	SessionSvc *iauth.SessionService
	Cleaner    *maintenance.Cleaner
	RateStore  middleware.RateStore
	Router     *gin.Engine

	rateCounters io.Closer
}

// bootstrapRuntime initialises the database, cache, services and the HTTP router.
// static may be nil, in which case unknown routes answer with a JSON 404.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, static fs.FS, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	var purger maintenance.ExpiryPurger
	stack.Store, purger = selectCacheStore(ctx, cfg, stack.DB, log)
	stack.Accessor = cache.NewAccessor(stack.Store, cfg.Cache.AccessorOptions()...)

	authenticator, err := iauth.NewAuthenticator(cfg.Auth.AdminCredentials())
	if err != nil {
		return nil, fmt.Errorf("initialise authenticator: %w", err)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	sessionCfg := cfg.Auth.SessionServiceConfig()
	sessionCfg.Cache = iauth.NewStoreSessionCache(stack.Store)
	stack.SessionSvc, err = iauth.NewSessionService(stack.DB, jwtSvc, sessionCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	svcCfg := services.Config{
		QueryTimeout:      cfg.Database.QueryTimeout,
		InvalidateOnWrite: cfg.Cache.InvalidateOnWrite,
	}
	blogs, err := services.NewBlogService(stack.DB, stack.Accessor, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise blog service: %w", err)
	}
	projects, err := services.NewProjectService(stack.DB, stack.Accessor, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise project service: %w", err)
	}
	updates, err := services.NewUpdateService(stack.DB, stack.Accessor, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise update service: %w", err)
	}
	home, err := services.NewHomeService(stack.DB, stack.Accessor, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise home service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.SessionSvc, purger,
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
		maintenance.WithSessionSchedule(cfg.Maintenance.SessionSchedule),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.RateStore, stack.rateCounters = selectRateStore(stack.Store, log)

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:        cfg,
		DB:            stack.DB,
		CacheStore:    stack.Store,
		RateStore:     stack.RateStore,
		Authenticator: authenticator,
		Sessions:      stack.SessionSvc,
		Blogs:         blogs,
		Projects:      projects,
		Updates:       updates,
		Home:          home,
		Static:        static,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// selectCacheStore builds the configured cache backend. An unreachable redis
// degrades to a passthrough store so content keeps flowing from the database.
// The returned purger is nil for stores that expire entries on their own.
func selectCacheStore(ctx context.Context, cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, maintenance.ExpiryPurger) {
	switch driver := cfg.Cache.NormalisedDriver(); driver {
	case app.CacheDriverRedis:
		store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable; caching disabled", zap.String("addr", cfg.Cache.Redis.Address), zap.Error(err))
			return cache.NopStore{}, nil
		}
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		return store, nil
	case app.CacheDriverMemory:
		store := cache.NewMemoryStore()
		log.Info("cache store selected", zap.String("driver", driver))
		return store, store
	case app.CacheDriverNone:
		log.Info("cache disabled")
		return cache.NopStore{}, nil
	default:
		store := cache.NewDatabaseStore(db)
		log.Info("cache store selected", zap.String("driver", app.CacheDriverDatabase))
		return store, store
	}
}

// selectRateStore keeps rate limit counters next to the cache unless the cache
// discards writes. Counters then live in process memory so limits stay enforced.
// The returned closer is non-nil only for that fallback store.
func selectRateStore(store cache.Store, log *zap.Logger) (middleware.RateStore, io.Closer) {
	if _, ok := store.(cache.NopStore); ok {
		counters := cache.NewMemoryStore()
		log.Warn("cache store discards writes; rate limit counters kept in process memory")
		return middleware.NewRateStore(counters), counters
	}
	return middleware.NewRateStore(store), nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			<-stopCtx.Done()
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if closer, ok := s.Store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn("cache shutdown", zap.Error(err))
		}
	}

	if s.rateCounters != nil {
		if err := s.rateCounters.Close(); err != nil {
			log.Warn("rate limit store shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOptions()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db, cfg.Database.SeedSample); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

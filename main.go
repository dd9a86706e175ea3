package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/texasiusc/resources/handlers"
	"github.com/texasiusc/resources/internal/cache"
	"github.com/texasiusc/resources/internal/config"
	"github.com/texasiusc/resources/internal/database"
	"github.com/texasiusc/resources/internal/imageurl"
	"github.com/texasiusc/resources/internal/post/repository"
	"github.com/texasiusc/resources/internal/post/service"
	"github.com/texasiusc/resources/internal/sanity"
	"github.com/texasiusc/resources/internal/storage"
	"github.com/texasiusc/resources/internal/views"
	"github.com/texasiusc/resources/pkg/logger"
	"github.com/texasiusc/resources/pkg/metrics"
	"github.com/texasiusc/resources/pkg/middleware"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat(os.Getenv("LOG_FORMAT"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Infof("config loaded: content=%s assets=%s redis=%v revalidate=%s",
		cfg.Content.Backend, cfg.Assets.Backend, cfg.Redis.Addr() != "", cfg.Content.Revalidate)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	checks := map[string]handlers.ReadyCheck{}

	base, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s content store: %v", cfg.Content.Backend, err)
	}
	defer closeStore()

	var store repository.Store = repository.NewInstrumentedStore(base)
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// lookups fall through to the store while Redis is down
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("Connected to Redis for content caching: %s", addr)
		}
		store = repository.NewCachingStore(store, cache.NewRedisCache(rdb, ""), cfg.Content.Revalidate)
		checks["cache"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	svc := service.New(store)
	checks["content"] = svc.Ready

	images, err := openResolver(cfg)
	if err != nil {
		logger.Fatalf("failed to open %s asset backend: %v", cfg.Assets.Backend, err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS())

	handlers.RegisterHealth(r, checks)
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)
	handlers.RegisterSearchRoutes(r, svc)
	handlers.RegisterPageRoutes(r, handlers.PageOptions{
		SiteTitle:  cfg.Site.Title,
		SiteIntro:  cfg.Site.Intro,
		Revalidate: cfg.Content.Revalidate,
	}, svc, views.NewDetail(svc, images))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Infof("Starting resources site on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Infof("Server exited gracefully")
}

// openStore builds the configured content backend. The returned func releases
// its connections.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	noop := func() {}
	switch cfg.Content.Backend {
	case config.BackendSanity:
		c, err := sanity.New(sanity.Config{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			UseCDN:     cfg.Sanity.UseCDN,
			Token:      cfg.Sanity.Token,
			Timeout:    cfg.Sanity.Timeout,
		})
		if err != nil {
			return nil, noop, err
		}
		return repository.NewSanityStore(c), noop, nil

	case config.BackendMongo:
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			return nil, noop, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		return repository.NewMongoStore(col), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendFixture:
		s, skipped, err := repository.LoadFixture(cfg.Content.FixturePath)
		if err != nil {
			return nil, noop, err
		}
		if skipped > 0 {
			logger.Warnf("fixture %s: skipped %d malformed documents", cfg.Content.FixturePath, skipped)
		}
		return s, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown content backend %q", cfg.Content.Backend)
}

func openResolver(cfg *config.Config) (imageurl.Resolver, error) {
	if cfg.Assets.Backend == config.AssetsMinIO {
		m := cfg.Assets.MinIO
		st, err := storage.NewMinIOStorage(&storage.MinIOConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
			Bucket:    m.Bucket,
			URLExpiry: m.URLExpiry,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return imageurl.NewCDN(cfg.Sanity.ProjectID, cfg.Sanity.Dataset), nil
}

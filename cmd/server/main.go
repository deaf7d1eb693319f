package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/config"
	"github.com/d60-Lab/clipshare/internal/api/handler"
	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/internal/api/router"
	"github.com/d60-Lab/clipshare/internal/cache"
	"github.com/d60-Lab/clipshare/internal/oauth"
	"github.com/d60-Lab/clipshare/internal/repository"
	"github.com/d60-Lab/clipshare/internal/service"
	"github.com/d60-Lab/clipshare/pkg/database"
	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/probe"
	"github.com/d60-Lab/clipshare/pkg/storage"
	"github.com/d60-Lab/clipshare/pkg/token"
	"github.com/d60-Lab/clipshare/pkg/tracing"
)

// @title ClipShare API
// @version 1.0
// @description 短视频分享服务
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic("init logger: " + err.Error())
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			logger.Fatal("init tracing", zap.Error(err))
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			logger.Fatal("auto migrate", zap.Error(err))
		}
	}

	var followCache *cache.FollowCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, follow lists served from database", zap.Error(err))
			_ = rdb.Close()
		} else {
			defer rdb.Close()
			followCache = cache.NewFollowCache(rdb, cfg.Redis.FollowCacheTTL)
		}
	}

	media, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("init storage", zap.Error(err))
	}
	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	codec := token.NewCodec(cfg.JWT.Secret, token.WithTTL(cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL))
	store := repository.NewStore(db)
	h := handler.New(handler.Deps{
		Auth:     service.NewAuthService(store, codec, media),
		Users:    service.NewUserService(store, media, followCache),
		Rel:      service.NewRelationshipService(store, followCache),
		Videos:   service.NewVideoService(store, media, probe.NewFFProbe(cfg.Probe.Timeout)),
		Comments: service.NewCommentService(store),
		Likes:    service.NewLikeService(store),
		Files:    service.NewFileService(media),
		OAuth:    oauth.FromConfig(cfg.OAuth),
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		SecureCookies:        cfg.Server.SecureCookies,
		OAuthSuccessRedirect: cfg.Server.OAuthSuccessRedirect,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router.New(cfg, h, codec),
		ReadHeaderTimeout: 10 * time.Second,
	}
	run(srv, cfg.Server.ShutdownTimeout)
}

// run 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func run(srv *http.Server, timeout time.Duration) {
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

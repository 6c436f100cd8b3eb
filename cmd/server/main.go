package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"keysmith/backend/internal/auth"
	"keysmith/backend/internal/config"
	"keysmith/backend/internal/health"
	"keysmith/backend/internal/logger"
	"keysmith/backend/internal/monitoring"
	"keysmith/backend/internal/service"
	"keysmith/backend/internal/session"
	"keysmith/backend/internal/storage"
	"keysmith/backend/internal/storage/memory"
	"keysmith/backend/internal/storage/redis"
	sqlstore "keysmith/backend/internal/storage/sql"
	httptransport "keysmith/backend/internal/transport/http"
)

// main 启动密钥签发与管理服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     "",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting keysmith server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		// 内存存储（开发环境）
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 初始化会话存储：配置了 Redis 则用 Redis，否则内存
	var sessionStore session.Store
	if cfg.Redis.Address != "" {
		redisClient, err := redis.New(&cfg.Redis)
		if err != nil {
			panic(fmt.Sprintf("failed to connect to redis: %v", err))
		}
		sessionStore = redis.NewSessionStore(redisClient)
		log.Info("using redis session store", zap.String("address", cfg.Redis.Address))
	} else {
		sessionStore = session.NewMemoryStore()
		log.Info("using memory session store (development mode)")
	}
	defer sessionStore.Close()

	// 初始化服务层
	keyService := service.NewAPIKeyService(store, cfg.Key.DefaultTTL)
	authService := auth.NewService(store)
	signer := session.NewSigner(cfg.Session.Secret, cfg.Session.Issuer)
	sessionManager := session.NewManager(sessionStore, signer, cfg.Session.TTL)

	log.Info("session configuration",
		zap.String("issuer", cfg.Session.Issuer),
		zap.Duration("ttl", cfg.Session.TTL),
	)

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(store, sessionStore, log)

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:   cfg,
		Keys:     keyService,
		Auth:     authService,
		Sessions: sessionManager,
		Metrics:  metrics,
		Logger:   log,
	})

	// 健康检查处理器（用于 Kubernetes 等）
	router.GET("/health/live", gin.WrapF(healthChecker.LiveHandler()))
	router.GET("/health/ready", gin.WrapF(healthChecker.ReadyHandler()))

	// Prometheus 指标端点
	router.GET("/metrics", gin.WrapH(metrics.HTTPHandler()))

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 定时巡检过期密钥 goroutine
	group.Go(func() error {
		ticker := time.NewTicker(cfg.Key.SweepInterval)
		defer ticker.Stop()

		log.Info("starting expired key sweep task", zap.Duration("interval", cfg.Key.SweepInterval))

		for {
			select {
			case <-groupCtx.Done():
				log.Info("expired key sweep task stopped")
				return nil
			case <-ticker.C:
				count, err := keyService.DeactivateExpiredKeys()
				if err != nil {
					log.Error("failed to deactivate expired keys", zap.Error(err))
				} else if count > 0 {
					log.Info("expired keys deactivated", zap.Int("count", count))
				}
			}
		}
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

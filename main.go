package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assistant/middleware"
	"assistant/pkg/config"
	"assistant/pkg/database"
	"assistant/pkg/logger"
	"assistant/pkg/services"
	"assistant/pkg/session"
	"assistant/routes"
	"assistant/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.New(cfg)
	defer zl.Sync()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, zl)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed migrate", zap.Error(err))
	}

	ctx := context.Background()

	gateway, err := services.NewCompletionGateway(ctx, cfg)
	if errors.Is(err, services.ErrCompletionUnavailable) {
		zl.Warn("completion API key missing; POST /api/chat/ will fail until it is set",
			zap.String("provider", cfg.CompletionProvider))
		gateway = nil
	} else if err != nil {
		zl.Fatal("failed to init completion gateway", zap.Error(err))
	}

	store, closeStore, err := newRevocationStore(ctx, cfg.RedisURL)
	if err != nil {
		zl.Fatal("failed to init session store", zap.Error(err))
	}
	defer closeStore()
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, store)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zl))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRFToken", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	tmpl, err := web.Templates()
	if err != nil {
		zl.Fatal("failed to parse templates", zap.Error(err))
	}
	r.SetHTMLTemplate(tmpl)

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		DB:       db,
		Log:      zl,
		Sessions: sessions,
		Gateway:  gateway,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zl.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("server ready",
		zap.String("addr", fmt.Sprintf("http://localhost:%s", cfg.Port)),
		zap.String("env", cfg.AppEnv),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("provider", cfg.CompletionProvider),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server error", zap.Error(err))
	}
}

// newRevocationStore uses Redis when REDIS_URL is set so logouts hold across
// instances, otherwise an in-process store.
func newRevocationStore(ctx context.Context, redisURL string) (session.RevocationStore, func(), error) {
	if redisURL == "" {
		return session.NewMemoryStore(), func() {}, nil
	}
	client, err := session.NewRedisClient(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client), func() { _ = client.Close() }, nil
}
